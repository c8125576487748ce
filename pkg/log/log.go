// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent    = 4  // spaces to indent file entries
	nameWidth     = 35 // Base width for filename
	outcomeWidth  = 10 // Width for outcome text
	folderCounter = 6  // Width for folder counters
)

// 🎯 FileOperation is the outcome of acting on one file
type FileOperation struct {
	Path    string // Source path
	Action  string // delete or copy
	Outcome string // succeeded, not_found or failed
	Reason  string // Failure reason, if any
}

// 📦 FolderOperation summarizes one scanned folder
type FolderOperation struct {
	Path        string // Source folder
	Destination string // Copy destination, empty for delete
	Scanned     int    // Entries listed
	Candidates  int    // Files queued for the action
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 NewWithZerolog creates a logger mirroring to an existing zerolog logger
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// Discard returns a logger that prints nothing.
func Discard() *Logger {
	return NewWithZerolog(io.Discard, zerolog.Nop())
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Outcome {
	case "succeeded":
		symbol = '✓'
		symbolColor = color.FgGreen
	case "not_found":
		symbol = '?'
		symbolColor = color.FgYellow
	case "failed":
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", outcomeWidth, op.Outcome)))
	if op.Reason != "" {
		line += " " + color.New(color.Faint).Sprint(op.Reason)
	}
	return line
}

// 📝 LogFileOperation logs the outcome of one file
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	ev := l.zlog.Debug()
	if op.Outcome == "failed" {
		ev = l.zlog.Warn()
	}
	ev.Str("file", op.Path).
		Str("action", op.Action).
		Str("outcome", op.Outcome).
		Str("reason", op.Reason).
		Msg("file operation")
}

// 📝 LogFolder prints one scanned folder with its counts
func (l *Logger) LogFolder(ctx context.Context, op FolderOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	target := color.New(color.FgCyan).Sprint(op.Path)
	if op.Destination != "" {
		target += color.New(color.Faint).Sprint(" → ") + color.New(color.FgCyan).Sprint(op.Destination)
	}

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		target,
		color.New(color.Faint).Sprint("•"),
		fmt.Sprintf("%*d scanned %*d queued", folderCounter, op.Scanned, folderCounter, op.Candidates))

	l.zlog.Info().
		Str("folder", op.Path).
		Str("destination", op.Destination).
		Int("scanned", op.Scanned).
		Int("candidates", op.Candidates).
		Msg("folder scanned")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("dsreduce")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
