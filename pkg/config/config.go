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

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/scan"
	"github.com/walteh/dsreduce/pkg/selection"
)

// ❌ ErrInvalid marks every configuration error. Configuration errors are
// reported before any file is touched.
var ErrInvalid = errors.Base("invalid configuration")

// 🔍 ValidationError names the offending setting
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

// Unwrap exposes both ErrInvalid and the cause, so errors.Is matches
// either config.ErrInvalid or e.g. selection.ErrInvalidRatio.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Err: errors.Errorf(format, args...)}
}

// IsInvalid reports whether err is a configuration error.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalid) }

// 🎯 Action is the bulk file action to run
type Action string

const (
	ActionDelete Action = "delete"
	ActionCopy   Action = "copy"
)

// 📏 Per-action defaults
const (
	DefaultDeleteRatio = 0.9
	DefaultCopyRatio   = 0.3
	DefaultWorkers     = 4
)

// DefaultCopySplits are the subfolders of the master list's folder used by
// copy runs when no folders are given.
var DefaultCopySplits = []string{"train", "val", "test"}

// 📚 Config is the complete, immutable description of one run
type Config struct {
	Action         Action
	Master         string
	Folders        []string
	Output         string
	Ratio          float64
	Mode           selection.Mode
	Workers        int
	Extensions     []string
	IgnorePatterns []string
	ReportPath     string
	Progress       bool
	DryRun         bool

	// FoldersDefaulted is set by Validate when Folders came from
	// DefaultCopyFolders. Missing defaulted folders are skipped rather than
	// fatal.
	FoldersDefaulted bool
}

// DefaultRatio is the ratio used by an action when none is given.
func DefaultRatio(action Action) float64 {
	if action == ActionCopy {
		return DefaultCopyRatio
	}
	return DefaultDeleteRatio
}

// DefaultCopyFolders lists the split folders next to the master list.
func DefaultCopyFolders(master string) []string {
	parent := filepath.Dir(master)
	out := make([]string, 0, len(DefaultCopySplits))
	for _, s := range DefaultCopySplits {
		out = append(out, filepath.Join(parent, s))
	}
	return out
}

// 🔍 Validate checks the configuration and normalizes it in place: paths are
// cleaned, the mode is canonicalized, extensions are lower-cased and
// deduplicated. It never touches the filesystem.
func (cfg *Config) Validate() error {
	switch cfg.Action {
	case ActionDelete, ActionCopy:
	default:
		return invalidf("action", "unknown action %q", string(cfg.Action))
	}

	if strings.TrimSpace(cfg.Master) == "" {
		return invalidf("master", "master list path is required")
	}
	cfg.Master = filepath.Clean(cfg.Master)

	if err := selection.ValidateRatio(cfg.Ratio); err != nil {
		return invalid("ratio", err)
	}

	mode, err := selection.ParseMode(string(cfg.Mode))
	if err != nil {
		return invalid("mode", err)
	}
	cfg.Mode = mode

	if cfg.Workers < 1 {
		return invalidf("workers", "must be at least 1, got %d", cfg.Workers)
	}

	switch cfg.Action {
	case ActionDelete:
		if len(cfg.Folders) == 0 {
			return invalidf("folders", "at least one folder is required for delete")
		}
		if cfg.Output != "" {
			return invalidf("output", "output is only valid for copy")
		}
	case ActionCopy:
		if strings.TrimSpace(cfg.Output) == "" {
			return invalidf("output", "output folder is required for copy")
		}
		cfg.Output = filepath.Clean(cfg.Output)
		if len(cfg.Folders) == 0 {
			cfg.Folders = DefaultCopyFolders(cfg.Master)
			cfg.FoldersDefaulted = true
		}
	}

	folders, err := cleanFolders(cfg.Folders)
	if err != nil {
		return err
	}
	cfg.Folders = folders

	if cfg.Action == ActionCopy {
		seen := make(map[string]string, len(cfg.Folders))
		for _, f := range cfg.Folders {
			base := filepath.Base(f)
			if prev, ok := seen[base]; ok {
				return invalidf("folders", "%s and %s would both copy into %s", prev, f, filepath.Join(cfg.Output, base))
			}
			seen[base] = f
		}
	}

	exts, err := normalizeExtensions(cfg.Extensions)
	if err != nil {
		return err
	}
	cfg.Extensions = exts

	for _, p := range cfg.IgnorePatterns {
		if !doublestar.ValidatePattern(p) {
			return invalidf("ignore", "bad pattern %q", p)
		}
	}

	if cfg.ReportPath != "" {
		cfg.ReportPath = filepath.Clean(cfg.ReportPath)
	}

	return nil
}

func cleanFolders(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, f := range in {
		if strings.TrimSpace(f) == "" {
			return nil, invalidf("folders", "empty folder path")
		}
		f = filepath.Clean(f)
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

func normalizeExtensions(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		n := scan.NormalizeExtension(e)
		if n == "" || n == "." {
			return nil, invalidf("extensions", "empty extension")
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

// ScanFolders pairs each source folder with its destination. Copy runs write
// folder F into <output>/<base name of F>.
func (cfg *Config) ScanFolders() []scan.Folder {
	out := make([]scan.Folder, 0, len(cfg.Folders))
	for _, f := range cfg.Folders {
		folder := scan.Folder{Path: f}
		if cfg.Action == ActionCopy {
			folder.Destination = filepath.Join(cfg.Output, filepath.Base(f))
		}
		out = append(out, folder)
	}
	return out
}

// 📝 String returns a short description of the run
func (cfg *Config) String() string {
	return fmt.Sprintf("%s %s %.0f%% of %s", cfg.Action, cfg.Mode, cfg.Ratio*100, cfg.Master)
}
