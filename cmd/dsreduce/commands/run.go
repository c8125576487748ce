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

package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/cmd/dsreduce/opts"
	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/dispatch"
	"github.com/walteh/dsreduce/pkg/operation"
	"github.com/walteh/dsreduce/pkg/selection"
	"github.com/walteh/dsreduce/pkg/status"
)

// logEvery is how often the non-interactive tracker logs progress.
const logEvery = 1000

// runFlags are the flags every run command takes
type runFlags struct {
	master  string
	folders []string
	output  string
	ratio   float64
	mode    string
	workers int
}

func addRunFlags(cmd *cobra.Command, f *runFlags, action config.Action) {
	cmd.Flags().StringVarP(&f.master, "master", "m", "", "master list, one dataset entry per line (required)")
	cmd.Flags().StringSliceVarP(&f.folders, "folders", "f", nil, "source folders to scan, comma or space separated")
	cmd.Flags().Float64VarP(&f.ratio, "ratio", "r", config.DefaultRatio(action), "fraction of the master list to select, in [0,1]")
	cmd.Flags().StringVarP(&f.mode, "mode", "d", string(selection.First), "take the selection from the first or last part of the list")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", config.DefaultWorkers, "parallel file operations")
	_ = cmd.MarkFlagRequired("master")
}

func addOutputFlag(cmd *cobra.Command, f *runFlags, usage string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", usage)
}

// buildConfig resolves every setting in order: explicit flag, defaults
// file, built-in default. Positional args are extra folders, so
// "-f train val test" reads as three folders. The result is validated.
func buildConfig(cmd *cobra.Command, root *opts.RootOpts, action config.Action, f *runFlags, args []string) (*config.Config, error) {
	flags := cmd.Flags()
	d := root.Defaults

	cfg := &config.Config{
		Action:         action,
		Master:         f.master,
		Folders:        append(append([]string(nil), f.folders...), args...),
		Output:         f.output,
		Ratio:          config.DefaultRatio(action),
		Mode:           selection.Mode(f.mode),
		Workers:        f.workers,
		Extensions:     root.Extensions,
		IgnorePatterns: root.IgnorePatterns,
		ReportPath:     root.ReportPath,
		Progress:       root.Progress,
	}

	if flags.Changed("ratio") {
		cfg.Ratio = f.ratio
	} else if d != nil {
		if r, ok := d.Ratio(action); ok {
			cfg.Ratio = r
		}
	}

	if d != nil {
		if !flags.Changed("mode") && d.Mode != "" {
			cfg.Mode = selection.Mode(d.Mode)
		}
		if w, ok := root.Workers(); ok && !flags.Changed("workers") {
			cfg.Workers = w
		}
		if out, ok := d.Output(); ok && action == config.ActionCopy && !flags.Changed("output") {
			cfg.Output = out
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("checking %s options: %w", action, err)
	}
	return cfg, nil
}

// newTracker picks the progress display: a bar on an interactive terminal,
// periodic log lines otherwise, nothing for plans or --no-progress.
func newTracker(root *opts.RootOpts, cfg *config.Config) dispatch.Tracker {
	if !cfg.Progress || cfg.DryRun {
		return nil
	}
	fd := os.Stderr.Fd()
	if !root.Debug && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		title := "Deleting files"
		if cfg.Action == config.ActionCopy {
			title = "Copying files"
		}
		return status.NewBarTracker(title, os.Stderr)
	}
	return status.NewLogTracker(logEvery)
}

// execute runs cfg and publishes its report.
func execute(cmd *cobra.Command, root *opts.RootOpts, cfg *config.Config) error {
	ctx := cmd.Context()

	op, err := operation.New(operation.Options{
		Config:  cfg,
		Console: root.Console,
		Tracker: newTracker(root, cfg),
		Verbose: root.Debug,
	})
	if err != nil {
		return errors.Errorf("creating operation: %w", err)
	}

	header := cfg.String()
	if cfg.DryRun {
		header = "plan: " + header
	}
	root.Console.Header(header)

	if _, err := operation.NewRunner(root.Console, cmd.OutOrStdout(), cfg.ReportPath).Run(ctx, op); err != nil {
		return errors.Errorf("running %s: %w", cfg.Action, err)
	}
	return nil
}
