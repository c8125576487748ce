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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/cmd/dsreduce/commands"
	"github.com/walteh/dsreduce/cmd/dsreduce/opts"
	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/log"
)

// rootFlags are the persistent flags shared by every command
type rootFlags struct {
	configFile string
	debug      bool
	reportPath string
	extensions []string
	ignore     []string
	noProgress bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "dsreduce",
		Short: "Delete or copy a deterministic fraction of a dataset",
		Long: `dsreduce selects a contiguous fraction of a master list of dataset entries
and deletes or copies every matching image and annotation file in the given
folders. Each folder is listed exactly once; files are processed in parallel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, flags.debug)
			return populateRootOpts(cmd, flags, root)
		},
	}

	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewDeleteCmd(root),
		commands.NewCopyCmd(root),
		commands.NewPlanCmd(root),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "defaults file (.yaml, .yml, .hcl or .json)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging and per-file output")
	cmd.PersistentFlags().StringVar(&flags.reportPath, "report", "", "write a JSON report to this path")
	cmd.PersistentFlags().StringSliceVar(&flags.extensions, "ext", nil, "allowed file extensions (default .jpg,.jpeg,.png,.xml)")
	cmd.PersistentFlags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of file names to leave alone")
	cmd.PersistentFlags().BoolVar(&flags.noProgress, "no-progress", false, "disable the progress bar")
}

// setupLogging configures zerolog based on flags
func setupLogging(cmd *cobra.Command, debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	cmd.SetContext(logger.WithContext(cmd.Context()))
}

// populateRootOpts resolves shared options: explicit flags first, then the
// defaults file.
func populateRootOpts(cmd *cobra.Command, flags *rootFlags, root *opts.RootOpts) error {
	ctx := cmd.Context()

	mirror := zerolog.Nop()
	if flags.debug {
		mirror = *zerolog.Ctx(ctx)
	}
	root.Console = log.NewWithZerolog(cmd.OutOrStdout(), mirror)
	root.Debug = flags.debug
	root.ReportPath = flags.reportPath
	root.Progress = !flags.noProgress
	root.Extensions = flags.extensions
	root.IgnorePatterns = flags.ignore

	if flags.configFile == "" {
		return nil
	}

	d, err := config.LoadDefaults(ctx, flags.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	root.Defaults = d

	if !cmd.Flags().Changed("ext") && len(d.Extensions) > 0 {
		root.Extensions = d.Extensions
	}
	if !cmd.Flags().Changed("ignore") && len(d.Ignore) > 0 {
		root.IgnorePatterns = d.Ignore
	}

	return nil
}
