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
	"github.com/spf13/cobra"

	"github.com/walteh/dsreduce/cmd/dsreduce/opts"
	"github.com/walteh/dsreduce/pkg/config"
)

// NewPlanCmd creates the plan command
func NewPlanCmd(root *opts.RootOpts) *cobra.Command {
	f := &runFlags{}
	var action string

	cmd := &cobra.Command{
		Use:   "plan [flags] [folder...]",
		Short: "Show what delete or copy would do without touching any file",
		Long: `Plan reads the master list, selects entries and scans every folder exactly
like delete (or copy, with --action copy) would, then prints the per-folder
counts. No file is removed or written, except the --report file.`,
		Example: `  dsreduce plan -m data/master.txt -f data/train -r 0.5
  dsreduce plan --action copy -m data/master.txt -o subset`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, root, config.Action(action), f, args)
			if err != nil {
				return err
			}
			cfg.DryRun = true
			return execute(cmd, root, cfg)
		},
	}

	addRunFlags(cmd, f, config.ActionDelete)
	addOutputFlag(cmd, f, "destination root folder, with --action copy")
	cmd.Flags().StringVar(&action, "action", string(config.ActionDelete), "action to plan: delete or copy")

	return cmd
}
