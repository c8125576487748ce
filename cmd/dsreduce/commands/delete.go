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

// NewDeleteCmd creates the delete command
func NewDeleteCmd(root *opts.RootOpts) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "delete [flags] [folder...]",
		Short: "Delete the files of a fraction of the master list",
		Long: `Delete selects a fraction of the master list and removes every matching file
from the given folders. It will:
1. Read the master list and take the first (or last) ratio of its entries
2. List each folder once and match files by name without extension
3. Remove matching .jpg, .jpeg, .png and .xml files in parallel
4. Print a summary; files that are already gone are reported, not fatal`,
		Example: `  dsreduce delete -m data/master.txt -f data/train data/val -r 0.5
  dsreduce delete -m data/master.txt -f data/train -d last --report run.json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, root, config.ActionDelete, f, args)
			if err != nil {
				return err
			}
			return execute(cmd, root, cfg)
		},
	}

	addRunFlags(cmd, f, config.ActionDelete)
	_ = cmd.MarkFlagRequired("folders")

	return cmd
}
