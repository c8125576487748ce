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

// NewCopyCmd creates the copy command
func NewCopyCmd(root *opts.RootOpts) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "copy [flags] [folder...]",
		Short: "Copy the files of a fraction of the master list into a new folder",
		Long: `Copy selects a fraction of the master list and copies every matching file
into the output folder, keeping one subfolder per source folder. Without
--folders the train, val and test folders next to the master list are used.
Existing files in the output folder are overwritten.`,
		Example: `  dsreduce copy -m data/master.txt -o subset
  dsreduce copy -m data/master.txt -f data/train -o subset -r 0.1 -w 16`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, root, config.ActionCopy, f, args)
			if err != nil {
				return err
			}
			return execute(cmd, root, cfg)
		},
	}

	addRunFlags(cmd, f, config.ActionCopy)
	addOutputFlag(cmd, f, "destination root folder (required unless set in the config file)")

	return cmd
}
