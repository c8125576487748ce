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
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/scan"
	"github.com/walteh/dsreduce/pkg/selection"
)

// shortRevision is how many characters of the commit hash are shown.
const shortRevision = 12

// 🏷️ BuildDetails identifies the binary
type BuildDetails struct {
	Version  string `json:"version"`
	Revision string `json:"revision,omitempty"`
	Dirty    bool   `json:"dirty,omitempty"`
	BuiltAt  string `json:"built_at,omitempty"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// 📏 RunDefaults are the built-in values a run falls back to when neither a
// flag nor the defaults file sets them
type RunDefaults struct {
	DeleteRatio float64  `json:"delete_ratio"`
	CopyRatio   float64  `json:"copy_ratio"`
	Mode        string   `json:"mode"`
	Workers     int      `json:"workers"`
	Extensions  []string `json:"extensions"`
	CopySplits  []string `json:"copy_splits"`
}

// VersionInfo is what the version command prints
type VersionInfo struct {
	Build    BuildDetails `json:"build"`
	Defaults RunDefaults  `json:"defaults"`
}

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// GetVersionInfo collects build details and the built-in run defaults.
func GetVersionInfo() *VersionInfo {
	bi, _ := readBuildInfo()
	return &VersionInfo{
		Build: buildDetails(bi),
		Defaults: RunDefaults{
			DeleteRatio: config.DefaultRatio(config.ActionDelete),
			CopyRatio:   config.DefaultRatio(config.ActionCopy),
			Mode:        string(selection.First),
			Workers:     config.DefaultWorkers,
			Extensions:  scan.DefaultExtensions,
			CopySplits:  config.DefaultCopySplits,
		},
	}
}

func buildDetails(bi *debug.BuildInfo) BuildDetails {
	d := BuildDetails{
		Version:  "dev",
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return d
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		d.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			d.Revision = s.Value
			if len(d.Revision) > shortRevision {
				d.Revision = d.Revision[:shortRevision]
			}
		case "vcs.time":
			d.BuiltAt = s.Value
		case "vcs.modified":
			d.Dirty = s.Value == "true"
		}
	}
	return d
}

// WriteVersion prints info for a terminal.
func WriteVersion(w io.Writer, info *VersionInfo) {
	label := color.New(color.Faint)
	b := info.Build

	rev := b.Revision
	if rev == "" {
		rev = "unknown"
	}
	if b.Dirty {
		rev += color.New(color.FgYellow).Sprint(" (dirty)")
	}

	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold, color.FgCyan).Sprint("dsreduce"), b.Version)
	fmt.Fprintf(w, "  %s %s\n", label.Sprint("revision "), rev)
	if b.BuiltAt != "" {
		fmt.Fprintf(w, "  %s %s\n", label.Sprint("built    "), b.BuiltAt)
	}
	fmt.Fprintf(w, "  %s %s %s\n", label.Sprint("go       "), b.Go, b.Platform)

	d := info.Defaults
	fmt.Fprintf(w, "  %s delete %.0f%%, copy %.0f%% (%s), %d workers\n",
		label.Sprint("defaults "), d.DeleteRatio*100, d.CopyRatio*100, d.Mode, d.Workers)
	fmt.Fprintf(w, "  %s %s\n", label.Sprint("files    "), strings.Join(d.Extensions, " "))
	fmt.Fprintf(w, "  %s %s\n", label.Sprint("splits   "), strings.Join(d.CopySplits, " "))
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information and built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := GetVersionInfo()
			if !asJSON {
				WriteVersion(cmd.OutOrStdout(), info)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(info); err != nil {
				return errors.Errorf("encoding version info: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
