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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/fsx"
	"github.com/walteh/dsreduce/pkg/report"
	"github.com/walteh/dsreduce/pkg/testutils"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--no-progress"))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDeleteCommand(t *testing.T) {
	root := testutils.Dataset(t)
	reportPath := filepath.Join(root, "report.json")

	out, err := runCLI(t, "delete",
		"-m", filepath.Join(root, "master.txt"),
		"-f", filepath.Join(root, "train"),
		"-r", "0.3",
		"--report", reportPath,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "dsreduce • delete first 30%")
	assert.Contains(t, out, "3 succeeded")
	assert.Equal(t, []string{"c.txt", "d.jpg"}, testutils.ListDir(t, filepath.Join(root, "train")))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, 3, rep.Counts.Succeeded)
	assert.Equal(t, 3, rep.Selected)
}

func TestDeleteCommandSpaceSeparatedFolders(t *testing.T) {
	root := testutils.Dataset(t)
	other := filepath.Join(root, "other")
	testutils.WriteFiles(t, other, "b.jpg", "e.jpg")

	out, err := runCLI(t, "delete",
		"-m", filepath.Join(root, "master.txt"),
		"-f", filepath.Join(root, "train"), other,
		"-r", "0.3",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "4 succeeded")
	assert.Equal(t, []string{"c.txt", "d.jpg"}, testutils.ListDir(t, filepath.Join(root, "train")))
	assert.Equal(t, []string{"e.jpg"}, testutils.ListDir(t, other))
}

func TestDeleteCommandDefaultRatio(t *testing.T) {
	root := testutils.Dataset(t)

	out, err := runCLI(t, "plan",
		"-m", filepath.Join(root, "master.txt"),
		"-f", filepath.Join(root, "train"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "selection first 90% of 10 entries: 9 taken, 9 unique")
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5, "plan touches nothing")
}

func TestCopyCommand(t *testing.T) {
	root := testutils.Dataset(t)
	output := filepath.Join(root, "subset")

	_, err := runCLI(t, "copy", "-m", filepath.Join(root, "master.txt"), "-o", output)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpg", "a.xml", "b.png"}, testutils.ListDir(t, filepath.Join(output, "train")))
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5)
}

func TestConfigurationErrors(t *testing.T) {
	root := testutils.Dataset(t)
	master := filepath.Join(root, "master.txt")
	train := filepath.Join(root, "train")

	tests := []struct {
		name     string
		args     []string
		invalid  bool
		notFound bool
	}{
		{name: "ratio_too_large", args: []string{"delete", "-m", master, "-f", train, "-r", "1.5"}, invalid: true},
		{name: "bad_mode", args: []string{"delete", "-m", master, "-f", train, "-d", "middle"}, invalid: true},
		{name: "zero_workers", args: []string{"delete", "-m", master, "-f", train, "-w", "0"}, invalid: true},
		{name: "copy_without_output", args: []string{"copy", "-m", master}, invalid: true},
		{name: "plan_unknown_action", args: []string{"plan", "--action", "move", "-m", master, "-f", train}, invalid: true},
		{name: "missing_master", args: []string{"delete", "-m", filepath.Join(root, "nope.txt"), "-f", train}, notFound: true},
		{name: "missing_folder", args: []string{"delete", "-m", master, "-f", filepath.Join(root, "nope")}, notFound: true},
		{name: "missing_required_flag", args: []string{"delete", "-f", train}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, config.ErrInvalid), "invalid: %v", err)
			assert.Equal(t, tt.notFound, fsx.IsNotFound(err), "not found: %v", err)
			assert.Len(t, testutils.ListDir(t, train), 5, "nothing touched")
		})
	}
}

func TestConfigFileDefaults(t *testing.T) {
	root := testutils.Dataset(t)
	cfgPath := filepath.Join(root, "dsreduce.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
mode: last
ignore: ["a.*"]
copy:
  ratio: 0.7
  output: `+filepath.Join(root, "from-config")+`
`), 0644))

	t.Run("file_values_apply", func(t *testing.T) {
		out, err := runCLI(t, "plan", "--action", "copy", "-c", cfgPath, "-m", filepath.Join(root, "master.txt"))
		require.NoError(t, err)
		assert.Contains(t, out, "selection last 70% of 10 entries: 7 taken, 7 unique")
		assert.Contains(t, out, filepath.Join(root, "from-config", "train"))
	})

	t.Run("flags_win", func(t *testing.T) {
		out, err := runCLI(t, "plan", "--action", "copy", "-c", cfgPath,
			"-m", filepath.Join(root, "master.txt"),
			"-r", "0.3", "-d", "first", "-o", filepath.Join(root, "from-flag"), "--ignore", "zzz")
		require.NoError(t, err)
		assert.Contains(t, out, "selection first 30% of 10 entries: 3 taken, 3 unique")
		assert.Contains(t, out, filepath.Join(root, "from-flag", "train"))
		assert.Contains(t, out, "queued 3 files would be processed", "a.* is not ignored when --ignore is given")
	})

	t.Run("ignore_from_file", func(t *testing.T) {
		out, err := runCLI(t, "plan", "-c", cfgPath, "-m", filepath.Join(root, "master.txt"), "-f", filepath.Join(root, "train"), "-d", "first", "-r", "0.3")
		require.NoError(t, err)
		assert.Contains(t, out, "queued 1 files would be processed", "a.jpg and a.xml are ignored")
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := runCLI(t, "plan", "-c", filepath.Join(root, "nope.yaml"), "-m", filepath.Join(root, "master.txt"), "-f", filepath.Join(root, "train"))
		require.Error(t, err)
		assert.True(t, fsx.IsNotFound(err))
	})
}

func TestVersionCommand(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dsreduce ")
	assert.Contains(t, out, "defaults  delete 90%, copy 30% (first), 4 workers")
	assert.Contains(t, out, "splits    train val test")

	out, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Build.Go)
	assert.NotEmpty(t, info.Build.Version)
	assert.Equal(t, config.DefaultWorkers, info.Defaults.Workers)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".xml"}, info.Defaults.Extensions)
}

func TestBuildDetails(t *testing.T) {
	tests := []struct {
		name string
		bi   *debug.BuildInfo
		want BuildDetails
	}{
		{
			name: "no_build_info",
			bi:   nil,
			want: BuildDetails{Version: "dev"},
		},
		{
			name: "devel_build",
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: BuildDetails{Version: "dev"},
		},
		{
			name: "tagged_dirty_build",
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef0123"},
					{Key: "vcs.time", Value: "2025-01-01T00:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: BuildDetails{Version: "v1.2.3", Revision: "0123456789ab", Dirty: true, BuiltAt: "2025-01-01T00:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildDetails(tt.bi)
			assert.NotEmpty(t, got.Go)
			assert.NotEmpty(t, got.Platform)
			got.Go, got.Platform = "", ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetVersionInfoUsesBuildInfo(t *testing.T) {
	orig := readBuildInfo
	defer func() { readBuildInfo = orig }()
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, true
	}

	info := GetVersionInfo()
	assert.Equal(t, "v0.4.0", info.Build.Version)

	buf := &bytes.Buffer{}
	color.NoColor = true
	defer func() { color.NoColor = false }()
	WriteVersion(buf, info)
	assert.Contains(t, buf.String(), "dsreduce v0.4.0")
	assert.Contains(t, buf.String(), "revision  unknown")
}
