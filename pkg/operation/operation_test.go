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

package operation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/dispatch"
	"github.com/walteh/dsreduce/pkg/fsx"
	"github.com/walteh/dsreduce/pkg/log"
	"github.com/walteh/dsreduce/pkg/selection"
	"github.com/walteh/dsreduce/pkg/testutils"
)

func deleteConfig(root string, ratio float64, folders ...string) *config.Config {
	if len(folders) == 0 {
		folders = []string{filepath.Join(root, "train")}
	}
	return &config.Config{
		Action:  config.ActionDelete,
		Master:  filepath.Join(root, "master.txt"),
		Folders: folders,
		Ratio:   ratio,
		Mode:    selection.First,
		Workers: 4,
	}
}

func copyConfig(root string, ratio float64) *config.Config {
	return &config.Config{
		Action:  config.ActionCopy,
		Master:  filepath.Join(root, "master.txt"),
		Output:  filepath.Join(root, "out"),
		Ratio:   ratio,
		Mode:    selection.First,
		Workers: 4,
	}
}

func execute(t *testing.T, ctx context.Context, cfg *config.Config) (*reportView, error) {
	t.Helper()
	require.NoError(t, cfg.Validate())

	op, err := New(Options{Config: cfg})
	require.NoError(t, err)

	rep, err := op.Execute(ctx)
	if rep == nil {
		return nil, err
	}
	return &reportView{Counts: rep.Counts, Queued: rep.Queued, Selected: rep.Selected, Folders: len(rep.Folders), DryRun: rep.DryRun}, err
}

type reportView struct {
	Counts   dispatch.Counts
	Queued   int
	Selected int
	Folders  int
	DryRun   bool
}

func TestDeleteEndToEnd(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)

	got, err := execute(t, ctx, deleteConfig(root, 0.3))
	require.NoError(t, err)

	assert.Equal(t, 3, got.Selected, "a, b and c are selected")
	assert.Equal(t, 3, got.Queued)
	assert.Equal(t, dispatch.Counts{Succeeded: 3}, got.Counts)
	assert.Equal(t, []string{"c.txt", "d.jpg"}, testutils.ListDir(t, filepath.Join(root, "train")))
}

func TestDeleteLastMode(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	testutils.WriteFiles(t, filepath.Join(root, "train"), "h.jpg", "j.png")

	cfg := deleteConfig(root, 0.3)
	cfg.Mode = selection.Last

	got, err := execute(t, ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, dispatch.Counts{Succeeded: 2}, got.Counts)
	assert.Equal(t, []string{"a.jpg", "a.xml", "b.png", "c.txt", "d.jpg"}, testutils.ListDir(t, filepath.Join(root, "train")))
}

func TestDeleteRatioZeroIsNoop(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)

	got, err := execute(t, ctx, deleteConfig(root, 0))
	require.NoError(t, err)

	assert.Equal(t, 0, got.Selected)
	assert.Equal(t, 0, got.Queued)
	assert.Equal(t, dispatch.Counts{}, got.Counts)
	assert.Equal(t, 1, got.Folders, "folders are still scanned")
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5)
}

func TestDeleteTwiceIsIdempotent(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)

	_, err := execute(t, ctx, deleteConfig(root, 0.3))
	require.NoError(t, err)

	got, err := execute(t, ctx, deleteConfig(root, 0.3))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Queued, "nothing left to match")
	assert.Equal(t, dispatch.Counts{}, got.Counts)
}

func TestDeleteMissingFolderIsFatal(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	missing := filepath.Join(root, "nope")

	_, err := execute(t, ctx, deleteConfig(root, 0.3, filepath.Join(root, "train"), missing))
	require.Error(t, err)
	assert.True(t, fsx.IsNotFound(err))

	var nf *fsx.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, missing, nf.Path)
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5, "nothing deleted before setup succeeded")
}

func TestDeleteMissingMasterIsFatal(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	require.NoError(t, os.Remove(filepath.Join(root, "master.txt")))

	_, err := execute(t, ctx, deleteConfig(root, 0.3))
	require.Error(t, err)
	assert.True(t, fsx.IsNotFound(err))
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5)
}

func TestCopyEndToEnd(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)

	got, err := execute(t, ctx, copyConfig(root, 0.3))
	require.NoError(t, err)

	assert.Equal(t, dispatch.Counts{Succeeded: 3}, got.Counts)
	assert.Equal(t, 1, got.Folders, "val and test do not exist and are skipped")
	assert.Equal(t, []string{"a.jpg", "a.xml", "b.png"}, testutils.ListDir(t, filepath.Join(root, "out", "train")))
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5, "copy leaves sources in place")

	content, err := os.ReadFile(filepath.Join(root, "out", "train", "a.xml"))
	require.NoError(t, err)
	assert.Equal(t, "content of a.xml", string(content))
}

func TestCopyAllSplits(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	testutils.WriteFiles(t, filepath.Join(root, "val"), "b.jpg", "e.jpg")
	testutils.WriteFiles(t, filepath.Join(root, "test"), "c.png")

	got, err := execute(t, ctx, copyConfig(root, 0.3))
	require.NoError(t, err)

	assert.Equal(t, 3, got.Folders)
	assert.Equal(t, dispatch.Counts{Succeeded: 5}, got.Counts)
	assert.Equal(t, []string{"b.jpg"}, testutils.ListDir(t, filepath.Join(root, "out", "val")))
	assert.Equal(t, []string{"c.png"}, testutils.ListDir(t, filepath.Join(root, "out", "test")))
}

func TestCopyWithoutSplitsIsFatal(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "train")))

	_, err := execute(t, ctx, copyConfig(root, 0.3))
	require.Error(t, err)
	assert.True(t, fsx.IsNotFound(err))
	assert.NoDirExists(t, filepath.Join(root, "out"))
}

func TestCopyExplicitFolder(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	testutils.WriteFiles(t, filepath.Join(root, "extra", "holdout"), "a.jpg", "z.jpg")

	cfg := copyConfig(root, 0.3)
	cfg.Folders = []string{filepath.Join(root, "extra", "holdout")}

	got, err := execute(t, ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, dispatch.Counts{Succeeded: 1}, got.Counts)
	assert.Equal(t, []string{"a.jpg"}, testutils.ListDir(t, filepath.Join(root, "out", "holdout")))
}

func TestPlanTouchesNothing(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)

	cfg := deleteConfig(root, 0.3)
	cfg.DryRun = true

	got, err := execute(t, ctx, cfg)
	require.NoError(t, err)

	assert.True(t, got.DryRun)
	assert.Equal(t, 3, got.Queued)
	assert.Equal(t, dispatch.Counts{}, got.Counts)
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5)
}

func TestExtensionsAndIgnore(t *testing.T) {
	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	testutils.WriteFiles(t, filepath.Join(root, "train"), "b.tif", "c.JPG")

	cfg := deleteConfig(root, 0.3)
	cfg.Extensions = []string{"tif", "jpg"}
	cfg.IgnorePatterns = []string{"a.*"}

	got, err := execute(t, ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, dispatch.Counts{Succeeded: 2}, got.Counts)
	assert.Equal(t, []string{"a.jpg", "a.xml", "b.png", "c.txt", "d.jpg"}, testutils.ListDir(t, filepath.Join(root, "train")))
}

func TestCancelledBeforeScan(t *testing.T) {
	root := testutils.Dataset(t)
	ctx, cancel := context.WithCancel(testutils.Context(t))
	cancel()

	_, err := execute(t, ctx, deleteConfig(root, 0.3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, testutils.ListDir(t, filepath.Join(root, "train")), 5)
}

func TestVerboseLogsEachFile(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := testutils.Context(t)
	root := testutils.Dataset(t)
	cfg := deleteConfig(root, 0.3)
	require.NoError(t, cfg.Validate())

	buf := &bytes.Buffer{}
	console := log.NewWithZerolog(buf, zerolog.New(zerolog.NewTestWriter(t)))

	rep, err := NewDeleteOperation(Options{Config: cfg, Console: console, Verbose: true}).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Counts.Succeeded)
	assert.Equal(t, 3, strings.Count(buf.String(), "✓"), "one line per deleted file")
	assert.Contains(t, buf.String(), "selected 3 identifiers from 3 of 10 entries (first)")
	assert.Contains(t, buf.String(), filepath.Join(root, "train", "b.png"))
}

func TestNewRejectsMissingConfig(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = NewPlanOperation(Options{}).Execute(context.Background())
	require.Error(t, err)
}
