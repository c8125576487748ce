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

package dispatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/dsreduce/pkg/scan"
)

func TestDeleteTwice(t *testing.T) {
	ctx := setupTestLogger(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("a"), 0644))
	c := scan.Candidate{Folder: dir, Name: "a.jpg"}

	first := Delete{}.Apply(ctx, c)
	assert.Equal(t, Succeeded, first.Outcome)
	assert.NoFileExists(t, c.Source())

	second := Delete{}.Apply(ctx, c)
	assert.Equal(t, NotFound, second.Outcome, "already gone is not a failure")
	assert.NotEqual(t, Failed, second.Outcome)
}

func TestDeleteFailure(t *testing.T) {
	ctx := setupTestLogger(t)
	dir := t.TempDir()

	// a non-empty directory cannot be removed with a plain remove
	blocked := filepath.Join(dir, "blocked.jpg")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "inner"), 0755))

	r := Delete{}.Apply(ctx, scan.Candidate{Folder: dir, Name: "blocked.jpg"})
	assert.Equal(t, Failed, r.Outcome)
	require.Error(t, r.Err)
	assert.Contains(t, r.Reason(), "deleting file")
	assert.DirExists(t, blocked)
}

func TestDeleteRaceInBatch(t *testing.T) {
	ctx := setupTestLogger(t)
	dir := t.TempDir()
	cands := makeCandidates(t, dir, 20)
	// the same file queued twice, as if two tasks raced for it
	cands = append(cands, cands[5])

	results := New(4).Run(ctx, Delete{}, cands)
	counts := Tally(results)

	assert.Equal(t, Counts{Succeeded: 20, NotFound: 1}, counts)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCopy(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("creates_missing_parents", func(t *testing.T) {
		src := t.TempDir()
		out := filepath.Join(t.TempDir(), "does", "not", "exist", "train")
		require.NoError(t, os.WriteFile(filepath.Join(src, "a.png"), []byte("png"), 0644))
		mtime := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(filepath.Join(src, "a.png"), mtime, mtime))

		c := scan.Candidate{Folder: src, Name: "a.png", Destination: out}
		r := Copy{}.Apply(ctx, c)
		require.Equal(t, Succeeded, r.Outcome, "reason: %s", r.Reason())

		content, err := os.ReadFile(c.Target())
		require.NoError(t, err)
		assert.Equal(t, "png", string(content))
		info, err := os.Stat(c.Target())
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(mtime))
		assert.FileExists(t, c.Source(), "copy leaves the source in place")
	})

	t.Run("rerun_overwrites", func(t *testing.T) {
		src := t.TempDir()
		out := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(src, "a.xml"), []byte("<v2/>"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(out, "a.xml"), []byte("<v1 stale='true'/>"), 0644))

		c := scan.Candidate{Folder: src, Name: "a.xml", Destination: out}
		for i := 0; i < 2; i++ {
			r := Copy{}.Apply(ctx, c)
			require.Equal(t, Succeeded, r.Outcome, "run %d: %s", i, r.Reason())
		}

		content, err := os.ReadFile(c.Target())
		require.NoError(t, err)
		assert.Equal(t, "<v2/>", string(content))
	})

	t.Run("vanished_source", func(t *testing.T) {
		c := scan.Candidate{Folder: t.TempDir(), Name: "gone.jpg", Destination: t.TempDir()}
		r := Copy{}.Apply(ctx, c)
		assert.Equal(t, NotFound, r.Outcome)
	})

	t.Run("unwritable_destination", func(t *testing.T) {
		src := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(src, "a.jpg"), []byte("a"), 0644))
		// destination folder path runs through a regular file
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		c := scan.Candidate{Folder: src, Name: "a.jpg", Destination: filepath.Join(blocker, "train")}
		r := Copy{}.Apply(ctx, c)
		assert.Equal(t, Failed, r.Outcome)
		assert.Contains(t, r.Reason(), "copying file")
	})

	t.Run("no_destination", func(t *testing.T) {
		r := Copy{}.Apply(ctx, scan.Candidate{Folder: t.TempDir(), Name: "a.jpg"})
		assert.Equal(t, Failed, r.Outcome)
	})
}
