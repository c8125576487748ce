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

// Package testutils builds small on-disk datasets for tests.
package testutils

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Context returns a background context carrying a logger that writes to t.
func Context(t testing.TB) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// WriteMasterList writes one entry per line to path.
func WriteMasterList(t testing.TB, path string, entries ...string) {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintln(&buf, e)
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644), "writing master list")
}

// WriteFiles creates dir and one small file per name inside it. Each file
// holds "content of <name>".
func WriteFiles(t testing.TB, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("content of "+n), 0644), "writing %s", n)
	}
}

// ListDir returns the sorted names of dir's direct children.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "listing %s", dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Dataset lays out the standard fixture and returns its root:
//
//	<root>/master.txt   images/a.jpg .. images/j.jpg
//	<root>/train/       a.jpg a.xml b.png d.jpg c.txt
//
// Selecting the first 30% of the list matches a.jpg, a.xml and b.png.
func Dataset(t testing.TB) string {
	t.Helper()
	root := t.TempDir()

	var entries []string
	for c := 'a'; c <= 'j'; c++ {
		entries = append(entries, fmt.Sprintf("images/%c.jpg", c))
	}
	WriteMasterList(t, filepath.Join(root, "master.txt"), entries...)
	WriteFiles(t, filepath.Join(root, "train"), "a.jpg", "a.xml", "b.png", "d.jpg", "c.txt")

	return root
}
