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

// Package masterlist reads the ordered list of dataset entries that drives
// selection. Order is significant: it decides what "first" and "last" mean.
package masterlist

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/dsreduce/pkg/fsx"
	"gitlab.com/tozd/go/errors"
)

// Entry is one non-blank line of the master list.
type Entry struct {
	Raw string // trimmed line as it appears in the file
	ID  string // base identifier: no directory, no extension
}

// Load reads the master list at path.
func Load(ctx context.Context, path string) ([]Entry, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading master list")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &fsx.NotFoundError{Path: path, Kind: "file"}
		}
		return nil, errors.Errorf("reading master list: %w", err)
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, errors.Errorf("reading master list %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("entries", len(entries)).Msg("master list loaded")
	return entries, nil
}

// Read parses master list lines from r. Blank lines are dropped and do not
// count toward the total.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if raw := strings.TrimSpace(line); raw != "" {
			entries = append(entries, Entry{Raw: raw, ID: BaseIdentifier(raw)})
		}
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, errors.Errorf("reading line %d: %w", len(entries)+1, err)
		}
	}
}

// BaseIdentifier strips the directory and the final extension from p.
// Both '/' and '\' count as separators so lists produced on either platform
// resolve the same way.
func BaseIdentifier(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		p = p[i+1:]
	}
	base, _ := SplitExt(p)
	return base
}

// SplitExt splits a file name into base and extension (extension keeps its
// dot). Leading dots never start an extension, so ".hidden" has none.
func SplitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.TrimLeft(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}
