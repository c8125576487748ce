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

// Package scan walks target folders once each and turns the files whose base
// identifier was selected into candidates for the dispatcher.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/dsreduce/pkg/fsx"
	"github.com/walteh/dsreduce/pkg/masterlist"
	"github.com/walteh/dsreduce/pkg/selection"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are the dataset file kinds acted on unless overridden.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".xml"}

// Lister is the filesystem seam used by the scanner.
type Lister interface {
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
}

// OSLister lists the real filesystem.
type OSLister struct{}

func (OSLister) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (OSLister) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }

// Folder is a source folder and, for copy runs, where its files go.
type Folder struct {
	Path        string
	Destination string
}

// Candidate is one file that matched both the extension filter and the
// selection set.
type Candidate struct {
	Folder      string
	Name        string
	Destination string
}

// Source is the full path of the matched file.
func (c Candidate) Source() string { return filepath.Join(c.Folder, c.Name) }

// Target is the copy destination, empty when the candidate has none.
func (c Candidate) Target() string {
	if c.Destination == "" {
		return ""
	}
	return filepath.Join(c.Destination, c.Name)
}

// Skipped counts direct children that were not emitted, by reason.
type Skipped struct {
	NotRegular int `json:"not_regular"`
	Extension  int `json:"extension"`
	Unselected int `json:"unselected"`
	Ignored    int `json:"ignored"`
}

// FolderResult is what one pass over one folder produced.
type FolderResult struct {
	Folder     Folder
	Scanned    int
	Candidates []Candidate
	Skipped    Skipped
	Duration   time.Duration
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions replaces the allowed extension set. Comparison is
// case-insensitive; a missing leading dot is added.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) {
		s.exts = make(map[string]struct{}, len(exts))
		for _, e := range exts {
			if e = NormalizeExtension(e); e != "" {
				s.exts[e] = struct{}{}
			}
		}
	}
}

// WithIgnorePatterns skips files whose name matches any doublestar pattern.
func WithIgnorePatterns(patterns ...string) Option {
	return func(s *Scanner) { s.ignore = append(s.ignore, patterns...) }
}

// WithLister swaps the filesystem used for listing.
func WithLister(l Lister) Option {
	return func(s *Scanner) { s.lister = l }
}

// WithConcurrency bounds how many folders ScanAll lists at once.
func WithConcurrency(n int) Option {
	return func(s *Scanner) { s.concurrency = n }
}

// WithFolderHook calls fn from ScanAll as soon as each folder is done, in
// completion order. fn may be called from several goroutines at once.
func WithFolderHook(fn func(context.Context, FolderResult)) Option {
	return func(s *Scanner) { s.onFolder = fn }
}

// Scanner holds the filters applied to every folder.
type Scanner struct {
	exts        map[string]struct{}
	ignore      []string
	lister      Lister
	concurrency int
	onFolder    func(context.Context, FolderResult)
}

// New builds a scanner with the default extensions and the OS lister.
func New(opts ...Option) (*Scanner, error) {
	s := &Scanner{lister: OSLister{}, concurrency: 1}
	WithExtensions(DefaultExtensions...)(s)
	for _, opt := range opts {
		opt(s)
	}

	for _, p := range s.ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid ignore pattern %q", p)
		}
	}
	if len(s.exts) == 0 {
		return nil, errors.New("at least one extension is required")
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s, nil
}

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Extensions returns the allowed extensions, sorted.
func (s *Scanner) Extensions() []string {
	out := make([]string, 0, len(s.exts))
	for e := range s.exts {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// ScanFolder lists folder exactly once and emits a candidate for every
// regular file with an allowed extension whose base identifier is in set.
// Subdirectories are not descended into.
func (s *Scanner) ScanFolder(ctx context.Context, folder Folder, set selection.Set) (FolderResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("folder", folder.Path).Logger()
	started := time.Now()

	info, err := s.lister.Stat(folder.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FolderResult{}, &fsx.NotFoundError{Path: folder.Path, Kind: "directory"}
		}
		return FolderResult{}, errors.Errorf("checking folder %s: %w", folder.Path, err)
	}
	if !info.IsDir() {
		return FolderResult{}, &fsx.NotFoundError{Path: folder.Path, Kind: "directory", Err: errors.New("not a directory")}
	}

	logger.Debug().Msg("scanning folder")

	entries, err := s.lister.ReadDir(folder.Path)
	if err != nil {
		return FolderResult{}, errors.Errorf("listing folder %s: %w", folder.Path, err)
	}

	res := FolderResult{Folder: folder, Scanned: len(entries)}
	for _, d := range entries {
		name := d.Name()
		if d.IsDir() {
			res.Skipped.NotRegular++
			continue
		}

		base, ext := masterlist.SplitExt(name)
		if _, ok := s.exts[strings.ToLower(ext)]; !ok {
			res.Skipped.Extension++
			continue
		}
		if !set.Has(base) {
			res.Skipped.Unselected++
			continue
		}
		if !s.isRegular(folder.Path, d) {
			res.Skipped.NotRegular++
			continue
		}
		if s.isIgnored(&logger, name) {
			res.Skipped.Ignored++
			continue
		}

		res.Candidates = append(res.Candidates, Candidate{
			Folder:      folder.Path,
			Name:        name,
			Destination: folder.Destination,
		})
	}

	sort.Slice(res.Candidates, func(i, j int) bool { return res.Candidates[i].Name < res.Candidates[j].Name })
	res.Duration = time.Since(started)

	logger.Debug().
		Int("scanned", res.Scanned).
		Int("candidates", len(res.Candidates)).
		Dur("duration", res.Duration).
		Msg("folder scanned")

	return res, nil
}

// ScanAll scans every folder, several at a time. Results keep the order of
// folders. The first setup error (missing folder, unreadable folder) fails
// the whole call.
func (s *Scanner) ScanAll(ctx context.Context, folders []Folder, set selection.Set) ([]FolderResult, error) {
	results := make([]FolderResult, len(folders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, folder := range folders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.ScanFolder(gctx, folder, set)
			if err != nil {
				return err
			}
			results[i] = res
			if s.onFolder != nil {
				s.onFolder(gctx, res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// isRegular follows symlinks once so a link to a regular file counts as one.
func (s *Scanner) isRegular(dir string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := s.lister.Stat(filepath.Join(dir, d.Name()))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (s *Scanner) isIgnored(logger *zerolog.Logger, name string) bool {
	for _, pattern := range s.ignore {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			logger.Debug().Str("pattern", pattern).Str("file", name).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			logger.Debug().Str("file", name).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}
	return false
}
