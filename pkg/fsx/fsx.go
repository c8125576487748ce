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

package fsx

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// ErrNotFound is the sentinel for setup-time lookups (master list, target
// folders) that found nothing at the given path.
var ErrNotFound = errors.Base("not found")

// NotFoundError records what was looked up and where.
type NotFoundError struct {
	Path string
	Kind string // "file" or "directory"
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return e.Kind + " " + e.Path + ": " + ErrNotFound.Error() + ": " + e.Err.Error()
	}
	return e.Kind + " " + e.Path + ": " + ErrNotFound.Error()
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNotFound, e.Err}
	}
	return []error{ErrNotFound}
}

// IsNotFound reports whether err is (or wraps) a setup-time NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// RequireDir returns a *NotFoundError if path is missing or is not a directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path, Kind: "directory"}
		}
		return errors.Errorf("checking directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return &NotFoundError{Path: path, Kind: "directory", Err: errors.New("not a directory")}
	}
	return nil
}

// CopyFile copies src to dst, creating parent directories of dst as needed.
// The bytes land in a temp file next to dst which is then renamed over dst,
// so readers never observe a half-written destination. Mode and modification
// time are carried over from src.
//
// A missing source is reported as an error wrapping fs.ErrNotExist.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return errors.Errorf("stat source file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("source %s is not a regular file", src)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, srcFile); err != nil {
		return errors.Errorf("copying file content: %w", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return errors.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("setting modification time: %w", err)
	}

	return nil
}

// WriteFileAtomic writes content to path through a temp file + rename,
// creating parent directories first.
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return errors.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
