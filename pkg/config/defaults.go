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

package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/fsx"
	"github.com/walteh/dsreduce/pkg/selection"
)

// 🔌 Parser is the interface for defaults file parsers
type Parser interface {
	// 📝 Parse parses the defaults from bytes
	Parse(ctx context.Context, data []byte) (*Defaults, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🗑️ DeleteDefaults holds defaults for delete runs
type DeleteDefaults struct {
	Ratio *float64 `json:"ratio,omitempty" yaml:"ratio,omitempty" hcl:"ratio,optional"`
}

// 📋 CopyDefaults holds defaults for copy runs
type CopyDefaults struct {
	Ratio  *float64 `json:"ratio,omitempty" yaml:"ratio,omitempty" hcl:"ratio,optional"`
	Output string   `json:"output,omitempty" yaml:"output,omitempty" hcl:"output,optional"`
}

// 📚 Defaults is the content of a defaults file. Every field is optional;
// explicit command line flags always win.
type Defaults struct {
	Workers    *int            `json:"workers,omitempty" yaml:"workers,omitempty" hcl:"workers,optional"`
	Mode       string          `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`
	Extensions []string        `json:"extensions,omitempty" yaml:"extensions,omitempty" hcl:"extensions,optional"`
	Ignore     []string        `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`
	Delete     *DeleteDefaults `json:"delete,omitempty" yaml:"delete,omitempty" hcl:"delete,block"`
	Copy       *CopyDefaults   `json:"copy,omitempty" yaml:"copy,omitempty" hcl:"copy,block"`
}

// 🎯 LoadDefaults reads and validates a defaults file
func LoadDefaults(ctx context.Context, path string) (*Defaults, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading defaults")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fsx.NotFoundError{Path: path, Kind: "config file", Err: err}
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, invalidf("config", "no parser found for file: %s", filepath.Base(path))
	}

	d, err := p.Parse(ctx, data)
	if err != nil {
		return nil, invalid("config", err)
	}

	if err := d.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	return d, nil
}

// 🔍 Validate checks the values a defaults file may set
func (d *Defaults) Validate() error {
	if d.Workers != nil && *d.Workers < 1 {
		return invalidf("workers", "must be at least 1, got %d", *d.Workers)
	}
	if d.Mode != "" {
		mode, err := selection.ParseMode(d.Mode)
		if err != nil {
			return invalid("mode", err)
		}
		d.Mode = string(mode)
	}
	if d.Delete != nil && d.Delete.Ratio != nil {
		if err := selection.ValidateRatio(*d.Delete.Ratio); err != nil {
			return invalid("delete.ratio", err)
		}
	}
	if d.Copy != nil && d.Copy.Ratio != nil {
		if err := selection.ValidateRatio(*d.Copy.Ratio); err != nil {
			return invalid("copy.ratio", err)
		}
	}
	for _, p := range d.Ignore {
		if !doublestar.ValidatePattern(p) {
			return invalidf("ignore", "bad pattern %q", p)
		}
	}
	return nil
}

// Ratio returns the file's ratio for action, if it sets one.
func (d *Defaults) Ratio(action Action) (float64, bool) {
	switch action {
	case ActionDelete:
		if d.Delete != nil && d.Delete.Ratio != nil {
			return *d.Delete.Ratio, true
		}
	case ActionCopy:
		if d.Copy != nil && d.Copy.Ratio != nil {
			return *d.Copy.Ratio, true
		}
	}
	return 0, false
}

// Output returns the file's copy output folder, if it sets one.
func (d *Defaults) Output() (string, bool) {
	if d.Copy != nil && d.Copy.Output != "" {
		return d.Copy.Output, true
	}
	return "", false
}
