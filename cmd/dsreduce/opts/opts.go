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

package opts

import (
	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/log"
)

// RootOpts contains shared options used by all commands. It is filled in by
// the root command before any subcommand runs.
type RootOpts struct {
	Console        *log.Logger
	Defaults       *config.Defaults // nil when no --config was given
	ReportPath     string
	Extensions     []string
	IgnorePatterns []string
	Progress       bool
	Debug          bool
}

// Workers returns the defaults file's worker count, if any.
func (o *RootOpts) Workers() (int, bool) {
	if o.Defaults == nil || o.Defaults.Workers == nil {
		return 0, false
	}
	return *o.Defaults.Workers, true
}
