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
	"context"
	"io/fs"
	"os"

	"github.com/walteh/dsreduce/pkg/fsx"
	"github.com/walteh/dsreduce/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Action is applied once per candidate. Implementations must be safe for
// concurrent use and must classify their own errors.
type Action interface {
	Name() string
	Apply(ctx context.Context, c scan.Candidate) Result
}

// classify maps an error to an outcome; fs.ErrNotExist is the only
// non-failure.
func classify(c scan.Candidate, err error) Result {
	switch {
	case err == nil:
		return Result{Candidate: c, Outcome: Succeeded}
	case errors.Is(err, fs.ErrNotExist):
		return Result{Candidate: c, Outcome: NotFound, Err: err}
	default:
		return Result{Candidate: c, Outcome: Failed, Err: err}
	}
}

// 🗑️ Delete removes the candidate's source file.
type Delete struct{}

func (Delete) Name() string { return "delete" }

func (Delete) Apply(ctx context.Context, c scan.Candidate) Result {
	if err := os.Remove(c.Source()); err != nil {
		return classify(c, errors.Errorf("deleting file: %w", err))
	}
	return classify(c, nil)
}

// 📦 Copy copies the candidate's source into its destination folder,
// overwriting an existing file there.
type Copy struct{}

func (Copy) Name() string { return "copy" }

func (Copy) Apply(ctx context.Context, c scan.Candidate) Result {
	if c.Destination == "" {
		return Result{Candidate: c, Outcome: Failed, Err: errors.Errorf("no destination for %s", c.Source())}
	}
	if err := fsx.CopyFile(c.Source(), c.Target()); err != nil {
		// CopyFile creates missing parents; ErrNotExist means the source vanished
		return classify(c, errors.Errorf("copying file: %w", err))
	}
	return classify(c, nil)
}
