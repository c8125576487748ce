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
	"context"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/log"
	"github.com/walteh/dsreduce/pkg/report"
)

// 🏃 OperationRunner executes an operation and publishes its report
type OperationRunner struct {
	console    *log.Logger
	out        io.Writer
	reportPath string
}

// 🏗️ NewRunner creates a runner that renders the summary to out and, when
// reportPath is set, writes the JSON report there
func NewRunner(console *log.Logger, out io.Writer, reportPath string) *OperationRunner {
	if console == nil {
		console = log.Discard()
	}
	if out == nil {
		out = io.Discard
	}
	return &OperationRunner{
		console:    console,
		out:        out,
		reportPath: reportPath,
	}
}

// 🏃 Run executes op. The report is published even when the run was
// interrupted; in that case the interruption is still returned.
func (r *OperationRunner) Run(ctx context.Context, op Operation) (*report.Report, error) {
	rep, err := op.Execute(ctx)
	if rep == nil {
		return nil, err
	}

	r.console.LogNewline()
	rep.Render(r.out)

	if r.reportPath != "" {
		if werr := rep.WriteJSON(r.reportPath); werr != nil {
			if err == nil {
				return rep, errors.Errorf("publishing report: %w", werr)
			}
			zerolog.Ctx(ctx).Error().Err(werr).Msg("writing report")
		} else {
			r.console.Infof("report written to %s", r.reportPath)
		}
	}

	switch {
	case err != nil:
		r.console.Errorf("run interrupted: %d of %d files done before stopping", rep.Counts.Succeeded, rep.Queued)
	case rep.DryRun:
		r.console.Successf("plan complete: %d files would be processed", rep.Queued)
	case rep.HasFailures():
		r.console.Warningf("%d of %d files failed", rep.Counts.Failed, rep.Queued)
	default:
		r.console.Successf("%s complete: %d files", rep.Action, rep.Counts.Succeeded)
	}

	return rep, err
}
