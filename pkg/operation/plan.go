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

	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/report"
)

// 🔍 NewPlanOperation creates an operation that selects and scans like the
// configured action would, but touches no files
func NewPlanOperation(opts Options) Operation {
	return &planOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

type planOperation struct {
	BaseOperation
}

func (op *planOperation) Execute(ctx context.Context) (*report.Report, error) {
	if op.Config == nil {
		return nil, errNoConfig
	}
	action, err := actionFor(op.Config.Action)
	if err != nil {
		return nil, err
	}
	return op.run(ctx, action, true)
}

// New picks the operation for cfg: a plan when cfg.DryRun is set, otherwise
// the configured action.
func New(opts Options) (Operation, error) {
	if opts.Config == nil {
		return nil, errNoConfig
	}
	if opts.Config.DryRun {
		return NewPlanOperation(opts), nil
	}
	switch opts.Config.Action {
	case config.ActionDelete:
		return NewDeleteOperation(opts), nil
	case config.ActionCopy:
		return NewCopyOperation(opts), nil
	}
	_, err := actionFor(opts.Config.Action)
	return nil, err
}
