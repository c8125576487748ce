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

	"github.com/walteh/dsreduce/pkg/dispatch"
	"github.com/walteh/dsreduce/pkg/report"
)

// 📦 NewCopyOperation creates an operation that copies every matching file
// into <output>/<folder name>
func NewCopyOperation(opts Options) Operation {
	return &copyOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

type copyOperation struct {
	BaseOperation
}

// 🏃 Execute runs the copy operation
func (op *copyOperation) Execute(ctx context.Context) (*report.Report, error) {
	return op.run(ctx, dispatch.Copy{}, false)
}
