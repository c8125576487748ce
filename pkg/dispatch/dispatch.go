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

// Package dispatch applies one action to every candidate with a fixed pool of
// workers. Per-candidate failures are recorded, never propagated: the queue
// is always drained and every candidate gets exactly one Result.
package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/walteh/dsreduce/pkg/scan"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 4

// 📈 Tracker receives progress while the queue drains. Calls may come from
// several workers at once.
type Tracker interface {
	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

type nopTracker struct{}

func (nopTracker) StartOperation(context.Context, int) {}
func (nopTracker) UpdateProgress(context.Context, int) {}
func (nopTracker) FinishOperation(context.Context)     {}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTracker reports progress to t.
func WithTracker(t Tracker) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracker = t
		}
	}
}

// WithResultHook calls fn after each candidate completes, from the worker
// that ran it.
func WithResultHook(fn func(Result)) Option {
	return func(d *Dispatcher) { d.onResult = fn }
}

// 🏃 Dispatcher runs actions over candidates
type Dispatcher struct {
	workers  int
	tracker  Tracker
	onResult func(Result)
}

// 🏗️ New creates a dispatcher with the given pool size (values < 1 fall back
// to DefaultWorkers)
func New(workers int, opts ...Option) *Dispatcher {
	if workers < 1 {
		workers = DefaultWorkers
	}
	d := &Dispatcher{workers: workers, tracker: nopTracker{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Workers is the pool size.
func (d *Dispatcher) Workers() int { return d.workers }

// Run applies action to every candidate and returns one result per
// candidate, in candidate order. Completion order across workers is
// unspecified. Once ctx is done, remaining candidates are recorded as Failed
// without being attempted.
func (d *Dispatcher) Run(ctx context.Context, action Action, candidates []scan.Candidate) []Result {
	logger := zerolog.Ctx(ctx)
	results := make([]Result, len(candidates))
	if len(candidates) == 0 {
		logger.Debug().Str("action", action.Name()).Msg("nothing to dispatch")
		return results
	}

	workers := min(d.workers, len(candidates))
	logger.Debug().
		Str("action", action.Name()).
		Int("candidates", len(candidates)).
		Int("workers", workers).
		Msg("dispatching")

	d.tracker.StartOperation(ctx, len(candidates))
	defer d.tracker.FinishOperation(ctx)

	var processed atomic.Int64
	queue := make(chan int)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range queue {
				r := d.applyOne(ctx, action, candidates[i])
				results[i] = r

				if r.Outcome == Failed {
					logger.Debug().Str("file", r.Candidate.Source()).Err(r.Err).Msg("action failed")
				}
				if d.onResult != nil {
					d.onResult(r)
				}
				d.tracker.UpdateProgress(ctx, int(processed.Add(1)))
			}
			return nil
		})
	}

	for i := range candidates {
		queue <- i
	}
	close(queue)
	_ = g.Wait()

	return results
}

// applyOne isolates a single candidate: context cancellation and panics
// become Failed results for that candidate only.
func (d *Dispatcher) applyOne(ctx context.Context, action Action, c scan.Candidate) (r Result) {
	if err := ctx.Err(); err != nil {
		return Result{Candidate: c, Outcome: Failed, Err: errors.Errorf("not attempted: %w", err)}
	}

	defer func() {
		if p := recover(); p != nil {
			r = Result{Candidate: c, Outcome: Failed, Err: errors.Errorf("%s panicked: %s", action.Name(), fmt.Sprint(p))}
		}
	}()

	r = action.Apply(ctx, c)
	r.Candidate = c
	return r
}
