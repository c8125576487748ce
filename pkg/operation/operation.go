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
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/config"
	"github.com/walteh/dsreduce/pkg/dispatch"
	"github.com/walteh/dsreduce/pkg/fsx"
	"github.com/walteh/dsreduce/pkg/log"
	"github.com/walteh/dsreduce/pkg/masterlist"
	"github.com/walteh/dsreduce/pkg/report"
	"github.com/walteh/dsreduce/pkg/scan"
	"github.com/walteh/dsreduce/pkg/selection"
)

var errNoConfig = errors.New("operation has no configuration")

// 🎯 Operation is one run of the engine
type Operation interface {
	// Execute runs the operation. A report is returned whenever the run got
	// as far as scanning, even if it was then interrupted.
	Execute(ctx context.Context) (*report.Report, error)
}

// ⚙️ Options configures an operation
type Options struct {
	Config  *config.Config   // validated run configuration
	Console *log.Logger      // user facing output, nil prints nothing
	Tracker dispatch.Tracker // progress, nil tracks nothing
	Lister  scan.Lister      // directory access, nil uses the OS
	Verbose bool             // print one line per processed file
}

// 🏗️ BaseOperation holds what every operation shares
type BaseOperation struct {
	Config  *config.Config
	Console *log.Logger
	Tracker dispatch.Tracker
	Lister  scan.Lister
	Verbose bool
}

// 🏭 NewBaseOperation fills in defaults for unset options
func NewBaseOperation(opts Options) BaseOperation {
	console := opts.Console
	if console == nil {
		console = log.Discard()
	}
	return BaseOperation{
		Config:  opts.Config,
		Console: console,
		Tracker: opts.Tracker,
		Lister:  opts.Lister,
		Verbose: opts.Verbose,
	}
}

// actionFor maps a configured action to its implementation.
func actionFor(a config.Action) (dispatch.Action, error) {
	switch a {
	case config.ActionDelete:
		return dispatch.Delete{}, nil
	case config.ActionCopy:
		return dispatch.Copy{}, nil
	default:
		return nil, &config.ValidationError{Field: "action", Err: errors.Errorf("unknown action %q", string(a))}
	}
}

// run is the whole pipeline: load, select, scan every folder once, then
// dispatch unless dryRun is set.
func (op *BaseOperation) run(ctx context.Context, action dispatch.Action, dryRun bool) (*report.Report, error) {
	if op.Config == nil {
		return nil, errNoConfig
	}
	cfg := op.Config
	started := time.Now()

	logger := zerolog.Ctx(ctx).With().Str("action", action.Name()).Logger()
	ctx = logger.WithContext(ctx)

	entries, err := masterlist.Load(ctx, cfg.Master)
	if err != nil {
		return nil, errors.Errorf("loading master list: %w", err)
	}

	sel, err := selection.Select(entries, cfg.Ratio, cfg.Mode)
	if err != nil {
		return nil, &config.ValidationError{Field: "selection", Err: err}
	}

	if sel.Empty() {
		op.Console.Warningf("empty selection: %s %g of %d entries selects nothing", sel.Mode, sel.Ratio, sel.Total)
	} else {
		op.Console.Infof("selected %d identifiers from %d of %d entries (%s)", sel.Set.Len(), sel.Taken, sel.Total, sel.Mode)
	}

	folders, err := op.resolveFolders(ctx)
	if err != nil {
		return nil, err
	}

	scanner, err := op.newScanner()
	if err != nil {
		return nil, err
	}

	scanStarted := time.Now()
	scanned, err := scanner.ScanAll(ctx, folders, sel.Set)
	if err != nil {
		return nil, errors.Errorf("scanning folders: %w", err)
	}
	scanDuration := time.Since(scanStarted)

	var candidates []scan.Candidate
	for _, fr := range scanned {
		candidates = append(candidates, fr.Candidates...)
	}

	in := report.Input{
		Action:       action.Name(),
		DryRun:       dryRun,
		Master:       cfg.Master,
		Selection:    sel,
		Folders:      scanned,
		StartedAt:    started,
		ScanDuration: scanDuration,
	}

	if dryRun {
		in.FinishedAt = time.Now()
		return report.Build(in), nil
	}

	opts := []dispatch.Option{dispatch.WithTracker(op.Tracker)}
	if op.Verbose {
		opts = append(opts, dispatch.WithResultHook(func(r dispatch.Result) {
			op.Console.LogFileOperation(ctx, log.FileOperation{
				Path:    r.Candidate.Source(),
				Action:  action.Name(),
				Outcome: r.Outcome.String(),
				Reason:  r.Reason(),
			})
		}))
	}

	dispatchStarted := time.Now()
	in.Results = dispatch.New(cfg.Workers, opts...).Run(ctx, action, candidates)
	in.DispatchDuration = time.Since(dispatchStarted)
	in.FinishedAt = time.Now()

	rep := report.Build(in)
	logger.Info().
		Int("succeeded", rep.Counts.Succeeded).
		Int("not_found", rep.Counts.NotFound).
		Int("failed", rep.Counts.Failed).
		Dur("duration", in.FinishedAt.Sub(started)).
		Msg("run complete")

	if err := ctx.Err(); err != nil {
		return rep, errors.Errorf("run interrupted: %w", err)
	}
	return rep, nil
}

// resolveFolders returns the folders to scan. Folders named explicitly must
// exist, and ScanAll fails on them otherwise. Defaulted copy folders that do
// not exist are skipped.
func (op *BaseOperation) resolveFolders(ctx context.Context) ([]scan.Folder, error) {
	folders := op.Config.ScanFolders()
	if !op.Config.FoldersDefaulted {
		return folders, nil
	}

	kept := folders[:0]
	for _, f := range folders {
		if err := fsx.RequireDir(f.Path); err != nil {
			if fsx.IsNotFound(err) {
				op.Console.Warningf("skipping missing split folder %s", f.Path)
				continue
			}
			return nil, errors.Errorf("checking folder %s: %w", f.Path, err)
		}
		kept = append(kept, f)
	}

	if len(kept) == 0 {
		parent := filepath.Dir(op.Config.Master)
		return nil, &fsx.NotFoundError{Path: parent, Kind: "train/val/test folders"}
	}

	zerolog.Ctx(ctx).Debug().Int("folders", len(kept)).Msg("using default split folders")
	return kept, nil
}

func (op *BaseOperation) newScanner() (*scan.Scanner, error) {
	opts := []scan.Option{
		scan.WithConcurrency(op.Config.Workers),
		scan.WithFolderHook(func(ctx context.Context, fr scan.FolderResult) {
			op.Console.LogFolder(ctx, log.FolderOperation{
				Path:        fr.Folder.Path,
				Destination: fr.Folder.Destination,
				Scanned:     fr.Scanned,
				Candidates:  len(fr.Candidates),
			})
		}),
	}
	if len(op.Config.Extensions) > 0 {
		opts = append(opts, scan.WithExtensions(op.Config.Extensions...))
	}
	if len(op.Config.IgnorePatterns) > 0 {
		opts = append(opts, scan.WithIgnorePatterns(op.Config.IgnorePatterns...))
	}
	if op.Lister != nil {
		opts = append(opts, scan.WithLister(op.Lister))
	}

	scanner, err := scan.New(opts...)
	if err != nil {
		return nil, &config.ValidationError{Field: "scanner", Err: err}
	}
	return scanner, nil
}
