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

// Package report summarizes a run: what was selected, what each folder scan
// found and how every queued file ended up.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/dsreduce/pkg/dispatch"
	"github.com/walteh/dsreduce/pkg/fsx"
	"github.com/walteh/dsreduce/pkg/scan"
	"github.com/walteh/dsreduce/pkg/selection"
)

// maxRenderedIssues bounds the per-file issue list printed by Render. The
// JSON report always carries all of them.
const maxRenderedIssues = 20

// Report is the read model of one run.
type Report struct {
	Action string `json:"action"`
	DryRun bool   `json:"dry_run"`

	Master      string  `json:"master"`
	MasterTotal int     `json:"master_total"`
	Mode        string  `json:"mode"`
	Ratio       float64 `json:"ratio"`
	Taken       int     `json:"taken"`
	Selected    int     `json:"selected"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	ScanMS     int64     `json:"scan_ms"`
	DispatchMS int64     `json:"dispatch_ms"`

	Folders []Folder        `json:"folders"`
	Queued  int             `json:"queued"`
	Counts  dispatch.Counts `json:"counts"`
	Issues  []Issue         `json:"issues"`
}

// Folder is the per-folder part of a report.
type Folder struct {
	Path        string          `json:"path"`
	Destination string          `json:"destination,omitempty"`
	Scanned     int             `json:"scanned"`
	Candidates  int             `json:"candidates"`
	Skipped     scan.Skipped    `json:"skipped"`
	Counts      dispatch.Counts `json:"counts"`
	ScanMS      int64           `json:"scan_ms"`
}

// Issue is a file whose action did not succeed.
type Issue struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// Input is everything Build needs.
type Input struct {
	Action    string
	DryRun    bool
	Master    string
	Selection selection.Selection

	Folders []scan.FolderResult
	Results []dispatch.Result

	StartedAt        time.Time
	FinishedAt       time.Time
	ScanDuration     time.Duration
	DispatchDuration time.Duration
}

// Build assembles a report. Counts are always derived from the results.
func Build(in Input) *Report {
	r := &Report{
		Action:      in.Action,
		DryRun:      in.DryRun,
		Master:      in.Master,
		MasterTotal: in.Selection.Total,
		Mode:        in.Selection.Mode.String(),
		Ratio:       in.Selection.Ratio,
		Taken:       in.Selection.Taken,
		Selected:    in.Selection.Set.Len(),
		StartedAt:   in.StartedAt.UTC(),
		FinishedAt:  in.FinishedAt.UTC(),
		ScanMS:      in.ScanDuration.Milliseconds(),
		DispatchMS:  in.DispatchDuration.Milliseconds(),
		Folders:     make([]Folder, 0, len(in.Folders)),
		Issues:      []Issue{},
	}

	index := make(map[string]int, len(in.Folders))
	for i, fr := range in.Folders {
		index[fr.Folder.Path] = i
		r.Folders = append(r.Folders, Folder{
			Path:        fr.Folder.Path,
			Destination: fr.Folder.Destination,
			Scanned:     fr.Scanned,
			Candidates:  len(fr.Candidates),
			Skipped:     fr.Skipped,
			ScanMS:      fr.Duration.Milliseconds(),
		})
		r.Queued += len(fr.Candidates)
	}

	for _, res := range in.Results {
		r.Counts.Add(res.Outcome)
		if i, ok := index[res.Candidate.Folder]; ok {
			r.Folders[i].Counts.Add(res.Outcome)
		}
		if res.Outcome != dispatch.Succeeded {
			r.Issues = append(r.Issues, Issue{
				Path:    res.Candidate.Source(),
				Outcome: res.Outcome.String(),
				Reason:  res.Reason(),
			})
		}
	}

	sort.SliceStable(r.Issues, func(i, j int) bool { return r.Issues[i].Path < r.Issues[j].Path })

	return r
}

// HasFailures reports whether any file ended in Failed. NotFound is not a
// failure.
func (r *Report) HasFailures() bool { return r.Counts.Failed > 0 }

// WriteJSON writes the report as indented JSON, replacing path atomically.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')

	if err := fsx.WriteFileAtomic(path, data); err != nil {
		return errors.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// Render prints a human summary.
func (r *Report) Render(w io.Writer) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	title := r.Action
	if r.DryRun {
		title += " (plan)"
	}
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Summary"), faint.Sprint("• "+title))
	fmt.Fprintf(w, "  master    %s\n", r.Master)
	fmt.Fprintf(w, "  selection %s %.0f%% of %d entries: %d taken, %d unique\n",
		r.Mode, r.Ratio*100, r.MasterTotal, r.Taken, r.Selected)

	for _, f := range r.Folders {
		target := f.Path
		if f.Destination != "" {
			target += " → " + f.Destination
		}
		fmt.Fprintf(w, "  %s %s\n", color.New(color.FgMagenta).Sprint("◆"), target)
		fmt.Fprintf(w, "      scanned %d, queued %d, skipped %d (%d extension, %d unselected, %d not regular, %d ignored)\n",
			f.Scanned, f.Candidates,
			f.Skipped.Extension+f.Skipped.Unselected+f.Skipped.NotRegular+f.Skipped.Ignored,
			f.Skipped.Extension, f.Skipped.Unselected, f.Skipped.NotRegular, f.Skipped.Ignored)
	}

	if r.DryRun {
		fmt.Fprintf(w, "  %s %d files would be processed\n", bold.Sprint("queued"), r.Queued)
		return
	}

	fmt.Fprintf(w, "  %s %s  %s  %s\n",
		bold.Sprint("outcome"),
		green.Sprintf("%d succeeded", r.Counts.Succeeded),
		yellow.Sprintf("%d not found", r.Counts.NotFound),
		red.Sprintf("%d failed", r.Counts.Failed))

	for i, is := range r.Issues {
		if i == maxRenderedIssues {
			fmt.Fprintf(w, "    %s\n", faint.Sprintf("... and %d more", len(r.Issues)-maxRenderedIssues))
			break
		}
		line := fmt.Sprintf("%-9s %s", is.Outcome, is.Path)
		if is.Reason != "" {
			line += ": " + is.Reason
		}
		if is.Outcome == dispatch.Failed.String() {
			fmt.Fprintf(w, "    %s\n", red.Sprint(line))
		} else {
			fmt.Fprintf(w, "    %s\n", yellow.Sprint(line))
		}
	}
}
