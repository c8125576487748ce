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
	"github.com/walteh/dsreduce/pkg/scan"
)

// 📊 Outcome is the three-way result of applying an action to a candidate
type Outcome int

const (
	Succeeded Outcome = iota // action applied
	NotFound                 // file vanished between scan and action
	Failed                   // any other error
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Result is the outcome for one candidate
type Result struct {
	Candidate scan.Candidate
	Outcome   Outcome
	Err       error // cause, set for Failed (and for NotFound when known)
}

// Reason is the recorded cause as text, empty when there is none.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// 🧮 Counts tallies results by outcome
type Counts struct {
	Succeeded int `json:"succeeded"`
	NotFound  int `json:"not_found"`
	Failed    int `json:"failed"`
}

// Total is the number of results counted.
func (c Counts) Total() int { return c.Succeeded + c.NotFound + c.Failed }

// Add records one outcome.
func (c *Counts) Add(o Outcome) {
	switch o {
	case Succeeded:
		c.Succeeded++
	case NotFound:
		c.NotFound++
	default:
		c.Failed++
	}
}

// Tally counts results by outcome.
func Tally(results []Result) Counts {
	var c Counts
	for _, r := range results {
		c.Add(r.Outcome)
	}
	return c
}
