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

// Package selection picks the contiguous slice of the master list that a run
// acts on. Everything here is pure: no I/O, same inputs give the same set.
package selection

import (
	"math"
	"sort"
	"strings"

	"github.com/walteh/dsreduce/pkg/masterlist"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrInvalidRatio = errors.Base("ratio must be within [0, 1]")
	ErrInvalidMode  = errors.Base("mode must be first or last")
)

// Mode is the end of the list the slice is taken from.
type Mode string

const (
	First Mode = "first"
	Last  Mode = "last"
)

// ParseMode accepts "first" or "last" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case First:
		return First, nil
	case Last:
		return Last, nil
	default:
		return "", errors.Errorf("%w: got %q", ErrInvalidMode, s)
	}
}

func (m Mode) String() string { return string(m) }

// ValidateRatio rejects anything that is not a finite number in [0, 1].
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return errors.Errorf("%w: got %v", ErrInvalidRatio, ratio)
	}
	return nil
}

// countEpsilon absorbs binary rounding so 100*0.57 floors to 57, not 56.
const countEpsilon = 1e-9

// Count returns floor(total * ratio) clamped to [0, total].
func Count(total int, ratio float64) int {
	k := int(math.Floor(float64(total)*ratio + countEpsilon))
	if k < 0 {
		return 0
	}
	if k > total {
		return total
	}
	return k
}

// Window returns the half-open index range [start, end) of the selected
// entries. k == 0 is an empty window for both modes.
func Window(total int, ratio float64, mode Mode) (start, end int) {
	k := Count(total, ratio)
	if mode == Last {
		return total - k, total
	}
	return 0, k
}

// Set is a read-only set of base identifiers once built.
type Set struct {
	ids map[string]struct{}
}

// NewSet builds a set from identifiers, collapsing duplicates.
func NewSet(ids ...string) Set {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return Set{ids: m}
}

// Has reports membership.
func (s Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len is the number of unique identifiers.
func (s Set) Len() int { return len(s.ids) }

// Sorted returns the identifiers in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Selection is the outcome of Select.
type Selection struct {
	Set   Set
	Total int     // entries in the master list
	Taken int     // entries in the window, before de-duplication
	Start int     // first index of the window
	Ratio float64 // requested ratio
	Mode  Mode
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool { return s.Set.Len() == 0 }

// Select takes the window of entries described by ratio and mode and reduces
// it to the set of base identifiers.
func Select(entries []masterlist.Entry, ratio float64, mode Mode) (Selection, error) {
	if err := ValidateRatio(ratio); err != nil {
		return Selection{}, err
	}
	if mode != First && mode != Last {
		return Selection{}, errors.Errorf("%w: got %q", ErrInvalidMode, string(mode))
	}

	start, end := Window(len(entries), ratio, mode)
	ids := make([]string, 0, end-start)
	for _, e := range entries[start:end] {
		ids = append(ids, e.ID)
	}

	return Selection{
		Set:   NewSet(ids...),
		Total: len(entries),
		Taken: end - start,
		Start: start,
		Ratio: ratio,
		Mode:  mode,
	}, nil
}
