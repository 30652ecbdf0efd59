// Package section assigns document offsets to level-2 sections and enforces
// a per-section link quota.
package section

import "sort"

// Lead is the index of the zone before the first level-2 heading.
const Lead = -1

// DefaultMaxPerSection is the default per-section quota.
const DefaultMaxPerSection = 2

// Index returns the number of heading starts at or before offset, minus one.
// headingStarts must be sorted ascending.
func Index(headingStarts []int, offset int) int {
	return sort.SearchInts(headingStarts, offset+1) - 1
}

// Tracker counts insertions per section.
type Tracker struct {
	limit  int
	counts map[int]int
}

// NewTracker creates a Tracker allowing limit insertions per section.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultMaxPerSection
	}
	return &Tracker{limit: limit, counts: make(map[int]int)}
}

// Allow reports whether section still has room.
func (t *Tracker) Allow(section int) bool {
	return t.counts[section] < t.limit
}

// Record counts one insertion in section.
func (t *Tracker) Record(section int) {
	t.counts[section]++
}

// Count returns the insertions recorded for section.
func (t *Tracker) Count(section int) int {
	return t.counts[section]
}

// Distribution returns a copy of the per-section counts.
func (t *Tracker) Distribution() map[int]int {
	out := make(map[int]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}
