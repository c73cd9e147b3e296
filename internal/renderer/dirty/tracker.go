// Package dirty tracks invalidated line ranges between redraw cycles.
// The highlight engine requests invalidation here when edits or reparses
// land; the renderer drains the tracker to decide which rows to redraw.
package dirty

import (
	"sort"
	"sync"
)

// Span is a half-open dirty row interval [Start, End).
type Span struct {
	Start, End int
}

// IsEmpty returns true if the span covers no rows.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// ContainsRow returns true if the span covers the given row.
func (s Span) ContainsRow(row int) bool {
	return row >= s.Start && row < s.End
}

// overlapsOrTouches returns true if two spans can be merged.
func (s Span) overlapsOrTouches(other Span) bool {
	return s.Start <= other.End && other.Start <= s.End
}

// merge unions two overlapping or adjacent spans.
func (s Span) merge(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Tracker accumulates dirty row spans, coalescing as they arrive.
type Tracker struct {
	mu    sync.Mutex
	spans []Span
	all   bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{spans: make([]Span, 0, 8)}
}

// InvalidateRows marks the rows [start, end) dirty. Implements the
// highlight engine's Invalidator contract.
func (t *Tracker) InvalidateRows(start, end int) {
	if end <= start {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.all {
		return
	}

	add := Span{Start: start, End: end}
	for i := 0; i < len(t.spans); i++ {
		if t.spans[i].overlapsOrTouches(add) {
			add = t.spans[i].merge(add)
			t.spans = append(t.spans[:i], t.spans[i+1:]...)
			i--
		}
	}
	t.spans = append(t.spans, add)
}

// InvalidateAll marks every row dirty.
func (t *Tracker) InvalidateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.all = true
	t.spans = t.spans[:0]
}

// IsDirty returns true if anything needs redrawing.
func (t *Tracker) IsDirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.all || len(t.spans) > 0
}

// IsRowDirty returns true if the given row needs redrawing.
func (t *Tracker) IsRowDirty(row int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.all {
		return true
	}
	for _, s := range t.spans {
		if s.ContainsRow(row) {
			return true
		}
	}
	return false
}

// NeedsFullRedraw returns true if every row was invalidated.
func (t *Tracker) NeedsFullRedraw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.all
}

// Take returns the accumulated spans sorted by start row and resets the
// tracker. After InvalidateAll it returns nil with full = true.
func (t *Tracker) Take() (spans []Span, full bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	full = t.all
	if !full {
		spans = make([]Span, len(t.spans))
		copy(spans, t.spans)
		sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	}
	t.all = false
	t.spans = t.spans[:0]
	return spans, full
}
