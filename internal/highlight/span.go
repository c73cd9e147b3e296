// Package highlight drives incremental, query-based syntax highlighting
// over a syntax forest. One Engine exists per document; the renderer pulls
// spans line by line through the Decorator callbacks, and edits invalidate
// redraw ranges without recomputing highlight state eagerly.
package highlight

import "github.com/dshills/treelight/internal/style"

// DefaultPriority is the priority assigned to syntax highlight spans whose
// query metadata carries no explicit priority.
const DefaultPriority = 100

// SpellState is the tri-state spell flag derived from reserved captures.
type SpellState uint8

// Spell states.
const (
	// SpellInherit leaves the spell decision to surrounding context.
	SpellInherit SpellState = iota

	// SpellOn marks the span as spell-checked ("spell" capture).
	SpellOn

	// SpellOff marks the span as not spell-checked ("nospell" capture).
	SpellOff
)

// String returns the spell state name.
func (s SpellState) String() string {
	switch s {
	case SpellOn:
		return "spell"
	case SpellOff:
		return "nospell"
	default:
		return "inherit"
	}
}

// Mode selects what EmitLine emits.
type Mode uint8

// Emission modes.
const (
	// ModeRender emits every styled span for drawing.
	ModeRender Mode = iota

	// ModeSpell emits only spans with a defined spell flag, used to
	// answer spell-applicability queries outside the redraw cycle.
	ModeSpell
)

// Span is one ephemeral rendering instruction. Spans are never persisted;
// they are re-emitted on every redraw cycle and derive purely from
// (sub-tree, query, line).
type Span struct {
	StartRow, StartCol int
	EndRow, EndCol     int

	// Style is the resolved style handle.
	Style style.Handle

	// Priority orders overlapping spans; higher wins.
	Priority int

	// Conceal replaces the span text when HasConceal is set.
	Conceal    string
	HasConceal bool

	// Spell is the spell-checking flag for the span.
	Spell SpellState
}

// SinkFunc receives emitted spans.
type SinkFunc func(Span)

// Invalidator receives redraw-invalidation requests for row ranges.
// [start, end) is half-open.
type Invalidator interface {
	InvalidateRows(start, end int)
}
