// Package syntax defines the contracts between the highlight engine and its
// external collaborators: the incremental tree provider, the query-matching
// engine, and the document text they read. The engine never owns tree
// memory; it borrows trees for the duration of a redraw cycle.
package syntax

import "github.com/dshills/treelight/internal/document"

// Range is a row/column span. EndRow/EndCol are exclusive.
type Range struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// ContainsRow returns true if the range's row span covers the given row.
// A range ending at column 0 of EndRow does not cover EndRow.
func (r Range) ContainsRow(row int) bool {
	if row < r.StartRow {
		return false
	}
	if row > r.EndRow {
		return false
	}
	if row == r.EndRow && r.EndCol == 0 && r.EndRow > r.StartRow {
		return false
	}
	return true
}

// IntersectsRows returns true if the range's row span intersects the
// half-open row interval [start, end).
func (r Range) IntersectsRows(start, end int) bool {
	return r.StartRow < end && r.EndRow >= start
}

// SourceKind identifies what backs a syntax tree.
type SourceKind uint8

// Source kinds.
const (
	// SourceNone is an unbacked tree.
	SourceNone SourceKind = iota

	// SourceDocument is a tree backed by a live, editable document.
	SourceDocument

	// SourceText is a tree over a standalone in-memory string with no
	// document attached. No edit notifications are available.
	SourceText
)

// Source describes the backing of a forest.
type Source struct {
	Kind SourceKind
	Doc  document.ID // valid only when Kind == SourceDocument
}

// LineSource provides read access to document text by row.
type LineSource interface {
	Line(row int) string
	LineCount() int
}

// Node is a single syntax tree node.
type Node interface {
	Range() Range
}

// Tree is one syntax tree in a forest: the root tree or an injected
// sub-tree for an embedded sub-language.
type Tree interface {
	// Lang returns the sub-language identifier for this tree.
	Lang() string

	// Root returns the root node.
	Root() Node

	// Ranges returns the row spans this tree covers. Injected trees may
	// cover several discontiguous spans.
	Ranges() []Range
}

// CoversRow returns true if any of the tree's ranges covers the row.
func CoversRow(t Tree, row int) bool {
	for _, r := range t.Ranges() {
		if r.ContainsRow(row) {
			return true
		}
	}
	return false
}

// IntersectsRows returns true if any of the tree's ranges intersects the
// half-open row interval [start, end).
func IntersectsRows(t Tree, start, end int) bool {
	for _, r := range t.Ranges() {
		if r.IntersectsRows(start, end) {
			return true
		}
	}
	return false
}

// EndRow returns the last row covered by the tree (inclusive).
func EndRow(t Tree) int {
	end := 0
	for _, r := range t.Ranges() {
		if r.EndRow > end {
			end = r.EndRow
		}
	}
	return end
}

// Hooks are the notification callbacks a forest consumer can subscribe to.
// Nil members are skipped.
type Hooks struct {
	// OnBytes fires after a byte-level edit, before any reparse. The edit
	// starts at startRow and the new text extends newEndRowOffset rows
	// past it.
	OnBytes func(startRow, newEndRowOffset int)

	// OnTreeChanged fires after a reparse, once per changed region set.
	OnTreeChanged func(ranges []Range)

	// OnSubtreeRemoved fires when an injected sub-tree disappears,
	// with the ranges it used to cover.
	OnSubtreeRemoved func(ranges []Range)
}

// Forest is the syntax tree provider for one document: a root tree plus
// zero or more injected sub-trees.
type Forest interface {
	// Source describes what backs this forest.
	Source() Source

	// Parse (re)parses the forest. A nil range parses the full document;
	// a non-nil range restricts the reparse when SupportsRangeParse
	// reports true.
	Parse(r *Range) error

	// SupportsRangeParse reports whether Parse honors a restricted range.
	SupportsRangeParse() bool

	// ForEachTree visits every tree ancestor-first. Visit order is
	// load-bearing for highlight priority: descendants are visited after
	// the ancestors they are injected into.
	ForEachTree(fn func(Tree))

	// Register subscribes hooks and returns an unregister function.
	Register(h Hooks) (unregister func())
}

// Metadata carries per-capture directives attached by a query pattern.
type Metadata struct {
	// Priority overrides the default highlight priority when > 0.
	Priority int

	// Conceal is the replacement text for concealed spans.
	Conceal string

	// HasConceal reports whether Conceal was set (it may be "").
	HasConceal bool
}

// Capture is one query match result.
type Capture struct {
	// Index is the capture index within the query.
	Index int

	// Node is the captured node.
	Node Node

	// Metadata holds pattern directives for this capture.
	Metadata Metadata
}

// MatchIterator streams captures in document position order.
type MatchIterator interface {
	// Next returns the next capture. ok is false once the stream is
	// exhausted; exhaustion is terminal.
	Next() (c Capture, ok bool)
}

// Query is one compiled capture query.
type Query interface {
	// IterMatches streams captures under node whose ranges intersect the
	// row window [fromRow, toRow), in position order. Multi-row captures
	// starting before the window are included.
	IterMatches(node Node, src LineSource, fromRow, toRow int) MatchIterator

	// CaptureName returns the name for a capture index.
	CaptureName(index int) string
}

// QueryStore supplies compiled queries per sub-language.
type QueryStore interface {
	// Get returns the stock query for a sub-language. ok is false when
	// the language has no highlight query; that is not an error.
	Get(lang string) (Query, bool)

	// Compile builds a query for a sub-language from explicit source,
	// used for per-language query overrides.
	Compile(lang, source string) (Query, error)
}
