// Package document provides the editable buffer model the highlight engine
// attaches to: line storage, edit application with change notification, and
// a small per-document option store.
package document

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ID is an opaque handle identifying one document.
type ID string

// NewID allocates a fresh document handle.
func NewID() ID {
	return ID(uuid.New().String())
}

// Option names a per-document boolean option.
type Option string

// Options the highlight engine touches.
const (
	// OptSpell enables spell checking for the document.
	OptSpell Option = "spell"

	// OptLegacyHighlight enables the regex-based legacy highlighter.
	// The tree-based engine disables it while attached.
	OptLegacyHighlight Option = "legacyhighlight"
)

// ChangeFunc is notified after an edit. The rows [startRow, oldEndRow)
// were replaced by rows [startRow, newEndRow).
type ChangeFunc func(startRow, oldEndRow, newEndRow int)

// Buffer is a line-oriented editable document.
type Buffer struct {
	mu        sync.RWMutex
	id        ID
	name      string
	lines     []string
	loaded    bool
	opts      map[Option]bool
	listeners []ChangeFunc
}

// New creates a loaded buffer from the given text. The text is split on
// newlines; an empty text yields a single empty line.
func New(name, text string) *Buffer {
	return &Buffer{
		id:     NewID(),
		name:   name,
		lines:  strings.Split(text, "\n"),
		loaded: true,
		opts: map[Option]bool{
			OptSpell:           false,
			OptLegacyHighlight: true,
		},
	}
}

// ID returns the document handle.
func (b *Buffer) ID() ID {
	return b.id
}

// Name returns the document name.
func (b *Buffer) Name() string {
	return b.name
}

// Loaded reports whether the document is still loaded.
func (b *Buffer) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Unload marks the document as unloaded. Further edits are ignored.
func (b *Buffer) Unload() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = false
}

// Line returns the content of the given row, or "" if out of range.
func (b *Buffer) Line(row int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Text returns the full buffer content joined by newlines.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// Option returns the current value of a document option.
func (b *Buffer) Option(opt Option) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opts[opt]
}

// SetOption sets a document option.
func (b *Buffer) SetOption(opt Option, value bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts[opt] = value
}

// OnChange registers a listener invoked after every applied edit.
// Listeners are invoked in registration order on the editing goroutine.
func (b *Buffer) OnChange(fn ChangeFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Replace substitutes the rows [startRow, endRow) with the given lines and
// notifies change listeners. Out-of-range bounds are clamped. Replacing on
// an unloaded buffer is a no-op.
func (b *Buffer) Replace(startRow, endRow int, lines []string) {
	b.mu.Lock()
	if !b.loaded {
		b.mu.Unlock()
		return
	}
	if startRow < 0 {
		startRow = 0
	}
	if endRow > len(b.lines) {
		endRow = len(b.lines)
	}
	if endRow < startRow {
		endRow = startRow
	}

	updated := make([]string, 0, len(b.lines)-(endRow-startRow)+len(lines))
	updated = append(updated, b.lines[:startRow]...)
	updated = append(updated, lines...)
	updated = append(updated, b.lines[endRow:]...)
	b.lines = updated

	newEndRow := startRow + len(lines)
	listeners := make([]ChangeFunc, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(startRow, endRow, newEndRow)
	}
}

// SetLine replaces a single row, a convenience wrapper over Replace.
func (b *Buffer) SetLine(row int, text string) {
	b.Replace(row, row+1, []string{text})
}
