package highlight

import "github.com/dshills/treelight/internal/document"

// SpanSink receives spans emitted during a redraw cycle, typically the
// renderer's annotation namespace.
type SpanSink interface {
	SetSpan(doc document.ID, s Span)
}

// Decorator is the renderer-facing callback surface. The renderer invokes
// it once per redraw cycle: OnWinOpen for the visible window, then OnLine
// for each visible row. Every callback is a no-op against documents with
// no active engine, since detach/close races are expected.
type Decorator struct {
	reg  *Registry
	sink SpanSink
}

// NewDecorator creates a decorator over the given registry. Emitted spans
// go to sink.
func NewDecorator(reg *Registry, sink SpanSink) *Decorator {
	return &Decorator{reg: reg, sink: sink}
}

// OnWinOpen announces a redraw cycle over the rows [topline, botline].
// It returns false ("not interested") when the document has no active
// engine; otherwise it prepares highlight state and returns true so the
// renderer proceeds with per-line callbacks.
func (d *Decorator) OnWinOpen(doc document.ID, topline, botline int) bool {
	e, ok := d.reg.Lookup(doc)
	if !ok {
		return false
	}
	e.WinOpen(topline, botline)
	return true
}

// OnLine emits the highlight spans for one visible row.
func (d *Decorator) OnLine(doc document.ID, line int) {
	e, ok := d.reg.Lookup(doc)
	if !ok {
		return
	}
	e.EmitLine(line, ModeRender, func(s Span) {
		d.sink.SetSpan(doc, s)
	})
}

// OnSpellNav answers spell-applicability queries for the rows
// [srow, erow], independent of the normal redraw cycle. Only spans with a
// defined spell flag are returned.
func (d *Decorator) OnSpellNav(doc document.ID, srow, erow int) []Span {
	e, ok := d.reg.Lookup(doc)
	if !ok {
		return nil
	}

	var spans []Span
	e.Refresh(srow, erow+1)
	for row := srow; row <= erow; row++ {
		e.EmitLine(row, ModeSpell, func(s Span) {
			spans = append(spans, s)
		})
	}
	return spans
}

// OnDetach tears down the document's engine when the document is closed
// or unloaded.
func (d *Decorator) OnDetach(doc document.ID) {
	if e, ok := d.reg.Lookup(doc); ok {
		e.Destroy()
	}
}
