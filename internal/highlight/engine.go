package highlight

import (
	"sync"

	"github.com/dshills/treelight/internal/document"
	"github.com/dshills/treelight/internal/style"
	"github.com/dshills/treelight/internal/syntax"
)

// Options configures an Engine.
type Options struct {
	// Queries maps sub-language identifiers to raw query source strings
	// overriding the store's stock queries.
	Queries map[string]string

	// Store supplies compiled queries per sub-language.
	Store syntax.QueryStore

	// Resolver maps capture names to style handles.
	Resolver style.Resolver

	// Redraw receives invalidation requests. Nil disables them.
	Redraw Invalidator
}

// Engine orchestrates highlighting for one document. It owns the query
// bindings and the per-sub-tree highlight states for the currently visible
// range; the syntax forest is borrowed, never owned.
type Engine struct {
	mu sync.Mutex

	doc    *document.Buffer
	forest syntax.Forest
	opts   Options

	bindings map[string]*Binding
	states   []*treeState

	reg        *Registry
	unregister func()

	savedSpell bool
	destroyed  bool
}

// New constructs the Engine for a document-backed forest and registers it
// as the document's active highlighter, replacing (and destroying) any
// prior Engine for the same document. It fails with ErrUnsupportedSource
// when the forest is not backed by a live document; in that case the
// active-document registry is left untouched.
func New(forest syntax.Forest, doc *document.Buffer, reg *Registry, opts Options) (*Engine, error) {
	src := forest.Source()
	if src.Kind != syntax.SourceDocument || doc == nil || doc.ID() != src.Doc {
		return nil, ErrUnsupportedSource
	}

	e := &Engine{
		doc:      doc,
		forest:   forest,
		opts:     opts,
		bindings: make(map[string]*Binding),
		reg:      reg,
	}

	// Compile query overrides up front so bad sources fail construction
	// before any side effects land.
	for lang, source := range opts.Queries {
		b, err := newBinding(lang, opts.Store, source, opts.Resolver)
		if err != nil {
			return nil, err
		}
		e.bindings[lang] = b
	}

	// Destroy any predecessor before touching document options: its
	// teardown restores the options it suppressed, and running it later
	// would undo this engine's suppression and poison the restore-point
	// with the predecessor's suppressed value.
	if prev, ok := reg.Lookup(doc.ID()); ok {
		prev.Destroy()
	}

	// The engine takes over spell decisions and supersedes the legacy
	// highlighter while attached; both are undone on Destroy.
	e.savedSpell = doc.Option(document.OptSpell)
	doc.SetOption(document.OptSpell, false)
	doc.SetOption(document.OptLegacyHighlight, false)

	e.unregister = forest.Register(syntax.Hooks{
		OnBytes:          e.onBytes,
		OnTreeChanged:    e.onTreeChanged,
		OnSubtreeRemoved: e.onSubtreeRemoved,
	})

	if err := forest.Parse(nil); err != nil {
		e.unregister()
		doc.SetOption(document.OptSpell, e.savedSpell)
		doc.SetOption(document.OptLegacyHighlight, true)
		return nil, err
	}

	reg.attach(doc.ID(), e)
	return e, nil
}

// Doc returns the handle of the document this engine highlights.
func (e *Engine) Doc() document.ID {
	return e.doc.ID()
}

// bindingFor returns the cached binding for a sub-language, creating it
// lazily from the store. Caller holds e.mu.
func (e *Engine) bindingFor(lang string) *Binding {
	if b, ok := e.bindings[lang]; ok {
		return b
	}
	b, err := newBinding(lang, e.opts.Store, "", e.opts.Resolver)
	if err != nil {
		// Stock queries never fail to bind; overrides were compiled at
		// construction.
		return nil
	}
	e.bindings[lang] = b
	return b
}

// Refresh discards all sub-tree highlight states and rebuilds them for the
// visible row range [start, end), in ancestor-first forest order. Sub-trees
// bound to a query-less binding are skipped. Calling Refresh twice with the
// same range on an unchanged forest produces an equivalent state set.
func (e *Engine) Refresh(start, end int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}

	e.states = e.states[:0]
	e.forest.ForEachTree(func(t syntax.Tree) {
		if !syntax.IntersectsRows(t, start, end) {
			return
		}
		b := e.bindingFor(t.Lang())
		if b == nil || b.query == nil {
			return
		}
		e.states = append(e.states, &treeState{tree: t, binding: b})
	})
}

// WinOpen prepares the engine for a redraw cycle covering the rows
// [topline, botline]: reparse restricted to that range when the provider
// supports it, then rebuild the highlight states.
func (e *Engine) WinOpen(topline, botline int) {
	if e.forest.SupportsRangeParse() {
		r := &syntax.Range{StartRow: topline, EndRow: botline + 1}
		_ = e.forest.Parse(r)
	}
	e.Refresh(topline, botline+1)
}

// EmitLine advances each sub-tree's match stream up to the given line and
// emits the spans overlapping it, in ancestor-first state order. Descendant
// spans are emitted after ancestor spans so they win at equal priority.
func (e *Engine) EmitLine(line int, mode Mode, sink SinkFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}

	for _, s := range e.states {
		if !syntax.CoversRow(s.tree, line) {
			continue
		}
		e.emitTree(s, line, mode, sink)
	}
}

// emitTree drains one sub-tree's match stream for a line. The iterator is
// created lazily and reused across consecutive lines; nextRow caches the
// lookahead so rows with no pending matches cost nothing. Caller holds e.mu.
func (e *Engine) emitTree(s *treeState, line int, mode Mode, sink SinkFunc) {
	endRow := syntax.EndRow(s.tree)

	if s.iter == nil || s.nextRow < line {
		s.iter = s.binding.query.IterMatches(s.tree.Root(), e.doc, line, endRow+1)
	}

	for line >= s.nextRow {
		c, ok := s.iter.Next()
		if !ok || c.Node == nil {
			// Exhausted: park the cursor past the sub-tree end so this
			// state stays quiet until the next Refresh.
			s.nextRow = endRow + 1
			return
		}

		r := c.Node.Range()

		name := s.binding.captureName(c.Index)
		spell := SpellInherit
		boost := 0
		switch name {
		case captureSpell:
			spell = SpellOn
		case captureNospell:
			spell = SpellOff
			// nospell must out-rank spell at equal explicit priority.
			boost = 1
		}

		priority := DefaultPriority
		if c.Metadata.Priority > 0 {
			priority = c.Metadata.Priority
		}
		priority += boost

		h := s.binding.styleFor(c.Index)
		if h != style.None && r.EndRow >= line && (mode == ModeRender || spell != SpellInherit) {
			sink(Span{
				StartRow:   r.StartRow,
				StartCol:   r.StartCol,
				EndRow:     r.EndRow,
				EndCol:     r.EndCol,
				Style:      h,
				Priority:   priority,
				Conceal:    c.Metadata.Conceal,
				HasConceal: c.Metadata.HasConceal,
				Spell:      spell,
			})
		}

		if r.StartRow > line {
			s.nextRow = r.StartRow
		}
	}
}

// onBytes handles byte-edit notifications. Highlight state is not
// recomputed synchronously; the affected rows are only queued for redraw.
func (e *Engine) onBytes(startRow, newEndRowOffset int) {
	e.invalidate(startRow, startRow+newEndRowOffset+1)
}

// onTreeChanged handles post-reparse change notifications.
func (e *Engine) onTreeChanged(ranges []syntax.Range) {
	for _, r := range ranges {
		e.invalidate(r.StartRow, r.EndRow+1)
	}
}

// onSubtreeRemoved handles removed-injection notifications.
func (e *Engine) onSubtreeRemoved(ranges []syntax.Range) {
	for _, r := range ranges {
		e.invalidate(r.StartRow, r.EndRow+1)
	}
}

func (e *Engine) invalidate(start, end int) {
	if e.opts.Redraw != nil {
		e.opts.Redraw.InvalidateRows(start, end)
	}
}

// Destroy detaches the engine: it unsubscribes from forest notifications,
// removes itself from the active-document registry, and, if the document
// is still loaded, restores the saved spell option and re-enables the
// legacy highlighter. Destroy is idempotent.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.states = nil
	e.mu.Unlock()

	e.unregister()
	e.reg.detach(e.doc.ID(), e)

	if e.doc.Loaded() {
		e.doc.SetOption(document.OptSpell, e.savedSpell)
		e.doc.SetOption(document.OptLegacyHighlight, true)
	}
}
