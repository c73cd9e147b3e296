package highlight

import (
	"strings"

	"github.com/dshills/treelight/internal/style"
	"github.com/dshills/treelight/internal/syntax"
)

// reservedPrefix marks captures that exist purely for structural matching.
// They resolve to no style without consulting the resolver.
const reservedPrefix = "_"

// Reserved capture names controlling the spell flag.
const (
	captureSpell   = "spell"
	captureNospell = "nospell"
)

// Binding owns one compiled capture query bound to one sub-language, plus
// the per-capture style resolution cache. A binding without a query is
// valid: sub-trees bound to it are skipped during highlight-state
// construction (injected languages without highlight definitions silently
// produce no spans).
type Binding struct {
	lang     string
	query    syntax.Query // nil when the language has no query
	resolver style.Resolver
	styles   map[int]style.Handle // capture index -> handle, style.None cached too
}

// newBinding builds the binding for a sub-language. An override source
// takes precedence over the store's stock query; compile errors surface to
// the caller. A language absent from the store yields a query-less binding.
func newBinding(lang string, store syntax.QueryStore, override string, resolver style.Resolver) (*Binding, error) {
	b := &Binding{
		lang:     lang,
		resolver: resolver,
		styles:   make(map[int]style.Handle),
	}
	if override != "" {
		q, err := store.Compile(lang, override)
		if err != nil {
			return nil, err
		}
		b.query = q
		return b, nil
	}
	if q, ok := store.Get(lang); ok {
		b.query = q
	}
	return b, nil
}

// Lang returns the bound sub-language identifier.
func (b *Binding) Lang() string {
	return b.lang
}

// Query returns the compiled query, or nil for query-less bindings.
func (b *Binding) Query() syntax.Query {
	return b.query
}

// captureName returns the capture name for an index.
func (b *Binding) captureName(index int) string {
	if b.query == nil {
		return ""
	}
	return b.query.CaptureName(index)
}

// styleFor resolves a capture index to a style handle, memoized for the
// binding's lifetime. Reserved-prefix captures always resolve to no style.
func (b *Binding) styleFor(index int) style.Handle {
	if h, ok := b.styles[index]; ok {
		return h
	}

	h := style.None
	name := b.captureName(index)
	if name != "" && !strings.HasPrefix(name, reservedPrefix) {
		if resolved, ok := b.resolver.Resolve(name, b.lang); ok {
			h = resolved
		}
	}
	b.styles[index] = h
	return h
}
