package highlight

import (
	"sync"

	"github.com/dshills/treelight/internal/document"
)

// Registry is the process-wide table of active engines, keyed by document
// handle. Entries are inserted on Engine construction and removed on
// Destroy; lifecycle code passes the registry explicitly rather than
// reaching into ambient state.
type Registry struct {
	mu     sync.Mutex
	active map[document.ID]*Engine
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[document.ID]*Engine)}
}

// Lookup returns the active engine for a document, if any.
func (r *Registry) Lookup(doc document.ID) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.active[doc]
	return e, ok
}

// Count returns the number of active engines.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// attach installs an engine as the document's active highlighter. A prior
// engine for the same document is destroyed after the swap.
func (r *Registry) attach(doc document.ID, e *Engine) {
	r.mu.Lock()
	prev := r.active[doc]
	r.active[doc] = e
	r.mu.Unlock()

	if prev != nil && prev != e {
		prev.Destroy()
	}
}

// detach removes the engine's entry, but only if it is still the active
// one; a replaced engine must not evict its successor.
func (r *Registry) detach(doc document.ID, e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[doc] == e {
		delete(r.active, doc)
	}
}
