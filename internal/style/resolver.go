// Package style maps query capture names to visual styles. A Theme holds
// named styles, resolves (capture, sub-language) pairs with hierarchical
// fallback on dotted names, and interns resolved styles as compact handles
// the highlight engine can cache and emit.
package style

import (
	"sync"

	"github.com/dshills/treelight/internal/renderer/core"
)

// Handle is an interned style reference. The zero handle means "no style".
type Handle uint32

// None is the absent-style sentinel.
const None Handle = 0

// Resolver resolves a capture name within a sub-language to a style handle.
// ok is false when no style applies (the capture produces no span).
type Resolver interface {
	Resolve(capture, lang string) (h Handle, ok bool)
}

// Theme is a named set of capture styles implementing Resolver.
//
// Resolution order for Resolve("comment.doc", "mylang"):
//  1. "comment.doc.mylang" (language-qualified, exact)
//  2. "comment.doc"
//  3. "comment.mylang"
//  4. "comment" (dotted segments dropped right to left)
type Theme struct {
	mu      sync.Mutex
	name    string
	styles  map[string]core.Style
	handles map[string]Handle
	table   []core.Style // index = Handle; table[0] is unused
}

// NewTheme creates an empty theme.
func NewTheme(name string) *Theme {
	return &Theme{
		name:    name,
		styles:  make(map[string]core.Style),
		handles: make(map[string]Handle),
		table:   make([]core.Style, 1),
	}
}

// Name returns the theme name.
func (t *Theme) Name() string {
	return t.name
}

// Set defines the style for a capture name (optionally language-qualified,
// e.g. "comment.mylang").
func (t *Theme) Set(capture string, s core.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.styles[capture] = s
}

// Resolve implements Resolver.
func (t *Theme) Resolve(capture, lang string) (Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := capture
	for name != "" {
		if lang != "" {
			if s, ok := t.styles[name+"."+lang]; ok {
				return t.intern(name+"."+lang, s), true
			}
		}
		if s, ok := t.styles[name]; ok {
			return t.intern(name, s), true
		}
		name = parentCapture(name)
	}
	return None, false
}

// Style returns the interned style for a handle, or the default style for
// None and unknown handles.
func (t *Theme) Style(h Handle) core.Style {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h == None || int(h) >= len(t.table) {
		return core.DefaultStyle()
	}
	return t.table[h]
}

// intern returns the stable handle for a resolved style key.
// Caller holds t.mu.
func (t *Theme) intern(key string, s core.Style) Handle {
	if h, ok := t.handles[key]; ok {
		return h
	}
	h := Handle(len(t.table))
	t.table = append(t.table, s)
	t.handles[key] = h
	return h
}

// parentCapture drops the last dotted segment: "comment.doc" -> "comment".
func parentCapture(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return ""
}

// Default returns a built-in dark theme covering the capture names the
// reference queries use.
func Default() *Theme {
	t := NewTheme("default-dark")
	t.Set("variable", core.NewStyle(core.ColorFromRGB(156, 220, 254)))
	t.Set("number", core.NewStyle(core.ColorFromRGB(181, 206, 168)))
	t.Set("string", core.NewStyle(core.ColorFromRGB(206, 145, 120)))
	t.Set("comment", core.NewStyle(core.ColorFromRGB(106, 153, 85)).Italic())
	t.Set("punctuation", core.NewStyle(core.ColorFromRGB(212, 212, 212)))
	t.Set("punctuation.delimiter", core.NewStyle(core.ColorFromRGB(128, 128, 128)))
	t.Set("keyword", core.NewStyle(core.ColorFromRGB(197, 134, 192)).Bold())
	t.Set("spell", core.DefaultStyle().Undercurl())
	t.Set("nospell", core.DefaultStyle())
	return t
}
