// Package textparser is a reference syntax.Forest provider over a small
// line-oriented language: identifiers, numbers, quoted strings, '#'
// comments, and punctuation. Fenced blocks ("```lang" ... "```") become
// injected sub-trees for the named sub-language, giving the highlight
// engine a real forest to drive.
package textparser

import (
	"strings"
	"sync"

	"github.com/dshills/treelight/internal/document"
	"github.com/dshills/treelight/internal/syntax"
	"github.com/dshills/treelight/internal/syntax/querylite"
)

const fenceMarker = "```"

// Node kinds produced by the lexer.
const (
	KindSource     = "source"
	KindIdentifier = "identifier"
	KindNumber     = "number"
	KindString     = "string"
	KindComment    = "comment"
	KindPunct      = "punct"
	KindFenceDelim = "fence_delim"
)

// tree is one parsed tree in the forest.
type tree struct {
	lang   string
	root   *querylite.Node
	ranges []syntax.Range
}

func (t *tree) Lang() string           { return t.lang }
func (t *tree) Root() syntax.Node      { return t.root }
func (t *tree) Ranges() []syntax.Range { return t.ranges }

// Provider parses a document (or standalone text) into a root tree plus
// injected sub-trees and publishes edit/reparse notifications.
type Provider struct {
	mu       sync.Mutex
	source   syntax.Source
	buf      *document.Buffer
	text     []string // standalone source lines when buf == nil
	lang     string
	root     *tree
	children []*tree
	hooks    map[int]syntax.Hooks
	nextHook int
}

// New creates a provider over a live document. Edits applied to the buffer
// trigger reparse and notifications.
func New(buf *document.Buffer, lang string) *Provider {
	p := &Provider{
		source: syntax.Source{Kind: syntax.SourceDocument, Doc: buf.ID()},
		buf:    buf,
		lang:   lang,
		hooks:  make(map[int]syntax.Hooks),
	}
	buf.OnChange(p.onBufferChange)
	return p
}

// NewStandalone creates a provider over an in-memory string with no
// document attached. No edit notifications are ever published.
func NewStandalone(text, lang string) *Provider {
	return &Provider{
		source: syntax.Source{Kind: syntax.SourceText},
		text:   strings.Split(text, "\n"),
		lang:   lang,
		hooks:  make(map[int]syntax.Hooks),
	}
}

// Source describes what backs this forest.
func (p *Provider) Source() syntax.Source {
	return p.source
}

// SupportsRangeParse reports false: the toy parser always reparses fully.
func (p *Provider) SupportsRangeParse() bool {
	return false
}

// Parse reparses the whole document. The range argument is ignored.
func (p *Provider) Parse(_ *syntax.Range) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reparse()
	return nil
}

// ForEachTree visits the root tree, then each injected sub-tree in row
// order (ancestor-first).
func (p *Provider) ForEachTree(fn func(syntax.Tree)) {
	p.mu.Lock()
	root, children := p.root, p.children
	p.mu.Unlock()

	if root == nil {
		return
	}
	fn(root)
	for _, c := range children {
		fn(c)
	}
}

// Register subscribes notification hooks, returning an unregister func.
func (p *Provider) Register(h syntax.Hooks) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextHook
	p.nextHook++
	p.hooks[id] = h
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.hooks, id)
	}
}

func (p *Provider) line(row int) string {
	if p.buf != nil {
		return p.buf.Line(row)
	}
	if row < 0 || row >= len(p.text) {
		return ""
	}
	return p.text[row]
}

func (p *Provider) lineCount() int {
	if p.buf != nil {
		return p.buf.LineCount()
	}
	return len(p.text)
}

// onBufferChange fires byte-edit hooks, reparses, then fires tree-change
// and subtree-removed hooks for the affected rows.
func (p *Provider) onBufferChange(startRow, oldEndRow, newEndRow int) {
	p.mu.Lock()

	offset := newEndRow - startRow - 1
	if offset < 0 {
		offset = 0
	}

	oldChildren := p.children
	p.reparse()
	newChildren := p.children

	endRow := oldEndRow
	if newEndRow > endRow {
		endRow = newEndRow
	}
	changed := []syntax.Range{{StartRow: startRow, EndRow: endRow}}

	var removed [][]syntax.Range
	for _, oc := range oldChildren {
		if !containsTree(newChildren, oc) {
			removed = append(removed, oc.ranges)
		}
	}

	hooks := make([]syntax.Hooks, 0, len(p.hooks))
	for _, h := range p.hooks {
		hooks = append(hooks, h)
	}
	p.mu.Unlock()

	for _, h := range hooks {
		if h.OnBytes != nil {
			h.OnBytes(startRow, offset)
		}
	}
	for _, h := range hooks {
		if h.OnTreeChanged != nil {
			h.OnTreeChanged(changed)
		}
	}
	for _, ranges := range removed {
		for _, h := range hooks {
			if h.OnSubtreeRemoved != nil {
				h.OnSubtreeRemoved(ranges)
			}
		}
	}
}

// containsTree reports whether a tree with the same language and coverage
// still exists after a reparse.
func containsTree(trees []*tree, want *tree) bool {
	for _, t := range trees {
		if t.lang != want.lang || len(t.ranges) != len(want.ranges) {
			continue
		}
		same := true
		for i := range t.ranges {
			if t.ranges[i] != want.ranges[i] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// reparse rebuilds the forest. Caller holds p.mu.
func (p *Provider) reparse() {
	n := p.lineCount()
	lastLine := p.line(n - 1)

	rootNode := querylite.NewSpanNode(KindSource, 0, 0, n-1, len(lastLine))
	root := &tree{
		lang:   p.lang,
		root:   rootNode,
		ranges: []syntax.Range{rootNode.Span},
	}
	var children []*tree

	row := 0
	for row < n {
		line := p.line(row)
		if !strings.HasPrefix(line, fenceMarker) {
			lexLine(row, line, rootNode)
			row++
			continue
		}

		// Opening fence. Find the closing one.
		injLang := strings.TrimSpace(strings.TrimPrefix(line, fenceMarker))
		rootNode.Add(querylite.NewNode(KindFenceDelim, row, 0, len(line)))

		closeRow := n
		for r := row + 1; r < n; r++ {
			if strings.HasPrefix(p.line(r), fenceMarker) {
				closeRow = r
				break
			}
		}

		if injLang != "" && closeRow > row+1 {
			inner := querylite.NewSpanNode(KindSource, row+1, 0, closeRow, 0)
			for r := row + 1; r < closeRow; r++ {
				lexLine(r, p.line(r), inner)
			}
			children = append(children, &tree{
				lang:   injLang,
				root:   inner,
				ranges: []syntax.Range{inner.Span},
			})
		}

		if closeRow < n {
			closing := p.line(closeRow)
			rootNode.Add(querylite.NewNode(KindFenceDelim, closeRow, 0, len(closing)))
		}
		row = closeRow + 1
	}

	p.root = root
	p.children = children
}

// lexLine tokenizes one line into child nodes of parent.
func lexLine(row int, s string, parent *querylite.Node) {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '#':
			parent.Add(querylite.NewNode(KindComment, row, i, len(s)))
			i = len(s)
		case c == '"':
			end := i + 1
			for end < len(s) && s[end] != '"' {
				end++
			}
			if end < len(s) {
				end++
			}
			parent.Add(querylite.NewNode(KindString, row, i, end))
			i = end
		case isDigit(c):
			end := i
			for end < len(s) && (isDigit(s[end]) || s[end] == '.') {
				end++
			}
			parent.Add(querylite.NewNode(KindNumber, row, i, end))
			i = end
		case isAlpha(c):
			end := i
			for end < len(s) && (isAlpha(s[end]) || isDigit(s[end])) {
				end++
			}
			parent.Add(querylite.NewNode(KindIdentifier, row, i, end))
			i = end
		case strings.IndexByte("=+-*/()[]{},.:;<>!&|", c) >= 0:
			parent.Add(querylite.NewNode(KindPunct, row, i, i+1))
			i++
		default:
			i++
		}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
