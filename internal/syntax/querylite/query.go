// Package querylite is a reference implementation of the syntax.Query and
// syntax.QueryStore contracts. It compiles a deliberately small, line-based
// subset of the tree-sitter query language: one pattern per line of the form
//
//	node_kind @capture.name (#set! priority 110) (#set! conceal "x")
//
// and evaluates patterns by node kind over a *Node tree, streaming captures
// in document position order. Comments start with ';'.
package querylite

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/treelight/internal/syntax"
)

// pattern matches every node of a given kind and captures it.
type pattern struct {
	kind    string
	capture int
	md      syntax.Metadata
}

// Query is a compiled set of patterns.
type Query struct {
	patterns []pattern
	captures []string
}

// Compile parses query source into a Query.
func Compile(source string) (*Query, error) {
	q := &Query{}
	for lineNo, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		kind, rest, ok := strings.Cut(line, "@")
		if !ok {
			return nil, fmt.Errorf("querylite: line %d: missing capture in %q", lineNo+1, line)
		}
		kind = strings.TrimSpace(kind)
		if kind == "" {
			return nil, fmt.Errorf("querylite: line %d: missing node kind in %q", lineNo+1, line)
		}

		name, directives, _ := strings.Cut(rest, "(")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("querylite: line %d: empty capture name in %q", lineNo+1, line)
		}

		md, err := parseDirectives(directives)
		if err != nil {
			return nil, fmt.Errorf("querylite: line %d: %w", lineNo+1, err)
		}

		q.patterns = append(q.patterns, pattern{
			kind:    kind,
			capture: q.ensureCapture(name),
			md:      md,
		})
	}
	return q, nil
}

// MustCompile compiles query source and panics on error. For fixed queries
// known valid at build time.
func MustCompile(source string) *Query {
	q, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return q
}

// parseDirectives parses the tail of a pattern line after the first '('.
// Supported: #set! priority N, #set! conceal "text".
func parseDirectives(s string) (syntax.Metadata, error) {
	var md syntax.Metadata
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			return md, nil
		}
		s = strings.TrimPrefix(s, "(")
		body, rest, ok := strings.Cut(s, ")")
		if !ok {
			return md, fmt.Errorf("unterminated directive %q", s)
		}
		body = strings.TrimSpace(body)
		fields := strings.Fields(body)
		if len(fields) < 2 || fields[0] != "#set!" {
			return md, fmt.Errorf("unknown directive %q", body)
		}
		switch fields[1] {
		case "priority":
			if len(fields) != 3 {
				return md, fmt.Errorf("priority directive needs a value")
			}
			p, err := strconv.Atoi(fields[2])
			if err != nil || p <= 0 {
				return md, fmt.Errorf("bad priority %q", fields[2])
			}
			md.Priority = p
		case "conceal":
			if len(fields) != 3 {
				return md, fmt.Errorf("conceal directive needs a value")
			}
			md.Conceal = strings.Trim(fields[2], `"`)
			md.HasConceal = true
		default:
			return md, fmt.Errorf("unknown #set! property %q", fields[1])
		}
		s = rest
	}
}

func (q *Query) ensureCapture(name string) int {
	for i, n := range q.captures {
		if n == name {
			return i
		}
	}
	q.captures = append(q.captures, name)
	return len(q.captures) - 1
}

// CaptureName returns the name for a capture index.
func (q *Query) CaptureName(index int) string {
	if index < 0 || index >= len(q.captures) {
		return ""
	}
	return q.captures[index]
}

// CaptureCount returns the number of distinct captures.
func (q *Query) CaptureCount() int {
	return len(q.captures)
}

// PatternCount returns the number of patterns.
func (q *Query) PatternCount() int {
	return len(q.patterns)
}

// IterMatches walks the tree under node and streams captures whose node
// ranges intersect the row window [fromRow, toRow), ordered by start
// position. The LineSource is unused by this implementation (no text
// predicates) but part of the syntax.Query contract.
func (q *Query) IterMatches(node syntax.Node, _ syntax.LineSource, fromRow, toRow int) syntax.MatchIterator {
	root, ok := node.(*Node)
	if !ok || root == nil {
		return &iterator{}
	}

	var results []syntax.Capture
	q.collect(root, fromRow, toRow, &results)
	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i].Node.Range(), results[j].Node.Range()
		if ri.StartRow != rj.StartRow {
			return ri.StartRow < rj.StartRow
		}
		return ri.StartCol < rj.StartCol
	})
	return &iterator{results: results}
}

func (q *Query) collect(n *Node, fromRow, toRow int, out *[]syntax.Capture) {
	r := n.Span
	if r.StartRow >= toRow || r.EndRow < fromRow {
		return
	}
	for _, p := range q.patterns {
		if p.kind == n.Kind {
			*out = append(*out, syntax.Capture{
				Index:    p.capture,
				Node:     n,
				Metadata: p.md,
			})
		}
	}
	for _, child := range n.Children {
		q.collect(child, fromRow, toRow, out)
	}
}

// iterator streams pre-collected captures.
type iterator struct {
	results []syntax.Capture
	pos     int
}

// Next returns the next capture in position order.
func (it *iterator) Next() (syntax.Capture, bool) {
	if it.pos >= len(it.results) {
		return syntax.Capture{}, false
	}
	c := it.results[it.pos]
	it.pos++
	return c, true
}

// Store is an in-memory syntax.QueryStore keyed by sub-language.
type Store struct {
	queries map[string]*Query
}

// NewStore creates an empty query store.
func NewStore() *Store {
	return &Store{queries: make(map[string]*Query)}
}

// Add registers the stock query for a sub-language.
func (s *Store) Add(lang string, q *Query) {
	s.queries[lang] = q
}

// AddSource compiles and registers a stock query for a sub-language.
func (s *Store) AddSource(lang, source string) error {
	q, err := Compile(source)
	if err != nil {
		return err
	}
	s.Add(lang, q)
	return nil
}

// Get returns the stock query for a sub-language, if one is registered.
func (s *Store) Get(lang string) (syntax.Query, bool) {
	q, ok := s.queries[lang]
	if !ok {
		return nil, false
	}
	return q, true
}

// Compile builds a query from explicit source. The language identifier is
// unused here; kinds are matched by name.
func (s *Store) Compile(_, source string) (syntax.Query, error) {
	return Compile(source)
}
