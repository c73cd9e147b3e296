package querylite

import "github.com/dshills/treelight/internal/syntax"

// Node is a concrete syntax tree node with a kind name and child list.
// It implements syntax.Node and is the node type the reference parser and
// the engine tests build trees from.
type Node struct {
	Kind     string
	Span     syntax.Range
	Children []*Node
}

// Range returns the node's row/column span.
func (n *Node) Range() syntax.Range {
	return n.Span
}

// Add appends children and returns the node for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// NewNode creates a node covering a single-row span.
func NewNode(kind string, row, startCol, endCol int) *Node {
	return &Node{
		Kind: kind,
		Span: syntax.Range{StartRow: row, StartCol: startCol, EndRow: row, EndCol: endCol},
	}
}

// NewSpanNode creates a node covering a multi-row span.
func NewSpanNode(kind string, startRow, startCol, endRow, endCol int) *Node {
	return &Node{
		Kind: kind,
		Span: syntax.Range{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol},
	}
}
