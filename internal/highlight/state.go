package highlight

import "github.com/dshills/treelight/internal/syntax"

// treeState is the per-sub-tree highlight cursor for the current visible
// range. States are ephemeral: destroyed and rebuilt wholesale on every
// visible-range change, never patched incrementally.
type treeState struct {
	tree    syntax.Tree
	binding *Binding

	// iter is the live match stream, created lazily on first emission and
	// recreated when the render position runs ahead of nextRow.
	iter syntax.MatchIterator

	// nextRow is the next line at which the iterator must be consulted.
	// Rows before it are known to have no pending matches. Once the
	// iterator exhausts, nextRow moves past the sub-tree end, which keeps
	// exhaustion final until the next Refresh.
	nextRow int
}
