package textparser

import (
	"testing"

	"github.com/dshills/treelight/internal/document"
	"github.com/dshills/treelight/internal/syntax"
	"github.com/dshills/treelight/internal/syntax/querylite"
)

// hookRecorder captures published notifications.
type hookRecorder struct {
	bytes   [][2]int
	changed [][]syntax.Range
	removed [][]syntax.Range
}

func (h *hookRecorder) hooks() syntax.Hooks {
	return syntax.Hooks{
		OnBytes: func(startRow, offset int) {
			h.bytes = append(h.bytes, [2]int{startRow, offset})
		},
		OnTreeChanged: func(ranges []syntax.Range) {
			h.changed = append(h.changed, ranges)
		},
		OnSubtreeRemoved: func(ranges []syntax.Range) {
			h.removed = append(h.removed, ranges)
		},
	}
}

func collectTrees(p *Provider) []syntax.Tree {
	var out []syntax.Tree
	p.ForEachTree(func(t syntax.Tree) { out = append(out, t) })
	return out
}

func kindsOf(n syntax.Node) []string {
	root, ok := n.(*querylite.Node)
	if !ok {
		return nil
	}
	var out []string
	for _, c := range root.Children {
		out = append(out, c.Kind)
	}
	return out
}

func TestLexLine(t *testing.T) {
	p := NewStandalone(`greeting = "hello" # say hi 42`, "text")
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	trees := collectTrees(p)
	if len(trees) != 1 {
		t.Fatalf("tree count = %d, want 1", len(trees))
	}

	got := kindsOf(trees[0].Root())
	want := []string{KindIdentifier, KindPunct, KindString, KindComment}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kind %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLexTokenSpans(t *testing.T) {
	p := NewStandalone("total = 40.5 + x2", "text")
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	root := collectTrees(p)[0].Root().(*querylite.Node)
	want := []struct {
		kind     string
		from, to int
	}{
		{KindIdentifier, 0, 5},
		{KindPunct, 6, 7},
		{KindNumber, 8, 12},
		{KindPunct, 13, 14},
		{KindIdentifier, 15, 17},
	}
	if len(root.Children) != len(want) {
		t.Fatalf("token count = %d, want %d", len(root.Children), len(want))
	}
	for i, w := range want {
		c := root.Children[i]
		if c.Kind != w.kind || c.Span.StartCol != w.from || c.Span.EndCol != w.to {
			t.Errorf("token %d = %s [%d,%d), want %s [%d,%d)",
				i, c.Kind, c.Span.StartCol, c.Span.EndCol, w.kind, w.from, w.to)
		}
	}
}

func TestFenceInjection(t *testing.T) {
	p := NewStandalone("x = 1\n```code\ny = 2\n```\nz = 3", "text")
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	trees := collectTrees(p)
	if len(trees) != 2 {
		t.Fatalf("tree count = %d, want root + 1 injection", len(trees))
	}

	// Ancestor first.
	if trees[0].Lang() != "text" {
		t.Errorf("first tree lang = %q, want %q", trees[0].Lang(), "text")
	}
	if trees[1].Lang() != "code" {
		t.Errorf("second tree lang = %q, want %q", trees[1].Lang(), "code")
	}

	inj := trees[1].Ranges()
	if len(inj) != 1 {
		t.Fatalf("injection ranges = %v, want one range", inj)
	}
	if inj[0].StartRow != 2 || inj[0].EndRow != 3 || inj[0].EndCol != 0 {
		t.Errorf("injection range = %+v, want rows [2,3) exclusive end", inj[0])
	}

	// Fence delimiters belong to the root tree; the fenced body does not.
	root := trees[0].Root().(*querylite.Node)
	var delims, rootRow2 int
	for _, c := range root.Children {
		if c.Kind == KindFenceDelim {
			delims++
		}
		if c.Span.StartRow == 2 {
			rootRow2++
		}
	}
	if delims != 2 {
		t.Errorf("fence delimiters in root = %d, want 2", delims)
	}
	if rootRow2 != 0 {
		t.Errorf("root lexed %d tokens inside the fenced body", rootRow2)
	}
}

func TestFenceVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int // injected tree count
	}{
		{"unclosed fence runs to EOF", "```code\nx = 1\ny = 2", 1},
		{"anonymous fence has no injection", "```\nx = 1\n```", 0},
		{"empty fenced body has no injection", "```code\n```", 0},
		{"two fences two injections", "```a\nx\n```\n```b\ny\n```", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewStandalone(tt.text, "text")
			if err := p.Parse(nil); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			trees := collectTrees(p)
			if got := len(trees) - 1; got != tt.want {
				t.Errorf("injected trees = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSourceKinds(t *testing.T) {
	buf := document.New("t", "x = 1")
	docProv := New(buf, "text")
	if src := docProv.Source(); src.Kind != syntax.SourceDocument || src.Doc != buf.ID() {
		t.Errorf("document provider source = %+v", src)
	}

	standalone := NewStandalone("x = 1", "text")
	if src := standalone.Source(); src.Kind != syntax.SourceText {
		t.Errorf("standalone provider source kind = %v, want SourceText", src.Kind)
	}

	if docProv.SupportsRangeParse() {
		t.Error("toy parser should not claim range-parse support")
	}
}

func TestEditNotifications(t *testing.T) {
	buf := document.New("t", "a\nb\nc")
	p := New(buf, "text")
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rec := &hookRecorder{}
	p.Register(rec.hooks())

	buf.SetLine(1, "b edited")

	if len(rec.bytes) != 1 || rec.bytes[0] != [2]int{1, 0} {
		t.Errorf("byte notifications = %v, want [[1 0]]", rec.bytes)
	}
	if len(rec.changed) != 1 {
		t.Fatalf("change notifications = %d, want 1", len(rec.changed))
	}
	r := rec.changed[0][0]
	if r.StartRow != 1 || r.EndRow != 2 {
		t.Errorf("changed range = %+v, want rows 1..2", r)
	}
	if len(rec.removed) != 0 {
		t.Errorf("unexpected subtree removals: %v", rec.removed)
	}
}

func TestEditRemovesInjection(t *testing.T) {
	buf := document.New("t", "```code\nx = 1\n```")
	p := New(buf, "text")
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(collectTrees(p)); got != 2 {
		t.Fatalf("tree count before edit = %d, want 2", got)
	}

	rec := &hookRecorder{}
	p.Register(rec.hooks())

	// Break the opening fence; the injected tree must disappear.
	buf.SetLine(0, "not a fence")

	if got := len(collectTrees(p)); got != 1 {
		t.Errorf("tree count after edit = %d, want 1", got)
	}
	if len(rec.removed) != 1 {
		t.Fatalf("subtree-removed notifications = %d, want 1", len(rec.removed))
	}
	if r := rec.removed[0][0]; r.StartRow != 1 {
		t.Errorf("removed range = %+v, want the old injection rows", r)
	}
}

func TestUnregisterStopsNotifications(t *testing.T) {
	buf := document.New("t", "a\nb")
	p := New(buf, "text")
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rec := &hookRecorder{}
	unregister := p.Register(rec.hooks())
	unregister()

	buf.SetLine(0, "edited")

	if len(rec.bytes) != 0 || len(rec.changed) != 0 {
		t.Error("unregistered hooks still received notifications")
	}
}

func TestGrowingEditOffset(t *testing.T) {
	buf := document.New("t", "a\nb")
	p := New(buf, "text")
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rec := &hookRecorder{}
	p.Register(rec.hooks())

	// Replace one row with three; the offset reflects the new extent.
	buf.Replace(0, 1, []string{"x", "y", "z"})

	if len(rec.bytes) != 1 || rec.bytes[0] != [2]int{0, 2} {
		t.Errorf("byte notifications = %v, want [[0 2]]", rec.bytes)
	}
}
