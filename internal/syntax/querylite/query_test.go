package querylite

import (
	"testing"

	"github.com/dshills/treelight/internal/syntax"
)

func TestCompile(t *testing.T) {
	t.Run("patterns and captures", func(t *testing.T) {
		q, err := Compile(`identifier @variable
number @number
; a comment line
identifier @variable.builtin`)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if q.PatternCount() != 3 {
			t.Errorf("PatternCount = %d, want 3", q.PatternCount())
		}
		if q.CaptureCount() != 3 {
			t.Errorf("CaptureCount = %d, want 3", q.CaptureCount())
		}
		if got := q.CaptureName(0); got != "variable" {
			t.Errorf("CaptureName(0) = %q, want %q", got, "variable")
		}
		if got := q.CaptureName(99); got != "" {
			t.Errorf("CaptureName(99) = %q, want empty", got)
		}
	})

	t.Run("shared capture names share an index", func(t *testing.T) {
		q, err := Compile("identifier @name\nnumber @name")
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if q.CaptureCount() != 1 {
			t.Errorf("CaptureCount = %d, want 1", q.CaptureCount())
		}
	})

	t.Run("errors", func(t *testing.T) {
		bad := []string{
			"identifier",               // no capture
			"@variable",                // no kind
			"identifier @",             // empty capture name
			"identifier @v (#set!",     // unterminated directive
			"identifier @v (#foo x y)", // unknown directive
			"identifier @v (#set! priority zero)",
			"identifier @v (#set! priority -5)",
			"identifier @v (#set! conceal)",
			"identifier @v (#set! gravity 9)",
		}
		for _, src := range bad {
			if _, err := Compile(src); err == nil {
				t.Errorf("Compile(%q) succeeded, want error", src)
			}
		}
	})
}

func TestCompileDirectives(t *testing.T) {
	q, err := Compile(`number @number (#set! priority 120) (#set! conceal "*")`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tree := NewNode("number", 0, 0, 1)
	it := q.IterMatches(tree, nil, 0, 1)
	c, ok := it.Next()
	if !ok {
		t.Fatal("expected one capture")
	}
	if c.Metadata.Priority != 120 {
		t.Errorf("priority = %d, want 120", c.Metadata.Priority)
	}
	if !c.Metadata.HasConceal || c.Metadata.Conceal != "*" {
		t.Errorf("conceal = (%q, %v), want (\"*\", true)", c.Metadata.Conceal, c.Metadata.HasConceal)
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile should panic on a bad source")
		}
	}()
	MustCompile("identifier")
}

func drain(it syntax.MatchIterator) []syntax.Capture {
	var out []syntax.Capture
	for {
		c, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func TestIterMatchesOrder(t *testing.T) {
	// Children deliberately out of position order; the iterator must sort.
	root := NewSpanNode("source", 0, 0, 2, 5).Add(
		NewNode("identifier", 1, 4, 5),
		NewNode("identifier", 0, 0, 1),
		NewNode("identifier", 1, 0, 1),
	)
	q := MustCompile("identifier @v")

	got := drain(q.IterMatches(root, nil, 0, 3))
	if len(got) != 3 {
		t.Fatalf("capture count = %d, want 3", len(got))
	}
	want := []syntax.Range{
		{StartRow: 0, StartCol: 0, EndRow: 0, EndCol: 1},
		{StartRow: 1, StartCol: 0, EndRow: 1, EndCol: 1},
		{StartRow: 1, StartCol: 4, EndRow: 1, EndCol: 5},
	}
	for i, c := range got {
		if c.Node.Range() != want[i] {
			t.Errorf("capture %d range = %+v, want %+v", i, c.Node.Range(), want[i])
		}
	}
}

func TestIterMatchesWindow(t *testing.T) {
	root := NewSpanNode("source", 0, 0, 4, 0).Add(
		NewNode("identifier", 0, 0, 1),
		NewSpanNode("string", 0, 2, 3, 1), // straddles the window start
		NewNode("identifier", 2, 0, 1),
		NewNode("identifier", 4, 0, 1), // past the window
	)
	q := MustCompile("identifier @v\nstring @s")

	got := drain(q.IterMatches(root, nil, 1, 3))
	if len(got) != 2 {
		t.Fatalf("capture count = %d, want 2: straddling string + row-2 identifier", len(got))
	}
	if r := got[0].Node.Range(); r.StartRow != 0 || r.EndRow != 3 {
		t.Errorf("first capture should be the straddling string, got %+v", r)
	}
	if r := got[1].Node.Range(); r.StartRow != 2 {
		t.Errorf("second capture row = %d, want 2", r.StartRow)
	}
}

func TestIterMatchesForeignNode(t *testing.T) {
	q := MustCompile("identifier @v")
	it := q.IterMatches(nil, nil, 0, 10)
	if _, ok := it.Next(); ok {
		t.Error("nil node should yield no captures")
	}
}

func TestStore(t *testing.T) {
	s := NewStore()
	if err := s.AddSource("text", "identifier @v"); err != nil {
		t.Fatalf("AddSource: %v", err)
	}

	if _, ok := s.Get("text"); !ok {
		t.Error("Get should find the registered query")
	}
	if _, ok := s.Get("mystery"); ok {
		t.Error("Get should miss an unregistered language")
	}

	if err := s.AddSource("bad", "no capture here"); err == nil {
		t.Error("AddSource should propagate compile errors")
	}

	if _, err := s.Compile("text", "number @n"); err != nil {
		t.Errorf("Compile: %v", err)
	}
	if _, err := s.Compile("text", "broken"); err == nil {
		t.Error("Compile should fail on bad source")
	}
}
