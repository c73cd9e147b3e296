package main

import (
	"testing"

	"github.com/dshills/treelight/internal/highlight"
	"github.com/dshills/treelight/internal/style"
)

func testViewer() (*viewer, *style.Theme) {
	theme := style.Default()
	return &viewer{theme: theme, spans: make(map[int][]highlight.Span)}, theme
}

func TestSpanCoversCol(t *testing.T) {
	s := highlight.Span{StartRow: 1, StartCol: 2, EndRow: 2, EndCol: 3}

	tests := []struct {
		name     string
		row, col int
		want     bool
	}{
		{"inside start row", 1, 2, true},
		{"before start col", 1, 1, false},
		{"middle of start row", 1, 99, true},
		{"end row before end col", 2, 2, true},
		{"end row at end col", 2, 3, false},
		{"row outside", 0, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spanCoversCol(s, tt.row, tt.col); got != tt.want {
				t.Errorf("spanCoversCol(%d, %d) = %v, want %v", tt.row, tt.col, got, tt.want)
			}
		})
	}
}

func TestStyleAt(t *testing.T) {
	v, theme := testViewer()
	hVar, _ := theme.Resolve("variable", "")
	hNum, _ := theme.Resolve("number", "")

	t.Run("no covering span", func(t *testing.T) {
		_, _, ok := v.styleAt(nil, 0, 0)
		if ok {
			t.Error("styleAt without spans reported a winner")
		}
	})

	t.Run("higher priority wins", func(t *testing.T) {
		spans := []highlight.Span{
			{EndCol: 5, Style: hVar, Priority: 100},
			{EndCol: 5, Style: hNum, Priority: 110},
		}
		st, win, ok := v.styleAt(spans, 0, 2)
		if !ok || win.Style != hNum {
			t.Fatalf("winner = %+v, want the priority-110 span", win)
		}
		if !st.Equals(theme.Style(hNum)) {
			t.Error("returned style does not match the winning span")
		}
	})

	t.Run("later emission wins ties", func(t *testing.T) {
		spans := []highlight.Span{
			{EndCol: 5, Style: hVar, Priority: 100},
			{EndCol: 5, Style: hNum, Priority: 100},
		}
		_, win, _ := v.styleAt(spans, 0, 2)
		if win.Style != hNum {
			t.Errorf("winner style = %d, want the later span's", win.Style)
		}
	})

	t.Run("conceal metadata surfaces on the winner", func(t *testing.T) {
		spans := []highlight.Span{
			{EndCol: 5, Style: hNum, Priority: 110, Conceal: "*", HasConceal: true},
		}
		_, win, ok := v.styleAt(spans, 0, 2)
		if !ok || !win.HasConceal || win.Conceal != "*" {
			t.Errorf("winner = %+v, want conceal \"*\"", win)
		}
	})

	t.Run("spell span is tinted", func(t *testing.T) {
		spans := []highlight.Span{
			{EndCol: 5, Style: hVar, Priority: 100, Spell: highlight.SpellOn},
		}
		st, _, _ := v.styleAt(spans, 0, 2)
		if st.Equals(theme.Style(hVar)) {
			t.Error("spell-flagged span should be tinted away from its base style")
		}
	})
}
