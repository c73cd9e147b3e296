package main

import "github.com/rivo/uniseg"

// cell is one renderable grapheme cluster with its byte column and
// display width.
type cell struct {
	r     rune
	col   int // byte offset within the line
	width int
}

// cells segments a line into grapheme clusters. Highlight spans address
// byte columns, so each cell remembers where its cluster starts.
func cells(line string) []cell {
	out := make([]cell, 0, len(line))
	g := uniseg.NewGraphemes(line)
	col := 0
	for g.Next() {
		runes := g.Runes()
		r := ' '
		if len(runes) > 0 {
			r = runes[0]
		}
		w := g.Width()
		if w < 1 {
			w = 1
		}
		out = append(out, cell{r: r, col: col, width: w})
		col += len(g.Str())
	}
	return out
}
