// Package main is a terminal viewer demonstrating the treelight highlight
// pipeline end to end: document -> textparser forest -> highlight engine ->
// decoration callbacks -> tcell output.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/treelight/internal/config"
	"github.com/dshills/treelight/internal/document"
	"github.com/dshills/treelight/internal/highlight"
	"github.com/dshills/treelight/internal/renderer/backend"
	"github.com/dshills/treelight/internal/renderer/core"
	"github.com/dshills/treelight/internal/renderer/dirty"
	"github.com/dshills/treelight/internal/style"
	"github.com/dshills/treelight/internal/syntax/querylite"
	"github.com/dshills/treelight/internal/syntax/textparser"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := flag.String("config", "", "path to a TOML config file")
	themePath := flag.String("theme", "", "path to a JSON theme file")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *themePath != "" {
		cfg.Theme = *themePath
	}

	theme, err := style.LoadJSON(cfg.Theme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	text := sampleText
	name := "sample.txt"
	if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		text = string(data)
		name = flag.Arg(0)
	}

	v, err := newViewer(name, text, cfg, theme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer v.shutdown()

	return v.loop()
}

// stockQueries are the built-in highlight queries per sub-language.
var stockQueries = map[string]string{
	"text": `identifier @variable
number @number
string @string
comment @comment
comment @spell
punct @punctuation
fence_delim @punctuation.delimiter`,
	"code": `identifier @keyword
number @number (#set! priority 110)
string @string
comment @comment
comment @nospell
punct @punctuation`,
}

const sampleText = "# treelight demo\n" +
	"x = 1\n" +
	"greeting = \"hello world\"\n" +
	"\n" +
	"```code\n" +
	"total = 40 + 2  # injected sub-language\n" +
	"```\n" +
	"\n" +
	"press e to edit, w to save the spell style, d to detach, q to quit\n"

// spellTintHex is the color spell-flagged spans are tinted toward.
const spellTintHex = "#ff5f5f"

func newStore() (*querylite.Store, error) {
	store := querylite.NewStore()
	for lang, src := range stockQueries {
		if err := store.AddSource(lang, src); err != nil {
			return nil, fmt.Errorf("stock query %s: %w", lang, err)
		}
	}
	return store, nil
}

// viewer owns the demo pipeline and the draw loop.
type viewer struct {
	term      *backend.Terminal
	buf       *document.Buffer
	dec       *highlight.Decorator
	theme     *style.Theme
	themePath string
	tracker   *dirty.Tracker
	watcher   *config.Watcher

	topRow int
	spans  map[int][]highlight.Span // per-row spans for the current frame
}

func newViewer(name, text string, cfg *config.Config, theme *style.Theme) (*viewer, error) {
	store, err := newStore()
	if err != nil {
		return nil, err
	}

	buf := document.New(name, text)
	tracker := dirty.NewTracker()

	forest := textparser.New(buf, "text")
	reg := highlight.NewRegistry()
	if _, err := highlight.New(forest, buf, reg, highlight.Options{
		Queries:  cfg.Queries,
		Store:    store,
		Resolver: theme,
		Redraw:   tracker,
	}); err != nil {
		return nil, err
	}

	term, err := backend.NewTerminal()
	if err != nil {
		return nil, err
	}

	v := &viewer{
		term:      term,
		buf:       buf,
		theme:     theme,
		themePath: cfg.Theme,
		tracker:   tracker,
		spans:     make(map[int][]highlight.Span),
	}
	v.dec = highlight.NewDecorator(reg, v)
	v.tracker.InvalidateAll()

	if cfg.Theme != "" {
		w, err := config.Watch([]string{cfg.Theme}, v.onThemeChange)
		if err == nil {
			v.watcher = w
		}
	}
	return v, nil
}

// SetSpan implements highlight.SpanSink, bucketing spans by start row for
// the frame being drawn.
func (v *viewer) SetSpan(_ document.ID, s highlight.Span) {
	for row := s.StartRow; row <= s.EndRow; row++ {
		v.spans[row] = append(v.spans[row], s)
	}
}

func (v *viewer) onThemeChange(path string) {
	theme, err := style.LoadJSON(path)
	if err != nil {
		return
	}
	*v.theme = *theme
	v.tracker.InvalidateAll()
	v.term.Post(tcell.NewEventInterrupt(nil))
}

func (v *viewer) shutdown() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
	v.term.Shutdown()
}

func (v *viewer) loop() int {
	for {
		v.draw()

		switch ev := v.term.PollEvent().(type) {
		case *tcell.EventResize:
			v.tracker.InvalidateAll()
		case *tcell.EventInterrupt:
			// Theme reload already invalidated; redraw on next pass.
		case *tcell.EventKey:
			if done := v.handleKey(ev); done {
				return 0
			}
		}
	}
}

func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	_, height := v.term.Size()

	switch {
	case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
		v.dec.OnDetach(v.buf.ID())
		return true
	case ev.Key() == tcell.KeyDown || ev.Rune() == 'j':
		if v.topRow+1 < v.buf.LineCount() {
			v.topRow++
			v.tracker.InvalidateAll()
		}
	case ev.Key() == tcell.KeyUp || ev.Rune() == 'k':
		if v.topRow > 0 {
			v.topRow--
			v.tracker.InvalidateAll()
		}
	case ev.Rune() == 'e':
		// Edit a visible row to exercise the invalidation path.
		row := v.topRow + height/2
		if row >= v.buf.LineCount() {
			row = v.buf.LineCount() - 1
		}
		v.buf.SetLine(row, v.buf.Line(row)+" # edited")
	case ev.Rune() == 'w':
		// Persist a tinted spell style into the theme file; the watcher
		// picks up the write and reloads.
		if v.themePath != "" {
			spell := style.Tint(core.DefaultStyle(), spellTintHex, 0.6).Undercurl()
			_ = style.SaveStyle(v.themePath, "spell", spell)
		}
	case ev.Rune() == 'd':
		v.dec.OnDetach(v.buf.ID())
		v.tracker.InvalidateAll()
	}
	return false
}

// draw renders the visible window through the decoration callbacks.
func (v *viewer) draw() {
	width, height := v.term.Size()
	if height <= 0 {
		return
	}

	spansTaken, full := v.tracker.Take()
	if !full && len(spansTaken) == 0 {
		return
	}

	botline := v.topRow + height - 1
	if botline >= v.buf.LineCount() {
		botline = v.buf.LineCount() - 1
	}

	clear(v.spans)
	interested := v.dec.OnWinOpen(v.buf.ID(), v.topRow, botline)

	for row := v.topRow; row <= botline; row++ {
		if !full && !rowDirty(spansTaken, row) {
			continue
		}
		if interested {
			v.dec.OnLine(v.buf.ID(), row)
		}
		v.drawRow(row, row-v.topRow, width)
	}
	for y := botline - v.topRow + 1; y < height; y++ {
		for x := 0; x < width; x++ {
			v.term.SetCell(x, y, ' ', v.theme.Style(style.None))
		}
	}
	v.term.Show()
}

func rowDirty(spans []dirty.Span, row int) bool {
	for _, s := range spans {
		if s.ContainsRow(row) {
			return true
		}
	}
	return false
}

// drawRow renders one buffer row at screen row y, resolving overlapping
// spans by priority (later emissions win ties). Concealed regions render
// their replacement text once, at the region start; the covered cells are
// hidden.
func (v *viewer) drawRow(row, y, width int) {
	line := v.buf.Line(row)
	spans := v.spans[row]

	x := 0
	for _, cell := range cells(line) {
		if x >= width {
			break
		}
		st, win, ok := v.styleAt(spans, row, cell.col)
		if ok && win.HasConceal {
			if row == win.StartRow && cell.col == win.StartCol {
				for _, r := range win.Conceal {
					if x >= width {
						break
					}
					v.term.SetCell(x, y, r, st)
					x++
				}
			}
			continue
		}
		v.term.SetCell(x, y, cell.r, st)
		x += cell.width
	}
	for ; x < width; x++ {
		v.term.SetCell(x, y, ' ', v.theme.Style(style.None))
	}
}

// styleAt resolves the winning span for a byte column. Spell-flagged spans
// get their foreground tinted toward the spell-error color.
func (v *viewer) styleAt(spans []highlight.Span, row, col int) (core.Style, highlight.Span, bool) {
	var win highlight.Span
	found := false
	bestPriority := -1
	for _, s := range spans {
		if !spanCoversCol(s, row, col) {
			continue
		}
		if s.Priority >= bestPriority {
			win = s
			bestPriority = s.Priority
			found = true
		}
	}

	st := v.theme.Style(style.None)
	if found {
		st = v.theme.Style(win.Style)
		if win.Spell == highlight.SpellOn {
			st = style.Tint(st, spellTintHex, 0.35)
		}
	}
	return st, win, found
}

// spanCoversCol reports whether a span covers (row, col).
func spanCoversCol(s highlight.Span, row, col int) bool {
	if row < s.StartRow || row > s.EndRow {
		return false
	}
	if row == s.StartRow && col < s.StartCol {
		return false
	}
	if row == s.EndRow && col >= s.EndCol {
		return false
	}
	return true
}
