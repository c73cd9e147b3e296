// Package backend wraps tcell for the demo viewer: screen lifecycle, cell
// output with style conversion, and event polling.
package backend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/treelight/internal/renderer/core"
)

// Terminal is a thin screen abstraction over tcell.
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal creates and initializes a terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.screen.Fini()
}

// Size returns the screen dimensions.
func (t *Terminal) Size() (width, height int) {
	return t.screen.Size()
}

// Clear erases the screen.
func (t *Terminal) Clear() {
	t.screen.Clear()
}

// SetCell writes one styled rune.
func (t *Terminal) SetCell(x, y int, r rune, s core.Style) {
	t.screen.SetContent(x, y, r, nil, convertStyle(s))
}

// Show flushes pending output to the terminal.
func (t *Terminal) Show() {
	t.screen.Show()
}

// PollEvent blocks for the next input event.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// Post injects an event into the poll queue, waking the draw loop from
// another goroutine.
func (t *Terminal) Post(ev tcell.Event) {
	_ = t.screen.PostEvent(ev)
}

// convertStyle maps a core.Style onto a tcell.Style.
func convertStyle(s core.Style) tcell.Style {
	st := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		st = st.Foreground(tcell.NewRGBColor(
			int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
	}
	if !s.Background.IsDefault() {
		st = st.Background(tcell.NewRGBColor(
			int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
	}

	if s.Attributes.Has(core.AttrBold) {
		st = st.Bold(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		st = st.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		st = st.Underline(true)
	}
	if s.Attributes.Has(core.AttrUndercurl) {
		st = st.Underline(tcell.UnderlineStyleCurly)
	}
	if s.Attributes.Has(core.AttrReverse) {
		st = st.Reverse(true)
	}
	if s.Attributes.Has(core.AttrStrike) {
		st = st.StrikeThrough(true)
	}
	return st
}
