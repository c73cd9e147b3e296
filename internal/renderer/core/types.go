// Package core provides shared visual types for the renderer subsystem.
// This package breaks import cycles between the highlight engine, themes,
// and display backends.
package core

import "fmt"

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrItalic              // Italic text
	AttrUnderline           // Underlined text
	AttrUndercurl           // Curly underline (spell errors)
	AttrReverse             // Reverse video (swap fg/bg)
	AttrStrike              // Strikethrough text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With returns a new attribute set with the given attribute added.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// Color represents an RGB color value or the terminal default.
type Color struct {
	R, G, B uint8
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default != other.Default {
		return false
	}
	if c.Default {
		return true
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Style represents the visual style of text.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{
		Foreground: ColorDefault,
		Background: ColorDefault,
		Attributes: AttrNone,
	}
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return Style{
		Foreground: fg,
		Background: ColorDefault,
		Attributes: AttrNone,
	}
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// WithAttributes returns a new style with the given attributes.
func (s Style) WithAttributes(attrs Attribute) Style {
	s.Attributes = attrs
	return s
}

// Bold returns a new style with the bold attribute added.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Italic returns a new style with the italic attribute added.
func (s Style) Italic() Style {
	s.Attributes |= AttrItalic
	return s
}

// Underline returns a new style with the underline attribute added.
func (s Style) Underline() Style {
	s.Attributes |= AttrUnderline
	return s
}

// Undercurl returns a new style with the undercurl attribute added.
func (s Style) Undercurl() Style {
	s.Attributes |= AttrUndercurl
	return s
}

// Merge combines two styles, with the other style taking precedence for
// any non-default color.
func (s Style) Merge(other Style) Style {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attributes |= other.Attributes
	return result
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Attributes == other.Attributes
}

// IsDefault returns true if this is the default style.
func (s Style) IsDefault() bool {
	return s.Foreground.IsDefault() &&
		s.Background.IsDefault() &&
		s.Attributes == AttrNone
}
