package style

import (
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/treelight/internal/renderer/core"
)

// LoadJSON reads a theme from a JSON file of the form:
//
//	{
//	  "name": "my-theme",
//	  "styles": {
//	    "comment": {"fg": "#6a9955", "italic": true},
//	    "string.mylang": {"fg": "#ce9178", "bg": "#1e1e1e"}
//	  }
//	}
//
// A missing file is not an error; it yields the built-in default theme.
func LoadJSON(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading theme %s: %w", path, err)
	}
	return ParseJSON(data)
}

// ParseJSON parses theme JSON.
func ParseJSON(data []byte) (*Theme, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("theme: invalid JSON")
	}
	doc := gjson.ParseBytes(data)

	name := doc.Get("name").String()
	if name == "" {
		name = "unnamed"
	}
	t := NewTheme(name)

	var parseErr error
	doc.Get("styles").ForEach(func(key, value gjson.Result) bool {
		s, err := parseStyle(value)
		if err != nil {
			parseErr = fmt.Errorf("theme style %q: %w", key.String(), err)
			return false
		}
		t.Set(key.String(), s)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return t, nil
}

// parseStyle converts one style object into a core.Style.
func parseStyle(v gjson.Result) (core.Style, error) {
	s := core.DefaultStyle()

	if fg := v.Get("fg"); fg.Exists() {
		c, err := parseColor(fg.String())
		if err != nil {
			return s, err
		}
		s.Foreground = c
	}
	if bg := v.Get("bg"); bg.Exists() {
		c, err := parseColor(bg.String())
		if err != nil {
			return s, err
		}
		s.Background = c
	}
	if v.Get("bold").Bool() {
		s = s.Bold()
	}
	if v.Get("italic").Bool() {
		s = s.Italic()
	}
	if v.Get("underline").Bool() {
		s = s.Underline()
	}
	if v.Get("undercurl").Bool() {
		s = s.Undercurl()
	}
	return s, nil
}

// parseColor parses a "#rrggbb" hex string.
func parseColor(hex string) (core.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return core.Color{}, fmt.Errorf("bad color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return core.ColorFromRGB(r, g, b), nil
}

// SaveStyle patches a single capture style into a theme file, creating the
// file if needed. Only set (non-default) fields are written.
func SaveStyle(path, capture string, s core.Style) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading theme %s: %w", path, err)
	}

	out := string(data)
	if out == "" {
		out = "{}"
	}

	base := "styles." + escapeKey(capture)
	if !s.Foreground.IsDefault() {
		if out, err = sjson.Set(out, base+".fg", s.Foreground.String()); err != nil {
			return err
		}
	}
	if !s.Background.IsDefault() {
		if out, err = sjson.Set(out, base+".bg", s.Background.String()); err != nil {
			return err
		}
	}
	for _, attr := range []struct {
		flag core.Attribute
		key  string
	}{
		{core.AttrBold, "bold"},
		{core.AttrItalic, "italic"},
		{core.AttrUnderline, "underline"},
		{core.AttrUndercurl, "undercurl"},
	} {
		if s.Attributes.Has(attr.flag) {
			if out, err = sjson.Set(out, base+"."+attr.key, true); err != nil {
				return err
			}
		}
	}

	return os.WriteFile(path, []byte(out), 0o644)
}

// escapeKey escapes dots in capture names so sjson treats the whole name
// as a single map key.
func escapeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}

// Tint blends a style's foreground toward the given hex color. Used for
// derived variants like spell-error tinting.
func Tint(s core.Style, hex string, amount float64) core.Style {
	target, err := colorful.Hex(hex)
	if err != nil {
		return s
	}
	fg := s.Foreground
	if fg.IsDefault() {
		fg = core.ColorFromRGB(212, 212, 212)
	}
	from := colorful.Color{R: float64(fg.R) / 255, G: float64(fg.G) / 255, B: float64(fg.B) / 255}
	blended := from.BlendLab(target, amount).Clamped()
	r, g, b := blended.RGB255()
	s.Foreground = core.ColorFromRGB(r, g, b)
	return s
}
