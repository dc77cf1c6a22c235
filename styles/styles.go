// Package styles holds the presentation side of a sub-format: the [Style]
// a grid applies to a cell, the fixed colour palette, and [Extract], which
// strips style directives out of a sub-format and leaves the value template
// behind.  It is a deliberately small, import-cycle-free package so that
// the root package and the export layer can both depend on it.
package styles

import (
	"sort"
	"strings"
)

// Style is the per-cell style produced by a format string.  Every field is a
// CSS-compatible value; empty fields are unset.
type Style struct {
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	FontWeight      string `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	FontStyle       string `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty"`
	TextDecoration  string `json:"textDecoration,omitempty" yaml:"textDecoration,omitempty"`
	Border          string `json:"border,omitempty" yaml:"border,omitempty"`
	FontSize        string `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	TextAlign       string `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`
	Padding         string `json:"padding,omitempty" yaml:"padding,omitempty"`
}

// IsZero reports whether no property is set.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Merge returns s with every non-empty property of o laid over it.
func (s Style) Merge(o Style) Style {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&s.Color, o.Color)
	set(&s.BackgroundColor, o.BackgroundColor)
	set(&s.FontWeight, o.FontWeight)
	set(&s.FontStyle, o.FontStyle)
	set(&s.Border, o.Border)
	set(&s.FontSize, o.FontSize)
	set(&s.TextAlign, o.TextAlign)
	set(&s.Padding, o.Padding)
	if o.TextDecoration != "" {
		s.TextDecoration = addDecoration(s.TextDecoration, o.TextDecoration)
	}
	return s
}

// CSS renders the style as an inline CSS declaration list with properties in
// a stable order, e.g. "color: #FF0000; font-weight: bold".
func (s Style) CSS() string {
	props := []struct{ name, value string }{
		{"color", s.Color},
		{"background-color", s.BackgroundColor},
		{"font-weight", s.FontWeight},
		{"font-style", s.FontStyle},
		{"text-decoration", s.TextDecoration},
		{"border", s.Border},
		{"font-size", s.FontSize},
		{"text-align", s.TextAlign},
		{"padding", s.Padding},
	}
	var parts []string
	for _, p := range props {
		if p.value != "" {
			parts = append(parts, p.name+": "+p.value)
		}
	}
	return strings.Join(parts, "; ")
}

// addDecoration composes text-decoration values so that underline and
// line-through can coexist.  Existing values keep their position.
func addDecoration(cur, add string) string {
	fields := strings.Fields(cur)
	for _, a := range strings.Fields(add) {
		found := false
		for _, f := range fields {
			if f == a {
				found = true
				break
			}
		}
		if !found {
			fields = append(fields, a)
		}
	}
	return strings.Join(fields, " ")
}

// ── palette ───────────────────────────────────────────────────────────────────

// Palette maps the colour names accepted in [NAME] and {NAME} directives
// (upper-cased) to their hex values.
var Palette = map[string]string{
	"RED":     "#FF0000",
	"GREEN":   "#008000",
	"BLUE":    "#0000FF",
	"YELLOW":  "#FFFF00",
	"MAGENTA": "#FF00FF",
	"CYAN":    "#00FFFF",
	"WHITE":   "#FFFFFF",
	"BLACK":   "#000000",
	"BROWN":   "#A52A2A",
	"ORANGE":  "#FFA500",
	"PINK":    "#FFC0CB",
	"GRAY":    "#808080",
	"GREY":    "#808080",
}

// IndexedColors is the Excel 56-colour palette addressed by [ColorN]
// directives (N = 1..56).
var IndexedColors = [56]string{
	"#000000", "#FFFFFF", "#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#FF00FF", "#00FFFF",
	"#800000", "#008000", "#000080", "#808000", "#800080", "#008080", "#C0C0C0", "#808080",
	"#9999FF", "#993366", "#FFFFCC", "#CCFFFF", "#660066", "#FF8080", "#0066CC", "#CCCCFF",
	"#000080", "#FF00FF", "#FFFF00", "#00FFFF", "#800080", "#800000", "#008080", "#0000FF",
	"#00CCFF", "#CCFFFF", "#CCFFCC", "#FFFF99", "#99CCFF", "#FF99CC", "#CC99FF", "#FFCC99",
	"#3366FF", "#33CCCC", "#99CC00", "#FFCC00", "#FF9900", "#FF6600", "#666699", "#969696",
	"#003366", "#339966", "#003300", "#333300", "#993300", "#993366", "#333399", "#333333",
}

// LookupColor resolves a palette name, an Excel ColorN index or a #RGB /
// #RRGGBB literal to a colour value.  Names are case-insensitive.
func LookupColor(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if isHexColor(name) {
		return name, true
	}
	upper := strings.ToUpper(name)
	if hex, ok := Palette[upper]; ok {
		return hex, true
	}
	if strings.HasPrefix(upper, "COLOR") {
		n := 0
		digits := upper[len("COLOR"):]
		if digits == "" || len(digits) > 2 {
			return "", false
		}
		for _, d := range digits {
			if d < '0' || d > '9' {
				return "", false
			}
			n = n*10 + int(d-'0')
		}
		if n >= 1 && n <= len(IndexedColors) {
			return IndexedColors[n-1], true
		}
	}
	return "", false
}

// ColorNames returns the palette names in sorted order.
func ColorNames() []string {
	names := make([]string, 0, len(Palette))
	for n := range Palette {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
