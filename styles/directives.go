package styles

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/TsubasaBE/go-cellfmt/internal/scan"
)

// keyValue matches a Key:value directive at the start of the input.  Longer
// keys come first so that "Background:" is not read as "B:".
var keyValue = regexp.MustCompile(`(?i)^(background|fontweight|fontsize|textalign|padding|border|weight|size|align|bg|b|p):([^\s"\[\]{};]+)`)

// inlineMarkers are the paired markers that wrap text, in the order they are
// applied.
var inlineMarkers = []struct {
	marker string
	apply  func(*Style)
}{
	{"**", func(s *Style) { s.FontWeight = "bold" }},
	{"~~", func(s *Style) { s.TextDecoration = addDecoration(s.TextDecoration, "line-through") }},
	{"__", func(s *Style) { s.TextDecoration = addDecoration(s.TextDecoration, "underline") }},
	{"//", func(s *Style) { s.FontStyle = "italic" }},
}

// Extract strips every style directive from sub and returns the remaining
// value template together with the style the directives describe.
//
// Recognised directives:
//
//	[Red] [green] [Grey]      colour from [Palette]; unknown names stay in the text
//	[#F00] [#FF0000]          colour literal
//	[Color10]                 Excel indexed colour
//	{Yellow} {#FFFF00}        background colour
//	[Bold] [Italic] [Underline] [Strikethrough] [Center] [Left] [Right]
//	**x** //x// __x__ ~~x~~   bold, italic, underline, strikethrough (x is kept)
//	BG:lightgreen  Background:…  Border:2px-solid-green  B:…  Weight:…
//	FontWeight:…  Size:…  FontSize:…  Align:…  TextAlign:…  Padding:…  P:…
//
// Key:value directives may also appear inside brackets.  Hyphens in their
// values become spaces.  Directives inside quoted literals are text.  A
// later directive for the same property overwrites an earlier one, except
// that underline and line-through combine.
//
// Extraction repeats until nothing more is recognised, so applying Extract
// to its own output is a no-op.
func Extract(sub string) (string, Style) {
	var st Style
	text := sub
	for {
		next, changed := stripDirectives(text, &st)
		next, marked := stripMarkers(next, &st)
		text = next
		if !changed && !marked {
			break
		}
	}
	return strings.TrimSpace(text), st
}

// stripDirectives performs one left-to-right pass removing bracket, brace
// and Key:value directives.
func stripDirectives(s string, st *Style) (string, bool) {
	rs := []rune(s)
	// off[i] is the byte offset of rs[i] in s.
	off := make([]int, 0, len(rs)+1)
	for i := range s {
		off = append(off, i)
	}
	off = append(off, len(s))
	var out strings.Builder
	out.Grow(len(s))
	changed := false

	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		switch {
		case ch == '\\':
			out.WriteRune(ch)
			if i+1 < len(rs) {
				i++
				out.WriteRune(rs[i])
			}

		case ch == '"':
			j := scan.QuoteEnd(rs, i)
			if j < 0 {
				j = len(rs) - 1
			}
			out.WriteString(string(rs[i : j+1]))
			i = j

		case ch == '[':
			j := indexFrom(rs, i+1, ']')
			if j < 0 {
				out.WriteString(string(rs[i:]))
				i = len(rs)
				continue
			}
			if applyBracket(string(rs[i+1:j]), st) {
				changed = true
			} else {
				out.WriteString(string(rs[i : j+1]))
			}
			i = j

		case ch == '{':
			if j := indexFrom(rs, i+1, '}'); j >= 0 {
				if c, ok := LookupColor(string(rs[i+1 : j])); ok {
					st.BackgroundColor = c
					changed = true
					i = j
					continue
				}
			}
			out.WriteRune(ch)

		case isKeyInitial(ch) && (i == 0 || !isWordRune(rs[i-1])):
			key, val, size := matchKeyValue(s[off[i]:])
			if size == 0 {
				out.WriteRune(ch)
				continue
			}
			setKeyValue(st, key, val)
			changed = true
			i += utf8.RuneCountInString(s[off[i]:off[i]+size]) - 1

		default:
			out.WriteRune(ch)
		}
	}
	return out.String(), changed
}

// applyBracket applies a bracket body as a directive.  It reports false when
// the body is not a style directive.
func applyBracket(body string, st *Style) bool {
	if c, ok := LookupColor(body); ok {
		st.Color = c
		return true
	}
	switch strings.ToUpper(strings.TrimSpace(body)) {
	case "BOLD":
		st.FontWeight = "bold"
	case "ITALIC":
		st.FontStyle = "italic"
	case "UNDERLINE":
		st.TextDecoration = addDecoration(st.TextDecoration, "underline")
	case "STRIKETHROUGH", "STRIKE":
		st.TextDecoration = addDecoration(st.TextDecoration, "line-through")
	case "CENTER":
		st.TextAlign = "center"
	case "LEFT":
		st.TextAlign = "left"
	case "RIGHT":
		st.TextAlign = "right"
	default:
		key, val, size := matchKeyValue(strings.TrimSpace(body))
		if size == 0 || size != len(strings.TrimSpace(body)) {
			return false
		}
		setKeyValue(st, key, val)
	}
	return true
}

// matchKeyValue matches a Key:value directive at the start of s and returns
// its key, its value with hyphens turned into spaces, and the byte length of
// the match.  size is 0 when s does not start with a directive.
func matchKeyValue(s string) (key, val string, size int) {
	m := keyValue.FindStringSubmatchIndex(s)
	if m == nil {
		return "", "", 0
	}
	return s[m[2]:m[3]], strings.ReplaceAll(s[m[4]:m[5]], "-", " "), m[1]
}

func setKeyValue(st *Style, key, val string) {
	switch strings.ToUpper(key) {
	case "BG", "BACKGROUND":
		st.BackgroundColor = val
	case "BORDER", "B":
		st.Border = val
	case "WEIGHT", "FONTWEIGHT":
		st.FontWeight = val
	case "SIZE", "FONTSIZE":
		st.FontSize = val
	case "ALIGN", "TEXTALIGN":
		st.TextAlign = val
	case "PADDING", "P":
		st.Padding = val
	}
}

// stripMarkers removes paired inline markers found outside quotes and
// brackets.  An unpaired marker stays in the text.
func stripMarkers(s string, st *Style) (string, bool) {
	changed := false
	for _, im := range inlineMarkers {
		for {
			first := indexMarker(s, im.marker, 0)
			if first < 0 {
				break
			}
			second := indexMarker(s, im.marker, first+len(im.marker))
			if second < 0 {
				break
			}
			s = s[:first] + s[first+len(im.marker):second] + s[second+len(im.marker):]
			im.apply(st)
			changed = true
		}
	}
	return s, changed
}

// indexMarker returns the byte index of the first top-level occurrence of
// marker in s at or after from, or -1.
func indexMarker(s, marker string, from int) int {
	var st scan.State
	for i, ch := range s {
		if i >= from && st.TopLevel() && strings.HasPrefix(s[i:], marker) {
			return i
		}
		st.Step(ch)
	}
	return -1
}

func indexFrom(rs []rune, from int, r rune) int {
	for j := from; j < len(rs); j++ {
		if rs[j] == r {
			return j
		}
	}
	return -1
}

// isKeyInitial reports whether r can start a Key:value directive.
func isKeyInitial(r rune) bool {
	switch unicode.ToLower(r) {
	case 'b', 'f', 't', 'p', 'w', 's', 'a':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
