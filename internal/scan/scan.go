// Package scan provides the quote- and bracket-aware scanning shared by the
// parser, styles and numfmt packages.
//
// It has no public-API contract of its own.  All callers are within the
// same module.
package scan

import "strings"

// State tracks where a left-to-right scan currently stands relative to
// double-quoted literals, square-bracket sections and backslash escapes.
//
// The zero value is a scan positioned at the start of a string.
type State struct {
	InQuote   bool
	InBracket bool
	escaped   bool
}

// TopLevel reports whether the next rune is outside any quoted literal,
// bracket section or pending escape.
func (st *State) TopLevel() bool {
	return !st.InQuote && !st.InBracket && !st.escaped
}

// Step advances the state over ch.
//
//   - a backslash escapes the following rune, both inside and outside quotes
//   - '"' toggles the in-quote flag when not inside brackets
//   - '[' opens a bracket section outside quotes, the first ']' closes it
//
// Unterminated quotes or brackets are never an error: the state simply stays
// open until the end of the input.
func (st *State) Step(ch rune) {
	if st.escaped {
		st.escaped = false
		return
	}
	switch {
	case ch == '\\' && !st.InBracket:
		st.escaped = true
	case st.InQuote:
		if ch == '"' {
			st.InQuote = false
		}
	case st.InBracket:
		if ch == ']' {
			st.InBracket = false
		}
	case ch == '"':
		st.InQuote = true
	case ch == '[':
		st.InBracket = true
	}
}

// Split divides a format string into its top-level sections on ';'.
//
// A ';' inside a quoted literal, a bracket section or after a backslash does
// not split.  Each section is trimmed of surrounding whitespace; empty
// sections are kept so that positional meaning (positive;negative;zero;text)
// survives.  Split never returns an empty slice.
func Split(s string) []string {
	var sections []string
	var st State
	start := 0
	for i, ch := range s {
		if ch == ';' && st.TopLevel() {
			sections = append(sections, strings.TrimSpace(s[start:i]))
			start = i + 1
			continue
		}
		st.Step(ch)
	}
	return append(sections, strings.TrimSpace(s[start:]))
}

// HasPlaceholder reports whether the unquoted, unbracketed part of s carries
// a numeric digit placeholder (a digit or '#').
func HasPlaceholder(s string) bool {
	var st State
	for _, ch := range s {
		if st.TopLevel() && (ch == '#' || (ch >= '0' && ch <= '9')) {
			return true
		}
		st.Step(ch)
	}
	return false
}

// HasTextPlaceholder reports whether s carries an unquoted '@'.
func HasTextPlaceholder(s string) bool {
	return IndexTopLevel(s, '@') >= 0
}

// IndexTopLevel returns the byte index of the first top-level occurrence of
// r in s, or -1.
func IndexTopLevel(s string, r rune) int {
	var st State
	for i, ch := range s {
		if ch == r && st.TopLevel() {
			return i
		}
		st.Step(ch)
	}
	return -1
}

// FirstQuoted returns the contents of the first double-quoted literal in s,
// with backslash escapes resolved.  An unterminated quote yields the
// remainder of the string.
func FirstQuoted(s string) (string, bool) {
	var st State
	for i, ch := range s {
		if ch == '"' && st.TopLevel() {
			return quotedBody(s[i+1:]), true
		}
		st.Step(ch)
	}
	return "", false
}

// quotedBody reads a quoted literal up to its closing quote.
func quotedBody(rest string) string {
	var b strings.Builder
	escaped := false
	for _, ch := range rest {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
			continue
		case ch == '"':
			return b.String()
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// QuoteEnd returns the index of the rune closing the quoted literal that
// opens at rs[open], honouring backslash escapes, or -1 when the literal is
// unterminated.
func QuoteEnd(rs []rune, open int) int {
	st := State{InQuote: true}
	for j := open + 1; j < len(rs); j++ {
		st.Step(rs[j])
		if !st.InQuote {
			return j
		}
	}
	return -1
}

// Unquote removes the double quotes and backslash escapes that delimit
// literal text, keeping everything else (including bracket sections)
// verbatim.
func Unquote(s string) string {
	return Substitute(s, -1, "")
}

// Substitute unquotes s like [Unquote] and replaces every top-level
// occurrence of r with repl.  Quoted or escaped occurrences of r are kept as
// literal text.
func Substitute(s string, r rune, repl string) string {
	var b strings.Builder
	b.Grow(len(s))
	var st State
	for _, ch := range s {
		switch {
		case ch == '"' && !st.escaped && !st.InBracket:
			// delimiter
		case ch == '\\' && !st.escaped && !st.InBracket:
			// escape marker
		case ch == r && st.TopLevel():
			b.WriteString(repl)
		default:
			b.WriteRune(ch)
		}
		st.Step(ch)
	}
	return b.String()
}

// HasDateTokens scans the unquoted portion of s for date/time token
// characters.
//
// The following characters are treated as date/time tokens when they appear
// outside double-quoted literals and outside square-bracket sections:
//
//   - d, D: day
//   - m, M: month (or minute after an hour token)
//   - y, Y: year
//   - h, H: hour
//   - s, S: second
func HasDateTokens(s string) bool {
	var st State
	for _, ch := range s {
		if st.TopLevel() {
			switch ch {
			case 'd', 'D', 'm', 'M', 'y', 'Y', 'h', 'H', 's', 'S':
				return true
			}
		}
		st.Step(ch)
	}
	return false
}
