// Package numfmt renders a cell value to its display string using the value
// template that remains of a sub-format once its style directives have been
// stripped.  It is the substitution engine behind [cellfmt.Format].
//
// The public entry point is [Render].  Numeric and date/time patterns are
// tokenized by [github.com/xuri/nfp]; this package only implements the
// substitution rules on top of the resulting token stream, plus the value
// coercions ([ToNumber], [ToString], [ToFixed]) those rules depend on.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/nfp"

	"github.com/TsubasaBE/go-cellfmt/internal/scan"
)

// Options controls how [Render] substitutes a value into a pattern.
type Options struct {
	// Textual renders the value as plain text even when the pattern carries
	// numeric placeholders.  The branch selector sets it when the value is
	// not numeric or was matched by a text condition.
	Textual bool
	// Signed reports that the pattern comes from a section that encodes the
	// sign itself (the negative section of a positive;negative format), so
	// the absolute value is printed.
	Signed bool
	// Symbols are the grouping and decimal separators.  The zero value means
	// [DefaultSymbols].
	Symbols Symbols
}

// Render substitutes v into pattern.  The rules are applied in order:
//
//  1. $NAME$ emoji macros are expanded.
//  2. A pattern with no numeric placeholder and no '@' whose text contains a
//     quoted literal renders as that first literal ("pure label").
//  3. '@' is replaced by the value text; quotes are removed.
//  4. A time.Time value with date/time tokens renders through them.
//  5. Numeric placeholders render the value as a number; non-numeric
//     values fall back to their plain text.
//  6. Any other non-empty pattern is returned verbatim; an empty pattern
//     renders the plain value text.
//
// Render never panics for any value or pattern.
func Render(v any, pattern string, opts Options) string {
	pattern = ReplaceEmoji(pattern)

	hasNumeric := scan.HasPlaceholder(pattern)
	hasText := scan.HasTextPlaceholder(pattern)

	if !hasNumeric && !hasText {
		if lit, ok := scan.FirstQuoted(pattern); ok {
			return lit
		}
	}

	if hasText {
		return scan.Substitute(pattern, '@', ToString(v))
	}

	if t, ok := v.(time.Time); ok && !opts.Textual && scan.HasDateTokens(pattern) {
		if s := renderDateTime(t, pattern); s != "" {
			return s
		}
	}

	if hasNumeric {
		n := ToNumber(v)
		if opts.Textual || math.IsNaN(n) || math.IsInf(n, 0) {
			return ToString(v)
		}
		return renderNumber(n, pattern, opts)
	}

	if strings.TrimSpace(pattern) != "" {
		return pattern
	}
	return ToString(v)
}

// ── section selection ─────────────────────────────────────────────────────────

// selectSection picks the section of a multi-section numeric pattern that
// applies to val and returns it with its index.
//
//	1 section  → applies to all values
//	2 sections → [0]=positive+zero  [1]=negative
//	3 sections → [0]=positive  [1]=negative  [2]=zero
//	4 sections → [0]=positive  [1]=negative  [2]=zero  [3]=text
func selectSection(sections []nfp.Section, val float64) (nfp.Section, int) {
	switch {
	case len(sections) == 1:
		return sections[0], 0
	case len(sections) == 2:
		if val < 0 {
			return sections[1], 1
		}
		return sections[0], 0
	default: // 3 or 4
		switch {
		case val > 0:
			return sections[0], 0
		case val < 0:
			return sections[1], 1
		default: // zero
			return sections[2], 2
		}
	}
}

// ── pattern normalisation ─────────────────────────────────────────────────────

// normalizeNumeric rewrites pattern so that every character that is not a
// numeric pattern character is carried inside a double-quoted literal.
// Escapes (\x) become literals, Excel padding (_x) becomes a space, repeat
// fills (*x) are dropped, and bracket sections the style parser did not
// consume are passed through as literal text.
func normalizeNumeric(pattern string) string {
	var out, lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out.WriteByte('"')
			out.WriteString(lit.String())
			out.WriteByte('"')
			lit.Reset()
		}
	}
	rs := []rune(pattern)
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		switch ch {
		case '0', '#', '.', ',', '%', ';':
			flush()
			out.WriteRune(ch)
		case '"':
			j := i + 1
			for j < len(rs) && rs[j] != '"' {
				j++
			}
			lit.WriteString(string(rs[i+1 : j]))
			i = j
		case '\\':
			if i+1 < len(rs) {
				i++
				if rs[i] != '"' {
					lit.WriteRune(rs[i])
				}
			}
		case '_':
			if i+1 < len(rs) {
				i++
			}
			lit.WriteByte(' ')
		case '*':
			if i+1 < len(rs) {
				i++
			}
		default:
			lit.WriteRune(ch)
		}
	}
	flush()
	return out.String()
}

// ── number renderer ───────────────────────────────────────────────────────────

// renderNumber renders a finite val using the numeric pattern.
func renderNumber(val float64, pattern string, opts Options) string {
	sym := opts.Symbols
	if sym == (Symbols{}) {
		sym = DefaultSymbols
	}

	ps := nfp.NumberFormatParser()
	sections := ps.Parse(normalizeNumeric(pattern))
	if len(sections) == 0 {
		return FormatNumber(val)
	}
	sec, idx := selectSection(sections, val)
	signed := opts.Signed || (idx == 1 && len(sections) >= 2)

	// ── pass 1: collect format metadata ──────────────────────────────────────
	type meta struct {
		hasPercent      bool
		hasThousands    bool
		decZeros        int // count of '0' placeholders after decimal point
		decHashes       int // count of '#' placeholders after decimal point
		intZeros        int // count of '0' placeholders before decimal point
		hasExplicitSign bool // literal '+' or '-' ahead of the number
	}
	var m meta
	afterDecimal := false
	seenPlaceholder := false
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypePercent:
			m.hasPercent = true
		case nfp.TokenTypeThousandsSeparator:
			m.hasThousands = true
		case nfp.TokenTypeDecimalPoint:
			afterDecimal = true
		case nfp.TokenTypeZeroPlaceHolder:
			seenPlaceholder = true
			if afterDecimal {
				m.decZeros += len(tok.TValue)
			} else {
				m.intZeros += len(tok.TValue)
			}
		case nfp.TokenTypeHashPlaceHolder:
			seenPlaceholder = true
			if afterDecimal {
				m.decHashes += len(tok.TValue)
			}
		case nfp.TokenTypeLiteral:
			if !seenPlaceholder && strings.ContainsAny(tok.TValue, "+-") {
				m.hasExplicitSign = true
			}
		}
	}

	// ── apply scaling and rounding ────────────────────────────────────────────
	absVal := math.Abs(val)
	decimals := m.decZeros + m.decHashes
	if m.hasPercent {
		absVal *= 100
		decimals = 1
	}
	fixed := ToFixed(absVal, decimals)
	if strings.ContainsAny(fixed, "eI") {
		// Beyond fixed-point range: nothing sensible to group.
		return FormatNumber(val)
	}

	intStr, fracStr, _ := strings.Cut(fixed, ".")
	if !m.hasPercent && m.decHashes > 0 && len(fracStr) > m.decZeros {
		// Trim trailing zeros beyond what '0' placeholders require.
		trimTo := len(fracStr)
		for trimTo > m.decZeros && fracStr[trimTo-1] == '0' {
			trimTo--
		}
		fracStr = fracStr[:trimTo]
	}

	for len(intStr) < m.intZeros {
		intStr = "0" + intStr
	}
	if m.hasThousands {
		intStr = insertThousandsSep(intStr, sym.Group)
	}

	needsMinus := val < 0 && !signed && !m.hasExplicitSign

	// ── reassemble by walking tokens ──────────────────────────────────────────
	var sb strings.Builder
	if needsMinus {
		sb.WriteByte('-')
	}
	intEnd := -1
	fracDone := false
	afterDecimal = false

	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypeLiteral:
			sb.WriteString(tok.TValue)

		case nfp.TokenTypeDecimalPoint:
			afterDecimal = true
			if !fracDone && fracStr != "" {
				sb.WriteString(sym.Decimal)
				sb.WriteString(fracStr)
				fracDone = true
			}

		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder:
			if !afterDecimal && intEnd < 0 {
				sb.WriteString(intStr)
				intEnd = sb.Len()
			}

		case nfp.TokenTypePercent:
			sb.WriteByte('%')

		case nfp.TokenTypeThousandsSeparator:
			// Already applied to intStr; don't emit the raw comma token.

		case nfp.TokenTypeColor, nfp.TokenTypeCondition,
			nfp.TokenTypeCurrencyLanguage, nfp.TokenTypeAlignment:
			// Ignore formatting-only tokens.
		}
	}

	// If the pattern had no integer placeholder at all, just emit the integer.
	if intEnd < 0 && !afterDecimal {
		sb.WriteString(intStr)
		intEnd = sb.Len()
	}
	out := sb.String()
	// Percent patterns without a decimal point still carry one decimal.
	if !fracDone && fracStr != "" && intEnd >= 0 {
		out = out[:intEnd] + sym.Decimal + fracStr + out[intEnd:]
	}
	if out == "" || out == "-" {
		return FormatNumber(val)
	}
	return out
}

// insertThousandsSep inserts sep every three digits from the right in an
// integer string (digits only, no sign).
func insertThousandsSep(s, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	b.Grow(n + len(sep)*(n/3))
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < n; i += 3 {
		b.WriteString(sep)
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ── date/time renderer ────────────────────────────────────────────────────────

// renderDateTime renders t using the date/time tokens of pattern.  It
// returns "" when the pattern produced no output so the caller can fall back
// to another rule.
func renderDateTime(t time.Time, pattern string) string {
	ps := nfp.NumberFormatParser()
	sections := ps.Parse(pattern)
	if len(sections) == 0 {
		return ""
	}
	sec := sections[0]

	// Pre-scan to determine if any AM/PM token is present; it switches hours to the 12-hour clock.
	hasAmPm := false
	for _, tok := range sec.Items {
		if tok.TType == nfp.TokenTypeDateTimes {
			upper := strings.ToUpper(tok.TValue)
			if upper == "AM/PM" || upper == "A/P" {
				hasAmPm = true
				break
			}
		}
	}

	var sb strings.Builder
	lastWasHour := false
	wroteToken := false

	for _, tok := range sec.Items {
		switch tok.TType {

		case nfp.TokenTypeDateTimes:
			upper := strings.ToUpper(tok.TValue)
			sb.WriteString(renderDateToken(upper, t, hasAmPm, lastWasHour))
			wroteToken = true
			// Track whether this token was an hour (H / HH) for M/MM disambiguation.
			lastWasHour = upper == "H" || upper == "HH"

		case nfp.TokenTypeElapsedDateTimes:
			upper := strings.ToUpper(tok.TValue)
			sb.WriteString(renderElapsed(upper, t))
			wroteToken = true
			lastWasHour = upper == "H" || upper == "HH"

		case nfp.TokenTypeLiteral:
			// A literal separator (e.g. ":") between an hour token and a
			// following M/MM must not break minute-vs-month disambiguation.
			sb.WriteString(tok.TValue)

		default:
			lastWasHour = false
		}
	}

	if !wroteToken {
		return ""
	}
	return sb.String()
}

// renderDateToken renders a single date/time token value (already upper-cased).
func renderDateToken(upper string, t time.Time, hasAmPm bool, lastWasHour bool) string {
	switch upper {
	case "YYYY":
		return fmt.Sprintf("%04d", t.Year())
	case "YY":
		return fmt.Sprintf("%02d", t.Year()%100)

	// month / minute (disambiguated by lastWasHour)
	case "MMMM":
		return t.Month().String()
	case "MMM":
		return t.Month().String()[:3]
	case "MM":
		if lastWasHour {
			return fmt.Sprintf("%02d", t.Minute())
		}
		return fmt.Sprintf("%02d", int(t.Month()))
	case "M":
		if lastWasHour {
			return strconv.Itoa(t.Minute())
		}
		return strconv.Itoa(int(t.Month()))

	case "DDDD":
		return t.Weekday().String()
	case "DDD":
		return t.Weekday().String()[:3]
	case "DD":
		return fmt.Sprintf("%02d", t.Day())
	case "D":
		return strconv.Itoa(t.Day())

	case "HH":
		return fmt.Sprintf("%02d", clockHour(t, hasAmPm))
	case "H":
		return strconv.Itoa(clockHour(t, hasAmPm))

	case "SS":
		return fmt.Sprintf("%02d", t.Second())
	case "S":
		return strconv.Itoa(t.Second())

	case "AM/PM":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "A/P":
		if t.Hour() < 12 {
			return "A"
		}
		return "P"
	}
	return ""
}

func clockHour(t time.Time, hasAmPm bool) int {
	h := t.Hour()
	if hasAmPm {
		h %= 12
		if h == 0 {
			h = 12
		}
	}
	return h
}

// renderElapsed renders an elapsed-time token ([h], [mm], [ss] with brackets
// stripped by nfp).  A time.Time carries no duration, so elapsed units count
// from midnight of its own day.
func renderElapsed(upper string, t time.Time) string {
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	switch upper {
	case "H", "HH":
		return strconv.Itoa(secs / 3600)
	case "MM":
		return fmt.Sprintf("%02d", secs/60%60)
	case "M":
		return strconv.Itoa(secs / 60 % 60)
	case "SS":
		return fmt.Sprintf("%02d", secs%60)
	case "S":
		return strconv.Itoa(secs % 60)
	}
	return ""
}
