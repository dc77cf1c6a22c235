// Package parser turns a conditional format string into its structured form
// and selects the sub-format that governs a given cell value.
//
// A format string takes one of two shapes:
//
//   - conditions mode: one or more bracketed comparisons such as [>100] or
//     [="A"], each followed by the sub-format it selects, plus a default
//     sub-format made of everything outside the condition runs;
//   - sections mode: the Excel positive;negative;zero;text split.
//
// Any recognised condition forces conditions mode.  [Parse] never fails: text
// it cannot interpret is kept as literal sub-format text.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/TsubasaBE/go-cellfmt/internal/scan"
	"github.com/TsubasaBE/go-cellfmt/numfmt"
)

// Operator is a comparison operator of a condition.
type Operator string

// Comparison operators.
const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "="
	OpNotEqual     Operator = "<>"
)

// Mode identifies which shape a parsed format has.
type Mode int

const (
	// ModeSections is the Excel positive;negative;zero;text split.
	ModeSections Mode = iota
	// ModeConditions is an ordered list of explicit conditions plus a default.
	ModeConditions
)

func (m Mode) String() string {
	if m == ModeConditions {
		return "conditions"
	}
	return "sections"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Condition is one bracketed comparison and the sub-format it selects.
type Condition struct {
	Op Operator `json:"operator" yaml:"operator"`
	// Threshold is the numeric operand; unused when IsText is set.
	Threshold float64 `json:"threshold" yaml:"threshold"`
	// Text is the operand of a text equality condition such as [="A"].
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	IsText    bool   `json:"isText,omitempty" yaml:"isText,omitempty"`
	SubFormat string `json:"subFormat" yaml:"subFormat"`
}

// Matches reports whether the numeric value n satisfies the condition.  A
// value equal to the threshold only satisfies >=, <= and =.
func (c Condition) Matches(n float64) bool {
	if c.IsText || math.IsNaN(n) {
		return false
	}
	switch c.Op {
	case OpGreater:
		return n > c.Threshold
	case OpLess:
		return n < c.Threshold
	case OpGreaterEqual:
		return n >= c.Threshold
	case OpLessEqual:
		return n <= c.Threshold
	case OpEqual:
		return n == c.Threshold
	case OpNotEqual:
		return n != c.Threshold
	}
	return false
}

// MatchesText reports whether the text s satisfies a text condition.
func (c Condition) MatchesText(s string) bool {
	if !c.IsText {
		return false
	}
	switch c.Op {
	case OpEqual:
		return s == c.Text
	case OpNotEqual:
		return s != c.Text
	}
	return false
}

// Format is a parsed format string.  Exactly one of the two shapes is
// populated, as reported by Mode.
type Format struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// Conditions mode.
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Default    string      `json:"defaultFormat,omitempty" yaml:"defaultFormat,omitempty"`

	// Sections mode.  Sections is the number of ';'-separated sections the
	// format string had; a section beyond that count is absent.
	Positive string `json:"positiveFormat,omitempty" yaml:"positiveFormat,omitempty"`
	Negative string `json:"negativeFormat,omitempty" yaml:"negativeFormat,omitempty"`
	Zero     string `json:"zeroFormat,omitempty" yaml:"zeroFormat,omitempty"`
	Text     string `json:"textFormat,omitempty" yaml:"textFormat,omitempty"`
	Sections int    `json:"sections,omitempty" yaml:"sections,omitempty"`

	// Dropped lists bracket bodies that looked like conditions but whose
	// operand could not be parsed.  They remain literal sub-format text.
	Dropped []string `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// SubFormats returns every sub-format string the format can select, in
// source order, without duplicates.
func (f Format) SubFormats() []string {
	var all []string
	if f.Mode == ModeConditions {
		for _, c := range f.Conditions {
			all = append(all, c.SubFormat)
		}
		all = append(all, f.Default)
	} else {
		all = append(all, f.Positive, f.Negative, f.Zero, f.Text)
	}
	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, s := range all {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ── parsing ───────────────────────────────────────────────────────────────────

var (
	// conditionBody matches the inside of a condition bracket: an operator
	// followed by an operand.
	conditionBody = regexp.MustCompile(`^\s*(>=|<=|<>|>|<|=)\s*(.*?)\s*$`)
	// directiveRun matches text made only of bracket sections, e.g. "[Red]".
	directiveRun = regexp.MustCompile(`^(\s*\[[^\]]*\])+\s*$`)
)

// parseCondition interprets a bracket body.  ok is false when the body is
// not operator-led; dropped is true when it is operator-led but the operand
// is unusable.
func parseCondition(body string) (c Condition, ok bool, dropped bool) {
	m := conditionBody.FindStringSubmatch(body)
	if m == nil {
		return Condition{}, false, false
	}
	op, operand := Operator(m[1]), m[2]
	if (op == OpEqual || op == OpNotEqual) && len(operand) >= 2 &&
		operand[0] == '"' && operand[len(operand)-1] == '"' {
		return Condition{Op: op, Text: operand[1 : len(operand)-1], IsText: true}, true, false
	}
	n, err := strconv.ParseFloat(operand, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Condition{}, false, true
	}
	return Condition{Op: op, Threshold: n}, true, false
}

// segment is a run of format text between two boundaries of the linear scan.
type segment struct {
	cond *Condition
	text strings.Builder
}

// Parse parses a format string.  Parsing the same string twice yields equal
// values.
//
// Conditions are found in a single left-to-right scan that tracks quotes and
// brackets.  A top-level bracket whose body is a comparison opens a condition
// run; the run's sub-format extends to the next top-level ';' or the next
// condition bracket.  Bracket sections directly preceding a condition in the
// same section (e.g. "[Red][<0]0.00") belong to that condition.
func Parse(format string) Format {
	var (
		f        Format
		conds    []Condition
		defaults []string
		cur      = &segment{}
	)

	closeSegment := func() {
		text := strings.TrimSpace(cur.text.String())
		if cur.cond != nil {
			c := *cur.cond
			c.SubFormat = text
			conds = append(conds, c)
		} else {
			defaults = append(defaults, text)
		}
		cur = &segment{}
	}

	rs := []rune(format)
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		switch ch {
		case '\\':
			cur.text.WriteRune(ch)
			if i+1 < len(rs) {
				i++
				cur.text.WriteRune(rs[i])
			}

		case '"':
			j := scan.QuoteEnd(rs, i)
			if j < 0 {
				// Unterminated quote: the rest is literal.
				cur.text.WriteString(string(rs[i:]))
				i = len(rs)
				break
			}
			cur.text.WriteString(string(rs[i : j+1]))
			i = j

		case '[':
			j := i + 1
			for j < len(rs) && rs[j] != ']' {
				j++
			}
			if j >= len(rs) {
				cur.text.WriteString(string(rs[i:]))
				i = len(rs)
				break
			}
			body := string(rs[i+1 : j])
			c, ok, dropped := parseCondition(body)
			if dropped {
				f.Dropped = append(f.Dropped, body)
			}
			if !ok {
				cur.text.WriteString(string(rs[i : j+1]))
				i = j
				break
			}
			var carry string
			if cur.cond == nil && directiveRun.MatchString(cur.text.String()) {
				carry = strings.TrimSpace(cur.text.String())
				cur.text.Reset()
			}
			if cur.cond != nil || strings.TrimSpace(cur.text.String()) != "" {
				closeSegment()
			}
			cur = &segment{cond: &c}
			cur.text.WriteString(carry)
			i = j

		case ';':
			closeSegment()

		default:
			cur.text.WriteRune(ch)
		}
	}
	closeSegment()

	if len(conds) > 0 {
		f.Mode = ModeConditions
		f.Conditions = conds
		var parts []string
		for _, d := range defaults {
			if d != "" {
				parts = append(parts, d)
			}
		}
		f.Default = strings.Trim(strings.Join(parts, ";"), ";")
		return f
	}

	sections := scan.Split(format)
	f.Mode = ModeSections
	f.Sections = len(sections)
	if len(sections) == 1 && sections[0] == "" {
		f.Sections = 0
	}
	for i, s := range sections {
		switch i {
		case 0:
			f.Positive = s
		case 1:
			f.Negative = s
		case 2:
			f.Zero = s
		case 3:
			f.Text = s
		}
	}
	return f
}

// ── branch selection ──────────────────────────────────────────────────────────

// Selection is the outcome of [Format.Select].
type Selection struct {
	// SubFormat is the selected sub-format text.
	SubFormat string
	// Textual means the value is rendered as text, without numeric
	// substitution.
	Textual bool
	// Signed means the selected section encodes the sign of the value, so
	// the absolute value is printed.
	Signed bool
	// Fallback means no sub-format applies and the value renders as its
	// plain text.
	Fallback bool
}

// Select picks the sub-format that governs v.
//
// In conditions mode text conditions compare the value's text, numeric
// conditions compare its numeric coercion, and the first condition that
// holds wins in source order; otherwise the default applies (as text when
// the value is not numeric).
//
// In sections mode a non-numeric value takes the text section, a positive
// number the first section, a negative number the second and zero the
// third.  Sections are positional: "0.00" covers positive numbers only, so
// -5 and 0 fall back.  An absent or empty section falls back to the value's
// plain text.
func (f Format) Select(v any) Selection {
	n := numfmt.ToNumber(v)
	nan := math.IsNaN(n)

	if f.Mode == ModeConditions {
		var text string
		textDone := false
		for _, c := range f.Conditions {
			if c.IsText {
				if !textDone {
					text, textDone = numfmt.ToString(v), true
				}
				if c.MatchesText(text) {
					return Selection{SubFormat: c.SubFormat, Textual: true}
				}
				continue
			}
			if c.Matches(n) {
				return Selection{SubFormat: c.SubFormat}
			}
		}
		return Selection{SubFormat: f.Default, Textual: nan}
	}

	if nan {
		if f.Text != "" {
			return Selection{SubFormat: f.Text, Textual: true}
		}
		return Selection{Fallback: true}
	}

	var sel Selection
	switch {
	case n > 0:
		sel = Selection{SubFormat: f.Positive}
	case n < 0:
		sel = Selection{SubFormat: f.Negative, Signed: true}
	default:
		sel = Selection{SubFormat: f.Zero}
	}
	if sel.SubFormat == "" {
		return Selection{Fallback: true}
	}
	return sel
}
