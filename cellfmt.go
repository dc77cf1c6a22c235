// Package cellfmt interprets Excel-style conditional format strings and turns
// a cell value into the text a grid displays plus the style it applies.
//
// # Quick start
//
//	res := cellfmt.Format(-1000, `[>0]**$#,##0.00**[Green];[<0]**$-#,##0.00**[Red];**$0.00**[Gray]`)
//	fmt.Println(res.Value)       // "$-1,000.00"
//	fmt.Println(res.Style.CSS()) // "color: #FF0000; font-weight: bold"
//
// # Format strings
//
// A format string is either a list of conditions, each a bracketed
// comparison followed by the sub-format it selects, plus a default:
//
//	[>80]"🟢 Excellent"[Green];[>60]"🟡 Good"[Yellow];"🔴 Poor"[Red]
//	[="A"]"Alpha";[="B"]"Beta";"Other"
//
// or the Excel positive;negative;zero;text section split:
//
//	#,##0.00;[Red](#,##0.00);"-";@
//
// Sections are positional.  A value whose section is missing or empty, such
// as -5 against "0.00", renders as its plain text.
//
// Each sub-format mixes style directives ([Red], {Yellow}, [Bold], **x**,
// BG:lightgreen, ...) with a value template (0.00, #,##0, 0.0%, @, quoted
// labels, $UP$ emoji macros).  See [styles.Extract] and [numfmt.Render] for
// the full grammar of each half.
//
// # Grids
//
// Per-cell callers should compile once and render many times.  A [Handle]
// returned by [NewValueFormatter] or [NewCellStyle] carries the compiled
// format and is also the value to persist: it marshals to its format string
// and kind.
//
//	h := cellfmt.NewValueFormatter("#,##0.00")
//	for _, row := range rows {
//	    text := h.Value(row.Amount)
//	}
//
// # Errors
//
// Format strings never produce errors.  Malformed brackets, unknown
// directives, unparsable thresholds and unterminated quotes degrade to
// literal text, and values that do not fit the selected sub-format render as
// their plain text.  The only error is [ErrInvalidFormat], returned by
// [FormatAny] when the format argument is not a string.
package cellfmt

import (
	"errors"
	"fmt"

	"github.com/TsubasaBE/go-cellfmt/parser"
	"github.com/TsubasaBE/go-cellfmt/styles"
)

// Version is the current version of the go-cellfmt library.
const Version = "1.0.0"

// ErrInvalidFormat is returned by [FormatAny] when the format argument is
// neither nil, a string nor a [Handle].
var ErrInvalidFormat = errors.New("cellfmt: format must be a string")

// Result is the outcome of formatting one value.
type Result struct {
	// Value is the display text.
	Value string `json:"value" yaml:"value"`
	// Style is the cell style, or nil when the selected sub-format carries
	// no style directive.
	Style *styles.Style `json:"style,omitempty" yaml:"style,omitempty"`
}

// defaultEngine backs the package-level functions.
var defaultEngine = New()

// Format formats v with the format string using the default engine.  An
// empty format renders the plain text of v.  Format never panics.
func Format(v any, format string) Result {
	return defaultEngine.Format(v, format)
}

// FormatAny is [Format] for callers holding an untyped format argument, such
// as a decoded JSON payload.  A nil format behaves like the empty string and
// a [Handle] is used as is.  Any other non-string type returns
// [ErrInvalidFormat].
func FormatAny(v, format any) (Result, error) {
	return defaultEngine.FormatAny(v, format)
}

// Compile parses format once for repeated use.  Results are memoized in the
// default engine's cache.
func Compile(format string) *Compiled {
	return defaultEngine.Compile(format)
}

// Parse returns the structured form of format.
func Parse(format string) parser.Format {
	return defaultEngine.Compile(format).Parsed()
}

// NewValueFormatter returns a value [Handle] for format.
func NewValueFormatter(format string) Handle {
	return defaultEngine.NewValueFormatter(format)
}

// NewCellStyle returns a style [Handle] for format.
func NewCellStyle(format string) Handle {
	return defaultEngine.NewCellStyle(format)
}

func invalidFormat(format any) error {
	return fmt.Errorf("%w, got %T", ErrInvalidFormat, format)
}
