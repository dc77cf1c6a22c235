package numfmt

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// ── value coercion ────────────────────────────────────────────────────────────

// ToNumber coerces a cell value to a float64 the way a spreadsheet grid does
// before comparing it against a condition threshold.
//
//   - numeric kinds convert directly; bool becomes 1 or 0
//   - strings are trimmed and parsed as decimal (or 0x/0o/0b prefixed
//     integer) literals; "Infinity" with an optional sign is accepted
//   - time.Time becomes Unix milliseconds
//   - nil, empty or whitespace-only strings and anything unparsable give NaN
func ToNumber(v any) float64 {
	switch val := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		return parseNumber(val)
	case json.Number:
		return parseNumber(string(val))
	case time.Time:
		return float64(val.UnixMilli())
	}
	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// strconv also accepts "inf", "nan" and friends, which a grid does not.
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return math.NaN()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if len(lower) > 2 && lower[0] == '0' {
		base := 0
		switch lower[1] {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}
		if base != 0 {
			if n, err := strconv.ParseUint(lower[2:], base, 64); err == nil {
				return float64(n)
			}
		}
	}
	return math.NaN()
}

// ToString renders a cell value as plain text.  nil renders as the empty
// string, never as "nil" or "null"; numbers use the shortest representation
// that round-trips, switching to exponent notation outside [1e-6, 1e21).
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return FormatNumber(val)
	case float32:
		return FormatNumber(float64(val))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case json.Number:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// FormatNumber renders f with the shortest round-tripping decimal
// representation, e.g. 3 → "3", 0.1 → "0.1", 1e21 → "1e+21", 1e-7 → "1e-7".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

// ToFixed renders f with exactly digits decimal places.
//
// Rounding works on the exact binary value of f and breaks exact ties away
// from zero, so 1.005 (stored as 1.00499…) gives "1.00" while 0.125 gives
// "0.13".  Magnitudes of 1e21 and above fall back to [FormatNumber].
func ToFixed(f float64, digits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return FormatNumber(f)
	}
	if digits < 0 {
		digits = 0
	}
	return new(big.Rat).SetFloat64(f).FloatString(digits)
}
