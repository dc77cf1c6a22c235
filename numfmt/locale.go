package numfmt

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Symbols holds the digit-grouping and decimal separators used when a
// numeric pattern asks for thousands grouping.
type Symbols struct {
	Group   string
	Decimal string
}

// DefaultSymbols are the en-US separators.
var DefaultSymbols = Symbols{Group: ",", Decimal: "."}

// SymbolsFor derives the separators of tag from its CLDR number data by
// printing two probe values through a [message.Printer].  Tags whose data
// yields no usable separator fall back to [DefaultSymbols] for that symbol.
func SymbolsFor(tag language.Tag) Symbols {
	p := message.NewPrinter(tag)
	sym := Symbols{
		Group:   nonDigits(p.Sprintf("%d", 1234567)),
		Decimal: nonDigits(p.Sprintf("%.1f", 1.5)),
	}
	if sym.Group == "" {
		sym.Group = DefaultSymbols.Group
	}
	if sym.Decimal == "" || sym.Decimal == sym.Group {
		sym.Decimal = DefaultSymbols.Decimal
	}
	return sym
}

// nonDigits returns the first run of non-digit runes in s.
func nonDigits(s string) string {
	start := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if start < 0 {
		return ""
	}
	rest := s[start:]
	if end := strings.IndexFunc(rest, unicode.IsDigit); end >= 0 {
		return rest[:end]
	}
	return rest
}
