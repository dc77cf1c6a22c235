package cellfmt

import (
	"strings"

	"github.com/TsubasaBE/go-cellfmt/numfmt"
	"github.com/TsubasaBE/go-cellfmt/parser"
	"github.com/TsubasaBE/go-cellfmt/styles"
)

// Compiled is a parsed format string with the style directives of every
// sub-format already extracted.  It is immutable and safe for concurrent use.
type Compiled struct {
	source   string
	format   parser.Format
	branches map[string]branch
}

// branch is a sub-format split into its value template and style.
type branch struct {
	template string
	style    styles.Style
}

func compile(format string) *Compiled {
	c := &Compiled{
		source:   format,
		format:   parser.Parse(format),
		branches: make(map[string]branch),
	}
	for _, sub := range c.format.SubFormats() {
		text, st := styles.Extract(sub)
		c.branches[sub] = branch{template: text, style: st}
	}
	return c
}

// Source returns the format string c was compiled from.
func (c *Compiled) Source() string { return c.source }

// Parsed returns the structured form of the format string.
func (c *Compiled) Parsed() parser.Format { return c.format }

// Format renders v with the default grouping and decimal symbols.
func (c *Compiled) Format(v any) Result {
	return c.render(v, numfmt.DefaultSymbols)
}

func (c *Compiled) render(v any, sym numfmt.Symbols) (res Result) {
	// The renderer is total over its inputs; a panic from a dependency still
	// must not take down a grid render.
	defer func() {
		if r := recover(); r != nil {
			res = Result{Value: numfmt.ToString(v)}
		}
	}()

	if strings.TrimSpace(c.source) == "" {
		return Result{Value: numfmt.ToString(v)}
	}
	sel := c.format.Select(v)
	if sel.Fallback {
		return Result{Value: numfmt.ToString(v)}
	}
	b, ok := c.branches[sel.SubFormat]
	if !ok {
		text, st := styles.Extract(sel.SubFormat)
		b = branch{template: text, style: st}
	}
	res.Value = numfmt.Render(v, b.template, numfmt.Options{
		Textual: sel.Textual,
		Signed:  sel.Signed,
		Symbols: sym,
	})
	if !b.style.IsZero() {
		st := b.style
		res.Style = &st
	}
	return res
}
