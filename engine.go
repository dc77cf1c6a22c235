package cellfmt

import (
	"log/slog"

	"golang.org/x/text/language"

	"github.com/TsubasaBE/go-cellfmt/numfmt"
)

// Engine formats values with a fixed locale, cache and logger.  The
// package-level functions use an engine built with no options.  An Engine is
// safe for concurrent use.
type Engine struct {
	cache   *Cache
	symbols numfmt.Symbols
	locale  language.Tag
	logger  *slog.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithCache sets the compile cache.  A nil cache disables memoization, so
// every call parses its format string again.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLocale sets the locale whose grouping and decimal symbols numeric
// patterns use.  The default is en-US.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
		e.symbols = numfmt.SymbolsFor(tag)
	}
}

// WithLogger sets the logger that receives debug records about degraded
// parses.  The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an engine with a [DefaultCacheSize] cache, en-US symbols and a
// discarding logger, adjusted by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		cache:   NewCache(DefaultCacheSize),
		symbols: numfmt.DefaultSymbols,
		locale:  language.AmericanEnglish,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locale returns the engine's locale.
func (e *Engine) Locale() language.Tag { return e.locale }

// Compile returns the compiled form of format, from the cache when possible.
func (e *Engine) Compile(format string) *Compiled {
	if e.cache == nil {
		return e.compile(format)
	}
	return e.cache.load(format, e.compile)
}

func (e *Engine) compile(format string) *Compiled {
	c := compile(format)
	for _, body := range c.format.Dropped {
		e.logger.Debug("condition dropped, kept as literal text",
			"format", format, "bracket", body)
	}
	return c
}

// Format formats v with the format string.  See [Format].
func (e *Engine) Format(v any, format string) Result {
	return e.Compile(format).render(v, e.symbols)
}

// FormatAny formats v with an untyped format argument.  See [FormatAny].
func (e *Engine) FormatAny(v, format any) (Result, error) {
	switch f := format.(type) {
	case nil:
		return e.Format(v, ""), nil
	case string:
		return e.Format(v, f), nil
	case Handle:
		return f.Result(v), nil
	case *Handle:
		if f == nil {
			return e.Format(v, ""), nil
		}
		return f.Result(v), nil
	default:
		return Result{}, invalidFormat(format)
	}
}

// NewValueFormatter returns a value [Handle] bound to this engine's locale.
func (e *Engine) NewValueFormatter(format string) Handle {
	return e.handle(format, KindValue)
}

// NewCellStyle returns a style [Handle] bound to this engine's locale.
func (e *Engine) NewCellStyle(format string) Handle {
	return e.handle(format, KindStyle)
}

func (e *Engine) handle(format string, kind Kind) Handle {
	return Handle{
		FormatString: format,
		Kind:         kind,
		compiled:     e.Compile(format),
		symbols:      e.symbols,
	}
}
