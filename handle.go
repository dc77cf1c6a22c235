package cellfmt

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/TsubasaBE/go-cellfmt/numfmt"
	"github.com/TsubasaBE/go-cellfmt/styles"
)

// Kind says which half of a [Result] a [Handle] is attached for.
type Kind string

// Handle kinds.
const (
	KindValue Kind = "value"
	KindStyle Kind = "style"
)

// Handle is a format string bound to its compiled form.  It is what a column
// profile persists: JSON and YAML encode only the format string and kind, and
// decoding compiles the format again with the default engine.
//
// The zero Handle formats every value as its plain text.
type Handle struct {
	FormatString string
	Kind         Kind

	compiled *Compiled
	symbols  numfmt.Symbols
}

func (h Handle) get() (*Compiled, numfmt.Symbols) {
	sym := h.symbols
	if sym == (numfmt.Symbols{}) {
		sym = numfmt.DefaultSymbols
	}
	if h.compiled == nil {
		return defaultEngine.Compile(h.FormatString), sym
	}
	return h.compiled, sym
}

// Result formats v.
func (h Handle) Result(v any) Result {
	c, sym := h.get()
	return c.render(v, sym)
}

// Value returns the display text for v.
func (h Handle) Value(v any) string {
	return h.Result(v).Value
}

// Style returns the style for v, or nil when none applies.
func (h Handle) Style(v any) *styles.Style {
	return h.Result(v).Style
}

// ValueFunc returns a per-cell callback that renders display text.
func (h Handle) ValueFunc() func(any) string {
	c, sym := h.get()
	return func(v any) string { return c.render(v, sym).Value }
}

// StyleFunc returns a per-cell callback that returns the cell style.
func (h Handle) StyleFunc() func(any) *styles.Style {
	c, sym := h.get()
	return func(v any) *styles.Style { return c.render(v, sym).Style }
}

// ── serialisation ─────────────────────────────────────────────────────────────

type handleWire struct {
	FormatString string `json:"formatString" yaml:"formatString"`
	Kind         Kind   `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func (h *Handle) set(w handleWire) error {
	switch w.Kind {
	case "":
		w.Kind = KindValue
	case KindValue, KindStyle:
	default:
		return fmt.Errorf("cellfmt: unknown handle kind %q", w.Kind)
	}
	*h = defaultEngine.handle(w.FormatString, w.Kind)
	return nil
}

// MarshalJSON encodes h as {"formatString": ..., "kind": ...}.
func (h Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(handleWire{FormatString: h.FormatString, Kind: h.kindOrValue()})
}

// UnmarshalJSON accepts either the object form or a bare format string,
// which yields a value handle.
func (h *Handle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return h.set(handleWire{FormatString: s})
	}
	var w handleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("cellfmt: decode handle: %w", err)
	}
	return h.set(w)
}

// MarshalYAML implements yaml.Marshaler.
func (h Handle) MarshalYAML() (interface{}, error) {
	return handleWire{FormatString: h.FormatString, Kind: h.kindOrValue()}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same shapes as
// [Handle.UnmarshalJSON].
func (h *Handle) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return h.set(handleWire{FormatString: value.Value})
	}
	var w handleWire
	if err := value.Decode(&w); err != nil {
		return fmt.Errorf("cellfmt: decode handle: %w", err)
	}
	return h.set(w)
}

func (h Handle) kindOrValue() Kind {
	if h.Kind == "" {
		return KindValue
	}
	return h.Kind
}
