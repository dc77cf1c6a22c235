package cellfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/TsubasaBE/go-cellfmt/styles"
)

const (
	gradeFormat = `[>80]"🟢 Excellent"[Green];[>60]"🟡 Good"[Yellow];"🔴 Poor"[Red]`
	moneyFormat = `[>0]**$#,##0.00**[Green];[<0]**$-#,##0.00**[Red];**$0.00**[Gray]`
)

// ── Format ────────────────────────────────────────────────────────────────────

func TestFormatScenarios(t *testing.T) {
	tests := []struct {
		name   string
		v      any
		format string
		want   string
		style  *styles.Style
	}{
		{"fixed decimals", 123.456, "0.00", "123.46", nil},
		{"percent", 0.1234, "0.0%", "12.3%", nil},
		{"currency keeps space", 1234.56, `"$" #,##0.00`, "$ 1,234.56", nil},
		{"grade label", 95, gradeFormat, "🟢 Excellent", &styles.Style{Color: "#008000"}},
		{"grade middle", 70, gradeFormat, "🟡 Good", &styles.Style{Color: "#FFFF00"}},
		{"grade default", 10, gradeFormat, "🔴 Poor", &styles.Style{Color: "#FF0000"}},
		{"negative money", -1000, moneyFormat, "$-1,000.00", &styles.Style{Color: "#FF0000", FontWeight: "bold"}},
		{"positive money", 1234.5, moneyFormat, "$1,234.50", &styles.Style{Color: "#008000", FontWeight: "bold"}},
		{"zero money", 0, moneyFormat, "$0.00", &styles.Style{Color: "#808080", FontWeight: "bold"}},
		{"format as value", `[>0]"Positive"`, `[>0]"Positive"`, `[>0]"Positive"`, nil},
		{"empty format", 3.5, "", "3.5", nil},
		{"blank format", "x", "   ", "x", nil},
		{"nil value", nil, "0.00", "", nil},
		{"style only", 12, "[Red]", "12", &styles.Style{Color: "#FF0000"}},
		{"background", 5, "{Yellow}BG:lightgreen 0", "5", &styles.Style{BackgroundColor: "lightgreen"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Format(tc.v, tc.format)
			if got.Value != tc.want {
				t.Errorf("Format(%v, %q).Value = %q, want %q", tc.v, tc.format, got.Value, tc.want)
			}
			switch {
			case tc.style == nil && got.Style != nil:
				t.Errorf("Format(%v, %q).Style = %+v, want nil", tc.v, tc.format, *got.Style)
			case tc.style != nil && got.Style == nil:
				t.Errorf("Format(%v, %q).Style = nil, want %+v", tc.v, tc.format, *tc.style)
			case tc.style != nil && *got.Style != *tc.style:
				t.Errorf("Format(%v, %q).Style = %+v, want %+v", tc.v, tc.format, *got.Style, *tc.style)
			}
		})
	}
}

func TestFormatThresholdEquality(t *testing.T) {
	const f = `[>80]"High"[Green];"Low"[Red]`
	if got := Format(80, f).Value; got != "Low" {
		t.Errorf("Format(80) = %q, want Low", got)
	}
	if got := Format(81, f).Value; got != "High" {
		t.Errorf("Format(81) = %q, want High", got)
	}
}

func TestFormatTextConditions(t *testing.T) {
	const f = `[="A"]"Alpha";[="B"]"Beta";"Other"`
	tests := []struct {
		v    any
		want string
	}{
		{"A", "Alpha"},
		{"B", "Beta"},
		{"", "Other"},
		{nil, "Other"},
		{42, "Other"},
	}
	for _, tc := range tests {
		if got := Format(tc.v, f).Value; got != tc.want {
			t.Errorf("Format(%#v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestFormatNilNeverPrintsNull(t *testing.T) {
	for _, f := range []string{"@", `"Name: "@`, `[="A"]"x";@`, "0.00", "", `[>0]0;@`} {
		got := Format(nil, f).Value
		if strings.Contains(got, "null") || strings.Contains(got, "nil") || strings.Contains(got, "undefined") {
			t.Errorf("Format(nil, %q) = %q", f, got)
		}
	}
}

func TestFormatSections(t *testing.T) {
	const f = `#,##0.00;[Red](#,##0.00);"zero";"text: "@`
	tests := []struct {
		v     any
		want  string
		color string
	}{
		{1234.5, "1,234.50", ""},
		{-42.5, "(42.50)", "#FF0000"},
		{0, "zero", ""},
		{"abc", "text: abc", ""},
	}
	for _, tc := range tests {
		got := Format(tc.v, f)
		if got.Value != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.v, got.Value, tc.want)
		}
		color := ""
		if got.Style != nil {
			color = got.Style.Color
		}
		if color != tc.color {
			t.Errorf("Format(%v) color = %q, want %q", tc.v, color, tc.color)
		}
	}
}

func TestFormatEscapedQuote(t *testing.T) {
	const f = `[>0]"say \"hi\""[Green];0.00`
	if got := Format(5, f); got.Value != `say "hi"` || got.Style == nil || got.Style.Color != "#008000" {
		t.Errorf("Format(5) = %+v, want %q in green", got, `say "hi"`)
	}
	if got := Format(-1, f).Value; got != "-1.00" {
		t.Errorf("Format(-1) = %q, want %q", got, "-1.00")
	}
}

func TestFormatMissingSectionFallsBack(t *testing.T) {
	tests := []struct {
		v      any
		format string
		want   string
	}{
		{-5, "0.00", "-5"},
		{0, "0.00", "0"},
		{0, "0.00;(0.00)", "0"},
		{-2.5, "0.00;(0.00)", "(2.50)"},
		{"abc", "0.00;(0.00);0", "abc"},
	}
	for _, tc := range tests {
		got := Format(tc.v, tc.format)
		if got.Value != tc.want || got.Style != nil {
			t.Errorf("Format(%v, %q) = %+v, want %q unstyled", tc.v, tc.format, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2023, 12, 25, 14, 5, 9, 0, time.UTC)
	if got := Format(ts, "yyyy-mm-dd").Value; got != "2023-12-25" {
		t.Errorf("Format(date) = %q, want %q", got, "2023-12-25")
	}
}

func TestFormatNeverPanics(t *testing.T) {
	formats := []string{
		"", "[", "]", `"`, `\`, "[>", "[>5", `[>5]"open`, ";;;", "[[[]]]", "{", "}",
		"**", "~~x", "0.0.0", "#,#,#", "%%%", "@@", "$$$", "[>1e999]x", "[<>]",
		"[Color99]0", "B:", "yyyy;;;", "[h]:mm", "0;0;0;0;0;0", "\x00\xff",
		gradeFormat, moneyFormat,
	}
	values := []any{
		nil, "", "x", 0, -0.0, 1e308, -1e308, math.NaN(), math.Inf(1), math.Inf(-1),
		true, []int{1}, map[string]int{}, struct{}{}, time.Time{}, json.Number("12"),
	}
	for _, f := range formats {
		for _, v := range values {
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Errorf("Format(%#v, %q) panicked: %v", v, f, r)
					}
				}()
				_ = Format(v, f)
			}()
		}
	}
}

func TestFormatAny(t *testing.T) {
	res, err := FormatAny(1.5, "0.00")
	if err != nil || res.Value != "1.50" {
		t.Errorf("FormatAny(string) = %+v, %v", res, err)
	}
	res, err = FormatAny(1.5, nil)
	if err != nil || res.Value != "1.5" {
		t.Errorf("FormatAny(nil) = %+v, %v", res, err)
	}
	res, err = FormatAny(2, NewValueFormatter("0.0"))
	if err != nil || res.Value != "2.0" {
		t.Errorf("FormatAny(Handle) = %+v, %v", res, err)
	}
	_, err = FormatAny(1, 42)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("FormatAny(int) error = %v, want ErrInvalidFormat", err)
	}
	if err != nil && !strings.Contains(err.Error(), "int") {
		t.Errorf("error %q should name the offending type", err)
	}
}

func TestResultJSON(t *testing.T) {
	b, err := json.Marshal(Format(95, gradeFormat))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"value":"🟢 Excellent","style":{"color":"#008000"}}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
	b, _ = json.Marshal(Format(1, "0"))
	if string(b) != `{"value":"1"}` {
		t.Errorf("json = %s", b)
	}
}

// ── Compile / Cache ───────────────────────────────────────────────────────────

func TestCompileReusesParse(t *testing.T) {
	a := Compile(moneyFormat)
	b := Compile(moneyFormat)
	if a != b {
		t.Error("Compile returned different values for the same format")
	}
	if a.Source() != moneyFormat {
		t.Errorf("Source() = %q", a.Source())
	}
	if got := len(a.Parsed().Conditions); got != 2 {
		t.Errorf("Parsed() has %d conditions, want 2", got)
	}
	if got := a.Format(-1000).Value; got != "$-1,000.00" {
		t.Errorf("Compiled.Format = %q", got)
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	first := c.Get("0.00")
	if c.Get("0.00") != first {
		t.Error("cache miss on repeated Get")
	}
	c.Get("0.0")
	c.Get("0")
	if n := c.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
	if c.Get("0.00") == first {
		t.Error("least recently used entry was not evicted")
	}
	c.Purge()
	if n := c.Len(); n != 0 {
		t.Errorf("Len() after Purge = %d, want 0", n)
	}
}

func TestConcurrentFormat(t *testing.T) {
	e := New(WithCache(NewCache(4)))
	formats := []string{gradeFormat, moneyFormat, "0.00", "#,##0", `"$" #,##0.00`, "0.0%"}
	want := make([]string, len(formats))
	for i, f := range formats {
		want[i] = e.Format(-1234.5, f).Value
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := i % len(formats)
				if got := e.Format(-1234.5, formats[k]).Value; got != want[k] {
					t.Errorf("Format(%q) = %q, want %q", formats[k], got, want[k])
					return
				}
			}
		}()
	}
	wg.Wait()
}

// ── Engine ────────────────────────────────────────────────────────────────────

func TestEngineLocale(t *testing.T) {
	e := New(WithLocale(language.German))
	if got := e.Format(1234.5, "#,##0.00").Value; got != "1.234,50" {
		t.Errorf("German grouping = %q, want %q", got, "1.234,50")
	}
	if e.Locale() != language.German {
		t.Errorf("Locale() = %v", e.Locale())
	}
	h := e.NewValueFormatter("#,##0.00")
	if got := h.Value(1234.5); got != "1.234,50" {
		t.Errorf("Handle.Value = %q, want %q", got, "1.234,50")
	}
}

func TestEngineLogsDroppedConditions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := New(WithCache(nil), WithLogger(logger))

	got := e.Format(1, `[>abc]"x";0`).Value
	if got != "x" {
		t.Errorf("Format = %q, want %q", got, "x")
	}
	if !strings.Contains(buf.String(), "condition dropped") || !strings.Contains(buf.String(), ">abc") {
		t.Errorf("log output = %q", buf.String())
	}
}

// ── Handle ────────────────────────────────────────────────────────────────────

func TestHandle(t *testing.T) {
	v := NewValueFormatter(moneyFormat)
	s := NewCellStyle(moneyFormat)
	if v.Kind != KindValue || s.Kind != KindStyle {
		t.Fatalf("kinds = %q, %q", v.Kind, s.Kind)
	}
	if got := v.Value(-1000); got != "$-1,000.00" {
		t.Errorf("Value = %q", got)
	}
	if st := s.Style(-1000); st == nil || st.Color != "#FF0000" {
		t.Errorf("Style = %+v", st)
	}

	valueFn := v.ValueFunc()
	styleFn := s.StyleFunc()
	if got := valueFn(5); got != "$5.00" {
		t.Errorf("ValueFunc()(5) = %q", got)
	}
	if st := styleFn(5); st == nil || st.Color != "#008000" {
		t.Errorf("StyleFunc()(5) = %+v", st)
	}

	var zero Handle
	if got := zero.Value(7); got != "7" {
		t.Errorf("zero Handle Value = %q", got)
	}
}

func TestHandleJSON(t *testing.T) {
	b, err := json.Marshal(NewCellStyle("[Red]0"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"formatString":"[Red]0","kind":"style"}` {
		t.Errorf("json = %s", b)
	}

	var h Handle
	if err := json.Unmarshal(b, &h); err != nil {
		t.Fatal(err)
	}
	if h.Kind != KindStyle || h.FormatString != "[Red]0" {
		t.Errorf("decoded = %+v", h)
	}
	if st := h.Style(1); st == nil || st.Color != "#FF0000" {
		t.Errorf("decoded Style = %+v", st)
	}

	if err := json.Unmarshal([]byte(`"0.00"`), &h); err != nil {
		t.Fatal(err)
	}
	if h.Kind != KindValue || h.Value(2) != "2.00" {
		t.Errorf("bare string handle = %+v", h)
	}

	if err := json.Unmarshal([]byte(`{"formatString":"0","kind":"bogus"}`), &h); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestHandleYAML(t *testing.T) {
	var doc struct {
		Plain  Handle `yaml:"plain"`
		Styled Handle `yaml:"styled"`
	}
	src := "plain: \"0.00\"\nstyled:\n  formatString: \"[Blue]0\"\n  kind: style\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatal(err)
	}
	if got := doc.Plain.Value(1.5); got != "1.50" {
		t.Errorf("plain Value = %q", got)
	}
	if doc.Styled.Kind != KindStyle {
		t.Errorf("styled Kind = %q", doc.Styled.Kind)
	}
	if st := doc.Styled.Style(1); st == nil || st.Color != "#0000FF" {
		t.Errorf("styled Style = %+v", st)
	}

	out, err := yaml.Marshal(doc.Styled)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "kind: style") {
		t.Errorf("yaml = %s", out)
	}
}

// ── SerialToTime ──────────────────────────────────────────────────────────────

func TestSerialToTime(t *testing.T) {
	tests := []struct {
		serial float64
		d1904  bool
		want   time.Time
	}{
		{0, false, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
		{1, false, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
		{59, false, time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC)},
		{61, false, time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC)},
		{45000, false, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{45000.5, false, time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)},
		{0, true, time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)},
		{1, true, time.Date(1904, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		got, err := SerialToTime(tc.serial, tc.d1904)
		if err != nil {
			t.Errorf("SerialToTime(%v, %v): %v", tc.serial, tc.d1904, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("SerialToTime(%v, %v) = %v, want %v", tc.serial, tc.d1904, got, tc.want)
		}
	}

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1), 3e6} {
		if _, err := SerialToTime(bad, false); err == nil {
			t.Errorf("SerialToTime(%v) should fail", bad)
		}
	}
}
