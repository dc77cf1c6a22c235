// Package export applies a column profile, a list of fields each bound to a
// format string, to tabular records and writes the formatted rows out as
// JSON lines or as a styled XLSX workbook.
//
// Records can be read from CSV (UTF-8 or a legacy single-byte code page) or
// from XML documents whose row elements are selected by an XPath expression.
package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	cellfmt "github.com/TsubasaBE/go-cellfmt"
)

// Profile binds record fields to formats.
//
//	sheet: Scores
//	columns:
//	  - field: score
//	    header: Score
//	    format: '[>80]"🟢 Excellent"[Green];[>60]"🟡 Good"[Yellow];"🔴 Poor"[Red]'
//	  - field: due
//	    serial: true
//	    format: yyyy-mm-dd
type Profile struct {
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	// Date1904 selects the 1904 date system for serial columns.
	Date1904 bool     `json:"date1904,omitempty" yaml:"date1904,omitempty"`
	Columns  []Column `json:"columns" yaml:"columns"`
}

// Column is one output column.
type Column struct {
	Field  string `json:"field" yaml:"field"`
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
	// Format accepts a bare format string or {formatString, kind}.
	Format cellfmt.Handle `json:"format" yaml:"format"`
	// Serial marks numeric values as spreadsheet date serials.
	Serial bool    `json:"serial,omitempty" yaml:"serial,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
}

// Title returns the header text of the column.
func (c Column) Title() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Field
}

// ParseProfile decodes a YAML or JSON profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if len(p.Columns) == 0 {
		return nil, fmt.Errorf("profile has no columns")
	}
	for i, c := range p.Columns {
		if c.Field == "" {
			return nil, fmt.Errorf("profile column %d has no field", i+1)
		}
	}
	return &p, nil
}

// LoadProfile reads and decodes the profile at path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}
