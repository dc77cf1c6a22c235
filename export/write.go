package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/TsubasaBE/go-cellfmt/styles"
)

// WriteJSONLines writes one JSON object per row.
func WriteJSONLines(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("write row %d: %w", row.Index, err)
		}
	}
	return nil
}

// WriteXLSX writes the rows as a workbook with a header row.  Cell text is
// the formatted value and each cell style becomes an Excel cell style.
func WriteXLSX(w io.Writer, p *Profile, rows []Row) error {
	f, err := BuildXLSX(p, rows)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// BuildXLSX builds the workbook written by [WriteXLSX].
func BuildXLSX(p *Profile, rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := p.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	for i, col := range p.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col.Title()); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		if col.Width > 0 {
			name, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	ids := make(map[styles.Style]int)
	for r, row := range rows {
		for c, cell := range row.Cells {
			name, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, name, cell.Value); err != nil {
				f.Close()
				return nil, err
			}
			if cell.Style == nil || cell.Style.IsZero() {
				continue
			}
			id, ok := ids[*cell.Style]
			if !ok {
				id, err = f.NewStyle(excelStyle(*cell.Style))
				if err != nil {
					f.Close()
					return nil, fmt.Errorf("cell style %s: %w", name, err)
				}
				ids[*cell.Style] = id
			}
			if err := f.SetCellStyle(sheet, name, name, id); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

// ── style mapping ─────────────────────────────────────────────────────────────

// excelStyle maps a cell style to its closest Excel equivalent.  Colours
// that are neither hex literals nor palette names, and padding, have no
// Excel counterpart and are dropped.
func excelStyle(st styles.Style) *excelize.Style {
	font := &excelize.Font{
		Color:  excelColor(st.Color),
		Italic: st.FontStyle == "italic",
		Bold:   isBold(st.FontWeight),
		Size:   fontPoints(st.FontSize),
	}
	for _, d := range strings.Fields(st.TextDecoration) {
		switch d {
		case "underline":
			font.Underline = "single"
		case "line-through":
			font.Strike = true
		}
	}
	xs := &excelize.Style{Font: font}

	if bg := excelColor(st.BackgroundColor); bg != "" {
		xs.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{bg}}
	}
	switch a := strings.ToLower(st.TextAlign); a {
	case "left", "center", "right":
		xs.Alignment = &excelize.Alignment{Horizontal: a}
	}
	if st.Border != "" {
		style, color := excelBorder(st.Border)
		for _, side := range []string{"left", "top", "right", "bottom"} {
			xs.Border = append(xs.Border, excelize.Border{Type: side, Color: color, Style: style})
		}
	}
	return xs
}

// excelColor returns a colour as RRGGBB, or "" when it cannot be expressed.
func excelColor(c string) string {
	hex, ok := styles.LookupColor(c)
	if !ok {
		return ""
	}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return strings.ToUpper(hex)
}

func isBold(weight string) bool {
	if strings.EqualFold(weight, "bold") || strings.EqualFold(weight, "bolder") {
		return true
	}
	n, err := strconv.Atoi(weight)
	return err == nil && n >= 600
}

// fontPoints converts a CSS font size in pt or px to points.
func fontPoints(size string) float64 {
	size = strings.ToLower(strings.TrimSpace(size))
	scale := 1.0
	switch {
	case strings.HasSuffix(size, "px"):
		size, scale = strings.TrimSuffix(size, "px"), 0.75
	case strings.HasSuffix(size, "pt"):
		size = strings.TrimSuffix(size, "pt")
	}
	n, err := strconv.ParseFloat(size, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n * scale
}

// excelBorder reads a CSS border shorthand such as "2px solid green" and
// returns the Excel border style index and colour.
func excelBorder(border string) (int, string) {
	style, color := 1, "000000"
	width := 1.0
	for _, part := range strings.Fields(border) {
		switch strings.ToLower(part) {
		case "dashed":
			style = 3
		case "dotted":
			style = 4
		case "double":
			style = 6
		case "solid":
		default:
			if c := excelColor(part); c != "" {
				color = c
			} else if px := strings.TrimSuffix(strings.ToLower(part), "px"); px != part {
				if n, err := strconv.ParseFloat(px, 64); err == nil {
					width = n
				}
			}
		}
	}
	if style == 1 {
		switch {
		case width >= 3:
			style = 5
		case width >= 2:
			style = 2
		}
	}
	return style, color
}
