package export

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	cellfmt "github.com/TsubasaBE/go-cellfmt"
)

// Cell is one formatted value.
type Cell struct {
	Field string `json:"field"`
	Raw   string `json:"raw"`
	cellfmt.Result
}

// Row is one formatted record.  Index is the position of the record in the
// input.
type Row struct {
	Index int    `json:"index"`
	Cells []Cell `json:"cells"`
}

// Apply formats every record with the profile using up to workers
// goroutines.  Rows come back in input order.  Apply stops early and returns
// the context error when ctx is cancelled.
func (p *Profile) Apply(ctx context.Context, records []Record, workers int) ([]Row, error) {
	if workers < 1 {
		workers = 1
	}
	rows := make([]Row, len(records))
	sem := make(chan struct{}, workers)
	done := make(chan int, len(records))

	for i := range records {
		go func(i int) {
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() == nil {
				rows[i] = p.formatRecord(i, records[i])
			}
			done <- i
		}(i)
	}

	for range records {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slog.Debug("profile applied", "rows", len(rows), "columns", len(p.Columns), "workers", workers)
	return rows, nil
}

func (p *Profile) formatRecord(i int, rec Record) Row {
	row := Row{Index: i, Cells: make([]Cell, len(p.Columns))}
	for j, col := range p.Columns {
		raw := rec[col.Field]
		row.Cells[j] = Cell{
			Field:  col.Field,
			Raw:    raw,
			Result: col.Format.Result(p.value(col, raw)),
		}
	}
	return row
}

// value converts raw field text to the value handed to the formatter.
// Serial columns turn numbers into dates; everything else stays text, which
// the formatter coerces to a number where a condition or placeholder needs
// one.
func (p *Profile) value(col Column, raw string) any {
	if !col.Serial {
		return raw
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	t, err := cellfmt.SerialToTime(n, p.Date1904)
	if err != nil {
		return raw
	}
	return t
}
