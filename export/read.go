package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Record is one input row keyed by field name.
type Record map[string]string

// ErrUnknownEncoding is returned for an encoding name [ReadCSV] does not know.
var ErrUnknownEncoding = errors.New("export: unknown encoding")

var encodings = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"koi8-r":       charmap.KOI8R,
	"macintosh":    charmap.Macintosh,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
}

// Encodings returns the accepted encoding names other than utf-8.
func Encodings() []string {
	names := make([]string, 0, len(encodings))
	for n := range encodings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReadCSV reads a CSV stream whose first row holds the field names.  name
// selects the byte encoding; "" and "utf-8" read the stream as is.
func ReadCSV(r io.Reader, name string) ([]Record, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "utf-8", "utf8":
	default:
		enc, ok := encodings[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
		}
		r = enc.NewDecoder().Reader(r)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadXML reads the elements matched by the XPath expression rowPath as
// records.  The fields of a record are the element's attributes and the
// inner text of its child elements; a child wins over an attribute of the
// same name.
func ReadXML(r io.Reader, rowPath string) ([]Record, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	nodes, err := xmlquery.QueryAll(doc, rowPath)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", rowPath, err)
	}

	records := make([]Record, 0, len(nodes))
	for _, node := range nodes {
		rec := make(Record)
		for _, attr := range node.Attr {
			rec[attr.Name.Local] = attr.Value
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xmlquery.ElementNode {
				rec[child.Data] = strings.TrimSpace(child.InnerText())
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
