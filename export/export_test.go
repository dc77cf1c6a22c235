package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/TsubasaBE/go-cellfmt/styles"
)

const profileYAML = `
sheet: Scores
columns:
  - field: name
    header: Name
    width: 20
  - field: score
    format: '[>80]"🟢 Excellent"[Green];[>60]"🟡 Good"[Yellow];"🔴 Poor"[Red]'
  - field: balance
    format:
      formatString: '[>0]**$#,##0.00**[Green];[<0]**$-#,##0.00**[Red];**$0.00**[Gray]'
      kind: value
  - field: due
    serial: true
    format: yyyy-mm-dd
`

const scoresCSV = "name,score,balance,due\nAda,95,-1000,45000\nBob,70,1234.5,45001\nCy,10,0,\n"

func loadTestProfile(t *testing.T) *Profile {
	t.Helper()
	p, err := ParseProfile([]byte(profileYAML))
	require.NoError(t, err)
	return p
}

func TestParseProfile(t *testing.T) {
	p := loadTestProfile(t)
	assert.Equal(t, "Scores", p.Sheet)
	require.Len(t, p.Columns, 4)
	assert.Equal(t, "Name", p.Columns[0].Title())
	assert.Equal(t, "score", p.Columns[1].Title())
	assert.True(t, p.Columns[3].Serial)
	assert.Equal(t, "yyyy-mm-dd", p.Columns[3].Format.FormatString)

	_, err := ParseProfile([]byte("columns: []"))
	assert.Error(t, err)
	_, err = ParseProfile([]byte("columns:\n  - format: '0'"))
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader("\ufeffa,b\n1,2\n3\n"), "")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{"a": "1", "b": "2"}, recs[0])
	assert.Equal(t, Record{"a": "3"}, recs[1])

	recs, err = ReadCSV(strings.NewReader(""), "utf-8")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadCSVEncoding(t *testing.T) {
	latin, err := charmap.Windows1252.NewEncoder().String("city\nZürich\n")
	require.NoError(t, err)

	recs, err := ReadCSV(strings.NewReader(latin), "windows-1252")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Zürich", recs[0]["city"])

	_, err = ReadCSV(strings.NewReader(latin), "ebcdic")
	assert.True(t, errors.Is(err, ErrUnknownEncoding))
	assert.Contains(t, Encodings(), "windows-1252")
}

func TestReadXML(t *testing.T) {
	doc := `<report>
  <row id="1"><name>Ada</name><score>95</score></row>
  <row id="2" score="12"><name>Bob</name></row>
  <other/>
</report>`
	recs, err := ReadXML(strings.NewReader(doc), "//row")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{"id": "1", "name": "Ada", "score": "95"}, recs[0])
	assert.Equal(t, Record{"id": "2", "name": "Bob", "score": "12"}, recs[1])

	_, err = ReadXML(strings.NewReader(doc), "//row[")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	p := loadTestProfile(t)
	recs, err := ReadCSV(strings.NewReader(scoresCSV), "")
	require.NoError(t, err)

	rows, err := p.Apply(context.Background(), recs, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	ada := rows[0]
	assert.Equal(t, 0, ada.Index)
	assert.Equal(t, "Ada", ada.Cells[0].Value)
	assert.Nil(t, ada.Cells[0].Style)
	assert.Equal(t, "🟢 Excellent", ada.Cells[1].Value)
	assert.Equal(t, &styles.Style{Color: "#008000"}, ada.Cells[1].Style)
	assert.Equal(t, "$-1,000.00", ada.Cells[2].Value)
	assert.Equal(t, &styles.Style{Color: "#FF0000", FontWeight: "bold"}, ada.Cells[2].Style)
	assert.Equal(t, "2023-03-15", ada.Cells[3].Value)

	assert.Equal(t, "🟡 Good", rows[1].Cells[1].Value)
	assert.Equal(t, "$1,234.50", rows[1].Cells[2].Value)
	assert.Equal(t, "2023-03-16", rows[1].Cells[3].Value)

	assert.Equal(t, "🔴 Poor", rows[2].Cells[1].Value)
	assert.Equal(t, "$0.00", rows[2].Cells[2].Value)
}

func TestApplyPreservesOrder(t *testing.T) {
	p, err := ParseProfile([]byte("columns:\n  - field: n\n    format: '0.0'\n"))
	require.NoError(t, err)
	recs := make([]Record, 500)
	for i := range recs {
		recs[i] = Record{"n": fmt.Sprint(i)}
	}
	rows, err := p.Apply(context.Background(), recs, 8)
	require.NoError(t, err)
	for i, row := range rows {
		require.Equal(t, i, row.Index)
		require.Equal(t, fmt.Sprintf("%d.0", i), row.Cells[0].Value)
	}
}

func TestApplyCancelled(t *testing.T) {
	p := loadTestProfile(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Apply(ctx, []Record{{"score": "1"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteJSONLines(t *testing.T) {
	p := loadTestProfile(t)
	recs, err := ReadCSV(strings.NewReader(scoresCSV), "")
	require.NoError(t, err)
	rows, err := p.Apply(context.Background(), recs, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONLines(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var first struct {
		Index int `json:"index"`
		Cells []struct {
			Field string          `json:"field"`
			Value string          `json:"value"`
			Style json.RawMessage `json:"style"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "score", first.Cells[1].Field)
	assert.Equal(t, "🟢 Excellent", first.Cells[1].Value)
	assert.JSONEq(t, `{"color":"#008000"}`, string(first.Cells[1].Style))
	assert.Empty(t, first.Cells[0].Style)
}

func TestWriteXLSX(t *testing.T) {
	p := loadTestProfile(t)
	recs, err := ReadCSV(strings.NewReader(scoresCSV), "")
	require.NoError(t, err)
	rows, err := p.Apply(context.Background(), recs, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, p, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Scores", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Name", header)

	v, err := f.GetCellValue("Scores", "C2")
	require.NoError(t, err)
	assert.Equal(t, "$-1,000.00", v)

	red, err := f.GetCellStyle("Scores", "C2")
	require.NoError(t, err)
	assert.NotZero(t, red)
	green, err := f.GetCellStyle("Scores", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, red, green)

	plain, err := f.GetCellStyle("Scores", "A2")
	require.NoError(t, err)
	assert.Zero(t, plain)
}

func TestExcelStyle(t *testing.T) {
	xs := excelStyle(styles.Style{
		Color:           "#F00",
		BackgroundColor: "Yellow",
		FontWeight:      "700",
		FontStyle:       "italic",
		TextDecoration:  "underline line-through",
		FontSize:        "16px",
		TextAlign:       "center",
		Border:          "2px solid green",
	})
	require.NotNil(t, xs.Font)
	assert.Equal(t, "FF0000", xs.Font.Color)
	assert.True(t, xs.Font.Bold)
	assert.True(t, xs.Font.Italic)
	assert.True(t, xs.Font.Strike)
	assert.Equal(t, "single", xs.Font.Underline)
	assert.Equal(t, 12.0, xs.Font.Size)
	assert.Equal(t, []string{"FFFF00"}, xs.Fill.Color)
	require.NotNil(t, xs.Alignment)
	assert.Equal(t, "center", xs.Alignment.Horizontal)
	require.Len(t, xs.Border, 4)
	assert.Equal(t, excelize.Border{Type: "left", Color: "008000", Style: 2}, xs.Border[0])

	plain := excelStyle(styles.Style{BackgroundColor: "lightgreen", Padding: "4px"})
	assert.Empty(t, plain.Fill.Color)
	assert.Nil(t, plain.Alignment)
	assert.False(t, plain.Font.Bold)
}
