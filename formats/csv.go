package formats

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/danthegoodman1/obfuscator/table"
)

// CSVCodec reads a header row followed by records. Every decoded cell is a string.
type CSVCodec struct {
	Comma rune
}

func (c *CSVCodec) ContentType() string {
	return "text/csv"
}

func (c *CSVCodec) Decode(b []byte) (*table.Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))))
	if c.Comma != 0 {
		r.Comma = c.Comma
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error in csv ReadAll: %w", err)
	}
	if len(records) == 0 {
		return table.New(), nil
	}

	header := records[0]
	cols := make([][]any, len(header))
	for i := range cols {
		cols[i] = make([]any, 0, len(records)-1)
	}
	for _, rec := range records[1:] {
		for i, cell := range rec {
			cols[i] = append(cols[i], cell)
		}
	}

	t := table.New()
	for i, name := range header {
		if err := t.AddColumn(name, cols[i]); err != nil {
			return nil, fmt.Errorf("error in AddColumn: %w", err)
		}
	}
	return t, nil
}

func (c *CSVCodec) Encode(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if c.Comma != 0 {
		w.Comma = c.Comma
	}
	if t.NumColumns() == 0 {
		return buf.Bytes(), nil
	}

	if err := w.Write(t.Columns()); err != nil {
		return nil, fmt.Errorf("error writing csv header: %w", err)
	}
	record := make([]string, t.NumColumns())
	for _, row := range t.Rows() {
		for i, v := range row.ColVals {
			record[i] = FormatCell(v)
		}
		if len(record) == 1 && record[0] == "" {
			// a blank line is skipped by readers, quote the lone empty field
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("error writing csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("error flushing csv writer: %w", err)
	}
	return buf.Bytes(), nil
}
