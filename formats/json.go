package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/danthegoodman1/gojsonutils"

	"github.com/danthegoodman1/obfuscator/table"
)

var (
	ErrNotJSONObject = errors.New("expected a JSON object")
	ErrNotFlatMap    = errors.New("not a flat map")
)

// JSONCodec reads an array of records, a single record or newline delimited records.
// Nested objects are flattened into their own columns. Encoding always produces an array
// of records in column order.
type JSONCodec struct{}

func (c *JSONCodec) ContentType() string {
	return "application/json"
}

func (c *JSONCodec) Decode(b []byte) (*table.Table, error) {
	t := table.New()
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return t, nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if b[0] == '[' {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("error in dec.Token: %w", err)
		}
		for dec.More() {
			row, err := decodeRecord(dec)
			if err != nil {
				return nil, err
			}
			if err := t.AppendRow(row); err != nil {
				return nil, fmt.Errorf("error in AppendRow: %w", err)
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("error in dec.Token: %w", err)
		}
		return t, nil
	}

	for {
		row, err := decodeRecord(dec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := t.AppendRow(row); err != nil {
			return nil, fmt.Errorf("error in AppendRow: %w", err)
		}
	}
	return t, nil
}

// decodeRecord reads one object off dec keeping its key order.
func decodeRecord(dec *json.Decoder) (table.Row, error) {
	var row table.Row
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return row, io.EOF
		}
		return row, fmt.Errorf("error in dec.Token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return row, fmt.Errorf("%w, got %v", ErrNotJSONObject, tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return row, fmt.Errorf("error in dec.Token: %w", err)
		}
		key, _ := keyTok.(string)
		var val any
		if err := dec.Decode(&val); err != nil {
			return row, fmt.Errorf("error in dec.Decode: %w", err)
		}

		nested, isMap := val.(map[string]any)
		if !isMap || len(nested) == 0 {
			row.ColNames = append(row.ColNames, key)
			row.ColVals = append(row.ColVals, numberValue(val))
			continue
		}
		flat, err := gojsonutils.Flatten(map[string]any{key: nested}, nil)
		if err != nil {
			return row, fmt.Errorf("error flattening JSON map: %w", err)
		}
		flatMap, ok := flat.(map[string]any)
		if !ok {
			return row, fmt.Errorf("%w: %+v", ErrNotFlatMap, flat)
		}
		keys := make([]string, 0, len(flatMap))
		for k := range flatMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row.ColNames = append(row.ColNames, k)
			row.ColVals = append(row.ColVals, numberValue(flatMap[k]))
		}
	}

	if _, err := dec.Token(); err != nil {
		return row, fmt.Errorf("error in dec.Token: %w", err)
	}
	return row, nil
}

// numberValue turns a decoded json.Number into int64 when it is an integer that fits,
// float64 when it has a fraction or exponent. Larger integers stay json.Number so no
// digits are lost.
func numberValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		return n
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n
}

func (c *JSONCodec) Encode(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	names := t.Columns()
	encodedNames := make([][]byte, len(names))
	for i, name := range names {
		b, err := marshalNoEscape(name)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal of column name: %w", err)
		}
		encodedNames[i] = b
	}

	buf.WriteByte('[')
	for i, row := range t.Rows() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, v := range row.ColVals {
			if j > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalNoEscape(v)
			if err != nil {
				return nil, fmt.Errorf("error in json.Marshal of column %s: %w", names[j], err)
			}
			buf.Write(encodedNames[j])
			buf.WriteByte(':')
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
