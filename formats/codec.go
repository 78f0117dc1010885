package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/danthegoodman1/obfuscator/table"
)

// Codec converts between raw bytes and a table for one format.
type Codec interface {
	Decode(b []byte) (*table.Table, error)
	Encode(t *table.Table) ([]byte, error)
	ContentType() string
}

func CodecFor(f Format) (Codec, error) {
	switch f {
	case FormatCSV:
		return &CSVCodec{Comma: ','}, nil
	case FormatJSON:
		return &JSONCodec{}, nil
	case FormatParquet:
		return &ParquetCodec{NP: 4}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// FormatCell renders a cell as text for formats without native types.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case []byte:
		return string(val)
	}
	b, err := marshalNoEscape(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
