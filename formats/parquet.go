package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/danthegoodman1/obfuscator/parquet_accumulator"
	"github.com/danthegoodman1/obfuscator/table"
	"github.com/danthegoodman1/obfuscator/utils"
)

var (
	ErrNoColumns       = utils.PermError("table has no columns")
	ErrColumnCollision = utils.PermError("column names collide once converted to parquet field names")
)

// ParquetCodec writes every column as an OPTIONAL field typed from its values.
type ParquetCodec struct {
	// NP is the parallelism handed to the parquet reader and writer
	NP int64
}

func (c *ParquetCodec) ContentType() string {
	return "application/vnd.apache.parquet"
}

func (c *ParquetCodec) np() int64 {
	if c.NP < 1 {
		return 1
	}
	return c.NP
}

func (c *ParquetCodec) Encode(t *table.Table) (b []byte, err error) {
	// the parquet marshaller panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in parquet writer: %v", r)
		}
	}()

	if t.NumColumns() == 0 {
		return nil, ErrNoColumns
	}
	if err = checkFieldNames(t.Columns()); err != nil {
		return nil, err
	}

	accumulator := parquet_accumulator.NewParquetAccumulator()
	names := t.Columns()
	for _, name := range names {
		vals, _ := t.Column(name)
		accumulator.WriteColumn(name, vals)
	}
	colTypes := accumulator.GetColumnTypes()

	parquetSchema, err := accumulator.GetSchemaString()
	if err != nil {
		return nil, fmt.Errorf("error in GetSchemaString: %w", err)
	}

	var buf bytes.Buffer
	pw, err := writer.NewJSONWriterFromWriter(parquetSchema, &buf, c.np())
	if err != nil {
		return nil, fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range t.Rows() {
		rowMap := make(map[string]any, len(names))
		for i, v := range row.ColVals {
			if v != nil && colTypes[i] == parquet_accumulator.TypeByteArray {
				v = FormatCell(v)
			}
			rowMap[names[i]] = v
		}
		rowBytes, err := json.Marshal(rowMap)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal of row: %w", err)
		}
		if err = pw.Write(rowBytes); err != nil {
			return nil, fmt.Errorf("error in pw.Write for row %s: %w", string(rowBytes), err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("error in pw.WriteStop: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *ParquetCodec) Decode(b []byte) (t *table.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in parquet reader: %v", r)
		}
	}()

	fr, err := buffer.NewBufferFile(b)
	if err != nil {
		return nil, fmt.Errorf("error in NewBufferFile: %w", err)
	}
	pr, err := reader.NewParquetReader(fr, nil, c.np())
	if err != nil {
		return nil, fmt.Errorf("error in NewParquetReader: %w", err)
	}
	defer pr.ReadStop()

	inNames, exNames, err := topLevelColumns(pr)
	if err != nil {
		return nil, err
	}

	num := int(pr.GetNumRows())
	cols := make([][]any, len(inNames))
	for i := range cols {
		cols[i] = make([]any, 0, num)
	}
	if num > 0 {
		rows, err := pr.ReadByNumber(num)
		if err != nil {
			return nil, fmt.Errorf("error in ReadByNumber: %w", err)
		}
		// Struct -> columns
		for _, row := range rows {
			v := reflect.ValueOf(row)
			for i, inName := range inNames {
				cols[i] = append(cols[i], parquetValue(v.FieldByName(inName)))
			}
		}
	}

	t = table.New()
	for i, name := range exNames {
		if err := t.AddColumn(name, cols[i]); err != nil {
			return nil, fmt.Errorf("error in AddColumn: %w", err)
		}
	}
	return t, nil
}

// checkFieldNames rejects tables whose column names map to the same parquet field
// name, e.g. "email" and "Email". Such a file is written but cannot be read back.
func checkFieldNames(names []string) error {
	seen := make(map[string]string, len(names))
	for _, name := range names {
		inName := common.StringToVariableName(name)
		if prev, exists := seen[inName]; exists {
			return fmt.Errorf("%w: %q and %q", ErrColumnCollision, prev, name)
		}
		seen[inName] = name
	}
	return nil
}

// topLevelColumns returns the struct field names and the original column names of
// the root's direct children, in file order.
func topLevelColumns(pr *reader.ParquetReader) (inNames, exNames []string, err error) {
	elems := pr.SchemaHandler.SchemaElements
	infos := pr.SchemaHandler.Infos
	if len(elems) == 0 || len(infos) != len(elems) {
		return nil, nil, errors.New("parquet file has no schema")
	}
	for i := 1; i < len(elems); i += subtreeSize(elems, i) {
		inNames = append(inNames, infos[i].InName)
		exNames = append(exNames, infos[i].ExName)
	}
	return inNames, exNames, nil
}

func subtreeSize(elems []*parquet.SchemaElement, i int) int {
	size := 1
	for c := int32(0); c < elems[i].GetNumChildren(); c++ {
		size += subtreeSize(elems, i+size)
	}
	return size
}

func parquetValue(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	default:
		return v.Interface()
	}
}
