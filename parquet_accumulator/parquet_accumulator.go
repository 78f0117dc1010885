package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"strings"
)

type (
	// ParquetSchemaAccumulator collects one schema field per column, in column order,
	// widening a column to BYTE_ARRAY when its values disagree on a type.
	ParquetSchemaAccumulator struct {
		schema ParquetSchema
	}

	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-,omitempty"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
		Encoding       string         `json:"encoding,omitempty"`
	}

	RepetitionType string
)

const (
	TypeByteArray = "BYTE_ARRAY"
	TypeDouble    = "DOUBLE"
	TypeInt64     = "INT64"
	TypeBoolean   = "BOOLEAN"
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

func NewParquetAccumulator() ParquetSchemaAccumulator {
	return ParquetSchemaAccumulator{
		schema: ParquetSchema{
			TagStructs: SchemaTag{
				Name:           "parquet_go_root",
				RepetitionType: Required,
			},
		},
	}
}

// WriteColumn adds a field for the column, typed from its non-nil values. Integer and
// float values together make a DOUBLE column.
func (pa *ParquetSchemaAccumulator) WriteColumn(name string, values []any) {
	if pa.fieldExists(name) {
		return
	}
	pa.schema.Fields = append(pa.schema.Fields, getParquetSchema(name, values))
}

func getParquetSchema(name string, values []any) *ParquetSchema {
	schema := &ParquetSchema{
		TagStructs: SchemaTag{
			Name:           name,
			RepetitionType: Optional,
		},
	}

	colType := ""
	for _, v := range values {
		if v == nil {
			continue
		}
		t := parquetType(v)
		switch {
		case colType == "" || colType == t:
			colType = t
		case isNumeric(colType) && isNumeric(t):
			colType = TypeDouble
		default:
			// mixed column, everything is written as text
			colType = TypeByteArray
		}
		if colType == TypeByteArray {
			break
		}
	}

	switch colType {
	case TypeDouble, TypeInt64, TypeBoolean:
		schema.TagStructs.Type = colType
	default:
		schema.TagStructs.Type = TypeByteArray
		schema.TagStructs.ConvertedType = "UTF8"
		schema.TagStructs.Encoding = "PLAIN"
	}
	return schema
}

func parquetType(v any) string {
	switch v.(type) {
	case float64, float32:
		return TypeDouble
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return TypeInt64
	case bool:
		return TypeBoolean
	default:
		return TypeByteArray
	}
}

func isNumeric(t string) bool {
	return t == TypeDouble || t == TypeInt64
}

func (pa *ParquetSchemaAccumulator) fieldExists(fieldName string) (exists bool) {
	for _, field := range pa.schema.Fields {
		if field.TagStructs.Name == fieldName {
			return true
		}
	}
	return
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.TagStructs.Name)
	}
	return cols
}

// GetColumnTypes returns the physical parquet type of each column, in column order
func (pa *ParquetSchemaAccumulator) GetColumnTypes() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.TagStructs.Type)
	}
	return cols
}

// ToParquetJSONSchema recursively converts
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if ps.TagStructs.Encoding != "" {
		tagArr = append(tagArr, "encoding="+ps.TagStructs.Encoding)
	}
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON formatted schema string
func (pa *ParquetSchemaAccumulator) GetSchemaString() (string, error) {
	var fields []*ParquetJSONSchema
	for _, field := range pa.schema.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	pjs := ParquetJSONSchema{
		Tag:    "name=parquet_go_root, repetitiontype=REQUIRED",
		Fields: fields,
	}

	b, err := json.Marshal(pjs)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}
