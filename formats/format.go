// Package formats holds the CSV, JSON and Parquet codecs and the adapters that move
// tables between a DataStore and those codecs.
package formats

import (
	"path"
	"strings"

	"github.com/danthegoodman1/obfuscator/utils"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatJSON
	// FormatParquet is the columnar binary format
	FormatParquet
)

// ErrUnsupportedFormat carries the exact message callers match on.
var ErrUnsupportedFormat = utils.PermError("Unsupported data type. Can only process csv, json, and parquet file types")

// Supported lists every format with a codec, in dispatch order.
var Supported = []Format{FormatCSV, FormatJSON, FormatParquet}

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

func (f Format) Extension() string {
	if !f.Valid() {
		return ""
	}
	return "." + f.String()
}

func (f Format) Valid() bool {
	return f == FormatCSV || f == FormatJSON || f == FormatParquet
}

// ResolveFormat maps the suffix of p's last path element to a format.
// Matching is case-insensitive.
func ResolveFormat(p string) (Format, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return FormatUnknown, ErrUnsupportedFormat
	}
}
