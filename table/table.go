package table

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrColumnExists   = errors.New("column already exists")
	ErrLengthMismatch = errors.New("column length does not match table row count")
)

type (
	// Table is a column oriented dataset. Column order is insertion order and every
	// column holds NumRows values.
	Table struct {
		names  []string
		values map[string][]any
		rows   int
	}

	Row struct {
		// The list of column names, same order as ColVals
		ColNames []string
		// The list of column values, same order as ColNames
		ColVals []any
	}
)

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{values: make(map[string][]any, len(columns))}
	for _, c := range columns {
		if _, exists := t.values[c]; exists {
			continue
		}
		t.names = append(t.names, c)
		t.values[c] = []any{}
	}
	return t
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *Table) NumRows() int {
	return t.rows
}

func (t *Table) NumColumns() int {
	return len(t.names)
}

func (t *Table) HasColumn(name string) bool {
	_, exists := t.values[name]
	return exists
}

// Column returns the backing slice of the named column.
func (t *Table) Column(name string) ([]any, bool) {
	vals, exists := t.values[name]
	return vals, exists
}

// AddColumn appends a new column. The first column added to an empty table sets the row count.
func (t *Table) AddColumn(name string, values []any) error {
	if t.HasColumn(name) {
		return fmt.Errorf("%w: %s", ErrColumnExists, name)
	}
	if len(t.names) > 0 && len(values) != t.rows {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrLengthMismatch, name, len(values), t.rows)
	}
	if t.values == nil {
		t.values = make(map[string][]any)
	}
	t.names = append(t.names, name)
	t.values[name] = values
	t.rows = len(values)
	return nil
}

// SetColumn replaces the values of an existing column, or appends it when absent.
func (t *Table) SetColumn(name string, values []any) error {
	if !t.HasColumn(name) {
		return t.AddColumn(name, values)
	}
	if len(values) != t.rows {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrLengthMismatch, name, len(values), t.rows)
	}
	t.values[name] = values
	return nil
}

// AppendRow adds one row. Columns named in the row but unknown to the table are added
// and backfilled with nil, known columns missing from the row get nil.
func (t *Table) AppendRow(row Row) error {
	if len(row.ColNames) != len(row.ColVals) {
		return fmt.Errorf("%w: row has %d names and %d values", ErrLengthMismatch, len(row.ColNames), len(row.ColVals))
	}
	if t.values == nil {
		t.values = make(map[string][]any)
	}
	for _, name := range row.ColNames {
		if !t.HasColumn(name) {
			t.names = append(t.names, name)
			t.values[name] = make([]any, t.rows)
		}
	}
	for _, name := range t.names {
		t.values[name] = append(t.values[name], nil)
	}
	for i, name := range row.ColNames {
		t.values[name][t.rows] = row.ColVals[i]
	}
	t.rows++
	return nil
}

func (t *Table) Row(i int) Row {
	r := Row{
		ColNames: t.Columns(),
		ColVals:  make([]any, len(t.names)),
	}
	for j, name := range t.names {
		r.ColVals[j] = t.values[name][i]
	}
	return r
}

func (t *Table) Rows() []Row {
	rows := make([]Row, t.rows)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// Get returns the value of the named column, nil when the column is absent.
func (r Row) Get(name string) any {
	for i, n := range r.ColNames {
		if n == name {
			return r.ColVals[i]
		}
	}
	return nil
}

// Clone copies the table structure and column slices. Cell values are shared.
func (t *Table) Clone() *Table {
	c := &Table{
		names:  t.Columns(),
		values: make(map[string][]any, len(t.values)),
		rows:   t.rows,
	}
	for name, vals := range t.values {
		cp := make([]any, len(vals))
		copy(cp, vals)
		c.values[name] = cp
	}
	return c
}

// Equal reports whether both tables have the same columns in the same order with deeply equal values.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.names) != len(o.names) {
		return false
	}
	for i, name := range t.names {
		if o.names[i] != name {
			return false
		}
		a, b := t.values[name], o.values[name]
		for j := 0; j < t.rows; j++ {
			if !reflect.DeepEqual(a[j], b[j]) {
				return false
			}
		}
	}
	return true
}
