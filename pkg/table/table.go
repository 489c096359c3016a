// Package table holds the in-memory tabular result produced by the domain
// transformers: ordered columns over map-backed rows. A missing key reads as
// nil, so sparse rows are allowed.
package table

import (
	"sort"

	"github.com/openearth/openclimate/pkg/errors"
)

// Row is one table row keyed by column name.
type Row map[string]any

// Table is an ordered set of columns over rows.
type Table struct {
	columns []string
	index   map[string]struct{}
	rows    []Row
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

// FromMaps builds a table from decoded JSON objects. Columns appear in
// first-seen order across rows; keys within one object are taken in sorted
// order since Go maps carry none.
func FromMaps(items []map[string]any) *Table {
	t := New()
	for _, item := range items {
		t.Append(Row(item))
	}
	return t
}

func (t *Table) addColumn(c string) {
	if _, ok := t.index[c]; ok {
		return
	}
	t.index[c] = struct{}{}
	t.columns = append(t.columns, c)
}

// Append adds a row. Keys not yet known become new trailing columns.
func (t *Table) Append(r Row) {
	var fresh []string
	for k := range r {
		if _, ok := t.index[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	for _, k := range fresh {
		t.addColumn(k)
	}
	t.rows = append(t.rows, r)
}

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(c string) bool {
	_, ok := t.index[c]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns the underlying rows. Callers must not mutate them.
func (t *Table) Rows() []Row {
	return t.rows
}

// Value returns the cell at row i, column c.
func (t *Table) Value(i int, c string) any {
	return t.rows[i][c]
}

// Column returns every value of column c in row order.
func (t *Table) Column(c string) []any {
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[c]
	}
	return out
}

// Clone returns a copy whose rows can be modified independently.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		out.rows[i] = cloneRow(r)
	}
	return out
}

func cloneRow(r Row) Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// WithColumn sets column c to value on every row.
func (t *Table) WithColumn(c string, value any) *Table {
	out := t.Clone()
	out.addColumn(c)
	for _, r := range out.rows {
		r[c] = value
	}
	return out
}

// Select projects onto the named columns in the given order. Columns the
// table does not have are omitted rather than reported.
func (t *Table) Select(columns ...string) *Table {
	var keep []string
	for _, c := range columns {
		if t.HasColumn(c) {
			keep = append(keep, c)
		}
	}
	out := New(keep...)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := make(Row, len(keep))
		for _, c := range keep {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.rows[i] = nr
	}
	return out
}

// Drop removes the named columns.
func (t *Table) Drop(columns ...string) *Table {
	drop := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		drop[c] = struct{}{}
	}
	var keep []string
	for _, c := range t.columns {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	return t.Select(keep...)
}

// Rename renames columns per mapping; unknown names are ignored.
func (t *Table) Rename(mapping map[string]string) *Table {
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		if n, ok := mapping[c]; ok {
			cols[i] = n
		} else {
			cols[i] = c
		}
	}
	out := New(cols...)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if n, ok := mapping[k]; ok {
				k = n
			}
			nr[k] = v
		}
		out.rows[i] = nr
	}
	return out
}

// Where keeps rows for which keep returns true.
func (t *Table) Where(keep func(Row) bool) *Table {
	out := New(t.columns...)
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Concat stacks tables in argument order. Columns are the union in
// first-seen order. Concatenating zero tables is an EmptyResult error.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, errors.New(errors.CodeEmptyResult, "no data available: nothing to concatenate")
	}
	out := New()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			out.addColumn(c)
		}
		out.rows = append(out.rows, t.rows...)
	}
	return out, nil
}
