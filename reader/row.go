package reader

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrMissingColumn is returned when a row lacks a required column
var ErrMissingColumn = errors.New("missing column")

// Header is the ordered column list shared by every row of a shard
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header. A repeated name resolves to its first
// position.
func NewHeader(names []string) *Header {
	h := &Header{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, ok := h.index[name]; !ok {
			h.index[name] = i
		}
	}
	return h
}

// Names returns the column names in order
func (h *Header) Names() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.names...)
}

// Len returns the number of columns
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.names)
}

// Has reports whether the header contains column
func (h *Header) Has(column string) bool {
	if h == nil {
		return false
	}
	_, ok := h.index[column]
	return ok
}

// Require returns ErrMissingColumn naming every column not in the header
func (h *Header) Require(columns ...string) error {
	var missing []string
	for _, col := range columns {
		if !h.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (have %s)", ErrMissingColumn,
			strings.Join(missing, ", "), strings.Join(h.Names(), ", "))
	}
	return nil
}

// Row is one decoded record. Rows are immutable.
type Row struct {
	header *Header
	values []string
}

// NewRow pairs values with a header. values must have one entry per column.
func NewRow(header *Header, values []string) Row {
	return Row{header: header, values: values}
}

// Header returns the row's header
func (r Row) Header() *Header {
	return r.header
}

// Get returns the value of column and whether the column exists
func (r Row) Get(column string) (string, bool) {
	if r.header == nil {
		return "", false
	}
	i, ok := r.header.index[column]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Value returns the value of column, or "" if it does not exist
func (r Row) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// Columns returns the column names in order
func (r Row) Columns() []string {
	if r.header == nil {
		return nil
	}
	return r.header.Names()
}

// Values returns a copy of the values in column order
func (r Row) Values() []string {
	return append([]string(nil), r.values...)
}

// Require wraps a row sequence so that the first row's header is checked
// for columns. A missing column ends the sequence with an error wrapping
// ErrMissingColumn.
func Require(rows iter.Seq2[Row, error], columns ...string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		var checked *Header
		for row, err := range rows {
			if err == nil && row.header != checked {
				if err = row.header.Require(columns...); err == nil {
					checked = row.header
				}
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}
