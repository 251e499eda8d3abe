package output

import (
	"fmt"
	"io"

	"github.com/segmentio/parquet-go"
)

// ParquetFormatter writes rows to a parquet file with one required string
// column per header column. The file footer is written by Close.
type ParquetFormatter struct {
	writer  io.Writer
	schema  *parquet.Schema
	pw      *parquet.Writer
	indexes []int
}

// NewParquetFormatter creates a new parquet formatter
func NewParquetFormatter(w io.Writer) *ParquetFormatter {
	return &ParquetFormatter{writer: w}
}

// SetOutput sets the output writer
func (p *ParquetFormatter) SetOutput(w io.Writer) {
	p.writer = w
}

// WriteHeader builds the schema
func (p *ParquetFormatter) WriteHeader(columns []string) error {
	group := make(parquet.Group, len(columns))
	for _, col := range columns {
		if _, dup := group[col]; dup {
			return fmt.Errorf("duplicate parquet column %q", col)
		}
		group[col] = parquet.String()
	}
	p.schema = parquet.NewSchema("row", group)

	// Group columns are stored sorted by name; map header positions to
	// leaf indexes.
	p.indexes = make([]int, len(columns))
	for i, col := range columns {
		leaf, ok := p.schema.Lookup(col)
		if !ok {
			return fmt.Errorf("parquet column %q not found in schema", col)
		}
		p.indexes[i] = leaf.ColumnIndex
	}

	p.pw = parquet.NewWriter(p.writer, p.schema)
	return nil
}

// WriteRow writes one row
func (p *ParquetFormatter) WriteRow(values []interface{}) error {
	if p.pw == nil {
		return ErrNoHeader
	}
	if len(values) != len(p.indexes) {
		return fmt.Errorf("row has %d values, header has %d columns", len(values), len(p.indexes))
	}

	row := make(parquet.Row, len(values))
	for i, v := range values {
		idx := p.indexes[i]
		row[idx] = parquet.ValueOf(formatPlain(v)).Level(0, 0, idx)
	}

	if _, err := p.pw.WriteRows([]parquet.Row{row}); err != nil {
		return fmt.Errorf("failed to write parquet row: %w", err)
	}
	return nil
}

// Close writes the parquet footer
func (p *ParquetFormatter) Close() error {
	if p.pw == nil {
		return nil
	}
	if err := p.pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	p.pw = nil
	return nil
}
