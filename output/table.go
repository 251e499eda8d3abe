package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders rows as an aligned text table. Rows are buffered
// until Close because column widths depend on every row.
type TableFormatter struct {
	writer  io.Writer
	columns []string
	rows    [][]string
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// WriteHeader sets the table header
func (t *TableFormatter) WriteHeader(columns []string) error {
	t.columns = append([]string{}, columns...)
	return nil
}

// WriteRow buffers one table row
func (t *TableFormatter) WriteRow(values []interface{}) error {
	if err := checkRow(t.columns, values); err != nil {
		return err
	}

	row := make([]string, len(values))
	for i, v := range values {
		row[i] = formatPlain(v)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Close renders the table
func (t *TableFormatter) Close() error {
	if t.columns == nil {
		return nil
	}

	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(t.columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(t.rows)
	table.Render()

	t.rows = nil
	return nil
}
