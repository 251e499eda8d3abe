package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer  io.Writer
	csv     *csv.Writer
	columns []string
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
	c.csv = nil
}

func (c *CSVFormatter) csvWriter() *csv.Writer {
	if c.csv == nil {
		c.csv = csv.NewWriter(c.writer)
	}
	return c.csv
}

// WriteHeader writes the header row
func (c *CSVFormatter) WriteHeader(columns []string) error {
	c.columns = append([]string{}, columns...)
	return c.csvWriter().Write(c.columns)
}

// WriteRow writes one CSV record
func (c *CSVFormatter) WriteRow(values []interface{}) error {
	if err := checkRow(c.columns, values); err != nil {
		return err
	}

	record := make([]string, len(values))
	for i, v := range values {
		record[i] = formatValue(v)
	}
	return c.csvWriter().Write(record)
}

// Close flushes the CSV writer
func (c *CSVFormatter) Close() error {
	w := c.csvWriter()
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// formatValue converts a value to string for CSV output
func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return sanitize(s)
	}
	return formatPlain(v)
}

// sanitize guards against CSV injection by prefixing characters that
// trigger formula execution in spreadsheet applications. Numbers are left
// alone so negative values survive.
func sanitize(val string) string {
	if len(val) == 0 {
		return val
	}
	if _, err := strconv.ParseFloat(val, 64); err == nil {
		return val
	}
	switch val[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		// Escape existing single quotes and prefix with quote
		return "'" + strings.ReplaceAll(val, "'", "''")
	}
	return val
}

// formatPlain converts a value to its plain string form
func formatPlain(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
