// Package output writes result rows and report tables in several formats.
//
// Currently supported formats:
//   - CSV: Comma-separated values with header row
//   - JSON Lines: One JSON object per line, keys in column order
//   - Table: Aligned text table for terminals
//   - Parquet: Single row group file with string columns
//
// Example usage:
//
//	formatter, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = formatter.WriteHeader([]string{"user_id", "ts"})
//	_ = formatter.WriteRow([]interface{}{"u1", 1})
//	if err := formatter.Close(); err != nil {
//	    log.Fatal(err)
//	}
package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	// ErrUnknownFormat is returned by New for an unsupported format name
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrNoHeader is returned when a row is written before the header
	ErrNoHeader = errors.New("header not written")
)

// Formatter defines the interface for output formatters.
//
// WriteHeader is called once before any row. Rows hold one value per
// header column. Close flushes buffered output; it does not close the
// underlying writer.
type Formatter interface {
	// WriteHeader declares the columns of the rows that follow
	WriteHeader(columns []string) error

	// WriteRow writes one row
	WriteRow(values []interface{}) error

	// Close flushes any buffered output
	Close() error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

var constructors = map[string]func(io.Writer) Formatter{
	"csv":     func(w io.Writer) Formatter { return NewCSVFormatter(w) },
	"json":    func(w io.Writer) Formatter { return NewJSONFormatter(w) },
	"table":   func(w io.Writer) Formatter { return NewTableFormatter(w) },
	"parquet": func(w io.Writer) Formatter { return NewParquetFormatter(w) },
}

// New returns the formatter registered under format
func New(format string, w io.Writer) (Formatter, error) {
	constructor, ok := constructors[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
	return constructor(w), nil
}

// Formats returns the supported format names
func Formats() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteAll writes a header and every row, then closes the formatter
func WriteAll(f Formatter, columns []string, rows [][]interface{}) error {
	if err := f.WriteHeader(columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := f.WriteRow(row); err != nil {
			return err
		}
	}
	return f.Close()
}

// checkRow verifies a row against the declared columns
func checkRow(columns []string, values []interface{}) error {
	if columns == nil {
		return ErrNoHeader
	}
	if len(values) != len(columns) {
		return fmt.Errorf("row has %d values, header has %d columns", len(values), len(columns))
	}
	return nil
}
