package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer  io.Writer
	columns [][]byte
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// WriteHeader records the object keys. Nothing is written.
func (j *JSONFormatter) WriteHeader(columns []string) error {
	j.columns = make([][]byte, len(columns))
	for i, col := range columns {
		key, err := json.Marshal(col)
		if err != nil {
			return err
		}
		j.columns[i] = key
	}
	return nil
}

// WriteRow writes one JSON object per line with keys in header order
func (j *JSONFormatter) WriteRow(values []interface{}) error {
	if j.columns == nil {
		return ErrNoHeader
	}
	if len(values) != len(j.columns) {
		return fmt.Errorf("row has %d values, header has %d columns", len(values), len(j.columns))
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(j.columns[i])
		buf.WriteByte(':')
		value, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(value)
	}
	buf.WriteString("}\n")

	_, err := j.writer.Write(buf.Bytes())
	return err
}

// Close is a no-op; rows are written as they arrive
func (j *JSONFormatter) Close() error {
	return nil
}
