package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
)

func TestCSVFormatter_Write(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		rows      [][]interface{}
		wantLines int
	}{
		{
			name:      "header only",
			columns:   []string{"id", "name"},
			wantLines: 1,
		},
		{
			name:    "single row",
			columns: []string{"id", "name", "age"},
			rows: [][]interface{}{
				{int64(1), "alice", int32(30)},
			},
			wantLines: 2, // header + 1 data row
		},
		{
			name:    "multiple rows",
			columns: []string{"id", "name", "age"},
			rows: [][]interface{}{
				{int64(1), "alice", int32(30)},
				{int64(2), "bob", int32(25)},
			},
			wantLines: 3, // header + 2 data rows
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteAll(NewCSVFormatter(&buf), tt.columns, tt.rows); err != nil {
				t.Fatalf("WriteAll() error = %v", err)
			}

			// Parse CSV to verify format
			reader := csv.NewReader(strings.NewReader(buf.String()))
			records, err := reader.ReadAll()
			if err != nil {
				t.Fatalf("produced invalid CSV: %v", err)
			}

			if len(records) != tt.wantLines {
				t.Errorf("produced %d lines, want %d", len(records), tt.wantLines)
			}
			if strings.Join(records[0], ",") != strings.Join(tt.columns, ",") {
				t.Errorf("header = %v, want %v", records[0], tt.columns)
			}
		})
	}
}

func TestCSVFormatter_ColumnOrder(t *testing.T) {
	// Columns keep header order rather than being sorted
	var buf bytes.Buffer
	columns := []string{"z_last", "a_first", "m_middle"}
	rows := [][]interface{}{{"value1", "value2", "value3"}}

	if err := WriteAll(NewCSVFormatter(&buf), columns, rows); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	want := "z_last,a_first,m_middle\nvalue1,value2,value3\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestCSVFormatter_TypeFormatting(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "alice", "alice"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float", 0.25, "0.25"},
		{"whole float", float64(3), "3"},
		{"bool", true, "true"},
		{"nil", nil, ""},
		{"negative number string", "-12.5", "-12.5"},
		{"formula", "=SUM(A1:A2)", "'=SUM(A1:A2)"},
		{"formula with quote", "+1'2", "'+1''2"},
		{"at sign", "@cmd", "'@cmd"},
		{"pipe", "|calc", "'|calc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.value); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestCSVFormatter_RowErrors(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewCSVFormatter(&buf)

	if err := formatter.WriteRow([]interface{}{"x"}); !errors.Is(err, ErrNoHeader) {
		t.Errorf("WriteRow() before header error = %v, want ErrNoHeader", err)
	}

	if err := formatter.WriteHeader([]string{"a", "b"}); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if err := formatter.WriteRow([]interface{}{"x"}); err == nil {
		t.Error("WriteRow() with too few values should fail")
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"csv", "json", "table", "parquet", "CSV"} {
		t.Run(format, func(t *testing.T) {
			if _, err := New(format, &bytes.Buffer{}); err != nil {
				t.Errorf("New(%q) error = %v", format, err)
			}
		})
	}

	if _, err := New("xml", &bytes.Buffer{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("New(xml) error = %v, want ErrUnknownFormat", err)
	}
}
