package reader

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// writeShard writes content gzip-compressed to dir/name
func writeShard(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create shard: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write shard: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close shard: %v", err)
	}
	return path
}

func TestOpenShard_ReadsRows(t *testing.T) {
	path := writeShard(t, t.TempDir(), "part-0000.csv.gz",
		"user_id,customer.name,ts\nu1,Alice,100\nu2,\"Bob, Jr\",200\n")

	shard, err := OpenShard(path)
	if err != nil {
		t.Fatalf("OpenShard() error = %v", err)
	}
	defer func() { _ = shard.Close() }()

	wantCols := []string{"user_id", "customer.name", "ts"}
	if got := shard.Header().Names(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("Header() = %v, want %v", got, wantCols)
	}

	rows, err := shard.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ReadAll() returned %d rows, want 2", len(rows))
	}
	if got := rows[1].Value("customer.name"); got != "Bob, Jr" {
		t.Errorf("customer.name = %q, want %q", got, "Bob, Jr")
	}
	if got := rows[0].Columns(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("Columns() = %v, want %v", got, wantCols)
	}
}

func TestOpenShard_Empty(t *testing.T) {
	dir := t.TempDir()

	emptyFile := filepath.Join(dir, "empty.csv.gz")
	if err := os.WriteFile(emptyFile, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	emptyStream := writeShard(t, dir, "empty-stream.csv.gz", "")
	headerOnly := writeShard(t, dir, "header.csv.gz", "user_id,ts\n")

	for _, path := range []string{emptyFile, emptyStream, headerOnly} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			shard, err := OpenShard(path)
			if err != nil {
				t.Fatalf("OpenShard() error = %v", err)
			}
			defer func() { _ = shard.Close() }()

			if _, err := shard.Next(); !errors.Is(err, io.EOF) {
				t.Errorf("Next() error = %v, want io.EOF", err)
			}
		})
	}
}

func TestOpenShard_DecodeErrors(t *testing.T) {
	dir := t.TempDir()

	notGzip := filepath.Join(dir, "plain.csv.gz")
	if err := os.WriteFile(notGzip, []byte("user_id,ts\nu1,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ragged := writeShard(t, dir, "ragged.csv.gz", "user_id,ts\nu1,1\nu2\n")
	badQuote := writeShard(t, dir, "quote.csv.gz", "user_id,ts\nu1,\"1\n")

	tests := []struct {
		name string
		path string
	}{
		{"not gzip", notGzip},
		{"wrong field count", ragged},
		{"unterminated quote", badQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shard, err := OpenShard(tt.path)
			if err == nil {
				_, err = shard.ReadAll()
				_ = shard.Close()
			}
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("error = %v, want ErrDecode", err)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) || decodeErr.File != tt.path {
				t.Errorf("error = %#v, want *DecodeError for %s", err, tt.path)
			}
		})
	}
}

func TestOpenShard_MissingFile(t *testing.T) {
	_, err := OpenShard(filepath.Join(t.TempDir(), "nope.csv.gz"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OpenShard() error = %v, want os.ErrNotExist", err)
	}
}

func TestShardFiles_Lexicographic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"part-0010.csv.gz", "part-0002.csv.gz", "part-0001.csv.gz"} {
		writeShard(t, dir, name, "ts\n1\n")
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o700); err != nil {
		t.Fatal(err)
	}

	files, err := ShardFiles(dir)
	if err != nil {
		t.Fatalf("ShardFiles() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "part-0001.csv.gz"),
		filepath.Join(dir, "part-0002.csv.gz"),
		filepath.Join(dir, "part-0010.csv.gz"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ShardFiles() = %v, want %v", files, want)
	}
}
