package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/gzip"
)

// ErrDecode is matched by every error caused by unreadable shard content
var ErrDecode = errors.New("malformed shard")

// DecodeError reports unreadable content in a shard. Line is the CSV line
// the error was found on, or 0 if the gzip stream itself is broken.
type DecodeError struct {
	File string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("decode %s line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.File, e.Err)
}

// Is makes every DecodeError match ErrDecode
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ShardReader reads rows from one gzip-compressed CSV shard.
//
// It holds the OS file handle and the decompressor so both are released by
// Close.
type ShardReader struct {
	path   string
	file   *os.File
	gz     *gzip.Reader
	csv    *csv.Reader
	header *Header
}

// OpenShard opens a shard and reads its header record.
//
// An empty file, or a compressed stream with no records, is a shard with no
// rows: Header returns nil and Next returns io.EOF.
func OpenShard(path string) (*ShardReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shard: %w", err)
	}

	r := &ShardReader{path: path, file: file}

	gz, err := gzip.NewReader(file)
	if errors.Is(err, io.EOF) {
		return r, nil
	}
	if err != nil {
		_ = file.Close()
		return nil, &DecodeError{File: path, Err: err}
	}
	r.gz = gz
	r.csv = csv.NewReader(gz)

	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return r, nil
	}
	if err != nil {
		_ = r.Close()
		return nil, r.decodeError(err)
	}
	r.header = NewHeader(record)

	return r, nil
}

// Header returns the shard's columns, or nil for a shard with no records
func (r *ShardReader) Header() *Header {
	return r.header
}

// Next returns the next row, or io.EOF once the shard is exhausted
func (r *ShardReader) Next() (Row, error) {
	if r.header == nil {
		return Row{}, io.EOF
	}

	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, r.decodeError(err)
	}
	return NewRow(r.header, record), nil
}

// ReadAll reads every remaining row into memory
func (r *ShardReader) ReadAll() ([]Row, error) {
	rows := make([]Row, 0)
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Close releases the decompressor and the file. It is safe to call Close
// multiple times.
func (r *ShardReader) Close() error {
	var gzErr error
	if r.gz != nil {
		gzErr = r.gz.Close()
		r.gz = nil
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		if err != nil {
			return err
		}
	}
	return gzErr
}

func (r *ShardReader) decodeError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &DecodeError{File: r.path, Line: parseErr.Line, Err: parseErr.Err}
	}
	return &DecodeError{File: r.path, Err: err}
}

// ShardFiles returns the regular files in dir sorted lexicographically by
// name. Row order across shards follows this order.
func ShardFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list shards: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}
