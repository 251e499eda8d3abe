package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/vegasq/zaius-export/export"
	"github.com/vegasq/zaius-export/reader"
	"github.com/vegasq/zaius-export/storage"
)

// ErrClosed is returned when rows are requested from a closed stream
var ErrClosed = errors.New("result stream closed")

// RowStream is a closable sequence of rows
type RowStream interface {
	Rows() iter.Seq2[reader.Row, error]
	Close() error
}

// Opener downloads export results
type Opener struct {
	factory     storage.ClientFactory
	workers     int
	scratchRoot string
	logger      *slog.Logger
}

// Option configures an Opener
type Option func(*Opener)

// WithWorkers bounds the number of concurrent downloads
func WithWorkers(n int) Option {
	return func(o *Opener) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithScratchRoot sets the directory scratch directories are created in.
// The default is the system temporary directory.
func WithScratchRoot(dir string) Option {
	return func(o *Opener) {
		o.scratchRoot = dir
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opener) {
		o.logger = logger
	}
}

// NewOpener returns an Opener that obtains a storage client from factory
// for the listing and for every download
func NewOpener(factory storage.ClientFactory, opts ...Option) *Opener {
	o := &Opener{
		factory: factory,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open downloads every shard under loc and returns a stream over their
// rows. Nothing is left on disk when Open fails.
func (o *Opener) Open(ctx context.Context, loc storage.Locator) (*Stream, error) {
	store, err := o.factory(ctx)
	if err != nil {
		return nil, &export.TransportError{Op: "list " + loc.String(), Err: err}
	}

	keys, err := storage.ListAll(ctx, store, loc)
	if err != nil {
		return nil, &export.TransportError{Op: "list " + loc.String(), Err: err}
	}
	keys, err = shardKeys(keys)
	if err != nil {
		return nil, err
	}

	session := uuid.NewString()
	dir, err := os.MkdirTemp(o.scratchRoot, "zaius-export-"+session+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	logger := o.logger.With("session", session, "locator", loc.String())
	logger.Debug("downloading result shards", "shards", len(keys), "dir", dir, "workers", o.workers)

	if err := o.download(ctx, loc.Bucket, keys, dir, logger); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	files, err := reader.ShardFiles(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to enumerate shards: %w", err)
	}

	return &Stream{dir: dir, files: files, logger: logger}, nil
}

// shardKeys drops the completion sentinel and directory markers. Shards
// are stored under their base name, so two keys sharing one are rejected.
func shardKeys(keys []string) ([]string, error) {
	seen := make(map[string]string, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, "/") {
			continue
		}
		name := path.Base(key)
		if name == storage.SentinelObject {
			continue
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("shards %q and %q share the file name %q", prev, key, name)
		}
		seen[name] = key
		out = append(out, key)
	}
	return out, nil
}

// download fetches keys into dir with a bounded pool. The first failure
// cancels the downloads still running and is returned.
func (o *Opener) download(ctx context.Context, bucket string, keys []string, dir string, logger *slog.Logger) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	pool, err := ants.NewPool(o.workers, ants.WithPanicHandler(func(v any) {
		fail(fmt.Errorf("download worker panic: %v", v))
	}))
	if err != nil {
		return fmt.Errorf("failed to create download pool: %w", err)
	}
	defer pool.Release()

	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := o.fetch(ctx, bucket, key, filepath.Join(dir, path.Base(key))); err != nil {
				fail(err)
				return
			}
			logger.Debug("downloaded shard", "key", key)
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to schedule download of %s: %w", key, err))
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// fetch downloads one key with a client of its own
func (o *Opener) fetch(ctx context.Context, bucket, key, dest string) error {
	store, err := o.factory(ctx)
	if err != nil {
		return &export.TransportError{Op: "download " + key, Err: err}
	}
	if err := store.Download(ctx, bucket, key, dest); err != nil {
		return &export.TransportError{Op: "download " + key, Err: err}
	}
	return nil
}

// Stream is the decoded content of a downloaded result
type Stream struct {
	dir    string
	files  []string
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Files returns the shard files in decode order
func (s *Stream) Files() []string {
	return append([]string(nil), s.files...)
}

// Rows returns the rows of every shard, one shard after the other in file
// name order. The stream is closed when the sequence ends for any reason,
// so it can be ranged over once.
func (s *Stream) Rows() iter.Seq2[reader.Row, error] {
	return func(yield func(reader.Row, error) bool) {
		if s.isClosed() {
			yield(reader.Row{}, ErrClosed)
			return
		}
		defer s.Close()

		for _, file := range s.files {
			if !s.readShard(file, yield) {
				return
			}
		}
	}
}

// readShard yields the rows of one file and reports whether to continue
func (s *Stream) readShard(file string, yield func(reader.Row, error) bool) bool {
	shard, err := reader.OpenShard(file)
	if err != nil {
		yield(reader.Row{}, err)
		return false
	}
	defer shard.Close()

	for {
		row, err := shard.Next()
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			yield(reader.Row{}, err)
			return false
		}
		if !yield(row, nil) {
			return false
		}
	}
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close removes the scratch directory. It is safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove scratch directory: %w", err)
	}
	s.logger.Debug("removed scratch directory", "dir", s.dir)
	return nil
}
