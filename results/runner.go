package results

import (
	"context"
	"log/slog"
	"time"

	"github.com/vegasq/zaius-export/query"
	"github.com/vegasq/zaius-export/storage"
)

// Executor runs a compiled query and returns where its result is stored
type Executor interface {
	Execute(ctx context.Context, spec *query.SelectSpec) (storage.Locator, error)
}

// Runner executes queries end to end
type Runner struct {
	executor Executor
	opener   *Opener
	logger   *slog.Logger
}

// NewRunner returns a Runner executing with executor and downloading with
// opener
func NewRunner(executor Executor, opener *Opener, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{executor: executor, opener: opener, logger: logger}
}

// Query executes spec and opens its result
func (r *Runner) Query(ctx context.Context, spec *query.SelectSpec) (RowStream, error) {
	start := time.Now()

	loc, err := r.executor.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}
	exported := time.Since(start)

	stream, err := r.opener.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	r.logger.Info("query result ready",
		"object", spec.Object,
		"shards", len(stream.Files()),
		"export_time", exported.Round(time.Millisecond),
		"download_time", (time.Since(start) - exported).Round(time.Millisecond),
	)
	return stream, nil
}
