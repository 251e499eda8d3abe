// Package report implements the pre-built reports.
//
// Each report compiles one query, streams its rows in the order the query
// requests and folds them with a scan.Grouped. Reports never re-sort
// rows: grouping relies on the export service returning rows ordered by
// the grouping key.
//
// Reports are looked up by name in a Registry:
//
//	reg := report.Default()
//	rep, ok := reg.Lookup("email-metrics")
//	err := rep.Run(ctx, env, []string{"9097", "2018-01-01", "2018-02-01"})
package report

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/vegasq/zaius-export/output"
	"github.com/vegasq/zaius-export/query"
	"github.com/vegasq/zaius-export/reader"
	"github.com/vegasq/zaius-export/results"
	"github.com/vegasq/zaius-export/scan"
)

// ProgressInterval is how many rows are read between progress messages
const ProgressInterval = 100000

var (
	// ErrUsage is returned for invalid report arguments
	ErrUsage = errors.New("invalid arguments")

	// ErrDuplicateReport is returned when a name is registered twice
	ErrDuplicateReport = errors.New("report already registered")
)

// Querier executes a compiled query and returns its rows
type Querier interface {
	Query(ctx context.Context, spec *query.SelectSpec) (results.RowStream, error)
}

// Env is what a report needs to run
type Env struct {
	Querier Querier
	Out     output.Formatter
	Logger  *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Report is one named report
type Report interface {
	// Name is the command name
	Name() string

	// Short is a one-line description
	Short() string

	// Args names the positional arguments, in order
	Args() []string

	// Run executes the report and writes its output to env.Out
	Run(ctx context.Context, env *Env, args []string) error
}

// FlagBinder is implemented by reports with optional flags
type FlagBinder interface {
	BindFlags(fs *pflag.FlagSet)
}

// Registry holds reports by name
type Registry struct {
	reports map[string]Report
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{reports: make(map[string]Report)}
}

// Register adds a report
func (r *Registry) Register(rep Report) error {
	name := rep.Name()
	if _, ok := r.reports[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateReport, name)
	}
	r.reports[name] = rep
	return nil
}

// Lookup returns the report registered under name
func (r *Registry) Lookup(name string) (Report, bool) {
	rep, ok := r.reports[name]
	return rep, ok
}

// Reports returns every report sorted by name
func (r *Registry) Reports() []Report {
	out := make([]Report, 0, len(r.reports))
	for _, rep := range r.reports {
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Default returns a registry holding the built-in reports
func Default() *Registry {
	reg := NewRegistry()
	for _, rep := range []Report{
		&Demo{},
		&EmailMetrics{},
		&DailyContent{},
		&LifecycleProgress{},
		&ProductAttribution{},
	} {
		if err := reg.Register(rep); err != nil {
			panic(err)
		}
	}
	return reg
}

// checkArgs verifies the positional argument count
func checkArgs(rep Report, args []string) error {
	if want := rep.Args(); len(args) != len(want) {
		return fmt.Errorf("%w: %s takes %d arguments (%s), got %d",
			ErrUsage, rep.Name(), len(want), strings.Join(want, " "), len(args))
	}
	return nil
}

// open compiles text, runs it and returns its rows. Every row is checked
// for the selected columns, and progress is logged while reading.
func (e *Env) open(ctx context.Context, report, text string) (results.RowStream, iter.Seq2[reader.Row, error], error) {
	spec, err := query.Compile(text)
	if err != nil {
		return nil, nil, err
	}

	logger := e.logger().With("report", report)
	logger.Debug("running query", "object", spec.Object, "columns", spec.Columns())

	stream, err := e.Querier.Query(ctx, spec)
	if err != nil {
		return nil, nil, err
	}

	rows := reader.Require(stream.Rows(), spec.Columns()...)
	rows = scan.Progress(rows, ProgressInterval, func(count int, done bool) {
		logger.Info("read rows", "rows", count, "done", done)
	})
	return stream, rows, nil
}

// dateLayout is the YYYY-MM-DD argument format
const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD argument as midnight UTC
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrUsage, s)
	}
	return t, nil
}

// parseRange parses an inclusive start and exclusive end date
func parseRange(start, end string) (time.Time, time.Time, error) {
	from, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %s is not after start date %s", ErrUsage, end, start)
	}
	return from, to, nil
}

// literal renders an argument as a query literal: integers as numbers,
// anything else as a quoted string
func literal(s string) string {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil && (s == "0" || !strings.HasPrefix(strings.TrimPrefix(s, "-"), "0")) {
		return s
	}
	return quote(s)
}

// quote renders s as a quoted string literal
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// parseTS parses a unix timestamp column
func parseTS(row reader.Row, column string) (int64, error) {
	raw := row.Value(column)
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", column, raw, err)
	}
	return ts, nil
}

// percent returns n/d as a percentage rounded to two decimals, or 0 when
// d is 0
func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*10000) / 100
}
