package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/zaius-export/config"
	"github.com/vegasq/zaius-export/export"
	"github.com/vegasq/zaius-export/output"
	"github.com/vegasq/zaius-export/query"
	"github.com/vegasq/zaius-export/report"
	"github.com/vegasq/zaius-export/results"
	"github.com/vegasq/zaius-export/storage"
)

// app holds the state shared by every command
type app struct {
	configPath string
	authPath   string
	format     string
	outputPath string
	uploadTo   string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	factory storage.ClientFactory
	runner  *results.Runner
}

func newRootCmd(reg *report.Registry) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "zaius-export",
		Short:         "Run queries and reports against the Zaius export API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&a.authPath, "auth", "", "credentials file (default $HOME/"+config.CredentialsFile+")")
	flags.StringVarP(&a.format, "format", "f", "", "output format: "+strings.Join(output.Formats(), ", "))
	flags.StringVarP(&a.outputPath, "output", "o", "", "write output to a file instead of stdout")
	flags.StringVar(&a.uploadTo, "upload", "", "upload the output file to s3://bucket/key when done")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")

	root.AddCommand(newQueryCmd(a))
	for _, rep := range reg.Reports() {
		root.AddCommand(newReportCmd(a, rep))
	}
	return root
}

// setup loads configuration and applies flag overrides
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.format != "" {
		cfg.Output.Format = a.format
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.uploadTo != "" && a.outputPath == "" {
		return fmt.Errorf("--upload requires --output")
	}

	a.cfg = cfg
	a.logger = config.NewLogger(cfg.Log, os.Stderr)
	return nil
}

// Query runs spec, connecting to the export API and storage on first use
// so commands that run no query need no credentials
func (a *app) Query(ctx context.Context, spec *query.SelectSpec) (results.RowStream, error) {
	if a.runner == nil {
		if err := a.connect(ctx); err != nil {
			return nil, err
		}
	}
	return a.runner.Query(ctx, spec)
}

func (a *app) connect(ctx context.Context) error {
	creds, err := a.credentials()
	if err != nil {
		return err
	}

	factory, err := a.storageFactory(ctx, creds)
	if err != nil {
		return err
	}

	client := export.NewClient(creds.APIKey,
		export.WithEndpoint(a.cfg.Export.Endpoint),
		export.WithPollInterval(a.cfg.Export.PollInterval),
		export.WithHTTPClient(&http.Client{Timeout: a.cfg.Export.Timeout}),
		export.WithLogger(a.logger),
	)
	opener := results.NewOpener(factory,
		results.WithWorkers(a.cfg.Storage.Workers),
		results.WithScratchRoot(a.cfg.Storage.ScratchDir),
		results.WithLogger(a.logger),
	)
	a.runner = results.NewRunner(client, opener, a.logger)
	return nil
}

func (a *app) credentials() (*config.Credentials, error) {
	path := a.authPath
	if path == "" {
		var err error
		if path, err = config.DefaultCredentialsPath(); err != nil {
			return nil, err
		}
	}
	return config.LoadCredentials(path)
}

func (a *app) storageFactory(ctx context.Context, creds *config.Credentials) (storage.ClientFactory, error) {
	if a.factory != nil {
		return a.factory, nil
	}
	factory, err := storage.NewClientFactory(ctx, a.cfg.StorageOptions(creds))
	if err != nil {
		return nil, err
	}
	a.factory = factory
	return factory, nil
}

// withOutput opens the configured destination, hands a formatter to fn
// and uploads the result when requested
func (a *app) withOutput(cmd *cobra.Command, fn func(output.Formatter) error) error {
	var w io.Writer = cmd.OutOrStdout()
	var file *os.File
	if a.outputPath != "" {
		f, err := os.Create(a.outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		file = f
		w = f
	}

	formatter, err := output.New(a.cfg.Output.Format, w)
	if err == nil {
		err = fn(formatter)
	}
	if file != nil {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}
	if err != nil {
		return err
	}

	if a.uploadTo != "" {
		return a.upload(cmd.Context())
	}
	return nil
}

func (a *app) upload(ctx context.Context) error {
	loc, err := storage.ParseLocator(a.uploadTo)
	if err != nil {
		return err
	}
	creds, err := a.credentials()
	if err != nil {
		return err
	}
	factory, err := a.storageFactory(ctx, creds)
	if err != nil {
		return err
	}
	store, err := factory(ctx)
	if err != nil {
		return err
	}
	if err := store.Upload(ctx, a.outputPath, loc.Bucket, loc.Prefix); err != nil {
		return &export.TransportError{Op: "upload " + loc.String(), Err: err}
	}
	a.logger.Info("uploaded output", "file", a.outputPath, "to", loc.String())
	return nil
}

func newQueryCmd(a *app) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "query <statement>",
		Short: "Run a query and write its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := query.Compile(args[0])
			if err != nil {
				return err
			}

			if explain {
				body, err := export.RequestBody(spec)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return err
			}

			return a.withOutput(cmd, func(out output.Formatter) error {
				return writeRows(cmd.Context(), a, spec, out)
			})
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the export request instead of running it")
	return cmd
}

// writeRows streams every row of spec to out
func writeRows(ctx context.Context, q report.Querier, spec *query.SelectSpec, out output.Formatter) error {
	stream, err := q.Query(ctx, spec)
	if err != nil {
		return err
	}
	defer stream.Close()

	columns := spec.Columns()
	if err := out.WriteHeader(columns); err != nil {
		return err
	}
	for row, err := range stream.Rows() {
		if err != nil {
			return err
		}
		values := make([]interface{}, len(columns))
		for i, col := range columns {
			values[i] = row.Value(col)
		}
		if err := out.WriteRow(values); err != nil {
			return err
		}
	}
	return out.Close()
}

func newReportCmd(a *app, rep report.Report) *cobra.Command {
	use := rep.Name()
	for _, arg := range rep.Args() {
		use += " <" + arg + ">"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: rep.Short(),
		Args:  cobra.ExactArgs(len(rep.Args())),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOutput(cmd, func(out output.Formatter) error {
				env := &report.Env{Querier: a, Out: out, Logger: a.logger}
				return rep.Run(cmd.Context(), env, args)
			})
		},
	}
	if binder, ok := rep.(report.FlagBinder); ok {
		binder.BindFlags(cmd.Flags())
	}
	return cmd
}
