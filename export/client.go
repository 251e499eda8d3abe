package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vegasq/zaius-export/query"
	"github.com/vegasq/zaius-export/storage"
)

const (
	// DefaultEndpoint is the export API base URL
	DefaultEndpoint = "https://api.zaius.com/v3/exports"

	// DefaultPollInterval is the delay between status requests
	DefaultPollInterval = time.Second

	// APIKeyHeader carries the secret key on every request
	APIKeyHeader = "x-api-key"

	// resultFormat is the only result format the row reader understands
	resultFormat = "csv"

	// maxErrorBody bounds how much of a failed response is kept
	maxErrorBody = 512
)

// Client talks to the export API
type Client struct {
	endpoint     string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       *slog.Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

// Option configures a Client
type Option func(*Client)

// WithEndpoint overrides the API base URL
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithHTTPClient sets the HTTP client used for every request
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPollInterval sets the delay between status requests
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a client authenticating with apiKey
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:     DefaultEndpoint,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestBody returns the JSON document submitted for spec
func RequestBody(spec *query.SelectSpec) ([]byte, error) {
	return query.Marshal(struct {
		Select *query.SelectSpec `json:"select"`
		Format string            `json:"format"`
	}{spec, resultFormat})
}

// Submit starts an export job for spec
func (c *Client) Submit(ctx context.Context, spec *query.SelectSpec) (*JobDescriptor, error) {
	body, err := RequestBody(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	c.logger.Info("submitting export", "endpoint", c.endpoint, "query", string(body))

	job, err := c.do(ctx, "submit", http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, err
	}
	c.logger.Info("export submitted", "job_id", job.ID, "state", job.State, "response", string(job.Raw))
	return job, nil
}

// Status fetches the current descriptor of job id
func (c *Client) Status(ctx context.Context, id string) (*JobDescriptor, error) {
	job, err := c.do(ctx, "status", http.MethodGet, c.endpoint+"/"+id, nil)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("export status", "job_id", job.ID, "state", job.State, "response", string(job.Raw))
	return job, nil
}

// Wait polls job until it leaves the pending and running states and
// returns the last descriptor
func (c *Client) Wait(ctx context.Context, job *JobDescriptor) (*JobDescriptor, error) {
	for job.State.Active() {
		if job.ID == "" {
			return nil, &TransportError{Op: "status", Err: fmt.Errorf("job response has no id")}
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return nil, err
		}

		next, err := c.Status(ctx, job.ID)
		if err != nil {
			return nil, err
		}
		job = next
	}
	return job, nil
}

// Execute submits spec, waits for the job and returns where its result
// shards are stored
func (c *Client) Execute(ctx context.Context, spec *query.SelectSpec) (storage.Locator, error) {
	job, err := c.Submit(ctx, spec)
	if err != nil {
		return storage.Locator{}, err
	}

	job, err = c.Wait(ctx, job)
	if err != nil {
		return storage.Locator{}, err
	}
	if job.State != StateCompleted {
		return storage.Locator{}, &ExecutionError{Job: job}
	}

	loc, err := storage.ParseLocator(job.Path)
	if err != nil {
		return storage.Locator{}, &ExecutionError{Job: job, Err: err}
	}
	c.logger.Info("export completed", "job_id", job.ID, "path", loc.String())
	return loc, nil
}

// do sends one request and decodes the job descriptor in the response
func (c *Client) do(ctx context.Context, op, method, url string, body []byte) (*JobDescriptor, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Body: truncate(respBody)}
	}

	job, err := decodeJob(respBody)
	if err != nil {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       truncate(respBody),
			Err:        fmt.Errorf("invalid job response: %w", err),
		}
	}
	return job, nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
