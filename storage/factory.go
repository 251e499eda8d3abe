package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// Backend names
const (
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// DefaultRegion is used when no region is configured
const DefaultRegion = "us-east-1"

// Options configures a ClientFactory
type Options struct {
	Backend         string
	Endpoint        string // optional for s3, required for minio (host:port)
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// NewClientFactory returns a factory for the configured backend. Shared
// configuration is resolved once; every call of the factory builds a new
// client from it.
func NewClientFactory(ctx context.Context, opts Options) (ClientFactory, error) {
	if opts.Region == "" {
		opts.Region = DefaultRegion
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendS3:
		return newS3Factory(ctx, opts)
	case BackendMinio:
		return newMinioFactory(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func newS3Factory(ctx context.Context, opts Options) (ClientFactory, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return func(context.Context) (ObjectStore, error) {
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
				o.UsePathStyle = true
			}
		})
		return NewS3Store(client), nil
	}, nil
}

func newMinioFactory(opts Options) (ClientFactory, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("minio backend requires an endpoint")
	}

	return func(context.Context) (ObjectStore, error) {
		mc, err := minio.New(opts.Endpoint, &minio.Options{
			Creds:  miniocreds.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
			Secure: opts.UseSSL,
			Region: opts.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return NewMinioStore(mc), nil
	}, nil
}
