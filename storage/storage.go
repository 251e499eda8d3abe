package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SentinelObject is the name of the metadata object the export service
// writes next to the result shards once an export is complete.
const SentinelObject = "complete.json"

var (
	// ErrStorage is matched by every failed storage call
	ErrStorage = errors.New("object storage request failed")

	// ErrInvalidLocator is returned for URIs that are not s3://bucket/prefix
	ErrInvalidLocator = errors.New("invalid result locator")

	// ErrUnknownBackend is returned for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Error wraps a failed storage call with the operation and object involved
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s s3://%s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

// Is makes every Error match ErrStorage
func (e *Error) Is(target error) bool {
	return target == ErrStorage
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Locator identifies the prefix holding the shards of an export result
type Locator struct {
	Bucket string
	Prefix string
}

// ParseLocator parses "s3://bucket/prefix"
func ParseLocator(uri string) (Locator, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Locator{}, fmt.Errorf("%w: %q", ErrInvalidLocator, uri)
	}
	prefix := strings.TrimPrefix(u.Path, "/")
	if prefix == "" {
		return Locator{}, fmt.Errorf("%w: %q has no prefix", ErrInvalidLocator, uri)
	}
	return Locator{Bucket: u.Host, Prefix: prefix}, nil
}

func (l Locator) String() string {
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// Page is one page of a listing. NextToken is empty on the last page.
type Page struct {
	Keys      []string
	NextToken string
}

// ObjectStore is the subset of object storage the export pipeline uses
type ObjectStore interface {
	// List returns the page of keys under prefix starting at token. An
	// empty token starts from the beginning.
	List(ctx context.Context, bucket, prefix, token string) (Page, error)

	// Download writes the object at key to the local file dest
	Download(ctx context.Context, bucket, key, dest string) error

	// Upload writes the local file src to key
	Upload(ctx context.Context, src, bucket, key string) error
}

// ClientFactory returns a new ObjectStore. Each concurrent unit of work
// asks for its own client.
type ClientFactory func(ctx context.Context) (ObjectStore, error)

// ListAll follows continuation tokens until the listing is exhausted and
// returns every key under the locator's prefix.
func ListAll(ctx context.Context, store ObjectStore, loc Locator) ([]string, error) {
	var (
		keys  []string
		token string
	)
	for {
		page, err := store.List(ctx, loc.Bucket, loc.Prefix, token)
		if err != nil {
			return nil, err
		}
		keys = append(keys, page.Keys...)
		if page.NextToken == "" {
			return keys, nil
		}
		token = page.NextToken
	}
}
