package storage

import (
	"context"

	"github.com/minio/minio-go/v7"
)

// DefaultPageSize bounds the number of keys MinioStore returns per page
const DefaultPageSize = 1000

// MinioStore implements ObjectStore for S3 compatible endpoints
type MinioStore struct {
	client   *minio.Client
	pageSize int
}

// NewMinioStore wraps a MinIO client
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client, pageSize: DefaultPageSize}
}

// List returns up to pageSize keys after token. The token is the last key
// of the previous page.
func (m *MinioStore) List(ctx context.Context, bucket, prefix, token string) (Page, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		Recursive:  true,
		StartAfter: token,
	})

	var page Page
	for obj := range ch {
		if obj.Err != nil {
			return Page{}, &Error{Op: "list", Bucket: bucket, Key: prefix, Err: obj.Err}
		}
		if len(page.Keys) == m.pageSize {
			page.NextToken = page.Keys[len(page.Keys)-1]
			break
		}
		page.Keys = append(page.Keys, obj.Key)
	}
	return page, nil
}

// Download writes the object at key to dest
func (m *MinioStore) Download(ctx context.Context, bucket, key, dest string) error {
	if err := m.client.FGetObject(ctx, bucket, key, dest, minio.GetObjectOptions{}); err != nil {
		return &Error{Op: "get", Bucket: bucket, Key: key, Err: err}
	}
	return nil
}

// Upload puts the local file src at key
func (m *MinioStore) Upload(ctx context.Context, src, bucket, key string) error {
	if _, err := m.client.FPutObject(ctx, bucket, key, src, minio.PutObjectOptions{}); err != nil {
		return &Error{Op: "put", Bucket: bucket, Key: key, Err: err}
	}
	return nil
}
