package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the part of *s3.Client used by S3Store
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements ObjectStore with the AWS SDK for Go v2
type S3Store struct {
	client s3API
}

// NewS3Store wraps an S3 client
func NewS3Store(client *s3.Client) *S3Store {
	return &S3Store{client: client}
}

// List returns one ListObjectsV2 page
func (s *S3Store) List(ctx context.Context, bucket, prefix, token string) (Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return Page{}, &Error{Op: "list", Bucket: bucket, Key: prefix, Err: err}
	}

	page := Page{Keys: make([]string, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		page.Keys = append(page.Keys, aws.ToString(obj.Key))
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// Download streams the object body into dest
func (s *S3Store) Download(ctx context.Context, bucket, key, dest string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &Error{Op: "get", Bucket: bucket, Key: key, Err: err}
	}
	defer func() { _ = out.Body.Close() }()

	if err := writeFile(dest, out.Body); err != nil {
		return &Error{Op: "get", Bucket: bucket, Key: key, Err: err}
	}
	return nil
}

// Upload puts the local file src at key
func (s *S3Store) Upload(ctx context.Context, src, bucket, key string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = f.Close() }()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return &Error{Op: "put", Bucket: bucket, Key: key, Err: err}
	}
	return nil
}

// writeFile copies r into a new file at path
func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
