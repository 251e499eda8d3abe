package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		uri     string
		want    Locator
		wantErr bool
	}{
		{uri: "s3://zaius-exports/abc/123/", want: Locator{Bucket: "zaius-exports", Prefix: "abc/123/"}},
		{uri: "s3://bucket/prefix", want: Locator{Bucket: "bucket", Prefix: "prefix"}},
		{uri: "https://bucket/prefix", wantErr: true},
		{uri: "s3://bucket", wantErr: true},
		{uri: "s3:///prefix", wantErr: true},
		{uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseLocator(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocator)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.uri, got.String())
		})
	}
}

// fakeS3 serves ListObjectsV2 pages and GetObject bodies from memory
type fakeS3 struct {
	pages   [][]string
	objects map[string]string
	tokens  []string
	puts    map[string]string
	listErr error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	token := aws.ToString(in.ContinuationToken)
	f.tokens = append(f.tokens, token)

	idx := 0
	if token != "" {
		idx = int(token[len("page-")] - '0')
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(idx < len(f.pages)-1)}
	for _, key := range f.pages[idx] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if idx < len(f.pages)-1 {
		out.NextContinuationToken = aws.String("page-" + string(rune('0'+idx+1)))
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = make(map[string]string)
	}
	f.puts[aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_ListFollowsContinuationTokens(t *testing.T) {
	fake := &fakeS3{pages: [][]string{
		{"out/part-0000.csv.gz", "out/part-0001.csv.gz"},
		{"out/part-0002.csv.gz"},
		{"out/complete.json"},
	}}
	store := &S3Store{client: fake}

	keys, err := ListAll(context.Background(), store, Locator{Bucket: "bucket", Prefix: "out/"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"out/part-0000.csv.gz",
		"out/part-0001.csv.gz",
		"out/part-0002.csv.gz",
		"out/complete.json",
	}, keys)
	assert.Equal(t, []string{"", "page-1", "page-2"}, fake.tokens)
}

func TestS3Store_ListError(t *testing.T) {
	store := &S3Store{client: &fakeS3{listErr: errors.New("AccessDenied")}}

	_, err := ListAll(context.Background(), store, Locator{Bucket: "bucket", Prefix: "out/"})
	assert.ErrorIs(t, err, ErrStorage)

	var storageErr *Error
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "list", storageErr.Op)
}

func TestS3Store_Download(t *testing.T) {
	store := &S3Store{client: &fakeS3{objects: map[string]string{"out/a.csv.gz": "payload"}}}
	dest := filepath.Join(t.TempDir(), "a.csv.gz")

	require.NoError(t, store.Download(context.Background(), "bucket", "out/a.csv.gz", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	err = store.Download(context.Background(), "bucket", "out/missing", dest)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestS3Store_Upload(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake}
	src := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n"), 0o600))

	require.NoError(t, store.Upload(context.Background(), src, "bucket", "reports/report.csv"))
	assert.Equal(t, "a,b\n", fake.puts["reports/report.csv"])
}

func TestNewClientFactory_Backends(t *testing.T) {
	ctx := context.Background()

	_, err := NewClientFactory(ctx, Options{Backend: "gcs"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = NewClientFactory(ctx, Options{Backend: BackendMinio})
	assert.Error(t, err)

	factory, err := NewClientFactory(ctx, Options{
		Backend:         BackendMinio,
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)

	first, err := factory(ctx)
	require.NoError(t, err)
	second, err := factory(ctx)
	require.NoError(t, err)
	assert.IsType(t, &MinioStore{}, first)
	assert.NotSame(t, first, second)
}
