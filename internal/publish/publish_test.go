package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	exists    bool
	existsErr error
	made      []string
	putErr    error
	puts      map[string]string
	types     map[string]string
}

func (f *fakeStore) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	f.exists = true
	return nil
}

func (f *fakeStore) FPutObject(_ context.Context, _, object, file string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	if f.puts == nil {
		f.puts = map[string]string{}
		f.types = map[string]string{}
	}
	f.puts[object] = file
	f.types[object] = opts.ContentType
	return minio.UploadInfo{Key: object, Size: 10}, nil
}

func TestUpload_CreatesBucketAndPrefixesKeys(t *testing.T) {
	fs := &fakeStore{}
	p := &Publisher{client: fs, cfg: Config{Bucket: "maps", Prefix: "/data/"}}

	keys, err := p.Upload(context.Background(), []string{"/out/season_2025.json", "/out/season_2025.geojson"})
	require.NoError(t, err)

	assert.Equal(t, []string{"maps"}, fs.made)
	assert.Equal(t, []string{"data/season_2025.json", "data/season_2025.geojson"}, keys)
	assert.Equal(t, "/out/season_2025.json", fs.puts["data/season_2025.json"])
	assert.Equal(t, "application/json", fs.types["data/season_2025.json"])
	assert.Equal(t, "application/geo+json", fs.types["data/season_2025.geojson"])
}

func TestUpload_ExistingBucket(t *testing.T) {
	fs := &fakeStore{exists: true}
	p := &Publisher{client: fs, cfg: Config{Bucket: "maps"}}

	keys, err := p.Upload(context.Background(), []string{"season_2025.json"})
	require.NoError(t, err)
	assert.Empty(t, fs.made)
	assert.Equal(t, []string{"season_2025.json"}, keys)
}

func TestUpload_Errors(t *testing.T) {
	p := &Publisher{client: &fakeStore{existsErr: errors.New("denied")}, cfg: Config{Bucket: "maps"}}
	_, err := p.Upload(context.Background(), []string{"a.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check bucket")

	p = &Publisher{client: &fakeStore{exists: true, putErr: errors.New("quota")}, cfg: Config{Bucket: "maps"}}
	_, err = p.Upload(context.Background(), []string{"a.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload a.json")
}

func TestNew_RequiresEndpointAndBucket(t *testing.T) {
	_, err := New(Config{Bucket: "maps"})
	assert.Error(t, err)
	_, err = New(Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	p, err := New(Config{Endpoint: "localhost:9000", Bucket: "maps", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "season.json", objectKey("", "/tmp/season.json"))
	assert.Equal(t, "a/b/season.json", objectKey("a/b", "season.json"))
	assert.Equal(t, "a/season.json", objectKey("/a/", "x/season.json"))
}
