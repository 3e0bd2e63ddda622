// Package publish uploads generated dataset files to an S3-compatible bucket.
package publish

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Config locates the destination bucket.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	UseSSL    bool
}

// Enabled reports whether enough is configured to publish.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// objectStore is the subset of *minio.Client the publisher uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Publisher uploads files into one bucket under a key prefix.
type Publisher struct {
	client objectStore
	cfg    Config
}

// New connects to the configured endpoint.
func New(cfg Config) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, eris.New("publish: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "publish: connect %s", cfg.Endpoint)
	}
	return &Publisher{client: client, cfg: cfg}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return eris.Wrapf(err, "publish: check bucket %s", p.cfg.Bucket)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{Region: p.cfg.Region}); err != nil {
		return eris.Wrapf(err, "publish: create bucket %s", p.cfg.Bucket)
	}
	zap.L().Info("created bucket", zap.String("bucket", p.cfg.Bucket))
	return nil
}

// Upload stores each file as <prefix>/<basename> and returns the object keys.
func (p *Publisher) Upload(ctx context.Context, files []string) ([]string, error) {
	if err := p.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := objectKey(p.cfg.Prefix, f)
		info, err := p.client.FPutObject(ctx, p.cfg.Bucket, key, f, minio.PutObjectOptions{
			ContentType: contentType(f),
		})
		if err != nil {
			return keys, eris.Wrapf(err, "publish: upload %s", f)
		}
		zap.L().Info("published file",
			zap.String("bucket", p.cfg.Bucket),
			zap.String("key", key),
			zap.Int64("bytes", info.Size),
		)
		keys = append(keys, key)
	}
	return keys, nil
}

func objectKey(prefix, file string) string {
	base := filepath.Base(file)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

func contentType(file string) string {
	if strings.HasSuffix(file, ".geojson") {
		return "application/geo+json"
	}
	return "application/json"
}
