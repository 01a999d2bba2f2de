// Package objectstore fetches dataset files from an S3-compatible bucket.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"

	MinIO "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mnist-dashboard/internal/config"
	output "mnist-dashboard/internal/core/ports/output"
)

type minio struct {
	client *MinIO.Client
	bucket string
	prefix string
}

// NewMinioSource creates a DatasetSource reading <bucket>/<prefix>/<name>.
func NewMinioSource(cfg *config.MinIOConfig) (output.DatasetSource, error) {
	client, err := MinIO.New(cfg.Endpoint, &MinIO.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}

	return &minio{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (m *minio) Name() string {
	return fmt.Sprintf("s3://%s/%s", m.bucket, m.prefix)
}

func (m *minio) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := objectKey(m.prefix, name)

	if _, err := m.client.StatObject(ctx, m.bucket, key, MinIO.StatObjectOptions{}); err != nil {
		if resp := MinIO.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s not found in bucket %s", key, m.bucket)
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, MinIO.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return obj, nil
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
