package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mnist-dashboard/internal/config"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "t10k-images-idx3-ubyte.gz", objectKey("", "t10k-images-idx3-ubyte.gz"))
	assert.Equal(t, "datasets/mnist/t10k-images-idx3-ubyte.gz", objectKey("datasets/mnist/", "t10k-images-idx3-ubyte.gz"))
}

func TestNewMinioSource(t *testing.T) {
	src, err := NewMinioSource(&config.MinIOConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "datasets",
		Prefix:    "mnist",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://datasets/mnist", src.Name())
}

func TestNewMinioSource_InvalidEndpoint(t *testing.T) {
	_, err := NewMinioSource(&config.MinIOConfig{Endpoint: "http://localhost:9000"})
	assert.Error(t, err)
}
