package filecache

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mnist-dashboard/internal/testutil"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestCache_Open_MissThenHit(t *testing.T) {
	fs := afero.NewMemMapFs()
	upstream := new(testutil.MockDatasetSource)
	upstream.On("Open", mock.Anything, "a.gz").Return(testutil.NopCloser([]byte("content")), nil).Once()

	c := New(fs, "/cache/mnist", upstream)

	rc, err := c.Open(context.Background(), "a.gz")
	require.NoError(t, err)
	assert.Equal(t, "content", readAll(t, rc))

	rc, err = c.Open(context.Background(), "a.gz")
	require.NoError(t, err)
	assert.Equal(t, "content", readAll(t, rc))

	exists, err := afero.Exists(fs, "/cache/mnist/a.gz")
	require.NoError(t, err)
	assert.True(t, exists)
	partial, _ := afero.Exists(fs, "/cache/mnist/a.gz.part")
	assert.False(t, partial)

	upstream.AssertNumberOfCalls(t, "Open", 1)
}

func TestCache_Open_UpstreamError(t *testing.T) {
	fs := afero.NewMemMapFs()
	upstream := new(testutil.MockDatasetSource)
	upstream.On("Open", mock.Anything, "a.gz").Return(nil, errors.New("timeout"))

	_, err := New(fs, "/cache", upstream).Open(context.Background(), "a.gz")
	assert.ErrorContains(t, err, "timeout")

	exists, _ := afero.Exists(fs, "/cache/a.gz")
	assert.False(t, exists)
}

func TestCache_Invalidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache/a.gz", []byte("stale"), 0o644))

	upstream := new(testutil.MockDatasetSource)
	upstream.On("Open", mock.Anything, "a.gz").Return(testutil.NopCloser([]byte("fresh")), nil).Once()

	c := New(fs, "/cache", upstream)
	require.NoError(t, c.Invalidate("a.gz"))
	require.NoError(t, c.Invalidate("missing.gz"))

	rc, err := c.Open(context.Background(), "a.gz")
	require.NoError(t, err)
	assert.Equal(t, "fresh", readAll(t, rc))
}
