// Package filecache keeps downloaded dataset files on disk so restarts do
// not fetch them again.
package filecache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	output "mnist-dashboard/internal/core/ports/output"
)

type Cache struct {
	fs       afero.Fs
	dir      string
	upstream output.DatasetSource
}

// New wraps upstream with a cache rooted at dir on fs.
func New(fs afero.Fs, dir string, upstream output.DatasetSource) *Cache {
	return &Cache{fs: fs, dir: dir, upstream: upstream}
}

var _ output.DatasetSource = (*Cache)(nil)

func (c *Cache) Name() string {
	return fmt.Sprintf("%s (cached in %s)", c.upstream.Name(), c.dir)
}

// Open serves the file from the cache, fetching it from upstream on a miss.
func (c *Cache) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	p := c.path(name)
	logger := log.WithField("file", p)

	f, err := c.fs.Open(p)
	if err == nil {
		logger.Debug("dataset cache hit")
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open cached %s: %w", name, err)
	}

	logger.Info("dataset cache miss, downloading")
	if err := c.fill(ctx, name, p); err != nil {
		return nil, err
	}
	return c.fs.Open(p)
}

// Invalidate removes a cached file so the next Open fetches it again.
func (c *Cache) Invalidate(name string) error {
	err := c.fs.Remove(c.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cached %s: %w", name, err)
	}
	return nil
}

func (c *Cache) fill(ctx context.Context, name, p string) error {
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	src, err := c.upstream.Open(ctx, name)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp := p + ".part"
	dst, err := c.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("download %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := c.fs.Rename(tmp, p); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

func (c *Cache) path(name string) string {
	return filepath.Join(c.dir, filepath.Base(name))
}
