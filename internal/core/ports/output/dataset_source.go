package ports

import (
	"context"
	"io"
)

// DatasetSource fetches one compressed dataset file by name.
type DatasetSource interface {
	// Open returns the raw gzip stream of the named file. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Name identifies the source in logs.
	Name() string
}
