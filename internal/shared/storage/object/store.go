package object

import (
	"context"
	"io"
)

// ObjectStore opens stored input objects such as the catalog CSV files.
type ObjectStore interface {
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
