package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when the bucket has no object under the key.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage reads objects from a bucket-based store.
type Storage interface {
	io.Closer

	// Get returns the full content of the object.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Noop is a Storage without objects, used when no driver is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, string) ([]byte, error) { return nil, ErrObjectNotFound }
func (Noop) Close() error                                         { return nil }
