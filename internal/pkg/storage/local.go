package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
)

type LocalOptions struct {
	Root string // directory holding one sub directory per bucket
}

// Local serves objects from a directory tree, mainly to override mail
// templates without a bucket. Lookups cannot escape Root.
type Local struct {
	root *os.Root
}

func NewLocal(opts LocalOptions) (*Local, error) {
	if opts.Root == "" {
		return nil, errors.New("storage: local root is required")
	}

	root, err := os.OpenRoot(opts.Root)
	if err != nil {
		return nil, err
	}
	return &Local{root: root}, nil
}

func (l *Local) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := l.root.Open(path.Join(bucket, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrObjectNotFound
	}

	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *Local) Close() error {
	return l.root.Close()
}
