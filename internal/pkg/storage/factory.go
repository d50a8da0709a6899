package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNone  = "none"
	DriverS3    = "s3"
	DriverGCS   = "gcs"
	DriverMinIO = "minio"
	DriverLocal = "local"
)

var ErrUnknownDriver = errors.New("storage: unknown driver")

// FactoryOptions holds every backend's settings; only the selected one is read.
type FactoryOptions struct {
	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
	Local LocalOptions
}

// NewFromDriver builds the backend named by driver. An empty driver is
// the same as "none".
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	switch name := strings.ToLower(strings.TrimSpace(driver)); name {
	case "", DriverNone:
		return Noop{}, nil
	case DriverLocal:
		return NewLocal(opts.Local)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverGCS:
		return NewGCS(ctx, opts.GCS)
	case DriverMinIO:
		return NewMinIO(opts.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
