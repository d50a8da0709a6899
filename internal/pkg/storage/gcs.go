package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSOptions configures the Google Cloud Storage client.
type GCSOptions struct {
	// ClientOptions carry credentials, endpoint and user agent overrides.
	ClientOptions []option.ClientOption
}

// GCS implements Storage on Google Cloud Storage.
type GCS struct {
	client *gcs.Client
}

func NewGCS(ctx context.Context, opts GCSOptions) (*GCS, error) {
	client, err := gcs.NewClient(ctx, opts.ClientOptions...)
	if err != nil {
		return nil, err
	}

	return &GCS{client: client}, nil
}

func (g *GCS) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (g *GCS) Close() error {
	return g.client.Close()
}
