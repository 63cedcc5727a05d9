package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSOptions struct {
	// ClientOptions are passed to storage.NewClient, e.g. an emulator endpoint.
	ClientOptions []option.ClientOption
}

// GCS reads objects from Google Cloud Storage.
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

func (g *GCS) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, err
	}

	return r, ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        r.Attrs.Size,
		ContentType: r.Attrs.ContentType,
		UpdatedAt:   r.Attrs.LastModified,
	}, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
