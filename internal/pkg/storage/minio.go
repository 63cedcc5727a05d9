package storage

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOOptions struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	UseSSL       bool
}

// MinIO reads objects from a MinIO server.
type MinIO struct {
	client *minio.Client
}

func NewMinIO(opts MinIOOptions) (*MinIO, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}
	return &MinIO{client: client}, nil
}

// GetObject stats the object first because minio-go opens readers lazily
// and would otherwise report a missing key only on the first Read.
func (m *MinIO) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapMinIOError(err)
	}

	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, mapMinIOError(err)
	}

	return obj, ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        st.Size,
		ETag:        st.ETag,
		ContentType: st.ContentType,
		UpdatedAt:   st.LastModified,
	}, nil
}

func (m *MinIO) Close() error { return nil }

func mapMinIOError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound
	}
	return err
}
