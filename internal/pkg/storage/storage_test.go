package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestNewFromDriver_Unknown(t *testing.T) {
	_, err := NewFromDriver(context.Background(), "azure", FactoryOptions{})
	assert.ErrorContains(t, err, `unknown driver "azure"`)
}

func TestMapMinIOError(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, mapMinIOError(notFound), ErrObjectNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapMinIOError(other))
}
