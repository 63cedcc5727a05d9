package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RunsAndCollectsErrors(t *testing.T) {
	// Arrange
	m := NewManager(4)
	var ran atomic.Int32
	errBoom := errors.New("boom")

	// Act
	for i := range 3 {
		ok := m.Go(context.Background(), func(context.Context) error {
			ran.Add(1)
			if i == 1 {
				return errBoom
			}
			return nil
		})
		require.True(t, ok)
	}
	err := m.Wait()

	// Assert
	assert.Equal(t, int32(3), ran.Load())
	assert.ErrorIs(t, err, errBoom)
}

func TestManager_DetachesCancellation(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var taskErr error
	m.Go(ctx, func(ctx context.Context) error {
		taskErr = ctx.Err()
		return nil
	})

	require.NoError(t, m.Wait())
	assert.NoError(t, taskErr)
}

func TestManager_LimitAndClose(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	require.True(t, m.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, m.Wait())
	assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)
	m.Go(context.Background(), func(context.Context) error { panic("bad") })
	assert.NoError(t, m.Wait())
}
