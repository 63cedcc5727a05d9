package locker

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
)

type seqToken struct{ n atomic.Int64 }

func (s *seqToken) Generate() string { return "tok-" + strconv.FormatInt(s.n.Add(1), 10) }

func newTestLocker(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "", &seqToken{}), mr
}

func TestRedis_LockIsExclusive(t *testing.T) {
	// Arrange
	l, _ := newTestLocker(t)
	ctx := context.Background()

	// Act
	release, err := l.Lock(ctx, "sess-1", time.Second)
	require.NoError(t, err)
	_, errSecond := l.Lock(ctx, "sess-1", time.Second)
	_, errOther := l.Lock(ctx, "sess-2", time.Second)

	// Assert
	assert.ErrorIs(t, errSecond, goerror.ErrLocked)
	assert.NoError(t, errOther)

	require.NoError(t, release(ctx))
	_, err = l.Lock(ctx, "sess-1", time.Second)
	assert.NoError(t, err)
}

func TestRedis_ExpiredLeaseIsNotReleasedByOldHolder(t *testing.T) {
	l, mr := newTestLocker(t)
	ctx := context.Background()

	release, err := l.Lock(ctx, "sess-1", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	releaseNew, err := l.Lock(ctx, "sess-1", time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, release(ctx), ErrNotHeld)
	assert.True(t, mr.Exists("lock:sess-1"))
	assert.NoError(t, releaseNew(ctx))
	assert.False(t, mr.Exists("lock:sess-1"))
}
