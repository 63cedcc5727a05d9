// Package locker serializes work on one key across processes with a Redis
// lease. A lease expires on its own if the holder dies.
package locker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
)

const defaultLease = 10 * time.Second

// releaseScript deletes the key only while it still carries our token, so a
// holder whose lease expired cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrNotHeld is returned by Release when the lease was lost before release.
var ErrNotHeld = errors.New("locker: lock not held")

type generator interface {
	Generate() string
}

// Locker hands out leases on keys.
type Locker interface {
	// Lock acquires key for ttl. It returns goerror.ErrLocked when another
	// holder has it.
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type Redis struct {
	client *redis.Client
	prefix string
	token  generator
}

func NewRedis(client *redis.Client, prefix string, token generator) *Redis {
	if prefix == "" {
		prefix = "lock:"
	}
	return &Redis{client: client, prefix: prefix, token: token}
}

func (l *Redis) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if ttl <= 0 {
		ttl = defaultLease
	}

	fk := l.prefix + key
	tok := l.token.Generate()

	acquired, err := l.client.SetNX(ctx, fk, tok, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, goerror.ErrLocked
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{fk}, tok).Int()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotHeld
		}
		return nil
	}, nil
}
