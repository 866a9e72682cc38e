package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mnuddindev/winoreat/pkg/utils"
	"github.com/redis/go-redis/v9"
)

// ReleaseFunc gives a held lock back.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (ReleaseFunc, error)
}

// NopLocker grants every lock immediately. Used when Redis is not configured.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}

// compare-and-delete, so a lock that expired and was taken by someone else is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker backed by SET NX with a per-holder token.
type RedisLocker struct {
	Client *RedisClient
	Prefix string
	TTL    time.Duration
	Wait   time.Duration
	Retry  time.Duration
}

// NewLocker returns a RedisLocker with the default timings.
func NewLocker(client *RedisClient) *RedisLocker {
	return &RedisLocker{
		Client: client,
		Prefix: "lock:",
		TTL:    10 * time.Second,
		Wait:   5 * time.Second,
		Retry:  50 * time.Millisecond,
	}
}

// Lock blocks until the key is acquired, Wait elapses or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (ReleaseFunc, error) {
	key = l.Prefix + key
	token := uuid.NewString()

	deadline := time.NewTimer(l.Wait)
	defer deadline.Stop()
	ticker := time.NewTicker(l.Retry)
	defer ticker.Stop()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, utils.NewError(utils.KindInternal, "Failed to acquire lock", err.Error())
		}
		if ok {
			return func(ctx context.Context) error {
				if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil {
					return utils.NewError(utils.KindInternal, "Failed to release lock", err.Error())
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, utils.WrapError(ctx.Err(), utils.KindInternal, "lock wait canceled")
		case <-deadline.C:
			return nil, utils.NewError(utils.KindInternal, "Lock busy", key)
		case <-ticker.C:
		}
	}
}
