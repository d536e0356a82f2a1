package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock keeps two runs for the same region from overlapping.
type RunLock interface {
	// Acquire returns false when another run holds the lock.
	Acquire(ctx context.Context, region string) (bool, error)
	Release(ctx context.Context, region string) error
}

// ErrLockNotHeld is returned by Release when the key expired or now belongs to
// another run.
var ErrLockNotHeld = errors.New("run lock not held")

// releaseSrc deletes the key only while it still carries our owner value.
const releaseSrc = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

var releaseScript = redis.NewScript(releaseSrc)

// RedisRunLock is a per-region SET NX key with an expiry, so a crashed run
// cannot hold the region forever.
type RedisRunLock struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	owner  string
}

// NewRedisRunLock builds a lock whose value is owner. Release only removes a
// key that still holds owner, so a run that outlived its TTL cannot free the
// next run's lock.
func NewRedisRunLock(client *redis.Client, ttl time.Duration, owner string) *RedisRunLock {
	return &RedisRunLock{client: client, ttl: ttl, prefix: "findvax:notify:lock:", owner: owner}
}

func (l *RedisRunLock) key(region string) string {
	return l.prefix + region
}

func (l *RedisRunLock) Acquire(ctx context.Context, region string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(region), l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

func (l *RedisRunLock) Release(ctx context.Context, region string) error {
	deleted, err := releaseScript.Eval(ctx, l.client, []string{l.key(region)}, l.owner).Int64()
	if err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("release run lock %s: %w", l.key(region), ErrLockNotHeld)
	}
	return nil
}
