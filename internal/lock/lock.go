// Package lock provides the per-reservation mutual exclusion importers
// take before touching a booking.  RedisLocker implements it with
// SET NX PX and a token-checked release script so a lock that expired
// and was re-acquired by someone else is never deleted by the former
// holder.  Noop is used when Redis is unavailable; imports then rely on
// the database's row lock alone.
package lock

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/booking-reconciliation/internal/config"
)

// ErrTimeout is returned when a lock could not be acquired within the
// configured wait.
var ErrTimeout = errors.New("lock wait timeout")

var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLocker is a single-instance Redis lock.
type RedisLocker struct {
	rdb   *redis.Client
	ttl   time.Duration
	wait  time.Duration
	retry time.Duration
}

// NewRedisLocker returns a locker using the lock settings of cfg.
func NewRedisLocker(rdb *redis.Client, cfg config.ImportConfig) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: cfg.LockTTL, wait: cfg.LockWait, retry: cfg.LockRetry}
}

// Acquire blocks until key is held, the wait elapses (ErrTimeout) or ctx
// is done.  The release function is safe to call more than once.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}
		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// release even when the import's context was cancelled
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
			log.Printf("lock: release %s: %v", key, err)
		}
	}, nil
}

// Noop grants every lock immediately.
type Noop struct{}

// Acquire returns a release function that does nothing.
func (Noop) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// Locker is satisfied by RedisLocker and Noop.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// New returns a RedisLocker when rdb is non-nil and Noop otherwise,
// mirroring how the rate limiter degrades without Redis.
func New(rdb *redis.Client, cfg config.ImportConfig) Locker {
	if rdb == nil {
		log.Printf("lock: redis unavailable, import locking disabled")
		return Noop{}
	}
	return NewRedisLocker(rdb, cfg)
}
