// Package lock provides short lived, named locks used to serialize work on the same key across
// service replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis"
	"github.com/google/uuid"
)

// ErrLocked is returned if the lock is held by someone else.
var ErrLocked = errors.New("lock is held by someone else")

// Unlock releases a lock.
type Unlock func() error

// releaseScript deletes the key only if it still holds our token so an expired lock taken over by
// someone else isn't released.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// RedisLocker takes locks using SET NX with an expiration. A lock which is never released expires
// after the ttl.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	client := l.client.WithContext(ctx)
	token := uuid.NewString()

	ok, err := client.SetNX(key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %v", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLocked, key)
	}

	return func() error {
		// release even if the caller's context was cancelled while holding the lock
		err := l.client.WithContext(context.WithoutCancel(ctx)).Eval(releaseScript, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to release lock %q: %v", key, err)
		}
		return nil
	}, nil
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

// MemoryLocker holds locks within a single process. It is used when running the CLI and in tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func (l *MemoryLocker) Lock(_ context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrLocked, key)
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.held, key)
		})
		return nil
	}, nil
}
