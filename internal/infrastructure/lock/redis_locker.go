package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chonibe/coa-service/internal/domain/shared"
)

// releaseScript deletes the lock key only if this holder still owns it.
// Without the token compare, a slow holder could release a lock that has
// already expired and been re-acquired by someone else.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisProductLocker implements ProductLocker using Redis SET NX with a TTL.
// Suitable for distributed deployments where multiple instances may trigger
// syncs for the same product.
type RedisProductLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	waitFor   time.Duration
	retryGap  time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisProductLocker creates a Redis-backed product locker.
// ttl bounds how long a crashed holder can block others; waitFor bounds how
// long Acquire polls before giving up.
func NewRedisProductLocker(cfg RedisConfig, ttl, waitFor time.Duration) (*RedisProductLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisProductLockerWithClient(client, "", ttl, waitFor), nil
}

// NewRedisProductLockerWithClient creates a locker with an existing Redis
// client. This is useful for testing or when sharing a client across
// components.
func NewRedisProductLockerWithClient(client *redis.Client, keyPrefix string, ttl, waitFor time.Duration) *RedisProductLocker {
	if keyPrefix == "" {
		keyPrefix = "edition:lock:"
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisProductLocker{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		waitFor:   waitFor,
		retryGap:  100 * time.Millisecond,
	}
}

// Acquire takes the per-product lock, polling until waitFor elapses
func (l *RedisProductLocker) Acquire(ctx context.Context, productID string) (func(), error) {
	key := l.keyPrefix + productID
	token := uuid.NewString()
	deadline := time.Now().Add(l.waitFor)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire product lock: %w", err)
		}
		if ok {
			return func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				l.client.Eval(ctx, releaseScript, []string{key}, token)
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: product %s", shared.ErrLockHeld, productID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryGap):
		}
	}
}

// Close closes the Redis client
func (l *RedisProductLocker) Close() error {
	return l.client.Close()
}

// Ensure RedisProductLocker implements ProductLocker
var _ shared.ProductLocker = (*RedisProductLocker)(nil)
