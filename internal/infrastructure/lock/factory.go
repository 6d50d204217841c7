package lock

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chonibe/coa-service/internal/domain/shared"
	"github.com/chonibe/coa-service/internal/infrastructure/config"
)

// ProductLockerFactory creates product lockers based on configuration
type ProductLockerFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	waitFor               time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ProductLockerFactoryOption is a functional option for configuring the factory
type ProductLockerFactoryOption func(*ProductLockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ProductLockerFactoryOption {
	return func(f *ProductLockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory locks when
// Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ProductLockerFactoryOption {
	return func(f *ProductLockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewProductLockerFactory creates a new factory
func NewProductLockerFactory(cfg config.RedisConfig, sync config.SyncConfig, opts ...ProductLockerFactoryOption) *ProductLockerFactory {
	f := &ProductLockerFactory{
		redisConfig:           cfg,
		ttl:                   sync.LockTTL,
		waitFor:               sync.LockWait,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLocker creates a Redis-based product locker
func (f *ProductLockerFactory) CreateRedisLocker() (shared.ProductLocker, error) {
	locker, err := NewRedisProductLocker(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl, f.waitFor)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis product locker: %w", err)
	}
	return locker, nil
}

// CreateInMemoryLocker creates an in-memory product locker.
// Suitable for single-instance deployments and testing.
func (f *ProductLockerFactory) CreateInMemoryLocker() shared.ProductLocker {
	return NewInMemoryProductLocker(f.waitFor)
}

// CreateLocker creates a product locker based on whether Redis is available.
// It tries Redis first and falls back to in-memory if Redis is not available
// and fallback is allowed.
func (f *ProductLockerFactory) CreateLocker() (shared.ProductLocker, error) {
	locker, err := f.CreateRedisLocker()
	if err == nil {
		f.logger.Info("using Redis product locker")
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for product locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory product locker. "+
		"This cannot serialize numbering across distributed instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryLocker(), nil
}
