package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chonibe/coa-service/internal/domain/shared"
)

// InMemoryProductLocker implements ProductLocker with per-product mutexes.
// This is suitable for single-instance deployments and testing.
// WARNING: In-memory locks do not serialize across process instances, which
// can produce duplicate edition numbers in distributed deployments.
type InMemoryProductLocker struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	waitFor time.Duration
}

// NewInMemoryProductLocker creates a new in-memory product locker
func NewInMemoryProductLocker(waitFor time.Duration) *InMemoryProductLocker {
	return &InMemoryProductLocker{
		locks:   make(map[string]chan struct{}),
		waitFor: waitFor,
	}
}

// Acquire takes the lock for productID, waiting up to the configured budget
func (l *InMemoryProductLocker) Acquire(ctx context.Context, productID string) (func(), error) {
	ch := l.channelFor(productID)

	var timeout <-chan time.Time
	if l.waitFor > 0 {
		timer := time.NewTimer(l.waitFor)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-ch })
		}, nil
	case <-timeout:
		return nil, fmt.Errorf("%w: product %s", shared.ErrLockHeld, productID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// channelFor returns the buffered-channel semaphore for a product
func (l *InMemoryProductLocker) channelFor(productID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[productID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[productID] = ch
	}
	return ch
}

// Ensure InMemoryProductLocker implements ProductLocker
var _ shared.ProductLocker = (*InMemoryProductLocker)(nil)
