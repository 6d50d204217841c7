package shared

import (
	"context"
	"errors"
)

// ErrLockHeld is returned when a product lock is already held elsewhere
var ErrLockHeld = errors.New("shared: lock already held")

// ProductLocker serializes numbering work per product. All writes to a
// product's edition sequence must happen under its lock; concurrent
// holders would race the gap-free ordering.
type ProductLocker interface {
	// Acquire takes the lock for productID, blocking up to the
	// implementation's wait budget. It returns a release function that
	// must be called exactly once, or ErrLockHeld if the lock could not
	// be obtained in time.
	Acquire(ctx context.Context, productID string) (release func(), err error)
}
