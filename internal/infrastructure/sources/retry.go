package sources

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryTransient runs op with exponential backoff until it succeeds, returns
// a permanent error, or the retry budget is exhausted. Transient upstream
// failures (network, 429, 5xx) are the only errors worth retrying; auth and
// parse failures must be wrapped with permanent so they abort immediately.
func retryTransient(ctx context.Context, op func() error, maxRetries int) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx))
}

// permanent marks an error as not retryable
func permanent(err error) error {
	return backoff.Permanent(err)
}
