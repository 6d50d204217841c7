package upstream

import (
	"context"
	"errors"
)

// Upstream fetch errors
var (
	// ErrUpstreamUnavailable marks transient network/5xx failures; adapters
	// retry these with backoff before surfacing them
	ErrUpstreamUnavailable = errors.New("upstream: temporarily unavailable")
	// ErrUpstreamAuth marks credential failures; these are fatal and abort
	// the current fetch immediately
	ErrUpstreamAuth = errors.New("upstream: authentication failed")
	// ErrInvalidResponse marks a response the adapter could not parse
	ErrInvalidResponse = errors.New("upstream: invalid response")
)

// OrderSource is the port each upstream adapter implements.
type OrderSource interface {
	// Name identifies the source for cursor storage and logging
	Name() Source

	// FetchSince returns a lazy, finite stream of orders modified after the
	// given cursor (adapter-specific, typically an RFC3339 timestamp; empty
	// means from the beginning). The stream is not restartable mid-flight:
	// a failed fetch must be retried from a fresh FetchSince call.
	FetchSince(ctx context.Context, cursor string) (*OrderStream, error)
}

// OrderStream is a lazy sequence of RawOrders, consumed scanner-style:
//
//	stream, err := source.FetchSince(ctx, cursor)
//	for stream.Next(ctx) {
//	    order := stream.Order()
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Pages are pulled from the upstream API on demand as the consumer advances.
type OrderStream struct {
	pull    func(ctx context.Context) ([]RawOrder, error)
	pending []RawOrder
	current *RawOrder
	err     error
	done    bool
}

// NewOrderStream creates a stream backed by a page puller. The puller returns
// the next page of orders, or an empty slice when the sequence is exhausted.
func NewOrderStream(pull func(ctx context.Context) ([]RawOrder, error)) *OrderStream {
	return &OrderStream{pull: pull}
}

// Next advances the stream to the next order. It returns false when the
// stream is exhausted or a fetch failed; check Err to distinguish.
func (s *OrderStream) Next(ctx context.Context) bool {
	if s.done || s.err != nil {
		return false
	}
	for len(s.pending) == 0 {
		page, err := s.pull(ctx)
		if err != nil {
			s.err = err
			s.done = true
			return false
		}
		if len(page) == 0 {
			s.done = true
			return false
		}
		s.pending = page
	}
	s.current = &s.pending[0]
	s.pending = s.pending[1:]
	return true
}

// Order returns the order the stream is currently positioned on.
// Only valid after Next returned true.
func (s *OrderStream) Order() *RawOrder {
	return s.current
}

// Err returns the error that terminated the stream, if any
func (s *OrderStream) Err() error {
	return s.err
}
