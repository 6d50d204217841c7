package upstream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStream_ConsumesPagesLazily(t *testing.T) {
	pages := [][]RawOrder{
		{{ID: "1"}, {ID: "2"}},
		{{ID: "3"}},
	}
	calls := 0
	stream := NewOrderStream(func(ctx context.Context) ([]RawOrder, error) {
		if calls >= len(pages) {
			return nil, nil
		}
		page := pages[calls]
		calls++
		return page, nil
	})

	ctx := context.Background()
	var got []string
	for stream.Next(ctx) {
		got = append(got, stream.Order().ID)
	}

	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"1", "2", "3"}, got)
	// one extra pull observes the empty page that ends the stream
	assert.Equal(t, 2, calls)
}

func TestOrderStream_StopsOnError(t *testing.T) {
	calls := 0
	stream := NewOrderStream(func(ctx context.Context) ([]RawOrder, error) {
		calls++
		if calls == 1 {
			return []RawOrder{{ID: "1"}}, nil
		}
		return nil, ErrUpstreamUnavailable
	})

	ctx := context.Background()
	assert.True(t, stream.Next(ctx))
	assert.Equal(t, "1", stream.Order().ID)

	assert.False(t, stream.Next(ctx))
	assert.ErrorIs(t, stream.Err(), ErrUpstreamUnavailable)

	// the stream is terminal after a failure
	assert.False(t, stream.Next(ctx))
}

func TestSource_IsValid(t *testing.T) {
	assert.True(t, SourceShopify.IsValid())
	assert.True(t, SourceWarehouse.IsValid())
	assert.False(t, Source("ebay").IsValid())
}
