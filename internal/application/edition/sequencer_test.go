package edition

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chonibe/coa-service/internal/domain/edition"
)

var seqBase = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func seedItem(store *memStore, id, productID string, offset time.Duration, status edition.Status, number, total *int) {
	store.putItem(edition.LineItem{
		ID:            id,
		OrderID:       "order-" + id,
		ProductID:     productID,
		Status:        status,
		EditionNumber: number,
		EditionTotal:  total,
		CreatedAt:     seqBase.Add(offset),
	})
}

func newTestSequencer(store *memStore) *Sequencer {
	return NewSequencer(nopLocker{}, &memTxScope{store})
}

func TestSequencer_InitialAssignment(t *testing.T) {
	store := newMemStore()
	seedItem(store, "li-1", "prod-1", 0, edition.StatusActive, nil, nil)
	seedItem(store, "li-2", "prod-1", time.Hour, edition.StatusActive, nil, nil)
	seedItem(store, "li-3", "prod-1", 2*time.Hour, edition.StatusActive, nil, nil)

	result, err := newTestSequencer(store).Resequence(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.ActiveCount)
	assert.Equal(t, 3, result.Assigned)
	assert.Equal(t, 0, result.Resequenced)
	assert.Equal(t, 3, result.Writes)

	// Purchase order decides the numbers
	for i, id := range []string{"li-1", "li-2", "li-3"} {
		item := store.item(id)
		require.NotNil(t, item.EditionNumber, id)
		assert.Equal(t, i+1, *item.EditionNumber, id)
		assert.Equal(t, 3, *item.EditionTotal, id)
	}

	// One assigned event per item
	assert.Equal(t, 3, store.eventCount())
	events := store.eventsFor("li-2")
	require.Len(t, events, 1)
	assert.Equal(t, edition.EventAssigned, events[0].EventType)

	var payload edition.NumberChangePayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "prod-1", payload.ProductID)
	assert.Nil(t, payload.From)
	require.NotNil(t, payload.To)
	assert.Equal(t, 2, *payload.To)
	assert.Equal(t, 3, payload.Total)
}

func TestSequencer_SecondRunWritesNothing(t *testing.T) {
	store := newMemStore()
	seedItem(store, "li-1", "prod-1", 0, edition.StatusActive, nil, nil)
	seedItem(store, "li-2", "prod-1", time.Hour, edition.StatusActive, nil, nil)

	sequencer := newTestSequencer(store)
	_, err := sequencer.Resequence(context.Background(), "prod-1")
	require.NoError(t, err)

	result, err := sequencer.Resequence(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Writes)
	assert.False(t, result.Changed())
	assert.Equal(t, 2, store.eventCount())
}

func TestSequencer_ConvergesFromCorruptedState(t *testing.T) {
	store := newMemStore()
	// Gap-ridden numbering left by some earlier failure: {1, 3, 4}
	seedItem(store, "li-1", "prod-1", 0, edition.StatusActive, intPtr(1), intPtr(3))
	seedItem(store, "li-2", "prod-1", time.Hour, edition.StatusActive, intPtr(3), intPtr(4))
	seedItem(store, "li-3", "prod-1", 2*time.Hour, edition.StatusActive, intPtr(4), intPtr(4))

	result, err := newTestSequencer(store).Resequence(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, 1, *store.item("li-1").EditionNumber)
	assert.Equal(t, 2, *store.item("li-2").EditionNumber)
	assert.Equal(t, 3, *store.item("li-3").EditionNumber)
	for _, id := range []string{"li-1", "li-2", "li-3"} {
		assert.Equal(t, 3, *store.item(id).EditionTotal)
	}

	// li-1 kept its number (total was already right); the other two moved
	assert.Equal(t, 2, result.Resequenced)
	assert.Equal(t, 0, result.Assigned)
	assert.Equal(t, 2, result.Writes)
	assert.Equal(t, 2, store.eventCount())
}

func TestSequencer_DeactivationClosesGap(t *testing.T) {
	store := newMemStore()
	seedItem(store, "li-1", "prod-1", 0, edition.StatusActive, intPtr(1), intPtr(3))
	// Deactivated by a restock but still carrying its old number
	seedItem(store, "li-2", "prod-1", time.Hour, edition.StatusInactive, intPtr(2), intPtr(3))
	seedItem(store, "li-3", "prod-1", 2*time.Hour, edition.StatusActive, intPtr(3), intPtr(3))

	result, err := newTestSequencer(store).Resequence(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.ActiveCount)
	assert.Equal(t, 1, result.Cleared)
	assert.Equal(t, 1, result.Resequenced) // li-3: 3 -> 2

	assert.Nil(t, store.item("li-2").EditionNumber)
	assert.Nil(t, store.item("li-2").EditionTotal)
	assert.Equal(t, 2, *store.item("li-3").EditionNumber)
	assert.Equal(t, 2, *store.item("li-1").EditionTotal)

	// li-1 kept number 1: its write was a total refresh, no event
	assert.Empty(t, store.eventsFor("li-1"))
	events := store.eventsFor("li-2")
	require.Len(t, events, 1)
	assert.Equal(t, edition.EventResequenced, events[0].EventType)
}

func TestSequencer_ReactivationGetsHighestNumber(t *testing.T) {
	store := newMemStore()
	// li-1 was restocked earlier and lost its number; now it is active again.
	// Although it is the oldest purchase, the issued numbers keep their
	// positions and li-1 joins at the end.
	seedItem(store, "li-1", "prod-1", 0, edition.StatusActive, nil, nil)
	seedItem(store, "li-2", "prod-1", time.Hour, edition.StatusActive, intPtr(1), intPtr(2))
	seedItem(store, "li-3", "prod-1", 2*time.Hour, edition.StatusActive, intPtr(2), intPtr(2))

	result, err := newTestSequencer(store).Resequence(context.Background(), "prod-1")
	require.NoError(t, err)

	assert.Equal(t, 1, *store.item("li-2").EditionNumber)
	assert.Equal(t, 2, *store.item("li-3").EditionNumber)
	assert.Equal(t, 3, *store.item("li-1").EditionNumber)
	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, 0, result.Resequenced)

	events := store.eventsFor("li-1")
	require.Len(t, events, 1)
	assert.Equal(t, edition.EventAssigned, events[0].EventType)
}

func TestSequencer_LockHeld(t *testing.T) {
	store := newMemStore()
	sequencer := NewSequencer(heldLocker{}, &memTxScope{store})

	_, err := sequencer.Resequence(context.Background(), "prod-1")
	assert.ErrorIs(t, err, edition.ErrResequenceInProgress)
}

func TestSequencer_EmptyProductID(t *testing.T) {
	_, err := newTestSequencer(newMemStore()).Resequence(context.Background(), "")
	assert.Error(t, err)
}

func TestSequencer_IndependentProducts(t *testing.T) {
	store := newMemStore()
	seedItem(store, "li-1", "prod-1", 0, edition.StatusActive, nil, nil)
	seedItem(store, "li-2", "prod-2", 0, edition.StatusActive, nil, nil)

	sequencer := newTestSequencer(store)
	_, err := sequencer.Resequence(context.Background(), "prod-1")
	require.NoError(t, err)

	// prod-2 remains untouched
	assert.Nil(t, store.item("li-2").EditionNumber)
}
