package edition

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/shared"
)

// Sequencer owns the edition numbers of every product. It is the only
// writer of edition_number/edition_total, always under the product lock,
// and every stored-number change it makes produces exactly one audit event.
type Sequencer struct {
	locker  shared.ProductLocker
	txScope TransactionScope
}

// NewSequencer creates a new Sequencer
func NewSequencer(locker shared.ProductLocker, txScope TransactionScope) *Sequencer {
	return &Sequencer{
		locker:  locker,
		txScope: txScope,
	}
}

// Resequence recomputes the dense 1..N numbering of a product's active line
// items; inactive items lose their numbers. Already-numbered items keep
// their relative number order, so an issued number only ever shifts down to
// close a gap; newly active items join at the end, by purchase time. The
// operation converges: running it again on an unchanged product writes
// nothing.
func (s *Sequencer) Resequence(ctx context.Context, productID string) (*ResequenceResult, error) {
	return s.ResequenceWith(ctx, productID, nil)
}

// ResequenceWith runs prepare inside the same locked transaction as the
// renumbering. A caller retiring an item's number passes the clearing write
// as prepare so it commits together with the renumber that closes the gap;
// no concurrent resequence can save the item back from a stale snapshot.
func (s *Sequencer) ResequenceWith(ctx context.Context, productID string, prepare func(repos TransactionalRepositories) error) (*ResequenceResult, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", shared.ErrInvalidInput)
	}

	release, err := s.locker.Acquire(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrLockHeld) {
			return nil, edition.ErrResequenceInProgress
		}
		return nil, err
	}
	defer release()

	result := &ResequenceResult{ProductID: productID}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if prepare != nil {
			if err := prepare(repos); err != nil {
				return err
			}
		}

		// FindByProduct returns purchase order (created_at, ties by id)
		items, err := repos.LineItemRepo().FindByProduct(ctx, productID)
		if err != nil {
			return err
		}

		sequence, rest := splitSequence(items)
		total := len(sequence)
		result.ActiveCount = total

		for i, item := range sequence {
			n := i + 1
			if err := s.applyNumber(ctx, repos, item, &n, total, result); err != nil {
				return err
			}
		}
		for _, item := range rest {
			if err := s.applyNumber(ctx, repos, item, nil, total, result); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// splitSequence partitions items into the numbering sequence (active items)
// and the rest (inactive items, which must hold no number). Within the
// sequence, items that already hold numbers come first in number order;
// unnumbered newcomers follow in purchase order, so a reactivated item
// receives the next unused number rather than displacing issued ones.
func splitSequence(items []edition.LineItem) (sequence, rest []*edition.LineItem) {
	var numbered, unnumbered []*edition.LineItem
	for i := range items {
		item := &items[i]
		switch {
		case item.Status != edition.StatusActive:
			rest = append(rest, item)
		case item.EditionNumber != nil:
			numbered = append(numbered, item)
		default:
			unnumbered = append(unnumbered, item)
		}
	}

	sort.SliceStable(numbered, func(i, j int) bool {
		if *numbered[i].EditionNumber != *numbered[j].EditionNumber {
			return *numbered[i].EditionNumber < *numbered[j].EditionNumber
		}
		return numbered[i].ID < numbered[j].ID
	})

	return append(numbered, unnumbered...), rest
}

// applyNumber writes one item's desired number if it differs from the stored
// state, emitting an audit event for genuine number changes. Total-only
// refreshes write the row silently.
func (s *Sequencer) applyNumber(ctx context.Context, repos TransactionalRepositories, item *edition.LineItem, desired *int, total int, result *ResequenceResult) error {
	changed := !equalNumbers(item.EditionNumber, desired)
	totalStale := desired != nil && (item.EditionTotal == nil || *item.EditionTotal != total)
	if !changed && !totalStale {
		if desired == nil && item.EditionTotal != nil {
			// number already null but a stale total survived
			item.EditionTotal = nil
			result.Writes++
			return repos.LineItemRepo().Save(ctx, item)
		}
		return nil
	}

	if changed {
		event, err := numberChangeEvent(item, desired, total)
		if err != nil {
			return err
		}
		if err := repos.EventRepo().Append(ctx, event); err != nil {
			return err
		}

		switch {
		case item.EditionNumber == nil:
			result.Assigned++
		case desired == nil:
			result.Cleared++
		default:
			result.Resequenced++
		}
	}

	item.EditionNumber = desired
	if desired != nil {
		t := total
		item.EditionTotal = &t
	} else {
		item.EditionTotal = nil
	}

	if err := repos.LineItemRepo().Save(ctx, item); err != nil {
		return err
	}
	result.Writes++
	return nil
}

// numberChangeEvent classifies a stored-number change and builds its audit event
func numberChangeEvent(item *edition.LineItem, desired *int, total int) (*edition.EditionEvent, error) {
	eventType := edition.EventResequenced
	if item.EditionNumber == nil {
		eventType = edition.EventAssigned
	}

	return edition.NewNumberChangeEvent(item.ID, eventType, edition.NumberChangePayload{
		ProductID: item.ProductID,
		From:      item.EditionNumber,
		To:        desired,
		Total:     total,
	})
}

func equalNumbers(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
