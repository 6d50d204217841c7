package edition

import (
	"context"
	"fmt"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/shared"
)

// RevocationService handles administrative removal of edition numbers.
// A revoked item stays inactive across future syncs; the revoked flag is a
// stored signal, never recomputed from upstream data.
type RevocationService struct {
	lineItemRepo edition.LineItemRepository
	sequencer    *Sequencer
}

// NewRevocationService creates a new RevocationService
func NewRevocationService(lineItemRepo edition.LineItemRepository, sequencer *Sequencer) *RevocationService {
	return &RevocationService{
		lineItemRepo: lineItemRepo,
		sequencer:    sequencer,
	}
}

// Revoke removes the edition number of a line item and renumbers the rest of
// the product so the sequence stays gap-free. Revoking an item that holds no
// number is an error.
func (s *RevocationService) Revoke(ctx context.Context, lineItemID string) (*ResequenceResult, error) {
	if lineItemID == "" {
		return nil, fmt.Errorf("%w: line item id is required", shared.ErrInvalidInput)
	}

	item, err := s.lineItemRepo.FindByID(ctx, lineItemID)
	if err != nil {
		return nil, err
	}
	if !item.HasNumber() {
		return nil, edition.ErrRevokeUnassigned
	}

	// The clearing write and the renumber that closes the gap commit in one
	// transaction under the product lock, so a concurrent resequence cannot
	// save the item back from a snapshot taken before the revocation
	return s.sequencer.ResequenceWith(ctx, item.ProductID, func(repos TransactionalRepositories) error {
		// Re-read inside the transaction; the sync loop may have touched
		// the row since the guard check
		current, err := repos.LineItemRepo().FindByID(ctx, lineItemID)
		if err != nil {
			return err
		}
		if !current.HasNumber() {
			return edition.ErrRevokeUnassigned
		}

		event, err := edition.NewNumberChangeEvent(current.ID, edition.EventRevoked, edition.NumberChangePayload{
			ProductID: current.ProductID,
			From:      current.EditionNumber,
			To:        nil,
			Total:     derefOrZero(current.EditionTotal),
		})
		if err != nil {
			return err
		}
		if err := repos.EventRepo().Append(ctx, event); err != nil {
			return err
		}

		current.Revoked = true
		current.Status = edition.StatusInactive
		current.ClearNumber()
		return repos.LineItemRepo().Save(ctx, current)
	})
}

func derefOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
