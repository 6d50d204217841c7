package edition

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// Status marks whether a line item currently counts toward numbering
type Status string

const (
	// StatusActive means the item holds (or is owed) an edition number
	StatusActive Status = "active"
	// StatusInactive means the item holds no number; its number and total
	// must be null
	StatusInactive Status = "inactive"
)

// FulfillmentFulfilled is the vendor state meaning the unit shipped
const FulfillmentFulfilled = "fulfilled"

// LineItem is one purchased unit of a limited-edition product.
// Status is owned by the state machine; EditionNumber/EditionTotal are owned
// by the sequencer.
type LineItem struct {
	// ID is the upstream line item id
	ID string
	// OrderID is the canonical order this item belongs to
	OrderID string

	ProductID string
	VariantID string
	Title     string
	Vendor    string
	Quantity  int
	Price     decimal.Decimal

	FulfillmentStatus string
	// Restocked is true once any refund against this item carried an
	// explicit restock flag
	Restocked bool
	// Revoked is true once an operator administratively removed this
	// item's number; it is a stored signal, never recomputed from upstream
	Revoked bool

	Status Status

	// EditionNumber is the dense 1..N position among active items of the
	// product; nil while inactive or not yet sequenced
	EditionNumber *int
	// EditionTotal is N, the active count at last resequence; nil whenever
	// EditionNumber is nil
	EditionTotal *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasNumber returns true if the item currently holds an edition number
func (li *LineItem) HasNumber() bool {
	return li.EditionNumber != nil
}

// ClearNumber nulls out the item's number and total
func (li *LineItem) ClearNumber() {
	li.EditionNumber = nil
	li.EditionTotal = nil
}

// ComputeRestocked derives the restocked flag from the refund records of the
// item's order. Only refund lines with an explicit restock flag count.
func ComputeRestocked(lineItemID string, refunds []upstream.RawRefund) bool {
	for _, refund := range refunds {
		for _, rl := range refund.LineItems {
			if rl.LineItemID == lineItemID && rl.Restocked {
				return true
			}
		}
	}
	return false
}

// ComputeStatus is the line-item state machine: a pure function of the
// stored signals, recomputed on every sync. Re-running it on unchanged
// input yields the same status, so callers diff before writing.
func ComputeStatus(financial FinancialStatus, itemFulfillment string, restocked, revoked bool) Status {
	if restocked || revoked {
		return StatusInactive
	}
	if financial == FinancialStatusVoided {
		return StatusInactive
	}
	if financial.CountsTowardNumbering() || itemFulfillment == FulfillmentFulfilled {
		return StatusActive
	}
	return StatusInactive
}
