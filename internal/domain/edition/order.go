package edition

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// FinancialStatus is the payment state of an order
type FinancialStatus string

const (
	FinancialStatusPaid          FinancialStatus = "paid"
	FinancialStatusAuthorized    FinancialStatus = "authorized"
	FinancialStatusPending       FinancialStatus = "pending"
	FinancialStatusPartiallyPaid FinancialStatus = "partially_paid"
	FinancialStatusRefunded      FinancialStatus = "refunded"
	FinancialStatusVoided        FinancialStatus = "voided"
	FinancialStatusUnknown       FinancialStatus = "unknown"
)

// CountsTowardNumbering returns true if this payment state keeps a line
// item eligible for an edition number
func (s FinancialStatus) CountsTowardNumbering() bool {
	switch s {
	case FinancialStatusPaid, FinancialStatusAuthorized, FinancialStatusPending, FinancialStatusPartiallyPaid:
		return true
	default:
		return false
	}
}

// ParseFinancialStatus normalizes a vendor payment state string
func ParseFinancialStatus(raw string) FinancialStatus {
	switch FinancialStatus(raw) {
	case FinancialStatusPaid, FinancialStatusAuthorized, FinancialStatusPending,
		FinancialStatusPartiallyPaid, FinancialStatusRefunded, FinancialStatusVoided:
		return FinancialStatus(raw)
	default:
		return FinancialStatusUnknown
	}
}

// Order is the canonical merged record of one real-world order.
// The reconciler owns creation and updates; no two Order rows may represent
// the same real-world order.
type Order struct {
	// ID is the upstream order id (platform id when known; a warehouse
	// placeholder id for unmatched warehouse records)
	ID string
	// Name is the human-facing display number
	Name string
	// Email is the customer email
	Email string

	FinancialStatus   FinancialStatus
	FulfillmentStatus string
	TotalPrice        decimal.Decimal
	Currency          string

	CreatedAt   time.Time
	ProcessedAt *time.Time
	CancelledAt *time.Time
	Archived    bool

	// Source is the upstream system authoritative for this row
	Source upstream.Source
	// RawPayload is the opaque vendor payload of the latest sync
	RawPayload json.RawMessage

	SyncedAt  time.Time
	UpdatedAt time.Time
}

// IsPlaceholder returns true for a standalone warehouse-origin order that
// was created because no platform match existed at sync time
func (o *Order) IsPlaceholder() bool {
	return o.Source == upstream.SourceWarehouse
}
