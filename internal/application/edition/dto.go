package edition

import (
	"time"

	"github.com/chonibe/coa-service/internal/domain/edition"
)

// ResequenceResult summarizes one resequencing pass over a product
type ResequenceResult struct {
	ProductID string `json:"product_id"`
	// ActiveCount is N, the number of active items after the pass
	ActiveCount int `json:"active_count"`
	// Assigned counts items that went from unnumbered to numbered
	Assigned int `json:"assigned"`
	// Resequenced counts items whose existing number moved
	Resequenced int `json:"resequenced"`
	// Cleared counts items whose number was removed on deactivation
	Cleared int `json:"cleared"`
	// Writes counts rows written, including total-only refreshes
	Writes int `json:"writes"`
}

// Changed returns true if the pass wrote anything
func (r *ResequenceResult) Changed() bool {
	return r.Writes > 0
}

// CertificateView is the public verification projection of a numbered item.
// It never exposes operational internals like raw payloads or sync state.
type CertificateView struct {
	LineItemID    string         `json:"line_item_id"`
	OrderName     string         `json:"order_name"`
	ProductID     string         `json:"product_id"`
	Title         string         `json:"title"`
	Vendor        string         `json:"vendor,omitempty"`
	EditionNumber int            `json:"edition_number"`
	EditionTotal  int            `json:"edition_total"`
	Status        edition.Status `json:"status"`
	PurchasedAt   time.Time      `json:"purchased_at"`

	// OwnerName and OwnerEmail identify the current owner: the purchaser,
	// until an ownership transfer moves the certificate on
	OwnerName     string     `json:"owner_name,omitempty"`
	OwnerEmail    string     `json:"owner_email,omitempty"`
	Authenticated bool       `json:"authenticated"`
	TrackingURL   string     `json:"tracking_url,omitempty"`
	ShippedAt     *time.Time `json:"shipped_at,omitempty"`
}

// EditionListEntry is one row of a product's edition roster
type EditionListEntry struct {
	LineItemID    string `json:"line_item_id"`
	OrderID       string `json:"order_id"`
	EditionNumber int    `json:"edition_number"`
	EditionTotal  int    `json:"edition_total"`
}

// DuplicateReport lists edition numbers held by more than one active item
// of a product. A non-empty report means an invariant was violated and the
// product needs a forced resequence.
type DuplicateReport struct {
	ProductID  string           `json:"product_id"`
	Duplicates []DuplicateEntry `json:"duplicates"`
}

// DuplicateEntry is one duplicated number and its holders
type DuplicateEntry struct {
	EditionNumber int      `json:"edition_number"`
	LineItemIDs   []string `json:"line_item_ids"`
}

// HasDuplicates returns true if any number is held more than once
func (r *DuplicateReport) HasDuplicates() bool {
	return len(r.Duplicates) > 0
}

// HistoryEntry is one audit event in a line item's history
type HistoryEntry struct {
	EventType edition.EventType `json:"event_type"`
	Payload   interface{}       `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
