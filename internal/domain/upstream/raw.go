package upstream

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies the upstream system a record originated from.
type Source string

const (
	// SourceShopify is the commerce-platform order API
	SourceShopify Source = "shopify"
	// SourceWarehouse is the fulfillment/warehouse API
	SourceWarehouse Source = "warehouse"
)

// IsValid returns true if the source is a known upstream system
func (s Source) IsValid() bool {
	switch s {
	case SourceShopify, SourceWarehouse:
		return true
	default:
		return false
	}
}

// String returns the string representation of Source
func (s Source) String() string {
	return string(s)
}

// RawOrder is the normalized shape of one upstream order record.
// Vendor-specific JSON is parsed into this common structure by the adapters;
// the original payload is retained opaquely in Raw.
type RawOrder struct {
	// Source is the upstream system this record came from
	Source Source
	// ID is the order identifier on the upstream system
	ID string
	// Name is the human-facing display number (e.g. "#1042")
	Name string
	// Email is the customer email, if present
	Email string
	// FinancialStatus is the vendor payment state (paid, pending, voided, ...)
	FinancialStatus string
	// FulfillmentStatus is the vendor fulfillment state of the whole order
	FulfillmentStatus string
	// Currency is the ISO currency code
	Currency string
	// TotalPrice is the order total
	TotalPrice decimal.Decimal
	// CreatedAt is when the order was placed upstream
	CreatedAt time.Time
	// UpdatedAt is the upstream last-modified time, used for cursoring
	UpdatedAt time.Time
	// ProcessedAt is when payment was processed, if known
	ProcessedAt *time.Time
	// CancelledAt is when the order was cancelled, if it was
	CancelledAt *time.Time
	// Archived indicates the order was closed/archived upstream
	Archived bool
	// LineItems are the purchased units
	LineItems []RawLineItem
	// Refunds are refund records against this order
	Refunds []RawRefund
	// Shipment carries warehouse-only shipping fields; nil for platform records
	Shipment *RawShipment
	// Raw is the opaque vendor payload, kept for forward compatibility
	Raw json.RawMessage
}

// RawLineItem is one purchased unit within a RawOrder
type RawLineItem struct {
	ID                string
	ProductID         string
	VariantID         string
	Title             string
	Vendor            string
	Quantity          int
	Price             decimal.Decimal
	FulfillmentStatus string
}

// RawRefund is one refund record against an order
type RawRefund struct {
	ID        string
	CreatedAt time.Time
	LineItems []RawRefundLineItem
}

// RawRefundLineItem ties a refund to a specific line item.
// Restocked is true only when the vendor marked the refund with an explicit
// restock flag; a refund without restock does not free the item's slot.
type RawRefundLineItem struct {
	LineItemID  string
	Quantity    int
	RestockType string
	Restocked   bool
}

// RawShipment carries the shipping/tracking fields only the warehouse
// system knows about.
type RawShipment struct {
	// ShipmentID is the warehouse system's identifier
	ShipmentID string
	// OrderRef is the explicit cross-system order id embedded by the
	// warehouse, when present; it is the strongest reconciliation key
	OrderRef string
	// OrderName is the display number the warehouse recorded, if any
	OrderName string
	// Email is the recipient email recorded by the warehouse
	Email string

	ShippingName    string
	ShippingAddress string
	ShippingCity    string
	ShippingCountry string
	ShippingZip     string

	TrackingNumber string
	TrackingURL    string
	StatusCode     string
	ShippedAt      *time.Time
}
