package edition

import "time"

// WarehouseShipment is the enrichment side table mapping a warehouse system
// id to the matched canonical order, carrying the shipping/tracking fields
// only the warehouse knows. Written by the reconciler.
type WarehouseShipment struct {
	// ShipmentID is the warehouse system's identifier
	ShipmentID string
	// OrderID is the canonical order this shipment was matched to
	OrderID string

	ShippingName    string
	ShippingAddress string
	ShippingCity    string
	ShippingCountry string
	ShippingZip     string

	TrackingNumber string
	TrackingURL    string
	StatusCode     string

	ShippedAt *time.Time
	SyncedAt  time.Time
}
