package sources

// Warehouse API response shapes. The warehouse system exposes shipments, not
// orders; each shipment references the commerce order it fulfils, either by
// an explicit cross-system id or by display number and recipient email.

// WarehouseShipmentRecord is one shipment from the warehouse API. The page
// envelope is decoded untyped so each record's raw payload can be retained.
type WarehouseShipmentRecord struct {
	ShipmentID string `json:"shipment_id"`
	// OrderRef is the commerce platform order id, when the warehouse
	// recorded it; the strongest reconciliation key
	OrderRef string `json:"order_ref"`
	// OrderNumber is the display number printed on the packing slip
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
	StatusCode  string `json:"status_code"`

	RecipientName   string `json:"recipient_name"`
	AddressLine     string `json:"address_line"`
	City            string `json:"city"`
	Country         string `json:"country"`
	Zip             string `json:"zip"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingURL     string `json:"tracking_url"`
	ShippedAt       string `json:"shipped_at"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`

	Items []WarehouseShipmentItem `json:"items"`
}

// WarehouseShipmentItem is one unit within a shipment
type WarehouseShipmentItem struct {
	LineRef   string `json:"line_ref"`
	SKU       string `json:"sku"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
