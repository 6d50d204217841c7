package sources

// Shopify Admin API response shapes. Only the fields the engine consumes are
// declared; the full payload is retained opaquely on the normalized record.

// ShopifyOrdersResponse is the envelope of GET /orders.json
type ShopifyOrdersResponse struct {
	Orders []ShopifyOrder `json:"orders"`
}

// ShopifyOrderResponse is the envelope of GET /orders/{id}.json
type ShopifyOrderResponse struct {
	Order *ShopifyOrder `json:"order"`
}

// ShopifyOrder is one order record from the Admin API
type ShopifyOrder struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	FinancialStatus   string             `json:"financial_status"`
	FulfillmentStatus string             `json:"fulfillment_status"`
	TotalPrice        string             `json:"total_price"`
	Currency          string             `json:"currency"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
	ProcessedAt       string             `json:"processed_at"`
	CancelledAt       string             `json:"cancelled_at"`
	ClosedAt          string             `json:"closed_at"`
	LineItems         []ShopifyLineItem  `json:"line_items"`
	Refunds           []ShopifyRefund    `json:"refunds"`
}

// ShopifyLineItem is one purchased unit within an order
type ShopifyLineItem struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	VariantID         int64  `json:"variant_id"`
	Title             string `json:"title"`
	Vendor            string `json:"vendor"`
	Quantity          int    `json:"quantity"`
	Price             string `json:"price"`
	FulfillmentStatus string `json:"fulfillment_status"`
}

// ShopifyRefund is a refund record embedded in an order
type ShopifyRefund struct {
	ID              int64                   `json:"id"`
	CreatedAt       string                  `json:"created_at"`
	RefundLineItems []ShopifyRefundLineItem `json:"refund_line_items"`
}

// ShopifyRefundLineItem ties a refund to a line item. RestockType is one of
// "no_restock", "cancel", "return", "legacy_restock"; anything other than
// no_restock restores inventory.
type ShopifyRefundLineItem struct {
	ID          int64  `json:"id"`
	LineItemID  int64  `json:"line_item_id"`
	Quantity    int    `json:"quantity"`
	RestockType string `json:"restock_type"`
}
