package edition

import (
	"context"

	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// OrderRepository persists canonical orders
type OrderRepository interface {
	// Save creates or updates an order (upsert by ID)
	Save(ctx context.Context, order *Order) error

	// FindByID finds an order by its canonical id
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByName finds all orders carrying the given display number.
	// More than one result means the match is ambiguous.
	FindByName(ctx context.Context, name string) ([]Order, error)

	// FindByEmailAndName finds orders by the customer-email + display-number
	// composite key used when no cross-system id is present
	FindByEmailAndName(ctx context.Context, email, name string) ([]Order, error)

	// Delete removes an order row. Only used when a warehouse placeholder is
	// superseded by the matched platform order.
	Delete(ctx context.Context, id string) error
}

// LineItemRepository persists line items
type LineItemRepository interface {
	// Save creates or updates a line item (upsert by ID)
	Save(ctx context.Context, item *LineItem) error

	// FindByID finds a line item by id
	FindByID(ctx context.Context, id string) (*LineItem, error)

	// FindByOrder returns all line items of an order
	FindByOrder(ctx context.Context, orderID string) ([]LineItem, error)

	// FindByProduct returns all line items of a product ordered by
	// created_at ascending, ties broken by line item id. This ordering is
	// the sequencing order and must be stable.
	FindByProduct(ctx context.Context, productID string) ([]LineItem, error)

	// FindActiveByProduct returns the active line items of a product in
	// sequencing order
	FindActiveByProduct(ctx context.Context, productID string) ([]LineItem, error)
}

// EditionEventRepository is the append-only audit log
type EditionEventRepository interface {
	// Append writes one event. Events are never updated or deleted.
	Append(ctx context.Context, event *EditionEvent) error

	// FindByLineItem returns the full event history of a line item,
	// oldest first
	FindByLineItem(ctx context.Context, lineItemID string) ([]EditionEvent, error)

	// FindByLineItemAndTypes returns the history filtered to the given
	// event types, oldest first
	FindByLineItemAndTypes(ctx context.Context, lineItemID string, types ...EventType) ([]EditionEvent, error)
}

// ShipmentRepository persists the warehouse enrichment side table
type ShipmentRepository interface {
	// Save creates or updates a shipment record (upsert by ShipmentID)
	Save(ctx context.Context, shipment *WarehouseShipment) error

	// FindByOrder returns the shipments matched to an order
	FindByOrder(ctx context.Context, orderID string) ([]WarehouseShipment, error)

	// ReassignOrder repoints shipments from one order id to another.
	// Used when a placeholder is superseded by the real platform order.
	ReassignOrder(ctx context.Context, fromOrderID, toOrderID string) error
}

// SyncCursorRepository stores the per-source fetch cursor so a sync resumes
// where the previous completed run left off
type SyncCursorRepository interface {
	// Get returns the stored cursor for a source, or "" when none exists
	Get(ctx context.Context, source upstream.Source) (string, error)

	// Set stores the cursor for a source
	Set(ctx context.Context, source upstream.Source, cursor string) error
}
