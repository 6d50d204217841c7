package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// Reconciler merges normalized upstream records into the canonical order
// store. Platform records are authoritative for payment and fulfillment
// state; warehouse records contribute shipping and tracking, matched to
// their platform order by, in priority order, the explicit cross-system
// order id, the display number, and the email + display number composite.
// A warehouse record with no match becomes a standalone placeholder order;
// one with several plausible matches is refused a merge and kept distinct.
type Reconciler struct {
	orderRepo    edition.OrderRepository
	lineItemRepo edition.LineItemRepository
	shipmentRepo edition.ShipmentRepository
	logger       *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	orderRepo edition.OrderRepository,
	lineItemRepo edition.LineItemRepository,
	shipmentRepo edition.ShipmentRepository,
	logger *zap.Logger,
) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		shipmentRepo: shipmentRepo,
		logger:       logger,
	}
}

// Reconcile merges a batch of upstream records and aggregates the outcomes
func (r *Reconciler) Reconcile(ctx context.Context, raws []upstream.RawOrder) (*ReconcileStats, error) {
	stats := &ReconcileStats{}
	touched := make(map[string]struct{})

	for i := range raws {
		outcome, err := r.ReconcileOrder(ctx, &raws[i])
		if err != nil {
			return stats, err
		}
		if outcome.Created {
			stats.Created++
		}
		if outcome.Merged {
			stats.Merged++
		}
		if outcome.Placeholder {
			stats.Placeholders++
		}
		if outcome.Upgraded {
			stats.Upgraded++
		}
		if outcome.Ambiguous {
			stats.Ambiguous++
		}
		for _, productID := range outcome.TouchedProducts {
			touched[productID] = struct{}{}
		}
	}

	for productID := range touched {
		stats.TouchedProducts = append(stats.TouchedProducts, productID)
	}
	return stats, nil
}

// ReconcileOrder merges one upstream record into canonical state
func (r *Reconciler) ReconcileOrder(ctx context.Context, raw *upstream.RawOrder) (*ReconcileOutcome, error) {
	switch raw.Source {
	case upstream.SourceShopify:
		return r.reconcilePlatform(ctx, raw)
	case upstream.SourceWarehouse:
		return r.reconcileWarehouse(ctx, raw)
	default:
		return nil, fmt.Errorf("sync: unknown source %q", raw.Source)
	}
}

// --------------------------------------------------------------------------
// Platform records
// --------------------------------------------------------------------------

func (r *Reconciler) reconcilePlatform(ctx context.Context, raw *upstream.RawOrder) (*ReconcileOutcome, error) {
	outcome := &ReconcileOutcome{}

	existing, err := r.orderRepo.FindByID(ctx, raw.ID)
	if err != nil && !errors.Is(err, edition.ErrOrderNotFound) {
		return nil, fmt.Errorf("sync: failed to load order %s: %w", raw.ID, err)
	}

	order := platformOrderFromRaw(raw)
	if err := r.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("sync: failed to save order %s: %w", raw.ID, err)
	}
	if existing == nil {
		outcome.Created = true
	} else {
		outcome.Merged = true
	}

	// The platform row must exist before any placeholder it supersedes is
	// removed, so a crash between the two steps leaves both rather than
	// neither.
	if err := r.upgradePlaceholders(ctx, raw, outcome); err != nil {
		return nil, err
	}

	for i := range raw.LineItems {
		touched, err := r.syncPlatformLineItem(ctx, raw, &raw.LineItems[i])
		if err != nil {
			return nil, err
		}
		if touched {
			outcome.TouchedProducts = appendUnique(outcome.TouchedProducts, raw.LineItems[i].ProductID)
		}
	}

	return outcome, nil
}

// upgradePlaceholders folds warehouse placeholders carrying this order's
// display number into the platform order: shipments and line items are
// repointed, then the placeholder row is deleted.
func (r *Reconciler) upgradePlaceholders(ctx context.Context, raw *upstream.RawOrder, outcome *ReconcileOutcome) error {
	if raw.Name == "" {
		return nil
	}

	candidates, err := r.orderRepo.FindByName(ctx, raw.Name)
	if err != nil {
		return fmt.Errorf("sync: failed to find orders named %s: %w", raw.Name, err)
	}

	for i := range candidates {
		placeholder := &candidates[i]
		if !placeholder.IsPlaceholder() || placeholder.ID == raw.ID {
			continue
		}
		if placeholder.Email != "" && raw.Email != "" && placeholder.Email != raw.Email {
			r.logger.Warn("placeholder shares display number but not email, leaving distinct",
				zap.String("order_id", raw.ID),
				zap.String("placeholder_id", placeholder.ID),
				zap.String("order_name", raw.Name))
			outcome.Ambiguous = true
			continue
		}

		if err := r.shipmentRepo.ReassignOrder(ctx, placeholder.ID, raw.ID); err != nil {
			return fmt.Errorf("sync: failed to reassign shipments from %s: %w", placeholder.ID, err)
		}
		items, err := r.lineItemRepo.FindByOrder(ctx, placeholder.ID)
		if err != nil {
			return fmt.Errorf("sync: failed to load placeholder items %s: %w", placeholder.ID, err)
		}
		for j := range items {
			items[j].OrderID = raw.ID
			if err := r.lineItemRepo.Save(ctx, &items[j]); err != nil {
				return fmt.Errorf("sync: failed to rehome line item %s: %w", items[j].ID, err)
			}
		}
		if err := r.orderRepo.Delete(ctx, placeholder.ID); err != nil {
			return fmt.Errorf("sync: failed to delete placeholder %s: %w", placeholder.ID, err)
		}

		r.logger.Info("placeholder superseded by platform order",
			zap.String("placeholder_id", placeholder.ID),
			zap.String("order_id", raw.ID))
		outcome.Upgraded = true
	}

	return nil
}

// syncPlatformLineItem writes one platform line item, diffing against the
// stored row so an unchanged record costs no write and no event. Returns
// true when the product's numbering may need a resequence.
func (r *Reconciler) syncPlatformLineItem(ctx context.Context, raw *upstream.RawOrder, rawItem *upstream.RawLineItem) (bool, error) {
	existing, err := r.lineItemRepo.FindByID(ctx, rawItem.ID)
	if err != nil && !errors.Is(err, edition.ErrLineItemNotFound) {
		return false, fmt.Errorf("sync: failed to load line item %s: %w", rawItem.ID, err)
	}

	item := &edition.LineItem{
		ID:                rawItem.ID,
		OrderID:           raw.ID,
		ProductID:         rawItem.ProductID,
		VariantID:         rawItem.VariantID,
		Title:             rawItem.Title,
		Vendor:            rawItem.Vendor,
		Quantity:          rawItem.Quantity,
		Price:             rawItem.Price,
		FulfillmentStatus: rawItem.FulfillmentStatus,
		Restocked:         edition.ComputeRestocked(rawItem.ID, raw.Refunds),
		CreatedAt:         raw.CreatedAt,
	}
	if existing != nil {
		// Restock and revocation are sticky: once set they survive later
		// payloads that no longer carry the refund. Numbers belong to the
		// sequencer and pass through untouched.
		item.Restocked = existing.Restocked || item.Restocked
		item.Revoked = existing.Revoked
		item.EditionNumber = existing.EditionNumber
		item.EditionTotal = existing.EditionTotal
		item.CreatedAt = existing.CreatedAt
	}
	item.Status = edition.ComputeStatus(
		edition.ParseFinancialStatus(raw.FinancialStatus),
		item.FulfillmentStatus,
		item.Restocked,
		item.Revoked,
	)

	if existing != nil && !lineItemChanged(existing, item) {
		return false, nil
	}
	if err := r.lineItemRepo.Save(ctx, item); err != nil {
		return false, fmt.Errorf("sync: failed to save line item %s: %w", rawItem.ID, err)
	}

	touched := existing == nil || existing.Status != item.Status
	return touched, nil
}

// --------------------------------------------------------------------------
// Warehouse records
// --------------------------------------------------------------------------

func (r *Reconciler) reconcileWarehouse(ctx context.Context, raw *upstream.RawOrder) (*ReconcileOutcome, error) {
	if raw.Shipment == nil {
		return nil, fmt.Errorf("sync: warehouse record %s carries no shipment", raw.ID)
	}
	outcome := &ReconcileOutcome{}

	match, ambiguous, err := r.matchWarehouseRecord(ctx, raw)
	if err != nil {
		return nil, err
	}
	if ambiguous {
		r.logger.Warn("refusing ambiguous warehouse match",
			zap.String("shipment_id", raw.Shipment.ShipmentID),
			zap.String("order_name", raw.Shipment.OrderName),
			zap.Error(edition.ErrReconciliationAmbiguity))
		outcome.Ambiguous = true
	}

	if match == nil {
		return outcome, r.storeStandaloneShipment(ctx, raw, outcome)
	}
	return outcome, r.enrichMatchedOrder(ctx, raw, match, outcome)
}

// matchWarehouseRecord resolves the canonical order a warehouse record
// belongs to. Returns (nil, true, nil) when several orders are plausible.
func (r *Reconciler) matchWarehouseRecord(ctx context.Context, raw *upstream.RawOrder) (*edition.Order, bool, error) {
	shipment := raw.Shipment

	if shipment.OrderRef != "" {
		order, err := r.orderRepo.FindByID(ctx, shipment.OrderRef)
		if err == nil {
			return order, false, nil
		}
		if !errors.Is(err, edition.ErrOrderNotFound) {
			return nil, false, fmt.Errorf("sync: failed to resolve order ref %s: %w", shipment.OrderRef, err)
		}
		// The referenced platform order has not synced yet; the record
		// stays standalone until it does.
	}

	if shipment.OrderName == "" {
		return nil, false, nil
	}
	candidates, err := r.orderRepo.FindByName(ctx, shipment.OrderName)
	if err != nil {
		return nil, false, fmt.Errorf("sync: failed to find orders named %s: %w", shipment.OrderName, err)
	}
	platform := filterPlatform(candidates)

	switch len(platform) {
	case 0:
		return nil, false, nil
	case 1:
		return &platform[0], false, nil
	}

	// Display number alone is not unique; try the email composite.
	if shipment.Email != "" {
		narrowed, err := r.orderRepo.FindByEmailAndName(ctx, shipment.Email, shipment.OrderName)
		if err != nil {
			return nil, false, fmt.Errorf("sync: failed composite lookup for %s: %w", shipment.OrderName, err)
		}
		narrowed = filterPlatform(narrowed)
		if len(narrowed) == 1 {
			return &narrowed[0], false, nil
		}
	}
	return nil, true, nil
}

// enrichMatchedOrder attaches a warehouse record to its platform order.
// The platform row keeps its payment and fulfillment fields; the warehouse
// contributes the shipment row and per-item shipped state.
func (r *Reconciler) enrichMatchedOrder(ctx context.Context, raw *upstream.RawOrder, match *edition.Order, outcome *ReconcileOutcome) error {
	// An earlier sync may have stored this record standalone; the match now
	// supersedes that placeholder.
	placeholder, err := r.orderRepo.FindByID(ctx, raw.ID)
	if err != nil && !errors.Is(err, edition.ErrOrderNotFound) {
		return fmt.Errorf("sync: failed to load order %s: %w", raw.ID, err)
	}
	if placeholder != nil && placeholder.IsPlaceholder() && placeholder.ID != match.ID {
		if err := r.shipmentRepo.ReassignOrder(ctx, placeholder.ID, match.ID); err != nil {
			return fmt.Errorf("sync: failed to reassign shipments from %s: %w", placeholder.ID, err)
		}
		items, err := r.lineItemRepo.FindByOrder(ctx, placeholder.ID)
		if err != nil {
			return fmt.Errorf("sync: failed to load placeholder items %s: %w", placeholder.ID, err)
		}
		for i := range items {
			items[i].OrderID = match.ID
			if err := r.lineItemRepo.Save(ctx, &items[i]); err != nil {
				return fmt.Errorf("sync: failed to rehome line item %s: %w", items[i].ID, err)
			}
		}
		if err := r.orderRepo.Delete(ctx, placeholder.ID); err != nil {
			return fmt.Errorf("sync: failed to delete placeholder %s: %w", placeholder.ID, err)
		}
		outcome.Upgraded = true
	}

	if err := r.shipmentRepo.Save(ctx, shipmentFromRaw(raw.Shipment, match.ID)); err != nil {
		return fmt.Errorf("sync: failed to save shipment %s: %w", raw.Shipment.ShipmentID, err)
	}
	outcome.Merged = true

	if !shipmentShipped(raw.Shipment) {
		return nil
	}
	for i := range raw.LineItems {
		touched, err := r.markItemFulfilled(ctx, match, &raw.LineItems[i])
		if err != nil {
			return err
		}
		if touched {
			outcome.TouchedProducts = appendUnique(outcome.TouchedProducts, raw.LineItems[i].ProductID)
		}
	}
	return nil
}

// markItemFulfilled records the shipped state on a line item the platform
// already knows about. Items the platform has not reported are skipped; the
// platform is authoritative for which items an order contains.
func (r *Reconciler) markItemFulfilled(ctx context.Context, order *edition.Order, rawItem *upstream.RawLineItem) (bool, error) {
	existing, err := r.lineItemRepo.FindByID(ctx, rawItem.ID)
	if errors.Is(err, edition.ErrLineItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sync: failed to load line item %s: %w", rawItem.ID, err)
	}
	if existing.FulfillmentStatus == edition.FulfillmentFulfilled {
		return false, nil
	}

	existing.FulfillmentStatus = edition.FulfillmentFulfilled
	newStatus := edition.ComputeStatus(order.FinancialStatus, existing.FulfillmentStatus, existing.Restocked, existing.Revoked)
	touched := existing.Status != newStatus
	existing.Status = newStatus
	if err := r.lineItemRepo.Save(ctx, existing); err != nil {
		return false, fmt.Errorf("sync: failed to save line item %s: %w", existing.ID, err)
	}
	return touched, nil
}

// storeStandaloneShipment keeps an unmatched warehouse record as a
// placeholder order so its items still participate in numbering. A later
// sync upgrades the placeholder once the platform order appears.
func (r *Reconciler) storeStandaloneShipment(ctx context.Context, raw *upstream.RawOrder, outcome *ReconcileOutcome) error {
	order := &edition.Order{
		ID:              raw.ID,
		Name:            raw.Name,
		Email:           raw.Email,
		FinancialStatus: edition.FinancialStatusUnknown,
		CreatedAt:       raw.CreatedAt,
		Source:          upstream.SourceWarehouse,
		RawPayload:      raw.Raw,
		SyncedAt:        time.Now().UTC(),
		UpdatedAt:       raw.UpdatedAt,
	}
	if err := r.orderRepo.Save(ctx, order); err != nil {
		return fmt.Errorf("sync: failed to save placeholder %s: %w", raw.ID, err)
	}
	if err := r.shipmentRepo.Save(ctx, shipmentFromRaw(raw.Shipment, order.ID)); err != nil {
		return fmt.Errorf("sync: failed to save shipment %s: %w", raw.Shipment.ShipmentID, err)
	}
	outcome.Placeholder = true

	fulfillment := ""
	if shipmentShipped(raw.Shipment) {
		fulfillment = edition.FulfillmentFulfilled
	}
	for i := range raw.LineItems {
		rawItem := &raw.LineItems[i]
		existing, err := r.lineItemRepo.FindByID(ctx, rawItem.ID)
		if err != nil && !errors.Is(err, edition.ErrLineItemNotFound) {
			return fmt.Errorf("sync: failed to load line item %s: %w", rawItem.ID, err)
		}

		item := &edition.LineItem{
			ID:                rawItem.ID,
			OrderID:           order.ID,
			ProductID:         rawItem.ProductID,
			Quantity:          rawItem.Quantity,
			FulfillmentStatus: fulfillment,
			CreatedAt:         raw.CreatedAt,
		}
		if existing != nil {
			item.OrderID = existing.OrderID
			item.Restocked = existing.Restocked
			item.Revoked = existing.Revoked
			item.EditionNumber = existing.EditionNumber
			item.EditionTotal = existing.EditionTotal
			item.CreatedAt = existing.CreatedAt
			if existing.Title != "" {
				item.Title = existing.Title
				item.Vendor = existing.Vendor
				item.VariantID = existing.VariantID
				item.Price = existing.Price
			}
		}
		item.Status = edition.ComputeStatus(edition.FinancialStatusUnknown, item.FulfillmentStatus, item.Restocked, item.Revoked)

		if existing != nil && !lineItemChanged(existing, item) {
			continue
		}
		if err := r.lineItemRepo.Save(ctx, item); err != nil {
			return fmt.Errorf("sync: failed to save line item %s: %w", rawItem.ID, err)
		}
		if existing == nil || existing.Status != item.Status {
			outcome.TouchedProducts = appendUnique(outcome.TouchedProducts, rawItem.ProductID)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func platformOrderFromRaw(raw *upstream.RawOrder) *edition.Order {
	return &edition.Order{
		ID:                raw.ID,
		Name:              raw.Name,
		Email:             raw.Email,
		FinancialStatus:   edition.ParseFinancialStatus(raw.FinancialStatus),
		FulfillmentStatus: raw.FulfillmentStatus,
		TotalPrice:        raw.TotalPrice,
		Currency:          raw.Currency,
		CreatedAt:         raw.CreatedAt,
		ProcessedAt:       raw.ProcessedAt,
		CancelledAt:       raw.CancelledAt,
		Archived:          raw.Archived,
		Source:            upstream.SourceShopify,
		RawPayload:        raw.Raw,
		SyncedAt:          time.Now().UTC(),
		UpdatedAt:         raw.UpdatedAt,
	}
}

func shipmentFromRaw(raw *upstream.RawShipment, orderID string) *edition.WarehouseShipment {
	return &edition.WarehouseShipment{
		ShipmentID:      raw.ShipmentID,
		OrderID:         orderID,
		ShippingName:    raw.ShippingName,
		ShippingAddress: raw.ShippingAddress,
		ShippingCity:    raw.ShippingCity,
		ShippingCountry: raw.ShippingCountry,
		ShippingZip:     raw.ShippingZip,
		TrackingNumber:  raw.TrackingNumber,
		TrackingURL:     raw.TrackingURL,
		StatusCode:      raw.StatusCode,
		ShippedAt:       raw.ShippedAt,
		SyncedAt:        time.Now().UTC(),
	}
}

func shipmentShipped(s *upstream.RawShipment) bool {
	return s.ShippedAt != nil || s.StatusCode == "shipped" || s.StatusCode == "delivered"
}

func filterPlatform(orders []edition.Order) []edition.Order {
	out := orders[:0:0]
	for _, o := range orders {
		if !o.IsPlaceholder() {
			out = append(out, o)
		}
	}
	return out
}

// lineItemChanged reports whether the sync-owned fields differ. Number and
// total are sequencer-owned and never compared here.
func lineItemChanged(old, next *edition.LineItem) bool {
	return old.OrderID != next.OrderID ||
		old.ProductID != next.ProductID ||
		old.VariantID != next.VariantID ||
		old.Title != next.Title ||
		old.Vendor != next.Vendor ||
		old.Quantity != next.Quantity ||
		!old.Price.Equal(next.Price) ||
		old.FulfillmentStatus != next.FulfillmentStatus ||
		old.Restocked != next.Restocked ||
		old.Status != next.Status
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
