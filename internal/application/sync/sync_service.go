package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	editionapp "github.com/chonibe/coa-service/internal/application/edition"
	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// PlatformSource is the commerce-platform adapter port: the incremental
// stream plus single-order lookup.
type PlatformSource interface {
	upstream.OrderSource

	// FetchOrder fetches one order by its platform id
	FetchOrder(ctx context.Context, orderID string) (*upstream.RawOrder, error)
}

// WarehouseSource is the fulfillment-system adapter port: the incremental
// stream plus per-order shipment lookup used for single-order enrichment.
type WarehouseSource interface {
	upstream.OrderSource

	// FetchShipmentsForOrder fetches the shipments referencing an order
	FetchShipmentsForOrder(ctx context.Context, orderRef string) ([]upstream.RawOrder, error)
}

// SyncService drives sync runs: it pulls records from both upstreams,
// reconciles them into canonical state, and resequences every product whose
// numbering inputs changed. Runs are trigger-driven and synchronous; a
// record that fails to reconcile is counted and skipped, never fatal, so a
// flaky upstream degrades a run instead of aborting it.
type SyncService struct {
	platform     PlatformSource
	warehouse    WarehouseSource
	reconciler   *Reconciler
	cursorRepo   edition.SyncCursorRepository
	orderRepo    edition.OrderRepository
	lineItemRepo edition.LineItemRepository
	sequencer    *editionapp.Sequencer
	logger       *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	platform PlatformSource,
	warehouse WarehouseSource,
	reconciler *Reconciler,
	cursorRepo edition.SyncCursorRepository,
	orderRepo edition.OrderRepository,
	lineItemRepo edition.LineItemRepository,
	sequencer *editionapp.Sequencer,
	logger *zap.Logger,
) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		platform:     platform,
		warehouse:    warehouse,
		reconciler:   reconciler,
		cursorRepo:   cursorRepo,
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		sequencer:    sequencer,
		logger:       logger,
	}
}

// TriggerManualSync runs a full catalog sync: both upstreams are streamed
// from their stored cursors, every record reconciled, and every touched
// product resequenced. The cursor for a source only advances when its
// stream completed; a mid-stream failure keeps the records already merged
// and retries the remainder on the next run.
func (s *SyncService) TriggerManualSync(ctx context.Context) (*SyncResult, error) {
	started := time.Now()
	result := &SyncResult{}
	touched := make(map[string]struct{})

	s.syncSource(ctx, s.platform, result, touched)
	s.syncSource(ctx, s.warehouse, result, touched)

	s.resequenceTouched(ctx, touched, result)

	s.logger.Info("manual sync finished",
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("errored", result.Errored),
		zap.Int("products_resequenced", len(touched)),
		zap.Duration("took", time.Since(started)))
	return result, nil
}

// SyncSingleOrder refreshes one order: the platform record plus any
// warehouse shipments referencing it. A warehouse lookup failure degrades
// the result, only the platform fetch is fatal.
func (s *SyncService) SyncSingleOrder(ctx context.Context, orderID string) (*SyncResult, error) {
	result := &SyncResult{}
	touched := make(map[string]struct{})

	raw, err := s.platform.FetchOrder(ctx, orderID)
	if err != nil {
		result.recordError(err)
		return result, fmt.Errorf("sync: failed to fetch order %s: %w", orderID, err)
	}
	s.reconcileRecord(ctx, raw, result, touched)

	shipments, err := s.warehouse.FetchShipmentsForOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn("warehouse enrichment failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		result.recordError(err)
	} else {
		for i := range shipments {
			s.reconcileRecord(ctx, &shipments[i], result, touched)
		}
	}

	s.resequenceTouched(ctx, touched, result)
	return result, nil
}

// AssignEditionNumbers resequences a product's editions on demand. With
// forceSync the product's known orders are refreshed from the upstreams
// first, so numbering reflects their latest state.
func (s *SyncService) AssignEditionNumbers(ctx context.Context, productID string, forceSync bool) (*editionapp.ResequenceResult, error) {
	if forceSync {
		if err := s.refreshProductOrders(ctx, productID); err != nil {
			return nil, err
		}
	}
	return s.sequencer.Resequence(ctx, productID)
}

// refreshProductOrders re-syncs every platform order holding a line item of
// the product. Placeholder orders have no platform record to fetch and are
// left to the next full sync.
func (s *SyncService) refreshProductOrders(ctx context.Context, productID string) error {
	items, err := s.lineItemRepo.FindByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("sync: failed to load product items %s: %w", productID, err)
	}

	seen := make(map[string]struct{})
	for i := range items {
		orderID := items[i].OrderID
		if _, ok := seen[orderID]; ok {
			continue
		}
		seen[orderID] = struct{}{}

		if order, err := s.orderRepo.FindByID(ctx, orderID); err == nil && order.IsPlaceholder() {
			continue
		}

		if _, err := s.SyncSingleOrder(ctx, orderID); err != nil {
			s.logger.Warn("order refresh failed before assignment",
				zap.String("product_id", productID),
				zap.String("order_id", orderID),
				zap.Error(err))
		}
	}
	return nil
}

// syncSource streams one upstream from its stored cursor and reconciles
// every record. The cursor advances to the newest record timestamp seen,
// and only when the stream finished cleanly.
func (s *SyncService) syncSource(ctx context.Context, source upstream.OrderSource, result *SyncResult, touched map[string]struct{}) {
	name := source.Name()

	cursor, err := s.cursorRepo.Get(ctx, name)
	if err != nil {
		s.logger.Error("failed to load sync cursor", zap.String("source", name.String()), zap.Error(err))
		result.recordError(err)
		return
	}

	stream, err := source.FetchSince(ctx, cursor)
	if err != nil {
		s.logger.Error("failed to open upstream stream", zap.String("source", name.String()), zap.Error(err))
		result.recordError(err)
		return
	}

	next := cursor
	clean := true
	for stream.Next(ctx) {
		raw := stream.Order()
		if !s.reconcileRecord(ctx, raw, result, touched) {
			clean = false
		}
		if c := raw.UpdatedAt.UTC().Format(time.RFC3339); c > next {
			next = c
		}
	}
	if err := stream.Err(); err != nil {
		// Records merged so far stay; the unchanged cursor re-fetches the
		// remainder next run.
		s.logger.Error("upstream stream failed mid-run", zap.String("source", name.String()), zap.Error(err))
		result.recordError(err)
		return
	}

	// A record that failed to reconcile must be seen again, so the cursor
	// holds until a run merges the whole window.
	if clean && next != cursor {
		if err := s.cursorRepo.Set(ctx, name, next); err != nil {
			s.logger.Error("failed to persist sync cursor", zap.String("source", name.String()), zap.Error(err))
			result.recordError(err)
		}
	}
}

// reconcileRecord merges one record into the result counters, returning
// false when it could not be reconciled
func (s *SyncService) reconcileRecord(ctx context.Context, raw *upstream.RawOrder, result *SyncResult, touched map[string]struct{}) bool {
	outcome, err := s.reconciler.ReconcileOrder(ctx, raw)
	if err != nil {
		s.logger.Error("failed to reconcile record",
			zap.String("source", raw.Source.String()),
			zap.String("record_id", raw.ID),
			zap.Error(err))
		result.recordError(err)
		return false
	}

	if outcome.Ambiguous {
		result.Skipped++
	} else {
		result.Processed++
	}
	for _, productID := range outcome.TouchedProducts {
		touched[productID] = struct{}{}
	}
	return true
}

// resequenceTouched renumbers every product whose inputs changed during the
// run. A product whose lock is held is reported and left to its in-flight
// trigger.
func (s *SyncService) resequenceTouched(ctx context.Context, touched map[string]struct{}, result *SyncResult) {
	products := make([]string, 0, len(touched))
	for productID := range touched {
		products = append(products, productID)
	}
	sort.Strings(products)

	for _, productID := range products {
		if _, err := s.sequencer.Resequence(ctx, productID); err != nil {
			s.logger.Warn("resequence failed after sync",
				zap.String("product_id", productID),
				zap.Error(err))
			result.recordError(err)
		}
	}
}
