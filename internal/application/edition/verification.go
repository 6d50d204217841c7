package edition

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/shared"
)

// VerificationService serves the public certificate surface: verification,
// edition rosters, audit history, authentication, and ownership transfer.
// It reads the canonical rows; it never touches edition numbers itself.
type VerificationService struct {
	orderRepo    edition.OrderRepository
	lineItemRepo edition.LineItemRepository
	eventRepo    edition.EditionEventRepository
	shipmentRepo edition.ShipmentRepository
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	orderRepo edition.OrderRepository,
	lineItemRepo edition.LineItemRepository,
	eventRepo edition.EditionEventRepository,
	shipmentRepo edition.ShipmentRepository,
) *VerificationService {
	return &VerificationService{
		orderRepo:    orderRepo,
		lineItemRepo: lineItemRepo,
		eventRepo:    eventRepo,
		shipmentRepo: shipmentRepo,
	}
}

// VerifyEdition returns the certificate projection of a numbered line item.
// An unnumbered item has no certificate to show.
func (s *VerificationService) VerifyEdition(ctx context.Context, lineItemID string) (*CertificateView, error) {
	item, err := s.lineItemRepo.FindByID(ctx, lineItemID)
	if err != nil {
		return nil, err
	}
	if !item.HasNumber() {
		return nil, edition.ErrNoEditionNumber
	}

	view := &CertificateView{
		LineItemID:    item.ID,
		ProductID:     item.ProductID,
		Title:         item.Title,
		Vendor:        item.Vendor,
		EditionNumber: *item.EditionNumber,
		EditionTotal:  *item.EditionTotal,
		Status:        item.Status,
		PurchasedAt:   item.CreatedAt,
	}

	order, err := s.orderRepo.FindByID(ctx, item.OrderID)
	if err == nil {
		view.OrderName = order.Name
		view.OwnerEmail = order.Email
	}

	events, err := s.eventRepo.FindByLineItemAndTypes(ctx, item.ID,
		edition.EventAuthenticated, edition.EventOwnershipTransfer)
	if err != nil {
		return nil, err
	}
	applyOwnership(view, events)

	shipments, err := s.shipmentRepo.FindByOrder(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	for i := range shipments {
		if shipments[i].TrackingURL != "" {
			view.TrackingURL = shipments[i].TrackingURL
			view.ShippedAt = shipments[i].ShippedAt
			break
		}
	}

	return view, nil
}

// applyOwnership replays the ownership trail onto the view. A transfer
// moves the certificate to its destination email and voids any earlier
// authentication; an authentication marks the current owner verified.
func applyOwnership(view *CertificateView, events []edition.EditionEvent) {
	for i := range events {
		var payload edition.OwnershipPayload
		if err := json.Unmarshal(events[i].Payload, &payload); err != nil {
			continue
		}
		switch events[i].EventType {
		case edition.EventAuthenticated:
			view.Authenticated = true
			if payload.OwnerName != "" {
				view.OwnerName = payload.OwnerName
			}
			if payload.OwnerEmail != "" {
				view.OwnerEmail = payload.OwnerEmail
			}
		case edition.EventOwnershipTransfer:
			view.Authenticated = false
			view.OwnerName = ""
			if payload.ToEmail != "" {
				view.OwnerEmail = payload.ToEmail
			}
		}
	}
}

// ListProductEditions returns the numbered roster of a product in edition order
func (s *VerificationService) ListProductEditions(ctx context.Context, productID string) ([]EditionListEntry, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", shared.ErrInvalidInput)
	}

	items, err := s.lineItemRepo.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	entries := make([]EditionListEntry, 0, len(items))
	for i := range items {
		if items[i].EditionNumber == nil {
			continue
		}
		entries = append(entries, EditionListEntry{
			LineItemID:    items[i].ID,
			OrderID:       items[i].OrderID,
			EditionNumber: *items[i].EditionNumber,
			EditionTotal:  derefOrZero(items[i].EditionTotal),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EditionNumber < entries[j].EditionNumber
	})
	return entries, nil
}

// CheckDuplicates scans a product for edition numbers held by more than one
// active item. Duplicates are reported, never auto-repaired; repair is a
// deliberate forced resequence.
func (s *VerificationService) CheckDuplicates(ctx context.Context, productID string) (*DuplicateReport, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", shared.ErrInvalidInput)
	}

	items, err := s.lineItemRepo.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	holders := make(map[int][]string)
	for i := range items {
		if items[i].EditionNumber == nil {
			continue
		}
		n := *items[i].EditionNumber
		holders[n] = append(holders[n], items[i].ID)
	}

	report := &DuplicateReport{ProductID: productID}
	for n, ids := range holders {
		if len(ids) > 1 {
			sort.Strings(ids)
			report.Duplicates = append(report.Duplicates, DuplicateEntry{
				EditionNumber: n,
				LineItemIDs:   ids,
			})
		}
	}
	sort.Slice(report.Duplicates, func(i, j int) bool {
		return report.Duplicates[i].EditionNumber < report.Duplicates[j].EditionNumber
	})

	return report, nil
}

// GetEditionHistory returns the numbering audit trail of a line item
func (s *VerificationService) GetEditionHistory(ctx context.Context, lineItemID string) ([]HistoryEntry, error) {
	if _, err := s.lineItemRepo.FindByID(ctx, lineItemID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.FindByLineItemAndTypes(ctx, lineItemID,
		edition.EventAssigned, edition.EventResequenced, edition.EventRevoked)
	if err != nil {
		return nil, err
	}
	return decodeHistory(events, func() interface{} { return &edition.NumberChangePayload{} }), nil
}

// GetOwnershipHistory returns the authentication and transfer trail of a line item
func (s *VerificationService) GetOwnershipHistory(ctx context.Context, lineItemID string) ([]HistoryEntry, error) {
	if _, err := s.lineItemRepo.FindByID(ctx, lineItemID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.FindByLineItemAndTypes(ctx, lineItemID,
		edition.EventAuthenticated, edition.EventOwnershipTransfer)
	if err != nil {
		return nil, err
	}
	return decodeHistory(events, func() interface{} { return &edition.OwnershipPayload{} }), nil
}

// Authenticate records a certificate authentication by its current owner
func (s *VerificationService) Authenticate(ctx context.Context, lineItemID, ownerName, ownerEmail string) error {
	item, err := s.lineItemRepo.FindByID(ctx, lineItemID)
	if err != nil {
		return err
	}
	if !item.HasNumber() {
		return edition.ErrNoEditionNumber
	}

	event, err := edition.NewOwnershipEvent(item.ID, edition.EventAuthenticated, edition.OwnershipPayload{
		OwnerName:  ownerName,
		OwnerEmail: ownerEmail,
	})
	if err != nil {
		return err
	}
	return s.eventRepo.Append(ctx, event)
}

// TransferOwnership records a change of certificate ownership
func (s *VerificationService) TransferOwnership(ctx context.Context, lineItemID, fromEmail, toEmail string) error {
	if toEmail == "" {
		return fmt.Errorf("%w: destination email is required", shared.ErrInvalidInput)
	}

	item, err := s.lineItemRepo.FindByID(ctx, lineItemID)
	if err != nil {
		return err
	}
	if !item.HasNumber() {
		return edition.ErrNoEditionNumber
	}

	event, err := edition.NewOwnershipEvent(item.ID, edition.EventOwnershipTransfer, edition.OwnershipPayload{
		FromEmail: fromEmail,
		ToEmail:   toEmail,
	})
	if err != nil {
		return err
	}
	return s.eventRepo.Append(ctx, event)
}

// decodeHistory maps stored events to typed history entries. Payloads that
// fail to decode are surfaced raw rather than dropped.
func decodeHistory(events []edition.EditionEvent, newPayload func() interface{}) []HistoryEntry {
	entries := make([]HistoryEntry, len(events))
	for i := range events {
		entry := HistoryEntry{
			EventType: events[i].EventType,
			CreatedAt: events[i].CreatedAt,
		}
		payload := newPayload()
		if err := json.Unmarshal(events[i].Payload, payload); err == nil {
			entry.Payload = payload
		} else {
			entry.Payload = json.RawMessage(events[i].Payload)
		}
		entries[i] = entry
	}
	return entries
}
