package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/infrastructure/persistence/models"
)

// GormEditionEventRepository implements the append-only EditionEventRepository
// using GORM. Events are only ever inserted; there is no update or delete path.
type GormEditionEventRepository struct {
	db *gorm.DB
}

// NewGormEditionEventRepository creates a new GormEditionEventRepository
func NewGormEditionEventRepository(db *gorm.DB) *GormEditionEventRepository {
	return &GormEditionEventRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormEditionEventRepository) WithTx(tx *gorm.DB) *GormEditionEventRepository {
	return &GormEditionEventRepository{db: tx}
}

// Append writes one event
func (r *GormEditionEventRepository) Append(ctx context.Context, event *edition.EditionEvent) error {
	model := models.EditionEventModelFromDomain(event)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByLineItem returns the full event history of a line item, oldest first
func (r *GormEditionEventRepository) FindByLineItem(ctx context.Context, lineItemID string) ([]edition.EditionEvent, error) {
	var eventModels []models.EditionEventModel
	if err := r.db.WithContext(ctx).
		Where("line_item_id = ?", lineItemID).
		Order("created_at asc, id asc").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(eventModels), nil
}

// FindByLineItemAndTypes returns the history filtered to the given event types, oldest first
func (r *GormEditionEventRepository) FindByLineItemAndTypes(ctx context.Context, lineItemID string, types ...edition.EventType) ([]edition.EditionEvent, error) {
	typeStrings := make([]string, len(types))
	for i, t := range types {
		typeStrings[i] = string(t)
	}

	var eventModels []models.EditionEventModel
	if err := r.db.WithContext(ctx).
		Where("line_item_id = ? AND event_type IN ?", lineItemID, typeStrings).
		Order("created_at asc, id asc").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(eventModels), nil
}

func toDomainEvents(eventModels []models.EditionEventModel) []edition.EditionEvent {
	events := make([]edition.EditionEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = *model.ToDomain()
	}
	return events
}

// Ensure GormEditionEventRepository implements EditionEventRepository
var _ edition.EditionEventRepository = (*GormEditionEventRepository)(nil)
