package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/infrastructure/persistence/models"
)

// GormLineItemRepository implements LineItemRepository using GORM
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormLineItemRepository) WithTx(tx *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: tx}
}

// Save creates or updates a line item (upsert by ID)
func (r *GormLineItemRepository) Save(ctx context.Context, item *edition.LineItem) error {
	model := models.LineItemModelFromDomain(item)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID finds a line item by id
func (r *GormLineItemRepository) FindByID(ctx context.Context, id string) (*edition.LineItem, error) {
	var model models.LineItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, edition.ErrLineItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder returns all line items of an order
func (r *GormLineItemRepository) FindByOrder(ctx context.Context, orderID string) ([]edition.LineItem, error) {
	var itemModels []models.LineItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc, id asc").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainLineItems(itemModels), nil
}

// FindByProduct returns all line items of a product in sequencing order.
// The ordering (created_at asc, ties by id) must stay stable; it is what
// makes repeated resequencing converge.
func (r *GormLineItemRepository) FindByProduct(ctx context.Context, productID string) ([]edition.LineItem, error) {
	var itemModels []models.LineItemModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at asc, id asc").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainLineItems(itemModels), nil
}

// FindActiveByProduct returns the active line items of a product in sequencing order
func (r *GormLineItemRepository) FindActiveByProduct(ctx context.Context, productID string) ([]edition.LineItem, error) {
	var itemModels []models.LineItemModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, string(edition.StatusActive)).
		Order("created_at asc, id asc").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainLineItems(itemModels), nil
}

func toDomainLineItems(itemModels []models.LineItemModel) []edition.LineItem {
	items := make([]edition.LineItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = *model.ToDomain()
	}
	return items
}

// Ensure GormLineItemRepository implements LineItemRepository
var _ edition.LineItemRepository = (*GormLineItemRepository)(nil)
