package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx}
}

// Save creates or updates an order (upsert by ID)
func (r *GormOrderRepository) Save(ctx context.Context, order *edition.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID finds an order by its canonical id
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*edition.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, edition.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds all orders carrying the given display number
func (r *GormOrderRepository) FindByName(ctx context.Context, name string) ([]edition.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at asc").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]edition.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// FindByEmailAndName finds orders by the customer-email + display-number composite key
func (r *GormOrderRepository) FindByEmailAndName(ctx context.Context, email, name string) ([]edition.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("email = ? AND name = ?", email, name).
		Order("created_at asc").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]edition.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Delete removes an order row
func (r *GormOrderRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return edition.ErrOrderNotFound
	}
	return nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ edition.OrderRepository = (*GormOrderRepository)(nil)
