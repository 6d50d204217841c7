package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/infrastructure/persistence/models"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: tx}
}

// Save creates or updates a shipment record (upsert by ShipmentID)
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *edition.WarehouseShipment) error {
	model := models.WarehouseShipmentModelFromDomain(shipment)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shipment_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByOrder returns the shipments matched to an order
func (r *GormShipmentRepository) FindByOrder(ctx context.Context, orderID string) ([]edition.WarehouseShipment, error) {
	var shipmentModels []models.WarehouseShipmentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("shipment_id asc").
		Find(&shipmentModels).Error; err != nil {
		return nil, err
	}

	shipments := make([]edition.WarehouseShipment, len(shipmentModels))
	for i, model := range shipmentModels {
		shipments[i] = *model.ToDomain()
	}
	return shipments, nil
}

// ReassignOrder repoints shipments from one order id to another
func (r *GormShipmentRepository) ReassignOrder(ctx context.Context, fromOrderID, toOrderID string) error {
	return r.db.WithContext(ctx).
		Model(&models.WarehouseShipmentModel{}).
		Where("order_id = ?", fromOrderID).
		Update("order_id", toOrderID).Error
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ edition.ShipmentRepository = (*GormShipmentRepository)(nil)
