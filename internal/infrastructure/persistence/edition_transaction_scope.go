package persistence

import (
	"context"

	"gorm.io/gorm"

	appedition "github.com/chonibe/coa-service/internal/application/edition"
	"github.com/chonibe/coa-service/internal/domain/edition"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appedition.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormTransactionalRepositories) OrderRepo() edition.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// LineItemRepo returns the line item repository scoped to the current transaction
func (r *gormTransactionalRepositories) LineItemRepo() edition.LineItemRepository {
	return NewGormLineItemRepository(r.tx)
}

// EventRepo returns the audit log repository scoped to the current transaction
func (r *gormTransactionalRepositories) EventRepo() edition.EditionEventRepository {
	return NewGormEditionEventRepository(r.tx)
}

// ShipmentRepo returns the shipment repository scoped to the current transaction
func (r *gormTransactionalRepositories) ShipmentRepo() edition.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appedition.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appedition.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
