package edition

import (
	"context"

	"github.com/chonibe/coa-service/internal/domain/edition"
)

// TransactionalRepositories provides access to the repositories participating
// in one atomic numbering write
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() edition.OrderRepository

	// LineItemRepo returns the line item repository scoped to the current transaction
	LineItemRepo() edition.LineItemRepository

	// EventRepo returns the audit log repository scoped to the current transaction
	EventRepo() edition.EditionEventRepository

	// ShipmentRepo returns the shipment repository scoped to the current transaction
	ShipmentRepo() edition.ShipmentRepository
}

// TransactionScope executes repository operations atomically. A resequence
// writes its row updates and audit events in one transaction so observers
// never see a half-applied numbering.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
