package sync

import (
	"context"

	"github.com/stretchr/testify/mock"

	editionapp "github.com/chonibe/coa-service/internal/application/edition"
	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/shared"
	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// MockOrderRepository is a mock implementation of edition.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *edition.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*edition.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*edition.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByName(ctx context.Context, name string) ([]edition.Order, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByEmailAndName(ctx context.Context, email, name string) ([]edition.Order, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLineItemRepository is a mock implementation of edition.LineItemRepository
type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) Save(ctx context.Context, item *edition.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockLineItemRepository) FindByID(ctx context.Context, id string) (*edition.LineItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*edition.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) FindByOrder(ctx context.Context, orderID string) ([]edition.LineItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) FindByProduct(ctx context.Context, productID string) ([]edition.LineItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) FindActiveByProduct(ctx context.Context, productID string) ([]edition.LineItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.LineItem), args.Error(1)
}

// MockShipmentRepository is a mock implementation of edition.ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Save(ctx context.Context, shipment *edition.WarehouseShipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindByOrder(ctx context.Context, orderID string) ([]edition.WarehouseShipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.WarehouseShipment), args.Error(1)
}

func (m *MockShipmentRepository) ReassignOrder(ctx context.Context, fromOrderID, toOrderID string) error {
	args := m.Called(ctx, fromOrderID, toOrderID)
	return args.Error(0)
}

// MockEventRepository is a mock implementation of edition.EditionEventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, event *edition.EditionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) FindByLineItem(ctx context.Context, lineItemID string) ([]edition.EditionEvent, error) {
	args := m.Called(ctx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.EditionEvent), args.Error(1)
}

func (m *MockEventRepository) FindByLineItemAndTypes(ctx context.Context, lineItemID string, types ...edition.EventType) ([]edition.EditionEvent, error) {
	args := m.Called(ctx, lineItemID, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]edition.EditionEvent), args.Error(1)
}

// MockCursorRepository is a mock implementation of edition.SyncCursorRepository
type MockCursorRepository struct {
	mock.Mock
}

func (m *MockCursorRepository) Get(ctx context.Context, source upstream.Source) (string, error) {
	args := m.Called(ctx, source)
	return args.String(0), args.Error(1)
}

func (m *MockCursorRepository) Set(ctx context.Context, source upstream.Source, cursor string) error {
	args := m.Called(ctx, source, cursor)
	return args.Error(0)
}

// MockPlatformSource is a mock implementation of PlatformSource
type MockPlatformSource struct {
	mock.Mock
}

func (m *MockPlatformSource) Name() upstream.Source {
	return upstream.SourceShopify
}

func (m *MockPlatformSource) FetchSince(ctx context.Context, cursor string) (*upstream.OrderStream, error) {
	args := m.Called(ctx, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.OrderStream), args.Error(1)
}

func (m *MockPlatformSource) FetchOrder(ctx context.Context, orderID string) (*upstream.RawOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.RawOrder), args.Error(1)
}

// MockWarehouseSource is a mock implementation of WarehouseSource
type MockWarehouseSource struct {
	mock.Mock
}

func (m *MockWarehouseSource) Name() upstream.Source {
	return upstream.SourceWarehouse
}

func (m *MockWarehouseSource) FetchSince(ctx context.Context, cursor string) (*upstream.OrderStream, error) {
	args := m.Called(ctx, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.OrderStream), args.Error(1)
}

func (m *MockWarehouseSource) FetchShipmentsForOrder(ctx context.Context, orderRef string) ([]upstream.RawOrder, error) {
	args := m.Called(ctx, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]upstream.RawOrder), args.Error(1)
}

// streamOf builds a finished-after-one-page stream over the given records
func streamOf(raws ...upstream.RawOrder) *upstream.OrderStream {
	pages := [][]upstream.RawOrder{raws}
	return upstream.NewOrderStream(func(ctx context.Context) ([]upstream.RawOrder, error) {
		if len(pages) == 0 {
			return nil, nil
		}
		page := pages[0]
		pages = pages[1:]
		return page, nil
	})
}

// brokenStreamAfter yields the given records, then fails with err
func brokenStreamAfter(err error, raws ...upstream.RawOrder) *upstream.OrderStream {
	delivered := false
	return upstream.NewOrderStream(func(ctx context.Context) ([]upstream.RawOrder, error) {
		if delivered {
			return nil, err
		}
		delivered = true
		if len(raws) == 0 {
			return nil, err
		}
		return raws, nil
	})
}

// grantLocker always grants the per-product lock
type grantLocker struct{}

func (grantLocker) Acquire(ctx context.Context, productID string) (func(), error) {
	return func() {}, nil
}

// heldLocker simulates a product lock held by a concurrent trigger
type heldLocker struct{}

func (heldLocker) Acquire(ctx context.Context, productID string) (func(), error) {
	return nil, shared.ErrLockHeld
}

// fakeRepos hands the transactional unit of work the same mock repositories
// the rest of the test uses
type fakeRepos struct {
	orders    edition.OrderRepository
	items     edition.LineItemRepository
	events    edition.EditionEventRepository
	shipments edition.ShipmentRepository
}

func (r fakeRepos) OrderRepo() edition.OrderRepository        { return r.orders }
func (r fakeRepos) LineItemRepo() edition.LineItemRepository  { return r.items }
func (r fakeRepos) EventRepo() edition.EditionEventRepository { return r.events }
func (r fakeRepos) ShipmentRepo() edition.ShipmentRepository  { return r.shipments }

// fakeScope runs the unit of work against the given repositories without a
// real transaction
type fakeScope struct {
	repos editionapp.TransactionalRepositories
}

func (s fakeScope) Execute(ctx context.Context, fn func(repos editionapp.TransactionalRepositories) error) error {
	return fn(s.repos)
}

var (
	_ edition.OrderRepository              = (*MockOrderRepository)(nil)
	_ edition.LineItemRepository           = (*MockLineItemRepository)(nil)
	_ edition.ShipmentRepository           = (*MockShipmentRepository)(nil)
	_ edition.EditionEventRepository       = (*MockEventRepository)(nil)
	_ edition.SyncCursorRepository         = (*MockCursorRepository)(nil)
	_ PlatformSource                       = (*MockPlatformSource)(nil)
	_ WarehouseSource                      = (*MockWarehouseSource)(nil)
	_ editionapp.TransactionScope          = (fakeScope{})
	_ editionapp.TransactionalRepositories = (fakeRepos{})
)
