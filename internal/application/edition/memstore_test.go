package edition

import (
	"context"
	"sort"
	"sync"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/shared"
)

func intPtr(n int) *int { return &n }

// memStore is a stateful in-memory backing store shared by the fake
// repositories. It lets the service tests exercise real multi-step flows
// without a database.
type memStore struct {
	mu        sync.Mutex
	orders    map[string]edition.Order
	items     map[string]edition.LineItem
	events    []edition.EditionEvent
	shipments map[string]edition.WarehouseShipment
}

func newMemStore() *memStore {
	return &memStore{
		orders:    make(map[string]edition.Order),
		items:     make(map[string]edition.LineItem),
		shipments: make(map[string]edition.WarehouseShipment),
	}
}

func (s *memStore) putItem(item edition.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

func (s *memStore) item(id string) edition.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

func (s *memStore) eventsFor(lineItemID string) []edition.EditionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []edition.EditionEvent
	for _, e := range s.events {
		if e.LineItemID == lineItemID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// ---------------------------------------------------------------------------
// Fake repositories
// ---------------------------------------------------------------------------

type memOrderRepo struct{ store *memStore }

func (r *memOrderRepo) Save(_ context.Context, order *edition.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[order.ID] = *order
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id string) (*edition.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order, ok := r.store.orders[id]
	if !ok {
		return nil, edition.ErrOrderNotFound
	}
	return &order, nil
}

func (r *memOrderRepo) FindByName(_ context.Context, name string) ([]edition.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []edition.Order
	for _, o := range r.store.orders {
		if o.Name == name {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindByEmailAndName(_ context.Context, email, name string) ([]edition.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []edition.Order
	for _, o := range r.store.orders {
		if o.Email == email && o.Name == name {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orders[id]; !ok {
		return edition.ErrOrderNotFound
	}
	delete(r.store.orders, id)
	return nil
}

type memLineItemRepo struct{ store *memStore }

func (r *memLineItemRepo) Save(_ context.Context, item *edition.LineItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.items[item.ID] = *item
	return nil
}

func (r *memLineItemRepo) FindByID(_ context.Context, id string) (*edition.LineItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item, ok := r.store.items[id]
	if !ok {
		return nil, edition.ErrLineItemNotFound
	}
	return &item, nil
}

func (r *memLineItemRepo) FindByOrder(_ context.Context, orderID string) ([]edition.LineItem, error) {
	return r.find(func(li *edition.LineItem) bool { return li.OrderID == orderID }), nil
}

func (r *memLineItemRepo) FindByProduct(_ context.Context, productID string) ([]edition.LineItem, error) {
	return r.find(func(li *edition.LineItem) bool { return li.ProductID == productID }), nil
}

func (r *memLineItemRepo) FindActiveByProduct(_ context.Context, productID string) ([]edition.LineItem, error) {
	return r.find(func(li *edition.LineItem) bool {
		return li.ProductID == productID && li.Status == edition.StatusActive
	}), nil
}

// find returns matching items in sequencing order (created_at, ties by id)
func (r *memLineItemRepo) find(match func(*edition.LineItem) bool) []edition.LineItem {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []edition.LineItem
	for _, li := range r.store.items {
		li := li
		if match(&li) {
			out = append(out, li)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type memEventRepo struct{ store *memStore }

func (r *memEventRepo) Append(_ context.Context, event *edition.EditionEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, *event)
	return nil
}

func (r *memEventRepo) FindByLineItem(_ context.Context, lineItemID string) ([]edition.EditionEvent, error) {
	return r.store.eventsFor(lineItemID), nil
}

func (r *memEventRepo) FindByLineItemAndTypes(_ context.Context, lineItemID string, types ...edition.EventType) ([]edition.EditionEvent, error) {
	wanted := make(map[edition.EventType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	var out []edition.EditionEvent
	for _, e := range r.store.eventsFor(lineItemID) {
		if wanted[e.EventType] {
			out = append(out, e)
		}
	}
	return out, nil
}

type memShipmentRepo struct{ store *memStore }

func (r *memShipmentRepo) Save(_ context.Context, shipment *edition.WarehouseShipment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.shipments[shipment.ShipmentID] = *shipment
	return nil
}

func (r *memShipmentRepo) FindByOrder(_ context.Context, orderID string) ([]edition.WarehouseShipment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []edition.WarehouseShipment
	for _, s := range r.store.shipments {
		if s.OrderID == orderID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShipmentID < out[j].ShipmentID })
	return out, nil
}

func (r *memShipmentRepo) ReassignOrder(_ context.Context, fromOrderID, toOrderID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, s := range r.store.shipments {
		if s.OrderID == fromOrderID {
			s.OrderID = toOrderID
			r.store.shipments[id] = s
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Fake transaction scope and lockers
// ---------------------------------------------------------------------------

type memRepos struct{ store *memStore }

func (r *memRepos) OrderRepo() edition.OrderRepository           { return &memOrderRepo{r.store} }
func (r *memRepos) LineItemRepo() edition.LineItemRepository     { return &memLineItemRepo{r.store} }
func (r *memRepos) EventRepo() edition.EditionEventRepository    { return &memEventRepo{r.store} }
func (r *memRepos) ShipmentRepo() edition.ShipmentRepository     { return &memShipmentRepo{r.store} }

type memTxScope struct{ store *memStore }

func (s *memTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(&memRepos{s.store})
}

// nopLocker always grants the lock
type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// heldLocker always reports the lock as taken
type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string) (func(), error) {
	return nil, shared.ErrLockHeld
}

var (
	_ edition.OrderRepository        = (*memOrderRepo)(nil)
	_ edition.LineItemRepository     = (*memLineItemRepo)(nil)
	_ edition.EditionEventRepository = (*memEventRepo)(nil)
	_ edition.ShipmentRepository     = (*memShipmentRepo)(nil)
	_ TransactionalRepositories      = (*memRepos)(nil)
	_ TransactionScope               = (*memTxScope)(nil)
	_ shared.ProductLocker           = nopLocker{}
	_ shared.ProductLocker           = heldLocker{}
)
