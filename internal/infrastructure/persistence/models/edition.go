package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chonibe/coa-service/internal/domain/edition"
	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// OrderModel is the persistence model for the canonical Order entity
type OrderModel struct {
	ID                string          `gorm:"type:varchar(64);primaryKey"`
	Name              string          `gorm:"type:varchar(64);index"`
	Email             string          `gorm:"type:varchar(200);index"`
	FinancialStatus   string          `gorm:"type:varchar(20);not null;default:'unknown'"`
	FulfillmentStatus string          `gorm:"type:varchar(50)"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency          string          `gorm:"type:varchar(10)"`
	CreatedAt         time.Time       `gorm:"not null"`
	ProcessedAt       *time.Time
	CancelledAt       *time.Time
	Archived          bool   `gorm:"not null;default:false"`
	Source            string `gorm:"type:varchar(20);not null"`
	RawPayload        []byte `gorm:"type:jsonb"`
	SyncedAt          time.Time
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity
func (m *OrderModel) ToDomain() *edition.Order {
	return &edition.Order{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		FinancialStatus:   edition.FinancialStatus(m.FinancialStatus),
		FulfillmentStatus: m.FulfillmentStatus,
		TotalPrice:        m.TotalPrice,
		Currency:          m.Currency,
		CreatedAt:         m.CreatedAt,
		ProcessedAt:       m.ProcessedAt,
		CancelledAt:       m.CancelledAt,
		Archived:          m.Archived,
		Source:            upstream.Source(m.Source),
		RawPayload:        m.RawPayload,
		SyncedAt:          m.SyncedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order entity
func (m *OrderModel) FromDomain(o *edition.Order) {
	m.ID = o.ID
	m.Name = o.Name
	m.Email = o.Email
	m.FinancialStatus = string(o.FinancialStatus)
	m.FulfillmentStatus = o.FulfillmentStatus
	m.TotalPrice = o.TotalPrice
	m.Currency = o.Currency
	m.CreatedAt = o.CreatedAt
	m.ProcessedAt = o.ProcessedAt
	m.CancelledAt = o.CancelledAt
	m.Archived = o.Archived
	m.Source = o.Source.String()
	m.RawPayload = o.RawPayload
	m.SyncedAt = o.SyncedAt
	m.UpdatedAt = o.UpdatedAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *edition.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// LineItemModel is the persistence model for the LineItem entity.
// The partial unique index guaranteeing one edition number per product is
// defined in the SQL migrations; sqlite test databases run without it.
type LineItemModel struct {
	ID                string          `gorm:"type:varchar(64);primaryKey"`
	OrderID           string          `gorm:"type:varchar(64);not null;index"`
	ProductID         string          `gorm:"type:varchar(64);not null;index:idx_line_items_product_status,priority:1"`
	VariantID         string          `gorm:"type:varchar(64)"`
	Title             string          `gorm:"type:varchar(500)"`
	Vendor            string          `gorm:"type:varchar(200)"`
	Quantity          int             `gorm:"not null;default:1"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FulfillmentStatus string          `gorm:"type:varchar(50)"`
	Restocked         bool            `gorm:"not null;default:false"`
	Revoked           bool            `gorm:"not null;default:false"`
	Status            string          `gorm:"type:varchar(10);not null;index:idx_line_items_product_status,priority:2"`
	EditionNumber     *int
	EditionTotal      *int
	CreatedAt         time.Time `gorm:"not null;index"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem entity
func (m *LineItemModel) ToDomain() *edition.LineItem {
	return &edition.LineItem{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		VariantID:         m.VariantID,
		Title:             m.Title,
		Vendor:            m.Vendor,
		Quantity:          m.Quantity,
		Price:             m.Price,
		FulfillmentStatus: m.FulfillmentStatus,
		Restocked:         m.Restocked,
		Revoked:           m.Revoked,
		Status:            edition.Status(m.Status),
		EditionNumber:     m.EditionNumber,
		EditionTotal:      m.EditionTotal,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain LineItem entity
func (m *LineItemModel) FromDomain(li *edition.LineItem) {
	m.ID = li.ID
	m.OrderID = li.OrderID
	m.ProductID = li.ProductID
	m.VariantID = li.VariantID
	m.Title = li.Title
	m.Vendor = li.Vendor
	m.Quantity = li.Quantity
	m.Price = li.Price
	m.FulfillmentStatus = li.FulfillmentStatus
	m.Restocked = li.Restocked
	m.Revoked = li.Revoked
	m.Status = string(li.Status)
	m.EditionNumber = li.EditionNumber
	m.EditionTotal = li.EditionTotal
	m.CreatedAt = li.CreatedAt
	m.UpdatedAt = li.UpdatedAt
}

// LineItemModelFromDomain creates a new persistence model from a domain LineItem
func LineItemModelFromDomain(li *edition.LineItem) *LineItemModel {
	m := &LineItemModel{}
	m.FromDomain(li)
	return m
}

// EditionEventModel is the persistence model for the append-only audit log
type EditionEventModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	LineItemID string    `gorm:"type:varchar(64);not null;index"`
	EventType  string    `gorm:"type:varchar(30);not null"`
	Payload    []byte    `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (EditionEventModel) TableName() string {
	return "edition_events"
}

// ToDomain converts the persistence model to a domain EditionEvent
func (m *EditionEventModel) ToDomain() *edition.EditionEvent {
	return &edition.EditionEvent{
		ID:         m.ID,
		LineItemID: m.LineItemID,
		EventType:  edition.EventType(m.EventType),
		Payload:    m.Payload,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain EditionEvent
func (m *EditionEventModel) FromDomain(e *edition.EditionEvent) {
	m.ID = e.ID
	m.LineItemID = e.LineItemID
	m.EventType = string(e.EventType)
	m.Payload = e.Payload
	m.CreatedAt = e.CreatedAt
}

// EditionEventModelFromDomain creates a new persistence model from a domain EditionEvent
func EditionEventModelFromDomain(e *edition.EditionEvent) *EditionEventModel {
	m := &EditionEventModel{}
	m.FromDomain(e)
	return m
}

// WarehouseShipmentModel is the persistence model for the warehouse
// enrichment side table
type WarehouseShipmentModel struct {
	ShipmentID      string `gorm:"type:varchar(64);primaryKey"`
	OrderID         string `gorm:"type:varchar(64);not null;index"`
	ShippingName    string `gorm:"type:varchar(200)"`
	ShippingAddress string `gorm:"type:text"`
	ShippingCity    string `gorm:"type:varchar(100)"`
	ShippingCountry string `gorm:"type:varchar(100)"`
	ShippingZip     string `gorm:"type:varchar(20)"`
	TrackingNumber  string `gorm:"type:varchar(100)"`
	TrackingURL     string `gorm:"type:varchar(500)"`
	StatusCode      string `gorm:"type:varchar(50)"`
	ShippedAt       *time.Time
	SyncedAt        time.Time
}

// TableName returns the table name for GORM
func (WarehouseShipmentModel) TableName() string {
	return "warehouse_shipments"
}

// ToDomain converts the persistence model to a domain WarehouseShipment
func (m *WarehouseShipmentModel) ToDomain() *edition.WarehouseShipment {
	return &edition.WarehouseShipment{
		ShipmentID:      m.ShipmentID,
		OrderID:         m.OrderID,
		ShippingName:    m.ShippingName,
		ShippingAddress: m.ShippingAddress,
		ShippingCity:    m.ShippingCity,
		ShippingCountry: m.ShippingCountry,
		ShippingZip:     m.ShippingZip,
		TrackingNumber:  m.TrackingNumber,
		TrackingURL:     m.TrackingURL,
		StatusCode:      m.StatusCode,
		ShippedAt:       m.ShippedAt,
		SyncedAt:        m.SyncedAt,
	}
}

// FromDomain populates the persistence model from a domain WarehouseShipment
func (m *WarehouseShipmentModel) FromDomain(s *edition.WarehouseShipment) {
	m.ShipmentID = s.ShipmentID
	m.OrderID = s.OrderID
	m.ShippingName = s.ShippingName
	m.ShippingAddress = s.ShippingAddress
	m.ShippingCity = s.ShippingCity
	m.ShippingCountry = s.ShippingCountry
	m.ShippingZip = s.ShippingZip
	m.TrackingNumber = s.TrackingNumber
	m.TrackingURL = s.TrackingURL
	m.StatusCode = s.StatusCode
	m.ShippedAt = s.ShippedAt
	m.SyncedAt = s.SyncedAt
}

// WarehouseShipmentModelFromDomain creates a new persistence model from a
// domain WarehouseShipment
func WarehouseShipmentModelFromDomain(s *edition.WarehouseShipment) *WarehouseShipmentModel {
	m := &WarehouseShipmentModel{}
	m.FromDomain(s)
	return m
}

// SyncCursorModel stores the per-source fetch cursor
type SyncCursorModel struct {
	Source    string    `gorm:"type:varchar(20);primaryKey"`
	Cursor    string    `gorm:"type:varchar(100);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncCursorModel) TableName() string {
	return "sync_cursors"
}
