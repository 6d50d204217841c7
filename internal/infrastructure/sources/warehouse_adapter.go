package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// WarehouseAdapter implements the upstream.OrderSource port for the
// fulfillment/warehouse API. Shipments are normalized into RawOrders
// carrying a Shipment block; the reconciler decides whether each one
// enriches an existing platform order or stands alone.
type WarehouseAdapter struct {
	config     *WarehouseConfig
	httpClient *http.Client
}

// NewWarehouseAdapter creates a new warehouse adapter with the given configuration
func NewWarehouseAdapter(config *WarehouseConfig) (*WarehouseAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &WarehouseAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Name returns the source this adapter fetches from
func (a *WarehouseAdapter) Name() upstream.Source {
	return upstream.SourceWarehouse
}

// FetchSince returns a lazy stream over shipments updated after the cursor
// (RFC3339 timestamp; empty fetches everything). The warehouse API paginates
// by page number.
func (a *WarehouseAdapter) FetchSince(ctx context.Context, cursor string) (*upstream.OrderStream, error) {
	page := 1
	done := false

	return upstream.NewOrderStream(func(ctx context.Context) ([]upstream.RawOrder, error) {
		if done {
			return nil, nil
		}

		reqURL := fmt.Sprintf("%s/api/v1/shipments?page=%d&page_size=%d", a.config.APIBaseURL, page, a.config.PageSize)
		if cursor != "" {
			reqURL += "&updated_after=" + url.QueryEscape(cursor)
		}

		body, err := a.doRequest(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		orders, count, err := a.parseShipmentsPage(body)
		if err != nil {
			return nil, err
		}

		if count < a.config.PageSize {
			done = true
		}
		page++

		return orders, nil
	}), nil
}

// FetchShipmentsForOrder retrieves the shipments the warehouse holds for one
// platform order reference
func (a *WarehouseAdapter) FetchShipmentsForOrder(ctx context.Context, orderRef string) ([]upstream.RawOrder, error) {
	reqURL := fmt.Sprintf("%s/api/v1/shipments?order_ref=%s", a.config.APIBaseURL, url.QueryEscape(orderRef))
	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	orders, _, err := a.parseShipmentsPage(body)
	return orders, err
}

// parseShipmentsPage decodes one shipments page into normalized RawOrders
func (a *WarehouseAdapter) parseShipmentsPage(body []byte) ([]upstream.RawOrder, int, error) {
	var envelope struct {
		Shipments []json.RawMessage `json:"shipments"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", upstream.ErrInvalidResponse, err)
	}

	orders := make([]upstream.RawOrder, 0, len(envelope.Shipments))
	for _, payload := range envelope.Shipments {
		var record WarehouseShipmentRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", upstream.ErrInvalidResponse, err)
		}
		orders = append(orders, convertWarehouseShipment(&record, payload))
	}
	return orders, len(envelope.Shipments), nil
}

// doRequest performs a GET against the warehouse API with transient-failure
// retries; auth failures are permanent
func (a *WarehouseAdapter) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return permanent(fmt.Errorf("warehouse: failed to create request: %w", err))
		}
		req.Header.Set("X-Api-Key", a.config.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", upstream.ErrUpstreamUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("%w: %v", upstream.ErrUpstreamUnavailable, err)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return permanent(fmt.Errorf("%w: HTTP %d", upstream.ErrUpstreamAuth, resp.StatusCode))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("%w: HTTP %d", upstream.ErrUpstreamUnavailable, resp.StatusCode)
		case resp.StatusCode >= 400:
			return permanent(fmt.Errorf("%w: HTTP %d", upstream.ErrInvalidResponse, resp.StatusCode))
		}

		body = data
		return nil
	}

	if err := retryTransient(ctx, attempt, a.config.MaxRetries); err != nil {
		return nil, err
	}
	return body, nil
}

// convertWarehouseShipment normalizes a warehouse shipment into a RawOrder.
// The order-level fields the warehouse does not know stay zero; the platform
// record is authoritative for them when the two are merged.
func convertWarehouseShipment(record *WarehouseShipmentRecord, payload json.RawMessage) upstream.RawOrder {
	shipment := &upstream.RawShipment{
		ShipmentID:      record.ShipmentID,
		OrderRef:        record.OrderRef,
		OrderName:       record.OrderNumber,
		Email:           record.Email,
		ShippingName:    record.RecipientName,
		ShippingAddress: record.AddressLine,
		ShippingCity:    record.City,
		ShippingCountry: record.Country,
		ShippingZip:     record.Zip,
		TrackingNumber:  record.TrackingNumber,
		TrackingURL:     record.TrackingURL,
		StatusCode:      record.StatusCode,
	}
	if record.ShippedAt != "" {
		t := parseVendorTime(record.ShippedAt)
		shipment.ShippedAt = &t
	}

	raw := upstream.RawOrder{
		Source:    upstream.SourceWarehouse,
		ID:        record.ShipmentID,
		Name:      record.OrderNumber,
		Email:     record.Email,
		CreatedAt: parseVendorTime(record.CreatedAt),
		UpdatedAt: parseVendorTime(record.UpdatedAt),
		Shipment:  shipment,
		Raw:       payload,
	}

	for _, item := range record.Items {
		raw.LineItems = append(raw.LineItems, upstream.RawLineItem{
			ID:        item.LineRef,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return raw
}

// Ensure WarehouseAdapter implements the OrderSource port
var _ upstream.OrderSource = (*WarehouseAdapter)(nil)
