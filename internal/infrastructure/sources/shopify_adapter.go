package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// linkNextRe extracts the page_info token from Shopify's Link header
var linkNextRe = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

// ShopifyAdapter implements the upstream.OrderSource port for the Shopify
// Admin API. Orders, embedded line items and refunds are normalized into
// RawOrder; the vendor payload is retained opaquely.
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
}

// NewShopifyAdapter creates a new Shopify adapter with the given configuration
func NewShopifyAdapter(config *ShopifyConfig) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Name returns the source this adapter fetches from
func (a *ShopifyAdapter) Name() upstream.Source {
	return upstream.SourceShopify
}

// FetchSince returns a lazy stream over all orders updated after the cursor
// (RFC3339 timestamp; empty fetches everything). Pagination follows the
// Link header page_info token; a page fetch failure terminates the stream.
func (a *ShopifyAdapter) FetchSince(ctx context.Context, cursor string) (*upstream.OrderStream, error) {
	firstURL := fmt.Sprintf("%s/orders.json?status=any&limit=%d", a.config.BaseURL(), a.config.PageSize)
	if cursor != "" {
		firstURL += "&updated_at_min=" + url.QueryEscape(cursor)
	}

	next := firstURL
	done := false

	return upstream.NewOrderStream(func(ctx context.Context) ([]upstream.RawOrder, error) {
		if done {
			return nil, nil
		}

		body, header, err := a.doRequest(ctx, next)
		if err != nil {
			return nil, err
		}

		page, err := a.parseOrdersPage(body)
		if err != nil {
			return nil, err
		}

		pageInfo := nextPageInfo(header)
		if pageInfo == "" {
			done = true
		} else {
			next = fmt.Sprintf("%s/orders.json?limit=%d&page_info=%s", a.config.BaseURL(), a.config.PageSize, url.QueryEscape(pageInfo))
		}

		return page, nil
	}), nil
}

// FetchOrder retrieves a single order by its platform id
func (a *ShopifyAdapter) FetchOrder(ctx context.Context, orderID string) (*upstream.RawOrder, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("shopify: invalid order ID %q: %w", orderID, err)
	}

	body, _, err := a.doRequest(ctx, fmt.Sprintf("%s/orders/%d.json", a.config.BaseURL(), id))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Order json.RawMessage `json:"order"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", upstream.ErrInvalidResponse, err)
	}
	if len(envelope.Order) == 0 {
		return nil, fmt.Errorf("%w: empty order payload", upstream.ErrInvalidResponse)
	}

	var order ShopifyOrder
	if err := json.Unmarshal(envelope.Order, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", upstream.ErrInvalidResponse, err)
	}

	raw := convertShopifyOrder(&order, envelope.Order)
	return &raw, nil
}

// parseOrdersPage decodes one orders.json page, keeping each order's
// original payload opaque alongside the typed view
func (a *ShopifyAdapter) parseOrdersPage(body []byte) ([]upstream.RawOrder, error) {
	var envelope struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", upstream.ErrInvalidResponse, err)
	}

	page := make([]upstream.RawOrder, 0, len(envelope.Orders))
	for _, payload := range envelope.Orders {
		var order ShopifyOrder
		if err := json.Unmarshal(payload, &order); err != nil {
			return nil, fmt.Errorf("%w: %v", upstream.ErrInvalidResponse, err)
		}
		page = append(page, convertShopifyOrder(&order, payload))
	}
	return page, nil
}

// doRequest performs a GET against the Admin API with transient-failure
// retries. Authentication failures are permanent and abort immediately.
func (a *ShopifyAdapter) doRequest(ctx context.Context, rawURL string) ([]byte, http.Header, error) {
	var body []byte
	var header http.Header

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return permanent(fmt.Errorf("shopify: failed to create request: %w", err))
		}
		req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
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
		header = resp.Header
		return nil
	}

	if err := retryTransient(ctx, attempt, a.config.MaxRetries); err != nil {
		return nil, nil, err
	}
	return body, header, nil
}

// nextPageInfo extracts the next-page token from the Link header
func nextPageInfo(header http.Header) string {
	link := header.Get("Link")
	if link == "" {
		return ""
	}
	m := linkNextRe.FindStringSubmatch(link)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

// convertShopifyOrder normalizes a Shopify order into the common RawOrder shape
func convertShopifyOrder(order *ShopifyOrder, payload json.RawMessage) upstream.RawOrder {
	raw := upstream.RawOrder{
		Source:            upstream.SourceShopify,
		ID:                strconv.FormatInt(order.ID, 10),
		Name:              order.Name,
		Email:             order.Email,
		FinancialStatus:   order.FinancialStatus,
		FulfillmentStatus: order.FulfillmentStatus,
		Currency:          order.Currency,
		TotalPrice:        parsePrice(order.TotalPrice),
		CreatedAt:         parseVendorTime(order.CreatedAt),
		UpdatedAt:         parseVendorTime(order.UpdatedAt),
		Archived:          order.ClosedAt != "",
		LineItems:         make([]upstream.RawLineItem, 0, len(order.LineItems)),
		Refunds:           make([]upstream.RawRefund, 0, len(order.Refunds)),
		Raw:               payload,
	}

	if order.ProcessedAt != "" {
		t := parseVendorTime(order.ProcessedAt)
		raw.ProcessedAt = &t
	}
	if order.CancelledAt != "" {
		t := parseVendorTime(order.CancelledAt)
		raw.CancelledAt = &t
	}

	for _, item := range order.LineItems {
		raw.LineItems = append(raw.LineItems, upstream.RawLineItem{
			ID:                strconv.FormatInt(item.ID, 10),
			ProductID:         strconv.FormatInt(item.ProductID, 10),
			VariantID:         strconv.FormatInt(item.VariantID, 10),
			Title:             item.Title,
			Vendor:            item.Vendor,
			Quantity:          item.Quantity,
			Price:             parsePrice(item.Price),
			FulfillmentStatus: item.FulfillmentStatus,
		})
	}

	for _, refund := range order.Refunds {
		r := upstream.RawRefund{
			ID:        strconv.FormatInt(refund.ID, 10),
			CreatedAt: parseVendorTime(refund.CreatedAt),
			LineItems: make([]upstream.RawRefundLineItem, 0, len(refund.RefundLineItems)),
		}
		for _, rl := range refund.RefundLineItems {
			r.LineItems = append(r.LineItems, upstream.RawRefundLineItem{
				LineItemID:  strconv.FormatInt(rl.LineItemID, 10),
				Quantity:    rl.Quantity,
				RestockType: rl.RestockType,
				Restocked:   rl.RestockType != "" && rl.RestockType != "no_restock",
			})
		}
		raw.Refunds = append(raw.Refunds, r)
	}

	return raw
}

// parsePrice converts a vendor money string to decimal, zero on failure
func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseVendorTime parses an RFC3339 vendor timestamp, zero time on failure
func parseVendorTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ensure ShopifyAdapter implements the OrderSource port
var _ upstream.OrderSource = (*ShopifyAdapter)(nil)
