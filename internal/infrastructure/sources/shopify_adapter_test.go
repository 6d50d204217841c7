package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chonibe/coa-service/internal/domain/upstream"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestShopifyConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ShopifyConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &ShopifyConfig{ShopDomain: "test.myshopify.com", AccessToken: "shpat_test"},
			wantErr: nil,
		},
		{
			name:    "missing domain",
			config:  &ShopifyConfig{AccessToken: "shpat_test"},
			wantErr: ErrShopifyConfigMissingDomain,
		},
		{
			name:    "missing token",
			config:  &ShopifyConfig{ShopDomain: "test.myshopify.com"},
			wantErr: ErrShopifyConfigMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				// Check defaults are set
				assert.Equal(t, "2024-01", tt.config.APIVersion)
				assert.Equal(t, 250, tt.config.PageSize)
				assert.True(t, tt.config.TimeoutSeconds > 0)
			}
		})
	}
}

func TestShopifyConfig_BaseURL(t *testing.T) {
	config := NewShopifyConfig("test.myshopify.com", "shpat_test")
	assert.Equal(t, "https://test.myshopify.com/admin/api/2024-01", config.BaseURL())

	config.APIBaseURL = "http://127.0.0.1:9999/admin/api/2024-01"
	assert.Equal(t, "http://127.0.0.1:9999/admin/api/2024-01", config.BaseURL())
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

func TestNewShopifyAdapter(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		adapter, err := NewShopifyAdapter(NewShopifyConfig("test.myshopify.com", "shpat_test"))
		require.NoError(t, err)
		assert.NotNil(t, adapter)
		assert.Equal(t, upstream.SourceShopify, adapter.Name())
	})

	t.Run("invalid config", func(t *testing.T) {
		adapter, err := NewShopifyAdapter(&ShopifyConfig{})
		assert.Error(t, err)
		assert.Nil(t, adapter)
	})
}

func newTestShopifyAdapter(t *testing.T, serverURL string) *ShopifyAdapter {
	t.Helper()
	config := NewShopifyConfig("test.myshopify.com", "shpat_test")
	config.APIBaseURL = serverURL
	config.PageSize = 2
	config.MaxRetries = 1
	adapter, err := NewShopifyAdapter(config)
	require.NoError(t, err)
	return adapter
}

func collectOrders(t *testing.T, stream *upstream.OrderStream) []upstream.RawOrder {
	t.Helper()
	var orders []upstream.RawOrder
	for stream.Next(context.Background()) {
		orders = append(orders, *stream.Order())
	}
	require.NoError(t, stream.Err())
	return orders
}

func TestShopifyAdapter_FetchSince(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
			assert.Equal(t, "any", r.URL.Query().Get("status"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"orders": [
				{
					"id": 1001,
					"name": "#1042",
					"email": "buyer@example.com",
					"financial_status": "paid",
					"fulfillment_status": "fulfilled",
					"currency": "USD",
					"total_price": "250.00",
					"created_at": "2024-01-15T10:30:00Z",
					"updated_at": "2024-01-16T08:00:00Z",
					"line_items": [
						{"id": 5001, "product_id": 9001, "variant_id": 7001, "title": "Limited Print", "vendor": "Studio A", "quantity": 1, "price": "250.00", "fulfillment_status": "fulfilled"}
					],
					"refunds": [],
					"note_attributes": [{"name": "gallery", "value": "east"}]
				}
			]}`)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		stream, err := adapter.FetchSince(context.Background(), "")
		require.NoError(t, err)

		orders := collectOrders(t, stream)
		require.Len(t, orders, 1)

		order := orders[0]
		assert.Equal(t, upstream.SourceShopify, order.Source)
		assert.Equal(t, "1001", order.ID)
		assert.Equal(t, "#1042", order.Name)
		assert.Equal(t, "buyer@example.com", order.Email)
		assert.Equal(t, "paid", order.FinancialStatus)
		assert.True(t, order.TotalPrice.Equal(decimal.NewFromFloat(250.00)))
		require.Len(t, order.LineItems, 1)
		assert.Equal(t, "5001", order.LineItems[0].ID)
		assert.Equal(t, "9001", order.LineItems[0].ProductID)
		assert.Equal(t, "Limited Print", order.LineItems[0].Title)
		// Vendor fields we never modeled survive in the opaque payload
		assert.Contains(t, string(order.Raw), "note_attributes")
	})

	t.Run("follows Link header pagination", func(t *testing.T) {
		var baseURL string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Query().Get("page_info") == "" {
				w.Header().Set("Link", fmt.Sprintf(`<%s/orders.json?limit=2&page_info=tok123>; rel="next"`, baseURL))
				fmt.Fprint(w, `{"orders": [{"id": 1, "name": "#1"}, {"id": 2, "name": "#2"}]}`)
				return
			}
			assert.Equal(t, "tok123", r.URL.Query().Get("page_info"))
			fmt.Fprint(w, `{"orders": [{"id": 3, "name": "#3"}]}`)
		}))
		defer server.Close()
		baseURL = server.URL

		adapter := newTestShopifyAdapter(t, server.URL)
		stream, err := adapter.FetchSince(context.Background(), "")
		require.NoError(t, err)

		orders := collectOrders(t, stream)
		require.Len(t, orders, 3)
		assert.Equal(t, "1", orders[0].ID)
		assert.Equal(t, "3", orders[2].ID)
	})

	t.Run("passes cursor as updated_at_min", func(t *testing.T) {
		var gotCursor string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCursor = r.URL.Query().Get("updated_at_min")
			fmt.Fprint(w, `{"orders": []}`)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		stream, err := adapter.FetchSince(context.Background(), "2024-01-10T00:00:00Z")
		require.NoError(t, err)

		orders := collectOrders(t, stream)
		assert.Empty(t, orders)
		assert.Equal(t, "2024-01-10T00:00:00Z", gotCursor)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, `{"orders": [{"id": 1, "name": "#1"}]}`)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		stream, err := adapter.FetchSince(context.Background(), "")
		require.NoError(t, err)

		orders := collectOrders(t, stream)
		require.Len(t, orders, 1)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("auth failure aborts without retry", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		stream, err := adapter.FetchSince(context.Background(), "")
		require.NoError(t, err)

		assert.False(t, stream.Next(context.Background()))
		assert.ErrorIs(t, stream.Err(), upstream.ErrUpstreamAuth)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("mid-stream failure surfaces after earlier pages", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page_info") == "" {
				w.Header().Set("Link", `<https://x/orders.json?page_info=tok>; rel="next"`)
				fmt.Fprint(w, `{"orders": [{"id": 1, "name": "#1"}]}`)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		stream, err := adapter.FetchSince(context.Background(), "")
		require.NoError(t, err)

		assert.True(t, stream.Next(context.Background()))
		assert.Equal(t, "1", stream.Order().ID)
		assert.False(t, stream.Next(context.Background()))
		assert.ErrorIs(t, stream.Err(), upstream.ErrInvalidResponse)
	})
}

func TestShopifyAdapter_FetchOrder(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/1001.json", r.URL.Path)
			fmt.Fprint(w, `{"order": {"id": 1001, "name": "#1042", "financial_status": "paid", "refunds": [
				{"id": 801, "created_at": "2024-02-01T12:00:00Z", "refund_line_items": [
					{"line_item_id": 5001, "quantity": 1, "restock_type": "return"}
				]}
			]}}`)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		order, err := adapter.FetchOrder(context.Background(), "1001")
		require.NoError(t, err)
		assert.Equal(t, "1001", order.ID)
		require.Len(t, order.Refunds, 1)
		require.Len(t, order.Refunds[0].LineItems, 1)
		assert.Equal(t, "5001", order.Refunds[0].LineItems[0].LineItemID)
		assert.True(t, order.Refunds[0].LineItems[0].Restocked)
	})

	t.Run("refund without restock does not mark restocked", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"order": {"id": 1001, "refunds": [
				{"id": 801, "refund_line_items": [{"line_item_id": 5001, "quantity": 1, "restock_type": "no_restock"}]}
			]}}`)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		order, err := adapter.FetchOrder(context.Background(), "1001")
		require.NoError(t, err)
		assert.False(t, order.Refunds[0].LineItems[0].Restocked)
	})

	t.Run("invalid order ID", func(t *testing.T) {
		adapter := newTestShopifyAdapter(t, "http://127.0.0.1:0")
		_, err := adapter.FetchOrder(context.Background(), "not-a-number")
		assert.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		adapter := newTestShopifyAdapter(t, server.URL)
		_, err := adapter.FetchOrder(context.Background(), "1001")
		assert.ErrorIs(t, err, upstream.ErrInvalidResponse)
	})
}

func TestConvertShopifyOrder_Archived(t *testing.T) {
	order := &ShopifyOrder{ID: 1, ClosedAt: "2024-03-01T00:00:00Z"}
	raw := convertShopifyOrder(order, nil)
	assert.True(t, raw.Archived)

	order.ClosedAt = ""
	raw = convertShopifyOrder(order, nil)
	assert.False(t, raw.Archived)
}
