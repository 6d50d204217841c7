package sources

import (
	"errors"
	"strings"
)

// WarehouseConfig holds configuration for the fulfillment/warehouse API adapter
type WarehouseConfig struct {
	// APIBaseURL is the warehouse API endpoint
	APIBaseURL string
	// APIKey authenticates requests via the X-Api-Key header
	APIKey string
	// PageSize is the number of shipments requested per page
	PageSize int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxRetries bounds backoff retries for transient failures
	MaxRetries int
}

// Errors for warehouse configuration
var (
	ErrWarehouseConfigMissingURL = errors.New("warehouse: API base URL is required")
	ErrWarehouseConfigMissingKey = errors.New("warehouse: API key is required")
)

// NewWarehouseConfig creates a new warehouse configuration with defaults
func NewWarehouseConfig(apiBaseURL, apiKey string) *WarehouseConfig {
	return &WarehouseConfig{
		APIBaseURL:     apiBaseURL,
		APIKey:         apiKey,
		PageSize:       100,
		TimeoutSeconds: 30,
		MaxRetries:     3,
	}
}

// Validate validates the warehouse configuration and fills defaults
func (c *WarehouseConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrWarehouseConfigMissingURL
	}
	if c.APIKey == "" {
		return ErrWarehouseConfigMissingKey
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	return nil
}
