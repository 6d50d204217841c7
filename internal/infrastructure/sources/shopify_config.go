package sources

import (
	"errors"
	"fmt"
)

// ShopifyConfig holds configuration for the Shopify Admin API adapter
type ShopifyConfig struct {
	// ShopDomain is the myshopify domain, e.g. "example.myshopify.com"
	ShopDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the Admin API version, e.g. "2024-01"
	APIVersion string
	// APIBaseURL overrides the derived Admin API base URL when set
	APIBaseURL string
	// PageSize is the number of orders requested per page (max 250)
	PageSize int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxRetries bounds backoff retries for transient failures
	MaxRetries int
}

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingDomain = errors.New("shopify: shop domain is required")
	ErrShopifyConfigMissingToken  = errors.New("shopify: access token is required")
)

// NewShopifyConfig creates a new Shopify configuration with defaults
func NewShopifyConfig(shopDomain, accessToken string) *ShopifyConfig {
	return &ShopifyConfig{
		ShopDomain:     shopDomain,
		AccessToken:    accessToken,
		APIVersion:     "2024-01",
		PageSize:       250,
		TimeoutSeconds: 30,
		MaxRetries:     3,
	}
}

// Validate validates the Shopify configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if c.ShopDomain == "" {
		return ErrShopifyConfigMissingDomain
	}
	if c.AccessToken == "" {
		return ErrShopifyConfigMissingToken
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-01"
	}
	if c.PageSize <= 0 || c.PageSize > 250 {
		c.PageSize = 250
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	return nil
}

// BaseURL returns the versioned Admin API base URL
func (c *ShopifyConfig) BaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return fmt.Sprintf("https://%s/admin/api/%s", c.ShopDomain, c.APIVersion)
}
