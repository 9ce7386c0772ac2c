// Package printify provides the upstream catalog API client.
package printify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/observability"
)

const (
	DefaultBaseURL = "https://api.printify.com/v1"

	requestTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20 // 8 MB
)

// Client fetches catalog products for one shop. Each fetch returns an
// immutable snapshot that has already passed structural validation; callers
// hand the snapshot to the engine as-is.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	validator  *catalog.Validator
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: observability.NewHTTPClient(requestTimeout),
		validator:  catalog.NewValidator(),
		logger:     logger,
	}
}

// GetProduct fetches and validates one product snapshot.
func (c *Client) GetProduct(ctx context.Context, shopID, productID string) (*catalog.Product, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}

	path := fmt.Sprintf("/shops/%s/products/%s.json", url.PathEscape(shopID), url.PathEscape(productID))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	product, err := catalog.DecodeProduct(body)
	if err != nil {
		return nil, err
	}
	if err := c.validator.Validate(product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts fetches one page of product snapshots. Products that fail
// structural validation are skipped with a warning rather than sinking the
// whole listing; single-product fetches stay strict.
func (c *Client) ListProducts(ctx context.Context, shopID string, page, limit int) ([]*catalog.Product, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	path := fmt.Sprintf("/shops/%s/products.json?page=%d&limit=%d", url.PathEscape(shopID), page, limit)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &catalog.UpstreamDataError{Field: "data", Reason: fmt.Sprintf("malformed product listing: %v", err)}
	}

	products := make([]*catalog.Product, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		product, err := catalog.DecodeProduct(raw)
		if err != nil {
			c.logger.Warn("skipping undecodable product in listing", "shop_id", shopID, "error", err)
			continue
		}
		if err := c.validator.Validate(product); err != nil {
			c.logger.Warn("skipping structurally invalid product in listing", "shop_id", shopID, "product_id", product.ID, "error", err)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}

	return body, nil
}
