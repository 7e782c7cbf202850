// Package catalog implements the product index: a curated article key to
// category mapping backed by a cache-refillable external product catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/veldhoen/tapster/internal/common"
	"github.com/veldhoen/tapster/internal/model"
)

const (
	defaultFetchTimeout = 5 * time.Second
	defaultCacheTTL     = 15 * time.Minute
	maxResponseBytes    = 4 << 20
)

// ClientConfig holds configuration for the remote catalog client.
type ClientConfig struct {
	URL     string
	Timeout time.Duration
	TTL     time.Duration
}

// Client fetches the product listing from the external catalog API and
// caches it with a TTL. Refreshes are idempotent and last-write-wins; a
// concurrent refresh racing another is harmless since staleness is tolerable
// for a heuristic classifier.
type Client struct {
	expiry     time.Time
	httpClient *http.Client
	url        string
	cached     []model.CatalogProduct
	ttl        time.Duration
	timeout    time.Duration
	mu         sync.RWMutex
}

// NewClient creates a catalog client for the given endpoint.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: catalog URL", common.ErrMissingConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		ttl:        cfg.TTL,
		timeout:    cfg.Timeout,
	}, nil
}

// Products returns the catalog listing, fetching from the remote endpoint if
// the cache is cold or expired. On fetch failure a stale cache is served if
// one exists; only a cold cache surfaces the error.
func (c *Client) Products(ctx context.Context) ([]model.CatalogProduct, error) {
	c.mu.RLock()
	if len(c.cached) > 0 && time.Now().Before(c.expiry) {
		products := c.cached
		c.mu.RUnlock()
		return products, nil
	}
	stale := c.cached
	c.mu.RUnlock()

	products, err := c.fetch(ctx)
	if err != nil {
		if len(stale) > 0 {
			slog.Warn("Catalog fetch failed, serving stale cache",
				"error", err,
				"cached_products", len(stale))
			return stale, nil
		}
		return nil, err
	}

	c.store(products)
	return products, nil
}

// Refresh forces a fetch regardless of cache freshness.
func (c *Client) Refresh(ctx context.Context) error {
	products, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.store(products)
	slog.Info("Catalog refreshed", "products", len(products))
	return nil
}

// Size returns the number of cached products.
func (c *Client) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cached)
}

func (c *Client) store(products []model.CatalogProduct) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = products
	c.expiry = time.Now().Add(c.ttl)
}

// fetch retrieves the listing with a bounded timeout that is independent of
// caller cancellation: an aborted order workflow should not poison the warm-up
// another enrichment call can reuse.
func (c *Client) fetch(ctx context.Context) ([]model.CatalogProduct, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", common.ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}

	var products []model.CatalogProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}

	if len(products) == 0 {
		return nil, common.ErrCatalogEmpty
	}

	return products, nil
}
