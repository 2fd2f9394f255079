// Package product provides a client for the product catalog service with
// the same tolerant lookup semantics as the campaign client.
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"github.com/harunalpak/agentic-traffic-booster/pkg/clients"
	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

type Client struct {
	baseURL      string
	client       *http.Client
	httpExecutor failsafe.Executor[*http.Response]
	logger       logging.Logger
}

type Option func(*Client)

func NewClient(baseURL string, logger logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: 5 * time.Second},
		httpExecutor: clients.NewHTTPExecutor(clients.DefaultHTTPExecutorConfig()),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithHTTPExecutorConfig(cfg clients.HTTPExecutorConfig) Option {
	return func(c *Client) {
		c.httpExecutor = clients.NewHTTPExecutor(cfg)
	}
}

// GetProduct fetches a product by ID. Returns (nil, nil) when the product
// does not exist or the service cannot be reached.
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	resp, err := clients.ExecuteHTTP(ctx, c.httpExecutor, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/products/%d", c.baseURL, id), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.client.Do(req)
	})
	if err != nil {
		c.logger.WithFields(logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		}).Warn("Product service unreachable, continuing without context")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logging.Fields{
			"product_id": id,
			"status":     resp.StatusCode,
		}).Warn("Product lookup returned unexpected status")
		return nil, nil
	}

	var product models.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}
	return &product, nil
}
