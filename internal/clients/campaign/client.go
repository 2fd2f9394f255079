// Package campaign provides a client for the campaign context service.
// Lookups are tolerant by design: a missing campaign or an unreachable
// service both yield (nil, nil), so enrichment can degrade instead of
// blocking the pipeline.
package campaign

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

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	return clients.ExecuteHTTP(ctx, c.httpExecutor, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.client.Do(req)
	})
}

// GetCampaign fetches a campaign by ID. Returns (nil, nil) when the
// campaign does not exist or the service cannot be reached.
func (c *Client) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/api/campaigns/%d", id))
	if err != nil {
		c.logger.WithFields(logging.Fields{
			"campaign_id": id,
			"error":       err.Error(),
		}).Warn("Campaign service unreachable, continuing without context")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logging.Fields{
			"campaign_id": id,
			"status":      resp.StatusCode,
		}).Warn("Campaign lookup returned unexpected status")
		return nil, nil
	}

	var campaign models.Campaign
	if err := json.NewDecoder(resp.Body).Decode(&campaign); err != nil {
		return nil, fmt.Errorf("failed to decode campaign %d: %w", id, err)
	}
	return &campaign, nil
}

// ListActive fetches campaigns currently in ACTIVE status.
func (c *Client) ListActive(ctx context.Context) ([]models.Campaign, error) {
	resp, err := c.get(ctx, "/api/campaigns?status=ACTIVE")
	if err != nil {
		return nil, fmt.Errorf("failed to list active campaigns: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("campaign service returned status %d", resp.StatusCode)
	}

	var campaigns []models.Campaign
	if err := json.NewDecoder(resp.Body).Decode(&campaigns); err != nil {
		return nil, fmt.Errorf("failed to decode campaign list: %w", err)
	}
	return campaigns, nil
}
