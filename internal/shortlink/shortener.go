package shortlink

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Shortener turns a long URL into a short one. Implementations may fail
// (quota, auth, timeout); callers treat failure as a signal to fall back,
// never as a fatal error.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// BitlyShortener shortens URLs through the Bitly v4 API.
type BitlyShortener struct {
	client *resty.Client
	token  string
}

func NewBitlyShortener(apiURL, token string) *BitlyShortener {
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(5 * time.Second)
	return &BitlyShortener{client: client, token: token}
}

func (b *BitlyShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if b.token == "" {
		return "", fmt.Errorf("shortening provider not configured")
	}

	var result struct {
		Link string `json:"link"`
	}
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+b.token).
		SetBody(map[string]string{"long_url": longURL}).
		SetResult(&result).
		Post("/v4/shorten")
	if err != nil {
		return "", fmt.Errorf("shorten request failed: %w", err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return "", fmt.Errorf("shortening provider returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	if result.Link == "" {
		return "", fmt.Errorf("shortening provider returned empty link")
	}
	return result.Link, nil
}
