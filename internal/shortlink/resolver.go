package shortlink

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/harunalpak/agentic-traffic-booster/pkg/logging"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

const trackingTokenLen = 8

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Resolver maps a (long URL, campaign) pair to a reusable short URL. A
// cached pair is never re-shortened. On a cache miss the external provider
// is tried first; when it is unavailable a deterministic-format fallback
// link with a random tracking token is produced instead.
type Resolver struct {
	store     *Store
	shortener Shortener
	logger    logging.Logger
}

func NewResolver(store *Store, shortener Shortener, logger logging.Logger) *Resolver {
	return &Resolver{store: store, shortener: shortener, logger: logger}
}

// Resolve returns the short URL for (originalURL, campaignID), creating
// and persisting one if needed. A persistence failure after a successful
// shorten still returns the computed URL.
func (r *Resolver) Resolve(ctx context.Context, originalURL string, campaignID, productID int64) (string, error) {
	if originalURL == "" {
		return "", fmt.Errorf("original URL is empty")
	}

	existing, err := r.store.Find(ctx, originalURL, campaignID)
	if err != nil {
		r.logger.WithFields(logging.Fields{
			"campaign_id": campaignID,
			"error":       err.Error(),
		}).Warn("Short link cache lookup failed")
	} else if existing != nil {
		return existing.ShortURL, nil
	}

	shortURL, provider := r.shorten(ctx, originalURL)

	link := &models.ShortLink{
		CampaignID:  campaignID,
		ProductID:   productID,
		OriginalURL: originalURL,
		ShortURL:    shortURL,
		Provider:    provider,
	}
	created, err := r.store.Create(ctx, link)
	if err != nil {
		r.logger.WithFields(logging.Fields{
			"campaign_id": campaignID,
			"short_url":   shortURL,
			"error":       err.Error(),
		}).Warn("Failed to persist short link, returning unpersisted URL")
		return shortURL, nil
	}
	if created == nil {
		return shortURL, nil
	}
	return created.ShortURL, nil
}

func (r *Resolver) shorten(ctx context.Context, originalURL string) (string, string) {
	if r.shortener != nil {
		shortURL, err := r.shortener.Shorten(ctx, originalURL)
		if err == nil {
			return shortURL, models.LinkProviderExternal
		}
		r.logger.WithFields(logging.Fields{
			"error": err.Error(),
		}).Warn("Shortening provider failed, using fallback link")
	}
	return fallbackLink(originalURL), models.LinkProviderFallback
}

// fallbackLink appends a random 8 character tracking parameter to the
// original URL. The token comes from a cryptographically strong source so
// it cannot be predicted or replayed.
func fallbackLink(originalURL string) string {
	sep := "?ref="
	if strings.Contains(originalURL, "?") {
		sep = "&ref="
	}
	return originalURL + sep + randomToken(trackingTokenLen)
}

func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform entropy source is broken
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(out)
}
