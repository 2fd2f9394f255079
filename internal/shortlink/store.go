// Package shortlink maps (original URL, campaign) pairs to reusable short
// URLs. Resolution checks a persisted cache first, then an external
// shortening provider, then a locally generated tracking link.
package shortlink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harunalpak/agentic-traffic-booster/pkg/database"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

// ErrNotFound is returned when no short link matches the given short URL.
var ErrNotFound = errors.New("short link not found")

// Store persists short link records. Uniqueness on (original_url,
// campaign_id) is enforced by the database so concurrent workers racing on
// the same pair resolve to a single record.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Find returns the record for (originalURL, campaignID), or nil when no
// record exists.
func (s *Store) Find(ctx context.Context, originalURL string, campaignID int64) (*models.ShortLink, error) {
	var link models.ShortLink
	err := s.db.QueryRowContext(ctx, `
		SELECT id, campaign_id, product_id, original_url, short_url, provider, click_count, created_at
		FROM short_links
		WHERE original_url = $1 AND campaign_id = $2`,
		originalURL, campaignID,
	).Scan(&link.ID, &link.CampaignID, &link.ProductID, &link.OriginalURL, &link.ShortURL,
		&link.Provider, &link.ClickCount, &link.CreatedAt)
	if err == database.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query short link: %w", err)
	}
	return &link, nil
}

// Create inserts a new record. When a concurrent worker already inserted
// the same (original_url, campaign_id) pair, the existing record is read
// back and returned instead. A unique violation with no matching pair is
// a short_url collision with another campaign and is returned as an error.
func (s *Store) Create(ctx context.Context, link *models.ShortLink) (*models.ShortLink, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO short_links (campaign_id, product_id, original_url, short_url, provider)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, click_count, created_at`,
		link.CampaignID, link.ProductID, link.OriginalURL, link.ShortURL, link.Provider,
	).Scan(&link.ID, &link.ClickCount, &link.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			existing, findErr := s.Find(ctx, link.OriginalURL, link.CampaignID)
			if findErr != nil {
				return nil, findErr
			}
			if existing == nil {
				// The conflict was on short_url, not on the pair: a record
				// for another campaign already carries this short URL.
				return nil, fmt.Errorf("short URL already in use: %s", link.ShortURL)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to insert short link: %w", err)
	}
	return link, nil
}

// IncrementClicks bumps the click counter for a short URL.
func (s *Store) IncrementClicks(ctx context.Context, shortURL string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE short_links SET click_count = click_count + 1 WHERE short_url = $1`, shortURL)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCampaign returns all short links created for a campaign.
func (s *Store) ListByCampaign(ctx context.Context, campaignID int64) ([]models.ShortLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, product_id, original_url, short_url, provider, click_count, created_at
		FROM short_links
		WHERE campaign_id = $1
		ORDER BY created_at DESC`,
		campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list short links: %w", err)
	}
	defer rows.Close()

	var links []models.ShortLink
	for rows.Next() {
		var link models.ShortLink
		if err := rows.Scan(&link.ID, &link.CampaignID, &link.ProductID, &link.OriginalURL,
			&link.ShortURL, &link.Provider, &link.ClickCount, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan short link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}
