// Package tasks persists reviewable engagement tasks and serves the query
// surface behind the REST API. Idempotency across redelivered events rests
// on the unique post_id constraint, not on application locks.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harunalpak/agentic-traffic-booster/pkg/database"
	"github.com/harunalpak/agentic-traffic-booster/pkg/models"
)

// ErrDuplicate indicates a task already exists for the source post.
var ErrDuplicate = errors.New("task already exists for post")

// ErrNotFound indicates no task matched the given ID.
var ErrNotFound = errors.New("task not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const taskColumns = `id, post_id, campaign_id, reply_text, mode, status, post_author, post_text, post_url,
	confidence, short_link, is_risky, risk_reason, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.PostID, &task.CampaignID, &task.ReplyText, &task.Mode, &task.Status,
		&task.PostAuthor, &task.PostText, &task.PostURL, &task.Confidence, &task.ShortLink,
		&task.IsRisky, &task.RiskReason, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Create inserts a new task in PENDING status. Returns ErrDuplicate when a
// task for the same source post already exists, including when a
// concurrent worker wins the insert race.
func (s *Store) Create(ctx context.Context, suggestion *models.ReplySuggestion) (*models.Task, error) {
	mode := suggestion.Mode
	if mode == "" {
		mode = models.ModeSemiAuto
	}

	task := &models.Task{
		PostID:     suggestion.PostID,
		CampaignID: suggestion.CampaignID,
		ReplyText:  suggestion.ReplyText,
		Mode:       mode,
		Status:     models.TaskStatusPending,
		PostAuthor: suggestion.PostAuthor,
		PostText:   suggestion.PostText,
		PostURL:    suggestion.PostURL,
		Confidence: suggestion.Confidence,
		ShortLink:  suggestion.ShortLink,
		IsRisky:    suggestion.IsRisky,
		RiskReason: suggestion.RiskReason,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (post_id, campaign_id, reply_text, mode, status, post_author, post_text, post_url,
			confidence, short_link, is_risky, risk_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		task.PostID, task.CampaignID, task.ReplyText, task.Mode, task.Status,
		task.PostAuthor, task.PostText, task.PostURL, task.Confidence, task.ShortLink,
		task.IsRisky, task.RiskReason,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return task, nil
}

// ExistsByPostID reports whether a task exists for the source post.
func (s *Store) ExistsByPostID(ctx context.Context, postID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tasks WHERE post_id = $1)`, postID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check task existence: %w", err)
	}
	return exists, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err == database.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// Filter narrows List results. Zero values mean no constraint.
type Filter struct {
	Status     string
	CampaignID int64
	Mode       string
	Limit      int
}

// List returns tasks newest first, optionally filtered by status, campaign
// and mode.
func (s *Store) List(ctx context.Context, filter Filter) ([]models.Task, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CampaignID != 0 {
		args = append(args, filter.CampaignID)
		conditions = append(conditions, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	if filter.Mode != "" {
		args = append(args, filter.Mode)
		conditions = append(conditions, fmt.Sprintf("mode = $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var result []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, *task)
	}
	return result, rows.Err()
}

// StatusCounts aggregates task counts per status plus a risky-task count.
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Posted   int64 `json:"posted"`
	Risky    int64 `json:"risky"`
	Total    int64 `json:"total"`
}

func (s *Store) StatusCounts(ctx context.Context) (*StatusCounts, error) {
	var counts StatusCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'APPROVED'),
			COUNT(*) FILTER (WHERE status = 'REJECTED'),
			COUNT(*) FILTER (WHERE status = 'POSTED'),
			COUNT(*) FILTER (WHERE is_risky),
			COUNT(*)
		FROM tasks`,
	).Scan(&counts.Pending, &counts.Approved, &counts.Rejected, &counts.Posted, &counts.Risky, &counts.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}
	return &counts, nil
}

// CampaignWindowStats holds task counts for one campaign within a recent
// time window.
type CampaignWindowStats struct {
	CampaignID int64     `json:"campaign_id"`
	WindowFrom time.Time `json:"window_from"`
	Total      int64     `json:"total"`
	Pending    int64     `json:"pending"`
	Approved   int64     `json:"approved"`
	Posted     int64     `json:"posted"`
	Risky      int64     `json:"risky"`
}

func (s *Store) CampaignStats(ctx context.Context, campaignID int64, window time.Duration) (*CampaignWindowStats, error) {
	from := time.Now().Add(-window)
	stats := CampaignWindowStats{CampaignID: campaignID, WindowFrom: from}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'APPROVED'),
			COUNT(*) FILTER (WHERE status = 'POSTED'),
			COUNT(*) FILTER (WHERE is_risky)
		FROM tasks
		WHERE campaign_id = $1 AND created_at >= $2`,
		campaignID, from,
	).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Posted, &stats.Risky)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate campaign stats: %w", err)
	}
	return &stats, nil
}

// UpdateStatus transitions a task to APPROVED, REJECTED or POSTED.
// Transition legality beyond task existence and a known target status is
// deliberately left to callers.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (*models.Task, error) {
	if !models.ValidTransitionTarget(status) {
		return nil, fmt.Errorf("invalid target status: %s", status)
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, `
		UPDATE tasks SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+taskColumns,
		status, id))
	if err == database.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return task, nil
}
