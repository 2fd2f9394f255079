package models

import "time"

// Campaign modes. AUTO campaigns may post approved replies without a
// human in the loop; SEMI_AUTO campaigns always require review.
const (
	ModeAuto     = "AUTO"
	ModeSemiAuto = "SEMI_AUTO"
)

// Task statuses. PENDING is the only status the pipeline itself writes;
// all later transitions are operator or automation driven. POSTED and
// REJECTED are terminal.
const (
	TaskStatusPending  = "PENDING"
	TaskStatusApproved = "APPROVED"
	TaskStatusRejected = "REJECTED"
	TaskStatusPosted   = "POSTED"
)

// Short-link providers
const (
	LinkProviderExternal = "PROVIDER"
	LinkProviderFallback = "FALLBACK"
)

// DiscoveredPost is a post found by the discovery crawler. Immutable
// once received; consumed exactly once per partition worker.
type DiscoveredPost struct {
	PostID     string    `json:"post_id"`
	CampaignID int64     `json:"campaign_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	URL        string    `json:"url"`
	Likes      int       `json:"likes"`
	Reposts    int       `json:"reposts"`
	Language   string    `json:"language,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Campaign is the read-only campaign context fetched per event.
type Campaign struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	ProductID int64    `json:"product_id"`
	Status    string   `json:"status"`
	Mode      string   `json:"mode"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Product is the read-only product context fetched per event.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ProductURL  string  `json:"product_url"`
	Price       float64 `json:"price,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// ReplySuggestion is the event emitted by the reply generator stage and
// consumed by the task writer. Carries the original post context for audit.
type ReplySuggestion struct {
	PostID     string    `json:"post_id"`
	CampaignID int64     `json:"campaign_id"`
	ReplyText  string    `json:"reply_text"`
	Confidence float64   `json:"confidence"`
	ShortLink  string    `json:"short_link,omitempty"`
	PostAuthor string    `json:"post_author,omitempty"`
	PostText   string    `json:"post_text,omitempty"`
	PostURL    string    `json:"post_url,omitempty"`
	Mode       string    `json:"mode"`
	IsRisky    bool      `json:"is_risky"`
	RiskReason *string   `json:"risk_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Task is the durable, reviewable unit of work produced by the pipeline.
type Task struct {
	ID         int64     `json:"id" db:"id"`
	PostID     string    `json:"post_id" db:"post_id"`
	CampaignID int64     `json:"campaign_id" db:"campaign_id"`
	ReplyText  string    `json:"reply_text" db:"reply_text"`
	Mode       string    `json:"mode" db:"mode"`
	Status     string    `json:"status" db:"status"`
	PostAuthor string    `json:"post_author,omitempty" db:"post_author"`
	PostText   string    `json:"post_text,omitempty" db:"post_text"`
	PostURL    string    `json:"post_url,omitempty" db:"post_url"`
	Confidence float64   `json:"confidence" db:"confidence"`
	ShortLink  string    `json:"short_link,omitempty" db:"short_link"`
	IsRisky    bool      `json:"is_risky" db:"is_risky"`
	RiskReason *string   `json:"risk_reason,omitempty" db:"risk_reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ShortLink is a persisted short-link record. Immutable after creation
// except for the click counter.
type ShortLink struct {
	ID          int64     `json:"id" db:"id"`
	CampaignID  int64     `json:"campaign_id" db:"campaign_id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	OriginalURL string    `json:"original_url" db:"original_url"`
	ShortURL    string    `json:"short_url" db:"short_url"`
	Provider    string    `json:"provider" db:"provider"`
	ClickCount  int64     `json:"click_count" db:"click_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusApproved, TaskStatusRejected, TaskStatusPosted:
		return true
	}
	return false
}

// ValidTransitionTarget reports whether s is a status an external caller
// may set. PENDING is reserved for the pipeline at creation time.
func ValidTransitionTarget(s string) bool {
	switch s {
	case TaskStatusApproved, TaskStatusRejected, TaskStatusPosted:
		return true
	}
	return false
}
