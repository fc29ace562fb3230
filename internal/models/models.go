// Package models holds the gorm-mapped persistence schema for the
// research pipeline: failures (input), queue items, results and the
// optional history/audit trail.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueStatus is the finite set of states a QueueItem can be in.
type QueueStatus string

const (
	StatusPending    QueueStatus = "pending"
	StatusInProgress QueueStatus = "in_progress"
	StatusDone       QueueStatus = "done"
	StatusError      QueueStatus = "error"
)

// Failure is the read-only input catalog entry: a market-failure record
// the pipeline researches evidence for. Created out-of-band.
type Failure struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"type:varchar(500);not null"`
	Pillar      string `json:"pillar" gorm:"type:varchar(200)"`
	Description string `json:"description" gorm:"type:text"`
	SearchHint  string `json:"search_hint" gorm:"type:varchar(500)"`
}

func (Failure) TableName() string { return "failures" }

// QueueItem is one (failure, query variant, language, provider) unit of
// work. Status transitions are monotone except the recovery edge
// in_progress -> pending.
type QueueItem struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FailureID   int         `json:"failure_id" gorm:"index;not null"`
	QueryText   string      `json:"query_text" gorm:"type:text;not null"`
	Language    string      `json:"language" gorm:"type:varchar(10);not null;index"`
	Provider    string      `json:"provider" gorm:"type:varchar(50);not null;index"`
	Priority    int         `json:"priority" gorm:"default:0"`
	Attempts    int         `json:"attempts" gorm:"default:0"`
	MaxAttempts int         `json:"max_attempts" gorm:"default:3"`
	Status      QueueStatus `json:"status" gorm:"type:varchar(20);not null;index;default:pending"`
	ClaimedAt   *time.Time  `json:"claimed_at,omitempty"`
	ErrorReason string      `json:"error_reason,omitempty" gorm:"type:text"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (QueueItem) TableName() string { return "queue" }

func (q *QueueItem) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = StatusPending
	}
	if q.MaxAttempts == 0 {
		q.MaxAttempts = 3
	}
	return nil
}

// Result is a persisted, scored, deduplicated record of a hit (or
// merged hits). content_hash is globally unique; confidence_score is
// clamped to [0,1]; occurrences starts at 1 and only grows.
type Result struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FailureID       int       `json:"failure_id" gorm:"index;not null"`
	Title           string    `json:"title" gorm:"type:text;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	URL             string    `json:"url" gorm:"type:text;not null"`
	ProviderType    string    `json:"provider_type" gorm:"type:varchar(50)"`
	Country         string    `json:"country,omitempty" gorm:"type:varchar(10)"`
	Language        string    `json:"language" gorm:"type:varchar(10);not null"`
	Query           string    `json:"query,omitempty" gorm:"type:text"`
	ConfidenceScore float64   `json:"confidence_score" gorm:"not null"`
	Occurrences     int       `json:"occurrences" gorm:"not null;default:1"`
	OriginProvider  string    `json:"origin_provider" gorm:"type:varchar(50)"`
	ContentHash     string    `json:"content_hash" gorm:"type:varchar(64);not null;uniqueIndex"`
	URLValid        bool      `json:"url_valid" gorm:"not null;default:true"`
	TitlePT         string    `json:"title_pt,omitempty" gorm:"type:text"`
	DescriptionPT   string    `json:"description_pt,omitempty" gorm:"type:text"`
	TitleEN         string    `json:"title_en,omitempty" gorm:"type:text"`
	DescriptionEN   string    `json:"description_en,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Result) TableName() string { return "results" }

func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Occurrences == 0 {
		r.Occurrences = 1
	}
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore > 1 {
		r.ConfidenceScore = 1
	}
	return nil
}

// HistoryEntry is an optional per-attempt audit row: one per queue item
// execution attempt, successful or not.
type HistoryEntry struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FailureID      int       `json:"failure_id" gorm:"index"`
	Query          string    `json:"query" gorm:"type:text"`
	Language       string    `json:"language" gorm:"type:varchar(10)"`
	Provider       string    `json:"provider" gorm:"type:varchar(50)"`
	Status         string    `json:"status" gorm:"type:varchar(20)"`
	ResultsFound   int       `json:"results_found"`
	ErrorMessage   string    `json:"error_message,omitempty" gorm:"type:text"`
	StopReason     string    `json:"stop_reason,omitempty" gorm:"type:varchar(50)"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	ExecutedAt     time.Time `json:"executed_at"`
}

func (HistoryEntry) TableName() string { return "history" }

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ExecutedAt.IsZero() {
		h.ExecutedAt = time.Now()
	}
	return nil
}

// ProviderToggle persists an operator's enable/disable decision for a
// provider across restarts, independent of the process-local degraded
// latch (see internal/providers). Supplements the degraded latch rather
// than replacing it.
type ProviderToggle struct {
	Provider  string    `json:"provider" gorm:"type:varchar(50);primaryKey"`
	Enabled   bool      `json:"enabled" gorm:"not null;default:true"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProviderToggle) TableName() string { return "provider_toggles" }
