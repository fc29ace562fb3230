// Package queue implements the persistent ordered Queue (C8): enqueue,
// list, count, status transitions, and stuck-item recovery. Grounded on
// app/fila/fila_service.py's FilaService, with round-robin provider
// rotation during populate taken from gerar_queries_multilingues's
// provider cycling.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/tesseract-hub/research-orchestrator/internal/models"
	"github.com/tesseract-hub/research-orchestrator/internal/querygen"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Queue struct {
	db *gorm.DB
}

func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// Populate expands one Failure into queue items: every (query variant,
// language) pair from the Query Generator, fanned out round-robin
// across the configured provider order so that early queue drains
// exercise every provider rather than exhausting one at a time.
func (q *Queue) Populate(ctx context.Context, failure models.Failure, variants []querygen.Variant, providers []string) (int, error) {
	if len(providers) == 0 {
		return 0, fmt.Errorf("queue: no providers configured")
	}

	items := make([]models.QueueItem, 0, len(variants))
	for i, v := range variants {
		provider := providers[i%len(providers)]
		items = append(items, models.QueueItem{
			FailureID: failure.ID,
			QueryText: v.Text,
			Language:  v.Language,
			Provider:  provider,
			Priority:  v.VariationIndex,
			Status:    models.StatusPending,
		})
	}

	if len(items) == 0 {
		return 0, nil
	}
	if err := q.db.WithContext(ctx).CreateInBatches(items, 100).Error; err != nil {
		return 0, fmt.Errorf("queue: populate: %w", err)
	}
	return len(items), nil
}

// Enqueue inserts a single pre-built item (used by callers assembling
// items outside of Populate, e.g. manual retries).
func (q *Queue) Enqueue(ctx context.Context, item models.QueueItem) error {
	if err := q.db.WithContext(ctx).Create(&item).Error; err != nil {
		return fmt.Errorf("queue: enqueue: %w", err)
	}
	return nil
}

// Claim atomically picks the oldest pending item (ordered by priority
// then creation time), marking it in_progress and bumping attempts.
func (q *Queue) Claim(ctx context.Context) (*models.QueueItem, error) {
	var item models.QueueItem

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", models.StatusPending).
			Order("priority desc, created_at asc").
			Limit(1).
			First(&item).Error
		if err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&item).Updates(map[string]interface{}{
			"status":     models.StatusInProgress,
			"claimed_at": now,
			"attempts":   item.Attempts + 1,
		}).Error
	})

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue: claim: %w", err)
	}
	return &item, nil
}

// List returns queue items matching an optional status filter.
func (q *Queue) List(ctx context.Context, status models.QueueStatus, limit int) ([]models.QueueItem, error) {
	var items []models.QueueItem
	query := q.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("priority desc, created_at asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("queue: list: %w", err)
	}
	return items, nil
}

// Count returns the number of items in a given status, or the total
// count when status is "".
func (q *Queue) Count(ctx context.Context, status models.QueueStatus) (int64, error) {
	var count int64
	query := q.db.WithContext(ctx).Model(&models.QueueItem{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("queue: count: %w", err)
	}
	return count, nil
}

// MarkDone transitions an item to done.
func (q *Queue) MarkDone(ctx context.Context, id interface{}) error {
	return q.updateStatus(ctx, id, models.StatusDone, "")
}

// MarkError transitions an item to error, recording the reason. When
// attempts remain below MaxAttempts the item is instead returned to
// pending for a retry.
func (q *Queue) MarkError(ctx context.Context, id interface{}, reason string) error {
	var item models.QueueItem
	if err := q.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return fmt.Errorf("queue: mark_error: %w", err)
	}

	status := models.StatusError
	if item.Attempts < item.MaxAttempts {
		status = models.StatusPending
	}
	return q.updateStatus(ctx, id, status, reason)
}

func (q *Queue) updateStatus(ctx context.Context, id interface{}, status models.QueueStatus, reason string) error {
	updates := map[string]interface{}{"status": status, "error_reason": reason}
	if err := q.db.WithContext(ctx).Model(&models.QueueItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("queue: update_status: %w", err)
	}
	return nil
}

// Delete removes a queue item outright (used by clear-queue).
func (q *Queue) Delete(ctx context.Context, id interface{}) error {
	if err := q.db.WithContext(ctx).Delete(&models.QueueItem{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("queue: delete: %w", err)
	}
	return nil
}

// Clear deletes every queue item, regardless of status.
func (q *Queue) Clear(ctx context.Context) (int64, error) {
	result := q.db.WithContext(ctx).Where("1 = 1").Delete(&models.QueueItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("queue: clear: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RecoverStuck resolves the in_progress -> pending recovery edge (spec
// §9 Open Question 1): items claimed longer ago than timeout without
// completing are assumed to have died with their worker and are
// returned to pending for re-claim. Call periodically, not from the
// normal claim/done/error path.
func (q *Queue) RecoverStuck(ctx context.Context, timeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-timeout)
	result := q.db.WithContext(ctx).
		Model(&models.QueueItem{}).
		Where("status = ? AND claimed_at < ?", models.StatusInProgress, cutoff).
		Updates(map[string]interface{}{"status": models.StatusPending, "claimed_at": nil})
	if result.Error != nil {
		return 0, fmt.Errorf("queue: recover_stuck: %w", result.Error)
	}
	return result.RowsAffected, nil
}
