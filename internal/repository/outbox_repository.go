package repository

import (
	"context"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/outbox"

	"gorm.io/gorm"
)

const maxOutboxRetries = 10

type PostgresOutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &PostgresOutboxRepository{db: db}
}

func (r *PostgresOutboxRepository) Create(ctx context.Context, e *outbox.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresOutboxRepository) GetPending(ctx context.Context, limit int) ([]outbox.Event, error) {
	var events []outbox.Event
	err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < ?", outbox.StatusPending, maxOutboxRetries).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresOutboxRepository) MarkCompleted(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&outbox.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       outbox.StatusCompleted,
			"processed_at": &now,
			"updated_at":   now,
		}).Error
}

func (r *PostgresOutboxRepository) MarkFailed(ctx context.Context, id int64, errorMsg string) error {
	return r.db.WithContext(ctx).
		Model(&outbox.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     outbox.StatusFailed,
			"error":      errorMsg,
			"updated_at": time.Now(),
		}).Error
}

func (r *PostgresOutboxRepository) IncrementRetry(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&outbox.Event{}).
		Where("id = ?", id).
		Update("retry_count", gorm.Expr("retry_count + 1")).Error
}
