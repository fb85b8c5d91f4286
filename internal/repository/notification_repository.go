package repository

import (
	"context"

	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"

	"gorm.io/gorm"
)

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *chat.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *PostgresNotificationRepository) GetUserNotifications(ctx context.Context, userID int64) ([]chat.Notification, error) {
	var notifications []chat.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PostgresNotificationRepository) MarkSeen(ctx context.Context, id, userID int64) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("seen", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}
