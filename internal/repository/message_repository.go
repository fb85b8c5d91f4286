package repository

import (
	"context"

	"github.com/emanuuele/girls-chat-api/internal/domain/message"

	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresMessageRepository) GetChatMessages(ctx context.Context, chatID int64) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) MarkSeen(ctx context.Context, chatID, viewerID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("chat_id = ? AND sent_by <> ? AND seen = ?", chatID, viewerID, false).
		Update("seen", true)
	return res.RowsAffected, res.Error
}

func (r *PostgresMessageRepository) CountUnseen(ctx context.Context, chatID, viewerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("chat_id = ? AND sent_by <> ? AND seen = ?", chatID, viewerID, false).
		Count(&count).Error
	return count, err
}
