package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"

	"gorm.io/gorm"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) Create(ctx context.Context, c *chat.Chat) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id int64) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, chat_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetChatBetween(ctx context.Context, userA, userB int64) (chat.Chat, error) {
	var c chat.Chat

	// Intersection of both users' participant rows, smallest chat ID wins.
	subQuery := r.db.Model(&chat.Participant{}).
		Select("chat_id").
		Where("user_id IN (?, ?)", userA, userB).
		Group("chat_id").
		Having("COUNT(DISTINCT user_id) = 2")

	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", subQuery).
		Order("id ASC").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, chat_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetUserChats(ctx context.Context, userID int64) ([]chat.Chat, error) {
	var chats []chat.Chat

	subQuery := r.db.Model(&chat.Participant{}).
		Select("chat_id").
		Where("user_id = ?", userID)

	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", subQuery).
		Order("last_message_at DESC NULLS LAST").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *PostgresChatRepository) UpdateLastMessage(ctx context.Context, chatID int64, text string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ? AND (last_message_at IS NULL OR last_message_at <= ?)", chatID, at).
		Updates(map[string]interface{}{
			"last_message":    text,
			"last_message_at": at,
		})
	// Zero rows affected means a newer message already owns the summary;
	// that is not an error.
	return res.Error
}

func (r *PostgresChatRepository) AddParticipant(ctx context.Context, p *chat.Participant) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresChatRepository) RemoveParticipant(ctx context.Context, chatID, userID int64) error {
	res := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&chat.Participant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) GetParticipants(ctx context.Context, chatID int64) ([]chat.Participant, error) {
	var participants []chat.Participant
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *PostgresChatRepository) IsParticipant(ctx context.Context, chatID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.Participant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
