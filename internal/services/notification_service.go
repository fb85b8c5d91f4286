package services

import (
	"context"

	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
)

// NotificationService serves the per-user activity feed. Entries are created
// by the message pipeline; this service only reads and acknowledges them.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID int64) ([]chat.Notification, error) {
	if userID == 0 {
		return nil, chat_errors.ErrInvalidInput
	}
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkSeen acknowledges one notification. The userID guard keeps users from
// acknowledging each other's entries.
func (s *NotificationService) MarkSeen(ctx context.Context, id, userID int64) error {
	if id == 0 || userID == 0 {
		return chat_errors.ErrInvalidInput
	}
	return s.repo.MarkSeen(ctx, id, userID)
}
