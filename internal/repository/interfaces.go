package repository

import (
	"context"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	"github.com/emanuuele/girls-chat-api/internal/domain/message"
	"github.com/emanuuele/girls-chat-api/internal/domain/outbox"
	"github.com/emanuuele/girls-chat-api/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ListExcept(ctx context.Context, excludeID int64) ([]user.User, error)
	Update(ctx context.Context, u user.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type ChatRepository interface {
	Create(ctx context.Context, c *chat.Chat) error
	GetByID(ctx context.Context, id int64) (chat.Chat, error)
	// GetChatBetween returns the chat both users participate in. When the
	// data ever holds more than one (a historical race), the smallest ID
	// wins so all callers converge on the same chat.
	GetChatBetween(ctx context.Context, userA, userB int64) (chat.Chat, error)
	GetUserChats(ctx context.Context, userID int64) ([]chat.Chat, error)
	// UpdateLastMessage refreshes the denormalized summary. The update is
	// monotonic: a row whose last_message_at is already newer is left alone.
	UpdateLastMessage(ctx context.Context, chatID int64, text string, at time.Time) error

	AddParticipant(ctx context.Context, p *chat.Participant) error
	RemoveParticipant(ctx context.Context, chatID, userID int64) error
	GetParticipants(ctx context.Context, chatID int64) ([]chat.Participant, error)
	IsParticipant(ctx context.Context, chatID, userID int64) (bool, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetChatMessages(ctx context.Context, chatID int64) ([]message.Message, error)
	// MarkSeen flips seen=false -> true on every message in the chat not
	// sent by viewerID, in one bulk update. Returns rows affected.
	MarkSeen(ctx context.Context, chatID, viewerID int64) (int64, error)
	CountUnseen(ctx context.Context, chatID, viewerID int64) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *chat.Notification) error
	GetUserNotifications(ctx context.Context, userID int64) ([]chat.Notification, error)
	MarkSeen(ctx context.Context, id, userID int64) error
}

type DeviceTokenRepository interface {
	// Upsert registers a token for a user; a duplicate (user, token) pair
	// is a no-op.
	Upsert(ctx context.Context, t *user.DeviceToken) error
	GetUserTokens(ctx context.Context, userID int64) ([]user.DeviceToken, error)
	// DeleteByToken removes every row carrying this token value, across users.
	DeleteByToken(ctx context.Context, token string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, e *outbox.Event) error
	GetPending(ctx context.Context, limit int) ([]outbox.Event, error)
	MarkCompleted(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errorMsg string) error
	IncrementRetry(ctx context.Context, id int64) error
}
