package httpdto

import (
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
)

// CreateChatRequest is used for POST /chats
type CreateChatRequest struct {
	ParticipantID int64 `json:"participant_id" binding:"required"`
}

// ChatDTO is one chat in API responses, carrying the denormalized summary
// and, when resolved, the other participant and the viewer's unseen count.
type ChatDTO struct {
	ID               int64    `json:"id"`
	LastMessage      string   `json:"last_message,omitempty"`
	LastMessageAt    string   `json:"last_message_at,omitempty"`
	OtherParticipant *UserDTO `json:"other_participant,omitempty"`
	UnseenCount      int64    `json:"unseen_count"`
	CreatedAt        string   `json:"created_at"`
}

func FromChat(c chat.Chat) ChatDTO {
	dto := ChatDTO{
		ID:          c.ID,
		LastMessage: c.LastMessage,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
	if c.LastMessageAt.Valid {
		dto.LastMessageAt = c.LastMessageAt.Time.Format(time.RFC3339)
	}
	return dto
}

// NotificationDTO is one activity-feed entry.
type NotificationDTO struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	Seen      bool   `json:"seen"`
	CreatedAt string `json:"created_at"`
}

func FromNotification(n chat.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		ChatID:    n.ChatID,
		Text:      n.Text,
		Seen:      n.Seen,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func FromNotifications(notifications []chat.Notification) []NotificationDTO {
	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, FromNotification(n))
	}
	return dtos
}
