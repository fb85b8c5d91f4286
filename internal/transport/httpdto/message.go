package httpdto

import (
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/message"
)

// SendMessageRequest is used for POST /messages. ChatID is optional: when
// absent the chat is resolved from the receiver.
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
	ChatID     int64  `json:"chat_id,omitempty"`
}

type MessageDTO struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id"`
	SentBy    int64  `json:"sentBy"`
	SentTo    int64  `json:"sentTo"`
	Text      string `json:"text"`
	Seen      bool   `json:"seen"`
	CreatedAt string `json:"createdAt"`
}

func FromMessage(m message.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SentBy:    m.SentBy,
		SentTo:    m.SentTo,
		Text:      m.Text,
		Seen:      m.Seen,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func FromMessages(messages []message.Message) []MessageDTO {
	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, FromMessage(m))
	}
	return dtos
}

// MarkSeenResponse reports how many messages the bulk update flipped.
type MarkSeenResponse struct {
	Updated int64 `json:"updated"`
}
