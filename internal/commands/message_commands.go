package commands

import (
	"fmt"
	"strings"

	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
)

// SendMessageCommand sends a text message. ChatID is optional; when zero the
// pipeline resolves (or creates) the chat from the sender/receiver pair.
type SendMessageCommand struct {
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Text       string `json:"text"`
	ChatID     int64  `json:"chat_id,omitempty"`
}

func (c SendMessageCommand) CommandType() string {
	return "message.send"
}

func (c SendMessageCommand) Validate() error {
	if c.SenderID == 0 {
		return fmt.Errorf("%w: sender_id is required", chat_errors.ErrInvalidInput)
	}
	if c.ReceiverID == 0 {
		return fmt.Errorf("%w: receiver_id is required", chat_errors.ErrInvalidInput)
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", chat_errors.ErrInvalidInput)
	}
	return nil
}

// MarkSeenCommand flips every unseen message in a chat that was not sent by
// the viewer.
type MarkSeenCommand struct {
	ChatID   int64 `json:"chat_id"`
	ViewerID int64 `json:"viewer_id"`
}

func (c MarkSeenCommand) CommandType() string {
	return "message.mark_seen"
}

func (c MarkSeenCommand) Validate() error {
	if c.ChatID == 0 {
		return fmt.Errorf("%w: chat_id is required", chat_errors.ErrInvalidInput)
	}
	if c.ViewerID == 0 {
		return fmt.Errorf("%w: viewer_id is required", chat_errors.ErrInvalidInput)
	}
	return nil
}
