package commands

import (
	"fmt"

	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
)

// CreateChatCommand explicitly creates a chat between two users. Unlike the
// resolve-or-create path used by message sending, it fails when the chat
// already exists.
type CreateChatCommand struct {
	HostID        int64 `json:"host_id"`
	ParticipantID int64 `json:"participant_id"`
}

func (c CreateChatCommand) CommandType() string {
	return "chat.create"
}

func (c CreateChatCommand) Validate() error {
	if c.HostID == 0 || c.ParticipantID == 0 {
		return fmt.Errorf("%w: host and participant IDs are required", chat_errors.ErrInvalidInput)
	}
	if c.HostID == c.ParticipantID {
		return fmt.Errorf("%w: a chat needs two distinct users", chat_errors.ErrInvalidInput)
	}
	return nil
}
