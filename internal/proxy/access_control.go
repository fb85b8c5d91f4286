package proxy

import (
	"context"

	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
)

// AccessControl answers membership questions for chats. Both sending into a
// chat and reading it require being one of its two participants.
type AccessControl struct {
	chatRepo repository.ChatRepository
}

func NewAccessControl(chatRepo repository.ChatRepository) *AccessControl {
	return &AccessControl{chatRepo: chatRepo}
}

func (a *AccessControl) CanSendMessage(ctx context.Context, userID, chatID int64) error {
	return a.ensureParticipant(ctx, chatID, userID)
}

func (a *AccessControl) CanViewChat(ctx context.Context, userID, chatID int64) error {
	return a.ensureParticipant(ctx, chatID, userID)
}

func (a *AccessControl) ensureParticipant(ctx context.Context, chatID, userID int64) error {
	if a.chatRepo == nil {
		return chat_errors.ErrForbidden
	}
	ok, err := a.chatRepo.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return chat_errors.ErrForbidden
	}
	return nil
}
