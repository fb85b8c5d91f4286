package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/user"
	"github.com/emanuuele/girls-chat-api/internal/push"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
	"github.com/emanuuele/girls-chat-api/pkg/logger"
)

// PushSender posts one chunk of notifications to the provider.
type PushSender interface {
	SendChunk(ctx context.Context, chunk []push.Message) error
}

// PushService manages device tokens and fans notifications out to a user's
// devices. Malformed tokens are skipped with a warning; chunks are sent
// independently so one provider rejection never drops the rest.
type PushService struct {
	tokens repository.DeviceTokenRepository
	sender PushSender
	log    *logger.Logger
}

func NewPushService(tokens repository.DeviceTokenRepository, sender PushSender, log *logger.Logger) *PushService {
	return &PushService{tokens: tokens, sender: sender, log: log}
}

// RegisterToken stores a device token for the user. Re-registering the same
// token is a no-op.
func (s *PushService) RegisterToken(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	if userID == 0 || token == "" {
		return chat_errors.ErrInvalidInput
	}
	if !push.IsExpoPushToken(token) {
		return fmt.Errorf("%w: not an expo push token", chat_errors.ErrInvalidInput)
	}
	return s.tokens.Upsert(ctx, &user.DeviceToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}

// RevokeToken removes a token everywhere it appears, e.g. after the provider
// reports the device unregistered.
func (s *PushService) RevokeToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return chat_errors.ErrInvalidInput
	}
	return s.tokens.DeleteByToken(ctx, token)
}

// NotifyUser sends a notification to every registered device of one user.
// A user with no valid tokens is not an error.
func (s *PushService) NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]interface{}) error {
	if userID == 0 {
		return chat_errors.ErrInvalidInput
	}

	tokens, err := s.tokens.GetUserTokens(ctx, userID)
	if err != nil {
		return err
	}

	messages := make([]push.Message, 0, len(tokens))
	for _, t := range tokens {
		if !push.IsExpoPushToken(t.Token) {
			s.log.Warnf("push: skipping malformed token for user %d", userID)
			continue
		}
		messages = append(messages, push.Message{
			To:       t.Token,
			Title:    title,
			Sound:    "default",
			Body:     body,
			Data:     data,
			Priority: "high",
		})
	}
	if len(messages) == 0 {
		return nil
	}

	// Chunks are independent; a rejected chunk is logged and the rest still go.
	for _, chunk := range push.Chunk(messages, push.ChunkSize) {
		if err := s.sender.SendChunk(ctx, chunk); err != nil {
			s.log.Errorf("push: chunk send for user %d failed: %v", userID, err)
		}
	}
	return nil
}
