package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/commands"
	"github.com/emanuuele/girls-chat-api/internal/domain/message"
	"github.com/emanuuele/girls-chat-api/internal/domain/user"
	"github.com/emanuuele/girls-chat-api/internal/events"
	"github.com/emanuuele/girls-chat-api/internal/proxy"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageFixture struct {
	svc              *MessageService
	chats            *ChatService
	chatRepo         *fakeChatRepo
	messageRepo      *fakeMessageRepo
	outboxRepo       *fakeOutboxRepo
	notificationRepo *fakeNotificationRepo
	limiter          *fakeLimiter
}

func newMessageFixture() *messageFixture {
	userRepo := newFakeUserRepo(
		user.User{Email: "alice@example.com", Name: "Alice"},
		user.User{Email: "bruna@example.com", Name: "Bruna"},
		user.User{Email: "carla@example.com", Name: "Carla"},
	)
	chatRepo := newFakeChatRepo()
	messageRepo := newFakeMessageRepo()
	outboxRepo := newFakeOutboxRepo()
	notificationRepo := newFakeNotificationRepo()
	limiter := &fakeLimiter{allowed: true}

	chats := NewChatService(nil, chatRepo, userRepo, messageRepo, nil)
	svc := NewMessageService(nil, messageRepo, chatRepo, outboxRepo, notificationRepo, chats, proxy.NewAccessControl(chatRepo), limiter, chats.Bus(), testLogger())

	return &messageFixture{
		svc:              svc,
		chats:            chats,
		chatRepo:         chatRepo,
		messageRepo:      messageRepo,
		outboxRepo:       outboxRepo,
		notificationRepo: notificationRepo,
		limiter:          limiter,
	}
}

func TestSendMessageResolvesChatAndPersistsEverything(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{
		SenderID:   1,
		ReceiverID: 2,
		Text:       "oi",
	})
	require.NoError(t, err)
	require.NotZero(t, msg.ID)
	require.NotZero(t, msg.ChatID)

	// Chat summary follows the message.
	c, err := f.chatRepo.GetByID(ctx, msg.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "oi", c.LastMessage)
	require.True(t, c.LastMessageAt.Valid)
	assert.Equal(t, msg.CreatedAt.Unix(), c.LastMessageAt.Time.Unix())

	// A pending fan-out event was enqueued.
	pending, err := f.outboxRepo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events.EventTypeMessageCreated, pending[0].EventType)

	var payload events.MessageCreatedPayload
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	assert.Equal(t, msg.ID, payload.ID)
	assert.EqualValues(t, 1, payload.SentBy)
	assert.EqualValues(t, 2, payload.SentTo)

	// The receiver got an activity-feed entry.
	notifications, err := f.notificationRepo.GetUserNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, msg.ChatID, notifications[0].ChatID)
}

func TestSendMessageReusesExistingChat(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	first, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi"})
	require.NoError(t, err)

	second, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 2, ReceiverID: 1, Text: "oi de volta"})
	require.NoError(t, err)

	assert.Equal(t, first.ChatID, second.ChatID)
	assert.Len(t, f.chatRepo.chats, 1)
}

func TestSendMessageKeepsSummaryMonotonic(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "newest"})
	require.NoError(t, err)

	// An older write arriving late must not clobber the summary.
	err = f.chatRepo.UpdateLastMessage(ctx, msg.ChatID, "stale", msg.CreatedAt.Add(-time.Minute))
	require.NoError(t, err)

	c, err := f.chatRepo.GetByID(ctx, msg.ChatID)
	require.NoError(t, err)
	assert.Equal(t, "newest", c.LastMessage)
}

func TestSendMessageWithExplicitChatChecksMembership(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	c, err := f.chats.ResolveOrCreateChat(ctx, 1, 2)
	require.NoError(t, err)

	// An outsider cannot send into the chat.
	_, err = f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 3, ReceiverID: 1, Text: "intruso", ChatID: c.ID})
	assert.ErrorIs(t, err, chat_errors.ErrForbidden)

	// Nor can a member address a non-member through it.
	_, err = f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 3, Text: "oi", ChatID: c.ID})
	assert.ErrorIs(t, err, chat_errors.ErrForbidden)

	_, err = f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi", ChatID: c.ID})
	assert.NoError(t, err)
}

func TestSendMessageValidation(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "   "})
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)

	_, err = f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 1, Text: "self"})
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
}

func TestSendMessageRateLimited(t *testing.T) {
	f := newMessageFixture()
	f.limiter.allowed = false

	_, err := f.svc.SendMessage(context.Background(), commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi"})
	assert.ErrorIs(t, err, chat_errors.ErrRateLimited)
}

func TestMarkSeenFlipsOnlyReceivedMessages(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "um"})
	require.NoError(t, err)
	chatID := msg.ChatID

	_, err = f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "dois"})
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 2, ReceiverID: 1, Text: "resposta"})
	require.NoError(t, err)

	affected, err := f.svc.MarkSeen(ctx, commands.MarkSeenCommand{ChatID: chatID, ViewerID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	// Second pass finds nothing left to flip.
	affected, err = f.svc.MarkSeen(ctx, commands.MarkSeenCommand{ChatID: chatID, ViewerID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	// The sender's own message is still unseen from the other side.
	unseen, err := f.messageRepo.CountUnseen(ctx, chatID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unseen)
}

func TestSendMessageChargesLimiterOnce(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.SendMessage(context.Background(), commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi"})
	require.NoError(t, err)

	// One logical send must consume exactly one window slot.
	assert.Equal(t, 1, f.limiter.calls)
}

func TestMarkSeenMissingChatIsNotFound(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.MarkSeen(context.Background(), commands.MarkSeenCommand{ChatID: 999, ViewerID: 1})
	assert.ErrorIs(t, err, chat_errors.ErrNotFound)
}

func TestMarkSeenRequiresMembership(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi"})
	require.NoError(t, err)

	_, err = f.svc.MarkSeen(ctx, commands.MarkSeenCommand{ChatID: msg.ChatID, ViewerID: 3})
	assert.ErrorIs(t, err, chat_errors.ErrForbidden)
}

func TestGetChatMessagesRequiresMembership(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi"})
	require.NoError(t, err)

	_, err = f.svc.GetChatMessages(ctx, msg.ChatID, 3)
	assert.ErrorIs(t, err, chat_errors.ErrForbidden)

	messages, err := f.svc.GetChatMessages(ctx, msg.ChatID, 2)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestSendMessageViaBus(t *testing.T) {
	f := newMessageFixture()

	result, err := f.chats.Bus().Execute(context.Background(), commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AggregateID)
}

func TestSendMessageDispatchesThroughBus(t *testing.T) {
	f := newMessageFixture()

	// Rebinding the command type must redirect SendMessage itself.
	canned := message.Message{ID: 42, ChatID: 7, Text: "canned"}
	f.svc.Bus().Register("message.send", commands.HandlerFunc(func(ctx context.Context, cmd commands.Command) (commands.Result, error) {
		return commands.Result{AggregateID: "42", Payload: canned}, nil
	}))

	msg, err := f.svc.SendMessage(context.Background(), commands.SendMessageCommand{SenderID: 1, ReceiverID: 2, Text: "oi"})
	require.NoError(t, err)
	assert.Equal(t, canned, msg)

	// Nothing reached the real pipeline.
	assert.Empty(t, f.messageRepo.messages)
}
