package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/commands"
	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	"github.com/emanuuele/girls-chat-api/internal/domain/message"
	"github.com/emanuuele/girls-chat-api/internal/domain/outbox"
	"github.com/emanuuele/girls-chat-api/internal/events"
	"github.com/emanuuele/girls-chat-api/internal/proxy"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
	"github.com/emanuuele/girls-chat-api/pkg/logger"

	"gorm.io/gorm"
)

// MessageRateLimiter gates how many messages a user may send per window.
type MessageRateLimiter interface {
	AllowMessage(ctx context.Context, userID int64) (bool, error)
}

// MessageService runs the send pipeline: resolve the chat, persist the
// message, refresh the chat summary, and enqueue the fan-out event — all in
// one transaction. Delivery itself is the outbox dispatcher's job.
type MessageService struct {
	db               *gorm.DB
	messageRepo      repository.MessageRepository
	chatRepo         repository.ChatRepository
	outboxRepo       repository.OutboxRepository
	notificationRepo repository.NotificationRepository
	chats            *ChatService
	access           *proxy.AccessControl
	limiter          MessageRateLimiter
	bus              *commands.Bus
	log              *logger.Logger
}

func NewMessageService(
	db *gorm.DB,
	messageRepo repository.MessageRepository,
	chatRepo repository.ChatRepository,
	outboxRepo repository.OutboxRepository,
	notificationRepo repository.NotificationRepository,
	chats *ChatService,
	access *proxy.AccessControl,
	limiter MessageRateLimiter,
	bus *commands.Bus,
	log *logger.Logger,
) *MessageService {
	if bus == nil {
		bus = commands.NewBus()
	}
	svc := &MessageService{
		db:               db,
		messageRepo:      messageRepo,
		chatRepo:         chatRepo,
		outboxRepo:       outboxRepo,
		notificationRepo: notificationRepo,
		chats:            chats,
		access:           access,
		limiter:          limiter,
		bus:              bus,
		log:              log,
	}
	svc.registerHandlers()
	return svc
}

func (s *MessageService) registerHandlers() {
	s.bus.Register("message.send", commands.HandlerFunc(func(ctx context.Context, cmd commands.Command) (commands.Result, error) {
		typed, ok := cmd.(commands.SendMessageCommand)
		if !ok {
			return commands.Result{}, chat_errors.ErrInvalidInput
		}
		msg, err := s.executeSend(ctx, typed)
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{AggregateID: strconv.FormatInt(msg.ID, 10), Payload: msg}, nil
	}))
	s.bus.Register("message.mark_seen", commands.HandlerFunc(func(ctx context.Context, cmd commands.Command) (commands.Result, error) {
		typed, ok := cmd.(commands.MarkSeenCommand)
		if !ok {
			return commands.Result{}, chat_errors.ErrInvalidInput
		}
		affected, err := s.executeMarkSeen(ctx, typed)
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{AggregateID: strconv.FormatInt(typed.ChatID, 10), Payload: affected}, nil
	}))
}

func (s *MessageService) Bus() *commands.Bus {
	return s.bus
}

// SendMessage persists a message and everything that must move with it. When
// cmd.ChatID is zero the chat is resolved (or created) from the user pair;
// when set, both users must already belong to it. The command is dispatched
// through the bus, so transports and bus callers share one pipeline.
func (s *MessageService) SendMessage(ctx context.Context, cmd commands.SendMessageCommand) (message.Message, error) {
	if err := cmd.Validate(); err != nil {
		return message.Message{}, err
	}
	result, err := s.bus.Execute(ctx, cmd)
	if err != nil {
		return message.Message{}, err
	}
	msg, ok := result.Payload.(message.Message)
	if !ok {
		return message.Message{}, chat_errors.ErrInvalidInput
	}
	return msg, nil
}

func (s *MessageService) executeSend(ctx context.Context, cmd commands.SendMessageCommand) (message.Message, error) {
	if err := cmd.Validate(); err != nil {
		return message.Message{}, err
	}
	if cmd.SenderID == cmd.ReceiverID {
		return message.Message{}, chat_errors.ErrInvalidInput
	}

	if s.limiter != nil {
		allowed, err := s.limiter.AllowMessage(ctx, cmd.SenderID)
		if err != nil {
			// Rate limiting is advisory; a broken limiter must not block sends.
			s.log.WarnfCtx(ctx, "rate limiter unavailable: %v", err)
		} else if !allowed {
			return message.Message{}, chat_errors.ErrRateLimited
		}
	}

	targetChat, err := s.resolveChat(ctx, cmd)
	if err != nil {
		return message.Message{}, err
	}

	msg := message.Message{
		ChatID:    targetChat.ID,
		SentBy:    cmd.SenderID,
		SentTo:    cmd.ReceiverID,
		Text:      cmd.Text,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if s.db == nil {
		if err := s.persist(ctx, s.messageRepo, s.chatRepo, s.outboxRepo, s.notificationRepo, &msg); err != nil {
			return message.Message{}, err
		}
		return msg, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.persist(ctx,
			repository.NewMessageRepository(tx),
			repository.NewChatRepository(tx),
			repository.NewOutboxRepository(tx),
			repository.NewNotificationRepository(tx),
			&msg,
		)
	})
	if err != nil {
		return message.Message{}, err
	}
	return msg, nil
}

func (s *MessageService) resolveChat(ctx context.Context, cmd commands.SendMessageCommand) (chat.Chat, error) {
	if cmd.ChatID == 0 {
		return s.chats.ResolveOrCreateChat(ctx, cmd.SenderID, cmd.ReceiverID)
	}

	c, err := s.chatRepo.GetByID(ctx, cmd.ChatID)
	if err != nil {
		return chat.Chat{}, err
	}
	if err := s.access.CanSendMessage(ctx, cmd.SenderID, c.ID); err != nil {
		return chat.Chat{}, err
	}
	ok, err := s.chatRepo.IsParticipant(ctx, c.ID, cmd.ReceiverID)
	if err != nil {
		return chat.Chat{}, err
	}
	if !ok {
		return chat.Chat{}, chat_errors.ErrForbidden
	}
	return c, nil
}

func (s *MessageService) persist(
	ctx context.Context,
	messageRepo repository.MessageRepository,
	chatRepo repository.ChatRepository,
	outboxRepo repository.OutboxRepository,
	notificationRepo repository.NotificationRepository,
	msg *message.Message,
) error {
	if err := messageRepo.Create(ctx, msg); err != nil {
		return err
	}
	if err := chatRepo.UpdateLastMessage(ctx, msg.ChatID, msg.Text, msg.CreatedAt); err != nil {
		return err
	}
	if err := notificationRepo.Create(ctx, &chat.Notification{
		ChatID:    msg.ChatID,
		UserID:    msg.SentTo,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.CreatedAt,
	}); err != nil {
		return err
	}

	payload, err := json.Marshal(events.MessageCreatedPayload{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		SentBy:    msg.SentBy,
		SentTo:    msg.SentTo,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return err
	}
	return outboxRepo.Create(ctx, &outbox.Event{
		EventType:     events.EventTypeMessageCreated,
		AggregateType: events.AggregateTypeMessage,
		AggregateID:   strconv.FormatInt(msg.ID, 10),
		Payload:       payload,
		Status:        outbox.StatusPending,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     msg.CreatedAt,
	})
}

// GetChatMessages returns a chat's messages oldest first. A missing chat is
// ErrNotFound; an existing chat the viewer does not belong to is ErrForbidden.
func (s *MessageService) GetChatMessages(ctx context.Context, chatID, viewerID int64) ([]message.Message, error) {
	if chatID == 0 || viewerID == 0 {
		return nil, chat_errors.ErrInvalidInput
	}
	if _, err := s.chatRepo.GetByID(ctx, chatID); err != nil {
		return nil, err
	}
	if err := s.access.CanViewChat(ctx, viewerID, chatID); err != nil {
		return nil, err
	}
	return s.messageRepo.GetChatMessages(ctx, chatID)
}

// MarkSeen bulk-marks every message in the chat not sent by the viewer.
// Returns the number of rows flipped.
func (s *MessageService) MarkSeen(ctx context.Context, cmd commands.MarkSeenCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	result, err := s.bus.Execute(ctx, cmd)
	if err != nil {
		return 0, err
	}
	affected, _ := result.Payload.(int64)
	return affected, nil
}

func (s *MessageService) executeMarkSeen(ctx context.Context, cmd commands.MarkSeenCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	// The chat must exist before membership is judged, so a bogus ID reads
	// as not-found rather than forbidden.
	if _, err := s.chatRepo.GetByID(ctx, cmd.ChatID); err != nil {
		return 0, err
	}
	if err := s.access.CanViewChat(ctx, cmd.ViewerID, cmd.ChatID); err != nil {
		return 0, err
	}
	return s.messageRepo.MarkSeen(ctx, cmd.ChatID, cmd.ViewerID)
}
