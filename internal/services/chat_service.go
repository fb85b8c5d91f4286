package services

import (
	"context"
	"errors"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/commands"
	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	"github.com/emanuuele/girls-chat-api/internal/domain/user"
	"github.com/emanuuele/girls-chat-api/internal/repository"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"

	"gorm.io/gorm"
)

// ChatService resolves the unique chat for a pair of users and serves chat
// listings. Creation is a two-step sequence (chat row + two participant
// rows); the pair_key unique index is what makes concurrent resolve-or-create
// calls converge on a single chat.
type ChatService struct {
	db          *gorm.DB
	repo        repository.ChatRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	bus         *commands.Bus
}

// ChatSummary is a chat enriched for listing: the other participant and the
// viewer's unseen count.
type ChatSummary struct {
	Chat             chat.Chat
	OtherParticipant user.User
	UnseenCount      int64
}

func NewChatService(db *gorm.DB, repo repository.ChatRepository, userRepo repository.UserRepository, messageRepo repository.MessageRepository, bus *commands.Bus) *ChatService {
	if bus == nil {
		bus = commands.NewBus()
	}
	svc := &ChatService{db: db, repo: repo, userRepo: userRepo, messageRepo: messageRepo, bus: bus}
	svc.registerHandlers()
	return svc
}

func (s *ChatService) registerHandlers() {
	s.bus.Register("chat.create", commands.HandlerFunc(func(ctx context.Context, cmd commands.Command) (commands.Result, error) {
		typed, ok := cmd.(commands.CreateChatCommand)
		if !ok {
			return commands.Result{}, chat_errors.ErrInvalidInput
		}
		created, err := s.executeCreate(ctx, typed)
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{AggregateID: chat.PairKeyFor(typed.HostID, typed.ParticipantID), Payload: created}, nil
	}))
}

func (s *ChatService) Bus() *commands.Bus {
	return s.bus
}

// ChatBetweenUsers is the pure lookup: the chat both users participate in,
// or ErrNotFound.
func (s *ChatService) ChatBetweenUsers(ctx context.Context, userA, userB int64) (chat.Chat, error) {
	if userA == 0 || userB == 0 {
		return chat.Chat{}, chat_errors.ErrInvalidInput
	}
	return s.repo.GetChatBetween(ctx, userA, userB)
}

// ResolveOrCreateChat returns the chat between the two users, creating it
// when none exists. Losing the creation race to a concurrent caller is not
// an error: the insert's conflict is converted into a second lookup, so every
// caller gets the same chat ID.
func (s *ChatService) ResolveOrCreateChat(ctx context.Context, userA, userB int64) (chat.Chat, error) {
	if err := s.validatePair(ctx, userA, userB); err != nil {
		return chat.Chat{}, err
	}

	existing, err := s.repo.GetChatBetween(ctx, userA, userB)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, chat_errors.ErrNotFound) {
		return chat.Chat{}, err
	}

	created, err := s.create(ctx, userA, userB)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, chat_errors.ErrAlreadyExists) {
		return s.repo.GetChatBetween(ctx, userA, userB)
	}
	return chat.Chat{}, err
}

// CreateChat is the explicit creation path: it conflicts when a chat between
// the pair already exists. Dispatched through the bus like every other
// state-changing command.
func (s *ChatService) CreateChat(ctx context.Context, cmd commands.CreateChatCommand) (chat.Chat, error) {
	if err := cmd.Validate(); err != nil {
		return chat.Chat{}, err
	}
	result, err := s.bus.Execute(ctx, cmd)
	if err != nil {
		return chat.Chat{}, err
	}
	created, ok := result.Payload.(chat.Chat)
	if !ok {
		return chat.Chat{}, chat_errors.ErrInvalidInput
	}
	return created, nil
}

func (s *ChatService) executeCreate(ctx context.Context, cmd commands.CreateChatCommand) (chat.Chat, error) {
	if err := s.validatePair(ctx, cmd.HostID, cmd.ParticipantID); err != nil {
		return chat.Chat{}, err
	}

	if _, err := s.repo.GetChatBetween(ctx, cmd.HostID, cmd.ParticipantID); err == nil {
		return chat.Chat{}, chat_errors.ErrAlreadyExists
	} else if !errors.Is(err, chat_errors.ErrNotFound) {
		return chat.Chat{}, err
	}

	return s.create(ctx, cmd.HostID, cmd.ParticipantID)
}

func (s *ChatService) create(ctx context.Context, hostID, participantID int64) (chat.Chat, error) {
	if s.db == nil {
		return s.createDirect(ctx, s.repo, hostID, participantID)
	}

	var created chat.Chat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.createDirect(ctx, repository.NewChatRepository(tx), hostID, participantID)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return chat.Chat{}, err
	}
	return created, nil
}

func (s *ChatService) createDirect(ctx context.Context, repo repository.ChatRepository, hostID, participantID int64) (chat.Chat, error) {
	c := chat.Chat{
		HostID:    hostID,
		PairKey:   chat.PairKeyFor(hostID, participantID),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := repo.Create(ctx, &c); err != nil {
		return chat.Chat{}, err
	}

	for _, userID := range []int64{hostID, participantID} {
		p := &chat.Participant{
			ChatID:    c.ID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		if err := repo.AddParticipant(ctx, p); err != nil {
			return chat.Chat{}, err
		}
	}
	return c, nil
}

func (s *ChatService) validatePair(ctx context.Context, userA, userB int64) error {
	if userA == 0 || userB == 0 {
		return chat_errors.ErrInvalidInput
	}
	if userA == userB {
		return chat_errors.ErrInvalidInput
	}
	for _, id := range []int64{userA, userB} {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetUserChats lists a user's chats sorted by last_message_at descending,
// embedding the other participant and the per-chat unseen count.
func (s *ChatService) GetUserChats(ctx context.Context, userID int64) ([]ChatSummary, error) {
	if userID == 0 {
		return nil, chat_errors.ErrInvalidInput
	}

	chats, err := s.repo.GetUserChats(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary := ChatSummary{Chat: c}
		if otherID, ok := otherParticipantID(c, userID); ok {
			other, err := s.userRepo.GetByID(ctx, otherID)
			if err != nil && !errors.Is(err, chat_errors.ErrNotFound) {
				return nil, err
			}
			summary.OtherParticipant = other
		}
		unseen, err := s.messageRepo.CountUnseen(ctx, c.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnseenCount = unseen
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ShowChat returns one chat with the other participant resolved, after
// checking the viewer belongs to it.
func (s *ChatService) ShowChat(ctx context.Context, chatID, viewerID int64) (ChatSummary, error) {
	if chatID == 0 {
		return ChatSummary{}, chat_errors.ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return ChatSummary{}, err
	}
	if viewerID != 0 {
		ok, err := s.repo.IsParticipant(ctx, chatID, viewerID)
		if err != nil {
			return ChatSummary{}, err
		}
		if !ok {
			return ChatSummary{}, chat_errors.ErrForbidden
		}
	}

	summary := ChatSummary{Chat: c}
	if otherID, ok := otherParticipantID(c, viewerID); ok {
		other, err := s.userRepo.GetByID(ctx, otherID)
		if err != nil && !errors.Is(err, chat_errors.ErrNotFound) {
			return ChatSummary{}, err
		}
		summary.OtherParticipant = other
	}
	return summary, nil
}

func (s *ChatService) GetParticipants(ctx context.Context, chatID int64) ([]chat.Participant, error) {
	return s.repo.GetParticipants(ctx, chatID)
}

func otherParticipantID(c chat.Chat, viewerID int64) (int64, bool) {
	for _, p := range c.Participants {
		if p.UserID != viewerID {
			return p.UserID, true
		}
	}
	return 0, false
}
