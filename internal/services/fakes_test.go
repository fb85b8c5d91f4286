package services

import (
	"context"
	"sync"
	"time"

	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	"github.com/emanuuele/girls-chat-api/internal/domain/message"
	"github.com/emanuuele/girls-chat-api/internal/domain/outbox"
	"github.com/emanuuele/girls-chat-api/internal/domain/user"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
	"github.com/emanuuele/girls-chat-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.DevelopmentMode)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]user.User
}

func newFakeUserRepo(seed ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int64]user.User{}}
	for _, u := range seed {
		r.nextID++
		u.ID = r.nextID
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return chat_errors.ErrAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, chat_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, chat_errors.ErrNotFound
}

func (r *fakeUserRepo) ListExcept(ctx context.Context, excludeID int64) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.User
	for _, u := range r.users {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return chat_errors.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return chat_errors.ErrNotFound
	}
	u.LastLoginAt.Time = at
	u.LastLoginAt.Valid = true
	r.users[id] = u
	return nil
}

type fakeChatRepo struct {
	mu           sync.Mutex
	nextID       int64
	chats        map[int64]chat.Chat
	participants []chat.Participant

	createErr error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[int64]chat.Chat{}}
}

func (r *fakeChatRepo) Create(ctx context.Context, c *chat.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.chats {
		if existing.PairKey == c.PairKey {
			return chat_errors.ErrAlreadyExists
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.chats[c.ID] = *c
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id int64) (chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return chat.Chat{}, chat_errors.ErrNotFound
	}
	c.Participants = r.participantsOf(id)
	return c, nil
}

func (r *fakeChatRepo) GetChatBetween(ctx context.Context, userA, userB int64) (chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := chat.PairKeyFor(userA, userB)
	var found *chat.Chat
	for _, c := range r.chats {
		if c.PairKey == key && (found == nil || c.ID < found.ID) {
			copied := c
			found = &copied
		}
	}
	if found == nil {
		return chat.Chat{}, chat_errors.ErrNotFound
	}
	found.Participants = r.participantsOf(found.ID)
	return *found, nil
}

func (r *fakeChatRepo) GetUserChats(ctx context.Context, userID int64) ([]chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Chat
	for _, p := range r.participants {
		if p.UserID != userID {
			continue
		}
		c := r.chats[p.ChatID]
		c.Participants = r.participantsOf(c.ID)
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeChatRepo) UpdateLastMessage(ctx context.Context, chatID int64, text string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return nil
	}
	if c.LastMessageAt.Valid && c.LastMessageAt.Time.After(at) {
		return nil
	}
	c.LastMessage = text
	c.LastMessageAt.Time = at
	c.LastMessageAt.Valid = true
	r.chats[chatID] = c
	return nil
}

func (r *fakeChatRepo) AddParticipant(ctx context.Context, p *chat.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.ChatID == p.ChatID && existing.UserID == p.UserID {
			return chat_errors.ErrAlreadyExists
		}
	}
	p.ID = int64(len(r.participants) + 1)
	r.participants = append(r.participants, *p)
	return nil
}

func (r *fakeChatRepo) RemoveParticipant(ctx context.Context, chatID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.participants {
		if p.ChatID == chatID && p.UserID == userID {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return nil
		}
	}
	return chat_errors.ErrNotFound
}

func (r *fakeChatRepo) GetParticipants(ctx context.Context, chatID int64) ([]chat.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participantsOf(chatID), nil
}

func (r *fakeChatRepo) IsParticipant(ctx context.Context, chatID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ChatID == chatID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeChatRepo) participantsOf(chatID int64) []chat.Participant {
	var out []chat.Participant
	for _, p := range r.participants {
		if p.ChatID == chatID {
			out = append(out, p)
		}
	}
	return out
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages []message.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) GetChatMessages(ctx context.Context, chatID int64) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []message.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkSeen(ctx context.Context, chatID, viewerID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for i, m := range r.messages {
		if m.ChatID == chatID && m.SentBy != viewerID && !m.Seen {
			r.messages[i].Seen = true
			affected++
		}
	}
	return affected, nil
}

func (r *fakeMessageRepo) CountUnseen(ctx context.Context, chatID, viewerID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if m.ChatID == chatID && m.SentBy != viewerID && !m.Seen {
			count++
		}
	}
	return count, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	nextID        int64
	notifications []chat.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *chat.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) GetUserNotifications(ctx context.Context, userID int64) ([]chat.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkSeen(ctx context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications[i].Seen = true
			return nil
		}
	}
	return chat_errors.ErrNotFound
}

type fakeDeviceTokenRepo struct {
	mu     sync.Mutex
	nextID int64
	tokens []user.DeviceToken
}

func newFakeDeviceTokenRepo() *fakeDeviceTokenRepo {
	return &fakeDeviceTokenRepo{}
}

func (r *fakeDeviceTokenRepo) Upsert(ctx context.Context, t *user.DeviceToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tokens {
		if existing.UserID == t.UserID && existing.Token == t.Token {
			return nil
		}
	}
	r.nextID++
	t.ID = r.nextID
	r.tokens = append(r.tokens, *t)
	return nil
}

func (r *fakeDeviceTokenRepo) GetUserTokens(ctx context.Context, userID int64) ([]user.DeviceToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.DeviceToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeDeviceTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	nextID int64
	events []outbox.Event
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{}
}

func (r *fakeOutboxRepo) Create(ctx context.Context, e *outbox.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	if e.Status == "" {
		e.Status = outbox.StatusPending
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeOutboxRepo) GetPending(ctx context.Context, limit int) ([]outbox.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []outbox.Event
	for _, e := range r.events {
		if e.Status == outbox.StatusPending {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkCompleted(ctx context.Context, id int64) error {
	return r.setStatus(id, outbox.StatusCompleted, "")
}

func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, id int64, errorMsg string) error {
	return r.setStatus(id, outbox.StatusFailed, errorMsg)
}

func (r *fakeOutboxRepo) IncrementRetry(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.ID == id {
			r.events[i].RetryCount++
			return nil
		}
	}
	return chat_errors.ErrNotFound
}

func (r *fakeOutboxRepo) setStatus(id int64, status outbox.Status, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e.ID == id {
			r.events[i].Status = status
			r.events[i].Error = errorMsg
			return nil
		}
	}
	return chat_errors.ErrNotFound
}

func (r *fakeOutboxRepo) byID(id int64) (outbox.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			return e, true
		}
	}
	return outbox.Event{}, false
}

type fakePublisher struct {
	mu        sync.Mutex
	published map[string][][]byte
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: map[string][][]byte{}}
}

func (p *fakePublisher) count(channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published[channel])
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published[channel] = append(p.published[channel], payload)
	return nil
}

type fakePresence struct {
	online map[int64]bool
	err    error
}

func (p *fakePresence) IsOnline(ctx context.Context, userID int64) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	return p.online[userID], nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

type notifyCall struct {
	UserID int64
	Title  string
	Body   string
	Data   map[string]interface{}
}

func (n *fakeNotifier) NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{UserID: userID, Title: title, Body: body, Data: data})
	return n.err
}

type fakeLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (l *fakeLimiter) AllowMessage(ctx context.Context, userID int64) (bool, error) {
	l.calls++
	return l.allowed, l.err
}
