package chat

import (
	"database/sql"
	"fmt"
	"time"
)

// Chat represents the chats table. LastMessage/LastMessageAt are a
// denormalized cache of the newest message, used only as the sort key for
// chat listings; the messages table is the source of truth.
//
// PairKey is the canonicalized participant pair ("min:max" of the two user
// IDs). Its unique index is what guarantees at most one chat per pair even
// when two sends race through the lookup-then-create path.
type Chat struct {
	ID            int64  `gorm:"primaryKey"`
	HostID        int64  `gorm:"not null"`
	PairKey       string `gorm:"uniqueIndex;not null"`
	LastMessage   string
	LastMessageAt sql.NullTime `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relationships
	Participants []Participant `gorm:"foreignKey:ChatID"`
}

// Participant represents the participants table, linking one user to one
// chat. Unique on (chat_id, user_id); a chat holds exactly two rows, which
// is enforced at creation time, not by schema.
type Participant struct {
	ID        int64 `gorm:"primaryKey"`
	ChatID    int64 `gorm:"not null;uniqueIndex:idx_chat_user"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_chat_user"`
	CreatedAt time.Time
}

// Notification represents the notifications table: an unread-activity marker
// scoped to a chat and a user. Independent of Message.Seen.
type Notification struct {
	ID        int64 `gorm:"primaryKey"`
	ChatID    int64 `gorm:"not null"`
	UserID    int64 `gorm:"not null;index"`
	Text      string
	Seen      bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PairKeyFor canonicalizes an unordered user pair into the unique key stored
// on the chat row.
func PairKeyFor(userA, userB int64) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%d:%d", userA, userB)
}

func (Chat) TableName() string {
	return "chats"
}

func (Participant) TableName() string {
	return "participants"
}

func (Notification) TableName() string {
	return "notifications"
}
