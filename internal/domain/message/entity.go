package message

import "time"

// Message represents the messages table. Created once on send; the only
// mutation in normal flow is the one-way seen false->true transition.
type Message struct {
	ID        int64     `gorm:"primaryKey"`
	ChatID    int64     `gorm:"not null;index"`
	SentBy    int64     `gorm:"not null"`
	SentTo    int64     `gorm:"not null"`
	Text      string    `gorm:"type:text;not null"`
	Seen      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Message) TableName() string {
	return "messages"
}
