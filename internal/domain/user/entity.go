package user

import (
	"database/sql"
	"time"
)

// User represents the users table
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string `gorm:"not null"`
	Bio          string
	UF           string `gorm:"column:uf"`
	City         string
	AvatarURL    string
	LastLoginAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeviceToken represents the device_tokens table.
// A user may hold several tokens (one per device); the (user_id, token)
// pair is unique so registration stays idempotent.
type DeviceToken struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_user_token"`
	Token     string `gorm:"not null;uniqueIndex:idx_user_token;index:idx_token"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}
