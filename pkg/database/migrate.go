package database

import (
	"fmt"

	"github.com/emanuuele/girls-chat-api/internal/domain/chat"
	"github.com/emanuuele/girls-chat-api/internal/domain/message"
	"github.com/emanuuele/girls-chat-api/internal/domain/outbox"
	"github.com/emanuuele/girls-chat-api/internal/domain/user"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the application owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&user.DeviceToken{},
		&chat.Chat{},
		&chat.Participant{},
		&chat.Notification{},
		&message.Message{},
		&outbox.Event{},
	)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func TableExists(db *gorm.DB, table string) (bool, error) {
	return db.Migrator().HasTable(table), nil
}

func TableCount(db *gorm.DB, table string) (int64, error) {
	var count int64
	if err := db.Table(table).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	return sqlDB.Close()
}
