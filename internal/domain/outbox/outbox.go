package outbox

import "time"

// Status represents the processing state of an outbox event
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Event stores domain events written in the same transaction as the rows
// they describe, waiting to be published to Redis by the dispatcher.
type Event struct {
	ID            int64     `gorm:"primaryKey"`
	EventType     string    `gorm:"type:varchar(50);not null"`
	AggregateType string    `gorm:"type:varchar(50);not null"`
	AggregateID   string    `gorm:"type:varchar(36);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	Status        Status    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RetryCount    int       `gorm:"default:0"`
	Error         string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
	ProcessedAt   *time.Time
}

// TableName returns the database table name
func (Event) TableName() string {
	return "outbox_events"
}
