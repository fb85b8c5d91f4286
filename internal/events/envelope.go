package events

import (
	"encoding/json"
	"time"
)

// Envelope is the wire format published to Redis and delivered to WebSocket
// subscribers.
type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// MessageCreatedPayload is the payload carried by message.created events.
type MessageCreatedPayload struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	SentBy    int64     `json:"sentBy"`
	SentTo    int64     `json:"sentTo"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewEnvelope(eventType, aggregateType, aggregateID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}, nil
}
