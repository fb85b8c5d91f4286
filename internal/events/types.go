package events

import "context"

// Event types, format: domain.action
const (
	EventTypeMessageCreated = "message.created"
	EventTypeChatCreated    = "chat.created"
	EventTypeUserUpdated    = "user.updated"
)

// Aggregate type constants
const (
	AggregateTypeMessage = "message"
	AggregateTypeChat    = "chat"
	AggregateTypeUser    = "user"
)

// Redis channel prefixes. A sent message is published on both the chat
// channel (everyone viewing that chat) and the two user channels (inbox/list
// updates for sender and receiver).
const (
	ChannelPrefixChat = "channel:chat:"
	ChannelPrefixUser = "channel:user:"
	ChannelPattern    = "channel:*"
)

// Publisher pushes a serialized event envelope onto a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
