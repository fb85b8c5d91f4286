package events

import "strconv"

// ChatChannel returns the channel addressing everyone currently viewing a chat.
func ChatChannel(chatID int64) string {
	return ChannelPrefixChat + strconv.FormatInt(chatID, 10)
}

// UserChannel returns the channel addressing all of a user's connections,
// regardless of which chat they are viewing.
func UserChannel(userID int64) string {
	return ChannelPrefixUser + strconv.FormatInt(userID, 10)
}

// ChannelsForMessage resolves the full fan-out set for one sent message:
// the chat channel plus both participants' user channels.
func ChannelsForMessage(chatID, sentBy, sentTo int64) []string {
	return []string{
		ChatChannel(chatID),
		UserChannel(sentBy),
		UserChannel(sentTo),
	}
}
