package repo

import (
	"context"
	"errors"
)

// ErrMessageNotFound is returned when a referenced message no longer exists
// in the channel (deleted out-of-band).
var ErrMessageNotFound = errors.New("message not found")

// ChannelMessage is a recent message as seen in channel history.
type ChannelMessage struct {
	ID       string
	AuthorID string
	Content  string
}

// MessageRepo is the outbound messaging capability: sending, editing and
// deleting channel messages plus listing recent history. Rate limiting and
// retries live inside the platform SDK, not here.
type MessageRepo interface {
	// Send posts content to a channel and returns the new message ID.
	Send(ctx context.Context, channelID, content string) (string, error)

	// Edit replaces the content of a previously sent message.
	// Returns ErrMessageNotFound when the message is gone.
	Edit(ctx context.Context, channelID, messageID, content string) error

	// Delete removes a message.
	// Returns ErrMessageNotFound when it is already gone.
	Delete(ctx context.Context, channelID, messageID string) error

	// Recent lists up to limit recent messages of a channel, newest first.
	Recent(ctx context.Context, channelID string, limit int) ([]*ChannelMessage, error)

	// BotUserID returns the user ID the client authenticated as.
	BotUserID() string
}

// PermissionRepo answers whether a caller may operate the supply controls.
type PermissionRepo interface {
	CanOperate(ctx context.Context, guildID, userID string) (bool, error)
}
