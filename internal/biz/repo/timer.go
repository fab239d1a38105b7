package repo

import (
	"context"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
)

// TimerRepo is the supply timer persistence interface.
// Backed by a single JSON file; a missing or corrupt file reads as empty.
type TimerRepo interface {
	// Get returns the record for an object key, or nil when absent.
	Get(ctx context.Context, objectKey string) (*domain.TimerRecord, error)

	// Put creates or replaces the record for its object key.
	Put(ctx context.Context, rec *domain.TimerRecord) error

	// Delete removes the record for an object key.
	// Deleting an absent key is not an error.
	Delete(ctx context.Context, objectKey string) error

	// List returns all stored records keyed by object key.
	List(ctx context.Context) (map[string]*domain.TimerRecord, error)

	// SetWarningSent marks the warning as sent and stores the warning
	// message ID (empty when the send failed).
	SetWarningSent(ctx context.Context, objectKey, warningMessageID string) error

	// SetStartMessage stores the start notification message ID.
	SetStartMessage(ctx context.Context, objectKey, messageID string) error

	// ClearStartMessage drops a stale start message reference.
	ClearStartMessage(ctx context.Context, objectKey string) error

	// ClearWarningMessage drops a stale warning message reference.
	ClearWarningMessage(ctx context.Context, objectKey string) error
}
