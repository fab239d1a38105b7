package repo

import (
	"context"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
)

// HistoryRepo is the supply event log interface.
// Responsible for event persistence (SQLite).
type HistoryRepo interface {
	// Record appends an event. An empty ID is assigned on write.
	Record(ctx context.Context, ev *domain.SupplyEvent) error

	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.SupplyEvent, error)

	// CleanupBefore deletes events older than the given time and returns
	// how many were removed.
	CleanupBefore(ctx context.Context, before time.Time) (int64, error)

	// Close closes the underlying store.
	Close() error
}
