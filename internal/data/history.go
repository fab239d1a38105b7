package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// historyRepo implements the supply event log on SQLite
type historyRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new history repository
func NewHistoryRepo(dbPath string) (repo.HistoryRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS supply_events (
			id TEXT PRIMARY KEY,
			object_key TEXT NOT NULL,
			object_name TEXT NOT NULL,
			event_type TEXT NOT NULL,
			actor_id TEXT NOT NULL DEFAULT '',
			actor_name TEXT NOT NULL DEFAULT '',
			occurred_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_supply_events_occurred_at ON supply_events(occurred_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &historyRepo{db: db}, nil
}

// Record appends an event
func (r *historyRepo) Record(ctx context.Context, ev *domain.SupplyEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO supply_events (id, object_key, object_name, event_type, actor_id, actor_name, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID,
		ev.ObjectKey,
		ev.ObjectName,
		string(ev.Type),
		ev.ActorID,
		ev.ActorName,
		ev.OccurredAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// ListRecent lists the newest events first
func (r *historyRepo) ListRecent(ctx context.Context, limit int) ([]*domain.SupplyEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, object_key, object_name, event_type, actor_id, actor_name, occurred_at
		FROM supply_events
		ORDER BY occurred_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.SupplyEvent
	for rows.Next() {
		var ev domain.SupplyEvent
		var eventType string
		var occurredAt int64
		if err := rows.Scan(&ev.ID, &ev.ObjectKey, &ev.ObjectName, &eventType, &ev.ActorID, &ev.ActorName, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = domain.EventType(eventType)
		ev.OccurredAt = time.Unix(occurredAt, 0)
		events = append(events, &ev)
	}

	return events, rows.Err()
}

// CleanupBefore removes old events
func (r *historyRepo) CleanupBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM supply_events WHERE occurred_at < ?
	`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup events: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (r *historyRepo) Close() error {
	return r.db.Close()
}
