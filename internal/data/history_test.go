package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
)

func TestHistoryRepo_RecordAndList(t *testing.T) {
	r, err := NewHistoryRepo(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryRepo failed: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	types := []domain.EventType{domain.EventStarted, domain.EventWarning, domain.EventReady}
	for i, typ := range types {
		ev := &domain.SupplyEvent{
			ObjectKey:  "object_7",
			ObjectName: "Объект №7",
			Type:       typ,
			ActorID:    "userA",
			ActorName:  "User A",
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := r.Record(ctx, ev); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if ev.ID == "" {
			t.Error("Record must assign an ID")
		}
	}

	events, err := r.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != domain.EventReady {
		t.Errorf("newest event = %s, want ready", events[0].Type)
	}
	if !events[0].OccurredAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("OccurredAt = %v", events[0].OccurredAt)
	}
}

func TestHistoryRepo_CleanupBefore(t *testing.T) {
	r, err := NewHistoryRepo(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryRepo failed: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		ev := &domain.SupplyEvent{
			ObjectKey:  "radar_orbit",
			ObjectName: "РЛС Орбита",
			Type:       domain.EventStarted,
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := r.Record(ctx, ev); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	removed, err := r.CleanupBefore(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("CleanupBefore failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	events, err := r.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 remaining events, got %d", len(events))
	}
}
