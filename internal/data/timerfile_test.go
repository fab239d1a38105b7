package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
)

func testRecord() *domain.TimerRecord {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.TimerRecord{
		ObjectKey:       "object_7",
		ObjectName:      "Объект №7",
		Emoji:           "🏭",
		StartedBy:       "1234567890",
		StartedByName:   "User A",
		StartTime:       start,
		EndTime:         start.Add(4 * time.Hour),
		DurationMinutes: 240,
		WarningSent:     true,
		Messages: domain.NotificationRefs{
			StartMessageID:   "msg-start",
			WarningMessageID: "msg-warning",
		},
	}
}

func TestTimerRepo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplies_timers.json")
	ctx := context.Background()

	r, err := NewTimerRepo(path)
	if err != nil {
		t.Fatalf("NewTimerRepo failed: %v", err)
	}
	want := testRecord()
	if err := r.Put(ctx, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// reload through a fresh repo instance to force a full file round-trip
	r2, err := NewTimerRepo(path)
	if err != nil {
		t.Fatalf("NewTimerRepo (reload) failed: %v", err)
	}
	got, err := r2.Get(ctx, "object_7")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("record missing after reload")
	}

	if got.ObjectKey != want.ObjectKey {
		t.Errorf("ObjectKey = %q, want %q", got.ObjectKey, want.ObjectKey)
	}
	if !got.StartTime.Equal(want.StartTime) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, want.StartTime)
	}
	if !got.EndTime.Equal(want.EndTime) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, want.EndTime)
	}
	if got.WarningSent != want.WarningSent {
		t.Errorf("WarningSent = %v, want %v", got.WarningSent, want.WarningSent)
	}
	if got.StartedBy != want.StartedBy || got.StartedByName != want.StartedByName {
		t.Errorf("owner = %s/%s, want %s/%s", got.StartedBy, got.StartedByName, want.StartedBy, want.StartedByName)
	}
	if got.Messages != want.Messages {
		t.Errorf("Messages = %+v, want %+v", got.Messages, want.Messages)
	}
}

func TestTimerRepo_MissingFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplies_timers.json")
	ctx := context.Background()

	r, err := NewTimerRepo(path)
	if err != nil {
		t.Fatalf("NewTimerRepo failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty store, got %d records", len(list))
	}
}

func TestTimerRepo_CorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplies_timers.json")
	ctx := context.Background()

	r, err := NewTimerRepo(path)
	if err != nil {
		t.Fatalf("NewTimerRepo failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List must fail open on corruption, got %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty store, got %d records", len(list))
	}

	// the store stays usable after corruption
	if err := r.Put(ctx, testRecord()); err != nil {
		t.Fatalf("Put after corruption failed: %v", err)
	}
	got, err := r.Get(ctx, "object_7")
	if err != nil || got == nil {
		t.Fatalf("Get after rewrite = %v, %v", got, err)
	}
}

func TestTimerRepo_MessageRefUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplies_timers.json")
	ctx := context.Background()

	r, err := NewTimerRepo(path)
	if err != nil {
		t.Fatalf("NewTimerRepo failed: %v", err)
	}
	rec := testRecord()
	rec.WarningSent = false
	rec.Messages = domain.NotificationRefs{}
	if err := r.Put(ctx, rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := r.SetStartMessage(ctx, "object_7", "start-1"); err != nil {
		t.Fatalf("SetStartMessage failed: %v", err)
	}
	if err := r.SetWarningSent(ctx, "object_7", "warn-1"); err != nil {
		t.Fatalf("SetWarningSent failed: %v", err)
	}

	got, err := r.Get(ctx, "object_7")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.WarningSent {
		t.Error("WarningSent should be set")
	}
	if got.Messages.StartMessageID != "start-1" || got.Messages.WarningMessageID != "warn-1" {
		t.Errorf("refs = %+v", got.Messages)
	}

	if err := r.ClearStartMessage(ctx, "object_7"); err != nil {
		t.Fatalf("ClearStartMessage failed: %v", err)
	}
	got, _ = r.Get(ctx, "object_7")
	if got.Messages.StartMessageID != "" {
		t.Errorf("start ref should be cleared, got %q", got.Messages.StartMessageID)
	}

	// updating a missing key is a quiet no-op
	if err := r.SetStartMessage(ctx, "no_such_object", "x"); err != nil {
		t.Errorf("update of absent key must not fail: %v", err)
	}
}
