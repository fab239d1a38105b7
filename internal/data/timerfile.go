package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
)

// timerFile is the on-disk layout of the supplies timer store.
type timerFile struct {
	ActiveTimers map[string]*timerRecordJSON `json:"active_timers"`
}

type timerRecordJSON struct {
	StartedBy            string               `json:"started_by"`
	StartedByName        string               `json:"started_by_name"`
	StartTime            time.Time            `json:"start_time"`
	EndTime              time.Time            `json:"end_time"`
	DurationMinutes      int                  `json:"duration_minutes"`
	WarningSent          bool                 `json:"warning_sent"`
	ObjectName           string               `json:"object_name"`
	Emoji                string               `json:"emoji"`
	NotificationMessages notificationRefsJSON `json:"notification_messages"`
}

type notificationRefsJSON struct {
	StartMessageID   string `json:"start_message_id"`
	WarningMessageID string `json:"warning_message_id"`
}

// timerRepo implements the timer repository over a single JSON file.
// Every operation is a whole-file read-modify-write under a mutex; a missing
// or corrupt file reads as an empty store.
type timerRepo struct {
	path string
	mu   sync.Mutex
}

// NewTimerRepo creates a new timer repository backed by the given file.
func NewTimerRepo(path string) (repo.TimerRepo, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	r := &timerRepo{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.save(&timerFile{ActiveTimers: map[string]*timerRecordJSON{}}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// load reads the file, treating any failure as an empty store.
func (r *timerRepo) load() *timerFile {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("[TimerStore] Failed to read %s: %v\n", r.path, err)
		}
		return &timerFile{ActiveTimers: map[string]*timerRecordJSON{}}
	}

	var f timerFile
	if err := json.Unmarshal(data, &f); err != nil {
		fmt.Printf("[TimerStore] Corrupt timer file %s, starting empty: %v\n", r.path, err)
		return &timerFile{ActiveTimers: map[string]*timerRecordJSON{}}
	}
	if f.ActiveTimers == nil {
		f.ActiveTimers = map[string]*timerRecordJSON{}
	}
	return &f
}

func (r *timerRepo) save(f *timerFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode timer file: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timer file: %w", err)
	}
	return nil
}

func (r *timerRepo) Get(ctx context.Context, objectKey string) (*domain.TimerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.load().ActiveTimers[objectKey]
	if !ok {
		return nil, nil
	}
	return fromJSON(objectKey, rec), nil
}

func (r *timerRepo) Put(ctx context.Context, rec *domain.TimerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.load()
	f.ActiveTimers[rec.ObjectKey] = toJSON(rec)
	return r.save(f)
}

func (r *timerRepo) Delete(ctx context.Context, objectKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.load()
	if _, ok := f.ActiveTimers[objectKey]; !ok {
		return nil
	}
	delete(f.ActiveTimers, objectKey)
	return r.save(f)
}

func (r *timerRepo) List(ctx context.Context) (map[string]*domain.TimerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.load()
	out := make(map[string]*domain.TimerRecord, len(f.ActiveTimers))
	for key, rec := range f.ActiveTimers {
		out[key] = fromJSON(key, rec)
	}
	return out, nil
}

func (r *timerRepo) SetWarningSent(ctx context.Context, objectKey, warningMessageID string) error {
	return r.update(objectKey, func(rec *timerRecordJSON) {
		rec.WarningSent = true
		rec.NotificationMessages.WarningMessageID = warningMessageID
	})
}

func (r *timerRepo) SetStartMessage(ctx context.Context, objectKey, messageID string) error {
	return r.update(objectKey, func(rec *timerRecordJSON) {
		rec.NotificationMessages.StartMessageID = messageID
	})
}

func (r *timerRepo) ClearStartMessage(ctx context.Context, objectKey string) error {
	return r.update(objectKey, func(rec *timerRecordJSON) {
		rec.NotificationMessages.StartMessageID = ""
	})
}

func (r *timerRepo) ClearWarningMessage(ctx context.Context, objectKey string) error {
	return r.update(objectKey, func(rec *timerRecordJSON) {
		rec.NotificationMessages.WarningMessageID = ""
	})
}

// update applies a mutation to one stored record. Mutating an absent key is
// a no-op: the timer may already have expired between read and write.
func (r *timerRepo) update(objectKey string, fn func(rec *timerRecordJSON)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.load()
	rec, ok := f.ActiveTimers[objectKey]
	if !ok {
		return nil
	}
	fn(rec)
	return r.save(f)
}

func toJSON(rec *domain.TimerRecord) *timerRecordJSON {
	return &timerRecordJSON{
		StartedBy:       rec.StartedBy,
		StartedByName:   rec.StartedByName,
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		DurationMinutes: rec.DurationMinutes,
		WarningSent:     rec.WarningSent,
		ObjectName:      rec.ObjectName,
		Emoji:           rec.Emoji,
		NotificationMessages: notificationRefsJSON{
			StartMessageID:   rec.Messages.StartMessageID,
			WarningMessageID: rec.Messages.WarningMessageID,
		},
	}
}

func fromJSON(objectKey string, rec *timerRecordJSON) *domain.TimerRecord {
	return &domain.TimerRecord{
		ObjectKey:       objectKey,
		ObjectName:      rec.ObjectName,
		Emoji:           rec.Emoji,
		StartedBy:       rec.StartedBy,
		StartedByName:   rec.StartedByName,
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		DurationMinutes: rec.DurationMinutes,
		WarningSent:     rec.WarningSent,
		Messages: domain.NotificationRefs{
			StartMessageID:   rec.NotificationMessages.StartMessageID,
			WarningMessageID: rec.NotificationMessages.WarningMessageID,
		},
	}
}
