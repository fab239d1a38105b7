package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
)

// Errors the control surface distinguishes from plain failures.
var (
	ErrUnknownObject = errors.New("unknown supply object")
	ErrAlreadyActive = errors.New("timer already active for object")
	ErrNotActive     = errors.New("no active timer for object")
)

// TimerConfig holds the timing rules for supply deliveries.
type TimerConfig struct {
	Duration      time.Duration // full delivery cooldown
	WarningWindow time.Duration // how close to the end the warning fires
}

// TimerUsecase implements the supply timer business operations. Reads never
// mutate the store; expired records are only removed by ExpireDue, which the
// poller invokes explicitly.
type TimerUsecase struct {
	timers  repo.TimerRepo
	history repo.HistoryRepo
	cfg     TimerConfig

	now func() time.Time
}

// NewTimerUsecase creates a new timer usecase.
func NewTimerUsecase(timers repo.TimerRepo, history repo.HistoryRepo, cfg TimerConfig) *TimerUsecase {
	return &TimerUsecase{
		timers:  timers,
		history: history,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetNow overrides the clock; tests use it to advance time without sleeping.
func (uc *TimerUsecase) SetNow(now func() time.Time) {
	uc.now = now
}

// Config returns the timing rules the usecase was built with.
func (uc *TimerUsecase) Config() TimerConfig {
	return uc.cfg
}

// Start creates a fresh timer for an object. A record that has already
// expired does not block the slot; an unexpired one does. The new record
// starts with WarningSent unset, so a restarted timer gets a fresh warning.
func (uc *TimerUsecase) Start(ctx context.Context, objectKey, actorID, actorName string) (*domain.TimerRecord, error) {
	obj, ok := domain.LookupObject(objectKey)
	if !ok {
		return nil, ErrUnknownObject
	}

	existing, err := uc.timers.Get(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read timer: %w", err)
	}
	now := uc.now()
	if existing != nil && !existing.Expired(now) {
		return nil, ErrAlreadyActive
	}

	rec := &domain.TimerRecord{
		ObjectKey:       objectKey,
		ObjectName:      obj.Name,
		Emoji:           obj.Emoji,
		StartedBy:       actorID,
		StartedByName:   actorName,
		StartTime:       now,
		EndTime:         now.Add(uc.cfg.Duration),
		DurationMinutes: int(uc.cfg.Duration / time.Minute),
	}
	if err := uc.timers.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save timer: %w", err)
	}

	uc.recordEvent(ctx, rec, domain.EventStarted, actorID, actorName)
	fmt.Printf("[Timers] Started %s for %s (%s)\n",
		objectKey, domain.FormatDurationMinutes(rec.DurationMinutes), actorName)
	return rec, nil
}

// IsActive reports whether an unexpired timer exists for the key.
// Pure read: an expired record is reported inactive but left in place for
// the sweep to remove.
func (uc *TimerUsecase) IsActive(ctx context.Context, objectKey string) (bool, error) {
	rec, err := uc.timers.Get(ctx, objectKey)
	if err != nil {
		return false, fmt.Errorf("failed to read timer: %w", err)
	}
	return rec != nil && !rec.Expired(uc.now()), nil
}

// Remaining returns the countdown for an object in the form users see it.
func (uc *TimerUsecase) Remaining(ctx context.Context, objectKey string) (string, error) {
	rec, err := uc.timers.Get(ctx, objectKey)
	if err != nil {
		return "", fmt.Errorf("failed to read timer: %w", err)
	}
	if rec == nil {
		return domain.StatusInactive, nil
	}
	now := uc.now()
	if rec.Expired(now) {
		return domain.StatusExpired, nil
	}
	return domain.FormatRemaining(rec.Remaining(now)), nil
}

// ActiveTimers returns all unexpired records keyed by object key.
func (uc *TimerUsecase) ActiveTimers(ctx context.Context) (map[string]*domain.TimerRecord, error) {
	all, err := uc.timers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}
	now := uc.now()
	active := make(map[string]*domain.TimerRecord, len(all))
	for key, rec := range all {
		if !rec.Expired(now) {
			active[key] = rec
		}
	}
	return active, nil
}

// ExpireDue removes every record whose end time has passed and returns them.
// This is the only path that expires timers; the caller owns any external
// cleanup such as deleting notification messages.
func (uc *TimerUsecase) ExpireDue(ctx context.Context) (map[string]*domain.TimerRecord, error) {
	all, err := uc.timers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}
	now := uc.now()
	expired := make(map[string]*domain.TimerRecord)
	for key, rec := range all {
		if !rec.Expired(now) {
			continue
		}
		if err := uc.timers.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to delete expired timer %s: %w", key, err)
		}
		expired[key] = rec
	}
	return expired, nil
}

// Cancel removes the timer for an object and returns the removed record so
// the caller can clean up its notification messages.
func (uc *TimerUsecase) Cancel(ctx context.Context, objectKey, actorID, actorName string) (*domain.TimerRecord, error) {
	rec, err := uc.timers.Get(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read timer: %w", err)
	}
	if rec == nil {
		return nil, ErrNotActive
	}
	if err := uc.timers.Delete(ctx, objectKey); err != nil {
		return nil, fmt.Errorf("failed to delete timer: %w", err)
	}

	uc.recordEvent(ctx, rec, domain.EventCancelled, actorID, actorName)
	fmt.Printf("[Timers] Cancelled %s by %s\n", objectKey, actorName)
	return rec, nil
}

// MarkWarningSent sets the sticky warning flag and stores the warning
// message ID. The flag is set even when the send failed, so the warning is
// at most once per timer lifecycle.
func (uc *TimerUsecase) MarkWarningSent(ctx context.Context, objectKey, warningMessageID string) error {
	if err := uc.timers.SetWarningSent(ctx, objectKey, warningMessageID); err != nil {
		return fmt.Errorf("failed to mark warning sent: %w", err)
	}
	return nil
}

// SetStartMessage stores the start notification message ID for later edits.
func (uc *TimerUsecase) SetStartMessage(ctx context.Context, objectKey, messageID string) error {
	if err := uc.timers.SetStartMessage(ctx, objectKey, messageID); err != nil {
		return fmt.Errorf("failed to save start message ref: %w", err)
	}
	return nil
}

// ClearStartMessage drops a stale start message reference.
func (uc *TimerUsecase) ClearStartMessage(ctx context.Context, objectKey string) error {
	if err := uc.timers.ClearStartMessage(ctx, objectKey); err != nil {
		return fmt.Errorf("failed to clear start message ref: %w", err)
	}
	return nil
}

// ClearWarningMessage drops a stale warning message reference.
func (uc *TimerUsecase) ClearWarningMessage(ctx context.Context, objectKey string) error {
	if err := uc.timers.ClearWarningMessage(ctx, objectKey); err != nil {
		return fmt.Errorf("failed to clear warning message ref: %w", err)
	}
	return nil
}

// recordEvent appends to the history log, best-effort.
func (uc *TimerUsecase) recordEvent(ctx context.Context, rec *domain.TimerRecord, typ domain.EventType, actorID, actorName string) {
	if uc.history == nil {
		return
	}
	ev := &domain.SupplyEvent{
		ObjectKey:  rec.ObjectKey,
		ObjectName: rec.ObjectName,
		Type:       typ,
		ActorID:    actorID,
		ActorName:  actorName,
		OccurredAt: uc.now(),
	}
	if err := uc.history.Record(ctx, ev); err != nil {
		fmt.Printf("[Timers] Failed to record %s event for %s: %v\n", typ, rec.ObjectKey, err)
	}
}
