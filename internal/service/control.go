package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/usecase"
)

// ErrNotPermitted is returned when the caller holds none of the configured
// moderator or administrator designations.
var ErrNotPermitted = errors.New("caller is not allowed to operate supplies")

const defaultHistoryScanLimit = 50

// Actor identifies who pressed a control.
type Actor struct {
	ID      string
	Name    string
	GuildID string
}

// StartResult reports the outcome of a start request for user feedback.
type StartResult struct {
	Object    domain.SupplyObject
	Record    *domain.TimerRecord
	Rejected  bool   // a timer was already running
	Remaining string // countdown shown on rejection
}

// ControlConfig holds the control surface settings.
type ControlConfig struct {
	NotificationChannelID string
	ControlChannelID      string
	HistoryScanLimit      int // messages inspected by the stale-message sweep
	RecentEvents          int // history entries shown in the status summary
}

// ControlSurface exposes the moderator-facing start and cancel operations
// and maintains the status message in the control channel.
type ControlSurface struct {
	timers  *usecase.TimerUsecase
	msgs    repo.MessageRepo
	history repo.HistoryRepo
	perms   repo.PermissionRepo
	cfg     ControlConfig

	now func() time.Time

	mu               sync.Mutex
	controlMessageID string
}

// NewControlSurface creates a new control surface.
func NewControlSurface(
	timers *usecase.TimerUsecase,
	msgs repo.MessageRepo,
	history repo.HistoryRepo,
	perms repo.PermissionRepo,
	cfg ControlConfig,
) *ControlSurface {
	if cfg.HistoryScanLimit <= 0 {
		cfg.HistoryScanLimit = defaultHistoryScanLimit
	}
	if cfg.RecentEvents <= 0 {
		cfg.RecentEvents = 5
	}
	return &ControlSurface{
		timers:  timers,
		msgs:    msgs,
		history: history,
		perms:   perms,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetNow overrides the clock; tests use it to advance time without sleeping.
func (s *ControlSurface) SetNow(now func() time.Time) {
	s.now = now
}

// HandleStart starts a supply timer on behalf of a moderator. A timer that
// is already running is reported as a rejection carrying the remaining time,
// not an error.
func (s *ControlSurface) HandleStart(ctx context.Context, objectKey string, actor Actor) (*StartResult, error) {
	allowed, err := s.perms.CanOperate(ctx, actor.GuildID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check permissions: %w", err)
	}
	if !allowed {
		return nil, ErrNotPermitted
	}

	obj, ok := domain.LookupObject(objectKey)
	if !ok {
		return nil, usecase.ErrUnknownObject
	}

	active, err := s.timers.IsActive(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if !active {
		// the slot is free: clear out whatever a previous run left behind
		s.sweepStale(ctx, obj)
	}

	rec, err := s.timers.Start(ctx, objectKey, actor.ID, actor.Name)
	if errors.Is(err, usecase.ErrAlreadyActive) {
		remaining, rerr := s.timers.Remaining(ctx, objectKey)
		if rerr != nil {
			remaining = ""
		}
		return &StartResult{Object: obj, Rejected: true, Remaining: remaining}, nil
	}
	if err != nil {
		return nil, err
	}

	if s.cfg.NotificationChannelID != "" {
		content := renderStartNotification(rec, s.now())
		msgID, serr := s.msgs.Send(ctx, s.cfg.NotificationChannelID, content)
		if serr != nil {
			fmt.Printf("[SuppliesControl] Failed to send start notification for %s: %v\n", objectKey, serr)
		} else if err := s.timers.SetStartMessage(ctx, objectKey, msgID); err != nil {
			fmt.Printf("[SuppliesControl] %v\n", err)
		} else {
			rec.Messages.StartMessageID = msgID
		}
	}

	return &StartResult{Object: obj, Record: rec}, nil
}

// HandleCancel cancels a running supply timer and deletes its notification
// messages best-effort.
func (s *ControlSurface) HandleCancel(ctx context.Context, objectKey string, actor Actor) (*domain.TimerRecord, error) {
	allowed, err := s.perms.CanOperate(ctx, actor.GuildID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check permissions: %w", err)
	}
	if !allowed {
		return nil, ErrNotPermitted
	}

	rec, err := s.timers.Cancel(ctx, objectKey, actor.ID, actor.Name)
	if err != nil {
		return nil, err
	}

	if s.cfg.NotificationChannelID != "" {
		for _, id := range []string{rec.Messages.StartMessageID, rec.Messages.WarningMessageID} {
			if id == "" {
				continue
			}
			if derr := s.msgs.Delete(ctx, s.cfg.NotificationChannelID, id); derr != nil && !errors.Is(derr, repo.ErrMessageNotFound) {
				fmt.Printf("[SuppliesControl] Failed to delete message %s for %s: %v\n", id, objectKey, derr)
			}
		}
	}

	return rec, nil
}

// sweepStale removes leftover notification messages of a previous run. The
// timer record is already gone at this point, so stored message IDs are not
// available and the sweep falls back to a content scan of recent channel
// history — a degraded recovery path, not the primary mechanism.
func (s *ControlSurface) sweepStale(ctx context.Context, obj domain.SupplyObject) {
	if s.cfg.NotificationChannelID == "" {
		return
	}

	msgs, err := s.msgs.Recent(ctx, s.cfg.NotificationChannelID, s.cfg.HistoryScanLimit)
	if err != nil {
		fmt.Printf("[SuppliesControl] Failed to scan channel history for %s: %v\n", obj.Key, err)
		return
	}

	botID := s.msgs.BotUserID()
	deleted := 0
	for _, m := range msgs {
		if m.AuthorID != botID || !strings.Contains(m.Content, obj.Name) {
			continue
		}
		if err := s.msgs.Delete(ctx, s.cfg.NotificationChannelID, m.ID); err != nil {
			if !errors.Is(err, repo.ErrMessageNotFound) {
				fmt.Printf("[SuppliesControl] Failed to delete stale message %s: %v\n", m.ID, err)
			}
			continue
		}
		deleted++
	}
	if deleted > 0 {
		fmt.Printf("[SuppliesControl] Deleted %d stale messages for %s\n", deleted, obj.Key)
	}
}

// StatusSummary renders the control channel status text.
func (s *ControlSurface) StatusSummary(ctx context.Context) (string, error) {
	active, err := s.timers.ActiveTimers(ctx)
	if err != nil {
		return "", err
	}

	var events []*domain.SupplyEvent
	if s.history != nil {
		events, err = s.history.ListRecent(ctx, s.cfg.RecentEvents)
		if err != nil {
			fmt.Printf("[SuppliesControl] Failed to load recent events: %v\n", err)
			events = nil
		}
	}

	return renderControlSummary(active, events, s.now()), nil
}

// RefreshControlMessage keeps a single status message in the control channel
// edited in place; it is re-sent when missing or deleted out-of-band.
func (s *ControlSurface) RefreshControlMessage(ctx context.Context) {
	if s.cfg.ControlChannelID == "" {
		return
	}

	content, err := s.StatusSummary(ctx)
	if err != nil {
		fmt.Printf("[SuppliesControl] Failed to build status summary: %v\n", err)
		return
	}

	s.mu.Lock()
	messageID := s.controlMessageID
	s.mu.Unlock()

	if messageID != "" {
		err := s.msgs.Edit(ctx, s.cfg.ControlChannelID, messageID, content)
		if err == nil {
			return
		}
		if !errors.Is(err, repo.ErrMessageNotFound) {
			fmt.Printf("[SuppliesControl] Failed to edit control message: %v\n", err)
			return
		}
		// fall through and send a fresh one
	}

	newID, err := s.msgs.Send(ctx, s.cfg.ControlChannelID, content)
	if err != nil {
		fmt.Printf("[SuppliesControl] Failed to send control message: %v\n", err)
		return
	}

	s.mu.Lock()
	s.controlMessageID = newID
	s.mu.Unlock()
}
