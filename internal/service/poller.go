package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/usecase"
)

const (
	defaultPollInterval    = 15 * time.Second
	historyCleanupInterval = 6 * time.Hour
	historyRetention       = 30 * 24 * time.Hour
)

// PollerConfig holds the notification poller settings. The warning window
// comes from the timer usecase, not from here.
type PollerConfig struct {
	Interval              time.Duration
	NotificationChannelID string
	SubscriptionRoleID    string
}

// NotificationPoller watches active supply timers and keeps the notification
// channel in sync: it fires the one-shot warning, announces ready deliveries,
// refreshes countdown text in place and keeps the control message current.
type NotificationPoller struct {
	timers  *usecase.TimerUsecase
	msgs    repo.MessageRepo
	history repo.HistoryRepo
	control *ControlSurface
	cfg     PollerConfig

	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotificationPoller creates a new notification poller.
func NewNotificationPoller(
	timers *usecase.TimerUsecase,
	msgs repo.MessageRepo,
	history repo.HistoryRepo,
	control *ControlSurface,
	cfg PollerConfig,
) *NotificationPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	return &NotificationPoller{
		timers:  timers,
		msgs:    msgs,
		history: history,
		control: control,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetNow overrides the clock; tests use it to advance time without sleeping.
func (p *NotificationPoller) SetNow(now func() time.Time) {
	p.now = now
}

// Start starts the poller
func (p *NotificationPoller) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(2)
	go p.pollLoop()
	go p.cleanupLoop()

	fmt.Printf("[SuppliesPoller] Started with interval %v\n", p.cfg.Interval)
}

// Stop stops the poller and waits for the loops to finish. In-flight sends
// are allowed to complete.
func (p *NotificationPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	fmt.Println("[SuppliesPoller] Stopped")
}

func (p *NotificationPoller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.Tick(context.Background())
		}
	}
}

// cleanupLoop trims old history entries (runs every 6 hours)
func (p *NotificationPoller) cleanupLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(historyCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.cleanupHistory()
		}
	}
}

// Tick runs one poll pass. Exported so the control surface can force an
// immediate refresh right after a start or cancel. The expiry sweep and the
// control-message refresh run even when no notification channel is
// configured; only the message passes are skipped.
func (p *NotificationPoller) Tick(ctx context.Context) {
	if p.cfg.NotificationChannelID != "" {
		active, err := p.timers.ActiveTimers(ctx)
		if err != nil {
			fmt.Printf("[SuppliesPoller] Failed to list active timers: %v\n", err)
		} else {
			for key, rec := range active {
				p.checkWarning(ctx, key, rec)
			}
		}
	}

	expired, err := p.timers.ExpireDue(ctx)
	if err != nil {
		fmt.Printf("[SuppliesPoller] Failed to sweep expired timers: %v\n", err)
	} else {
		for key, rec := range expired {
			p.announceReady(ctx, key, rec)
		}
	}

	if p.cfg.NotificationChannelID != "" {
		p.refreshCountdowns(ctx)
	}

	if p.control != nil {
		p.control.RefreshControlMessage(ctx)
	}
}

// checkWarning fires the one-shot warning once the timer enters the window.
// The sticky flag is set even when the send fails, so a warning is sent at
// most once per timer lifecycle and a failed send is not retried.
func (p *NotificationPoller) checkWarning(ctx context.Context, key string, rec *domain.TimerRecord) {
	now := p.now()
	if rec.WarningSent || !rec.InWarningWindow(now, p.timers.Config().WarningWindow) {
		return
	}

	// the warning supersedes the start notification
	if rec.Messages.StartMessageID != "" {
		if err := p.msgs.Delete(ctx, p.cfg.NotificationChannelID, rec.Messages.StartMessageID); err != nil && !errors.Is(err, repo.ErrMessageNotFound) {
			fmt.Printf("[SuppliesPoller] Failed to delete start message for %s: %v\n", key, err)
		}
		if err := p.timers.ClearStartMessage(ctx, key); err != nil {
			fmt.Printf("[SuppliesPoller] %v\n", err)
		}
	}

	minutesLeft := int(rec.Remaining(now).Minutes())
	content := renderWarningNotification(rec, p.cfg.SubscriptionRoleID, minutesLeft)
	msgID, err := p.msgs.Send(ctx, p.cfg.NotificationChannelID, content)
	if err != nil {
		fmt.Printf("[SuppliesPoller] Failed to send warning for %s: %v\n", key, err)
	}
	if err := p.timers.MarkWarningSent(ctx, key, msgID); err != nil {
		fmt.Printf("[SuppliesPoller] %v\n", err)
	}

	p.recordEvent(ctx, rec, domain.EventWarning)
	fmt.Printf("[SuppliesPoller] Warning sent for %s: %d minutes left\n", key, minutesLeft)
}

// announceReady handles a timer removed by the expiry sweep. The ready event
// is recorded even when no channel is configured to announce it in.
func (p *NotificationPoller) announceReady(ctx context.Context, key string, rec *domain.TimerRecord) {
	if p.cfg.NotificationChannelID != "" {
		content := renderReadyNotification(rec, p.cfg.SubscriptionRoleID)
		if _, err := p.msgs.Send(ctx, p.cfg.NotificationChannelID, content); err != nil {
			fmt.Printf("[SuppliesPoller] Failed to send ready notification for %s: %v\n", key, err)
		}

		if rec.Messages.StartMessageID != "" {
			if err := p.msgs.Delete(ctx, p.cfg.NotificationChannelID, rec.Messages.StartMessageID); err != nil && !errors.Is(err, repo.ErrMessageNotFound) {
				fmt.Printf("[SuppliesPoller] Failed to delete start message for %s: %v\n", key, err)
			}
		}
	}

	p.recordEvent(ctx, rec, domain.EventReady)
	fmt.Printf("[SuppliesPoller] %s is ready for delivery\n", key)
}

// refreshCountdowns re-renders previously sent notifications in place. A
// stale reference (message deleted out-of-band) is cleared, not retried.
func (p *NotificationPoller) refreshCountdowns(ctx context.Context) {
	active, err := p.timers.ActiveTimers(ctx)
	if err != nil {
		fmt.Printf("[SuppliesPoller] Failed to list timers for refresh: %v\n", err)
		return
	}

	now := p.now()
	for key, rec := range active {
		if id := rec.Messages.StartMessageID; id != "" {
			err := p.msgs.Edit(ctx, p.cfg.NotificationChannelID, id, renderStartNotification(rec, now))
			if errors.Is(err, repo.ErrMessageNotFound) {
				if cerr := p.timers.ClearStartMessage(ctx, key); cerr != nil {
					fmt.Printf("[SuppliesPoller] %v\n", cerr)
				}
			} else if err != nil {
				fmt.Printf("[SuppliesPoller] Failed to refresh start message for %s: %v\n", key, err)
			}
		}

		if id := rec.Messages.WarningMessageID; id != "" {
			minutesLeft := int(rec.Remaining(now).Minutes())
			err := p.msgs.Edit(ctx, p.cfg.NotificationChannelID, id, renderWarningNotification(rec, p.cfg.SubscriptionRoleID, minutesLeft))
			if errors.Is(err, repo.ErrMessageNotFound) {
				if cerr := p.timers.ClearWarningMessage(ctx, key); cerr != nil {
					fmt.Printf("[SuppliesPoller] %v\n", cerr)
				}
			} else if err != nil {
				fmt.Printf("[SuppliesPoller] Failed to refresh warning message for %s: %v\n", key, err)
			}
		}
	}
}

// cleanupHistory trims old supply events
func (p *NotificationPoller) cleanupHistory() {
	if p.history == nil {
		return
	}
	count, err := p.history.CleanupBefore(context.Background(), p.now().Add(-historyRetention))
	if err != nil {
		fmt.Printf("[SuppliesPoller] History cleanup error: %v\n", err)
		return
	}
	if count > 0 {
		fmt.Printf("[SuppliesPoller] Cleaned up %d old supply events\n", count)
	}
}

func (p *NotificationPoller) recordEvent(ctx context.Context, rec *domain.TimerRecord, typ domain.EventType) {
	if p.history == nil {
		return
	}
	ev := &domain.SupplyEvent{
		ObjectKey:  rec.ObjectKey,
		ObjectName: rec.ObjectName,
		Type:       typ,
		OccurredAt: p.now(),
	}
	if err := p.history.Record(ctx, ev); err != nil {
		fmt.Printf("[SuppliesPoller] Failed to record %s event for %s: %v\n", typ, rec.ObjectKey, err)
	}
}
