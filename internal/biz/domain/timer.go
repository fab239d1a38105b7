package domain

import (
	"fmt"
	"time"
)

// Timer status strings shown to users when no countdown applies.
const (
	StatusInactive = "Не активен"
	StatusExpired  = "Истек"
)

// NotificationRefs holds the IDs of notification messages sent for a timer,
// so they can later be edited in place or deleted.
type NotificationRefs struct {
	StartMessageID   string
	WarningMessageID string
}

// TimerRecord represents one active supply timer. At most one record exists
// per object key at any time; a record is replaced wholesale on restart, so
// WarningSent is implicitly reset for a fresh run.
type TimerRecord struct {
	ObjectKey       string
	ObjectName      string
	Emoji           string
	StartedBy       string
	StartedByName   string
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	WarningSent     bool
	Messages        NotificationRefs
}

// Expired reports whether the timer has reached its end time.
func (r *TimerRecord) Expired(now time.Time) bool {
	return !now.Before(r.EndTime)
}

// Remaining returns the time left until the delivery is ready, zero if the
// timer has expired.
func (r *TimerRecord) Remaining(now time.Time) time.Duration {
	if r.Expired(now) {
		return 0
	}
	return r.EndTime.Sub(now)
}

// InWarningWindow reports whether the timer is close enough to its end for
// the warning notification to fire.
func (r *TimerRecord) InWarningWindow(now time.Time, window time.Duration) bool {
	return !r.Expired(now) && r.EndTime.Sub(now) <= window
}

// FormatRemaining renders a countdown the way the notification channel shows
// it: "2ч 15м", or minutes only when under an hour.
func FormatRemaining(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dч %dм", hours, minutes)
	}
	return fmt.Sprintf("%dм", minutes)
}

// FormatDurationMinutes renders a configured duration, omitting zero parts.
func FormatDurationMinutes(totalMinutes int) string {
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dч %dм", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dч", hours)
	default:
		return fmt.Sprintf("%dм", minutes)
	}
}
