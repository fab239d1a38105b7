package domain

import (
	"testing"
	"time"
)

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{2*time.Hour + 15*time.Minute, "2ч 15м"},
		{1 * time.Hour, "1ч 0м"},
		{45 * time.Minute, "45м"},
		{59 * time.Second, "0м"},
		{0, "0м"},
	}
	for _, c := range cases {
		if got := FormatRemaining(c.d); got != c.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestFormatDurationMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{240, "4ч"},
		{250, "4ч 10м"},
		{45, "45м"},
		{0, "0м"},
	}
	for _, c := range cases {
		if got := FormatDurationMinutes(c.minutes); got != c.want {
			t.Errorf("FormatDurationMinutes(%d) = %q, want %q", c.minutes, got, c.want)
		}
	}
}

func TestTimerRecord_Expired(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &TimerRecord{StartTime: start, EndTime: start.Add(10 * time.Minute)}

	if rec.Expired(start.Add(9 * time.Minute)) {
		t.Error("timer should not be expired before end time")
	}
	if !rec.Expired(start.Add(10 * time.Minute)) {
		t.Error("timer should be expired exactly at end time")
	}
	if !rec.Expired(start.Add(11 * time.Minute)) {
		t.Error("timer should be expired after end time")
	}
}

func TestTimerRecord_Remaining(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &TimerRecord{StartTime: start, EndTime: start.Add(10 * time.Minute)}

	if got := rec.Remaining(start.Add(4 * time.Minute)); got != 6*time.Minute {
		t.Errorf("Remaining = %v, want 6m", got)
	}
	if got := rec.Remaining(start.Add(15 * time.Minute)); got != 0 {
		t.Errorf("Remaining after expiry = %v, want 0", got)
	}
}

func TestTimerRecord_InWarningWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &TimerRecord{StartTime: start, EndTime: start.Add(10 * time.Minute)}
	window := 3 * time.Minute

	if rec.InWarningWindow(start.Add(5*time.Minute), window) {
		t.Error("should not be in warning window with 5m remaining")
	}
	if !rec.InWarningWindow(start.Add(7*time.Minute), window) {
		t.Error("should be in warning window with 3m remaining")
	}
	if !rec.InWarningWindow(start.Add(9*time.Minute), window) {
		t.Error("should be in warning window with 1m remaining")
	}
	if rec.InWarningWindow(start.Add(10*time.Minute), window) {
		t.Error("expired timer is past the warning window")
	}
}

func TestLookupObject(t *testing.T) {
	obj, ok := LookupObject("object_7")
	if !ok {
		t.Fatal("object_7 should exist in the catalog")
	}
	if obj.Name != "Объект №7" || obj.Emoji != "🏭" {
		t.Errorf("unexpected catalog entry: %+v", obj)
	}

	if _, ok := LookupObject("no_such_object"); ok {
		t.Error("unknown key should not resolve")
	}
}

func TestCatalog_UniqueKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, obj := range Catalog {
		if seen[obj.Key] {
			t.Errorf("duplicate catalog key %q", obj.Key)
		}
		seen[obj.Key] = true
		if obj.Name == "" || obj.Emoji == "" || obj.Category == "" {
			t.Errorf("incomplete catalog entry %q", obj.Key)
		}
	}
}

func TestCategories_Order(t *testing.T) {
	cats := Categories()
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d: %v", len(cats), cats)
	}
	if cats[0] != "Военные объекты" {
		t.Errorf("first category = %q", cats[0])
	}
	for _, cat := range cats {
		if len(ObjectsInCategory(cat)) == 0 {
			t.Errorf("category %q has no objects", cat)
		}
	}
}
