package domain

import (
	"testing"
	"time"
)

func snoozeFlags(mode SnoozeRepeatMode, count int, interval time.Duration) Flags {
	return Flags{
		VibrationPattern:  VibrationDefault,
		SnoozeEnabled:     true,
		SnoozeInterval:    interval,
		SnoozeRepeat:      mode,
		SnoozeRepeatCount: count,
		Volume:            80,
	}
}

func TestDecideSnooze_FixedBudget(t *testing.T) {
	now := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	flags := snoozeFlags(SnoozeRepeatFixed, 3, 10*time.Minute)

	tests := []struct {
		name      string
		count     int
		wantRearm bool
	}{
		{"first snooze", 0, true},
		{"second snooze", 1, true},
		{"third snooze", 2, true},
		{"budget exhausted", 3, false},
		{"past budget", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := DecideSnooze(now, flags, tt.count)
			if ok != tt.wantRearm {
				t.Fatalf("count=%d: rearm=%v, want %v", tt.count, ok, tt.wantRearm)
			}
			if ok && !next.Equal(now.Add(10*time.Minute)) {
				t.Fatalf("expected next = now + interval, got %s", next)
			}
		})
	}
}

func TestDecideSnooze_ZeroIntervalAlwaysExhausts(t *testing.T) {
	now := time.Now()
	for _, mode := range []SnoozeRepeatMode{SnoozeRepeatNone, SnoozeRepeatFixed, SnoozeRepeatForever} {
		flags := snoozeFlags(mode, 99, 0)
		if _, ok := DecideSnooze(now, flags, 0); ok {
			t.Errorf("mode %s: zero interval must exhaust", mode)
		}
	}
}

func TestDecideSnooze_Forever(t *testing.T) {
	now := time.Now()
	flags := snoozeFlags(SnoozeRepeatForever, 0, 3*time.Minute)

	for _, count := range []int{0, 1, 100, 10000} {
		next, ok := DecideSnooze(now, flags, count)
		if !ok {
			t.Fatalf("count=%d: forever mode must always re-arm", count)
		}
		if !next.Equal(now.Add(3 * time.Minute)) {
			t.Fatalf("expected next = now + interval, got %s", next)
		}
	}
}

func TestDecideSnooze_NoRepeatNeverRearms(t *testing.T) {
	flags := snoozeFlags(SnoozeRepeatNone, 5, 10*time.Minute)
	if _, ok := DecideSnooze(time.Now(), flags, 0); ok {
		t.Fatal("no-repeat mode must not re-arm")
	}
}

func TestDecideSnooze_SnoozeDisabled(t *testing.T) {
	flags := snoozeFlags(SnoozeRepeatForever, 0, 10*time.Minute)
	flags.SnoozeEnabled = false
	if _, ok := DecideSnooze(time.Now(), flags, 0); ok {
		t.Fatal("disabled snooze must not re-arm")
	}
}
