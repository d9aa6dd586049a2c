package domain

import (
	"testing"
	"time"
)

// 2026-01-05 is a Monday.
func monday(hour, minute, sec int) time.Time {
	return time.Date(2026, 1, 5, hour, minute, sec, 0, time.UTC)
}

func TestNextTrigger_TodayBeforeAlarmTime(t *testing.T) {
	// Alarm at 07:00 on {Monday}, now Monday 06:00 -> today 07:00.
	now := monday(6, 0, 0)
	got := NextTrigger(now, AlarmTime{7, 0}, []time.Weekday{time.Monday})

	want := monday(7, 0, 0)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNextTrigger_TodayAfterAlarmTime(t *testing.T) {
	// Alarm at 07:00 on {Monday}, now Monday 08:00 -> following Monday.
	now := monday(8, 0, 0)
	got := NextTrigger(now, AlarmTime{7, 0}, []time.Weekday{time.Monday})

	want := time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNextTrigger_EmptySetUsesNextDay(t *testing.T) {
	// Alarm at 09:00 with no weekdays, now Tuesday 10:00 -> Wednesday 09:00.
	now := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)
	got := NextTrigger(now, AlarmTime{9, 0}, nil)

	want := time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNextTrigger_EmptySetToday(t *testing.T) {
	now := time.Date(2026, 1, 6, 8, 59, 59, 0, time.UTC)
	got := NextTrigger(now, AlarmTime{9, 0}, nil)

	want := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

// Equal clock time counts as "not yet passed": the alarm fires today.
func TestNextTrigger_ExactlyAtAlarmTimeIsInclusive(t *testing.T) {
	now := monday(7, 0, 0)
	got := NextTrigger(now, AlarmTime{7, 0}, []time.Weekday{time.Monday})

	if !got.Equal(now) {
		t.Fatalf("expected trigger today at %s, got %s", now, got)
	}
}

func TestNextTrigger_OneSecondPastAlarmTime(t *testing.T) {
	now := monday(7, 0, 1)
	got := NextTrigger(now, AlarmTime{7, 0}, []time.Weekday{time.Monday})

	want := time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected next Monday %s, got %s", want, got)
	}
}

func TestNextTrigger_PicksEarliestLaterWeekday(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		weekdays []time.Weekday
		wantDay  int // day of month in January 2026
	}{
		{
			name:     "later weekday this week",
			now:      monday(8, 0, 0), // Mon Jan 5, alarm passed
			weekdays: []time.Weekday{time.Wednesday, time.Friday},
			wantDay:  7, // Wednesday
		},
		{
			name:     "wraps to next week",
			now:      time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC), // Sat Jan 10
			weekdays: []time.Weekday{time.Tuesday, time.Thursday},
			wantDay:  13, // Tuesday next week
		},
		{
			name:     "today is set maximum, wraps to smallest",
			now:      time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC), // Sat Jan 10
			weekdays: []time.Weekday{time.Monday, time.Saturday},
			wantDay:  12, // Monday next week
		},
		{
			name:     "full week fires tomorrow when passed",
			now:      monday(23, 59, 0),
			weekdays: []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
			wantDay:  6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextTrigger(tt.now, AlarmTime{7, 0}, tt.weekdays)
			if got.Day() != tt.wantDay {
				t.Fatalf("expected day %d, got %s", tt.wantDay, got)
			}
			if got.Hour() != 7 || got.Minute() != 0 {
				t.Fatalf("expected 07:00, got %s", got)
			}
		})
	}
}

// The trigger is built in now's location so the zone rules in force at call
// time apply.
func TestNextTrigger_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2026, 1, 5, 6, 0, 0, 0, loc)

	got := NextTrigger(now, AlarmTime{7, 0}, []time.Weekday{time.Monday})
	if got.Location() != loc {
		t.Fatalf("expected location %v, got %v", loc, got.Location())
	}
	if got.Hour() != 7 {
		t.Fatalf("expected wall clock 07:00 in zone, got %s", got)
	}
}
