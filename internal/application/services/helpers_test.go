package services

import (
	"io"
	"log/slog"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// 2026-01-05 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, 1, 5, hour, minute, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func weeklyAlarm(id int64, hour, minute int, days ...time.Weekday) domain.Alarm {
	return domain.Alarm{
		ID:       id,
		Time:     domain.AlarmTime{Hour: hour, Minute: minute},
		Weekdays: days,
		Enabled:  true,
		Flags: domain.Flags{
			VibrationPattern: domain.VibrationDefault,
			VibrationEnabled: true,
			SoundEnabled:     true,
			SnoozeEnabled:    true,
			SnoozeInterval:   10 * time.Minute,
			SnoozeRepeat:     domain.SnoozeRepeatForever,
			Volume:           80,
		},
	}
}
