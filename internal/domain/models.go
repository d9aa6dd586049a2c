package domain

import (
	"fmt"
	"slices"
	"time"
)

// AlarmTime is a wall-clock time of day without a date.
type AlarmTime struct {
	Hour   int
	Minute int
}

// ParseAlarmTime parses an ISO local time string ("07:30").
func ParseAlarmTime(s string) (AlarmTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return AlarmTime{}, fmt.Errorf("%w: alarm time %q", ErrInvalidInput, s)
	}
	return AlarmTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t AlarmTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinuteOfDay returns the time as minutes since midnight.
func (t AlarmTime) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Valid reports whether the time is a real 24h wall time.
func (t AlarmTime) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// VibrationPattern selects the vibration cadence used while an alarm fires.
type VibrationPattern string

const (
	VibrationDefault   VibrationPattern = "default"
	VibrationShort     VibrationPattern = "short"
	VibrationLong      VibrationPattern = "long"
	VibrationHeartbeat VibrationPattern = "heartbeat"
)

// SnoozeRepeatMode bounds how many times an alarm may be snoozed.
type SnoozeRepeatMode string

const (
	SnoozeRepeatNone    SnoozeRepeatMode = "none"
	SnoozeRepeatFixed   SnoozeRepeatMode = "fixed"
	SnoozeRepeatForever SnoozeRepeatMode = "forever"
)

// SnoozeIntervalOptions are the fixed interval choices offered by the UI.
// A custom minute count is also accepted (see Flags.Validate).
var SnoozeIntervalOptions = []time.Duration{
	3 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
}

// Flags holds the per-alarm behavior toggles embedded in an Alarm.
type Flags struct {
	VibrationPattern   VibrationPattern
	VibrationEnabled   bool
	SoundEnabled       bool
	SnoozeEnabled      bool
	SnoozeInterval     time.Duration
	SnoozeRepeat       SnoozeRepeatMode
	SnoozeRepeatCount  int
	Volume             float64 // 0-100
	VolumeStepIncrease bool
}

// Validate checks the flag invariants.
func (f Flags) Validate() error {
	switch f.VibrationPattern {
	case VibrationDefault, VibrationShort, VibrationLong, VibrationHeartbeat:
	default:
		return fmt.Errorf("%w: vibration pattern %q", ErrInvalidInput, f.VibrationPattern)
	}

	switch f.SnoozeRepeat {
	case SnoozeRepeatNone, SnoozeRepeatFixed, SnoozeRepeatForever:
	default:
		return fmt.Errorf("%w: snooze repeat mode %q", ErrInvalidInput, f.SnoozeRepeat)
	}

	if f.SnoozeInterval < 0 {
		return fmt.Errorf("%w: negative snooze interval", ErrInvalidInput)
	}

	if f.SnoozeRepeatCount < 0 {
		return fmt.Errorf("%w: negative snooze repeat count", ErrInvalidInput)
	}

	if f.Volume < 0 || f.Volume > 100 {
		return fmt.Errorf("%w: volume %.1f out of range", ErrInvalidInput, f.Volume)
	}

	return nil
}

// Alarm is a user-authored alarm record.
// ID is zero until the record has been persisted.
type Alarm struct {
	ID       int64
	Time     AlarmTime
	Weekdays []time.Weekday // empty means one-shot (next matching day)
	Enabled  bool
	Label    string
	SoundURI string
	Flags    Flags
}

// Normalize sorts the weekday set and removes duplicates in place.
func (a *Alarm) Normalize() {
	if len(a.Weekdays) == 0 {
		return
	}
	slices.Sort(a.Weekdays)
	a.Weekdays = slices.Compact(a.Weekdays)
}

// Validate checks the record invariants. Normalize should be called first
// if the weekday set may contain duplicates.
func (a *Alarm) Validate() error {
	if a == nil {
		return ErrInvalidInput
	}
	if !a.Time.Valid() {
		return fmt.Errorf("%w: alarm time %s", ErrInvalidInput, a.Time)
	}
	for i, d := range a.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: weekday %d", ErrInvalidInput, d)
		}
		if i > 0 && a.Weekdays[i-1] == d {
			return fmt.Errorf("%w: duplicate weekday %s", ErrInvalidInput, d)
		}
	}
	return a.Flags.Validate()
}

// Equal reports whether two records hold the same data.
func (a *Alarm) Equal(b *Alarm) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Time == b.Time && a.Enabled == b.Enabled &&
		a.Label == b.Label && a.SoundURI == b.SoundURI &&
		a.Flags == b.Flags && slices.Equal(a.Weekdays, b.Weekdays)
}

// Repeating reports whether the alarm recurs on a weekday set.
func (a *Alarm) Repeating() bool {
	return len(a.Weekdays) > 0
}

// Action identifies an inbound wake/user intent.
type Action string

const (
	ActionPlay            Action = "PLAY"
	ActionCancel          Action = "CANCEL"
	ActionSnooze          Action = "SNOOZE"
	ActionUpcomingPreview Action = "UPCOMING_PREVIEW"
	ActionDismissPreview  Action = "DISMISS_PREVIEW"
)

// Intent is the payload delivered with an OS wake event or user action.
type Intent struct {
	Action  Action
	AlarmID int64

	// Snoozed marks a PLAY intent that re-fires a snoozed occurrence
	// rather than opening a fresh one.
	Snoozed bool

	// VolumeStepIncrease is carried for PLAY intents.
	VolumeStepIncrease bool
}

// NotificationKind classifies user-visible notifications posted by the core.
type NotificationKind string

const (
	NotificationRescheduled      NotificationKind = "rescheduled"
	NotificationAlarmsOff        NotificationKind = "alarms_off"
	NotificationPermissionNeeded NotificationKind = "permission_needed"
	NotificationUpcoming         NotificationKind = "upcoming"
)

// Notification is a user-visible message handed to the platform notifier.
type Notification struct {
	Kind    NotificationKind
	AlarmID int64
	Count   int
	At      time.Time
	Body    string
}

// VolumeKeyBehavior is the app-wide policy for hardware volume keys while
// an alarm is firing. Consumed by the playback state machine, owned by the
// settings collaborator.
type VolumeKeyBehavior string

const (
	VolumeKeyNone   VolumeKeyBehavior = "none"
	VolumeKeyStop   VolumeKeyBehavior = "stop"
	VolumeKeySnooze VolumeKeyBehavior = "snooze"
	VolumeKeyAdjust VolumeKeyBehavior = "adjust"
)
