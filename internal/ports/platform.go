package ports

import (
	"context"

	"github.com/tickwake/alarmd/internal/domain"
)

// SoundPlayer loops the alarm ringtone until stopped.
type SoundPlayer interface {
	// Play starts looped playback of the sound at uri with the given
	// volume (0-100). With stepIncrease the volume ramps up from a low
	// starting point to the target. Play replaces any running playback.
	Play(ctx context.Context, uri string, volume float64, stepIncrease bool) error

	// SetVolume adjusts the volume of the running playback.
	SetVolume(volume float64)

	// Stop halts playback. Stopping an idle player is a no-op.
	Stop()
}

// Vibrator loops a vibration pattern until stopped.
type Vibrator interface {
	Start(pattern domain.VibrationPattern) error
	Stop()
}

// WakeLock keeps the device awake during playback. Acquire and Release are
// idempotent: double-acquire and double-release are no-ops.
type WakeLock interface {
	Acquire()
	Release()
}

// Display reports the device display state.
type Display interface {
	IsOn() bool
}

// Notifier posts user-visible notifications and drives the playback UI.
type Notifier interface {
	// Post shows a notification. Returns
	// domain.ErrNotificationPermission when posting is not permitted.
	Post(ctx context.Context, n domain.Notification) error

	// CancelUpcoming removes the "upcoming alarm" preview notification.
	CancelUpcoming(alarmID int64)

	// DismissPlayback tells the full-screen alarm UI to finish.
	DismissPlayback(alarmID int64)
}
