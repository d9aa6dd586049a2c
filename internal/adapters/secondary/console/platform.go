// Package console provides logging reference implementations of the
// platform capability ports, used when the daemon runs outside a device
// environment.
package console

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

// Notifier logs notifications instead of posting them.
type Notifier struct {
	Logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) Post(ctx context.Context, note domain.Notification) error {
	n.Logger.Info("notification",
		slog.String("kind", string(note.Kind)),
		slog.Int64("alarm_id", note.AlarmID),
		slog.Int("count", note.Count),
		slog.String("body", note.Body),
	)
	return nil
}

func (n *Notifier) CancelUpcoming(alarmID int64) {
	n.Logger.Info("upcoming notification cancelled", slog.Int64("alarm_id", alarmID))
}

func (n *Notifier) DismissPlayback(alarmID int64) {
	n.Logger.Info("playback ui dismissed", slog.Int64("alarm_id", alarmID))
}

// Vibrator logs vibration start/stop.
type Vibrator struct {
	Logger *slog.Logger
}

var _ ports.Vibrator = (*Vibrator)(nil)

func (v *Vibrator) Start(pattern domain.VibrationPattern) error {
	v.Logger.Info("vibration started", slog.String("pattern", string(pattern)))
	return nil
}

func (v *Vibrator) Stop() {
	v.Logger.Info("vibration stopped")
}

// WakeLock is an idempotent no-op lock; a desktop host never sleeps on us.
type WakeLock struct {
	Logger *slog.Logger

	mu   sync.Mutex
	held bool
}

var _ ports.WakeLock = (*WakeLock)(nil)

func (w *WakeLock) Acquire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.held {
		return
	}
	w.held = true
	w.Logger.Debug("wake lock acquired")
}

func (w *WakeLock) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.held {
		return
	}
	w.held = false
	w.Logger.Debug("wake lock released")
}

// Display reports an always-on display.
type Display struct{}

var _ ports.Display = (*Display)(nil)

func (Display) IsOn() bool { return true }
