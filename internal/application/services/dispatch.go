package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

// HandlerFunc handles one inbound intent.
type HandlerFunc func(ctx context.Context, intent domain.Intent) error

// Dispatcher routes OS wake deliveries and user actions to the right
// handler through a tagged dispatch table keyed on the intent action.
type Dispatcher struct {
	handlers map[domain.Action]HandlerFunc
	logger   *slog.Logger
}

// NewDispatcher wires the intent table. use24h controls how the upcoming
// preview notification formats the alarm time.
func NewDispatcher(
	store ports.AlarmStore,
	playback *PlaybackService,
	notifier ports.Notifier,
	logger *slog.Logger,
	use24h bool,
	now Clock,
) *Dispatcher {
	if now == nil {
		now = time.Now
	}

	layout := "3:04 PM"
	if use24h {
		layout = "15:04"
	}

	d := &Dispatcher{logger: logger}
	d.handlers = map[domain.Action]HandlerFunc{
		domain.ActionPlay: func(ctx context.Context, i domain.Intent) error {
			return playback.HandleFire(ctx, i.AlarmID, i.Snoozed)
		},
		domain.ActionCancel: func(ctx context.Context, i domain.Intent) error {
			return playback.Stop(ctx, i.AlarmID)
		},
		domain.ActionSnooze: func(ctx context.Context, i domain.Intent) error {
			return playback.Snooze(ctx, i.AlarmID)
		},
		domain.ActionUpcomingPreview: func(ctx context.Context, i domain.Intent) error {
			alarm, err := store.GetByID(ctx, i.AlarmID)
			if errors.Is(err, domain.ErrNotFound) || (err == nil && !alarm.Enabled) {
				notifier.CancelUpcoming(i.AlarmID)
				return nil
			}
			if err != nil {
				return err
			}
			at := domain.NextTrigger(now(), alarm.Time, alarm.Weekdays)
			body := "Upcoming alarm at " + at.Format(layout)
			if alarm.Label != "" {
				body = alarm.Label + " at " + at.Format(layout)
			}
			return notifier.Post(ctx, domain.Notification{
				Kind:    domain.NotificationUpcoming,
				AlarmID: i.AlarmID,
				At:      at,
				Body:    body,
			})
		},
		domain.ActionDismissPreview: func(ctx context.Context, i domain.Intent) error {
			notifier.CancelUpcoming(i.AlarmID)
			return nil
		},
	}
	return d
}

// Dispatch routes an intent. Unknown actions are rejected with
// domain.ErrInvalidInput.
func (d *Dispatcher) Dispatch(ctx context.Context, intent domain.Intent) error {
	h, ok := d.handlers[intent.Action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, intent.Action)
	}
	if err := h(ctx, intent); err != nil {
		d.logger.Warn("intent handling failed",
			slog.String("action", string(intent.Action)),
			slog.Int64("alarm_id", intent.AlarmID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
