package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

// ReconcileService re-derives the outstanding wake requests from the alarm
// store after events that invalidate them: boot, timezone change and
// permission changes. Each pass schedules every enabled alarm concurrently;
// one alarm's failure is logged and counted but never aborts its siblings.
type ReconcileService struct {
	store       ports.AlarmStore
	schedule    *ScheduleService
	notifier    ports.Notifier
	logger      *slog.Logger
	withPreview bool
}

// NewReconcileService creates a new reconciliation service.
func NewReconcileService(store ports.AlarmStore, schedule *ScheduleService, notifier ports.Notifier, logger *slog.Logger, withPreview bool) *ReconcileService {
	return &ReconcileService{
		store:       store,
		schedule:    schedule,
		notifier:    notifier,
		logger:      logger,
		withPreview: withPreview,
	}
}

// OnBootCompleted reschedules all enabled alarms after a reboot. No
// notification is shown. Returns the number of alarms scheduled.
func (r *ReconcileService) OnBootCompleted(ctx context.Context) (int, error) {
	return r.rescheduleAll(ctx, "boot")
}

// OnTimezoneChanged recomputes every enabled alarm against the new zone
// rules and posts a summary notification.
func (r *ReconcileService) OnTimezoneChanged(ctx context.Context) (int, error) {
	n, err := r.rescheduleAll(ctx, "timezone")
	if n > 0 {
		r.post(ctx, domain.Notification{Kind: domain.NotificationRescheduled, Count: n})
	}
	return n, err
}

// OnPermissionChanged handles an exact-alarm permission flip. When granted,
// all enabled alarms are rescheduled and the user is told. When revoked the
// platform has already dropped the outstanding requests, so no reschedule
// is attempted; the user is warned that alarms are off.
func (r *ReconcileService) OnPermissionChanged(ctx context.Context, granted bool) (int, error) {
	if !granted {
		r.post(ctx, domain.Notification{Kind: domain.NotificationAlarmsOff})
		return 0, nil
	}
	n, err := r.rescheduleAll(ctx, "permission")
	if n > 0 {
		r.post(ctx, domain.Notification{Kind: domain.NotificationRescheduled, Count: n})
	}
	return n, err
}

// OnStoreChanged reconciles the wake requests after a committed store
// mutation, given the table snapshots before and after. Only the alarms
// that actually differ are touched, so editing one alarm never disturbs
// another's pending requests (in particular a snoozed re-fire).
func (r *ReconcileService) OnStoreChanged(ctx context.Context, prev, next []domain.Alarm) {
	before := make(map[int64]domain.Alarm, len(prev))
	for _, a := range prev {
		before[a.ID] = a
	}

	for _, alarm := range next {
		old, existed := before[alarm.ID]
		delete(before, alarm.ID)
		if existed && alarm.Equal(&old) {
			continue
		}
		if alarm.Enabled {
			a := alarm
			if _, err := r.schedule.ScheduleAlarm(ctx, &a, r.withPreview); err != nil {
				r.logger.Warn("reschedule after mutation failed",
					slog.Int64("alarm_id", a.ID), slog.Any("error", err))
			}
		} else if err := r.schedule.CancelAlarm(ctx, alarm.ID); err != nil {
			r.logger.Warn("cancel after mutation failed",
				slog.Int64("alarm_id", alarm.ID), slog.Any("error", err))
		}
	}

	// Deleted records lose their wake requests.
	for id := range before {
		if err := r.schedule.CancelAlarm(ctx, id); err != nil {
			r.logger.Warn("cancel after delete failed",
				slog.Int64("alarm_id", id), slog.Any("error", err))
		}
	}
}

// RunSafetyNet periodically re-verifies that every enabled alarm has a wake
// request, self-healing from missed events. Blocks until ctx is done.
func (r *ReconcileService) RunSafetyNet(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.rescheduleAll(ctx, "safety-net"); err != nil {
				r.logger.Warn("safety-net pass failed", slog.Any("error", err))
			}
		}
	}
}

// rescheduleAll fans out one task per enabled alarm and joins them all.
// Partial success is success for the batch: the error return is non-nil
// only when the store itself could not be read.
func (r *ReconcileService) rescheduleAll(ctx context.Context, reason string) (int, error) {
	alarms, err := r.store.GetEnabled(ctx)
	if err != nil {
		r.logger.Error("reconciliation: loading alarms failed",
			slog.String("reason", reason), slog.Any("error", err))
		return 0, err
	}

	var (
		wg               sync.WaitGroup
		mu               sync.Mutex
		scheduled        int
		failed           int
		permissionDenied bool
	)

	for _, alarm := range alarms {
		wg.Add(1)
		go func(a domain.Alarm) {
			defer wg.Done()
			if r.schedule.SnoozePending(ctx, a.ID) {
				r.logger.Debug("snoozed re-fire pending, left in place",
					slog.String("reason", reason), slog.Int64("alarm_id", a.ID))
				return
			}
			_, err := r.schedule.ScheduleAlarm(ctx, &a, r.withPreview)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if errors.Is(err, domain.ErrExactAlarmPermission) {
					permissionDenied = true
				}
				r.logger.Warn("reconciliation: alarm not rescheduled",
					slog.String("reason", reason),
					slog.Int64("alarm_id", a.ID),
					slog.Any("error", err),
				)
				return
			}
			scheduled++
		}(alarm)
	}
	wg.Wait()

	if permissionDenied {
		// Persistent prompt: nothing fires until the user grants it.
		r.post(ctx, domain.Notification{Kind: domain.NotificationPermissionNeeded})
	}

	r.logger.Info("reconciliation pass complete",
		slog.String("reason", reason),
		slog.Int("scheduled", scheduled),
		slog.Int("failed", failed),
	)
	return scheduled, nil
}

func (r *ReconcileService) post(ctx context.Context, n domain.Notification) {
	if err := r.notifier.Post(ctx, n); err != nil {
		r.logger.Warn("notification not posted", slog.String("kind", string(n.Kind)), slog.Any("error", err))
	}
}
