package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

// Clock supplies the current time. Injected so trigger computation is
// deterministic under test.
type Clock func() time.Time

// ScheduleService translates alarm records into platform wake requests.
// It owns the scheduling status of each alarm: UNSCHEDULED -> SCHEDULED on
// a successful ScheduleAlarm, back to UNSCHEDULED on CancelAlarm or
// permission revocation. Transitions happen only on explicit calls; there
// are no internal retry loops, so a failed registration never leaves a
// hidden duplicate behind.
type ScheduleService struct {
	sched       ports.WakeScheduler
	logger      *slog.Logger
	now         Clock
	previewLead time.Duration
}

// NewScheduleService creates a new schedule service. previewLead is how far
// before the primary fire the "upcoming alarm" preview wakes up; zero
// disables previews entirely.
func NewScheduleService(sched ports.WakeScheduler, logger *slog.Logger, previewLead time.Duration) *ScheduleService {
	return &ScheduleService{
		sched:       sched,
		logger:      logger,
		now:         time.Now,
		previewLead: previewLead,
	}
}

// SetClock overrides the time source.
func (s *ScheduleService) SetClock(now Clock) {
	s.now = now
}

// ScheduleAlarm computes the alarm's next trigger instant and registers the
// wake request, replacing any outstanding request for the same alarm. With
// withPreview it also registers the earlier preview request; without it (or
// when the preview instant is already in the past) any stale preview is
// cancelled so no orphaned preview triggers remain.
//
// If exact scheduling is not permitted the call fails with
// domain.ErrExactAlarmPermission before any registration happens. The
// caller must prompt for the permission and retry.
func (s *ScheduleService) ScheduleAlarm(ctx context.Context, alarm *domain.Alarm, withPreview bool) (time.Time, error) {
	if alarm == nil {
		return time.Time{}, domain.ErrInvalidInput
	}
	if err := alarm.Validate(); err != nil {
		return time.Time{}, err
	}

	if !s.sched.CanScheduleExact(ctx) {
		return time.Time{}, fmt.Errorf("%w: alarm %d", domain.ErrExactAlarmPermission, alarm.ID)
	}

	next := domain.NextTrigger(s.now(), alarm.Time, alarm.Weekdays)

	err := s.sched.Schedule(ctx, ports.WakeRequest{
		AlarmID:            alarm.ID,
		Kind:               ports.TriggerPrimary,
		At:                 next,
		VolumeStepIncrease: alarm.Flags.VolumeStepIncrease,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: alarm %d: %w", domain.ErrRegistration, alarm.ID, err)
	}

	previewAt := next.Add(-s.previewLead)
	if withPreview && s.previewLead > 0 && previewAt.After(s.now()) {
		err := s.sched.Schedule(ctx, ports.WakeRequest{
			AlarmID: alarm.ID,
			Kind:    ports.TriggerPreview,
			At:      previewAt,
		})
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: alarm %d preview: %w", domain.ErrRegistration, alarm.ID, err)
		}
	} else if err := s.sched.Cancel(ctx, alarm.ID, ports.TriggerPreview); err != nil {
		s.logger.Warn("failed to cancel stale preview", slog.Int64("alarm_id", alarm.ID), slog.Any("error", err))
	}

	s.logger.Debug("alarm scheduled",
		slog.Int64("alarm_id", alarm.ID),
		slog.Time("at", next),
		slog.Bool("preview", withPreview),
	)
	return next, nil
}

// ScheduleSnoozed registers a one-shot re-fire of a snoozed occurrence at
// an absolute instant. Same permission semantics as ScheduleAlarm.
func (s *ScheduleService) ScheduleSnoozed(ctx context.Context, alarmID int64, at time.Time) error {
	if !s.sched.CanScheduleExact(ctx) {
		return fmt.Errorf("%w: alarm %d", domain.ErrExactAlarmPermission, alarmID)
	}

	err := s.sched.Schedule(ctx, ports.WakeRequest{
		AlarmID: alarmID,
		Kind:    ports.TriggerPrimary,
		At:      at,
		Snoozed: true,
	})
	if err != nil {
		return fmt.Errorf("%w: alarm %d: %w", domain.ErrRegistration, alarmID, err)
	}

	s.logger.Debug("snooze re-arm scheduled", slog.Int64("alarm_id", alarmID), slog.Time("at", at))
	return nil
}

// SnoozePending reports whether the alarm's outstanding primary request is
// a snoozed re-fire. Reconciliation leaves those in place: replacing one
// would silently move the fire a whole occurrence away.
func (s *ScheduleService) SnoozePending(ctx context.Context, alarmID int64) bool {
	req, ok := s.sched.Pending(ctx, alarmID, ports.TriggerPrimary)
	return ok && req.Snoozed
}

// CancelAlarm cancels the alarm's outstanding wake requests, primary and
// preview both. Cancelling an alarm that has none is not an error.
func (s *ScheduleService) CancelAlarm(ctx context.Context, alarmID int64) error {
	if err := s.sched.Cancel(ctx, alarmID, ports.TriggerPrimary); err != nil {
		return fmt.Errorf("%w: alarm %d: %w", domain.ErrRegistration, alarmID, err)
	}
	if err := s.sched.Cancel(ctx, alarmID, ports.TriggerPreview); err != nil {
		return fmt.Errorf("%w: alarm %d preview: %w", domain.ErrRegistration, alarmID, err)
	}
	s.logger.Debug("alarm cancelled", slog.Int64("alarm_id", alarmID))
	return nil
}
