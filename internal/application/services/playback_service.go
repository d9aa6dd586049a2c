package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

// Session is the in-memory state of one firing alarm. It exists only while
// the alarm is in the FIRING state and is destroyed on stop or snooze.
type Session struct {
	ID        uuid.UUID
	AlarmID   int64
	StartedAt time.Time

	mu        sync.Mutex
	volume    float64
	lockHeld  bool
	soundOn   bool
	vibrating bool
	done      bool
}

// Volume returns the session's current playback volume.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// PlaybackService drives the alarm playback state machine:
// FIRING -> SNOOZED or FIRING -> STOPPED. Every exit path releases the
// wake-lock and stops the sound and vibration loops exactly once; the
// snooze counter lives in the store so the SNOOZED transition stays
// reachable even when the process dies between firing and snoozing.
type PlaybackService struct {
	store        ports.AlarmStore
	schedule     *ScheduleService
	sound        ports.SoundPlayer
	vibrator     ports.Vibrator
	lock         ports.WakeLock
	display      ports.Display
	notifier     ports.Notifier
	logger       *slog.Logger
	now          Clock
	volumeKeys   domain.VolumeKeyBehavior
	defaultSound string
	rearmPreview bool

	mu     sync.Mutex
	active map[int64]*Session
}

// NewPlaybackService creates a new playback service. volumeKeys is the
// app-wide hardware volume-key policy, defaultSound is played for alarms
// without a sound URI, rearmPreview controls whether re-armed occurrences
// get an upcoming preview.
func NewPlaybackService(
	store ports.AlarmStore,
	schedule *ScheduleService,
	sound ports.SoundPlayer,
	vibrator ports.Vibrator,
	lock ports.WakeLock,
	display ports.Display,
	notifier ports.Notifier,
	logger *slog.Logger,
	volumeKeys domain.VolumeKeyBehavior,
	defaultSound string,
	rearmPreview bool,
) *PlaybackService {
	return &PlaybackService{
		store:        store,
		schedule:     schedule,
		sound:        sound,
		vibrator:     vibrator,
		lock:         lock,
		display:      display,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
		volumeKeys:   volumeKeys,
		defaultSound: defaultSound,
		rearmPreview: rearmPreview,
	}
}

// SetClock overrides the time source.
func (p *PlaybackService) SetClock(now Clock) {
	p.now = now
}

// HandleFire is the FIRING entry point, invoked when the platform wakes the
// process. snoozed marks a re-fire of a snoozed occurrence; a fresh fire
// resets the durable snooze counter. A missing record is a safe stop, not
// an error: correctness favors silence over a stuck foreground session.
func (p *PlaybackService) HandleFire(ctx context.Context, alarmID int64, snoozed bool) error {
	alarm, err := p.store.GetByID(ctx, alarmID)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("fired for unknown alarm, stopping", slog.Int64("alarm_id", alarmID))
		if err := p.schedule.CancelAlarm(ctx, alarmID); err != nil {
			p.logger.Warn("cancel after unknown fire failed", slog.Int64("alarm_id", alarmID), slog.Any("error", err))
		}
		return nil
	}
	if err != nil {
		return err
	}

	if !snoozed {
		if err := p.store.ResetSnoozeCount(ctx, alarmID); err != nil {
			p.logger.Warn("snooze counter reset failed", slog.Int64("alarm_id", alarmID), slog.Any("error", err))
		}
	}

	// Replace any stale session for this alarm before starting a new one.
	if old := p.take(alarmID); old != nil {
		p.teardown(old)
	}

	sess := &Session{
		ID:        uuid.New(),
		AlarmID:   alarmID,
		StartedAt: p.now(),
		volume:    alarm.Flags.Volume,
	}

	// The lock only matters when the display is off; a lit screen already
	// keeps the device awake.
	if !p.display.IsOn() {
		p.lock.Acquire()
		sess.lockHeld = true
	}

	if alarm.Flags.SoundEnabled {
		uri := alarm.SoundURI
		if uri == "" {
			uri = p.defaultSound
		}
		err := p.sound.Play(ctx, uri, alarm.Flags.Volume, alarm.Flags.VolumeStepIncrease)
		if err != nil {
			p.logger.Warn("sound playback failed", slog.Int64("alarm_id", alarmID), slog.Any("error", err))
		} else {
			sess.soundOn = true
		}
	}

	if alarm.Flags.VibrationEnabled {
		if err := p.vibrator.Start(alarm.Flags.VibrationPattern); err != nil {
			p.logger.Warn("vibration failed", slog.Int64("alarm_id", alarmID), slog.Any("error", err))
		} else {
			sess.vibrating = true
		}
	}

	p.mu.Lock()
	if p.active == nil {
		p.active = make(map[int64]*Session)
	}
	p.active[alarmID] = sess
	p.mu.Unlock()

	p.logger.Info("alarm firing",
		slog.Int64("alarm_id", alarmID),
		slog.String("session", sess.ID.String()),
		slog.Bool("snoozed", snoozed),
	)
	return nil
}

// Snooze handles the FIRING -> SNOOZED transition: tear down playback, then
// either register the re-fire or, when the snooze budget is exhausted or
// the interval is zero, fall through to the STOPPED path.
func (p *PlaybackService) Snooze(ctx context.Context, alarmID int64) error {
	if sess := p.take(alarmID); sess != nil {
		p.teardown(sess)
	}

	alarm, err := p.store.GetByID(ctx, alarmID)
	if errors.Is(err, domain.ErrNotFound) {
		p.notifier.DismissPlayback(alarmID)
		return nil
	}
	if err != nil {
		return err
	}

	count, err := p.store.SnoozeCount(ctx, alarmID)
	if err != nil {
		p.logger.Warn("snooze counter read failed", slog.Int64("alarm_id", alarmID), slog.Any("error", err))
	}

	next, ok := domain.DecideSnooze(p.now(), alarm.Flags, count)
	if !ok {
		p.logger.Info("snooze budget exhausted", slog.Int64("alarm_id", alarmID), slog.Int("count", count))
		return p.finish(ctx, alarm)
	}

	if err := p.store.SetSnoozeCount(ctx, alarmID, count+1); err != nil {
		p.logger.Warn("snooze counter write failed", slog.Int64("alarm_id", alarmID), slog.Any("error", err))
	}

	if err := p.schedule.ScheduleSnoozed(ctx, alarmID, next); err != nil {
		return err
	}

	p.notifier.DismissPlayback(alarmID)
	p.logger.Info("alarm snoozed",
		slog.Int64("alarm_id", alarmID),
		slog.Int("count", count+1),
		slog.Time("next", next),
	)
	return nil
}

// Stop handles the FIRING -> STOPPED transition: tear down playback, reset
// the snooze counter, cancel the occurrence's outstanding wake requests and
// re-arm the next occurrence (repeating alarms) or retire the record
// (one-shot alarms).
func (p *PlaybackService) Stop(ctx context.Context, alarmID int64) error {
	if sess := p.take(alarmID); sess != nil {
		p.teardown(sess)
	}

	alarm, err := p.store.GetByID(ctx, alarmID)
	if errors.Is(err, domain.ErrNotFound) {
		if err := p.schedule.CancelAlarm(ctx, alarmID); err != nil {
			p.logger.Warn("cancel on stop failed", slog.Int64("alarm_id", alarmID), slog.Any("error", err))
		}
		p.notifier.DismissPlayback(alarmID)
		return nil
	}
	if err != nil {
		return err
	}

	return p.finish(ctx, alarm)
}

// VolumeKey applies the configured hardware volume-key policy to a firing
// alarm. Without an active session the key is ignored.
func (p *PlaybackService) VolumeKey(ctx context.Context, alarmID int64, up bool) error {
	p.mu.Lock()
	sess := p.active[alarmID]
	p.mu.Unlock()
	if sess == nil {
		return nil
	}

	switch p.volumeKeys {
	case domain.VolumeKeyStop:
		return p.Stop(ctx, alarmID)
	case domain.VolumeKeySnooze:
		return p.Snooze(ctx, alarmID)
	case domain.VolumeKeyAdjust:
		const step = 10.0
		sess.mu.Lock()
		if up {
			sess.volume = min(sess.volume+step, 100)
		} else {
			sess.volume = max(sess.volume-step, 0)
		}
		v := sess.volume
		sess.mu.Unlock()
		p.sound.SetVolume(v)
	}
	return nil
}

// ActiveSession returns the live session for an alarm, or nil.
func (p *PlaybackService) ActiveSession(alarmID int64) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active[alarmID]
}

func (p *PlaybackService) finish(ctx context.Context, alarm *domain.Alarm) error {
	if err := p.store.ResetSnoozeCount(ctx, alarm.ID); err != nil {
		p.logger.Warn("snooze counter reset failed", slog.Int64("alarm_id", alarm.ID), slog.Any("error", err))
	}

	if err := p.schedule.CancelAlarm(ctx, alarm.ID); err != nil {
		p.logger.Warn("cancel on stop failed", slog.Int64("alarm_id", alarm.ID), slog.Any("error", err))
	}

	p.notifier.DismissPlayback(alarm.ID)

	if alarm.Enabled {
		if alarm.Repeating() {
			if _, err := p.schedule.ScheduleAlarm(ctx, alarm, p.rearmPreview); err != nil {
				return err
			}
			p.logger.Info("alarm re-armed", slog.Int64("alarm_id", alarm.ID))
		} else {
			// One-shot alarms retire after firing.
			if err := p.store.SetEnabled(ctx, alarm.ID, false); err != nil {
				return err
			}
			p.logger.Info("one-shot alarm retired", slog.Int64("alarm_id", alarm.ID))
		}
	}
	return nil
}

// teardown releases all playback resources exactly once. Safe to call on
// every exit path; later calls are no-ops.
func (p *PlaybackService) teardown(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return
	}
	sess.done = true
	if sess.soundOn {
		p.sound.Stop()
		sess.soundOn = false
	}
	if sess.vibrating {
		p.vibrator.Stop()
		sess.vibrating = false
	}
	if sess.lockHeld {
		p.lock.Release()
		sess.lockHeld = false
	}
}

func (p *PlaybackService) take(alarmID int64) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess := p.active[alarmID]
	delete(p.active, alarmID)
	return sess
}
