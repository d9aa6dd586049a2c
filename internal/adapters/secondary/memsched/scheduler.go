// Package memsched is an in-process implementation of the exact-alarm
// capability. Each outstanding wake request is a time.Timer keyed by
// (alarmID, kind); firing delivers the request's intent to a sink, the way
// the platform would invoke the playback entry point.
package memsched

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

type timerKey struct {
	alarmID int64
	kind    ports.TriggerKind
}

type pendingTimer struct {
	timer *time.Timer
	req   ports.WakeRequest
}

// Scheduler implements ports.WakeScheduler with in-process timers.
type Scheduler struct {
	logger  *slog.Logger
	deliver func(domain.Intent)

	mu     sync.Mutex
	timers map[timerKey]pendingTimer
	exact  bool
}

var _ ports.WakeScheduler = (*Scheduler)(nil)

// New creates a scheduler delivering fired intents to the sink. The sink is
// called from the timer goroutine and must not block.
func New(logger *slog.Logger, deliver func(domain.Intent)) *Scheduler {
	return &Scheduler{
		logger:  logger,
		deliver: deliver,
		timers:  make(map[timerKey]pendingTimer),
		exact:   true,
	}
}

// SetExactAllowed flips the simulated exact-alarm permission. Revoking
// drops all outstanding timers, matching the platform's behavior.
func (s *Scheduler) SetExactAllowed(allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exact = allowed
	if !allowed {
		s.stopAllLocked()
	}
}

func (s *Scheduler) CanScheduleExact(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exact
}

// Schedule registers the request, replacing any timer with the same key.
func (s *Scheduler) Schedule(ctx context.Context, req ports.WakeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := timerKey{req.AlarmID, req.Kind}
	if p, ok := s.timers[key]; ok {
		p.timer.Stop()
	}

	d := time.Until(req.At)
	if d < 0 {
		d = 0
	}

	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		s.logger.Debug("wake timer fired",
			slog.Int64("alarm_id", req.AlarmID),
			slog.String("kind", string(req.Kind)),
		)
		s.deliver(req.IntentFor())
	})
	s.timers[key] = pendingTimer{timer: timer, req: req}
	return nil
}

// Cancel stops an outstanding timer. Unknown keys are a no-op.
func (s *Scheduler) Cancel(ctx context.Context, alarmID int64, kind ports.TriggerKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timerKey{alarmID, kind}
	if p, ok := s.timers[key]; ok {
		p.timer.Stop()
		delete(s.timers, key)
	}
	return nil
}

// Pending returns the outstanding request for the key, if any.
func (s *Scheduler) Pending(ctx context.Context, alarmID int64, kind ports.TriggerKind) (ports.WakeRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timers[timerKey{alarmID, kind}]
	return p.req, ok
}

// Outstanding returns the number of pending timers.
func (s *Scheduler) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all outstanding timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAllLocked()
}

func (s *Scheduler) stopAllLocked() {
	for key, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, key)
	}
}
