package ports

import (
	"context"
	"sync"
)

type requestKey struct {
	alarmID int64
	kind    TriggerKind
}

// MockWakeScheduler is the canonical test double for WakeScheduler. The
// default behavior keeps an outstanding-request table with the real replace
// semantics (one request per (alarmID, kind) key), so tests can assert
// "exactly one wake request outstanding" without a real platform.
type MockWakeScheduler struct {
	ScheduleFunc         func(ctx context.Context, req WakeRequest) error
	CancelFunc           func(ctx context.Context, alarmID int64, kind TriggerKind) error
	PendingFunc          func(ctx context.Context, alarmID int64, kind TriggerKind) (WakeRequest, bool)
	CanScheduleExactFunc func(ctx context.Context) bool

	mu            sync.Mutex
	outstanding   map[requestKey]WakeRequest
	exact         bool
	scheduleCalls int
	cancelCalls   int
}

var _ WakeScheduler = (*MockWakeScheduler)(nil)

// NewMockWakeScheduler creates a mock with exact scheduling permitted.
func NewMockWakeScheduler() *MockWakeScheduler {
	return &MockWakeScheduler{
		outstanding: make(map[requestKey]WakeRequest),
		exact:       true,
	}
}

// SetExactAllowed flips the simulated exact-alarm permission. Revoking also
// drops all outstanding requests, matching platform behavior.
func (m *MockWakeScheduler) SetExactAllowed(allowed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exact = allowed
	if !allowed {
		m.outstanding = make(map[requestKey]WakeRequest)
	}
}

func (m *MockWakeScheduler) Schedule(ctx context.Context, req WakeRequest) error {
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleCalls++
	m.outstanding[requestKey{req.AlarmID, req.Kind}] = req
	return nil
}

func (m *MockWakeScheduler) Cancel(ctx context.Context, alarmID int64, kind TriggerKind) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, alarmID, kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls++
	delete(m.outstanding, requestKey{alarmID, kind})
	return nil
}

func (m *MockWakeScheduler) Pending(ctx context.Context, alarmID int64, kind TriggerKind) (WakeRequest, bool) {
	if m.PendingFunc != nil {
		return m.PendingFunc(ctx, alarmID, kind)
	}
	return m.Get(alarmID, kind)
}

func (m *MockWakeScheduler) CanScheduleExact(ctx context.Context) bool {
	if m.CanScheduleExactFunc != nil {
		return m.CanScheduleExactFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exact
}

// Outstanding returns the number of pending wake requests.
func (m *MockWakeScheduler) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outstanding)
}

// Get returns the pending request for the key, if any.
func (m *MockWakeScheduler) Get(alarmID int64, kind TriggerKind) (WakeRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.outstanding[requestKey{alarmID, kind}]
	return req, ok
}

// ScheduleCalls returns how many times Schedule was invoked.
func (m *MockWakeScheduler) ScheduleCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduleCalls
}

// CancelCalls returns how many times Cancel was invoked.
func (m *MockWakeScheduler) CancelCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelCalls
}
