package ports

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/tickwake/alarmd/internal/domain"
)

// MockAlarmStore is a flexible test double for AlarmStore with function
// field customization. This is the canonical mock implementation used
// across all tests. Unconfigured methods fall back to a working in-memory
// table, so most tests only seed records and override the one or two calls
// they care about.
//
// Usage with function fields (maximum flexibility):
//
//	mock := ports.NewMockAlarmStore()
//	mock.GetEnabledFunc = func(ctx context.Context) ([]domain.Alarm, error) {
//	    return nil, domain.ErrStorageUnavailable
//	}
//
// Usage with the builder (convenience):
//
//	mock := ports.NewMockAlarmStore().Seed(
//	    domain.Alarm{ID: 1, Enabled: true},
//	    domain.Alarm{ID: 2},
//	)
type MockAlarmStore struct {
	UpsertFunc           func(ctx context.Context, alarm *domain.Alarm) (int64, error)
	DeleteFunc           func(ctx context.Context, id int64) error
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.Alarm, error)
	GetAllFunc           func(ctx context.Context) ([]domain.Alarm, error)
	GetEnabledFunc       func(ctx context.Context) ([]domain.Alarm, error)
	SetEnabledFunc       func(ctx context.Context, id int64, enabled bool) error
	SnoozeCountFunc      func(ctx context.Context, alarmID int64) (int, error)
	SetSnoozeCountFunc   func(ctx context.Context, alarmID int64, count int) error
	ResetSnoozeCountFunc func(ctx context.Context, alarmID int64) error
	CloseFunc            func() error

	mu       sync.Mutex
	alarms   map[int64]domain.Alarm
	counters map[int64]int
	nextID   int64
	subs     []*mockStoreSub
}

var _ AlarmStore = (*MockAlarmStore)(nil)

// NewMockAlarmStore creates an empty in-memory mock store.
func NewMockAlarmStore() *MockAlarmStore {
	return &MockAlarmStore{
		alarms:   make(map[int64]domain.Alarm),
		counters: make(map[int64]int),
		nextID:   1,
	}
}

// Seed inserts records directly, assigning IDs to records without one.
func (m *MockAlarmStore) Seed(alarms ...domain.Alarm) *MockAlarmStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range alarms {
		if a.ID == 0 {
			a.ID = m.nextID
		}
		if a.ID >= m.nextID {
			m.nextID = a.ID + 1
		}
		m.alarms[a.ID] = a
	}
	return m
}

func (m *MockAlarmStore) Upsert(ctx context.Context, alarm *domain.Alarm) (int64, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, alarm)
	}
	m.mu.Lock()
	if alarm.ID == 0 {
		alarm.ID = m.nextID
		m.nextID++
	} else if alarm.ID >= m.nextID {
		m.nextID = alarm.ID + 1
	}
	m.alarms[alarm.ID] = *alarm
	m.mu.Unlock()
	m.notify()
	return alarm.ID, nil
}

func (m *MockAlarmStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	delete(m.alarms, id)
	delete(m.counters, id)
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *MockAlarmStore) GetByID(ctx context.Context, id int64) (*domain.Alarm, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alarms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cpy := a
	return &cpy, nil
}

func (m *MockAlarmStore) GetAll(ctx context.Context) ([]domain.Alarm, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return m.snapshot(false), nil
}

func (m *MockAlarmStore) GetEnabled(ctx context.Context) ([]domain.Alarm, error) {
	if m.GetEnabledFunc != nil {
		return m.GetEnabledFunc(ctx)
	}
	return m.snapshot(true), nil
}

func (m *MockAlarmStore) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	if m.SetEnabledFunc != nil {
		return m.SetEnabledFunc(ctx, id, enabled)
	}
	m.mu.Lock()
	a, ok := m.alarms[id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	a.Enabled = enabled
	m.alarms[id] = a
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *MockAlarmStore) SnoozeCount(ctx context.Context, alarmID int64) (int, error) {
	if m.SnoozeCountFunc != nil {
		return m.SnoozeCountFunc(ctx, alarmID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[alarmID], nil
}

func (m *MockAlarmStore) SetSnoozeCount(ctx context.Context, alarmID int64, count int) error {
	if m.SetSnoozeCountFunc != nil {
		return m.SetSnoozeCountFunc(ctx, alarmID, count)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[alarmID] = count
	return nil
}

func (m *MockAlarmStore) ResetSnoozeCount(ctx context.Context, alarmID int64) error {
	if m.ResetSnoozeCountFunc != nil {
		return m.ResetSnoozeCountFunc(ctx, alarmID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counters, alarmID)
	return nil
}

func (m *MockAlarmStore) Observe() StoreSubscription {
	sub := &mockStoreSub{store: m, ch: make(chan []domain.Alarm, 1)}
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
	return sub
}

func (m *MockAlarmStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()
	for _, s := range subs {
		s.closeChan()
	}
	return nil
}

func (m *MockAlarmStore) snapshot(enabledOnly bool) []domain.Alarm {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Alarm, 0, len(m.alarms))
	for _, a := range m.alarms {
		if enabledOnly && !a.Enabled {
			continue
		}
		out = append(out, a)
	}
	sortAlarmsByID(out)
	return out
}

func (m *MockAlarmStore) notify() {
	snap := m.snapshot(false)
	m.mu.Lock()
	subs := make([]*mockStoreSub, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, s := range subs {
		s.push(snap)
	}
}

func sortAlarmsByID(alarms []domain.Alarm) {
	slices.SortFunc(alarms, func(a, b domain.Alarm) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

type mockStoreSub struct {
	store *MockAlarmStore
	mu    sync.Mutex
	ch    chan []domain.Alarm
	done  bool
}

func (s *mockStoreSub) C() <-chan []domain.Alarm { return s.ch }

func (s *mockStoreSub) Close() {
	s.store.mu.Lock()
	for i, sub := range s.store.subs {
		if sub == s {
			s.store.subs = append(s.store.subs[:i], s.store.subs[i+1:]...)
			break
		}
	}
	s.store.mu.Unlock()
	s.closeChan()
}

func (s *mockStoreSub) closeChan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.done = true
		close(s.ch)
	}
}

// push delivers a snapshot, conflating when the subscriber lags.
func (s *mockStoreSub) push(snap []domain.Alarm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snap
	}
}
