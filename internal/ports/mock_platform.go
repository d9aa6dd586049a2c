package ports

import (
	"context"
	"sync"

	"github.com/tickwake/alarmd/internal/domain"
)

// MockSoundPlayer records playback calls for assertions.
type MockSoundPlayer struct {
	PlayFunc func(ctx context.Context, uri string, volume float64, stepIncrease bool) error

	mu         sync.Mutex
	playing    bool
	playCalls  int
	stopCalls  int
	lastURI    string
	lastVolume float64
}

var _ SoundPlayer = (*MockSoundPlayer)(nil)

func (m *MockSoundPlayer) Play(ctx context.Context, uri string, volume float64, stepIncrease bool) error {
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, uri, volume, stepIncrease)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = true
	m.playCalls++
	m.lastURI = uri
	m.lastVolume = volume
	return nil
}

func (m *MockSoundPlayer) SetVolume(volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastVolume = volume
}

func (m *MockSoundPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.stopCalls++
}

func (m *MockSoundPlayer) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *MockSoundPlayer) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *MockSoundPlayer) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *MockSoundPlayer) LastURI() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastURI
}

func (m *MockSoundPlayer) LastVolume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastVolume
}

// MockVibrator records vibration calls.
type MockVibrator struct {
	StartFunc func(pattern domain.VibrationPattern) error

	mu          sync.Mutex
	vibrating   bool
	startCalls  int
	stopCalls   int
	lastPattern domain.VibrationPattern
}

var _ Vibrator = (*MockVibrator)(nil)

func (m *MockVibrator) Start(pattern domain.VibrationPattern) error {
	if m.StartFunc != nil {
		return m.StartFunc(pattern)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vibrating = true
	m.startCalls++
	m.lastPattern = pattern
	return nil
}

func (m *MockVibrator) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vibrating = false
	m.stopCalls++
}

func (m *MockVibrator) Vibrating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vibrating
}

func (m *MockVibrator) LastPattern() domain.VibrationPattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPattern
}

// MockWakeLock counts acquire/release calls to verify the idempotent
// acquire-once release-once discipline.
type MockWakeLock struct {
	mu           sync.Mutex
	held         bool
	acquireCalls int
	releaseCalls int
}

var _ WakeLock = (*MockWakeLock)(nil)

func (m *MockWakeLock) Acquire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = true
	m.acquireCalls++
}

func (m *MockWakeLock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	m.releaseCalls++
}

func (m *MockWakeLock) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

func (m *MockWakeLock) AcquireCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquireCalls
}

func (m *MockWakeLock) ReleaseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseCalls
}

// MockDisplay reports a fixed display state.
type MockDisplay struct {
	On bool
}

var _ Display = (*MockDisplay)(nil)

func (m *MockDisplay) IsOn() bool { return m.On }

// MockNotifier records posted notifications.
type MockNotifier struct {
	PostFunc func(ctx context.Context, n domain.Notification) error

	mu                sync.Mutex
	posted            []domain.Notification
	upcomingCancelled []int64
	playbackDismissed []int64
}

var _ Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Post(ctx context.Context, n domain.Notification) error {
	if m.PostFunc != nil {
		return m.PostFunc(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, n)
	return nil
}

func (m *MockNotifier) CancelUpcoming(alarmID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upcomingCancelled = append(m.upcomingCancelled, alarmID)
}

func (m *MockNotifier) DismissPlayback(alarmID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playbackDismissed = append(m.playbackDismissed, alarmID)
}

func (m *MockNotifier) Posted() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.posted))
	copy(out, m.posted)
	return out
}

func (m *MockNotifier) UpcomingCancelled() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.upcomingCancelled))
	copy(out, m.upcomingCancelled)
	return out
}

func (m *MockNotifier) PlaybackDismissed() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.playbackDismissed))
	copy(out, m.playbackDismissed)
	return out
}
