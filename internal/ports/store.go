package ports

import (
	"context"

	"github.com/tickwake/alarmd/internal/domain"
)

// StoreSubscription is a live view onto the alarm table. The store pushes a
// fresh snapshot after every committed mutation. Snapshots are conflated:
// a subscriber that cannot keep up only sees the latest state, never a
// backlog. Close releases the subscription; the channel is closed afterwards.
type StoreSubscription interface {
	C() <-chan []domain.Alarm
	Close()
}

// AlarmStore is the durable table of alarm records plus the small persisted
// snooze counter that must survive process death.
type AlarmStore interface {
	// Upsert persists the record. A record with a zero ID is inserted and
	// assigned a new unique ID (also written back to the record); a record
	// with an existing ID is overwritten in place.
	Upsert(ctx context.Context, alarm *domain.Alarm) (int64, error)

	// Delete removes the record. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id int64) error

	// GetByID returns the record or domain.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Alarm, error)

	// GetAll returns all records ordered by ID.
	GetAll(ctx context.Context) ([]domain.Alarm, error)

	// GetEnabled returns all enabled records ordered by ID.
	GetEnabled(ctx context.Context) ([]domain.Alarm, error)

	// SetEnabled toggles a record. Unknown IDs yield domain.ErrNotFound.
	SetEnabled(ctx context.Context, id int64, enabled bool) error

	// Observe registers a live subscription over the full table.
	Observe() StoreSubscription

	// SnoozeCount returns the persisted snooze counter for an alarm
	// occurrence. Alarms without a counter report zero.
	SnoozeCount(ctx context.Context, alarmID int64) (int, error)

	// SetSnoozeCount persists the snooze counter.
	SetSnoozeCount(ctx context.Context, alarmID int64, count int) error

	// ResetSnoozeCount resets the counter to zero.
	ResetSnoozeCount(ctx context.Context, alarmID int64) error

	Close() error
}
