package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
)

func testAlarm(id int64, enabled bool) domain.Alarm {
	return domain.Alarm{
		ID:      id,
		Time:    domain.AlarmTime{Hour: 7, Minute: 0},
		Enabled: enabled,
		Flags: domain.Flags{
			VibrationPattern: domain.VibrationDefault,
			SnoozeRepeat:     domain.SnoozeRepeatNone,
			Volume:           80,
		},
	}
}

func TestMockAlarmStore_UpsertAssignsID(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore()

	a := testAlarm(0, true)
	id, err := store.Upsert(ctx, &a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero assigned ID")
	}
	if a.ID != id {
		t.Fatalf("expected ID written back to record, got %d", a.ID)
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != id || !got.Enabled {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestMockAlarmStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore().Seed(testAlarm(1, true))

	updated := testAlarm(1, true)
	updated.Label = "work"
	if _, err := store.Upsert(ctx, &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != "work" {
		t.Fatalf("expected overwrite, got label %q", got.Label)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
}

func TestMockAlarmStore_GetByIDUnknown(t *testing.T) {
	store := NewMockAlarmStore()
	if _, err := store.GetByID(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMockAlarmStore_GetEnabledFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore().Seed(
		testAlarm(1, true),
		testAlarm(2, false),
		testAlarm(3, true),
	)

	enabled, err := store.GetEnabled(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled records, got %d", len(enabled))
	}
	if enabled[0].ID != 1 || enabled[1].ID != 3 {
		t.Fatalf("expected records ordered by ID, got %+v", enabled)
	}
}

func TestMockAlarmStore_SetEnabled(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore().Seed(testAlarm(1, true))

	if err := store.SetEnabled(ctx, 1, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.GetByID(ctx, 1)
	if got.Enabled {
		t.Fatal("expected record disabled")
	}

	if err := store.SetEnabled(ctx, 99, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ID, got %v", err)
	}
}

func TestMockAlarmStore_DeleteUnknownIsNotAnError(t *testing.T) {
	store := NewMockAlarmStore()
	if err := store.Delete(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMockAlarmStore_SnoozeCounter(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore().Seed(testAlarm(1, true))

	n, err := store.SnoozeCount(ctx, 1)
	if err != nil || n != 0 {
		t.Fatalf("expected zero counter, got %d (%v)", n, err)
	}

	if err := store.SetSnoozeCount(ctx, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ = store.SnoozeCount(ctx, 1); n != 2 {
		t.Fatalf("expected counter 2, got %d", n)
	}

	if err := store.ResetSnoozeCount(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ = store.SnoozeCount(ctx, 1); n != 0 {
		t.Fatalf("expected counter reset to 0, got %d", n)
	}
}

func TestMockAlarmStore_DeleteRemovesCounter(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore().Seed(testAlarm(1, true))
	_ = store.SetSnoozeCount(ctx, 1, 3)

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := store.SnoozeCount(ctx, 1); n != 0 {
		t.Fatalf("expected counter gone with record, got %d", n)
	}
}

func TestMockAlarmStore_ObserveDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore()
	sub := store.Observe()
	defer sub.Close()

	a := testAlarm(0, true)
	if _, err := store.Upsert(ctx, &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case snap := <-sub.C():
		if len(snap) != 1 || snap[0].ID != a.ID {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestMockAlarmStore_ObserveConflatesWhenLagging(t *testing.T) {
	ctx := context.Background()
	store := NewMockAlarmStore()
	sub := store.Observe()
	defer sub.Close()

	// Three mutations without a read in between; only the latest state
	// must be observable.
	for i := 0; i < 3; i++ {
		a := testAlarm(0, true)
		if _, err := store.Upsert(ctx, &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	select {
	case snap := <-sub.C():
		if len(snap) != 3 {
			t.Fatalf("expected conflated snapshot with 3 records, got %d", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestMockAlarmStore_CloseClosesSubscriptions(t *testing.T) {
	store := NewMockAlarmStore()
	sub := store.Observe()

	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case _, open := <-sub.C():
		if open {
			t.Fatal("expected channel closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestMockAlarmStore_FuncFieldOverride(t *testing.T) {
	store := NewMockAlarmStore()
	store.GetEnabledFunc = func(ctx context.Context) ([]domain.Alarm, error) {
		return nil, domain.ErrStorageUnavailable
	}

	if _, err := store.GetEnabled(context.Background()); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
