package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// The snooze counter must survive process death between FIRING and SNOOZED,
// so it lives in a small key/value table instead of process memory.

func counterKey(alarmID int64) string {
	return fmt.Sprintf("snooze:%d", alarmID)
}

func (s *Store) SnoozeCount(ctx context.Context, alarmID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM counters WHERE key = ?`, counterKey(alarmID)).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, mapErr(err)
	}
	return count, nil
}

func (s *Store) SetSnoozeCount(ctx context.Context, alarmID int64, count int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO counters (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		counterKey(alarmID), count)
	return mapErr(err)
}

func (s *Store) ResetSnoozeCount(ctx context.Context, alarmID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM counters WHERE key = ?`, counterKey(alarmID))
	return mapErr(err)
}
