package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
)

const alarmColumns = `id, time, weekdays, enabled,
	vibration_pattern, vibration_enabled, sound_enabled,
	snooze_enabled, snooze_interval_minutes, snooze_repeat_mode, snooze_repeat_count,
	volume, volume_step_increase, label, sound_uri`

// Upsert persists the record, assigning a new ID when the record has none.
func (s *Store) Upsert(ctx context.Context, alarm *domain.Alarm) (int64, error) {
	alarm.Normalize()
	if err := alarm.Validate(); err != nil {
		return 0, err
	}

	weekdays, err := marshalWeekdays(alarm.Weekdays)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	args := []any{
		alarm.Time.String(), weekdays, alarm.Enabled,
		string(alarm.Flags.VibrationPattern), alarm.Flags.VibrationEnabled, alarm.Flags.SoundEnabled,
		alarm.Flags.SnoozeEnabled, int(alarm.Flags.SnoozeInterval / time.Minute),
		string(alarm.Flags.SnoozeRepeat), alarm.Flags.SnoozeRepeatCount,
		alarm.Flags.Volume, alarm.Flags.VolumeStepIncrease,
		nullString(alarm.Label), nullString(alarm.SoundURI),
	}

	if alarm.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO alarms (time, weekdays, enabled,
				vibration_pattern, vibration_enabled, sound_enabled,
				snooze_enabled, snooze_interval_minutes, snooze_repeat_mode, snooze_repeat_count,
				volume, volume_step_increase, label, sound_uri)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return 0, mapErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, mapErr(err)
		}
		alarm.ID = id
	} else {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO alarms (id, time, weekdays, enabled,
				vibration_pattern, vibration_enabled, sound_enabled,
				snooze_enabled, snooze_interval_minutes, snooze_repeat_mode, snooze_repeat_count,
				volume, volume_step_increase, label, sound_uri)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				time = excluded.time,
				weekdays = excluded.weekdays,
				enabled = excluded.enabled,
				vibration_pattern = excluded.vibration_pattern,
				vibration_enabled = excluded.vibration_enabled,
				sound_enabled = excluded.sound_enabled,
				snooze_enabled = excluded.snooze_enabled,
				snooze_interval_minutes = excluded.snooze_interval_minutes,
				snooze_repeat_mode = excluded.snooze_repeat_mode,
				snooze_repeat_count = excluded.snooze_repeat_count,
				volume = excluded.volume,
				volume_step_increase = excluded.volume_step_increase,
				label = excluded.label,
				sound_uri = excluded.sound_uri,
				updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')`,
			append([]any{alarm.ID}, args...)...)
		if err != nil {
			return 0, mapErr(err)
		}
	}

	s.notify()
	return alarm.ID, nil
}

// Delete removes the record and its snooze counter. Unknown IDs are a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = ?`, id); err != nil {
		return mapErr(err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM counters WHERE key = ?`, counterKey(id)); err != nil {
		return mapErr(err)
	}
	s.notify()
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Alarm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+alarmColumns+` FROM alarms WHERE id = ?`, id)
	alarm, err := scanAlarm(row)
	if err != nil {
		return nil, err
	}
	return alarm, nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.Alarm, error) {
	return s.query(ctx, `SELECT `+alarmColumns+` FROM alarms ORDER BY id`)
}

func (s *Store) GetEnabled(ctx context.Context) ([]domain.Alarm, error) {
	return s.query(ctx, `SELECT `+alarmColumns+` FROM alarms WHERE enabled = 1 ORDER BY id`)
}

func (s *Store) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE alarms SET enabled = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')
		WHERE id = ?`, enabled, id)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: alarm %d", domain.ErrNotFound, id)
	}
	s.notify()
	return nil
}

func (s *Store) query(ctx context.Context, q string) ([]domain.Alarm, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var alarms []domain.Alarm
	for rows.Next() {
		alarm, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, *alarm)
	}
	return alarms, mapErr(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlarm(row rowScanner) (*domain.Alarm, error) {
	var (
		a               domain.Alarm
		timeStr         string
		weekdaysJSON    string
		pattern, repeat string
		intervalMinutes int
		label, soundURI sql.NullString
	)

	err := row.Scan(&a.ID, &timeStr, &weekdaysJSON, &a.Enabled,
		&pattern, &a.Flags.VibrationEnabled, &a.Flags.SoundEnabled,
		&a.Flags.SnoozeEnabled, &intervalMinutes, &repeat, &a.Flags.SnoozeRepeatCount,
		&a.Flags.Volume, &a.Flags.VolumeStepIncrease, &label, &soundURI)
	if err != nil {
		return nil, mapErr(err)
	}

	a.Time, err = domain.ParseAlarmTime(timeStr)
	if err != nil {
		return nil, err
	}
	a.Weekdays, err = unmarshalWeekdays(weekdaysJSON)
	if err != nil {
		return nil, err
	}
	a.Flags.VibrationPattern = domain.VibrationPattern(pattern)
	a.Flags.SnoozeRepeat = domain.SnoozeRepeatMode(repeat)
	a.Flags.SnoozeInterval = time.Duration(intervalMinutes) * time.Minute
	a.Label = label.String
	a.SoundURI = soundURI.String
	return &a, nil
}

// Weekdays are stored as a JSON array of weekday names.
func marshalWeekdays(weekdays []time.Weekday) (string, error) {
	names := make([]string, len(weekdays))
	for i, d := range weekdays {
		names[i] = d.String()
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalWeekdays(s string) ([]time.Weekday, error) {
	var names []string
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return nil, fmt.Errorf("%w: weekdays %q", domain.ErrInvalidInput, s)
	}
	if len(names) == 0 {
		return nil, nil
	}
	weekdays := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		d, ok := weekdayByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: weekday %q", domain.ErrInvalidInput, name)
		}
		weekdays = append(weekdays, d)
	}
	return weekdays, nil
}

func weekdayByName(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, true
		}
	}
	return 0, false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
