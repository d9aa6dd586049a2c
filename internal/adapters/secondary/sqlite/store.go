// Package sqlite persists alarm records and the durable snooze counter in
// an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/ports"
)

const currentVersion = 1

// Store implements ports.AlarmStore on SQLite.
type Store struct {
	db *sql.DB

	subMu sync.Mutex
	subs  []*subscription
}

var _ ports.AlarmStore = (*Store)(nil)

// Open opens (or creates) the database at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory store for testing.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

func (s *Store) Close() error {
	s.subMu.Lock()
	subs := s.subs
	s.subs = nil
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.closeChan()
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS alarms (
		id                      INTEGER PRIMARY KEY AUTOINCREMENT,
		time                    TEXT NOT NULL,
		weekdays                TEXT NOT NULL DEFAULT '[]',
		enabled                 INTEGER NOT NULL DEFAULT 0,
		vibration_pattern       TEXT NOT NULL DEFAULT 'default',
		vibration_enabled       INTEGER NOT NULL DEFAULT 1,
		sound_enabled           INTEGER NOT NULL DEFAULT 1,
		snooze_enabled          INTEGER NOT NULL DEFAULT 1,
		snooze_interval_minutes INTEGER NOT NULL DEFAULT 10,
		snooze_repeat_mode      TEXT NOT NULL DEFAULT 'fixed',
		snooze_repeat_count     INTEGER NOT NULL DEFAULT 3,
		volume                  REAL NOT NULL DEFAULT 80,
		volume_step_increase    INTEGER NOT NULL DEFAULT 0,
		label                   TEXT,
		sound_uri               TEXT,
		created_at              TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at              TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_alarms_enabled ON alarms(enabled);

	CREATE TABLE IF NOT EXISTS counters (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultPath returns ~/.config/alarmd/alarmd.db
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "alarmd", "alarmd.db"), nil
}

// mapErr translates driver errors into the domain failure taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		return fmt.Errorf("%w: %w", domain.ErrConstraint, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// Observe registers a live subscription over the alarm table.
func (s *Store) Observe() ports.StoreSubscription {
	sub := &subscription{store: s, ch: make(chan []domain.Alarm, 1)}
	s.subMu.Lock()
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()
	return sub
}

// notify pushes a fresh snapshot to every subscriber. Called synchronously
// after each committed mutation; snapshots are conflated per subscriber so
// a slow consumer only delays itself.
func (s *Store) notify() {
	snap, err := s.GetAll(context.Background())
	if err != nil {
		return
	}
	s.subMu.Lock()
	subs := make([]*subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.push(snap)
	}
}

type subscription struct {
	store *Store

	mu   sync.Mutex
	ch   chan []domain.Alarm
	done bool
}

func (sub *subscription) C() <-chan []domain.Alarm { return sub.ch }

func (sub *subscription) Close() {
	sub.store.subMu.Lock()
	for i, other := range sub.store.subs {
		if other == sub {
			sub.store.subs = append(sub.store.subs[:i], sub.store.subs[i+1:]...)
			break
		}
	}
	sub.store.subMu.Unlock()
	sub.closeChan()
}

func (sub *subscription) closeChan() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.done {
		sub.done = true
		close(sub.ch)
	}
}

func (sub *subscription) push(snap []domain.Alarm) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.done {
		return
	}
	select {
	case sub.ch <- snap:
	default:
		// Conflate: replace the stale snapshot with the latest one.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snap
	}
}
