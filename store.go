// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS commands (
	command      TEXT PRIMARY KEY,
	frequency    INTEGER NOT NULL DEFAULT 0,
	last_used    INTEGER,
	shell_source TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_commands_command   ON commands(command);
CREATE INDEX IF NOT EXISTS idx_commands_frequency ON commands(frequency DESC);

CREATE TABLE IF NOT EXISTS sync_state (
	shell              TEXT PRIMARY KEY,
	last_sync_ts       INTEGER,
	last_line_count    INTEGER NOT NULL DEFAULT 0
);
`

// IndexedCommand is a command's row in the persistent store.
type IndexedCommand struct {
	Command     string
	Frequency   int
	LastUsed    *int64
	ShellSource string
	CreatedAt   int64
}

// SyncCursor is the per-shell position the history sync pass resumes
// from: the latest entry timestamp it has seen, and the total number of
// entries the history file held at the last sync (entries with no
// timestamp at an index below this count are treated as already consumed).
type SyncCursor struct {
	LastSyncTS     *int64
	LastLineCount  int
}

// CommandStore is the persistent, keyed-by-command record of shell
// history: frequency, last-used timestamp, and a sync cursor per shell.
type CommandStore struct {
	db *sql.DB
}

// OpenStore opens (creating if absent) the sqlite-backed command store at
// path, in WAL mode for concurrent reads against the single writer.
func OpenStore(path string) (*CommandStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &CommandStore{db: db}, nil
}

// LoadAll returns every indexed command, most frequent first — the
// snapshot the fuzzy searcher mirrors into memory at startup.
func (s *CommandStore) LoadAll() ([]IndexedCommand, error) {
	rows, err := s.db.Query(`SELECT command, frequency, last_used, shell_source, created_at FROM commands ORDER BY frequency DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexedCommand
	for rows.Next() {
		var c IndexedCommand
		var lastUsed sql.NullInt64
		if err := rows.Scan(&c.Command, &c.Frequency, &lastUsed, &c.ShellSource, &c.CreatedAt); err != nil {
			return nil, err
		}
		if lastUsed.Valid {
			v := lastUsed.Int64
			c.LastUsed = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecordUsage increments a command's frequency and bumps its last-used
// timestamp, inserting a fresh row (tagged as coming from mux itself,
// rather than a shell's history file) if the command hasn't been seen.
func (s *CommandStore) RecordUsage(command string, at time.Time) error {
	ts := at.Unix()
	_, err := s.db.Exec(`
		INSERT INTO commands (command, frequency, last_used, shell_source) VALUES (?, 1, ?, 'mux')
		ON CONFLICT(command) DO UPDATE SET
			frequency = frequency + 1,
			last_used = excluded.last_used
	`, command, ts)
	return err
}

// GetSyncCursor returns the stored cursor for shell, or the zero cursor
// if the shell has never been synced.
func (s *CommandStore) GetSyncCursor(shell Shell) (SyncCursor, error) {
	var cur SyncCursor
	var lastTS sql.NullInt64
	err := s.db.QueryRow(
		`SELECT last_sync_ts, last_line_count FROM sync_state WHERE shell = ?`,
		shell.String(),
	).Scan(&lastTS, &cur.LastLineCount)
	if err == sql.ErrNoRows {
		return SyncCursor{}, nil
	}
	if err != nil {
		return SyncCursor{}, err
	}
	if lastTS.Valid {
		v := lastTS.Int64
		cur.LastSyncTS = &v
	}
	return cur, nil
}

// Sync ingests the history entries a caller has already filtered against
// the prior cursor: it upserts each command's frequency/last-used and
// then advances the stored cursor for shell to cover what was consumed.
// The whole pass runs in a single transaction so a crash mid-sync can't
// leave the cursor ahead of the rows it's meant to describe.
func (s *CommandStore) Sync(shell Shell, entries []HistoryEntry, newCursor SyncCursor) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO commands (command, frequency, last_used, shell_source) VALUES (?, 1, ?, ?)
		ON CONFLICT(command) DO UPDATE SET
			frequency = frequency + 1,
			last_used = CASE
				WHEN excluded.last_used IS NOT NULL THEN excluded.last_used
				ELSE commands.last_used
			END
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, e := range entries {
		if e.Command == "" {
			continue
		}
		var lastUsed any
		if e.Timestamp != nil {
			lastUsed = *e.Timestamp
		}
		if _, err := stmt.Exec(e.Command, lastUsed, shell.String()); err != nil {
			return 0, err
		}
		count++
	}

	var lastSyncTS any
	if newCursor.LastSyncTS != nil {
		lastSyncTS = *newCursor.LastSyncTS
	}
	_, err = tx.Exec(`
		INSERT INTO sync_state (shell, last_sync_ts, last_line_count) VALUES (?, ?, ?)
		ON CONFLICT(shell) DO UPDATE SET
			last_sync_ts = excluded.last_sync_ts,
			last_line_count = excluded.last_line_count
	`, shell.String(), lastSyncTS, newCursor.LastLineCount)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// Flush checkpoints the write-ahead log so the on-disk file reflects
// every write before mux exits.
func (s *CommandStore) Flush() error {
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Close flushes and closes the underlying database handle, reporting a
// flush failure if closing itself succeeded.
func (s *CommandStore) Close() error {
	flushErr := s.Flush()
	if err := s.db.Close(); err != nil {
		return err
	}
	return flushErr
}
