package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schema is applied on every open; CREATE TABLE IF NOT EXISTS keeps it
// idempotent. Value-range and uniqueness rules the remote backend
// enforces server-side are reproduced here as CHECK/UNIQUE constraints
// so the embedded store rejects the same writes.
const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    name          TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS user_profiles (
    user_id    TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    full_name  TEXT NOT NULL DEFAULT '',
    birth_date TIMESTAMP,
    gender     TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS diabetic_profiles (
    user_id       TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    diabetes_type TEXT NOT NULL DEFAULT '',
    min_glucose   REAL NOT NULL DEFAULT 70 CHECK (min_glucose >= 0 AND min_glucose <= 500),
    max_glucose   REAL NOT NULL DEFAULT 180 CHECK (max_glucose >= 0 AND max_glucose <= 500),
    updated_at    TIMESTAMP NOT NULL,
    CHECK (min_glucose < max_glucose)
);

CREATE TABLE IF NOT EXISTS user_preferences (
    user_id               TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    theme                 TEXT NOT NULL DEFAULT 'system',
    units                 TEXT NOT NULL DEFAULT 'mg/dL',
    language              TEXT NOT NULL DEFAULT 'en',
    notifications_enabled INTEGER NOT NULL DEFAULT 1,
    updated_at            TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS glucose_readings (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    value        REAL NOT NULL CHECK (value >= 0 AND value <= 1000),
    unit         TEXT NOT NULL,
    reading_type TEXT NOT NULL,
    recorded_at  TIMESTAMP NOT NULL,
    notes        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_glucose_user_recorded
    ON glucose_readings(user_id, recorded_at);

CREATE TABLE IF NOT EXISTS health_cards (
    user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    card_type TEXT NOT NULL,
    date      TEXT NOT NULL,
    value     REAL NOT NULL CHECK (value >= 0),
    unit      TEXT NOT NULL DEFAULT '',
    UNIQUE (user_id, card_type, date)
);

CREATE TABLE IF NOT EXISTS reminders (
    id                 TEXT PRIMARY KEY,
    user_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title              TEXT NOT NULL,
    reminder_type      TEXT NOT NULL DEFAULT '',
    scheduled_time     TIMESTAMP NOT NULL,
    is_recurring       INTEGER NOT NULL DEFAULT 0,
    recurrence_pattern TEXT NOT NULL DEFAULT '',
    status             TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending','done','not_done','skipped','completed')),
    created_at         TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);
`

// Open opens (or creates) the SQLite database at path and applies the
// schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// modernc sqlite serializes access through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return db, nil
}
