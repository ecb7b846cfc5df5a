// Package db provides database connection management for the PawTrail core.
package db

import "database/sql"

// schema holds the durable state layout: the action queue plus the cached
// read model. Applied idempotently at open; two tables and a dead-letter
// table do not warrant versioned migration files.
const schema = `
CREATE TABLE IF NOT EXISTS queued_actions (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	payload     TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'failed')),
	retry_count INTEGER NOT NULL DEFAULT 0,
	last_error  TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queued_actions_status
	ON queued_actions(status, created_at);

CREATE TABLE IF NOT EXISTS dead_actions (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	payload     TEXT NOT NULL,
	reason      TEXT NOT NULL CHECK(reason IN ('retry_exhausted', 'rejected')),
	last_error  TEXT NOT NULL DEFAULT '',
	retry_count INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	dropped_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pets (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	species           TEXT NOT NULL DEFAULT '',
	breed             TEXT NOT NULL DEFAULT '',
	photo_url         TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'home' CHECK(status IN ('home', 'missing', 'found')),
	last_seen_address TEXT NOT NULL DEFAULT '',
	last_seen_lat     REAL,
	last_seen_lng     REAL,
	is_local          INTEGER NOT NULL DEFAULT 0,
	last_synced_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id             TEXT PRIMARY KEY,
	pet_id         TEXT NOT NULL,
	region         TEXT NOT NULL DEFAULT '',
	radius_km      REAL NOT NULL DEFAULT 0,
	message        TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL,
	is_local       INTEGER NOT NULL DEFAULT 0,
	last_synced_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS success_stories (
	id             TEXT PRIMARY KEY,
	pet_id         TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	story          TEXT NOT NULL DEFAULT '',
	resolved_at    INTEGER NOT NULL DEFAULT 0,
	is_local       INTEGER NOT NULL DEFAULT 0,
	last_synced_at INTEGER NOT NULL
);
`

// applySchema creates all tables if they do not exist.
func applySchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
