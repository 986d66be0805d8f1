package db

import "fmt"

var schema = []struct {
	name string
	sql  string
}{
	{"contexts", `
	CREATE TABLE IF NOT EXISTS contexts (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	);`},
	{"votes", `
	CREATE TABLE IF NOT EXISTS votes (
		item_id TEXT PRIMARY KEY,
		up_count INTEGER NOT NULL DEFAULT 0 CHECK (up_count >= 0),
		down_count INTEGER NOT NULL DEFAULT 0 CHECK (down_count >= 0)
	);`},
	{"vote_choices", `
	CREATE TABLE IF NOT EXISTS vote_choices (
		item_id TEXT NOT NULL,
		voter_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (item_id, voter_id)
	);`},
	{"submission_events", `
	CREATE TABLE IF NOT EXISTS submission_events (
		user_id TEXT NOT NULL,
		at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submission_events_user ON submission_events(user_id, at);`},
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		strikes INTEGER NOT NULL DEFAULT 0,
		is_member INTEGER NOT NULL DEFAULT 0,
		joined_at INTEGER NOT NULL DEFAULT 0
	);`},
	{"banned_users", `
	CREATE TABLE IF NOT EXISTS banned_users (
		user_id TEXT PRIMARY KEY,
		reason TEXT NOT NULL DEFAULT '',
		banned_at INTEGER NOT NULL
	);`},
	{"reviews", `
	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		message_id TEXT NOT NULL,
		parent_message_id TEXT NOT NULL DEFAULT '',
		submitter_id TEXT NOT NULL,
		stream TEXT NOT NULL,
		period TEXT NOT NULL,
		subject TEXT NOT NULL,
		reviewed_party TEXT NOT NULL,
		score INTEGER NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_party ON reviews(reviewed_party);`},
}

// migrate 如果数据库中不存在必要的表，则创建它们
func (s *Store) migrate() error {
	for _, t := range schema {
		if _, err := s.db.Exec(t.sql); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}
	return nil
}
