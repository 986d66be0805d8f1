// Package db is the SQLite backend for contexts, votes, submission windows,
// users and the review archive.
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const dbDriver = "sqlite3"

// DefaultPath is used when no sqlite_path is configured.
const DefaultPath = "./data/reviews.db"

// RateWindow is the per-user submission ceiling over a trailing period.
type RateWindow struct {
	Ceiling int
	Period  time.Duration
}

// Store wraps a single-connection SQLite pool. Every read-modify-write runs
// in a transaction on that connection, so per-key updates never interleave.
type Store struct {
	db     *sqlx.DB
	window RateWindow
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRateWindow sets the submission window used by Admit.
func WithRateWindow(w RateWindow) Option {
	return func(s *Store) { s.window = w }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open 打开 SQLite 数据库并在需要时创建表
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	conn, err := sqlx.Open(dbDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{
		db:     conn,
		window: RateWindow{Ceiling: 5, Period: time.Hour},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}
