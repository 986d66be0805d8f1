package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/model"
)

// PutContext stores v as JSON under key, replacing any earlier entry.
// A ttl of zero keeps the entry until it is deleted.
func (s *Store) PutContext(ctx context.Context, key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal context %s: %w", key, err)
	}

	now := s.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixMilli()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contexts (key, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
		payload = excluded.payload,
		created_at = excluded.created_at,
		expires_at = excluded.expires_at
	`, key, string(payload), now.UnixMilli(), expiresAt)
	if err != nil {
		return fmt.Errorf("save context %s: %w", key, err)
	}
	return nil
}

// GetContext decodes the live entry under key into v.
func (s *Store) GetContext(ctx context.Context, key string, v any) error {
	var payload string
	err := s.db.GetContext(ctx, &payload, `
		SELECT payload FROM contexts
		WHERE key = ? AND (expires_at = 0 OR expires_at > ?)
	`, key, s.now().UnixMilli())
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("context %s: %w", key, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load context %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("unmarshal context %s: %w", key, err)
	}
	return nil
}

// DeleteContext removes key. Deleting a missing key is not an error.
func (s *Store) DeleteContext(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM contexts WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete context %s: %w", key, err)
	}
	return nil
}

// CountContexts counts live entries whose key starts with prefix.
func (s *Store) CountContexts(ctx context.Context, prefix string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM contexts
		WHERE substr(key, 1, ?) = ? AND (expires_at = 0 OR expires_at > ?)
	`, len(prefix), prefix, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("count contexts: %w", err)
	}
	return n, nil
}

// PurgeExpired deletes expired contexts and returns how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM contexts WHERE expires_at != 0 AND expires_at <= ?", s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge contexts: %w", err)
	}
	return res.RowsAffected()
}
