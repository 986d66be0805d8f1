package db

import (
	"context"
	"fmt"
)

// Admit prunes the user's submissions outside the window, and records a new
// one only if fewer than the ceiling remain. The three steps share one
// transaction, and the pool has a single connection, so concurrent calls for
// the same user are serialised.
func (s *Store) Admit(ctx context.Context, userID string) (bool, error) {
	now := s.now()
	cutoff := now.Add(-s.window.Period).UnixMilli()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin admit transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM submission_events WHERE user_id = ? AND at <= ?", userID, cutoff); err != nil {
		return false, fmt.Errorf("prune submissions: %w", err)
	}

	var n int
	if err := tx.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM submission_events WHERE user_id = ?", userID); err != nil {
		return false, fmt.Errorf("count submissions: %w", err)
	}
	if n >= s.window.Ceiling {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO submission_events (user_id, at) VALUES (?, ?)", userID, now.UnixMilli()); err != nil {
		return false, fmt.Errorf("record submission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit admit: %w", err)
	}
	return true, nil
}
