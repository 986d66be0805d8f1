package db

import (
	"context"
	"fmt"
)

// RegisterUser records a user on first contact and refreshes the display name afterwards.
func (s *Store) RegisterUser(ctx context.Context, userID, displayName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, display_name, joined_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET display_name = excluded.display_name
	`, userID, displayName, s.now().Unix())
	if err != nil {
		return fmt.Errorf("register user %s: %w", userID, err)
	}
	return nil
}

// AddStrike increments the user's content-filter strikes and returns the new total.
func (s *Store) AddStrike(ctx context.Context, userID string) (int, error) {
	var strikes int
	err := s.db.GetContext(ctx, &strikes, `
		INSERT INTO users (user_id, strikes, joined_at) VALUES (?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET strikes = strikes + 1
		RETURNING strikes
	`, userID, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("add strike for %s: %w", userID, err)
	}
	return strikes, nil
}

// Ban permanently bans a user.
func (s *Store) Ban(ctx context.Context, userID, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO banned_users (user_id, reason, banned_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET reason = excluded.reason
	`, userID, reason, s.now().Unix())
	if err != nil {
		return fmt.Errorf("ban %s: %w", userID, err)
	}
	return nil
}

// Unban lifts a ban. Strikes are kept.
func (s *Store) Unban(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM banned_users WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("unban %s: %w", userID, err)
	}
	return nil
}

// IsBanned reports whether the user is in the banned set.
func (s *Store) IsBanned(ctx context.Context, userID string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM banned_users WHERE user_id = ?", userID); err != nil {
		return false, fmt.Errorf("check ban for %s: %w", userID, err)
	}
	return n > 0, nil
}

// AddMember grants archive access after an approved review.
func (s *Store) AddMember(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, is_member, joined_at) VALUES (?, 1, ?)
		ON CONFLICT(user_id) DO UPDATE SET is_member = 1
	`, userID, s.now().Unix())
	if err != nil {
		return fmt.Errorf("add member %s: %w", userID, err)
	}
	return nil
}

func (s *Store) IsMember(ctx context.Context, userID string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM users WHERE user_id = ? AND is_member = 1", userID); err != nil {
		return false, fmt.Errorf("check member %s: %w", userID, err)
	}
	return n > 0, nil
}
