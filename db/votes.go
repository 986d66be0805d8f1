package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/jmoiron/sqlx"
)

// CastVote records voterID's choice on itemID. Repeating the current choice
// returns changed=false; switching moves the voter from the old bucket to the
// new one inside the same transaction.
func (s *Store) CastVote(ctx context.Context, itemID, voterID string, dir model.Direction) (bool, model.VoteCounts, error) {
	var counts model.VoteCounts
	if _, err := model.ParseDirection(string(dir)); err != nil {
		return false, counts, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, counts, fmt.Errorf("begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	prev, err := getChoiceInTx(ctx, tx, itemID, voterID)
	if err != nil {
		return false, counts, err
	}

	if prev == dir {
		counts, err = getVotesInTx(ctx, tx, itemID)
		return false, counts, err
	}

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO votes (item_id) VALUES (?)", itemID); err != nil {
		return false, counts, fmt.Errorf("create vote record: %w", err)
	}
	if prev != "" {
		if err := updateVoteCountInTx(ctx, tx, itemID, prev, -1); err != nil {
			return false, counts, err
		}
	}
	if err := updateVoteCountInTx(ctx, tx, itemID, dir, 1); err != nil {
		return false, counts, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote_choices (item_id, voter_id, direction, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id, voter_id) DO UPDATE SET
		direction = excluded.direction,
		updated_at = excluded.updated_at
	`, itemID, voterID, string(dir), s.now().Unix())
	if err != nil {
		return false, counts, fmt.Errorf("save vote choice: %w", err)
	}

	if counts, err = getVotesInTx(ctx, tx, itemID); err != nil {
		return false, counts, err
	}
	if err := tx.Commit(); err != nil {
		return false, model.VoteCounts{}, fmt.Errorf("commit vote: %w", err)
	}
	return true, counts, nil
}

// GetVotes returns the counts of itemID; an item nobody voted on has zero counts.
func (s *Store) GetVotes(ctx context.Context, itemID string) (model.VoteCounts, error) {
	var counts model.VoteCounts
	err := s.db.GetContext(ctx, &counts, "SELECT up_count, down_count FROM votes WHERE item_id = ?", itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VoteCounts{}, nil
	}
	if err != nil {
		return counts, fmt.Errorf("load votes: %w", err)
	}
	return counts, nil
}

func getChoiceInTx(ctx context.Context, tx *sqlx.Tx, itemID, voterID string) (model.Direction, error) {
	var dir string
	err := tx.GetContext(ctx, &dir,
		"SELECT direction FROM vote_choices WHERE item_id = ? AND voter_id = ?", itemID, voterID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load vote choice: %w", err)
	}
	return model.Direction(dir), nil
}

func getVotesInTx(ctx context.Context, tx *sqlx.Tx, itemID string) (model.VoteCounts, error) {
	var counts model.VoteCounts
	err := tx.GetContext(ctx, &counts, "SELECT up_count, down_count FROM votes WHERE item_id = ?", itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VoteCounts{}, nil
	}
	if err != nil {
		return counts, fmt.Errorf("load votes: %w", err)
	}
	return counts, nil
}

// updateVoteCountInTx 在事务中更新指定方向的计数，计数不会低于零
func updateVoteCountInTx(ctx context.Context, tx *sqlx.Tx, itemID string, dir model.Direction, delta int) error {
	var column string
	switch dir {
	case model.Up:
		column = "up_count"
	case model.Down:
		column = "down_count"
	default:
		return fmt.Errorf("%w: vote direction %q", model.ErrInvalidInput, dir)
	}

	query := fmt.Sprintf("UPDATE votes SET %s = MAX(%s + ?, 0) WHERE item_id = ?", column, column)
	if _, err := tx.ExecContext(ctx, query, delta, itemID); err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}
