package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/model"
)

// reviewRow mirrors the reviews table; created_at is stored as unix seconds.
type reviewRow struct {
	model.Review
	CreatedAt int64 `db:"created_at"`
}

func (r reviewRow) toModel() model.Review {
	rev := r.Review
	rev.CreatedAt = time.Unix(r.CreatedAt, 0)
	return rev
}

// AddReview stores an approved review. Recording the same id twice keeps the first row.
func (s *Store) AddReview(ctx context.Context, r model.Review) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT OR IGNORE INTO reviews (
			id, message_id, parent_message_id, submitter_id, stream, period,
			subject, reviewed_party, score, body, created_at
		) VALUES (
			:id, :message_id, :parent_message_id, :submitter_id, :stream, :period,
			:subject, :reviewed_party, :score, :body, :created_at
		)`, reviewRow{Review: r, CreatedAt: r.CreatedAt.Unix()})
	if err != nil {
		return fmt.Errorf("add review %s: %w", r.ID, err)
	}
	return nil
}

// SearchReviews finds reviews by reviewed party, case-insensitively, oldest first.
func (s *Store) SearchReviews(ctx context.Context, q string, limit int) ([]model.Review, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(q))) + "%"
	var rows []reviewRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, message_id, parent_message_id, submitter_id, stream, period,
			subject, reviewed_party, score, body, created_at
		FROM reviews
		WHERE lower(reviewed_party) LIKE ? ESCAPE '\'
		ORDER BY created_at, id
		LIMIT ?
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search reviews: %w", err)
	}

	out := make([]model.Review, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// TopReviewed ranks reviewed parties by average score, best first.
func (s *Store) TopReviewed(ctx context.Context, n int) ([]model.Ranking, error) {
	return s.rank(ctx, "reviewed_party", "DESC", n)
}

// ToughestSubjects ranks subjects by average score, lowest first.
func (s *Store) ToughestSubjects(ctx context.Context, n int) ([]model.Ranking, error) {
	return s.rank(ctx, "subject", "ASC", n)
}

func (s *Store) rank(ctx context.Context, column, order string, n int) ([]model.Ranking, error) {
	var out []model.Ranking
	query := fmt.Sprintf(`
		SELECT %s AS name, AVG(score) AS average, COUNT(*) AS count
		FROM reviews
		GROUP BY %s
		ORDER BY average %s, name
		LIMIT ?`, column, column, order)
	if err := s.db.SelectContext(ctx, &out, query, n); err != nil {
		return nil, fmt.Errorf("rank by %s: %w", column, err)
	}
	return out, nil
}

// Stats 返回用户、评价、成员、待审核和封禁数量
func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	err := s.db.GetContext(ctx, &st.Users, "SELECT COUNT(*) FROM users")
	if err == nil {
		err = s.db.GetContext(ctx, &st.Reviews, "SELECT COUNT(*) FROM reviews")
	}
	if err == nil {
		err = s.db.GetContext(ctx, &st.Members, "SELECT COUNT(*) FROM users WHERE is_member = 1")
	}
	if err == nil {
		err = s.db.GetContext(ctx, &st.Banned, "SELECT COUNT(*) FROM banned_users")
	}
	if err != nil {
		return st, fmt.Errorf("load stats: %w", err)
	}

	st.Pending, err = s.CountContexts(ctx, model.PendingPrefix())
	return st, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
