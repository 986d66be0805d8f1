package redisdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GbredngleK/NG-Insider-Bot/model"
)

// RegisterUser records the user's display name.
func (s *Store) RegisterUser(ctx context.Context, userID, displayName string) error {
	if err := s.client.HSet(ctx, s.key(keyUsers), userID, displayName).Err(); err != nil {
		return fmt.Errorf("register user %s: %w", userID, err)
	}
	return nil
}

// AddStrike increments and returns the user's strike count.
func (s *Store) AddStrike(ctx context.Context, userID string) (int, error) {
	n, err := s.client.Incr(ctx, s.key("strikes", userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("add strike for %s: %w", userID, err)
	}
	return int(n), nil
}

func (s *Store) Ban(ctx context.Context, userID, reason string) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.key(keyBanned), userID)
	pipe.HSet(ctx, s.key("ban_reasons"), userID, reason)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ban %s: %w", userID, err)
	}
	return nil
}

func (s *Store) Unban(ctx context.Context, userID string) error {
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, s.key(keyBanned), userID)
	pipe.HDel(ctx, s.key("ban_reasons"), userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unban %s: %w", userID, err)
	}
	return nil
}

func (s *Store) IsBanned(ctx context.Context, userID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key(keyBanned), userID).Result()
	if err != nil {
		return false, fmt.Errorf("check ban for %s: %w", userID, err)
	}
	return ok, nil
}

func (s *Store) AddMember(ctx context.Context, userID string) error {
	if err := s.client.SAdd(ctx, s.key(keyMembers), userID).Err(); err != nil {
		return fmt.Errorf("add member %s: %w", userID, err)
	}
	return nil
}

func (s *Store) IsMember(ctx context.Context, userID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key(keyMembers), userID).Result()
	if err != nil {
		return false, fmt.Errorf("check member %s: %w", userID, err)
	}
	return ok, nil
}

// AddReview appends an approved review to the archive list.
func (s *Store) AddReview(ctx context.Context, r model.Review) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal review %s: %w", r.ID, err)
	}
	added, err := s.client.SAdd(ctx, s.key(keyReviews, "ids"), r.ID).Result()
	if err != nil {
		return fmt.Errorf("add review %s: %w", r.ID, err)
	}
	if added == 0 {
		return nil
	}
	if err := s.client.RPush(ctx, s.key(keyReviews), data).Err(); err != nil {
		return fmt.Errorf("add review %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) loadReviews(ctx context.Context) ([]model.Review, error) {
	raw, err := s.client.LRange(ctx, s.key(keyReviews), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	out := make([]model.Review, 0, len(raw))
	for _, item := range raw {
		var r model.Review
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("unmarshal review: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// SearchReviews matches reviewed parties case-insensitively, oldest first.
func (s *Store) SearchReviews(ctx context.Context, q string, limit int) ([]model.Review, error) {
	all, err := s.loadReviews(ctx)
	if err != nil {
		return nil, err
	}
	return model.MatchReviews(all, q, limit), nil
}

func (s *Store) TopReviewed(ctx context.Context, n int) ([]model.Ranking, error) {
	all, err := s.loadReviews(ctx)
	if err != nil {
		return nil, err
	}
	return model.Rank(all, func(r model.Review) string { return r.ReviewedParty }, false, n), nil
}

func (s *Store) ToughestSubjects(ctx context.Context, n int) ([]model.Ranking, error) {
	all, err := s.loadReviews(ctx)
	if err != nil {
		return nil, err
	}
	return model.Rank(all, func(r model.Review) string { return r.Subject }, true, n), nil
}

// Stats 汇总各集合的大小
func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats

	pipe := s.client.Pipeline()
	users := pipe.HLen(ctx, s.key(keyUsers))
	reviews := pipe.LLen(ctx, s.key(keyReviews))
	members := pipe.SCard(ctx, s.key(keyMembers))
	banned := pipe.SCard(ctx, s.key(keyBanned))
	if _, err := pipe.Exec(ctx); err != nil {
		return st, fmt.Errorf("load stats: %w", err)
	}
	st.Users = int(users.Val())
	st.Reviews = int(reviews.Val())
	st.Members = int(members.Val())
	st.Banned = int(banned.Val())

	var err error
	st.Pending, err = s.CountContexts(ctx, model.PendingPrefix())
	return st, err
}
