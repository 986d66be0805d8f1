// Package store declares the durable state the bot shares across users and
// opens the configured backend.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/db"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/redisdb"
)

// Contexts maps opaque keys to JSON payloads. Put upserts; Get returns
// model.ErrNotFound for absent or expired keys.
type Contexts interface {
	PutContext(ctx context.Context, key string, v any, ttl time.Duration) error
	GetContext(ctx context.Context, key string, v any) error
	DeleteContext(ctx context.Context, key string) error
	CountContexts(ctx context.Context, prefix string) (int, error)
}

// Votes is the vote ledger.
type Votes interface {
	CastVote(ctx context.Context, itemID, voterID string, dir model.Direction) (bool, model.VoteCounts, error)
	GetVotes(ctx context.Context, itemID string) (model.VoteCounts, error)
}

// RateLimiter admits one submission per call while the user is under the window ceiling.
type RateLimiter interface {
	Admit(ctx context.Context, userID string) (bool, error)
}

// Users covers the registry, strikes, bans and archive membership.
type Users interface {
	RegisterUser(ctx context.Context, userID, displayName string) error
	AddStrike(ctx context.Context, userID string) (int, error)
	Ban(ctx context.Context, userID, reason string) error
	Unban(ctx context.Context, userID string) error
	IsBanned(ctx context.Context, userID string) (bool, error)
	AddMember(ctx context.Context, userID string) error
	IsMember(ctx context.Context, userID string) (bool, error)
}

// Reviews is the archive of approved reviews.
type Reviews interface {
	AddReview(ctx context.Context, r model.Review) error
	SearchReviews(ctx context.Context, q string, limit int) ([]model.Review, error)
	TopReviewed(ctx context.Context, n int) ([]model.Ranking, error)
	ToughestSubjects(ctx context.Context, n int) ([]model.Ranking, error)
}

// Backend is everything a running bot needs from durable storage.
type Backend interface {
	Contexts
	Votes
	RateLimiter
	Users
	Reviews
	Stats(ctx context.Context) (model.Stats, error)
	Close() error
}

var (
	_ Backend = (*db.Store)(nil)
	_ Backend = (*redisdb.Store)(nil)
)

// Open builds the backend selected by cfg.Driver.
func Open(cfg model.Storage, window model.Limits) (Backend, error) {
	limit := db.RateWindow{Ceiling: window.ReviewsPerWindow, Period: window.Window}
	switch cfg.Driver {
	case "", "sqlite":
		return db.Open(cfg.SQLitePath, db.WithRateWindow(limit))
	case "redis":
		return redisdb.New(cfg.RedisURL, redisdb.WithRateWindow(limit.Ceiling, limit.Period))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
