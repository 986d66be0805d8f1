// Package redisdb is the Redis backend. Every per-key read-modify-write is a
// Lua script so it runs atomically on the server.
package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/redis/go-redis/v9"
)

const (
	keyBanned  = "banned"
	keyMembers = "members"
	keyUsers   = "users"
	keyReviews = "reviews"
)

// Store implements the bot's durable state on Redis.
type Store struct {
	client  *redis.Client
	prefix  string
	ceiling int
	window  time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRateWindow sets the submission ceiling per trailing window.
func WithRateWindow(ceiling int, window time.Duration) Option {
	return func(s *Store) {
		s.ceiling = ceiling
		s.window = window
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPrefix namespaces every key, e.g. to share one Redis between bots.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New connects to redisURL and checks the connection.
func New(redisURL string, opts ...Option) (*Store, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(parsed)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, opts...), nil
}

// NewWithClient creates a store from an existing Redis client.
func NewWithClient(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client:  client,
		prefix:  "reviewbot:",
		ceiling: 5,
		window:  time.Hour,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// PutContext stores v as JSON under key with an optional TTL.
func (s *Store) PutContext(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal context %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key("ctx", key), data, ttl).Err(); err != nil {
		return fmt.Errorf("save context %s: %w", key, err)
	}
	return nil
}

// GetContext decodes the entry under key into v.
func (s *Store) GetContext(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, s.key("ctx", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("context %s: %w", key, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load context %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal context %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteContext(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key("ctx", key)).Err(); err != nil {
		return fmt.Errorf("delete context %s: %w", key, err)
	}
	return nil
}

// CountContexts counts entries whose key starts with prefix.
func (s *Store) CountContexts(ctx context.Context, prefix string) (int, error) {
	var (
		cursor uint64
		n      int
	)
	match := s.key("ctx", prefix) + "*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 200).Result()
		if err != nil {
			return 0, fmt.Errorf("count contexts: %w", err)
		}
		n += len(keys)
		if next == 0 {
			return n, nil
		}
		cursor = next
	}
}
