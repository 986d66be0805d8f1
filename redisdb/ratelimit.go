package redisdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// admitScript keeps one sorted set of submission times per user.
// KEYS[1] window set; ARGV: now ms, cutoff ms, ceiling, member, ttl ms.
var admitScript = redis.NewScript(`
	local key = KEYS[1]
	redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
	local n = redis.call('ZCARD', key)
	if n >= tonumber(ARGV[3]) then
		return 0
	end
	redis.call('ZADD', key, ARGV[1], ARGV[4])
	redis.call('PEXPIRE', key, ARGV[5])
	return 1
`)

// Admit records a submission for userID if the trailing window has room.
// Prune, count and append run as one script, so concurrent callers cannot
// both pass the ceiling.
func (s *Store) Admit(ctx context.Context, userID string) (bool, error) {
	now := s.now()
	cutoff := now.Add(-s.window)

	ok, err := admitScript.Run(ctx, s.client, []string{s.key("window", userID)},
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.FormatInt(cutoff.UnixMilli(), 10),
		strconv.Itoa(s.ceiling),
		uuid.NewString(),
		strconv.FormatInt(s.window.Milliseconds(), 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("admit %s: %w", userID, err)
	}
	return ok == 1, nil
}
