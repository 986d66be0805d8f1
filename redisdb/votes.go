package redisdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/redis/go-redis/v9"
)

// castVoteScript returns {changed, up, down}.
// KEYS[1] counts hash, KEYS[2] voter hash; ARGV[1] voter, ARGV[2] direction.
var castVoteScript = redis.NewScript(`
	local counts = KEYS[1]
	local voters = KEYS[2]
	local voter = ARGV[1]
	local dir = ARGV[2]

	local prev = redis.call('HGET', voters, voter)
	if prev == dir then
		local up = tonumber(redis.call('HGET', counts, 'up') or '0')
		local down = tonumber(redis.call('HGET', counts, 'down') or '0')
		return {0, up, down}
	end

	if prev then
		local left = redis.call('HINCRBY', counts, prev, -1)
		if left < 0 then
			redis.call('HSET', counts, prev, 0)
		end
	end
	redis.call('HINCRBY', counts, dir, 1)
	redis.call('HSET', voters, voter, dir)

	local up = tonumber(redis.call('HGET', counts, 'up') or '0')
	local down = tonumber(redis.call('HGET', counts, 'down') or '0')
	return {1, up, down}
`)

// CastVote records voterID's choice on itemID atomically.
func (s *Store) CastVote(ctx context.Context, itemID, voterID string, dir model.Direction) (bool, model.VoteCounts, error) {
	if _, err := model.ParseDirection(string(dir)); err != nil {
		return false, model.VoteCounts{}, err
	}

	keys := []string{s.key("votes", itemID), s.key("votes", itemID, "voters")}
	res, err := castVoteScript.Run(ctx, s.client, keys, voterID, string(dir)).Int64Slice()
	if err != nil {
		return false, model.VoteCounts{}, fmt.Errorf("cast vote: %w", err)
	}
	if len(res) != 3 {
		return false, model.VoteCounts{}, fmt.Errorf("cast vote: unexpected reply %v", res)
	}
	return res[0] == 1, model.VoteCounts{Up: int(res[1]), Down: int(res[2])}, nil
}

// GetVotes returns the current counts of itemID.
func (s *Store) GetVotes(ctx context.Context, itemID string) (model.VoteCounts, error) {
	vals, err := s.client.HMGet(ctx, s.key("votes", itemID), string(model.Up), string(model.Down)).Result()
	if err != nil {
		return model.VoteCounts{}, fmt.Errorf("load votes: %w", err)
	}
	return model.VoteCounts{Up: toInt(vals[0]), Down: toInt(vals[1])}, nil
}

func toInt(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
