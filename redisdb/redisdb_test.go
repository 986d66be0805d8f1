package redisdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := New("redis://"+mr.Addr(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestNew(t *testing.T) {
	s, _ := setupTestRedis(t)
	assert.NoError(t, s.Ping(context.Background()))

	_, err := New("not a url")
	assert.Error(t, err)
}

func TestContextTTL(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	in := model.PendingEntry{Draft: model.Draft{ID: "d1", Body: "body"}, SubmitterID: "u"}
	require.NoError(t, s.PutContext(ctx, model.PendingKey("d1"), in, time.Hour))

	var out model.PendingEntry
	require.NoError(t, s.GetContext(ctx, model.PendingKey("d1"), &out))
	assert.Equal(t, "d1", out.Draft.ID)
	assert.Equal(t, "u", out.SubmitterID)

	n, err := s.CountContexts(ctx, model.PendingPrefix())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mr.FastForward(2 * time.Hour)
	assert.ErrorIs(t, s.GetContext(ctx, model.PendingKey("d1"), &out), model.ErrNotFound)

	require.NoError(t, s.PutContext(ctx, model.ResumeKey("t"), model.ResumeEntry{ParentID: "p"}, 0))
	require.NoError(t, s.DeleteContext(ctx, model.ResumeKey("t")))
	assert.ErrorIs(t, s.GetContext(ctx, model.ResumeKey("t"), &out), model.ErrNotFound)
}

func TestCastVote(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	changed, counts, err := s.CastVote(ctx, "item", "u1", model.Up)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.VoteCounts{Up: 1}, counts)

	changed, counts, err = s.CastVote(ctx, "item", "u1", model.Up)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, model.VoteCounts{Up: 1}, counts)

	changed, counts, err = s.CastVote(ctx, "item", "u1", model.Down)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.VoteCounts{Up: 0, Down: 1}, counts)

	got, err := s.GetVotes(ctx, "item")
	require.NoError(t, err)
	assert.Equal(t, model.VoteCounts{Down: 1}, got)

	_, _, err = s.CastVote(ctx, "item", "u1", "both")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCastVoteConcurrent(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.CastVote(ctx, "item", fmt.Sprintf("u%d", i), model.Up)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.GetVotes(ctx, "item")
	require.NoError(t, err)
	assert.Equal(t, model.VoteCounts{Up: 10}, got)
}

func TestAdmit(t *testing.T) {
	const ceiling = 4
	s, _ := setupTestRedis(t, WithRateWindow(ceiling, time.Hour))
	ctx := context.Background()

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 2*ceiling; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Admit(ctx, "u")
			assert.NoError(t, err)
			if ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(ceiling), admitted.Load())
}

func TestAdmitWindowSlides(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	s, _ := setupTestRedis(t, WithRateWindow(1, time.Hour), WithClock(clock))
	ctx := context.Background()

	ok, err := s.Admit(ctx, "u")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Admit(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)

	advance(time.Hour + time.Second)
	ok, err = s.Admit(ctx, "u")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStrikesBansMembers(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	n, err := s.AddStrike(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.AddStrike(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Ban(ctx, "u", "strikes"))
	banned, err := s.IsBanned(ctx, "u")
	require.NoError(t, err)
	assert.True(t, banned)

	require.NoError(t, s.Unban(ctx, "u"))
	banned, err = s.IsBanned(ctx, "u")
	require.NoError(t, err)
	assert.False(t, banned)

	require.NoError(t, s.AddMember(ctx, "u"))
	member, err := s.IsMember(ctx, "u")
	require.NoError(t, err)
	assert.True(t, member)
}

func TestReviewsAndStats(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterUser(ctx, "u", "U"))
	require.NoError(t, s.AddMember(ctx, "u"))
	for _, r := range []model.Review{
		{ID: "1", Subject: "Physics", ReviewedParty: "Dr. Abebe", Score: 5},
		{ID: "2", Subject: "Physics", ReviewedParty: "dr. abebe", Score: 4},
		{ID: "3", Subject: "Law", ReviewedParty: "Ms. Sara", Score: 1},
	} {
		require.NoError(t, s.AddReview(ctx, r))
	}
	require.NoError(t, s.AddReview(ctx, model.Review{ID: "1", Score: 1}))

	found, err := s.SearchReviews(ctx, "ABEBE", 50)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	top, err := s.TopReviewed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Dr. Abebe", top[0].Name)

	tough, err := s.ToughestSubjects(ctx, 5)
	require.NoError(t, err)
	require.Len(t, tough, 2)
	assert.Equal(t, "Law", tough[0].Name)
	assert.InDelta(t, 4.5, tough[1].Average, 0.001)

	require.NoError(t, s.PutContext(ctx, model.PendingKey("x"), model.PendingEntry{}, 0))
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{Users: 1, Reviews: 3, Members: 1, Pending: 1}, st)
}
