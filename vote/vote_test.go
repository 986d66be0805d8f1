package vote

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/GbredngleK/NG-Insider-Bot/db"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := db.Open(filepath.Join(t.TempDir(), "votes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger, _ := test.NewNullLogger()
	return NewService(s, logger)
}

func TestPostButtons(t *testing.T) {
	extra := []model.Button{{Label: "➕ Add More", Data: "start:add_tok"}}
	rows := PostButtons("item1", model.VoteCounts{Up: 3, Down: 1}, extra)

	require.Len(t, rows, 2)
	assert.Equal(t, model.Button{Label: "👍 3", Data: "vote:up:item1"}, rows[0][0])
	assert.Equal(t, model.Button{Label: "👎 1", Data: "vote:down:item1"}, rows[0][1])
	assert.Equal(t, extra, rows[1])
}

func TestCastKeepsExtraRows(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	resume := []model.Button{{Label: "➕ Add More", URL: "https://example.com/?start=add_tok"}}
	current := PostButtons("item1", model.VoteCounts{}, resume)

	res, err := svc.Cast(ctx, "item1", "u1", model.Up, current)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, model.VoteCounts{Up: 1}, res.Counts)
	assert.Equal(t, toastRecorded, res.Toast)
	require.Len(t, res.Buttons, 2)
	assert.Equal(t, "👍 1", res.Buttons[0][0].Label)
	assert.Equal(t, resume, res.Buttons[1])

	res, err = svc.Cast(ctx, "item1", "u1", model.Up, res.Buttons)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Nil(t, res.Buttons)
	assert.Equal(t, toastRepeated, res.Toast)

	res, err = svc.Cast(ctx, "item1", "u1", model.Down, current)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, model.VoteCounts{Up: 0, Down: 1}, res.Counts)
}

func TestCastConcurrentVoters(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()
			_, err := svc.Cast(ctx, "item1", voter, model.Up, nil)
			assert.NoError(t, err)
		}(fmt.Sprintf("u%d", i))
	}
	wg.Wait()

	res, err := svc.Cast(ctx, "item1", "u0", model.Up, nil)
	require.NoError(t, err)
	assert.Equal(t, model.VoteCounts{Up: 2}, res.Counts)
}
