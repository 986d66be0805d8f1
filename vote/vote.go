// Package vote records 👍/👎 taps on published reviews and redraws the
// counters on the post.
package vote

import (
	"context"
	"fmt"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/store"
	"github.com/sirupsen/logrus"
)

const (
	toastRecorded = "✅ Vote recorded!"
	toastRepeated = "You've already voted this way!"
)

// Result is the outcome of one vote tap.
type Result struct {
	Changed bool
	Counts  model.VoteCounts
	// Buttons is the redrawn keyboard, nil when nothing changed.
	Buttons [][]model.Button
	Toast   string
}

// Service 处理已发布评价上的投票
type Service struct {
	votes store.Votes
	log   logrus.FieldLogger
}

func NewService(votes store.Votes, log logrus.FieldLogger) *Service {
	return &Service{votes: votes, log: log}
}

// Cast records voterID's choice on itemID. current is the post's keyboard
// as the voter saw it; rows after the counters are carried over unchanged.
func (s *Service) Cast(ctx context.Context, itemID, voterID string, dir model.Direction, current [][]model.Button) (Result, error) {
	changed, counts, err := s.votes.CastVote(ctx, itemID, voterID, dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to cast vote on %s: %w", itemID, err)
	}
	if !changed {
		return Result{Counts: counts, Toast: toastRepeated}, nil
	}

	s.log.WithFields(logrus.Fields{
		"item_id": itemID,
		"up":      counts.Up,
		"down":    counts.Down,
	}).Debug("Vote recorded")

	var extra [][]model.Button
	if len(current) > 1 {
		extra = current[1:]
	}
	return Result{
		Changed: true,
		Counts:  counts,
		Buttons: PostButtons(itemID, counts, extra...),
		Toast:   toastRecorded,
	}, nil
}

// PostButtons is the keyboard of a published review: the counters first,
// then any extra rows.
func PostButtons(itemID string, counts model.VoteCounts, extra ...[]model.Button) [][]model.Button {
	rows := make([][]model.Button, 0, len(extra)+1)
	rows = append(rows, counterRow(itemID, counts))
	return append(rows, extra...)
}

func counterRow(itemID string, counts model.VoteCounts) []model.Button {
	up := event.Action{Kind: event.Vote, Direction: model.Up, ItemID: itemID}
	down := event.Action{Kind: event.Vote, Direction: model.Down, ItemID: itemID}
	return []model.Button{
		{Label: fmt.Sprintf("👍 %d", counts.Up), Data: up.Encode()},
		{Label: fmt.Sprintf("👎 %d", counts.Down), Data: down.Encode()},
	}
}
