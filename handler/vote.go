package handler

import (
	"context"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
)

// handleVote records a 👍/👎 tap and redraws the counters in place.
func (r *Router) handleVote(ctx context.Context, ev event.Event) ([]model.Reply, error) {
	a := ev.Action
	res, err := r.votes.Cast(ctx, a.ItemID, ev.UserID, a.Direction, ev.Buttons)
	if err != nil {
		return []model.Reply{{Toast: toastVoteFailed}}, err
	}

	replies := []model.Reply{{Toast: res.Toast}}
	if res.Changed {
		replies = append(replies, editReply("", res.Buttons))
	}
	return replies, nil
}
