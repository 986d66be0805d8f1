package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/moderation"
	"github.com/sirupsen/logrus"
)

const (
	toastModeratorsOnly = "⛔ Moderators only."
	toastCannotBan      = "⛔ Moderators cannot be banned."
	toastPublishFailed  = "⚠️ Posting to the channel failed. Please try again."
	toastCheckDMs       = "📩 Check your direct messages to continue."
	toastVoteFailed     = "⚠️ Could not record your vote."

	msgPendingMissing = "⚠️ Pending data not found (context may have expired)."
	msgApproved       = "✅ **Your review has been approved!**\n\n🔑 **Your access link:**\n%s"
	defaultInvite     = "the review archive"
)

// handleModeration runs a review card button. Only moderators may press them.
func (r *Router) handleModeration(ctx context.Context, ev event.Event) ([]model.Reply, error) {
	if !r.auth.CheckAuth(ev.UserID, ev.Roles) {
		return []model.Reply{{Toast: toastModeratorsOnly}}, fmt.Errorf("moderation by %s: %w", ev.UserID, model.ErrUnauthorized)
	}

	a := ev.Action
	log := r.log.WithFields(logrus.Fields{"moderator_id": ev.UserID, "draft_id": a.DraftID, "submitter_id": a.SubmitterID})

	switch a.Kind {
	case event.ModApprove:
		return r.approve(ctx, ev, log)

	case event.ModReject:
		card := moderation.StripRejectPrompt(ev.MessageText) + "\n\n" + moderation.RejectPrompt
		return []model.Reply{editReply(card, moderation.ReasonButtons(a.SubmitterID, a.DraftID))}, nil

	case event.ModBack:
		card := moderation.StripRejectPrompt(ev.MessageText)
		return []model.Reply{editReply(card, moderation.DecisionButtons(a.SubmitterID, a.DraftID))}, nil

	case event.ModReason:
		msg, err := r.moderation.Reject(ctx, a.DraftID, a.Reason)
		if err != nil {
			log.WithError(err).Warn("Failed to clear rejected draft")
		}
		note := moderation.RejectedNote(moderation.NormalizeReason(a.Reason))
		return []model.Reply{
			{UserID: a.SubmitterID, Message: model.Outgoing{Text: msg}},
			editReply(moderation.Annotate(ev.MessageText, note), nil),
		}, nil

	case event.ModBan:
		if err := r.moderation.Ban(ctx, a.SubmitterID, "banned by moderator "+ev.UserID); err != nil {
			if errors.Is(err, model.ErrUnauthorized) {
				return []model.Reply{{Toast: toastCannotBan}}, err
			}
			return nil, err
		}
		r.sessions.Clear(a.SubmitterID)
		return []model.Reply{editReply(moderation.Annotate(ev.MessageText, moderation.NoteBanned), nil)}, nil
	}
	return nil, fmt.Errorf("%w: moderation action %d", model.ErrInvalidInput, a.Kind)
}

func (r *Router) approve(ctx context.Context, ev event.Event, log logrus.FieldLogger) ([]model.Reply, error) {
	item, err := r.moderation.Approve(ctx, ev.Action.DraftID)
	if errors.Is(err, model.ErrContextExpired) {
		return []model.Reply{{Audience: model.AudienceModerators, Message: model.Outgoing{Text: msgPendingMissing}}}, err
	}
	if err != nil {
		return []model.Reply{{Toast: toastPublishFailed}}, err
	}

	invite := defaultInvite
	if link, err := r.transport.CreateInvite(ctx, "R-"+item.SubmitterID); err != nil {
		log.WithError(err).Warn("Failed to create archive invite")
	} else {
		invite = link
	}

	return []model.Reply{
		{UserID: item.SubmitterID, Message: model.Outgoing{Text: fmt.Sprintf(msgApproved, invite)}},
		editReply(moderation.Annotate(ev.MessageText, moderation.NoteApproved), nil),
	}, nil
}

func editReply(text string, buttons [][]model.Button) model.Reply {
	return model.Reply{Edit: true, Message: model.Outgoing{Text: text, Buttons: buttons}}
}
