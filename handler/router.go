package handler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/moderation"
	"github.com/GbredngleK/NG-Insider-Bot/session"
	"github.com/GbredngleK/NG-Insider-Bot/store"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
	"github.com/GbredngleK/NG-Insider-Bot/vote"
	"github.com/sirupsen/logrus"
)

// Transport is the outbound side of the chat platform. Every call is best
// effort; failures wrap model.ErrDelivery.
type Transport interface {
	Send(ctx context.Context, target model.Target, msg model.Outgoing) (string, error)
	// Edit rewrites a message. Empty text keeps the current text; nil
	// buttons remove the keyboard.
	Edit(ctx context.Context, target model.Target, messageID, text string, buttons [][]model.Button) error
	Toast(ctx context.Context, ref, text string) error
	CreateInvite(ctx context.Context, label string) (string, error)
}

// Conversation runs user events through the review state machine.
type Conversation interface {
	Handle(ctx context.Context, ev event.Event) ([]model.Reply, error)
}

// Archive is what the lookup commands read.
type Archive interface {
	IsMember(ctx context.Context, userID string) (bool, error)
	IsBanned(ctx context.Context, userID string) (bool, error)
	store.Reviews
}

// Router dispatches inbound events by their closed kind and delivers the
// resulting replies.
type Router struct {
	conversation Conversation
	moderation   *moderation.Coordinator
	votes        *vote.Service
	archive      Archive
	sessions     session.Store
	auth         *utils.Authorizer
	transport    Transport
	channels     model.Channels
	log          logrus.FieldLogger
}

// Deps groups what a Router needs.
type Deps struct {
	Conversation Conversation
	Moderation   *moderation.Coordinator
	Votes        *vote.Service
	Archive      Archive
	Sessions     session.Store
	Auth         *utils.Authorizer
	Transport    Transport
	Channels     model.Channels
	Log          logrus.FieldLogger
}

func NewRouter(d Deps) *Router {
	return &Router{
		conversation: d.Conversation,
		moderation:   d.Moderation,
		votes:        d.Votes,
		archive:      d.Archive,
		sessions:     d.Sessions,
		auth:         d.Auth,
		transport:    d.Transport,
		channels:     d.Channels,
		log:          d.Log,
	}
}

// Dispatch handles one event to completion. A failing or panicking event
// is logged and never affects other events.
func (r *Router) Dispatch(ctx context.Context, ev event.Event) {
	log := r.log.WithFields(logrus.Fields{"user_id": ev.UserID, "event": ev.Kind.String()})
	defer func() {
		if p := recover(); p != nil {
			log.WithFields(logrus.Fields{"panic": p, "stack": string(debug.Stack())}).Error("Recovered from panic while handling event")
		}
	}()

	replies, err := r.route(ctx, ev)
	if err != nil {
		logOutcome(log, err)
	}
	r.deliver(ctx, ev, replies)
}

func (r *Router) route(ctx context.Context, ev event.Event) ([]model.Reply, error) {
	if ev.Kind != event.Tap {
		return r.conversation.Handle(ctx, ev)
	}

	switch a := ev.Action; {
	case a.Kind == event.Vote:
		return r.handleVote(ctx, ev)
	case a.IsModeration():
		return r.handleModeration(ctx, ev)
	case a.Kind == event.Resume:
		// The resume button lives on the public post; the follow-up
		// conversation continues in the user's DMs.
		start := event.Event{
			Kind:        event.Start,
			UserID:      ev.UserID,
			DisplayName: ev.DisplayName,
			Roles:       ev.Roles,
			ResumeToken: a.Token,
		}
		replies, err := r.conversation.Handle(ctx, start)
		return append([]model.Reply{{Toast: toastCheckDMs}}, replies...), err
	}
	return r.conversation.Handle(ctx, ev)
}

func logOutcome(log logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, model.ErrPermanentBan),
		errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrContextExpired),
		errors.Is(err, model.ErrInvalidInput):
		log.WithError(err).Info("Event refused")
	default:
		log.WithError(err).Error("Failed to handle event")
	}
}

func (r *Router) target(ev event.Event, rep model.Reply) model.Target {
	switch rep.Audience {
	case model.AudienceModerators:
		return model.Target{ChannelID: r.channels.ReviewChannelID}
	case model.AudiencePublic:
		return model.Target{ChannelID: r.channels.PublishChannelID}
	}
	if rep.UserID != "" {
		return model.Target{UserID: rep.UserID}
	}
	return model.Target{UserID: ev.UserID}
}

// deliver sends replies in order. Failures are logged and skipped.
func (r *Router) deliver(ctx context.Context, ev event.Event, replies []model.Reply) {
	for _, rep := range replies {
		if rep.Toast != "" {
			if err := r.transport.Toast(ctx, ev.Ref, rep.Toast); err != nil {
				r.deliveryFailed(err, ev, "toast")
			}
		}

		if rep.Edit && ev.MessageID != "" {
			target := model.Target{ChannelID: ev.ChannelID}
			if err := r.transport.Edit(ctx, target, ev.MessageID, rep.Message.Text, rep.Message.Buttons); err != nil {
				r.deliveryFailed(err, ev, "edit")
			}
			continue
		}

		if rep.Message.Text == "" {
			continue
		}
		if _, err := r.transport.Send(ctx, r.target(ev, rep), rep.Message); err != nil {
			r.deliveryFailed(err, ev, "send")
		}
	}
}

func (r *Router) deliveryFailed(err error, ev event.Event, op string) {
	if !errors.Is(err, model.ErrDelivery) {
		err = fmt.Errorf("%w: %w", model.ErrDelivery, err)
	}
	r.log.WithError(err).WithFields(logrus.Fields{
		"user_id": ev.UserID,
		"op":      op,
	}).Warn("Failed to deliver reply")
}
