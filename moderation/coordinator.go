// Package moderation turns pending drafts into published reviews, rejects
// them, or bans their authors.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/store"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
	"github.com/GbredngleK/NG-Insider-Bot/vote"
	"github.com/sirupsen/logrus"
)

// Publisher posts to the public feed and returns the new message id.
type Publisher interface {
	Publish(ctx context.Context, msg model.Outgoing) (string, error)
}

// Backend is the durable state moderation touches.
type Backend interface {
	store.Contexts
	store.Users
	store.Reviews
}

const (
	defaultResumeTTL = 180 * 24 * time.Hour
	recordAttempts   = 3
)

// Coordinator 负责审核流程: 批准、拒绝、封禁
type Coordinator struct {
	store Backend
	pub   Publisher
	auth  *utils.Authorizer
	log   logrus.FieldLogger

	links      model.Links
	resumeTTL  time.Duration
	retryDelay time.Duration
	newToken   func() string
	now        func() time.Time
}

func New(backend Backend, pub Publisher, auth *utils.Authorizer, links model.Links, log logrus.FieldLogger) *Coordinator {
	ttl := links.ResumeTTL
	if ttl <= 0 {
		ttl = defaultResumeTTL
	}
	return &Coordinator{
		store:      backend,
		pub:        pub,
		auth:       auth,
		log:        log,
		links:      links,
		resumeTTL:  ttl,
		retryDelay: 200 * time.Millisecond,
		newToken:   utils.NewResumeToken,
		now:        time.Now,
	}
}

// threadParent is the message every later follow-up must reply to: the
// inherited parent of a follow-up, or the new post itself for a root review.
func threadParent(d model.Draft, publishedMessageID string) string {
	if d.ThreadParentID != "" {
		return d.ThreadParentID
	}
	return publishedMessageID
}

// Approve publishes a pending draft. The pending entry survives a failed
// publish so the moderator can retry.
func (c *Coordinator) Approve(ctx context.Context, draftID string) (*model.PublishedItem, error) {
	var entry model.PendingEntry
	if err := c.store.GetContext(ctx, model.PendingKey(draftID), &entry); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("pending draft %s: %w", draftID, model.ErrContextExpired)
		}
		return nil, fmt.Errorf("failed to load pending draft %s: %w", draftID, err)
	}
	d := entry.Draft
	log := c.log.WithFields(logrus.Fields{"draft_id": d.ID, "submitter_id": entry.SubmitterID})

	token := c.newToken()
	resume := c.resumeButton(token)
	msg := model.Outgoing{
		Text:    ComposePost(d),
		Buttons: vote.PostButtons(d.ID, model.VoteCounts{}, []model.Button{resume}),
		ReplyTo: d.ThreadParentID,
	}
	messageID, err := c.pub.Publish(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to publish draft %s: %w", draftID, err)
	}

	parent := threadParent(d, messageID)
	next := model.ResumeEntry{
		Stream:        d.Stream,
		Period:        d.Period,
		Subject:       d.Subject,
		ReviewedParty: d.ReviewedParty,
		ParentID:      parent,
	}
	if err := c.store.PutContext(ctx, model.ResumeKey(token), next, c.resumeTTL); err != nil {
		log.WithError(err).Warn("Failed to store resume context")
	}

	c.recordReview(ctx, log, model.ReviewFromDraft(d, entry.SubmitterID, messageID, parent, c.now()))

	if err := c.store.AddMember(ctx, entry.SubmitterID); err != nil {
		log.WithError(err).Warn("Failed to mark submitter as member")
	}
	if err := c.store.DeleteContext(ctx, model.PendingKey(draftID)); err != nil {
		log.WithError(err).Warn("Failed to delete pending draft")
	}

	log.WithFields(logrus.Fields{"message_id": messageID, "parent_id": parent}).Info("Review approved and published")
	return &model.PublishedItem{
		ItemID:      d.ID,
		MessageID:   messageID,
		ParentID:    parent,
		ResumeToken: token,
		ResumeLink:  c.resumeLink(token),
		SubmitterID: entry.SubmitterID,
		Draft:       d,
	}, nil
}

// recordReview archives an already published review. The post cannot be
// taken back, so after the last attempt the review is only logged.
func (c *Coordinator) recordReview(ctx context.Context, log logrus.FieldLogger, r model.Review) {
	var err error
	for attempt := 1; attempt <= recordAttempts; attempt++ {
		if err = c.store.AddReview(ctx, r); err == nil {
			return
		}
		log.WithError(err).WithField("attempt", attempt).Warn("Failed to record review")
		if attempt == recordAttempts {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			attempt = recordAttempts
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}
	log.WithError(err).WithField("message_id", r.MessageID).Error("Orphaned published post: review not archived")
}

func (c *Coordinator) resumeLink(token string) string {
	arg := model.ResumeArgPrefix + token
	if c.links.ResumeURL == "" {
		return arg
	}
	return fmt.Sprintf(c.links.ResumeURL, arg)
}

func (c *Coordinator) resumeButton(token string) model.Button {
	if c.links.ResumeURL != "" {
		return model.Button{Label: ResumeLabel, URL: c.resumeLink(token)}
	}
	return model.Button{Label: ResumeLabel, Data: event.Action{Kind: event.Resume, Token: token}.Encode()}
}

// Reject drops a pending draft and returns the text for its author. An
// unknown reason is treated as DefaultReason.
func (c *Coordinator) Reject(ctx context.Context, draftID, reason string) (string, error) {
	code := NormalizeReason(reason)
	if err := c.store.DeleteContext(ctx, model.PendingKey(draftID)); err != nil {
		return RejectionText(code), fmt.Errorf("failed to delete pending draft %s: %w", draftID, err)
	}
	c.log.WithFields(logrus.Fields{"draft_id": draftID, "reason": code}).Info("Review rejected")
	return RejectionText(code), nil
}

// Ban permanently blocks userID. Configured moderators cannot be banned.
func (c *Coordinator) Ban(ctx context.Context, userID, reason string) error {
	if c.auth.IsModeratorID(userID) {
		return fmt.Errorf("cannot ban moderator %s: %w", userID, model.ErrUnauthorized)
	}
	if err := c.store.Ban(ctx, userID, reason); err != nil {
		return fmt.Errorf("failed to ban %s: %w", userID, err)
	}
	c.log.WithFields(logrus.Fields{"user_id": userID, "reason": reason}).Info("User banned")
	return nil
}
