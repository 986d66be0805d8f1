// Package conversation drives each user through building a batch of review
// drafts and hands submitted drafts to the moderators.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GbredngleK/NG-Insider-Bot/catalog"
	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/filter"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/moderation"
	"github.com/GbredngleK/NG-Insider-Bot/session"
	"github.com/GbredngleK/NG-Insider-Bot/store"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
	"github.com/sirupsen/logrus"
)

// Backend is the durable state the engine touches.
type Backend interface {
	store.Contexts
	store.RateLimiter
	store.Users
}

// Engine is the review conversation state machine. It is safe for
// concurrent use; events of one user are serialised on the session lock.
type Engine struct {
	store    Backend
	sessions session.Store
	catalog  *catalog.Catalog
	filter   *filter.Filter
	log      logrus.FieldLogger

	limits     model.Limits
	ceiling    int
	pendingTTL time.Duration
	now        func() time.Time
}

// New builds an engine. Zero limits in cfg fall back to the defaults.
func New(cfg model.Config, backend Backend, sessions session.Store, cat *catalog.Catalog, f *filter.Filter, log logrus.FieldLogger) *Engine {
	limits := cfg.Limits
	if limits.ReviewsPerWindow <= 0 {
		limits.ReviewsPerWindow = 5
	}
	if limits.Window <= 0 {
		limits.Window = time.Hour
	}
	if limits.MinPartyLen <= 0 {
		limits.MinPartyLen = 3
	}
	if limits.MinBodyLen <= 0 {
		limits.MinBodyLen = 30
	}
	if limits.SubjectsPerPage <= 0 {
		limits.SubjectsPerPage = 6
	}
	ceiling := cfg.Moderation.StrikeCeiling
	if ceiling <= 0 {
		ceiling = 3
	}
	pendingTTL := cfg.Moderation.PendingTTL
	if pendingTTL <= 0 {
		pendingTTL = 30 * 24 * time.Hour
	}

	return &Engine{
		store:      backend,
		sessions:   sessions,
		catalog:    cat,
		filter:     f,
		log:        log,
		limits:     limits,
		ceiling:    ceiling,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// Handle runs one event through the state machine and returns the replies
// to deliver. A banned user gets the denial and model.ErrPermanentBan
// without any session being created.
func (e *Engine) Handle(ctx context.Context, ev event.Event) ([]model.Reply, error) {
	log := e.log.WithFields(logrus.Fields{"user_id": ev.UserID, "event": ev.Kind.String()})

	if ev.Kind == event.Start {
		if err := e.store.RegisterUser(ctx, ev.UserID, ev.DisplayName); err != nil {
			log.WithError(err).Warn("Failed to register user")
		}
	}

	banned, err := e.store.IsBanned(ctx, ev.UserID)
	if err != nil {
		return []model.Reply{text(msgInternalError)}, fmt.Errorf("failed to check ban status: %w", err)
	}
	if banned {
		return []model.Reply{text(msgBanned)}, model.ErrPermanentBan
	}

	var s *session.Session
	switch ev.Kind {
	case event.Start:
		s = e.sessions.Reset(ev.UserID)
	case event.Cancel:
		e.sessions.Clear(ev.UserID)
		return e.cancelled(ev), nil
	default:
		s = e.sessions.GetOrCreate(ev.UserID)
	}

	s.Lock()
	defer s.Unlock()

	from := s.State
	next, replies := e.step(ctx, from, s, ev)
	s.State = next
	if next == session.Idle {
		e.sessions.Clear(ev.UserID)
	}

	log.WithFields(logrus.Fields{"from": from.String(), "to": next.String()}).Debug("Conversation step")
	return replies, nil
}

func isCancel(ev event.Event) bool {
	switch ev.Kind {
	case event.Cancel:
		return true
	case event.Text:
		return strings.TrimSpace(ev.Text) == BtnCancel
	case event.Tap:
		return ev.Action.Kind == event.CancelFlow
	}
	return false
}

func (e *Engine) step(ctx context.Context, state session.State, s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if isCancel(ev) {
		return session.Idle, e.cancelled(ev)
	}
	if ev.Kind == event.Start {
		return e.start(ctx, s, ev)
	}

	switch state {
	case session.SelectCategory, session.SelectPeriod, session.SelectSubject,
		session.InputReviewedParty, session.SelectScore, session.InputBody:
		if s.Draft == nil {
			return session.Idle, []model.Reply{menu(msgNoData, mainMenu())}
		}
	}

	switch state {
	case session.Idle:
		return e.idle(s, ev)
	case session.SelectCategory:
		return e.selectCategory(s, ev)
	case session.SelectPeriod:
		return e.selectPeriod(s, ev)
	case session.SelectSubject:
		return e.selectSubject(s, ev)
	case session.InputReviewedParty:
		return e.inputReviewedParty(s, ev)
	case session.SelectScore:
		return e.selectScore(s, ev)
	case session.InputBody:
		return e.inputBody(ctx, s, ev)
	case session.BatchMenu:
		return e.batchMenu(ctx, s, ev)
	case session.ManageDrafts:
		return e.manageDrafts(ctx, s, ev)
	}
	return state, []model.Reply{text(msgInvalid)}
}

func (e *Engine) start(ctx context.Context, s *session.Session, ev event.Event) (session.State, []model.Reply) {
	var replies []model.Reply
	if ev.ResumeToken != "" {
		var entry model.ResumeEntry
		err := e.store.GetContext(ctx, model.ResumeKey(ev.ResumeToken), &entry)
		if err == nil {
			d := s.NewDraft()
			d.Stream = entry.Stream
			d.Period = entry.Period
			d.Subject = entry.Subject
			d.ReviewedParty = entry.ReviewedParty
			d.ThreadParentID = entry.ParentID
			d.IsFollowup = true

			msg := fmt.Sprintf(msgWelcomeDeep, utils.EscapeMarkdown(d.ReviewedParty), utils.EscapeMarkdown(d.Subject))
			return session.SelectScore, []model.Reply{buttons(msg, ratingButtons())}
		}
		if !errors.Is(err, model.ErrNotFound) {
			e.log.WithError(err).WithField("token", ev.ResumeToken).Error("Failed to load resume context")
		}
		replies = append(replies, text(msgLinkExpired))
	}
	return session.Idle, append(replies, menu(msgWelcome, mainMenu()))
}

func (e *Engine) idle(s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if ev.Kind == event.Text {
		switch strings.TrimSpace(ev.Text) {
		case BtnWrite:
			return e.beginDraft(s)
		case BtnMaterials:
			return session.Idle, []model.Reply{menu(msgMaterials, mainMenu())}
		}
	}
	return session.Idle, []model.Reply{menu(msgInvalid, mainMenu())}
}

func (e *Engine) beginDraft(s *session.Session) (session.State, []model.Reply) {
	s.NewDraft()
	return session.SelectCategory, []model.Reply{menu(msgPromptStream, withCancel(e.catalog.StreamNames()))}
}

func (e *Engine) selectCategory(s *session.Session, ev event.Event) (session.State, []model.Reply) {
	choice := strings.TrimSpace(ev.Text)
	if ev.Kind != event.Text || !e.catalog.HasStream(choice) {
		return session.SelectCategory, []model.Reply{text(msgInvalid)}
	}
	s.Draft.Stream = choice
	return session.SelectPeriod, []model.Reply{menu(msgPromptPeriod, withCancel(e.catalog.PeriodNames(choice)))}
}

func (e *Engine) selectPeriod(s *session.Session, ev event.Event) (session.State, []model.Reply) {
	choice := strings.TrimSpace(ev.Text)
	if ev.Kind != event.Text || !slices.Contains(e.catalog.PeriodNames(s.Draft.Stream), choice) {
		return session.SelectPeriod, []model.Reply{text(msgInvalid)}
	}
	s.Draft.Period = choice
	s.Page = 0

	subjects := e.catalog.Subjects(s.Draft.Stream, choice)
	msg := msgPromptSubject + "\n\n" + e.pageHeader(0, len(subjects))
	return session.SelectSubject, []model.Reply{buttons(msg, subjectButtons(subjects, 0, e.limits.SubjectsPerPage))}
}

func (e *Engine) pageHeader(page, total int) string {
	return fmt.Sprintf(msgSubjectPage, page+1, pageCount(total, e.limits.SubjectsPerPage))
}

func (e *Engine) selectSubject(s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if ev.Kind != event.Tap {
		return session.SelectSubject, []model.Reply{text(msgInvalid)}
	}
	subjects := e.catalog.Subjects(s.Draft.Stream, s.Draft.Period)

	switch ev.Action.Kind {
	case event.SubjectPageNoop:
		return session.SelectSubject, nil
	case event.SubjectPage:
		page := ev.Action.Index
		if page < 0 || page >= pageCount(len(subjects), e.limits.SubjectsPerPage) {
			return session.SelectSubject, []model.Reply{text(msgInvalid)}
		}
		s.Page = page
		return session.SelectSubject, []model.Reply{
			edit(e.pageHeader(page, len(subjects)), subjectButtons(subjects, page, e.limits.SubjectsPerPage)),
		}
	case event.SubjectPick:
		i := ev.Action.Index
		if i < 0 || i >= len(subjects) {
			return session.SelectSubject, []model.Reply{text(msgInvalid)}
		}
		s.Draft.Subject = subjects[i]
		return session.InputReviewedParty, []model.Reply{
			edit(fmt.Sprintf(msgSubjectChosen, utils.EscapeMarkdown(subjects[i])), nil),
			text(msgPromptParty),
		}
	}
	return session.SelectSubject, []model.Reply{text(msgInvalid)}
}

func (e *Engine) inputReviewedParty(s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if ev.Kind != event.Text {
		return session.InputReviewedParty, []model.Reply{text(msgInvalid)}
	}
	name := strings.TrimSpace(ev.Text)
	if utf8.RuneCountInString(name) < e.limits.MinPartyLen {
		return session.InputReviewedParty, []model.Reply{text(fmt.Sprintf(msgShortName, e.limits.MinPartyLen))}
	}
	s.Draft.ReviewedParty = name
	msg := fmt.Sprintf("👤 **%s**\n\n%s", utils.EscapeMarkdown(name), msgPromptRating)
	return session.SelectScore, []model.Reply{buttons(msg, ratingButtons())}
}

func (e *Engine) selectScore(s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if ev.Kind != event.Tap || ev.Action.Kind != event.Score || ev.Action.Index < 1 || ev.Action.Index > 5 {
		return session.SelectScore, []model.Reply{text(msgInvalid)}
	}
	score := ev.Action.Index
	s.Draft.Score = score
	msg := fmt.Sprintf(msgRatingSet, utils.Stars(score), score, fmt.Sprintf(msgPromptBody, e.limits.MinBodyLen))
	return session.InputBody, []model.Reply{edit(msg, nil)}
}

// checkBody validates a review body. Length is checked before the filter
// so a short profane body never costs a strike.
func (e *Engine) checkBody(body string) error {
	if utf8.RuneCountInString(body) < e.limits.MinBodyLen {
		return fmt.Errorf("%w: body shorter than %d", model.ErrInvalidInput, e.limits.MinBodyLen)
	}
	if e.filter.Offensive(body) {
		return model.ErrContentRejected
	}
	return nil
}

func (e *Engine) inputBody(ctx context.Context, s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if ev.Kind != event.Text {
		return session.InputBody, []model.Reply{text(msgInvalid)}
	}
	body := strings.TrimSpace(ev.Text)

	switch err := e.checkBody(body); {
	case errors.Is(err, model.ErrInvalidInput):
		return session.InputBody, []model.Reply{text(fmt.Sprintf(msgShortReview, e.limits.MinBodyLen))}
	case errors.Is(err, model.ErrContentRejected):
		return e.strike(ctx, s)
	}

	s.Draft.Body = body
	committed := s.Draft
	s.Commit()

	if committed.IsFollowup {
		return e.submit(ctx, s, ev)
	}

	lines := make([]string, 0, len(s.Drafts))
	for i, d := range s.Drafts {
		lines = append(lines, fmt.Sprintf("**#%d** %s · %s (%d/5)", i+1, utils.EscapeMarkdown(d.ReviewedParty), utils.Stars(d.Score), d.Score))
	}
	msg := msgDraftSaved + "\n\n" + fmt.Sprintf(msgDraftSummary, len(s.Drafts), strings.Join(lines, "\n"))
	return session.BatchMenu, []model.Reply{menu(msg, batchMenu())}
}

func (e *Engine) strike(ctx context.Context, s *session.Session) (session.State, []model.Reply) {
	log := e.log.WithField("user_id", s.UserID)

	strikes, err := e.store.AddStrike(ctx, s.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to record strike")
		return session.InputBody, []model.Reply{text(msgProfanity)}
	}
	if strikes < e.ceiling {
		return session.InputBody, []model.Reply{text(msgProfanity + fmt.Sprintf(msgStrike, strikes, e.ceiling))}
	}

	if err := e.store.Ban(ctx, s.UserID, "repeated offensive language"); err != nil {
		log.WithError(err).Error("Failed to ban user")
	} else {
		log.WithField("strikes", strikes).Info("User banned after repeated violations")
	}
	return session.Idle, []model.Reply{text(msgProfanity + msgStrikeBanned)}
}

func (e *Engine) batchMenu(ctx context.Context, s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if ev.Kind != event.Text {
		return session.BatchMenu, []model.Reply{text(msgInvalid)}
	}
	switch strings.TrimSpace(ev.Text) {
	case BtnSubmit:
		return e.submit(ctx, s, ev)
	case BtnManage:
		if len(s.Drafts) == 0 {
			return session.BatchMenu, []model.Reply{text(msgNoDrafts)}
		}
		return session.ManageDrafts, []model.Reply{buttons(msgManage, manageButtons(s.Drafts))}
	case BtnAddMore:
		return e.addAnother(s, nil)
	}
	return session.BatchMenu, []model.Reply{text(msgInvalid)}
}

// addAnother starts the next draft in the stream of the last committed one.
func (e *Engine) addAnother(s *session.Session, replies []model.Reply) (session.State, []model.Reply) {
	stream := s.LastStream()
	if stream == "" || !e.catalog.HasStream(stream) {
		state, more := e.beginDraft(s)
		return state, append(replies, more...)
	}
	s.NewDraft().Stream = stream
	msg := fmt.Sprintf(msgStreamReuse, stream, msgPromptPeriod)
	return session.SelectPeriod, append(replies, menu(msg, withCancel(e.catalog.PeriodNames(stream))))
}

func (e *Engine) manageDrafts(ctx context.Context, s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if ev.Kind == event.Text {
		return e.batchMenu(ctx, s, ev)
	}
	if ev.Kind != event.Tap {
		return session.ManageDrafts, []model.Reply{text(msgInvalid)}
	}

	switch ev.Action.Kind {
	case event.DraftEdit:
		d, ok := s.PopForEdit(ev.Action.Index)
		if !ok {
			return session.ManageDrafts, []model.Reply{text(msgInvalid)}
		}
		return session.InputBody, []model.Reply{edit(fmt.Sprintf(msgEditing, utils.EscapeMarkdown(d.ReviewedParty)), nil)}
	case event.DraftDelete:
		if !s.Delete(ev.Action.Index) {
			return session.ManageDrafts, []model.Reply{text(msgInvalid)}
		}
		if len(s.Drafts) == 0 {
			return session.Idle, []model.Reply{edit(msgAllDeleted, nil), menu(msgMenuAgain, mainMenu())}
		}
		return session.ManageDrafts, []model.Reply{edit(msgDraftDeleted, manageButtons(s.Drafts))}
	case event.DraftSubmit:
		state, replies := e.submit(ctx, s, ev)
		return state, append([]model.Reply{edit(msgSubmitting, nil)}, replies...)
	case event.DraftAdd:
		return e.addAnother(s, []model.Reply{edit(msgStartingNew, nil)})
	}
	return session.ManageDrafts, []model.Reply{text(msgInvalid)}
}

// enqueue admits one draft against the rate window and parks it for review.
func (e *Engine) enqueue(ctx context.Context, d *model.Draft, userID, name string) (model.PendingEntry, error) {
	ok, err := e.store.Admit(ctx, userID)
	if err != nil {
		return model.PendingEntry{}, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !ok {
		return model.PendingEntry{}, model.ErrRateLimited
	}

	entry := model.PendingEntry{
		Draft:         *d,
		SubmitterID:   userID,
		SubmitterName: name,
		SubmittedAt:   e.now(),
	}
	if err := e.store.PutContext(ctx, model.PendingKey(d.ID), entry, e.pendingTTL); err != nil {
		return model.PendingEntry{}, fmt.Errorf("failed to store pending draft %s: %w", d.ID, err)
	}
	return entry, nil
}

// submit sends every committed draft to the moderators in order, stopping
// at the first one the rate window refuses. The session ends either way.
func (e *Engine) submit(ctx context.Context, s *session.Session, ev event.Event) (session.State, []model.Reply) {
	if len(s.Drafts) == 0 {
		return session.Idle, []model.Reply{menu(msgNoData, mainMenu())}
	}

	name := strings.TrimSpace(ev.DisplayName)
	if name == "" {
		name = "Student"
	}

	var replies []model.Reply
	if ev.Kind == event.Text {
		replies = append(replies, text(msgTransmitting))
	}

	sent := 0
	for _, d := range s.Drafts {
		entry, err := e.enqueue(ctx, d, s.UserID, name)
		if errors.Is(err, model.ErrRateLimited) {
			msg := fmt.Sprintf(msgRateLimit, e.limits.ReviewsPerWindow, windowLabel(e.limits.Window), sent)
			replies = append(replies, text(msg))
			break
		}
		if err != nil {
			e.log.WithError(err).WithField("user_id", s.UserID).Error("Failed to submit draft")
			replies = append(replies, text(msgInternalError))
			break
		}
		replies = append(replies, model.Reply{
			Audience: model.AudienceModerators,
			Message:  moderation.ReviewCard(entry),
		})
		sent++
	}

	e.log.WithFields(logrus.Fields{"user_id": s.UserID, "sent": sent, "drafts": len(s.Drafts)}).Info("Drafts submitted")
	s.Drafts = nil
	s.Draft = nil

	if sent > 0 {
		return session.Idle, append(replies, menu(msgSubmitted, mainMenu()))
	}
	last := &replies[len(replies)-1]
	last.Message.Menu = mainMenu()
	return session.Idle, replies
}

func (e *Engine) cancelled(ev event.Event) []model.Reply {
	if ev.Kind == event.Tap {
		return []model.Reply{edit(msgCancelled, nil), menu(msgMenuAgain, mainMenu())}
	}
	return []model.Reply{menu(msgCancelled, mainMenu())}
}

func windowLabel(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
	return d.String()
}

func text(msg string) model.Reply {
	return model.Reply{Message: model.Outgoing{Text: msg}}
}

func menu(msg string, items []string) model.Reply {
	return model.Reply{Message: model.Outgoing{Text: msg, Menu: items}}
}

func buttons(msg string, rows [][]model.Button) model.Reply {
	return model.Reply{Message: model.Outgoing{Text: msg, Buttons: rows}}
}

func edit(msg string, rows [][]model.Button) model.Reply {
	return model.Reply{Edit: true, Message: model.Outgoing{Text: msg, Buttons: rows}}
}
