package conversation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/catalog"
	"github.com/GbredngleK/NG-Insider-Bot/db"
	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/filter"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/session"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uid       = "u1"
	goodBody  = "Explains every topic clearly and the exams are fair."
	badBody   = "This teacher is an idiot and never explains anything at all."
	shortBody = "idiot teacher"
)

type harness struct {
	t        *testing.T
	e        *Engine
	store    *db.Store
	sessions *session.MemoryStore
	cat      *catalog.Catalog
}

func newHarness(t *testing.T, ceiling int) *harness {
	t.Helper()
	s, err := db.Open(filepath.Join(t.TempDir(), "test.db"),
		db.WithRateWindow(db.RateWindow{Ceiling: ceiling, Period: time.Hour}))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := model.Config{
		Limits:     model.Limits{ReviewsPerWindow: ceiling, Window: time.Hour},
		Moderation: model.Moderation{StrikeCeiling: 3},
	}
	logger, _ := test.NewNullLogger()
	sessions := session.NewMemoryStore(time.Hour)
	cat := catalog.Default()
	return &harness{
		t:        t,
		e:        New(cfg, s, sessions, cat, filter.New(), logger),
		store:    s,
		sessions: sessions,
		cat:      cat,
	}
}

func (h *harness) send(ev event.Event) []model.Reply {
	h.t.Helper()
	if ev.UserID == "" {
		ev.UserID = uid
	}
	replies, err := h.e.Handle(context.Background(), ev)
	require.NoError(h.t, err)
	return replies
}

func (h *harness) text(s string) []model.Reply {
	return h.send(event.Event{Kind: event.Text, Text: s, DisplayName: "Abel"})
}

func (h *harness) tap(a event.Action) []model.Reply {
	return h.send(event.Event{Kind: event.Tap, Action: a, MessageID: "m1", ChannelID: "dm1"})
}

func (h *harness) state() session.State {
	s, ok := h.sessions.Get(uid)
	if !ok {
		return session.Idle
	}
	return s.State
}

func (h *harness) current() *session.Session {
	s, ok := h.sessions.Get(uid)
	require.True(h.t, ok)
	return s
}

func (h *harness) stream() string { return h.cat.StreamNames()[0] }

func (h *harness) period() string { return h.cat.PeriodNames(h.stream())[0] }

// fillDraft drives a draft from the stream (or period, when the stream is
// reused) prompt to the batch menu.
func (h *harness) fillDraft(party string, pickStream bool) {
	h.t.Helper()
	if pickStream {
		h.text(h.stream())
		require.Equal(h.t, session.SelectPeriod, h.state())
	}
	h.text(h.period())
	require.Equal(h.t, session.SelectSubject, h.state())
	h.tap(event.Action{Kind: event.SubjectPick, Index: 1})
	h.text(party)
	h.tap(event.Action{Kind: event.Score, Index: 4})
	require.Equal(h.t, session.InputBody, h.state())
	h.text(goodBody)
	require.Equal(h.t, session.BatchMenu, h.state())
}

func texts(replies []model.Reply) []string {
	out := make([]string, 0, len(replies))
	for _, r := range replies {
		out = append(out, r.Message.Text)
	}
	return out
}

func toModerators(replies []model.Reply) []model.Reply {
	var out []model.Reply
	for _, r := range replies {
		if r.Audience == model.AudienceModerators {
			out = append(out, r)
		}
	}
	return out
}

func TestHappyPath(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()

	replies := h.send(event.Event{Kind: event.Start, DisplayName: "Abel"})
	require.Len(t, replies, 1)
	assert.Equal(t, msgWelcome, replies[0].Message.Text)
	assert.Equal(t, mainMenu(), replies[0].Message.Menu)
	assert.Zero(t, h.sessions.Len())

	replies = h.text(BtnWrite)
	assert.Equal(t, session.SelectCategory, h.state())
	assert.Equal(t, withCancel(h.cat.StreamNames()), replies[0].Message.Menu)

	h.text(h.stream())
	replies = h.text(h.period())
	assert.Equal(t, session.SelectSubject, h.state())
	subjects := h.cat.Subjects(h.stream(), h.period())
	assert.Contains(t, replies[0].Message.Text, "Page 1 of 3")
	assert.Equal(t, "subj:0", replies[0].Message.Buttons[0][0].Data)

	replies = h.tap(event.Action{Kind: event.SubjectPage, Index: 1})
	require.Len(t, replies, 1)
	assert.True(t, replies[0].Edit)
	assert.Contains(t, replies[0].Message.Text, "Page 2 of 3")
	assert.Equal(t, "subj:6", replies[0].Message.Buttons[0][0].Data)

	assert.Empty(t, h.tap(event.Action{Kind: event.SubjectPageNoop}))

	replies = h.tap(event.Action{Kind: event.SubjectPick, Index: 7})
	assert.Equal(t, session.InputReviewedParty, h.state())
	assert.Equal(t, []string{fmt.Sprintf(msgSubjectChosen, subjects[7]), msgPromptParty}, texts(replies))

	replies = h.text("  Dr. Abebe Kebede  ")
	assert.Equal(t, session.SelectScore, h.state())
	assert.Equal(t, "rate:1", replies[0].Message.Buttons[0][0].Data)

	h.tap(event.Action{Kind: event.Score, Index: 4})
	assert.Equal(t, session.InputBody, h.state())

	replies = h.text(goodBody)
	assert.Equal(t, session.BatchMenu, h.state())
	assert.Equal(t, batchMenu(), replies[0].Message.Menu)
	assert.Contains(t, replies[0].Message.Text, "Dr. Abebe Kebede")

	draft := *h.current().Drafts[0]

	replies = h.text(BtnSubmit)
	assert.Equal(t, session.Idle, h.state())
	assert.Zero(t, h.sessions.Len())

	cards := toModerators(replies)
	require.Len(t, cards, 1)
	assert.Contains(t, cards[0].Message.Text, "NEW REVIEW")
	assert.Equal(t, msgSubmitted, replies[len(replies)-1].Message.Text)

	var pending model.PendingEntry
	require.NoError(t, h.store.GetContext(ctx, model.PendingKey(draft.ID), &pending))
	assert.Equal(t, uid, pending.SubmitterID)
	assert.Equal(t, "Abel", pending.SubmitterName)
	assert.Equal(t, h.stream(), pending.Draft.Stream)
	assert.Equal(t, h.period(), pending.Draft.Period)
	assert.Equal(t, subjects[7], pending.Draft.Subject)
	assert.Equal(t, "Dr. Abebe Kebede", pending.Draft.ReviewedParty)
	assert.Equal(t, 4, pending.Draft.Score)
	assert.Equal(t, goodBody, pending.Draft.Body)
	assert.False(t, pending.Draft.IsFollowup)
}

func TestShortPartyName(t *testing.T) {
	h := newHarness(t, 5)
	h.text(BtnWrite)
	h.text(h.stream())
	h.text(h.period())
	h.tap(event.Action{Kind: event.SubjectPick, Index: 0})

	replies := h.text(" Al ")
	assert.Equal(t, []string{fmt.Sprintf(msgShortName, 3)}, texts(replies))
	assert.Equal(t, session.InputReviewedParty, h.state())
}

func TestShortBodyCheckedBeforeFilter(t *testing.T) {
	h := newHarness(t, 5)
	h.text(BtnWrite)
	h.text(h.stream())
	h.text(h.period())
	h.tap(event.Action{Kind: event.SubjectPick, Index: 0})
	h.text("Dr. Abebe Kebede")
	h.tap(event.Action{Kind: event.Score, Index: 2})

	replies := h.text(shortBody)
	assert.Equal(t, []string{fmt.Sprintf(msgShortReview, 30)}, texts(replies))
	assert.Equal(t, session.InputBody, h.state())

	strikes, err := h.store.AddStrike(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, 1, strikes)
}

func TestProfanityStrikesThenBan(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	h.text(BtnWrite)
	h.text(h.stream())
	h.text(h.period())
	h.tap(event.Action{Kind: event.SubjectPick, Index: 0})
	h.text("Dr. Abebe Kebede")
	h.tap(event.Action{Kind: event.Score, Index: 1})

	for n := 1; n < 3; n++ {
		replies := h.text(badBody)
		assert.Equal(t, []string{msgProfanity + fmt.Sprintf(msgStrike, n, 3)}, texts(replies))
		assert.Equal(t, session.InputBody, h.state())
		assert.Empty(t, h.current().Draft.Body)
	}

	replies := h.text(badBody)
	assert.Equal(t, []string{msgProfanity + msgStrikeBanned}, texts(replies))
	assert.Zero(t, h.sessions.Len())

	banned, err := h.store.IsBanned(ctx, uid)
	require.NoError(t, err)
	assert.True(t, banned)

	replies, err = h.e.Handle(ctx, event.Event{Kind: event.Start, UserID: uid})
	assert.ErrorIs(t, err, model.ErrPermanentBan)
	assert.Equal(t, []string{msgBanned}, texts(replies))
	assert.Zero(t, h.sessions.Len())
}

func TestBatchOverRateLimit(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()

	h.text(BtnWrite)
	h.fillDraft("Dr. One", true)
	for _, name := range []string{"Dr. Two", "Dr. Three"} {
		h.text(BtnAddMore)
		require.Equal(t, session.SelectPeriod, h.state())
		h.fillDraft(name, false)
	}
	require.Len(t, h.current().Drafts, 3)

	replies := h.text(BtnSubmit)
	assert.Len(t, toModerators(replies), 2)
	assert.Contains(t, texts(replies), fmt.Sprintf(msgRateLimit, 2, "hour", 2))
	assert.Equal(t, msgSubmitted, replies[len(replies)-1].Message.Text)
	assert.Zero(t, h.sessions.Len())

	n, err := h.store.CountContexts(ctx, model.PendingPrefix())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRateLimitedBeforeAnySent(t *testing.T) {
	h := newHarness(t, 1)
	ok, err := h.store.Admit(context.Background(), uid)
	require.NoError(t, err)
	require.True(t, ok)

	h.text(BtnWrite)
	h.fillDraft("Dr. One", true)

	replies := h.text(BtnSubmit)
	assert.Empty(t, toModerators(replies))
	last := replies[len(replies)-1]
	assert.Equal(t, fmt.Sprintf(msgRateLimit, 1, "hour", 0), last.Message.Text)
	assert.Equal(t, mainMenu(), last.Message.Menu)
}

func TestAddAnotherReusesStream(t *testing.T) {
	h := newHarness(t, 5)
	h.text(BtnWrite)
	h.fillDraft("Dr. One", true)

	replies := h.text(BtnAddMore)
	assert.Equal(t, session.SelectPeriod, h.state())
	assert.Equal(t, h.stream(), h.current().Draft.Stream)
	assert.Equal(t, withCancel(h.cat.PeriodNames(h.stream())), replies[0].Message.Menu)
}

func TestEditDraft(t *testing.T) {
	h := newHarness(t, 5)
	h.text(BtnWrite)
	h.fillDraft("Dr. One", true)

	replies := h.text(BtnManage)
	assert.Equal(t, session.ManageDrafts, h.state())
	assert.Equal(t, "dedit:0", replies[0].Message.Buttons[0][0].Data)
	assert.Equal(t, "ddel:0", replies[0].Message.Buttons[0][1].Data)

	replies = h.tap(event.Action{Kind: event.DraftEdit, Index: 0})
	assert.Equal(t, session.InputBody, h.state())
	assert.True(t, replies[0].Edit)
	assert.Empty(t, h.current().Drafts)

	rewritten := "Rewritten: strict grading but very well organised lectures."
	h.text(rewritten)
	assert.Equal(t, session.BatchMenu, h.state())
	drafts := h.current().Drafts
	require.Len(t, drafts, 1)
	assert.Equal(t, rewritten, drafts[0].Body)
	assert.Equal(t, "Dr. One", drafts[0].ReviewedParty)
	assert.Equal(t, 4, drafts[0].Score)
}

func TestManageDelete(t *testing.T) {
	h := newHarness(t, 5)
	h.text(BtnWrite)
	h.fillDraft("Dr. One", true)
	h.text(BtnManage)

	replies := h.tap(event.Action{Kind: event.DraftDelete, Index: 5})
	assert.Equal(t, []string{msgInvalid}, texts(replies))
	assert.Equal(t, session.ManageDrafts, h.state())

	replies = h.tap(event.Action{Kind: event.DraftEdit, Index: -1})
	assert.Equal(t, []string{msgInvalid}, texts(replies))

	replies = h.tap(event.Action{Kind: event.DraftDelete, Index: 0})
	assert.Equal(t, []string{msgAllDeleted, msgMenuAgain}, texts(replies))
	assert.Zero(t, h.sessions.Len())
}

func TestManageSubmitTap(t *testing.T) {
	h := newHarness(t, 5)
	h.text(BtnWrite)
	h.fillDraft("Dr. One", true)
	h.text(BtnManage)

	replies := h.tap(event.Action{Kind: event.DraftSubmit})
	assert.True(t, replies[0].Edit)
	assert.Equal(t, msgSubmitting, replies[0].Message.Text)
	assert.Len(t, toModerators(replies), 1)
	assert.Zero(t, h.sessions.Len())
}

func TestNoDrafts(t *testing.T) {
	h := newHarness(t, 5)
	s := h.sessions.GetOrCreate(uid)
	s.State = session.BatchMenu

	replies := h.text(BtnManage)
	assert.Equal(t, []string{msgNoDrafts}, texts(replies))
	assert.Equal(t, session.BatchMenu, h.state())

	replies = h.text(BtnSubmit)
	assert.Equal(t, []string{msgNoData}, texts(replies))
	assert.Zero(t, h.sessions.Len())
}

func TestResumeFlow(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()

	// An unrelated draft in progress is dropped by the resume.
	h.text(BtnWrite)
	h.fillDraft("Dr. Other", true)

	entry := model.ResumeEntry{
		Stream: h.stream(), Period: h.period(), Subject: "General Physics",
		ReviewedParty: "Dr. Abebe Kebede", ParentID: "root-1",
	}
	require.NoError(t, h.store.PutContext(ctx, model.ResumeKey("tok123"), entry, time.Hour))

	replies := h.send(event.Event{Kind: event.Start, ResumeToken: "tok123"})
	assert.Equal(t, session.SelectScore, h.state())
	assert.Contains(t, replies[0].Message.Text, "Dr. Abebe Kebede")
	assert.Equal(t, ratingButtons(), replies[0].Message.Buttons)

	s := h.current()
	assert.Empty(t, s.Drafts)
	assert.True(t, s.Draft.IsFollowup)
	assert.Equal(t, "root-1", s.Draft.ThreadParentID)

	h.tap(event.Action{Kind: event.Score, Index: 5})
	replies = h.text(goodBody)
	assert.Zero(t, h.sessions.Len())

	cards := toModerators(replies)
	require.Len(t, cards, 1)
	assert.True(t, strings.HasPrefix(cards[0].Message.Text, "🧵 **ADDITIONAL REVIEW (Thread)**"))
	assert.Contains(t, cards[0].Message.Text, "`root-1`")

	n, err := h.store.CountContexts(ctx, model.PendingPrefix())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResumeExpired(t *testing.T) {
	h := newHarness(t, 5)

	replies := h.send(event.Event{Kind: event.Start, ResumeToken: "missing"})
	assert.Equal(t, []string{msgLinkExpired, msgWelcome}, texts(replies))
	assert.Zero(t, h.sessions.Len())
}

func TestInvalidInputKeepsState(t *testing.T) {
	h := newHarness(t, 5)

	replies := h.text("hello")
	assert.Equal(t, []string{msgInvalid}, texts(replies))

	h.text(BtnWrite)
	replies = h.text("Not a stream")
	assert.Equal(t, []string{msgInvalid}, texts(replies))
	assert.Equal(t, session.SelectCategory, h.state())

	h.text(h.stream())
	replies = h.text("Year 9")
	assert.Equal(t, []string{msgInvalid}, texts(replies))
	assert.Equal(t, session.SelectPeriod, h.state())

	h.text(h.period())
	replies = h.tap(event.Action{Kind: event.SubjectPick, Index: 999})
	assert.Equal(t, []string{msgInvalid}, texts(replies))
	replies = h.tap(event.Action{Kind: event.SubjectPage, Index: 40})
	assert.Equal(t, []string{msgInvalid}, texts(replies))
	assert.Equal(t, session.SelectSubject, h.state())

	h.tap(event.Action{Kind: event.SubjectPick, Index: 0})
	h.text("Dr. Abebe Kebede")
	replies = h.tap(event.Action{Kind: event.Score, Index: 9})
	assert.Equal(t, []string{msgInvalid}, texts(replies))
	replies = h.text("5")
	assert.Equal(t, []string{msgInvalid}, texts(replies))
	assert.Equal(t, session.SelectScore, h.state())
}

func TestCancel(t *testing.T) {
	h := newHarness(t, 5)

	h.text(BtnWrite)
	h.text(h.stream())
	replies := h.text(BtnCancel)
	assert.Equal(t, []string{msgCancelled}, texts(replies))
	assert.Zero(t, h.sessions.Len())

	h.text(BtnWrite)
	h.text(h.stream())
	h.text(h.period())
	replies = h.tap(event.Action{Kind: event.CancelFlow})
	assert.Equal(t, []string{msgCancelled, msgMenuAgain}, texts(replies))
	assert.True(t, replies[0].Edit)
	assert.Zero(t, h.sessions.Len())

	h.text(BtnWrite)
	replies = h.send(event.Event{Kind: event.Cancel})
	assert.Equal(t, []string{msgCancelled}, texts(replies))
	assert.Zero(t, h.sessions.Len())
}

func TestMaterials(t *testing.T) {
	h := newHarness(t, 5)
	replies := h.text(BtnMaterials)
	assert.Equal(t, []string{msgMaterials}, texts(replies))
}

func TestWindowLabel(t *testing.T) {
	assert.Equal(t, "hour", windowLabel(time.Hour))
	assert.Equal(t, "3 hours", windowLabel(3*time.Hour))
	assert.Equal(t, "30 minutes", windowLabel(30*time.Minute))
	assert.Equal(t, "1m30s", windowLabel(90*time.Second))
}
