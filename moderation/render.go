package moderation

import (
	"fmt"
	"strings"

	"github.com/GbredngleK/NG-Insider-Bot/event"
	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
)

// Annotations appended to the moderator card once a decision is made.
const (
	RejectPrompt = "📋 **Select a rejection reason**\n" +
		"The student will receive a polite, specific message explaining the issue."
	NoteApproved = "✅ **APPROVED & POSTED**"
	NoteBanned   = "⛔ **USER BANNED**"
	noteRejected = "❌ **REJECTED**: *%s*"
)

// ResumeLabel is the label of the follow-up button on a published post.
const ResumeLabel = "➕ Add More About This Teacher"

var cardRule = strings.Repeat("─", 34)

// ReviewCard renders a pending draft for the moderators.
func ReviewCard(entry model.PendingEntry) model.Outgoing {
	d := entry.Draft
	esc := utils.EscapeMarkdown

	header := "📩 **NEW REVIEW**"
	if d.IsFollowup {
		header = "🧵 **ADDITIONAL REVIEW (Thread)**"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", header, cardRule)
	fmt.Fprintf(&b, "👤 **User:** %s (`%s`)\n", esc(entry.SubmitterName), entry.SubmitterID)
	fmt.Fprintf(&b, "🏫 **Stream:**  %s\n", esc(d.Stream))
	fmt.Fprintf(&b, "📅 **Year:**    %s\n", esc(d.Period))
	fmt.Fprintf(&b, "📚 **Subject:** %s\n", esc(d.Subject))
	fmt.Fprintf(&b, "👨‍🏫 **Teacher:** %s\n", esc(d.ReviewedParty))
	fmt.Fprintf(&b, "⭐ **Rating:**  %s (%d/5)\n", utils.Stars(d.Score), d.Score)
	if d.ThreadParentID != "" {
		fmt.Fprintf(&b, "🔗 **Thread Parent:** `%s`\n", d.ThreadParentID)
	}
	fmt.Fprintf(&b, "🆔 **Ref ID:**  `%s`\n", d.ID)
	fmt.Fprintf(&b, "%s\n💬 **Review:**\n%s", cardRule, esc(d.Body))

	return model.Outgoing{Text: b.String(), Buttons: DecisionButtons(entry.SubmitterID, d.ID)}
}

// DecisionButtons are the approve / reject / ban controls of a review card.
func DecisionButtons(submitterID, draftID string) [][]model.Button {
	act := func(kind event.ActionKind) string {
		return event.Action{Kind: kind, SubmitterID: submitterID, DraftID: draftID}.Encode()
	}
	return [][]model.Button{
		{
			{Label: "✅ Approve", Data: act(event.ModApprove)},
			{Label: "❌ Reject…", Data: act(event.ModReject)},
		},
		{{Label: "🔨 Ban User", Data: act(event.ModBan)}},
	}
}

// ReasonButtons is the rejection menu shown in place of the decision buttons.
func ReasonButtons(submitterID, draftID string) [][]model.Button {
	rows := make([][]model.Button, 0, len(reasons)+1)
	for _, r := range reasons {
		a := event.Action{Kind: event.ModReason, SubmitterID: submitterID, DraftID: draftID, Reason: r.Code}
		rows = append(rows, []model.Button{{Label: r.Label, Data: a.Encode()}})
	}
	back := event.Action{Kind: event.ModBack, SubmitterID: submitterID, DraftID: draftID}
	return append(rows, []model.Button{{Label: "⬅️ Back", Data: back.Encode()}})
}

// Annotate appends a decision note to a card, dropping an open reason prompt.
func Annotate(card, note string) string {
	return StripRejectPrompt(card) + "\n\n" + note
}

// RejectedNote is the card note for a rejection with the given code.
func RejectedNote(code string) string {
	return fmt.Sprintf(noteRejected, code)
}

// StripRejectPrompt removes the reason prompt added by the reject button.
func StripRejectPrompt(card string) string {
	card, _, _ = strings.Cut(card, "\n\n"+RejectPrompt)
	return card
}

// ComposePost renders the public post of an approved draft.
func ComposePost(d model.Draft) string {
	esc := utils.EscapeMarkdown

	header := "📢 **TEACHER REVIEW**"
	if d.IsFollowup {
		header = "📝 **ADDITIONAL FEEDBACK**"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", header)
	fmt.Fprintf(&b, "%s **Subject:** %s\n", utils.SubjectEmoji(d.Subject), esc(d.Subject))
	fmt.Fprintf(&b, "👨‍🏫 **Teacher:** %s\n", esc(d.ReviewedParty))
	fmt.Fprintf(&b, "⭐ **Rating:**  %s (%d/5)\n\n", utils.Stars(d.Score), d.Score)
	fmt.Fprintf(&b, "💬 **Feedback:**\n*%s*", esc(d.Body))
	return b.String()
}
