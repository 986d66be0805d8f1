// Package event defines the inbound events the bot reacts to and the
// custom-id codec carried by its buttons.
package event

import "github.com/GbredngleK/NG-Insider-Bot/model"

// Kind is the closed set of inbound event kinds.
type Kind int

const (
	// Start opens the conversation, optionally with a resume token.
	Start Kind = iota + 1
	// Text is a free-text message or a chosen menu entry.
	Text
	// Tap is a button press carrying a decoded Action.
	Tap
	// Cancel drops the conversation.
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Text:
		return "text"
	case Tap:
		return "tap"
	case Cancel:
		return "cancel"
	}
	return "unknown"
}

// Event is one unit of work from the chat transport.
type Event struct {
	Kind        Kind
	UserID      string
	DisplayName string
	Roles       []string

	Text        string
	ResumeToken string
	Action      Action

	// Ref identifies the interaction for toasts.
	Ref string

	// Where a tap came from, so replies can edit the message in place.
	ChannelID   string
	MessageID   string
	MessageText string
	Buttons     [][]model.Button
}
