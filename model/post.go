package model

// Button is a transport-neutral inline button. Exactly one of Data or URL is set.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Outgoing is a message to deliver through the chat transport.
type Outgoing struct {
	Text    string
	Buttons [][]Button
	// Menu is a list of canned replies; choosing one arrives as a text event.
	Menu []string
	// ReplyTo threads the message under an earlier message id.
	ReplyTo string
}

// Target addresses a chat. A set ChannelID wins over UserID.
type Target struct {
	UserID    string
	ChannelID string
}

// PublishedItem is the outcome of approving a pending review.
type PublishedItem struct {
	ItemID      string
	MessageID   string
	ParentID    string
	ResumeToken string
	ResumeLink  string
	SubmitterID string
	Draft       Draft
}

// Audience selects where a Reply is delivered.
type Audience int

const (
	// AudienceUser is the user who triggered the event, or Reply.UserID when set.
	AudienceUser Audience = iota
	// AudienceModerators is the review channel.
	AudienceModerators
	// AudiencePublic is the publish channel.
	AudiencePublic
)

// Reply is one outbound effect produced while handling an event.
type Reply struct {
	Audience Audience
	UserID   string
	Message  Outgoing
	// Edit rewrites the message the event came from instead of sending.
	Edit bool
	// Toast is a short ephemeral acknowledgement of a tap.
	Toast string
}
