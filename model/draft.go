package model

import "time"

// Draft is one review under construction. It belongs to a single session
// until it is submitted, after which it only lives inside a pending entry.
type Draft struct {
	ID             string    `json:"id"`
	Stream         string    `json:"stream"`
	Period         string    `json:"period"`
	Subject        string    `json:"subject"`
	ReviewedParty  string    `json:"reviewed_party"`
	Score          int       `json:"score"`
	Body           string    `json:"body"`
	IsFollowup     bool      `json:"is_followup"`
	ThreadParentID string    `json:"thread_parent_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PendingEntry parks a submitted draft until a moderator decides on it.
type PendingEntry struct {
	Draft         Draft     `json:"draft"`
	SubmitterID   string    `json:"submitter_id"`
	SubmitterName string    `json:"submitter_name"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ResumeEntry pre-fills a follow-up draft opened from a published post.
type ResumeEntry struct {
	Stream        string `json:"stream"`
	Period        string `json:"period"`
	Subject       string `json:"subject"`
	ReviewedParty string `json:"reviewed_party"`
	ParentID      string `json:"parent_id"`
}

const (
	pendingPrefix = "pending:"
	resumePrefix  = "resume:"

	// ResumeArgPrefix marks a resume token passed to the start command.
	ResumeArgPrefix = "add_"
)

// PendingKey returns the context key of a submitted draft.
func PendingKey(draftID string) string { return pendingPrefix + draftID }

// ResumeKey returns the context key of a follow-up token.
func ResumeKey(token string) string { return resumePrefix + token }

// PendingPrefix is the key namespace counted as the moderation queue.
func PendingPrefix() string { return pendingPrefix }
