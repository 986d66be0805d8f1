// Package session keeps each user's in-progress conversation in memory.
package session

import (
	"sync"
	"time"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
)

// State is the user's position in the review conversation.
type State int

const (
	Idle State = iota
	SelectCategory
	SelectPeriod
	SelectSubject
	InputReviewedParty
	SelectScore
	InputBody
	BatchMenu
	ManageDrafts
)

var stateNames = [...]string{
	Idle:               "idle",
	SelectCategory:     "select_category",
	SelectPeriod:       "select_period",
	SelectSubject:      "select_subject",
	InputReviewedParty: "input_reviewed_party",
	SelectScore:        "select_score",
	InputBody:          "input_body",
	BatchMenu:          "batch_menu",
	ManageDrafts:       "manage_drafts",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Session is one user's transient state. Callers hold Lock while they
// read or change it.
type Session struct {
	mu sync.Mutex

	UserID     string
	State      State
	Draft      *model.Draft
	Drafts     []*model.Draft
	Page       int
	LastActive time.Time
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// NewDraft replaces the active draft with an empty one and resets paging.
func (s *Session) NewDraft() *model.Draft {
	s.Draft = &model.Draft{
		ID:        utils.NewDraftID(),
		CreatedAt: time.Now(),
	}
	s.Page = 0
	return s.Draft
}

// Commit moves the active draft to the end of the committed list.
func (s *Session) Commit() bool {
	if s.Draft == nil {
		return false
	}
	s.Drafts = append(s.Drafts, s.Draft)
	s.Draft = nil
	return true
}

// Delete removes committed draft i. It reports false if i is out of range.
func (s *Session) Delete(i int) bool {
	if i < 0 || i >= len(s.Drafts) {
		return false
	}
	s.Drafts = append(s.Drafts[:i], s.Drafts[i+1:]...)
	return true
}

// PopForEdit removes committed draft i and makes it the active draft.
// An active draft being built is discarded, so only one is ever active.
func (s *Session) PopForEdit(i int) (*model.Draft, bool) {
	if i < 0 || i >= len(s.Drafts) {
		return nil, false
	}
	s.Draft = s.Drafts[i]
	s.Drafts = append(s.Drafts[:i], s.Drafts[i+1:]...)
	return s.Draft, true
}

// LastStream returns the stream of the most recently committed draft.
func (s *Session) LastStream() string {
	if len(s.Drafts) == 0 {
		return ""
	}
	return s.Drafts[len(s.Drafts)-1].Stream
}
