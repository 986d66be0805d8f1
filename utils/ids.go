package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewDraftID returns a short id used in button payloads and pending keys.
func NewDraftID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewResumeToken returns an opaque follow-up token.
func NewResumeToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
