package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a key is absent or expired.
	ErrNotFound = errors.New("not found")

	ErrInvalidInput    = errors.New("invalid input")
	ErrContentRejected = errors.New("content rejected")
	ErrPermanentBan    = errors.New("permanently banned")
	ErrRateLimited     = errors.New("rate limited")
	ErrDelivery        = errors.New("delivery failed")
	ErrUnauthorized    = errors.New("unauthorized")

	// ErrContextExpired wraps ErrNotFound so callers may test for either.
	ErrContextExpired = fmt.Errorf("context expired: %w", ErrNotFound)
)
