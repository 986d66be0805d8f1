package model

import "fmt"

// Direction is a voter's choice on a published review.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a direction taken from a button payload.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", fmt.Errorf("%w: vote direction %q", ErrInvalidInput, s)
}

// VoteCounts are the two buckets of a published review.
type VoteCounts struct {
	Up   int `json:"up" db:"up_count"`
	Down int `json:"down" db:"down_count"`
}

// VoteChoice represents a single voter's current choice on an item.
type VoteChoice struct {
	ItemID    string    `db:"item_id"`
	VoterID   string    `db:"voter_id"`
	Direction Direction `db:"direction"`
	UpdatedAt int64     `db:"updated_at"`
}
