package model

import (
	"sort"
	"strings"
	"time"
)

// Review is an approved, published review kept for /search and /top.
type Review struct {
	ID              string    `json:"id" db:"id"`
	MessageID       string    `json:"message_id" db:"message_id"`
	ParentMessageID string    `json:"parent_message_id" db:"parent_message_id"`
	SubmitterID     string    `json:"submitter_id" db:"submitter_id"`
	Stream          string    `json:"stream" db:"stream"`
	Period          string    `json:"period" db:"period"`
	Subject         string    `json:"subject" db:"subject"`
	ReviewedParty   string    `json:"reviewed_party" db:"reviewed_party"`
	Score           int       `json:"score" db:"score"`
	Body            string    `json:"body" db:"body"`
	CreatedAt       time.Time `json:"created_at" db:"-"`
}

// ReviewFromDraft builds the archive record of an approved draft.
func ReviewFromDraft(d Draft, submitterID, messageID, parentID string, at time.Time) Review {
	return Review{
		ID:              d.ID,
		MessageID:       messageID,
		ParentMessageID: parentID,
		SubmitterID:     submitterID,
		Stream:          d.Stream,
		Period:          d.Period,
		Subject:         d.Subject,
		ReviewedParty:   d.ReviewedParty,
		Score:           d.Score,
		Body:            d.Body,
		CreatedAt:       at,
	}
}

// Ranking is one aggregated row of the leaderboard.
type Ranking struct {
	Name    string  `db:"name"`
	Average float64 `db:"average"`
	Count   int     `db:"count"`
}

// Stats 汇总机器人的运行数据
type Stats struct {
	Users   int
	Reviews int
	Members int
	Pending int
	Banned  int
}

// User is a registered chat user.
type User struct {
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Strikes     int       `db:"strikes"`
	IsMember    bool      `db:"is_member"`
	IsBanned    bool      `db:"is_banned"`
	JoinedAt    time.Time `db:"-"`
}

// MatchReviews returns reviews whose reviewed party contains q, ignoring case.
func MatchReviews(reviews []Review, q string, limit int) []Review {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []Review
	for _, r := range reviews {
		if strings.Contains(strings.ToLower(r.ReviewedParty), q) {
			out = append(out, r)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Rank groups reviews by key and orders the groups by average score.
// Ties are broken by name so the output is stable.
func Rank(reviews []Review, key func(Review) string, ascending bool, n int) []Ranking {
	type acc struct{ sum, count int }
	groups := make(map[string]*acc)
	for _, r := range reviews {
		k := key(r)
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += r.Score
		a.count++
	}

	out := make([]Ranking, 0, len(groups))
	for name, a := range groups {
		out = append(out, Ranking{Name: name, Average: float64(a.sum) / float64(a.count), Count: a.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			if ascending {
				return out[i].Average < out[j].Average
			}
			return out[i].Average > out[j].Average
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
