package handler

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/GbredngleK/NG-Insider-Bot/model"
	"github.com/GbredngleK/NG-Insider-Bot/utils"
)

const (
	searchLimit    = 50
	leaderboardLen = 5
	snippetLen     = 150
	snippetsShown  = 2

	msgSearchMembersOnly = "🔒 **Members Only Feature**\n\n" +
		"The /search command is available only to students whose reviews have been approved.\n" +
		"Submit a review and get it approved to unlock this feature!"
	msgSearchUsage   = "🔍 **Teacher Search**\n\nUsage: `/search Dr. Abebe`"
	msgSearchEmpty   = "🔍 No approved reviews found for **%s**.\nCheck the spelling and try again."
	msgLookupBanned  = "🚫 **Access Denied.**\nYou have been restricted from this bot."
	msgLookupFailure = "⚠️ Something went wrong on our side. Please try again in a moment."
)

var medals = [leaderboardLen]string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣"}

// Search answers /search for approved members and moderators.
func (r *Router) Search(ctx context.Context, userID string, roles []string, query string) string {
	log := r.log.WithField("user_id", userID)

	if banned, err := r.archive.IsBanned(ctx, userID); err != nil || banned {
		if err != nil {
			log.WithError(err).Error("Failed to check ban status")
			return msgLookupFailure
		}
		return msgLookupBanned
	}
	if !r.auth.CheckAuth(userID, roles) {
		member, err := r.archive.IsMember(ctx, userID)
		if err != nil {
			log.WithError(err).Error("Failed to check membership")
			return msgLookupFailure
		}
		if !member {
			return msgSearchMembersOnly
		}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return msgSearchUsage
	}

	reviews, err := r.archive.SearchReviews(ctx, query, searchLimit)
	if err != nil {
		log.WithError(err).Error("Failed to search reviews")
		return msgLookupFailure
	}
	if len(reviews) == 0 {
		return fmt.Sprintf(msgSearchEmpty, utils.EscapeMarkdown(query))
	}
	return renderSearch(query, reviews)
}

type partyGroup struct {
	name    string
	reviews []model.Review
}

// groupByParty keeps first-seen order of reviewed parties.
func groupByParty(reviews []model.Review) []*partyGroup {
	var groups []*partyGroup
	index := make(map[string]*partyGroup)
	for _, rv := range reviews {
		g, ok := index[rv.ReviewedParty]
		if !ok {
			g = &partyGroup{name: rv.ReviewedParty}
			index[rv.ReviewedParty] = g
			groups = append(groups, g)
		}
		g.reviews = append(g.reviews, rv)
	}
	return groups
}

func renderSearch(query string, reviews []model.Review) string {
	esc := utils.EscapeMarkdown

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Results for:** *%s*\n%s\n\n", esc(query), strings.Repeat("─", 32))

	for _, g := range groupByParty(reviews) {
		total := 0
		var subjects []string
		seen := make(map[string]bool)
		for _, rv := range g.reviews {
			total += rv.Score
			if !seen[rv.Subject] {
				seen[rv.Subject] = true
				subjects = append(subjects, rv.Subject)
			}
		}
		avg := float64(total) / float64(len(g.reviews))

		subjectList := strings.Join(subjects[:min(3, len(subjects))], ", ")
		if len(subjects) > 3 {
			subjectList += "…"
		}

		fmt.Fprintf(&b, "👨‍🏫 **%s**\n", esc(g.name))
		fmt.Fprintf(&b, "⭐ **Avg Rating:** %.1f/5  %s\n", avg, utils.Stars(int(math.Round(avg))))
		fmt.Fprintf(&b, "📊 **Reviews:** %d\n", len(g.reviews))
		fmt.Fprintf(&b, "📚 **Subjects:** %s\n\n", esc(subjectList))

		for _, rv := range g.reviews[max(0, len(g.reviews)-snippetsShown):] {
			fmt.Fprintf(&b, "💬 *%s*\n\n", esc(utils.Truncate(rv.Body, snippetLen)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Top answers /top with the best-rated reviewed parties and the lowest-rated subjects.
func (r *Router) Top(ctx context.Context, userID string) string {
	log := r.log.WithField("user_id", userID)

	if banned, err := r.archive.IsBanned(ctx, userID); err == nil && banned {
		return msgLookupBanned
	}
	top, err := r.archive.TopReviewed(ctx, leaderboardLen)
	if err != nil {
		log.WithError(err).Error("Failed to load leaderboard")
		return msgLookupFailure
	}
	tough, err := r.archive.ToughestSubjects(ctx, leaderboardLen)
	if err != nil {
		log.WithError(err).Error("Failed to load toughest subjects")
		return msgLookupFailure
	}
	return renderTop(top, tough)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func renderTop(top, tough []model.Ranking) string {
	esc := utils.EscapeMarkdown

	var b strings.Builder
	b.WriteString("🏆 **LEADERBOARD**\n\n⭐ **Top Rated Teachers:**\n")
	if len(top) == 0 {
		b.WriteString("*No data yet.*\n")
	}
	for i, t := range top[:min(len(top), leaderboardLen)] {
		fmt.Fprintf(&b, "%s **%s**\n", medals[i], esc(t.Name))
		fmt.Fprintf(&b, "   %s %.1f/5 · %d review%s\n", utils.Stars(int(math.Round(t.Average))), t.Average, t.Count, plural(t.Count))
	}

	b.WriteString("\n📉 **Toughest / Lowest-Rated Courses:**\n")
	if len(tough) == 0 {
		b.WriteString("*No data yet.*\n")
	}
	for i, c := range tough {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, esc(c.Name))
		fmt.Fprintf(&b, "   %.1f/5 · %d review%s\n", c.Average, c.Count, plural(c.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}
