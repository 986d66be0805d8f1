package utils

import (
	"strings"
	"unicode/utf8"
)

// StringPtr returns a pointer to the given string.
// This is a helper function for discordgo fields that require a *string.
func StringPtr(s string) *string {
	return &s
}

// Stars renders a score as five stars, clamped to 0..5.
func Stars(score int) string {
	score = max(0, min(5, score))
	return strings.Repeat("⭐", score) + strings.Repeat("☆", 5-score)
}

var subjectEmoji = []struct{ keyword, emoji string }{
	{"Physics", "⚛️"}, {"Math", "🧮"}, {"Calculus", "∫"}, {"Chemistry", "🧪"},
	{"Biology", "🧬"}, {"English", "🇬🇧"}, {"Civics", "⚖️"}, {"Logic", "🧠"},
	{"Geography", "🌍"}, {"Computer", "💻"}, {"Programming", "⌨️"},
	{"Psychology", "🧩"}, {"Sociology", "👥"}, {"Economics", "📉"},
	{"History", "📜"}, {"Anatomy", "🦴"}, {"Accounting", "💰"},
	{"Law", "⚖️"}, {"Drawing", "📐"}, {"Statics", "🏗️"}, {"Dynamics", "🚀"},
	{"Software", "💾"}, {"Network", "🌐"}, {"Thermodynamics", "🔥"},
	{"Management", "📊"}, {"Marketing", "📣"}, {"Finance", "💵"},
	{"Statistics", "📈"}, {"Fluid", "💧"}, {"Mechanics", "⚙️"},
	{"Physiology", "❤️"}, {"Microbiology", "🦠"},
	{"Pharmacology", "💊"}, {"Pathology", "🔬"}, {"Nursing", "🩺"},
}

// SubjectEmoji picks an icon for a subject by the first matching keyword.
func SubjectEmoji(subject string) string {
	lower := strings.ToLower(subject)
	for _, e := range subjectEmoji {
		if strings.Contains(lower, strings.ToLower(e.keyword)) {
			return e.emoji
		}
	}
	return "📚"
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `~`, `\~`, `|`, `\|`, `>`, `\>`,
)

// EscapeMarkdown neutralises Discord markdown in user-supplied text.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
