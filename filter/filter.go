// Package filter classifies free text as acceptable or offensive.
package filter

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultWords 包含英语和本地语言中的冒犯性词汇
var defaultWords = []string{
	"idiot", "stupid", "dumb", "moron", "retard", "imbecile", "fool",
	"bastard", "asshole", "bitch", "crap", "fuck", "shit", "piss",
	"cock", "dick", "pussy", "whore", "slut", "cunt", "nigger",
	"faggot", "retarded", "loser", "scum", "trash", "garbage",
	// Amharic (transliterated)
	"yenya", "leba", "ahiya", "wusha", "dedeb", "goblata",
	"shilegna", "baldeg", "gmatam", "neger", "wend",
	// Afaan Oromo
	"gaafii", "waraana",
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Filter matches whole words against a fixed vocabulary. It is safe for
// concurrent use.
type Filter struct {
	words map[string]struct{}
}

// New builds a filter from the built-in vocabulary plus extra words.
func New(extra ...string) *Filter {
	f := &Filter{
		words: make(map[string]struct{}, len(defaultWords)+len(extra)),
	}
	for _, w := range append(append([]string{}, defaultWords...), extra...) {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		f.words[lower(w)] = struct{}{}
	}
	return f
}

// lower builds a Caser per call; a Caser is stateful and not safe to share.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Offensive reports whether any word of text is in the vocabulary.
// Substrings do not count: "scumbag" passes, "scum" does not.
func (f *Filter) Offensive(text string) bool {
	for _, w := range wordPattern.FindAllString(lower(text), -1) {
		if _, ok := f.words[w]; ok {
			return true
		}
	}
	return false
}
