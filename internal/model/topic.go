package model

import (
	"strings"
	"unicode"
)

// MaxTopicLength is the maximum length of a topic in runes.
const MaxTopicLength = 80

// Topic is the subject of a piece of content.
// A topic is immutable once produced by the content generator.
type Topic struct {
	// Title is the sanitized topic text, at most MaxTopicLength runes.
	Title string `json:"title"`

	// Fallback is true when Title came from the static fallback pool
	// instead of the completion endpoint.
	Fallback bool `json:"fallback,omitempty"`
}

// NewTopic creates a Topic from already sanitized text, enforcing the length bound.
func NewTopic(title string, fallback bool) Topic {
	return Topic{
		Title:    TruncateRunes(strings.TrimSpace(title), MaxTopicLength),
		Fallback: fallback,
	}
}

// String returns the topic title.
func (t Topic) String() string {
	return t.Title
}

// IsZero reports whether the topic has no title.
func (t Topic) IsZero() bool {
	return strings.TrimSpace(t.Title) == ""
}

// TruncateRunes shortens s to at most limit runes.
// When s is cut, the cut happens on the last word boundary inside the limit
// if one exists, so titles do not end in half a word.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := runes[:limit]
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			return strings.TrimRightFunc(string(cut[:i]), isTrailingPunct)
		}
	}
	return string(cut)
}

func isTrailingPunct(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == ';' || r == ':' || r == '-'
}
