package model

import (
	"html"
	"strings"
)

// ArticleBody is the generated long-form content of a page or post.
// Paragraphs hold plain text with markdown control characters removed.
// A body produced by the content generator is never empty.
type ArticleBody struct {
	// Paragraphs contains the body text split on blank lines.
	Paragraphs []string `json:"paragraphs"`

	// Fallback is true when the body came from the static fallback pool.
	Fallback bool `json:"fallback,omitempty"`
}

// IsEmpty reports whether the body has no non-blank paragraph.
func (b ArticleBody) IsEmpty() bool {
	for _, p := range b.Paragraphs {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// String joins the paragraphs with blank lines.
func (b ArticleBody) String() string {
	return strings.Join(b.Paragraphs, "\n\n")
}

// HTML renders the body as a sequence of escaped <p> elements.
func (b ArticleBody) HTML() string {
	return ParagraphsHTML(b.Paragraphs)
}

// WordCount returns the number of whitespace separated words in the body.
func (b ArticleBody) WordCount() int {
	n := 0
	for _, p := range b.Paragraphs {
		n += len(strings.Fields(p))
	}
	return n
}

// ParagraphsHTML renders plain-text paragraphs as escaped <p> elements.
// Blank paragraphs are skipped.
func ParagraphsHTML(paragraphs []string) string {
	var sb strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(p))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}
