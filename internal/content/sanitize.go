package content

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nao1215/pressgen/internal/model"
)

var (
	// markdownLink matches [text](url) and keeps the text.
	markdownLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

	// linePrefix matches heading hashes, list markers and quote markers at line start.
	linePrefix = regexp.MustCompile(`(?m)^[ \t]*(?:#{1,6}[ \t]*|[-*+•][ \t]+|\d{1,2}[.)][ \t]+|>[ \t]*)`)

	// controlChars are markdown characters that never survive sanitization.
	controlChars = regexp.MustCompile("[*#`\\[\\]]+")

	// blankLine splits paragraphs.
	blankLine = regexp.MustCompile(`\n[ \t]*\n`)

	// labelPrefix matches "Topic:" or "Title:" labels models like to add.
	labelPrefix = regexp.MustCompile(`(?i)^(?:topic|title|headline)\s*:\s*`)

	// stripTags removes every HTML element and keeps the text.
	stripTags = bluemonday.StrictPolicy()
)

// SanitizeText removes markdown syntax and HTML from model output.
// Links keep their text, line-leading list and heading markers are dropped,
// and any remaining markdown control characters are deleted.
// Line structure is preserved.
func SanitizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = markdownLink.ReplaceAllString(s, "$1")
	s = linePrefix.ReplaceAllString(s, "")
	s = controlChars.ReplaceAllString(s, "")
	s = html.UnescapeString(stripTags.Sanitize(s))
	return strings.TrimSpace(s)
}

// SanitizeTopic extracts a single topic line from model output.
// It returns an empty string when nothing usable remains.
func SanitizeTopic(raw string) string {
	for line := range strings.SplitSeq(SanitizeText(raw), "\n") {
		line = labelPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.Trim(line, " \t\"'“”‘’")
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			return model.TruncateRunes(line, model.MaxTopicLength)
		}
	}
	return ""
}

// SanitizeParagraphs splits model output into at most limit plain-text
// paragraphs. Whitespace inside a paragraph is collapsed.
// A limit below 1 keeps every paragraph.
func SanitizeParagraphs(raw string, limit int) []string {
	parts := blankLine.Split(SanitizeText(raw), -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
		if limit > 0 && len(paragraphs) == limit {
			break
		}
	}
	return paragraphs
}
