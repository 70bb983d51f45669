package content

import (
	"fmt"
	"strings"
)

// topicPrompt asks for one post title in the given niche.
func topicPrompt(niche string) string {
	if strings.TrimSpace(niche) == "" {
		niche = "practical AI tools and automation"
	}
	return fmt.Sprintf(
		"Suggest one fresh, specific blog post title about %s. "+
			"Reply with the title only: no quotes, no numbering, at most 12 words.",
		niche,
	)
}

// bodyPrompt asks for an article body shaped by style.
func bodyPrompt(title string, style Style) string {
	return fmt.Sprintf(
		"Write a blog article titled %q. "+
			"Write exactly %d paragraphs of about %d words each, separated by blank lines. "+
			"The tone is %s. "+
			"Plain text only: no markdown, no headings, no lists, no links, no title line.",
		title, style.ParagraphCount, style.WordsPerParagraph, style.Tone.describe(),
	)
}

// pagePrompt wraps a page-specific instruction with the formatting rules.
func pagePrompt(title, instruction string, style Style) string {
	if strings.TrimSpace(instruction) == "" {
		instruction = fmt.Sprintf("Write a short page titled %q in friendly language.", title)
	}
	return fmt.Sprintf(
		"%s\n\nWrite up to %d short paragraphs separated by blank lines. "+
			"The tone is %s. Plain text only: no markdown, no headings, no links.",
		instruction, style.ParagraphCount, style.Tone.describe(),
	)
}
