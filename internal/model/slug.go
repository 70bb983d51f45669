package model

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength is the maximum slug length in bytes.
const MaxSlugLength = 80

var (
	// slugPattern matches a valid slug: lowercase ASCII words joined by single dashes.
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	// nonSlugChars matches runs of characters that cannot appear in a slug.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify converts free text into a URL-safe slug.
// Accented letters are folded to ASCII ("Café" becomes "cafe"), everything
// that is not a letter or digit becomes a single dash, and the result is cut
// to MaxSlugLength bytes without leaving a trailing dash.
//
//	Slugify("5 AI Tools") == "5-ai-tools"
func Slugify(s string) string {
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}

	slug := nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

// IsValidSlug reports whether s is already a well-formed slug.
func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}
