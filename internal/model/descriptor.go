package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Page descriptor validation errors.
var (
	// ErrInvalidSlug is returned when a descriptor slug is not URL-safe.
	ErrInvalidSlug = errors.New("invalid slug: must be lowercase letters, digits and single dashes")

	// ErrEmptyTitle is returned when a descriptor has no title.
	ErrEmptyTitle = errors.New("empty title")

	// ErrEmptyBody is returned when a descriptor has no body markup.
	ErrEmptyBody = errors.New("empty body")
)

// PageDescriptor is everything the publisher needs to upsert one CMS resource.
// Slug is the natural key used for upsert matching and never changes once the
// resource exists remotely; title, body, image and tags may change across runs.
type PageDescriptor struct {
	// Slug is the URL-safe natural key.
	Slug string `json:"slug"`

	// Title is the resource title.
	Title string `json:"title"`

	// BodyHTML is the composed, sanitized markup.
	BodyHTML string `json:"body_html"`

	// Image is the featured image.
	Image ImageReference `json:"image"`

	// Tags is a set of tag names, kept sorted and deduplicated.
	Tags []string `json:"tags,omitempty"`
}

// NewPageDescriptor builds a descriptor and normalizes its tag set.
func NewPageDescriptor(slug, title, bodyHTML string, image ImageReference, tags []string) PageDescriptor {
	return PageDescriptor{
		Slug:     slug,
		Title:    strings.TrimSpace(title),
		BodyHTML: bodyHTML,
		Image:    image,
		Tags:     NormalizeTags(tags),
	}
}

// Validate checks the descriptor before it is sent to the CMS.
func (d PageDescriptor) Validate() error {
	if !IsValidSlug(d.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, d.Slug)
	}
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(d.BodyHTML) == "" {
		return ErrEmptyBody
	}
	return d.Image.Validate()
}

// NormalizeTags trims, deduplicates case-insensitively and sorts tag names.
// The first spelling of a tag wins.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(tag), " ")
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, tag)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i]) < strings.ToLower(result[j])
	})
	if len(result) == 0 {
		return nil
	}
	return result
}
