package config

import (
	"fmt"

	"github.com/nao1215/pressgen/internal/model"
)

// DefaultPages is the static page set upserted by the pages command when the
// configuration file names none.
func DefaultPages() []model.Job {
	return []model.Job{
		{
			Slug:   "home",
			Title:  "AI Productivity & Automation",
			Prompt: "Write a friendly homepage intro for 'AI Productivity & Automation'. 3 short paragraphs and 3 short feature lines. Invite readers to the blog and the contact page. Plain text.",
		},
		{
			Slug:   "about",
			Title:  "About Us",
			Prompt: "Write an About Us page: mission (2 short paragraphs), a short team sentence, and 3 values as short lines. End with an invitation to get in touch.",
		},
		{
			Slug:   "contact",
			Title:  "Contact Us",
			Prompt: "Write a Contact page: short intro, 3 contact methods (email, form, social), and 2 quick FAQs.",
		},
		{
			Slug:  "privacy-policy",
			Title: "Privacy Policy",
			Prompt: "Write a concise, plain-language Privacy Policy summary suitable for an ad-supported blog. " +
				"Cover: what we collect (contact form, email, cookies, analytics), why, third-party services used " +
				"(Pexels for images, an AI provider for content), images served externally, cookies and analytics, " +
				"advertising, retention, how to opt out or request deletion, and a privacy contact.",
		},
	}
}

// PageJobs returns the configured page set, or DefaultPages, with every job
// targeting the pages collection in page layout.
func (c *Config) PageJobs() []model.Job {
	pages := c.Pages
	if len(pages) == 0 {
		pages = DefaultPages()
	}
	jobs := make([]model.Job, len(pages))
	for i, p := range pages {
		if p.Collection == "" {
			p.Collection = model.CollectionPages
		}
		if p.Layout == "" {
			p.Layout = model.LayoutPage
		}
		if p.ImageQuery == "" {
			p.ImageQuery = p.Title
		}
		jobs[i] = p
	}
	return jobs
}

// validatePages checks configured pages before any request is made.
func validatePages(pages []model.Job) error {
	seen := make(map[string]bool, len(pages))
	for i, p := range pages {
		if !model.IsValidSlug(p.Slug) {
			return fmt.Errorf("%w: page %d: slug %q is not URL-safe", ErrInvalidPage, i+1, p.Slug)
		}
		if seen[p.Slug] {
			return fmt.Errorf("%w: page %d: duplicate slug %q", ErrInvalidPage, i+1, p.Slug)
		}
		seen[p.Slug] = true
		if p.Collection != "" && !p.Collection.Valid() {
			return fmt.Errorf("%w: page %q: %q", ErrInvalidCollection, p.Slug, p.Collection)
		}
		if p.Layout != "" && !p.Layout.Valid() {
			return fmt.Errorf("%w: page %q: %q", ErrInvalidLayout, p.Slug, p.Layout)
		}
	}
	return nil
}
