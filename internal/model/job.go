package model

import "fmt"

// Collection is the CMS resource collection a job publishes into.
type Collection string

const (
	// CollectionPosts publishes blog posts.
	CollectionPosts Collection = "posts"

	// CollectionPages publishes static pages.
	CollectionPages Collection = "pages"
)

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	return c == CollectionPosts || c == CollectionPages
}

// SupportsTags reports whether resources in the collection accept tags.
// WordPress pages have no tag taxonomy.
func (c Collection) SupportsTags() bool {
	return c == CollectionPosts
}

// Layout selects how the body markup is composed.
type Layout string

const (
	// LayoutArticle renders the body as a run of paragraphs.
	LayoutArticle Layout = "article"

	// LayoutPage renders a short intro followed by highlight cards.
	LayoutPage Layout = "page"
)

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == LayoutArticle || l == LayoutPage
}

// Job describes what a single pipeline run should produce.
// Empty fields are filled in by the pipeline: no Title means the generator
// picks a topic, no Slug means the slug is derived from the title, and no
// ImageQuery means the topic doubles as the image query.
type Job struct {
	// Slug is the natural key of the resource. Optional.
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`

	// Title is a fixed title. When empty a topic is generated.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Niche steers topic generation when Title is empty.
	Niche string `json:"niche,omitempty" yaml:"niche,omitempty"`

	// Prompt replaces the default body prompt. Optional.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	// ImageQuery is the stock photo search query. Optional.
	ImageQuery string `json:"image_query,omitempty" yaml:"imageQuery,omitempty"`

	// Collection is posts or pages.
	Collection Collection `json:"collection" yaml:"collection,omitempty"`

	// Layout is article or page.
	Layout Layout `json:"layout" yaml:"layout,omitempty"`

	// Tags are attached to posts.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Label returns a short identifier for logs and status lines.
func (j Job) Label() string {
	switch {
	case j.Slug != "":
		return j.Slug
	case j.Title != "":
		return Slugify(j.Title)
	default:
		return fmt.Sprintf("(generated %s)", j.Collection)
	}
}
