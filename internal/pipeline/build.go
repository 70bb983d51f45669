package pipeline

import (
	"github.com/nao1215/pressgen/internal/content"
	"github.com/nao1215/pressgen/internal/media"
)

// Dependencies are the services the default steps call.
type Dependencies struct {
	// Generator writes topics and bodies.
	Generator ContentGenerator

	// Resolver finds featured images.
	Resolver ImageResolver

	// Uploader stores images in the CMS media library. Nil links images externally.
	Uploader media.Uploader

	// Posts publishes to the posts collection. May be nil for page-only runs.
	Posts Publisher

	// Pages publishes to the pages collection. May be nil for post-only runs.
	Pages Publisher
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Niche steers topic generation for jobs without their own niche.
	Niche string

	// TitleTemplate decorates article titles. The first %s is the topic.
	TitleTemplate string

	// Tagline is shown under the heading of page layouts.
	Tagline string

	// ArticleStyle shapes article bodies.
	ArticleStyle content.Style

	// PageStyle shapes static page copy.
	PageStyle content.Style
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineNiche sets the default niche.
func WithPipelineNiche(niche string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Niche = niche
	}
}

// WithPipelineTitleTemplate sets the article title template.
func WithPipelineTitleTemplate(template string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.TitleTemplate = template
	}
}

// WithPipelineTagline sets the page tagline.
func WithPipelineTagline(tagline string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Tagline = tagline
	}
}

// WithPipelineStyles sets the article and page styles.
func WithPipelineStyles(article, page content.Style) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ArticleStyle = article
		c.PageStyle = page
	}
}

// DefaultPipeline creates a pipeline with the topic, body, image, compose
// and publish steps.
//
// The first parameter lists pipeline options (WithLogger, WithStatusWriter).
// The variadic parameter accepts config options (WithPipelineNiche, etc).
func DefaultPipeline(deps Dependencies, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Niche:         DefaultNiche,
		TitleTemplate: DefaultTitleTemplate,
		Tagline:       DefaultTagline,
		ArticleStyle:  content.DefaultStyle(),
		PageStyle:     content.PageStyle(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewTopicStep(deps.Generator, cfg.Niche),
		NewBodyStep(deps.Generator, cfg.ArticleStyle, cfg.PageStyle),
		NewImageStep(deps.Resolver, deps.Uploader),
		NewComposeStep(cfg.TitleTemplate, cfg.Tagline),
		NewPublishStep(deps.Posts, deps.Pages),
	)
	return p
}
