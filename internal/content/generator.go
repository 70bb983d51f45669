package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/pressgen/internal/model"
)

// Default per-call timeouts.
const (
	// DefaultTopicTimeout bounds a topic completion.
	DefaultTopicTimeout = 30 * time.Second

	// DefaultBodyTimeout bounds a body or page completion.
	DefaultBodyTimeout = 90 * time.Second
)

// Generator produces topics and article bodies.
// It is safe for concurrent use if its Completer is.
type Generator struct {
	completer    Completer
	logger       *slog.Logger
	topicTimeout time.Duration
	bodyTimeout  time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used to report recovered failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithTimeouts overrides the per-call timeouts. Non-positive values keep the defaults.
func WithTimeouts(topic, body time.Duration) Option {
	return func(g *Generator) {
		if topic > 0 {
			g.topicTimeout = topic
		}
		if body > 0 {
			g.bodyTimeout = body
		}
	}
}

// NewGenerator creates a Generator backed by completer.
func NewGenerator(completer Completer, opts ...Option) *Generator {
	g := &Generator{
		completer:    completer,
		topicTimeout: DefaultTopicTimeout,
		bodyTimeout:  DefaultBodyTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// GenerateTopic asks the model for a post title in niche.
// It never fails: on any error a fallback topic is returned.
func (g *Generator) GenerateTopic(ctx context.Context, niche string) model.Topic {
	ctx, cancel := context.WithTimeout(ctx, g.topicTimeout)
	defer cancel()

	raw, err := g.completer.Complete(ctx, Request{
		Prompt:      topicPrompt(niche),
		MaxTokens:   60,
		Temperature: 0.9,
	})
	if err != nil {
		g.logger.Warn("topic generation failed, using fallback",
			"provider", g.completer.Name(),
			"error", err,
		)
		return FallbackTopic(niche)
	}

	title := SanitizeTopic(raw)
	if title == "" {
		g.logger.Warn("topic generation returned no usable text, using fallback",
			"provider", g.completer.Name(),
		)
		return FallbackTopic(niche)
	}
	return model.NewTopic(title, false)
}

// GenerateBody writes an article for topic shaped by style.
// It never fails: on any error a fallback body is returned.
// An invalid style is replaced by DefaultStyle.
func (g *Generator) GenerateBody(ctx context.Context, topic model.Topic, style Style) model.ArticleBody {
	style = g.checkStyle(style)
	return g.generate(ctx, "body", Request{
		Prompt:      bodyPrompt(topic.Title, style),
		MaxTokens:   style.MaxTokens,
		Temperature: style.Temperature,
	}, style, func() model.ArticleBody {
		return FallbackBody(topic, style)
	})
}

// GeneratePage writes copy for a static page.
// instruction is the page-specific prompt; when empty a generic one is used.
func (g *Generator) GeneratePage(ctx context.Context, title, instruction string, style Style) model.ArticleBody {
	style = g.checkStyle(style)
	return g.generate(ctx, "page", Request{
		Prompt:      pagePrompt(title, instruction, style),
		MaxTokens:   style.MaxTokens,
		Temperature: style.Temperature,
	}, style, func() model.ArticleBody {
		return FallbackPage(title, style)
	})
}

func (g *Generator) generate(
	ctx context.Context,
	kind string,
	req Request,
	style Style,
	fallback func() model.ArticleBody,
) model.ArticleBody {
	ctx, cancel := context.WithTimeout(ctx, g.bodyTimeout)
	defer cancel()

	raw, err := g.completer.Complete(ctx, req)
	if err != nil {
		g.logger.Warn(kind+" generation failed, using fallback",
			"provider", g.completer.Name(),
			"error", err,
		)
		return fallback()
	}

	paragraphs := SanitizeParagraphs(raw, style.ParagraphCount)
	if len(paragraphs) == 0 {
		g.logger.Warn(kind+" generation returned no usable text, using fallback",
			"provider", g.completer.Name(),
		)
		return fallback()
	}
	return model.ArticleBody{Paragraphs: paragraphs}
}

func (g *Generator) checkStyle(style Style) Style {
	if err := style.Validate(); err != nil {
		g.logger.Warn("invalid style, using defaults", "error", err)
		return DefaultStyle()
	}
	return style
}
