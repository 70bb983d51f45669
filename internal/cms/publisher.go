package cms

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/nao1215/pressgen/internal/model"
)

// DefaultStatus is the status written resources get.
const DefaultStatus = "publish"

// Publisher upserts page descriptors into one CMS collection.
type Publisher struct {
	client     *Client
	collection model.Collection
	status     string
	logger     *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithCollection selects posts or pages. The default is posts.
func WithCollection(collection model.Collection) PublisherOption {
	return func(p *Publisher) {
		if collection.Valid() {
			p.collection = collection
		}
	}
}

// WithStatus sets the resource status, e.g. "draft". The default is DefaultStatus.
func WithStatus(status string) PublisherOption {
	return func(p *Publisher) {
		if status != "" {
			p.status = status
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher backed by client.
func NewPublisher(client *Client, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:     client,
		collection: model.CollectionPosts,
		status:     DefaultStatus,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Collection returns the target collection.
func (p *Publisher) Collection() model.Collection {
	return p.collection
}

// Publish creates or updates the resource whose slug matches d.Slug.
// It makes a single attempt; a lookup before the write keeps repeated
// calls converging on one remote resource.
func (p *Publisher) Publish(ctx context.Context, d model.PageDescriptor) model.PublishResult {
	if err := d.Validate(); err != nil {
		return model.FailedResult(fmt.Errorf("%w: %w", ErrInvalidDescriptor, err))
	}

	collection := string(p.collection)
	existing, err := p.client.FindBySlug(ctx, collection, d.Slug)
	if err != nil {
		return model.FailedResult(err)
	}

	payload := p.payload(ctx, d)

	var (
		res     Resource
		outcome model.Outcome
	)
	if existing == nil {
		outcome = model.OutcomeCreated
		res, err = p.client.Create(ctx, collection, payload)
	} else {
		outcome = model.OutcomeUpdated
		res, err = p.client.Update(ctx, collection, existing.ID, payload)
	}
	if err != nil {
		return model.FailedResult(err)
	}

	if existing != nil && res.ID != existing.ID {
		p.logger.Warn("CMS returned a different id on update",
			"slug", d.Slug,
			"expected", existing.ID,
			"got", res.ID,
		)
	}

	return model.PublishResult{
		Outcome:  outcome,
		RemoteID: res.ID,
		URL:      res.Link,
	}
}

// payload maps a descriptor to the request body.
func (p *Publisher) payload(ctx context.Context, d model.PageDescriptor) Payload {
	payload := Payload{
		Title:   d.Title,
		Content: d.BodyHTML,
		Status:  p.status,
		Slug:    d.Slug,
	}

	switch d.Image.Kind {
	case model.ImageKindMedia:
		payload.FeaturedMedia = d.Image.MediaID
	case model.ImageKindExternal:
		payload.Content = FigureHTML(d.Image.URL, d.Title) + payload.Content
	}

	if p.collection.SupportsTags() && len(d.Tags) > 0 {
		ids, err := p.client.ResolveTags(ctx, d.Tags)
		if err != nil {
			p.logger.Warn("tag resolution failed, publishing without tags",
				"slug", d.Slug,
				"error", err,
			)
		} else {
			payload.Tags = ids
		}
	}
	return payload
}

// FigureHTML renders an inline featured image block.
func FigureHTML(src, alt string) string {
	return fmt.Sprintf(
		"<figure class=\"wp-block-image size-large\"><img src=\"%s\" alt=\"%s\"/></figure>\n",
		html.EscapeString(src),
		html.EscapeString(alt),
	)
}
