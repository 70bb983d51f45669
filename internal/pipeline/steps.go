package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pressgen/internal/content"
	"github.com/nao1215/pressgen/internal/media"
	"github.com/nao1215/pressgen/internal/model"
)

// Step names, in execution order.
const (
	StepTopic   = "topic"
	StepBody    = "body"
	StepImage   = "image"
	StepCompose = "compose"
	StepPublish = "publish"
)

// DefaultNiche steers topic generation when neither the job nor the
// configuration names one.
const DefaultNiche = "AI tools and automation"

// Pipeline step errors.
var (
	// ErrNoPublisher is returned when no publisher is configured for a collection.
	ErrNoPublisher = errors.New("no publisher configured for collection")

	// ErrNotComposed is returned when the publish step runs before compose.
	ErrNotComposed = errors.New("page descriptor not composed")
)

// ContentGenerator produces topics and bodies. Implementations never fail;
// fallbacks are reported through the Fallback flags of the returned values.
type ContentGenerator interface {
	GenerateTopic(ctx context.Context, niche string) model.Topic
	GenerateBody(ctx context.Context, topic model.Topic, style content.Style) model.ArticleBody
	GeneratePage(ctx context.Context, title, instruction string, style content.Style) model.ArticleBody
}

// ImageResolver turns a query into an image reference.
type ImageResolver interface {
	ResolveDetailed(ctx context.Context, query string, target media.Uploader) media.Resolution
}

// Publisher upserts a composed page.
type Publisher interface {
	Publish(ctx context.Context, d model.PageDescriptor) model.PublishResult
}

// TopicStep fills run.Topic. A job that carries a title skips generation.
type TopicStep struct {
	generator ContentGenerator
	niche     string
}

// NewTopicStep creates a TopicStep. niche is used for jobs without their own.
func NewTopicStep(generator ContentGenerator, niche string) *TopicStep {
	if strings.TrimSpace(niche) == "" {
		niche = DefaultNiche
	}
	return &TopicStep{generator: generator, niche: niche}
}

// Name returns the step name.
func (s *TopicStep) Name() string {
	return StepTopic
}

// Do executes the topic step.
func (s *TopicStep) Do(ctx context.Context, run *model.Run) error {
	if title := strings.TrimSpace(run.Job.Title); title != "" {
		run.Topic = model.NewTopic(title, false)
		run.RecordStage(s.Name(), model.StageSkipped, "title provided")
		return nil
	}
	if run.Job.Layout == model.LayoutPage && run.Job.Slug != "" {
		run.Topic = model.NewTopic(TitleFromSlug(run.Job.Slug), false)
		run.RecordStage(s.Name(), model.StageSkipped, "title from slug")
		return nil
	}

	niche := run.Job.Niche
	if strings.TrimSpace(niche) == "" {
		niche = s.niche
	}
	run.Topic = s.generator.GenerateTopic(ctx, niche)
	state := model.StageOK
	if run.Topic.Fallback {
		state = model.StageFallback
	}
	run.RecordStage(s.Name(), state, fmt.Sprintf("%q", run.Topic.Title))
	return nil
}

// TitleFromSlug turns "privacy-policy" into "Privacy Policy".
func TitleFromSlug(slug string) string {
	words := strings.ReplaceAll(strings.TrimSpace(slug), "-", " ")
	return cases.Title(language.English).String(words)
}

// BodyStep fills run.Body. Page layouts and jobs with a custom prompt use
// page generation; everything else gets an article.
type BodyStep struct {
	generator    ContentGenerator
	articleStyle content.Style
	pageStyle    content.Style
}

// NewBodyStep creates a BodyStep with the styles for each layout.
func NewBodyStep(generator ContentGenerator, articleStyle, pageStyle content.Style) *BodyStep {
	return &BodyStep{
		generator:    generator,
		articleStyle: articleStyle,
		pageStyle:    pageStyle,
	}
}

// Name returns the step name.
func (s *BodyStep) Name() string {
	return StepBody
}

// Do executes the body step.
func (s *BodyStep) Do(ctx context.Context, run *model.Run) error {
	style := s.articleStyle
	if run.Job.Layout == model.LayoutPage {
		style = s.pageStyle
	}

	if run.Job.Layout == model.LayoutPage || strings.TrimSpace(run.Job.Prompt) != "" {
		run.Body = s.generator.GeneratePage(ctx, run.Topic.Title, run.Job.Prompt, style)
	} else {
		run.Body = s.generator.GenerateBody(ctx, run.Topic, style)
	}

	state := model.StageOK
	if run.Body.Fallback {
		state = model.StageFallback
	}
	run.RecordStage(s.Name(), state,
		fmt.Sprintf("%d paragraphs, %d words", len(run.Body.Paragraphs), run.Body.WordCount()))
	return nil
}

// ImageStep fills run.Image. When an uploader is configured the image is
// stored in the CMS media library; otherwise it is linked externally.
type ImageStep struct {
	resolver ImageResolver
	uploader media.Uploader
}

// NewImageStep creates an ImageStep. uploader may be nil.
func NewImageStep(resolver ImageResolver, uploader media.Uploader) *ImageStep {
	return &ImageStep{resolver: resolver, uploader: uploader}
}

// Name returns the step name.
func (s *ImageStep) Name() string {
	return StepImage
}

// Do executes the image step.
func (s *ImageStep) Do(ctx context.Context, run *model.Run) error {
	query := strings.TrimSpace(run.Job.ImageQuery)
	if query == "" {
		query = run.Topic.Title
	}

	res := s.resolver.ResolveDetailed(ctx, query, s.uploader)
	run.Image = res.Image
	run.ImageSource = res.Candidate

	detail := res.Image.String()
	if n := len(res.Findings); n > 0 {
		detail += fmt.Sprintf(" (%d identifying metadata tags)", n)
	}
	state := model.StageOK
	if res.Degraded() {
		state = model.StageFallback
		detail += ": " + res.Problems[len(res.Problems)-1].Error()
	}
	run.RecordStage(s.Name(), state, detail)
	return nil
}

// PublishStep upserts the composed descriptor through the publisher for the
// job's collection.
type PublishStep struct {
	publishers map[model.Collection]Publisher
}

// NewPublishStep creates a PublishStep. Either publisher may be nil when the
// run never targets that collection.
func NewPublishStep(posts, pages Publisher) *PublishStep {
	s := &PublishStep{publishers: make(map[model.Collection]Publisher, 2)}
	if posts != nil {
		s.publishers[model.CollectionPosts] = posts
	}
	if pages != nil {
		s.publishers[model.CollectionPages] = pages
	}
	return s
}

// Name returns the step name.
func (s *PublishStep) Name() string {
	return StepPublish
}

// Do executes the publish step. A failed publish fails the run.
func (s *PublishStep) Do(ctx context.Context, run *model.Run) error {
	if run.Descriptor == nil {
		return ErrNotComposed
	}
	publisher, ok := s.publishers[run.Job.Collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPublisher, run.Job.Collection)
	}

	result := publisher.Publish(ctx, *run.Descriptor)
	run.Result = &result
	if !result.Succeeded() {
		run.RecordStage(s.Name(), model.StageFailed, result.ErrorDetail)
		if result.Err != nil {
			return result.Err
		}
		return errors.New(result.ErrorDetail)
	}

	run.RecordStage(s.Name(), model.StageOK,
		fmt.Sprintf("%s #%d %s", result.Outcome, result.RemoteID, result.URL))
	return nil
}

// Ensure steps implement Step.
var (
	_ Step = (*TopicStep)(nil)
	_ Step = (*BodyStep)(nil)
	_ Step = (*ImageStep)(nil)
	_ Step = (*ComposeStep)(nil)
	_ Step = (*PublishStep)(nil)
)
