package pipeline

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nao1215/pressgen/internal/model"
)

// DefaultTitleTemplate publishes the topic unchanged.
const DefaultTitleTemplate = "%s"

// DefaultTagline is shown under the heading of page layouts.
const DefaultTagline = "Actionable AI guides & automation recipes."

// Page layout limits.
const (
	introParagraphs = 2
	maxCards        = 4
)

// defaultCards are shown on a page whose body is too short for cards.
var defaultCards = [][2]string{
	{"Why us", "Practical automation guides."},
	{"Get started", "Contact us to build pipelines."},
}

var classPattern = regexp.MustCompile(`^[a-z0-9 -]+$`)

// ComposeStep renders the generated pieces into a page descriptor and
// computes the body fingerprint.
type ComposeStep struct {
	titleTemplate string
	tagline       string
	policy        *bluemonday.Policy
}

// NewComposeStep creates a ComposeStep.
// titleTemplate decorates article titles; the first %s is replaced by the topic.
func NewComposeStep(titleTemplate, tagline string) *ComposeStep {
	if titleTemplate == "" {
		titleTemplate = DefaultTitleTemplate
	}
	return &ComposeStep{
		titleTemplate: titleTemplate,
		tagline:       tagline,
		policy:        markupPolicy(),
	}
}

// markupPolicy allows the UGC element set plus the layout wrappers.
func markupPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("section", "figure")
	p.AllowAttrs("class").Matching(classPattern).OnElements("section", "div", "p", "figure", "img")
	return p
}

// Name returns the step name.
func (s *ComposeStep) Name() string {
	return StepCompose
}

// Do executes the compose step. An invalid descriptor aborts the run
// before anything is sent to the CMS.
func (s *ComposeStep) Do(_ context.Context, run *model.Run) error {
	var (
		title  string
		markup string
	)
	switch run.Job.Layout {
	case model.LayoutPage:
		title = run.Topic.Title
		markup = pageMarkup(title, s.tagline, run.Body.Paragraphs)
	default:
		title = ApplyTitleTemplate(s.titleTemplate, run.Topic.Title)
		markup = run.Body.HTML()
	}
	markup = s.policy.Sanitize(markup)

	d := model.NewPageDescriptor(composeSlug(run), title, markup, run.Image, run.Job.Tags)
	if err := d.Validate(); err != nil {
		return fmt.Errorf("compose %s: %w", run.Job.Label(), err)
	}

	run.Descriptor = &d
	run.Fingerprint = model.Fingerprint(d, run.ImageSource)
	run.RecordStage(s.Name(), model.StageOK, fmt.Sprintf("/%s/ %q", d.Slug, d.Title))
	return nil
}

// ApplyTitleTemplate replaces the first %s in template with topic.
// A template without %s yields the topic unchanged.
func ApplyTitleTemplate(template, topic string) string {
	if !strings.Contains(template, "%s") {
		return topic
	}
	return strings.TrimSpace(strings.Replace(template, "%s", topic, 1))
}

// composeSlug picks the job slug, then the slugified topic, then a
// run-derived slug so a descriptor always has a key.
func composeSlug(run *model.Run) string {
	if slug := strings.TrimSpace(run.Job.Slug); slug != "" {
		return slug
	}
	if slug := model.Slugify(run.Topic.Title); slug != "" {
		return slug
	}
	id := strings.ReplaceAll(run.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "post-" + id
}

// pageMarkup renders the hero, intro and card grid of a static page.
// The first paragraphs form the intro; the next ones become cards.
func pageMarkup(title, tagline string, paragraphs []string) string {
	paras := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}

	var sb strings.Builder
	sb.WriteString("<section class=\"page-hero\">\n")
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(title))
	if tagline != "" {
		fmt.Fprintf(&sb, "<p class=\"tagline\">%s</p>\n", html.EscapeString(tagline))
	}
	sb.WriteString("</section>\n")

	sb.WriteString("<div class=\"page-intro\">\n")
	intro := paras[:min(introParagraphs, len(paras))]
	if len(intro) == 0 {
		sb.WriteString("<p>Welcome.</p>\n")
	} else {
		sb.WriteString(model.ParagraphsHTML(intro))
	}
	sb.WriteString("</div>\n")

	sb.WriteString("<div class=\"page-cards\">\n")
	cards := 0
	for i, p := range paras[min(introParagraphs, len(paras)):] {
		if i == maxCards {
			break
		}
		writeCard(&sb, fmt.Sprintf("Point %d", i+1), p)
		cards++
	}
	if cards == 0 {
		for _, c := range defaultCards {
			writeCard(&sb, c[0], c[1])
		}
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

func writeCard(sb *strings.Builder, heading, text string) {
	fmt.Fprintf(sb, "<div class=\"page-card\"><h4>%s</h4><p>%s</p></div>\n",
		html.EscapeString(heading), html.EscapeString(text))
}
