package content

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/nao1215/pressgen/internal/model"
)

// fallbackTopics are titles used when topic generation fails.
var fallbackTopics = []string{
	"5 AI Tools That Quietly Save Hours Every Week",
	"How Small Teams Automate Repetitive Work Without Writing Code",
	"A Practical Checklist for Your First Automation Project",
	"Choosing Between AI Assistants: What Actually Matters",
	"Turning Meeting Notes Into Action Items Automatically",
	"Simple Automations Every Freelancer Should Set Up This Month",
}

// fallbackBodies are article templates used when body generation fails.
// Each template has one %s verb in its first paragraph for the topic.
var fallbackBodies = [][]string{
	{
		"%s is a question more teams are asking as everyday tools gain smarter features. The good news is that getting real value does not require a big budget or a dedicated engineer, only a clear picture of where your time goes today.",
		"Start by writing down the tasks you repeat every week. Copying data between apps, sending the same follow-up emails and cleaning up spreadsheets are common examples. Anything that follows the same steps each time is a candidate for automation.",
		"Pick one task and automate it end to end before moving on. A single dependable workflow teaches you more than five half-finished experiments, and it builds trust with the people who rely on the result.",
		"Review the workflow after two weeks. Check what broke, what still needs a human decision and how much time it saved. Those notes make the next automation faster to build.",
		"Over a few months these small wins add up. The teams that benefit most are not the ones with the most tools but the ones that keep improving a handful of well understood processes.",
		"If you are unsure where to begin, choose the task you like least. Removing it from your week is motivation enough to see the project through.",
	},
	{
		"When people look into %s, they often expect a complicated setup. In practice the most useful improvements come from small, focused changes to the way work already flows through a team.",
		"The first step is visibility. Map out who does what, which tools are involved and where information gets stuck. Bottlenecks usually appear where data is retyped or where someone waits for an update.",
		"Next, look for tools that connect to the software you already use. Integrations that move information automatically remove a whole class of errors and free people to focus on decisions rather than data entry.",
		"Keep a person in the loop for anything customer facing. Automation is excellent at preparing drafts and gathering context, while a quick human review keeps quality and tone consistent.",
		"Finally, measure the outcome. Time saved, fewer mistakes and faster responses are all easy to track and make it simple to decide what to improve next.",
		"Approached this way, the work stays manageable and every step delivers something useful on its own.",
	},
	{
		"%s comes up in almost every conversation about working smarter. Underneath the buzzwords, the idea is simple: let software handle the predictable parts of a job so people can spend more time on the parts that need judgment.",
		"A good place to start is your inbox and calendar. Scheduling, reminders and routine replies are well supported by modern assistants and rarely need custom work to set up.",
		"Documents are the next opportunity. Summaries, first drafts and consistent formatting can all be produced in seconds, leaving you to refine the ideas rather than stare at a blank page.",
		"Data tasks follow close behind. Reports that once took an afternoon can be assembled automatically from the sources you already maintain, as long as those sources are kept tidy.",
		"Whatever you automate, document it. A short note describing what runs, when it runs and who owns it prevents surprises when something changes.",
		"With a few of these pieces in place, the benefits compound and the next improvement becomes easier to spot.",
	},
}

// fallbackPage is used for static pages when generation fails.
// It does not mention the page title.
var fallbackPage = []string{
	"Welcome, and thanks for stopping by. We publish practical, tested guides that help people and small teams get more done with less busywork.",
	"Every article is written to be useful on its own: clear steps, honest trade-offs and examples you can adapt to your own tools.",
	"We focus on approaches that are simple to set up and easy to maintain, so the results keep paying off long after the first afternoon.",
	"Questions, corrections and suggestions are always welcome. Reach out through the contact page and we will get back to you.",
}

// pick returns a stable index in [0, n) derived from key.
func pick(key string, n int) int {
	h := fnv.New32a()
	// hash.Hash never returns an error.
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n)) //nolint:gosec // n is a small pool size
}

// FallbackTopic returns a fallback topic for the niche.
// The same niche always yields the same topic.
func FallbackTopic(niche string) model.Topic {
	return model.NewTopic(fallbackTopics[pick(niche, len(fallbackTopics))], true)
}

// FallbackBody returns a fallback body for the topic, capped at the
// requested paragraph count. The same topic always yields the same body.
func FallbackBody(topic model.Topic, style Style) model.ArticleBody {
	template := fallbackBodies[pick(topic.Title, len(fallbackBodies))]
	return model.ArticleBody{
		Paragraphs: fill(template, topic.Title, style.ParagraphCount),
		Fallback:   true,
	}
}

// FallbackPage returns fallback copy for a static page.
func FallbackPage(title string, style Style) model.ArticleBody {
	return model.ArticleBody{
		Paragraphs: fill(fallbackPage, title, style.ParagraphCount),
		Fallback:   true,
	}
}

// fill formats the first paragraph with subject, when it has a verb,
// and caps the result.
func fill(template []string, subject string, limit int) []string {
	if limit < 1 || limit > len(template) {
		limit = len(template)
	}
	if subject == "" {
		subject = "Automation"
	}
	paragraphs := make([]string, limit)
	copy(paragraphs, template[:limit])
	if strings.Contains(paragraphs[0], "%s") {
		paragraphs[0] = fmt.Sprintf(paragraphs[0], subject)
	}
	return paragraphs
}
