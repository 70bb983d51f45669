package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pressgen/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
//
// Design decision: We use the nao1215/markdown library for markdown
// generation. It gives us tables, GitHub alerts and mermaid charts
// without hand-escaping.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs a report for runs in Markdown format.
func (w *MarkdownWriter) Write(runs []*model.Run) (int, error) {
	return w.WriteSummary(NewSummary(runs))
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *Summary) (int, error) {
	if summary == nil {
		return 0, nil
	}
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeAlert(md, summary)
	w.writeItems(md, summary)
	w.writeStages(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the outcome counts.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Publish Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Runs", strconv.Itoa(summary.Total)},
			{"Created", strconv.Itoa(summary.Created)},
			{"Updated", strconv.Itoa(summary.Updated)},
			{"Failed", strconv.Itoa(summary.Failed)},
			{"With fallbacks", strconv.Itoa(summary.Fallbacks)},
		},
	})
	md.PlainText("")

	if summary.Total > 1 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Outcomes"),
		piechart.WithShowData(true),
	)
	if summary.Created > 0 {
		chart.LabelAndIntValue("Created", uint64(summary.Created))
	}
	if summary.Updated > 0 {
		chart.LabelAndIntValue("Updated", uint64(summary.Updated))
	}
	if summary.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(summary.Failed))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert reflecting the worst outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary) {
	switch {
	case summary.Total == 0:
		md.Note("Nothing was published.")
	case summary.Failed > 0:
		md.Cautionf("%d of %d run(s) failed to publish.", summary.Failed, summary.Total)
	case summary.Fallbacks > 0:
		md.Warningf("%d run(s) published with fallback content. Check the provider credentials.",
			summary.Fallbacks)
	default:
		md.Tip("All runs published successfully.")
	}
	md.PlainText("")
}

// writeItems writes one table row per run.
func (w *MarkdownWriter) writeItems(md *markdown.Markdown, summary *Summary) {
	if len(summary.Items) == 0 {
		return
	}
	md.H2("Runs")
	md.PlainText("")

	rows := make([][]string, len(summary.Items))
	for i, item := range summary.Items {
		rows[i] = []string{
			"`" + string(item.Collection) + "/" + displaySlug(item) + "`",
			escapeCell(truncateString(item.Title, 60)),
			outcomeText(item),
			linkCell(item),
			escapeCell(truncateString(dash(item.Error), 80)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Resource", "Title", "Outcome", "Link", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeStages writes a collapsible stage breakdown per run.
func (w *MarkdownWriter) writeStages(md *markdown.Markdown, summary *Summary) {
	for _, item := range summary.Items {
		if len(item.Stages) == 0 {
			continue
		}
		lines := make([]string, 0, len(item.Stages))
		for _, stage := range item.Stages {
			lines = append(lines, fmt.Sprintf("- %s: %s %s", stage.Name, stage.State, stage.Detail))
		}
		md.Details(displaySlug(item)+" stages", strings.Join(lines, "\n"))
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pressgen](https://github.com/nao1215/pressgen)*")
}

// outcomeText returns the outcome with its annotations.
func outcomeText(item Item) string {
	text := item.Outcome.String()
	switch item.Outcome {
	case model.OutcomeCreated:
		text = "✅ " + text
	case model.OutcomeUpdated:
		text = "🔄 " + text
	default:
		text = "❌ " + text
	}
	if item.Unchanged {
		text += " (unchanged)"
	}
	if item.Fallback {
		text += " (fallback)"
	}
	return text
}

// linkCell renders the resource link, or a dash when there is none.
func linkCell(item Item) string {
	if item.URL == "" {
		return "-"
	}
	label := "view"
	if item.RemoteID > 0 {
		label = "#" + strconv.FormatInt(item.RemoteID, 10)
	}
	return "[" + label + "](" + item.URL + ")"
}

// escapeCell keeps user text from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates s to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
