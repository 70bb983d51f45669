package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/pressgen/internal/model"
)

// SimpleWriter outputs human-readable text reports for the terminal.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so that output can be piped to files without escape codes.
type SimpleWriter struct {
	baseWriter

	// verbose adds the per-stage breakdown of every run.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-stage breakdown.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs a report for runs.
func (w *SimpleWriter) Write(runs []*model.Run) (int, error) {
	return w.WriteSummary(NewSummary(runs))
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *Summary) (int, error) {
	if summary == nil {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString("PUBLISH SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	for _, item := range summary.Items {
		w.writeItem(&sb, item)
	}

	sb.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&sb, "Total: %d  Created: %d  Updated: %d  Failed: %d",
		summary.Total, summary.Created, summary.Updated, summary.Failed)
	if summary.Fallbacks > 0 {
		fmt.Fprintf(&sb, "  With fallbacks: %d", summary.Fallbacks)
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeItem writes one run line, its link or error, and optionally its stages.
func (w *SimpleWriter) writeItem(sb *strings.Builder, item Item) {
	fmt.Fprintf(sb, "%s %-8s %s/%s", outcomeIndicator(item.Outcome), item.Outcome, item.Collection, displaySlug(item))
	if item.RemoteID > 0 {
		fmt.Fprintf(sb, " #%d", item.RemoteID)
	}
	if item.Duration > 0 {
		fmt.Fprintf(sb, " (%s)", item.Duration.Round(time.Millisecond))
	}
	sb.WriteString("\n")

	if item.Title != "" {
		fmt.Fprintf(sb, "    title: %s\n", item.Title)
	}
	if item.URL != "" {
		fmt.Fprintf(sb, "    url:   %s\n", item.URL)
	}
	if item.Unchanged {
		sb.WriteString("    note:  content unchanged since the last publish\n")
	}
	if item.Fallback {
		sb.WriteString("    note:  fallback content was used\n")
	}
	if item.Error != "" {
		fmt.Fprintf(sb, "    error: %s\n", item.Error)
	}

	if w.verbose {
		for _, stage := range item.Stages {
			fmt.Fprintf(sb, "      %-8s %-9s %s\n", stage.Name, stage.State, stage.Detail)
		}
	}
}

// outcomeIndicator returns a fixed-width ASCII marker for an outcome.
func outcomeIndicator(o model.Outcome) string {
	switch o {
	case model.OutcomeCreated:
		return "[+]"
	case model.OutcomeUpdated:
		return "[~]"
	default:
		return "[!]"
	}
}

// displaySlug returns the slug, or the job label when none was composed.
func displaySlug(item Item) string {
	if item.Slug != "" {
		return item.Slug
	}
	return item.Label
}
