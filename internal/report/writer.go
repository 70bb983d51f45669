package report

import (
	"io"

	"github.com/nao1215/pressgen/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the
// same API.
type Writer interface {
	// Write outputs a report for runs.
	// Returns the number of bytes written and any error encountered.
	Write(runs []*model.Run) (int, error)

	// WriteSummary outputs an already built summary. Callers use this
	// when they annotate the summary before rendering it.
	WriteSummary(summary *Summary) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// This is useful for printing to the terminal and saving a file at once.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(runs []*model.Run) (int, error) {
	return m.WriteSummary(NewSummary(runs))
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Ensure writers implement Writer.
var (
	_ Writer = (*MultiWriter)(nil)
	_ Writer = (*SimpleWriter)(nil)
	_ Writer = (*JSONWriter)(nil)
	_ Writer = (*MarkdownWriter)(nil)
)
