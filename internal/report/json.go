package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/pressgen/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
//
// Design decision: We use standard encoding/json. The summary is a plain
// struct tree and no library in our dependency set improves on it.
type JSONWriter struct {
	baseWriter

	// indentString is the indentation per level. Empty means compact.
	indentString string

	// version is stamped into the envelope when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentString = "  "
	}
}

// WithVersion stamps the application version into every report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the envelope written by JSONWriter.
type JSONReport struct {
	// Version is the pressgen version that produced the report.
	Version string `json:"version,omitempty"`

	// Summary is the report body.
	Summary *Summary `json:"summary"`
}

// Write outputs a report for runs in JSON format.
func (w *JSONWriter) Write(runs []*model.Run) (int, error) {
	return w.WriteSummary(NewSummary(runs))
}

// WriteSummary outputs the summary in JSON format.
func (w *JSONWriter) WriteSummary(summary *Summary) (int, error) {
	return w.writeJSON(JSONReport{Version: w.version, Summary: summary})
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indentString != "" {
		data, err = json.MarshalIndent(v, "", w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
