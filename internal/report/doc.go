// Package report renders pipeline runs for people and tools.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for sharing and archiving
//
// Every writer renders a Summary, which is derived from the runs of one
// invocation. The history command uses HistoryWriter to render the slugs
// stored in the history database.
//
// Design decision: We separate report writing from run data structures
// (which are in the model package) so that adding an output format never
// touches the pipeline.
package report
