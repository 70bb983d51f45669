package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nao1215/pressgen/internal/database"
)

// HistoryWriter renders the contents of the history database.
type HistoryWriter struct {
	baseWriter
	json bool
}

// NewHistoryWriter creates a HistoryWriter. When asJSON is true the rows
// are written as a JSON array instead of an aligned table.
func NewHistoryWriter(output io.Writer, asJSON bool) *HistoryWriter {
	return &HistoryWriter{baseWriter: newBaseWriter(output), json: asJSON}
}

// historySlugJSON is the JSON shape of one slug row.
type historySlugJSON struct {
	Collection string    `json:"collection"`
	Slug       string    `json:"slug"`
	Runs       int       `json:"runs"`
	Outcome    string    `json:"outcome"`
	RemoteID   int64     `json:"remote_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Title      string    `json:"title,omitempty"`
	LastRun    time.Time `json:"last_run"`
}

// historyRunJSON is the JSON shape of one run row.
type historyRunJSON struct {
	ID          string    `json:"id"`
	Outcome     string    `json:"outcome"`
	RemoteID    int64     `json:"remote_id,omitempty"`
	URL         string    `json:"url,omitempty"`
	Title       string    `json:"title,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Fallback    bool      `json:"fallback,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

// WriteSlugs writes one row per published slug.
func (w *HistoryWriter) WriteSlugs(slugs []database.SlugSummary) error {
	if w.json {
		rows := make([]historySlugJSON, 0, len(slugs))
		for _, s := range slugs {
			rows = append(rows, historySlugJSON{
				Collection: string(s.Collection),
				Slug:       s.Slug,
				Runs:       s.Runs,
				Outcome:    s.Latest.Outcome.String(),
				RemoteID:   s.Latest.RemoteID,
				URL:        s.Latest.URL,
				Title:      s.Latest.Title,
				LastRun:    s.Latest.StartedAt,
			})
		}
		return w.encode(rows)
	}

	if len(slugs) == 0 {
		_, err := fmt.Fprintln(w.output, "No runs recorded yet.")
		return err
	}
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tSLUG\tRUNS\tLAST OUTCOME\tID\tLAST RUN\tURL")
	for _, s := range slugs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			s.Collection, s.Slug, s.Runs, s.Latest.Outcome,
			remoteIDText(s.Latest.RemoteID),
			s.Latest.StartedAt.Local().Format(time.DateTime),
			dash(s.Latest.URL))
	}
	return tw.Flush()
}

// WriteRuns writes the runs recorded for one slug, newest first.
func (w *HistoryWriter) WriteRuns(runs []database.RunSummary) error {
	if w.json {
		rows := make([]historyRunJSON, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, historyRunJSON{
				ID:          r.ID,
				Outcome:     r.Outcome.String(),
				RemoteID:    r.RemoteID,
				URL:         r.URL,
				Title:       r.Title,
				Fingerprint: r.Fingerprint,
				Fallback:    r.Fallback,
				Error:       r.Error,
				StartedAt:   r.StartedAt,
			})
		}
		return w.encode(rows)
	}

	if len(runs) == 0 {
		_, err := fmt.Fprintln(w.output, "No runs recorded for this slug.")
		return err
	}
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOUTCOME\tID\tFINGERPRINT\tTITLE\tERROR")
	for _, r := range runs {
		outcome := r.Outcome.String()
		if r.Fallback {
			outcome += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			outcome,
			remoteIDText(r.RemoteID),
			dash(shortFingerprint(r.Fingerprint)),
			dash(truncateString(r.Title, 40)),
			dash(truncateString(r.Error, 60)))
	}
	return tw.Flush()
}

func (w *HistoryWriter) encode(v any) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func remoteIDText(id int64) string {
	if id <= 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", id)
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
