package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pressgen/internal/model"
)

// FileName is the database file inside the data directory.
const FileName = "pressgen.db"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02 15:04:05.000000"

// ErrRunNotFound is returned when a run id is not in the history.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores pipeline runs in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		slug TEXT NOT NULL,
		title TEXT,
		outcome TEXT NOT NULL,
		remote_id INTEGER,
		url TEXT,
		fingerprint TEXT,
		fallback INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_slug ON runs(collection, slug);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is one row of run history without the full run JSON.
type RunSummary struct {
	ID          string
	Collection  model.Collection
	Slug        string
	Title       string
	Outcome     model.Outcome
	RemoteID    int64
	URL         string
	Fingerprint string
	Fallback    bool
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// SlugSummary describes the latest state of one published slug.
type SlugSummary struct {
	Collection model.Collection
	Slug       string
	Runs       int
	Latest     RunSummary
}

// SaveRun stores run. Saving the same run twice replaces the first copy.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	outcome := model.OutcomeFailed
	var (
		remoteID int64
		link     string
	)
	if run.Result != nil {
		outcome = run.Result.Outcome
		remoteID = run.Result.RemoteID
		link = run.Result.URL
	}
	title := run.Topic.Title
	if run.Descriptor != nil {
		title = run.Descriptor.Title
	}
	fallback := 0
	if run.UsedFallback() {
		fallback = 1
	}
	var finished sql.NullString
	if !run.FinishedAt.IsZero() {
		finished = sql.NullString{String: formatTime(run.FinishedAt), Valid: true}
	}

	query := `
	INSERT OR REPLACE INTO runs (
		id, collection, slug, title, outcome, remote_id, url,
		fingerprint, fallback, error, started_at, finished_at, run_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = h.db.ExecContext(ctx, query,
		run.ID,
		string(run.Job.Collection),
		run.Slug(),
		title,
		outcome.String(),
		remoteID,
		link,
		run.Fingerprint,
		fallback,
		run.ErrorMessage,
		formatTime(run.StartedAt),
		finished,
		string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun returns the full run stored under id, or ErrRunNotFound.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var runJSON string
	err := h.db.QueryRowContext(ctx, `SELECT run_json FROM runs WHERE id = ?`, id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.Run
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	return &run, nil
}

const summaryColumns = `id, collection, slug, title, outcome, remote_id, url,
	fingerprint, fallback, error, started_at, finished_at`

// History returns the runs for one slug, newest first.
func (h *HistoryDB) History(ctx context.Context, collection model.Collection, slug string) ([]RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM runs
	WHERE collection = ? AND slug = ?
	ORDER BY started_at DESC, rowid DESC`

	rows, err := h.db.QueryContext(ctx, query, string(collection), slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// ListSlugs returns every slug with its run count and latest run, ordered
// by collection and slug.
func (h *HistoryDB) ListSlugs(ctx context.Context) ([]SlugSummary, error) {
	query := `SELECT ` + summaryColumns + `, n FROM (
		SELECT *,
			ROW_NUMBER() OVER (PARTITION BY collection, slug ORDER BY started_at DESC, rowid DESC) AS rn,
			COUNT(*) OVER (PARTITION BY collection, slug) AS n
		FROM runs
	) WHERE rn = 1
	ORDER BY collection, slug`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list slugs: %w", err)
	}
	defer rows.Close()

	var results []SlugSummary
	for rows.Next() {
		var count int
		s, err := scanSummary(rows, &count)
		if err != nil {
			return nil, err
		}
		results = append(results, SlugSummary{
			Collection: s.Collection,
			Slug:       s.Slug,
			Runs:       count,
			Latest:     s,
		})
	}
	return results, rows.Err()
}

// LastPublished returns the newest successful run for a slug other than
// excludeID, or nil if there is none.
func (h *HistoryDB) LastPublished(ctx context.Context, collection model.Collection, slug, excludeID string) (*RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM runs
	WHERE collection = ? AND slug = ? AND id != ? AND outcome IN ('created', 'updated')
	ORDER BY started_at DESC, rowid DESC
	LIMIT 1`

	rows, err := h.db.QueryContext(ctx, query, string(collection), slug, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get last published run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanSummary(rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Unchanged reports whether run published the same markup as the previous
// successful run of its slug.
func (h *HistoryDB) Unchanged(ctx context.Context, run *model.Run) (bool, error) {
	if run.Fingerprint == "" || !run.Succeeded() {
		return false, nil
	}
	prev, err := h.LastPublished(ctx, run.Job.Collection, run.Slug(), run.ID)
	if err != nil || prev == nil {
		return false, err
	}
	return prev.Fingerprint == run.Fingerprint, nil
}

// scanSummary reads the summary columns plus any extra destinations.
func scanSummary(rows *sql.Rows, extra ...any) (RunSummary, error) {
	var (
		s          RunSummary
		collection string
		outcome    string
		title      sql.NullString
		link       sql.NullString
		printText  sql.NullString
		remoteID   sql.NullInt64
		fallback   int
		errText    sql.NullString
		started    string
		finished   sql.NullString
	)
	dest := []any{
		&s.ID, &collection, &s.Slug, &title, &outcome, &remoteID, &link,
		&printText, &fallback, &errText, &started, &finished,
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return s, fmt.Errorf("failed to scan run: %w", err)
	}

	s.Collection = model.Collection(collection)
	if err := s.Outcome.UnmarshalText([]byte(outcome)); err != nil {
		s.Outcome = model.OutcomeFailed
	}
	s.Title = title.String
	s.URL = link.String
	s.Fingerprint = printText.String
	s.RemoteID = remoteID.Int64
	s.Fallback = fallback != 0
	s.Error = errText.String
	s.StartedAt = parseTimestamp(started)
	if finished.Valid {
		s.FinishedAt = parseTimestamp(finished.String)
	}
	return s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05", // SQLite default datetime format
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
