package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/pressgen/internal/config"
	"github.com/nao1215/pressgen/internal/database"
	"github.com/nao1215/pressgen/internal/model"
	"github.com/nao1215/pressgen/internal/report"
)

// NewHistoryCmd creates the history command.
// This command lists runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [slug]",
		Short: "Show published slugs and their run history",
		Long: `History reads the local run database written by publish and pages.

Without arguments it lists every slug with its latest outcome and link.
With a slug it lists every run for that slug, newest first. A "*" after
the outcome marks runs that used fallback content.

Examples:
  # List every slug
  pressgen history

  # Runs for one post
  pressgen history 5-ai-tools

  # Runs for a static page
  pressgen history --collection pages about

  # Full record of one run as JSON
  pressgen history --show 0b6c9b0e-5b0e-4a57-9d7e-3c3c1f0e2a11`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("collection", string(model.CollectionPosts),
		"Collection of the slug: posts or pages")
	cmd.Flags().String("show", "", "Print the full record of the run with this ID")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	collection, err := flags.GetString("collection")
	if err != nil {
		return err
	}
	c := model.Collection(strings.ToLower(collection))
	if !c.Valid() {
		return fmt.Errorf("%w: %q", config.ErrInvalidCollection, collection)
	}
	showID, err := flags.GetString("show")
	if err != nil {
		return err
	}
	asJSON, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a usage error
	// never creates an empty database file.
	if showID != "" && len(args) > 0 {
		return errors.New("--show cannot be combined with a slug")
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case showID != "":
		return showRun(ctx, db, showID, out)
	case len(args) == 1:
		runs, err := db.History(ctx, c, args[0])
		if err != nil {
			return err
		}
		return report.NewHistoryWriter(out, asJSON).WriteRuns(runs)
	default:
		slugs, err := db.ListSlugs(ctx)
		if err != nil {
			return err
		}
		return report.NewHistoryWriter(out, asJSON).WriteSlugs(slugs)
	}
}

// showRun prints the stored run as indented JSON.
func showRun(ctx context.Context, db *database.HistoryDB, id string, out io.Writer) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("no run with ID %q", id)
		}
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}
