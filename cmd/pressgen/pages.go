package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/pressgen/internal/config"
	"github.com/nao1215/pressgen/internal/model"
	"github.com/nao1215/pressgen/internal/pipeline"
)

// NewPagesCmd creates the pages command.
func NewPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages [slug...]",
		Short: "Create or update the static page set",
		Long: `Pages upserts the static pages listed under "pages:" in the configuration
file, or the built-in home, about, contact and privacy-policy pages when
none are configured. Pages are written concurrently; every page is matched
by slug so the command can be re-run safely.

Examples:
  # Upsert every configured page
  pressgen pages

  # Only refresh the about and contact pages
  pressgen pages about contact

  # Write pages as drafts, two at a time
  pressgen pages --status draft --batch 2`,
		Args: cobra.ArbitraryArgs,
		RunE: runPagesCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of pages written concurrently")
	cmd.Flags().String("status", "", "WordPress status, e.g. draft (default: "+config.DefaultPostStatus+")")
	cmd.Flags().String("tagline", "", "Tagline shown under each page heading")
	cmd.Flags().Bool("no-upload", false, "Link featured images instead of uploading them")
	addReportFlags(cmd)

	return cmd
}

// runPagesCmd executes the pages command.
func runPagesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyPagesFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	jobs, err := selectPages(cfg.PageJobs(), args)
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	return runPages(ctx, cmd, cfg, jobs, logger)
}

// applyPagesFlags overlays the flags that change configuration.
func applyPagesFlags(cmd *cobra.Command, cfg *config.Config) error {
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}

	// The YAML batch size applies unless the flag was given explicitly.
	if cmd.Flags().Changed("batch") {
		batch, err := cmd.Flags().GetInt("batch")
		if err != nil {
			return err
		}
		cfg.BatchSize = batch
	}

	status, err := cmd.Flags().GetString("status")
	if err != nil {
		return err
	}
	if status != "" {
		cfg.PostStatus = status
	}

	tagline, err := cmd.Flags().GetString("tagline")
	if err != nil {
		return err
	}
	if tagline != "" {
		cfg.Tagline = tagline
	}

	noUpload, err := cmd.Flags().GetBool("no-upload")
	if err != nil {
		return err
	}
	if noUpload {
		cfg.UploadImages = false
	}
	return nil
}

// selectPages filters jobs to the requested slugs, keeping configuration
// order. No slugs selects every page.
func selectPages(jobs []model.Job, slugs []string) ([]model.Job, error) {
	if len(slugs) == 0 {
		return jobs, nil
	}
	bySlug := make(map[string]model.Job, len(jobs))
	for _, job := range jobs {
		bySlug[job.Slug] = job
	}
	wanted := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if _, ok := bySlug[slug]; !ok {
			return nil, fmt.Errorf("%w: no page with slug %q is configured", config.ErrInvalidPage, slug)
		}
		wanted[slug] = true
	}

	selected := make([]model.Job, 0, len(slugs))
	for _, job := range jobs {
		if wanted[job.Slug] {
			selected = append(selected, job)
		}
	}
	return selected, nil
}

// runPages upserts jobs concurrently and reports them.
func runPages(ctx context.Context, cmd *cobra.Command, cfg *config.Config, jobs []model.Job, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close provider client", "error", err)
		}
	}()

	progress := cmd.ErrOrStderr()
	fmt.Fprintf(progress, "Upserting %d page(s) on %s (concurrency: %d)...\n\n",
		len(jobs), cfg.SiteURL, cfg.BatchSize)

	status := pipeline.SyncWriter(progress)
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return a.newPipeline(status)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	runs, err := bp.ProcessJobs(ctx, jobs)
	if errors.Is(err, pipeline.ErrDuplicateSlug) {
		return err
	}
	if err != nil {
		logger.Error("batch interrupted", "error", err)
	}
	return finish(ctx, cmd, cfg, runs, logger)
}
