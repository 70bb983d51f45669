package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/pressgen/internal/config"
	"github.com/nao1215/pressgen/internal/model"
)

// NewPublishCmd creates the publish command.
func NewPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Generate one post and create or update it by slug",
		Long: `Publish runs the pipeline once: pick a topic, write the body, find a
featured image, compose the markup and upsert it into WordPress.

The slug is the natural key. When a resource with the slug already exists
it is updated in place; otherwise a new one is created. Running the same
command twice therefore never creates a duplicate.

Examples:
  # Let the model pick a topic in the configured niche
  pressgen publish

  # Fixed title; the slug is derived from it
  pressgen publish --title "5 AI Tools for Small Teams"

  # Keep updating the same post
  pressgen publish --slug weekly-ai-roundup --niche "AI news"

  # Publish as draft with tags and a Markdown report
  pressgen publish --status draft --tags ai,tools --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runPublishCmd,
	}

	cmd.Flags().StringP("title", "t", "", "Fixed title (skips topic generation)")
	cmd.Flags().StringP("slug", "s", "", "Slug to create or update (default: derived from the title)")
	cmd.Flags().StringP("niche", "n", "", "Topic area used when no title is given")
	cmd.Flags().String("prompt", "", "Custom body prompt")
	cmd.Flags().String("image-query", "", "Stock photo search query (default: the topic)")
	cmd.Flags().StringSlice("tags", nil, "Comma-separated tags (default: from the configuration file)")
	cmd.Flags().String("collection", string(model.CollectionPosts), "Target collection: posts or pages")
	cmd.Flags().String("layout", "", "Body layout: article or page (default: page for pages, article otherwise)")
	cmd.Flags().String("status", "", "WordPress status, e.g. draft (default: "+config.DefaultPostStatus+")")
	cmd.Flags().String("title-template", "", `Title decoration; the first %s is the topic`)
	cmd.Flags().Bool("no-upload", false, "Link the featured image instead of uploading it")
	addReportFlags(cmd)

	return cmd
}

// runPublishCmd executes the publish command.
func runPublishCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyPublishFlags(cmd, cfg); err != nil {
		return err
	}
	job, err := buildPublishJob(cmd, cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	return runPublish(ctx, cmd, cfg, job, logger)
}

// applyPublishFlags overlays the flags that change configuration.
func applyPublishFlags(cmd *cobra.Command, cfg *config.Config) error {
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}

	status, err := cmd.Flags().GetString("status")
	if err != nil {
		return err
	}
	if status != "" {
		cfg.PostStatus = status
	}

	template, err := cmd.Flags().GetString("title-template")
	if err != nil {
		return err
	}
	if template != "" {
		cfg.TitleTemplate = template
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

// buildPublishJob creates the job described by the publish flags.
func buildPublishJob(cmd *cobra.Command, cfg *config.Config) (model.Job, error) {
	var (
		job model.Job
		err error
	)
	flags := cmd.Flags()

	if job.Title, err = flags.GetString("title"); err != nil {
		return job, err
	}
	if job.Slug, err = flags.GetString("slug"); err != nil {
		return job, err
	}
	if job.Niche, err = flags.GetString("niche"); err != nil {
		return job, err
	}
	if job.Prompt, err = flags.GetString("prompt"); err != nil {
		return job, err
	}
	if job.ImageQuery, err = flags.GetString("image-query"); err != nil {
		return job, err
	}
	if job.Tags, err = flags.GetStringSlice("tags"); err != nil {
		return job, err
	}
	if len(job.Tags) == 0 {
		job.Tags = cfg.Tags
	}

	collection, err := flags.GetString("collection")
	if err != nil {
		return job, err
	}
	job.Collection = model.Collection(strings.ToLower(collection))
	if !job.Collection.Valid() {
		return job, fmt.Errorf("%w: %q", config.ErrInvalidCollection, collection)
	}

	layout, err := flags.GetString("layout")
	if err != nil {
		return job, err
	}
	switch {
	case layout != "":
		job.Layout = model.Layout(strings.ToLower(layout))
	case job.Collection == model.CollectionPages:
		job.Layout = model.LayoutPage
	default:
		job.Layout = model.LayoutArticle
	}
	if !job.Layout.Valid() {
		return job, fmt.Errorf("%w: %q", config.ErrInvalidLayout, layout)
	}

	if job.Slug != "" && !model.IsValidSlug(job.Slug) {
		return job, fmt.Errorf("invalid slug %q: use lowercase letters, digits and hyphens", job.Slug)
	}
	return job, nil
}

// runPublish executes one run and reports it.
func runPublish(ctx context.Context, cmd *cobra.Command, cfg *config.Config, job model.Job, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close provider client", "error", err)
		}
	}()

	logger.Info("starting publish",
		"job", job.Label(),
		"collection", job.Collection,
		"site", cfg.SiteURL,
	)

	// Stage lines are progress; stdout carries only the report.
	run := model.NewRun(job)
	if err := a.newPipeline(cmd.ErrOrStderr()).Execute(ctx, run); err != nil {
		logger.Error("publish failed", "job", job.Label(), "error", err)
	}

	return finish(ctx, cmd, cfg, []*model.Run{run}, logger)
}
