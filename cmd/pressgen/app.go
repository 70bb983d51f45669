package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pressgen/internal/cms"
	"github.com/nao1215/pressgen/internal/config"
	"github.com/nao1215/pressgen/internal/content"
	"github.com/nao1215/pressgen/internal/database"
	plog "github.com/nao1215/pressgen/internal/log"
	"github.com/nao1215/pressgen/internal/media"
	"github.com/nao1215/pressgen/internal/model"
	"github.com/nao1215/pressgen/internal/pipeline"
	"github.com/nao1215/pressgen/internal/report"
	"github.com/nao1215/pressgen/internal/transport"
)

// ErrRunsFailed is returned when at least one run did not publish.
// The summary has already been printed when it is returned.
var ErrRunsFailed = errors.New("publishing failed")

// loadConfig builds the configuration from the persistent flags, the
// dotenv file, the environment and the YAML file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(envFile, configPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = cmd.Flags().GetBool("log-json"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyReportFlags copies the report flags shared by publish and pages.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noHistory
	return nil
}

// addReportFlags registers the report flags shared by publish and pages.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-history", false,
		"Do not record runs in the history database")
}

// setupLogger creates the secure structured logger and installs it as default.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := plog.New(os.Stderr, cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// app holds the services shared by every run of one command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	deps    pipeline.Dependencies
	closers []io.Closer
}

// newApp wires the remote services described by cfg. No request is made
// except the optional proxy probe.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if cfg.ProxyAddress != "" {
		if err := transport.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return nil, fmt.Errorf("proxy check failed: %w", err)
		}
	}

	httpClient, err := transport.NewHTTPClient(transport.Options{
		Timeout:      longestTimeout(cfg),
		VerifyTLS:    cfg.VerifySSL,
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	completer, err := a.newCompleter(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	generator := content.NewGenerator(completer,
		content.WithLogger(logger),
		content.WithTimeouts(cfg.TopicTimeout, cfg.BodyTimeout),
	)

	// A nil *PexelsClient stored in the interface would not compare equal
	// to nil, so the searcher is only assigned when a key is present.
	var searcher media.Searcher
	if cfg.PexelsKey != "" {
		searcher = media.NewPexelsClient(httpClient, cfg.PexelsBaseURL, cfg.PexelsKey)
	} else {
		logger.Warn("PEXELS_KEY not set, featured images use the placeholder URL")
	}
	resolver := media.NewResolver(searcher, httpClient,
		media.WithLogger(logger),
		media.WithTimeouts(cfg.SearchTimeout, cfg.DownloadTimeout, cfg.UploadTimeout),
	)

	client := cms.NewClient(httpClient, cfg.SiteURL, cfg.User, cfg.AppPassword,
		cms.WithClientTimeout(cfg.Timeout),
		cms.WithClientLogger(logger),
	)

	a.deps = pipeline.Dependencies{
		Generator: generator,
		Resolver:  resolver,
		Posts: cms.NewPublisher(client,
			cms.WithCollection(model.CollectionPosts),
			cms.WithStatus(cfg.PostStatus),
			cms.WithLogger(logger)),
		Pages: cms.NewPublisher(client,
			cms.WithCollection(model.CollectionPages),
			cms.WithStatus(cfg.PostStatus),
			cms.WithLogger(logger)),
	}
	if cfg.UploadImages {
		a.deps.Uploader = client
	}
	return a, nil
}

// longestTimeout returns the largest per-call limit. Each call carries its
// own deadline, so the client-wide timeout only has to stay out of the way.
func longestTimeout(cfg *config.Config) time.Duration {
	return max(cfg.Timeout, cfg.TopicTimeout, cfg.BodyTimeout,
		cfg.SearchTimeout, cfg.DownloadTimeout, cfg.UploadTimeout)
}

// newCompleter returns the completion backend for the configured provider.
func (a *app) newCompleter(ctx context.Context, httpClient *http.Client) (content.Completer, error) {
	if a.cfg.Provider == config.ProviderGemini {
		gemini, err := content.NewGeminiClient(ctx, httpClient, a.cfg.GeminiAPIKey, a.cfg.CompletionModel())
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		a.closers = append(a.closers, gemini)
		return gemini, nil
	}
	return content.NewOpenAIClient(httpClient, a.cfg.LLMBaseURL, a.cfg.CompletionModel(), a.cfg.LLMAPIKey), nil
}

// newPipeline creates a pipeline that prints stage lines to status.
func (a *app) newPipeline(status io.Writer) *pipeline.Pipeline {
	return pipeline.DefaultPipeline(a.deps,
		[]pipeline.Option{
			pipeline.WithLogger(a.logger),
			pipeline.WithStatusWriter(status),
		},
		pipeline.WithPipelineNiche(a.cfg.Niche),
		pipeline.WithPipelineTitleTemplate(a.cfg.TitleTemplate),
		pipeline.WithPipelineTagline(a.cfg.Tagline),
		pipeline.WithPipelineStyles(a.cfg.ArticleStyle, a.cfg.PageStyle),
	)
}

// Close releases provider clients.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// recordRuns saves runs to the history database and marks the summary
// items whose markup did not change since the last publish. History
// problems are logged and never fail the command.
func recordRuns(ctx context.Context, cfg *config.Config, runs []*model.Run, summary *report.Summary, logger *slog.Logger) {
	if !cfg.SaveToDB {
		return
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	// Saving must outlive a cancelled run context so interrupted runs are recorded.
	ctx = context.WithoutCancel(ctx)
	for _, run := range runs {
		if run == nil {
			continue
		}
		if unchanged, err := db.Unchanged(ctx, run); err != nil {
			logger.Warn("failed to compare with history", "run", run.ID, "error", err)
		} else if unchanged {
			summary.MarkUnchanged(run.ID)
		}
		if err := db.SaveRun(ctx, run); err != nil {
			logger.Warn("failed to save run", "run", run.ID, "error", err)
		}
	}
	logger.Debug("runs saved to history", "path", db.Path(), "runs", len(runs))
}

// outputReport writes the summary in the requested format to the report
// file, or to stdout when none is set.
func outputReport(cfg *config.Config, summary *report.Summary, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports carry resource URLs of possibly unpublished drafts.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	if _, err := w.WriteSummary(summary); err != nil {
		return err
	}

	if cfg.ReportFile != "" {
		fmt.Fprintf(stdout, "Report written to %s\n", cfg.ReportFile)
	}
	return nil
}

// finish records and reports runs and returns ErrRunsFailed when any failed.
func finish(ctx context.Context, cmd *cobra.Command, cfg *config.Config, runs []*model.Run, logger *slog.Logger) error {
	summary := report.NewSummary(runs)
	recordRuns(ctx, cfg, runs, summary, logger)

	if err := outputReport(cfg, summary, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if !summary.Succeeded() {
		return fmt.Errorf("%w: %d of %d run(s) failed", ErrRunsFailed, summary.Failed, summary.Total)
	}
	return nil
}
