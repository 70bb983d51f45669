package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/pressgen/internal/config"
	"github.com/nao1215/pressgen/internal/model"
	"github.com/nao1215/pressgen/internal/report"
)

func publishedRun(slug string) *model.Run {
	run := model.NewRun(model.Job{Slug: slug})
	run.Topic = model.NewTopic("Title", false)
	run.Fingerprint = "abc"
	run.Result = &model.PublishResult{Outcome: model.OutcomeCreated, RemoteID: 1, URL: "https://blog.example.com/" + slug + "/"}
	run.Finish()
	return run
}

// TestOutputReport tests report destinations and formats.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	summary := report.NewSummary([]*model.Run{publishedRun("hello")})

	t.Run("text to stdout", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputReport(config.NewConfig(), summary, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "PUBLISH SUMMARY") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("markdown to file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.MarkdownReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "run.md")

		var buf bytes.Buffer
		if err := outputReport(cfg, summary, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "# Publish Report") {
			t.Errorf("unexpected file content:\n%s", data)
		}
		info, err := os.Stat(cfg.ReportFile)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
		if !strings.Contains(buf.String(), "Report written to") {
			t.Errorf("unexpected stdout:\n%s", buf.String())
		}
	})

	t.Run("json includes version", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONReport = true
		var buf bytes.Buffer
		if err := outputReport(cfg, summary, &buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"version"`) || !strings.Contains(buf.String(), `"hello"`) {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})
}

// TestRecordRuns tests history saving and unchanged detection.
func TestRecordRuns(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.DBDir = t.TempDir()
	ctx := context.Background()

	first := publishedRun("hello")
	recordRuns(ctx, cfg, []*model.Run{first}, report.NewSummary([]*model.Run{first}), quietLogger())

	second := publishedRun("hello")
	second.StartedAt = first.StartedAt.Add(time.Second)
	summary := report.NewSummary([]*model.Run{second})
	recordRuns(ctx, cfg, []*model.Run{second}, summary, quietLogger())

	if !summary.Items[0].Unchanged {
		t.Error("expected second run to be marked unchanged")
	}

	t.Run("disabled history", func(t *testing.T) {
		t.Parallel()

		off := config.NewConfig()
		off.DBDir = filepath.Join(t.TempDir(), "never")
		off.SaveToDB = false
		run := publishedRun("x")
		recordRuns(ctx, off, []*model.Run{run}, report.NewSummary([]*model.Run{run}), quietLogger())
		if _, err := os.Stat(off.DBDir); !os.IsNotExist(err) {
			t.Error("expected no database to be created")
		}
	})
}

// TestLongestTimeout tests the client-wide timeout selection.
func TestLongestTimeout(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.BodyTimeout = 10 * time.Minute
	if got := longestTimeout(cfg); got != 10*time.Minute {
		t.Errorf("longestTimeout = %v, want 10m", got)
	}
}

// TestLoadConfig tests configuration loading through the root flags.
func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("explicit file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "pressgen.yaml")
		if err := os.WriteFile(path, []byte("niche: home automation\nbatchSize: 3\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewRootCmd()
		if err := cmd.ParseFlags([]string{"-c", path, "--env-file", "missing.env", "-v"}); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Niche != "home automation" || cfg.BatchSize != 3 {
			t.Errorf("cfg = %q %d", cfg.Niche, cfg.BatchSize)
		}
		if !cfg.Verbose {
			t.Error("expected verbose")
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing, "--env-file", "missing.env"}); err != nil {
			t.Fatal(err)
		}
		if _, err := loadConfig(cmd); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
