package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/pressgen/internal/cms"
	"github.com/nao1215/pressgen/internal/cms/cmstest"
	"github.com/nao1215/pressgen/internal/content"
	"github.com/nao1215/pressgen/internal/media"
	"github.com/nao1215/pressgen/internal/model"
)

// llmServer answers topic requests with topic and body requests with the
// current value of body.
func llmServer(t *testing.T, topic string, body *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens int `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		text := topic
		if req.MaxTokens != 60 {
			text = body.Load().(string)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": text}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stockServer serves both the photo search API and the photo itself.
func stockServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"photos":[{"id":1,"src":{"large2x":"%s/photo.png"}}]}`, srv.URL)
	})
	mux.HandleFunc("GET /photo.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type endToEnd struct {
	site     *cmstest.Server
	body     *atomic.Value
	pipeline func() *Pipeline
}

func newEndToEnd(t *testing.T) *endToEnd {
	t.Helper()

	body := &atomic.Value{}
	body.Store("First paragraph about tools.\n\nSecond paragraph about time saved.")

	llm := llmServer(t, "5 AI Tools", body)
	stock := stockServer(t)
	site := cmstest.NewServer("editor", "app pass")
	t.Cleanup(site.Close)

	logger := quietLogger()
	httpClient := &http.Client{}

	generator := content.NewGenerator(
		content.NewOpenAIClient(httpClient, llm.URL, "test-model", "key"),
		content.WithLogger(logger),
	)
	resolver := media.NewResolver(
		media.NewPexelsClient(httpClient, stock.URL, "pexels-key"),
		httpClient,
		media.WithLogger(logger),
	)
	client := cms.NewClient(httpClient, site.URL, "editor", "app pass", cms.WithClientLogger(logger))
	deps := Dependencies{
		Generator: generator,
		Resolver:  resolver,
		Uploader:  client,
		Posts:     cms.NewPublisher(client, cms.WithLogger(logger)),
		Pages:     cms.NewPublisher(client, cms.WithCollection(model.CollectionPages), cms.WithLogger(logger)),
	}

	return &endToEnd{
		site: site,
		body: body,
		pipeline: func() *Pipeline {
			return DefaultPipeline(deps, []Option{WithLogger(logger)})
		},
	}
}

// TestEndToEndCreateThenUpdate runs a full post twice against fake services.
// The first run creates the post; the second finds it by slug and updates it
// in place.
func TestEndToEndCreateThenUpdate(t *testing.T) {
	t.Parallel()

	e := newEndToEnd(t)

	first := model.NewRun(model.Job{})
	if err := e.pipeline().Execute(context.Background(), first); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	if first.Slug() != "5-ai-tools" {
		t.Errorf("expected slug 5-ai-tools, got %q", first.Slug())
	}
	if first.Result.Outcome != model.OutcomeCreated {
		t.Fatalf("expected created, got %s (%s)", first.Result.Outcome, first.Result.ErrorDetail)
	}
	stored, ok := e.site.Get("posts", "5-ai-tools")
	if !ok {
		t.Fatal("expected post on the site")
	}
	if stored.FeaturedMedia == 0 {
		t.Error("expected featured_media to reference the uploaded image")
	}
	if len(e.site.Media()) != 1 {
		t.Errorf("expected 1 upload, got %d", len(e.site.Media()))
	}
	if first.UsedFallback() {
		t.Errorf("expected no fallback stages, got %+v", first.Stages)
	}

	e.body.Store("A rewritten paragraph.\n\nAnother new paragraph.")

	second := model.NewRun(model.Job{})
	if err := e.pipeline().Execute(context.Background(), second); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if second.Result.Outcome != model.OutcomeUpdated {
		t.Fatalf("expected updated, got %s", second.Result.Outcome)
	}
	if second.Result.RemoteID != first.Result.RemoteID {
		t.Errorf("expected same id %d, got %d", first.Result.RemoteID, second.Result.RemoteID)
	}
	if e.site.Count("posts") != 1 {
		t.Errorf("expected exactly 1 post, got %d", e.site.Count("posts"))
	}
	stored, _ = e.site.Get("posts", "5-ai-tools")
	if !strings.Contains(stored.Content, "rewritten") {
		t.Errorf("expected updated content, got %q", stored.Content)
	}
	if second.Fingerprint == first.Fingerprint {
		t.Error("expected fingerprint to change with the body")
	}
}

// TestEndToEndMalformedCreate checks that a 2xx response carrying an HTML
// page fails the run.
func TestEndToEndMalformedCreate(t *testing.T) {
	t.Parallel()

	e := newEndToEnd(t)
	e.site.Override(cmstest.RouteCreate, http.StatusCreated, "text/html",
		"<html><head><title>Maintenance</title></head><body><h1>Back soon</h1></body></html>")

	run := model.NewRun(model.Job{})
	err := e.pipeline().Execute(context.Background(), run)

	if err == nil {
		t.Fatal("expected run to fail")
	}
	if run.Result == nil || run.Result.Outcome != model.OutcomeFailed {
		t.Fatalf("expected failed result, got %+v", run.Result)
	}
	if !strings.Contains(run.Result.ErrorDetail, "Maintenance") {
		t.Errorf("expected diagnosis of the HTML page, got %q", run.Result.ErrorDetail)
	}
}

// TestEndToEndPageBatch upserts a page set concurrently.
func TestEndToEndPageBatch(t *testing.T) {
	t.Parallel()

	e := newEndToEnd(t)
	bp := NewBatchProcessor(e.pipeline, WithBatchLogger(quietLogger()))

	jobs := []model.Job{
		{Slug: "home", Title: "AI Productivity & Automation", Collection: model.CollectionPages, Layout: model.LayoutPage},
		{Slug: "about", Title: "About Us", Collection: model.CollectionPages, Layout: model.LayoutPage},
	}
	runs, err := bp.ProcessJobs(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, run := range runs {
		if !run.Succeeded() {
			t.Errorf("%s: expected success, got %q", run.Job.Slug, run.ErrorMessage)
		}
	}
	if e.site.Count("pages") != 2 {
		t.Errorf("expected 2 pages, got %d", e.site.Count("pages"))
	}
	if e.site.Count("posts") != 0 {
		t.Errorf("expected no posts, got %d", e.site.Count("posts"))
	}
}
