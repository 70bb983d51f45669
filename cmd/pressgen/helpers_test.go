package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/pressgen/internal/cms/cmstest"
	"github.com/nao1215/pressgen/internal/config"
)

// quietLogger discards all log output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLLM answers topic requests (max_tokens 60) with topic and every other
// request with body.
func fakeLLM(t *testing.T, topic, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens int `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		text := body
		if req.MaxTokens == 60 {
			text = topic
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": text}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// fakeStock serves the photo search API and the photo itself.
func fakeStock(t *testing.T) *httptest.Server {
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

// fakeServices is a complete set of remote services for one test.
type fakeServices struct {
	site *cmstest.Server
	cfg  *config.Config
}

// newFakeServices starts fake LLM, stock photo and WordPress servers and
// returns a configuration pointing at them with history in a temp dir.
func newFakeServices(t *testing.T) *fakeServices {
	t.Helper()

	llm := fakeLLM(t, "5 AI Tools", "First paragraph about tools.\n\nSecond paragraph about time saved.\n\nThird paragraph.")
	stock := fakeStock(t)
	site := cmstest.NewServer("editor", "app pass")
	t.Cleanup(site.Close)

	cfg := config.NewConfig()
	cfg.LLMAPIKey = "gsk_test"
	cfg.LLMBaseURL = llm.URL
	cfg.PexelsKey = "pexels-test"
	cfg.PexelsBaseURL = stock.URL
	cfg.SiteURL = site.URL
	cfg.User = "editor"
	cfg.AppPassword = "app pass"
	cfg.Tags = nil
	cfg.DBDir = t.TempDir()

	return &fakeServices{site: site, cfg: cfg}
}
