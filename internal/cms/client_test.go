package cms

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/nao1215/pressgen/internal/cms/cmstest"
	"github.com/nao1215/pressgen/internal/transport"
)

// TestFindBySlug tests slug lookup.
func TestFindBySlug(t *testing.T) {
	t.Parallel()

	srv := cmstest.NewServer("u", "p")
	defer srv.Close()
	id := srv.Put("pages", cmstest.Resource{Slug: "about", Title: "About Us"})
	client := NewClient(srv.Client(), srv.URL, "u", "p", WithClientLogger(quietLogger()))

	found, err := client.FindBySlug(context.Background(), "pages", "about")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.ID != id || found.Link == "" {
		t.Errorf("unexpected match %+v", found)
	}

	missing, err := client.FindBySlug(context.Background(), "pages", "nope")
	if err != nil || missing != nil {
		t.Errorf("expected no match, got %+v, %v", missing, err)
	}
}

// TestFindBySlugDraft tests that lookups see resources that are not published.
func TestFindBySlugDraft(t *testing.T) {
	t.Parallel()

	srv := cmstest.NewServer("u", "p")
	defer srv.Close()
	id := srv.Put("posts", cmstest.Resource{Slug: "draft-post", Status: "draft"})

	// A plain list request hides drafts, as WordPress does.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet,
		srv.URL+"/wp-json/wp/v2/posts?slug=draft-post", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth("u", "p")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected the draft to be hidden without a status filter, got %s", body)
	}

	client := NewClient(srv.Client(), srv.URL, "u", "p", WithClientLogger(quietLogger()))
	found, err := client.FindBySlug(context.Background(), "posts", "draft-post")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.ID != id {
		t.Errorf("expected draft #%d, got %+v", id, found)
	}
}

// TestFindBySlugFirstMatch tests that the first of several matches is canonical.
func TestFindBySlugFirstMatch(t *testing.T) {
	t.Parallel()

	srv := cmstest.NewServer("u", "p")
	defer srv.Close()
	srv.Override(cmstest.RouteLookup, http.StatusOK, "application/json",
		`[{"id":7,"link":"https://x/a/"},{"id":8,"link":"https://x/a-2/"}]`)
	client := NewClient(srv.Client(), srv.URL, "u", "p", WithClientLogger(quietLogger()))

	found, err := client.FindBySlug(context.Background(), "posts", "a")
	if err != nil || found == nil || found.ID != 7 {
		t.Errorf("expected first match, got %+v, %v", found, err)
	}
}

// TestUploadMedia tests the media upload request.
func TestUploadMedia(t *testing.T) {
	t.Parallel()

	t.Run("raw upload with headers", func(t *testing.T) {
		t.Parallel()

		srv := cmstest.NewServer("u", "p")
		defer srv.Close()
		client := NewClient(srv.Client(), srv.URL, "u", "p", WithClientLogger(quietLogger()))

		id, err := client.UploadMedia(context.Background(), "featured-image.jpg", "image/jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		media := srv.Media()
		if len(media) != 1 || media[0].ID != id {
			t.Fatalf("unexpected media %+v", media)
		}
		if media[0].ContentType != "image/jpeg" {
			t.Errorf("Content-Type = %q", media[0].ContentType)
		}
		if media[0].ContentDisposition != "attachment; filename=featured-image.jpg" {
			t.Errorf("Content-Disposition = %q", media[0].ContentDisposition)
		}
	})

	t.Run("response without id", func(t *testing.T) {
		t.Parallel()

		srv := cmstest.NewServer("u", "p")
		defer srv.Close()
		srv.Override(cmstest.RouteUpload, http.StatusCreated, "application/json", `{"source_url":"x"}`)
		client := NewClient(srv.Client(), srv.URL, "u", "p", WithClientLogger(quietLogger()))

		_, err := client.UploadMedia(context.Background(), "f.jpg", "image/jpeg", []byte{1})
		var pe *PublishError
		if !errors.As(err, &pe) || pe.Stage != StageUpload || !errors.Is(err, transport.ErrMalformedResponse) {
			t.Errorf("unexpected error %v", err)
		}
	})
}

// TestPublishErrorMessage tests the error string.
func TestPublishErrorMessage(t *testing.T) {
	t.Parallel()

	err := &PublishError{Stage: StageUpdate, StatusCode: 502, Snippet: "bad gateway", Err: errors.New("Bad Gateway")}
	msg := err.Error()
	for _, part := range []string{"update", "502", "bad gateway"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q lacks %q", msg, part)
		}
	}
}

// TestDescribeBody tests response diagnosis.
func TestDescribeBody(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{"plain text", "  upstream\n timeout ", "upstream timeout"},
		{"json", `{"code":"rest_forbidden"}`, `{"code":"rest_forbidden"}`},
		{"title and heading", "<html><head><title>403 Forbidden</title></head><body><h1>Access denied</h1></body></html>", "HTML page: 403 Forbidden / Access denied"},
		{"title only", "<!doctype html><html><title>Just a moment...</title></html>", "HTML page: Just a moment..."},
		{"heading only", "<html><body><h1>Maintenance</h1></body></html>", "HTML page: Maintenance"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := describeBody([]byte(tc.body)); got != tc.expected {
				t.Errorf("describeBody() = %q, expected %q", got, tc.expected)
			}
		})
	}
}
