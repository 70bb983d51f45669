package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/pressgen/internal/model"
)

type stubSearcher struct {
	url string
	err error
}

func (s stubSearcher) Search(context.Context, string) (string, error) {
	return s.url, s.err
}

type stubUploader struct {
	mu          sync.Mutex
	id          int64
	err         error
	filename    string
	contentType string
	size        int
}

func (u *stubUploader) UploadMedia(_ context.Context, filename, contentType string, data []byte) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.filename, u.contentType, u.size = filename, contentType, len(data)
	return u.id, u.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func imageServer(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestFallbackURL tests the deterministic placeholder.
func TestFallbackURL(t *testing.T) {
	t.Parallel()

	a := FallbackURL("5 AI Tools")
	if a != "https://source.unsplash.com/1200x675/?5+AI+Tools" {
		t.Errorf("got %q", a)
	}
	if a != FallbackURL("5 AI Tools") {
		t.Error("fallback URL is not deterministic")
	}
	if FallbackURL("") == FallbackURLTemplate {
		t.Error("blank query must still produce a usable URL")
	}
	if got := FallbackURL("a&b=c"); !strings.HasSuffix(got, "a%26b%3Dc") {
		t.Errorf("query not escaped: %q", got)
	}
}

// TestResolve tests the resolution steps and their fallbacks.
func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("search result without upload target", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(stubSearcher{url: "https://img/photo.jpg"}, nil, WithLogger(quietLogger()))
		ref := r.Resolve(context.Background(), "5 AI Tools", nil)
		if ref != model.NewExternalImage("https://img/photo.jpg") {
			t.Errorf("unexpected reference %+v", ref)
		}
	})

	searchFailures := map[string]Searcher{
		"search error":  stubSearcher{err: errors.New("boom")},
		"no results":    stubSearcher{err: ErrNoResults},
		"no search key": nil,
	}
	for name, searcher := range searchFailures {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := NewResolver(searcher, nil, WithLogger(quietLogger()))
			res := r.ResolveDetailed(context.Background(), "5 AI Tools", nil)
			if res.Image != model.NewExternalImage(FallbackURL("5 AI Tools")) {
				t.Errorf("unexpected reference %+v", res.Image)
			}
			if res.FromSearch || !res.Degraded() {
				t.Errorf("unexpected resolution %+v", res)
			}
			if err := res.Image.Validate(); err != nil {
				t.Errorf("invalid reference: %v", err)
			}
		})
	}

	t.Run("uploads downloaded image", func(t *testing.T) {
		t.Parallel()

		srv := imageServer(t, "image/png", pngBytes(t))
		uploader := &stubUploader{id: 77}
		r := NewResolver(stubSearcher{url: srv.URL + "/photo.png"}, srv.Client(), WithLogger(quietLogger()))

		res := r.ResolveDetailed(context.Background(), "5 AI Tools", uploader)
		if res.Image != model.NewMediaImage(77) || !res.Uploaded {
			t.Fatalf("unexpected resolution %+v", res)
		}
		if uploader.filename != "featured-image.png" || uploader.contentType != "image/png" || uploader.size == 0 {
			t.Errorf("unexpected upload %s %s %d", uploader.filename, uploader.contentType, uploader.size)
		}
		if len(res.Findings) != 0 {
			t.Errorf("unexpected metadata findings %+v", res.Findings)
		}
	})

	t.Run("upload failure links candidate", func(t *testing.T) {
		t.Parallel()

		srv := imageServer(t, "image/png", pngBytes(t))
		candidate := srv.URL + "/photo.png"
		r := NewResolver(stubSearcher{url: candidate}, srv.Client(), WithLogger(quietLogger()))

		ref := r.Resolve(context.Background(), "q", &stubUploader{err: errors.New("403 forbidden")})
		if ref != model.NewExternalImage(candidate) {
			t.Errorf("unexpected reference %+v", ref)
		}
	})

	t.Run("non-image download links candidate", func(t *testing.T) {
		t.Parallel()

		srv := imageServer(t, "text/html", []byte("<html>challenge</html>"))
		candidate := srv.URL + "/photo.jpg"
		uploader := &stubUploader{id: 5}
		r := NewResolver(stubSearcher{url: candidate}, srv.Client(), WithLogger(quietLogger()))

		res := r.ResolveDetailed(context.Background(), "q", uploader)
		if res.Image != model.NewExternalImage(candidate) || res.Uploaded {
			t.Errorf("unexpected resolution %+v", res)
		}
		if len(res.Problems) != 1 || !errors.Is(res.Problems[0], ErrNotImage) {
			t.Errorf("unexpected problems %v", res.Problems)
		}
		if uploader.size != 0 {
			t.Error("uploader must not be called")
		}
	})

	t.Run("oversized download links candidate", func(t *testing.T) {
		t.Parallel()

		srv := imageServer(t, "image/png", pngBytes(t))
		candidate := srv.URL + "/big.png"
		r := NewResolver(stubSearcher{url: candidate}, srv.Client(), WithLogger(quietLogger()), WithMaxImageBytes(8))

		res := r.ResolveDetailed(context.Background(), "q", &stubUploader{id: 5})
		if res.Uploaded || len(res.Problems) != 1 || !errors.Is(res.Problems[0], ErrImageTooLarge) {
			t.Errorf("unexpected resolution %+v", res)
		}
	})

	t.Run("non-positive media id is rejected", func(t *testing.T) {
		t.Parallel()

		srv := imageServer(t, "image/png", pngBytes(t))
		r := NewResolver(stubSearcher{url: srv.URL}, srv.Client(), WithLogger(quietLogger()))
		ref := r.Resolve(context.Background(), "q", &stubUploader{id: 0})
		if !ref.IsExternal() {
			t.Errorf("expected external reference, got %+v", ref)
		}
	})
}

// TestUploadFilename tests the fixed file name.
func TestUploadFilename(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"image/jpeg": "featured-image.jpg",
		"image/png":  "featured-image.png",
		"image/webp": "featured-image.webp",
	}
	for contentType, expected := range testCases {
		if got := UploadFilename(contentType); got != expected {
			t.Errorf("UploadFilename(%q) = %q, expected %q", contentType, got, expected)
		}
	}
	if got := UploadFilename("application/x-unknown-thing"); !strings.HasPrefix(got, UploadBaseName) {
		t.Errorf("got %q", got)
	}
}

// TestInspectMetadata tests EXIF inspection.
func TestInspectMetadata(t *testing.T) {
	t.Parallel()

	if findings := InspectMetadata(pngBytes(t)); findings != nil {
		t.Errorf("expected no findings for an image without EXIF, got %+v", findings)
	}
	if findings := InspectMetadata(nil); findings != nil {
		t.Errorf("expected no findings for empty data, got %+v", findings)
	}

	testCases := map[string]string{
		"GPSLatitude":      "gps",
		"BodySerialNumber": "serial",
		"Artist":           "author",
		"Make":             "device",
		"ExposureTime":     "",
	}
	for tag, expected := range testCases {
		if got := classifyTag(tag); got != expected {
			t.Errorf("classifyTag(%q) = %q, expected %q", tag, got, expected)
		}
	}
}
