package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/pressgen/internal/model"
	"github.com/nao1215/pressgen/internal/transport"
)

// Defaults for the resolver.
const (
	// FallbackURLTemplate is the placeholder image service used when search fails.
	// The query is appended URL-encoded.
	FallbackURLTemplate = "https://source.unsplash.com/1200x675/?"

	// UploadBaseName is the fixed file name stem used for media uploads.
	UploadBaseName = "featured-image"

	// DefaultSearchTimeout bounds a stock photo search.
	DefaultSearchTimeout = 20 * time.Second

	// DefaultDownloadTimeout bounds an image download.
	DefaultDownloadTimeout = 30 * time.Second

	// DefaultUploadTimeout bounds a media upload.
	DefaultUploadTimeout = 120 * time.Second

	// DefaultMaxImageBytes is the largest image that will be downloaded.
	DefaultMaxImageBytes = 10 << 20

	// defaultQuery is used for blank queries.
	defaultQuery = "technology"
)

// Download errors.
var (
	// ErrNotImage is returned when a download is not an image.
	ErrNotImage = errors.New("downloaded content is not an image")

	// ErrImageTooLarge is returned when a download exceeds the size limit.
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// Searcher finds a candidate image URL for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Uploader stores image bytes in the CMS media library and returns the media id.
type Uploader interface {
	UploadMedia(ctx context.Context, filename, contentType string, data []byte) (int64, error)
}

// Resolution describes how an image reference was obtained.
type Resolution struct {
	// Image is the resolved reference. It is always valid.
	Image model.ImageReference

	// Candidate is the URL that was used or attempted.
	Candidate string

	// FromSearch is true when Candidate came from the stock photo search.
	FromSearch bool

	// Uploaded is true when the image was stored in the CMS.
	Uploaded bool

	// Findings lists privacy-relevant metadata found in the downloaded bytes.
	Findings []MetadataFinding

	// Problems collects the recovered errors, in order.
	Problems []error
}

// Degraded reports whether any step had to fall back.
func (r Resolution) Degraded() bool {
	return len(r.Problems) > 0
}

// Resolver turns a query into an image reference.
type Resolver struct {
	searcher        Searcher
	client          *http.Client
	logger          *slog.Logger
	searchTimeout   time.Duration
	downloadTimeout time.Duration
	uploadTimeout   time.Duration
	maxImageBytes   int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithTimeouts overrides the per-call timeouts. Non-positive values keep the defaults.
func WithTimeouts(search, download, upload time.Duration) Option {
	return func(r *Resolver) {
		if search > 0 {
			r.searchTimeout = search
		}
		if download > 0 {
			r.downloadTimeout = download
		}
		if upload > 0 {
			r.uploadTimeout = upload
		}
	}
}

// WithMaxImageBytes sets the download size limit.
func WithMaxImageBytes(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxImageBytes = n
		}
	}
}

// NewResolver creates a Resolver. searcher may be nil, in which case every
// resolution uses the fallback URL. client is used to download candidates.
func NewResolver(searcher Searcher, client *http.Client, opts ...Option) *Resolver {
	r := &Resolver{
		searcher:        searcher,
		client:          client,
		searchTimeout:   DefaultSearchTimeout,
		downloadTimeout: DefaultDownloadTimeout,
		uploadTimeout:   DefaultUploadTimeout,
		maxImageBytes:   DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	return r
}

// FallbackURL returns the placeholder image URL for query.
// The same query always yields the same URL.
func FallbackURL(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		query = defaultQuery
	}
	return FallbackURLTemplate + url.QueryEscape(query)
}

// Resolve returns an image reference for query. target may be nil, in which
// case the candidate URL is referenced directly.
func (r *Resolver) Resolve(ctx context.Context, query string, target Uploader) model.ImageReference {
	return r.ResolveDetailed(ctx, query, target).Image
}

// ResolveDetailed is Resolve with a record of how the result was reached.
func (r *Resolver) ResolveDetailed(ctx context.Context, query string, target Uploader) Resolution {
	var res Resolution

	candidate, err := r.search(ctx, query)
	switch {
	case err != nil:
		r.logger.Warn("image search failed, using placeholder", "query", query, "error", err)
		res.Problems = append(res.Problems, err)
		res.Candidate = FallbackURL(query)
	default:
		res.Candidate = candidate
		res.FromSearch = true
	}

	res.Image = model.NewExternalImage(res.Candidate)
	if target == nil {
		return res
	}

	img, err := r.download(ctx, res.Candidate)
	if err != nil {
		r.logger.Warn("image download failed, linking external image", "url", res.Candidate, "error", err)
		res.Problems = append(res.Problems, err)
		return res
	}

	res.Findings = InspectMetadata(img.data)
	for _, f := range res.Findings {
		r.logger.Warn("image carries identifying metadata",
			"url", res.Candidate,
			"category", f.Category,
			"tag", f.Tag,
		)
	}

	id, err := r.upload(ctx, target, img)
	if err != nil {
		r.logger.Warn("media upload failed, linking external image", "url", res.Candidate, "error", err)
		res.Problems = append(res.Problems, err)
		return res
	}

	res.Image = model.NewMediaImage(id)
	res.Uploaded = true
	return res
}

func (r *Resolver) search(ctx context.Context, query string) (string, error) {
	if r.searcher == nil {
		return "", errors.New("no image search provider configured")
	}
	ctx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	return r.searcher.Search(ctx, query)
}

type downloadedImage struct {
	data        []byte
	contentType string
}

func (r *Resolver) download(ctx context.Context, imageURL string) (downloadedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return downloadedImage{}, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return downloadedImage{}, &transport.ProviderError{Provider: "image host", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return downloadedImage{}, &transport.ProviderError{Provider: "image host", StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > r.maxImageBytes {
		return downloadedImage{}, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, resp.ContentLength)
	}

	data, truncated, err := transport.ReadBody(resp.Body, r.maxImageBytes)
	if err != nil {
		return downloadedImage{}, &transport.ProviderError{Provider: "image host", StatusCode: resp.StatusCode, Err: err}
	}
	if truncated {
		return downloadedImage{}, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, r.maxImageBytes)
	}

	contentType := imageContentType(resp.Header.Get("Content-Type"), data)
	if contentType == "" {
		return downloadedImage{}, ErrNotImage
	}
	return downloadedImage{data: data, contentType: contentType}, nil
}

func (r *Resolver) upload(ctx context.Context, target Uploader, img downloadedImage) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.uploadTimeout)
	defer cancel()

	id, err := target.UploadMedia(ctx, UploadFilename(img.contentType), img.contentType, img.data)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, transport.Malformed("media upload", "invalid media id %d", id)
	}
	return id, nil
}

// imageContentType returns the image media type of data, preferring the
// sniffed type over the declared header. It returns "" for non-images.
func imageContentType(declared string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err == nil && strings.HasPrefix(mediaType, "image/") && len(data) > 0 {
		return mediaType
	}
	return ""
}

// UploadFilename returns the fixed upload file name for a content type,
// e.g. "featured-image.jpg" for image/jpeg.
func UploadFilename(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return UploadBaseName + ".jpg"
	case "image/png":
		return UploadBaseName + ".png"
	case "image/gif":
		return UploadBaseName + ".gif"
	case "image/webp":
		return UploadBaseName + ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return UploadBaseName + exts[0]
	}
	return UploadBaseName
}
