package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/pressgen/internal/transport"
)

const (
	// apiPrefix is the WordPress REST API root relative to the site URL.
	apiPrefix = "/wp-json/wp/v2/"

	// DefaultTimeout bounds each CMS call that has no caller deadline.
	DefaultTimeout = 60 * time.Second

	// maxResponseBody bounds how much of a CMS response is read.
	maxResponseBody = 4 << 20
)

// Resource is the subset of a WordPress resource pressgen relies on.
type Resource struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
	Slug string `json:"slug,omitempty"`
}

// Payload is the body of a create or update request.
type Payload struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Status        string  `json:"status"`
	Slug          string  `json:"slug"`
	Tags          []int64 `json:"tags,omitempty"`
	FeaturedMedia int64   `json:"featured_media,omitempty"`
}

// Client is a minimal WordPress REST API client.
// It is safe for concurrent use.
type Client struct {
	siteURL  string
	user     string
	password string
	client   *http.Client
	timeout  time.Duration
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientTimeout sets the per-call timeout for lookup, create, update and tag calls.
func WithClientTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for siteURL authenticating as user with an
// application password.
func NewClient(httpClient *http.Client, siteURL, user, appPassword string, opts ...ClientOption) *Client {
	c := &Client{
		siteURL:  strings.TrimRight(siteURL, "/"),
		user:     user,
		password: appPassword,
		client:   httpClient,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// SiteURL returns the normalized site URL.
func (c *Client) SiteURL() string {
	return c.siteURL
}

// endpoint builds an API URL from path segments.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.siteURL + apiPrefix + strings.Join(escaped, "/")
}

// response is a completed 2xx exchange.
type response struct {
	status int
	body   []byte
}

// do sends one request. Transport failures and non-2xx statuses become a
// *PublishError for stage. A non-positive timeout relies on the caller's deadline.
func (c *Client) do(
	ctx context.Context,
	stage Stage,
	method, target string,
	body io.Reader,
	header http.Header,
	timeout time.Duration,
) (response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, &PublishError{Stage: stage, Err: err}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.user, c.password)

	c.logger.Debug("cms request", "stage", stage, "method", method, "url", target)

	resp, err := c.client.Do(req)
	if err != nil {
		return response{}, &PublishError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	data, _, err := transport.ReadBody(resp.Body, maxResponseBody)
	if err != nil {
		return response{}, &PublishError{Stage: stage, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &PublishError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			Snippet:    describeBody(data),
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}
	return response{status: resp.StatusCode, body: data}, nil
}

// malformed builds the error for a 2xx response whose body does not match
// the expected schema.
func malformed(stage Stage, resp response, format string, args ...any) error {
	return &PublishError{
		Stage:      stage,
		StatusCode: resp.status,
		Snippet:    describeBody(resp.body),
		Err:        transport.Malformed("cms", format, args...),
	}
}

// decodeResource strictly decodes a create or update response.
func decodeResource(stage Stage, resp response) (Resource, error) {
	var res Resource
	if err := json.Unmarshal(resp.body, &res); err != nil {
		return Resource{}, malformed(stage, resp, "response is not a JSON object: %v", err)
	}
	var missing []string
	if res.ID <= 0 {
		missing = append(missing, "id")
	}
	if res.Link == "" {
		missing = append(missing, "link")
	}
	if len(missing) > 0 {
		return Resource{}, malformed(stage, resp, "response is missing %s", strings.Join(missing, " and "))
	}
	return res, nil
}

// FindBySlug returns the resource in collection whose slug matches.
// It returns nil without error when there is no match. When the CMS
// returns several matches the first one is canonical.
func (c *Client) FindBySlug(ctx context.Context, collection, slug string) (*Resource, error) {
	// List endpoints only return published resources unless asked otherwise;
	// drafts written by an earlier run must still match.
	query := url.Values{
		"slug":    {slug},
		"status":  {"any"},
		"context": {"edit"},
	}
	target := c.endpoint(collection) + "?" + query.Encode()
	resp, err := c.do(ctx, StageLookup, http.MethodGet, target, nil, nil, c.timeout)
	if err != nil {
		return nil, err
	}

	var matches []Resource
	if err := json.Unmarshal(resp.body, &matches); err != nil {
		return nil, malformed(StageLookup, resp, "lookup response is not a JSON array: %v", err)
	}
	if len(matches) == 0 {
		return nil, nil //nolint:nilnil // no match is not an error
	}
	if len(matches) > 1 {
		c.logger.Warn("several resources share a slug, using the first",
			"collection", collection,
			"slug", slug,
			"count", len(matches),
		)
	}
	first := matches[0]
	if first.ID <= 0 {
		return nil, malformed(StageLookup, resp, "lookup match has no id")
	}
	return &first, nil
}

// Create creates a resource in collection.
func (c *Client) Create(ctx context.Context, collection string, payload Payload) (Resource, error) {
	return c.write(ctx, StageCreate, c.endpoint(collection), payload)
}

// Update updates resource id in collection.
func (c *Client) Update(ctx context.Context, collection string, id int64, payload Payload) (Resource, error) {
	return c.write(ctx, StageUpdate, c.endpoint(collection, strconv.FormatInt(id, 10)), payload)
}

func (c *Client) write(ctx context.Context, stage Stage, target string, payload Payload) (Resource, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Resource{}, &PublishError{Stage: stage, Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}
	header := http.Header{"Content-Type": {"application/json"}}
	resp, err := c.do(ctx, stage, http.MethodPost, target, bytes.NewReader(data), header, c.timeout)
	if err != nil {
		return Resource{}, err
	}
	return decodeResource(stage, resp)
}

// UploadMedia stores data in the media library and returns the media id.
// The request has no timeout of its own; callers bound it with ctx.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (int64, error) {
	header := http.Header{
		"Content-Type":        {contentType},
		"Content-Disposition": {mime.FormatMediaType("attachment", map[string]string{"filename": filename})},
	}
	resp, err := c.do(ctx, StageUpload, http.MethodPost, c.endpoint("media"), bytes.NewReader(data), header, 0)
	if err != nil {
		return 0, err
	}

	var media struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &media); err != nil {
		return 0, malformed(StageUpload, resp, "upload response is not a JSON object: %v", err)
	}
	if media.ID <= 0 {
		return 0, malformed(StageUpload, resp, "upload response is missing id")
	}
	return media.ID, nil
}
