package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/pressgen/internal/model"
	"github.com/nao1215/pressgen/internal/transport"
)

const (
	// DefaultPexelsBaseURL is the Pexels API root.
	DefaultPexelsBaseURL = "https://api.pexels.com/v1"

	// MaxQueryLength is the Pexels query limit in runes.
	MaxQueryLength = 50

	// maxSearchBody bounds how much of a search response is read.
	maxSearchBody = 1 << 20

	providerPexels = "pexels"
)

// ErrNoResults is returned when a search finds no usable photo.
var ErrNoResults = errors.New("no matching photo")

type pexelsResponse struct {
	Photos []struct {
		ID  int64 `json:"id"`
		Src struct {
			Large2x string `json:"large2x"`
			Large   string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// PexelsClient searches the Pexels photo API.
type PexelsClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPexelsClient creates a client. An empty baseURL uses DefaultPexelsBaseURL.
func NewPexelsClient(client *http.Client, baseURL, apiKey string) *PexelsClient {
	if baseURL == "" {
		baseURL = DefaultPexelsBaseURL
	}
	return &PexelsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Search returns the URL of the best landscape photo for query.
// Exactly one result is requested. The largest rendition offered
// (large2x, then large) is returned.
func (c *PexelsClient) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", model.TruncateRunes(strings.TrimSpace(query), MaxQueryLength))
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &transport.ProviderError{Provider: providerPexels, Err: err}
	}
	defer resp.Body.Close()

	body, _, err := transport.ReadBody(resp.Body, maxSearchBody)
	if err != nil {
		return "", &transport.ProviderError{Provider: providerPexels, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &transport.ProviderError{
			Provider:   providerPexels,
			StatusCode: resp.StatusCode,
			Snippet:    transport.Snippet(body),
		}
	}

	var decoded pexelsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", transport.Malformed(providerPexels, "decode body: %v", err)
	}
	if len(decoded.Photos) == 0 {
		return "", ErrNoResults
	}
	src := decoded.Photos[0].Src
	switch {
	case src.Large2x != "":
		return src.Large2x, nil
	case src.Large != "":
		return src.Large, nil
	default:
		return "", transport.Malformed(providerPexels, "photo %d has no large rendition", decoded.Photos[0].ID)
	}
}

var _ Searcher = (*PexelsClient)(nil)
