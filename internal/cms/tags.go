package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/nao1215/pressgen/internal/model"
)

type term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ResolveTags maps tag names to term ids, creating missing terms.
// The returned ids follow the order of names. The first failure aborts
// resolution.
func (c *Client) ResolveTags(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range model.NormalizeTags(names) {
		id, err := c.resolveTag(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Client) resolveTag(ctx context.Context, name string) (int64, error) {
	slug := model.Slugify(name)
	if slug != "" {
		target := c.endpoint("tags") + "?" + url.Values{"slug": {slug}}.Encode()
		resp, err := c.do(ctx, StageTags, http.MethodGet, target, nil, nil, c.timeout)
		if err != nil {
			return 0, err
		}
		var existing []term
		if err := json.Unmarshal(resp.body, &existing); err != nil {
			return 0, malformed(StageTags, resp, "tag lookup response is not a JSON array: %v", err)
		}
		if len(existing) > 0 && existing[0].ID > 0 {
			return existing[0].ID, nil
		}
	}

	data, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return 0, &PublishError{Stage: StageTags, Err: err}
	}
	header := http.Header{"Content-Type": {"application/json"}}
	resp, err := c.do(ctx, StageTags, http.MethodPost, c.endpoint("tags"), bytes.NewReader(data), header, c.timeout)
	if err != nil {
		return 0, err
	}
	var created term
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return 0, malformed(StageTags, resp, "tag create response is not a JSON object: %v", err)
	}
	if created.ID <= 0 {
		return 0, malformed(StageTags, resp, "tag create response is missing id")
	}
	return created.ID, nil
}
