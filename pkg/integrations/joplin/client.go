package joplin

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/slipmap/pkg/cache"
	slerrors "github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/integrations"
)

const (
	// DefaultURL is where the Joplin desktop app serves the Data API.
	DefaultURL = "http://localhost:41184"
	// DefaultTag marks notes that hold time slips.
	DefaultTag = "time-slip"
	// PingResponse is the body returned by GET /ping.
	PingResponse = "JoplinClipperServer"

	pageLimit = 100
	maxPages  = 1000
)

// Note is a Joplin note with its Markdown body.
type Note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type searchResponse struct {
	Items   []Note `json:"items"`
	HasMore bool   `json:"has_more"`
}

// Client accesses the Joplin Data API.
type Client struct {
	*integrations.Client
	baseURL string
	token   string
}

// NewClient creates a client for the API at baseURL (DefaultURL when
// empty). Search results are cached in c for ttl; c may be nil.
func NewClient(baseURL, token string, c cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		Client:  integrations.NewClient(c, "joplin", ttl, map[string]string{"Accept": "application/json"}),
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the Data API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.GetText(ctx, c.baseURL+"/ping")
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) != PingResponse {
		return slerrors.New(slerrors.ErrCodeNetwork, "unexpected ping response from %s: %q", c.baseURL, body)
	}
	return nil
}

// SearchTag returns all notes carrying tag, in API order. refresh bypasses
// the cached result.
func (c *Client) SearchTag(ctx context.Context, tag string, refresh bool) ([]Note, error) {
	if tag == "" {
		tag = DefaultTag
	}
	if c.token == "" {
		return nil, slerrors.New(slerrors.ErrCodeUnauthorized, "joplin API token is required")
	}

	var notes []Note
	err := c.Cached(ctx, "tag:"+tag, refresh, &notes, func() error {
		var err error
		notes, err = c.searchAll(ctx, "tag:"+tag)
		return err
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) searchAll(ctx context.Context, query string) ([]Note, error) {
	notes := []Note{}
	for page := 1; page <= maxPages; page++ {
		var resp searchResponse
		if err := c.Get(ctx, c.searchURL(query, page), &resp); err != nil {
			return nil, err
		}
		notes = append(notes, resp.Items...)
		if !resp.HasMore {
			return notes, nil
		}
	}
	return nil, slerrors.New(slerrors.ErrCodeNetwork, "joplin search %q did not finish after %d pages", query, maxPages)
}

func (c *Client) searchURL(query string, page int) string {
	q := url.Values{}
	q.Set("query", query)
	q.Set("type", "note")
	q.Set("fields", "id,title,body")
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageLimit))
	q.Set("token", c.token)
	return c.baseURL + "/search?" + q.Encode()
}
