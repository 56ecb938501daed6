// Package notion implements store.EntityStore over the Notion REST API.
//
// Requests carry the integration token through an oauth2 static token
// source, are bounded by a per-request timeout, and are retried with
// exponential backoff on rate limiting and server errors. Concurrent Gets of
// the same page share one round trip.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/mrz1836/notionflow/internal/constants"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/notion/property"
	"github.com/mrz1836/notionflow/internal/store"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 10 << 20

// Client talks to the Notion API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiVersion string
	timeout    time.Duration
	retry      RetryConfig
	logger     zerolog.Logger
	httpClient *http.Client
	pages      singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (tests point it at an httptest server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIVersion overrides the Notion-Version header.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// WithTimeout bounds each request, including retries of it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets the retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client authenticated with the given integration token.
// An *http.Client stored in ctx under oauth2.HTTPClient is used as the base
// transport.
func New(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("notion token %w", nferrors.ErrEmptyValue)
	}

	c := &Client{
		baseURL:    constants.NotionBaseURL,
		apiVersion: constants.NotionAPIVersion,
		timeout:    constants.DefaultNotionTimeout,
		retry:      DefaultRetryConfig(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	c.httpClient = oauth2.NewClient(ctx, src)
	c.httpClient.Timeout = c.timeout

	return c, nil
}

// Get implements store.EntityStore. Archived pages are reported as not found.
func (c *Client) Get(ctx context.Context, id string) (*store.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("failed to get page: page ID %w", nferrors.ErrEmptyValue)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get page '%s': %w", id, err)
	}

	// The shared fetch outlives any single caller; each caller stops waiting
	// on its own context.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.pages.DoChan(id, func() (any, error) {
		body, err := c.do(fetchCtx, http.MethodGet, "/pages/"+id, nil)
		if err != nil {
			return nil, err
		}
		return parseRecord(gjson.Parse(body))
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to get page '%s': %w", id, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("failed to get page '%s': %w", id, res.Err)
	}
	if res.Shared {
		c.logger.Debug().Str("page_id", id).Msg("shared in-flight page fetch")
	}

	rec := res.Val.(*store.Record).Clone()
	if rec.Archived {
		return nil, fmt.Errorf("page '%s' is archived: %w", id, nferrors.ErrNotFound)
	}
	return rec, nil
}

// Update implements store.EntityStore.
func (c *Client) Update(ctx context.Context, id string, props property.Bag) (*store.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("failed to update page: page ID %w", nferrors.ErrEmptyValue)
	}

	body, err := c.do(ctx, http.MethodPatch, "/pages/"+id, map[string]any{"properties": props})
	if err != nil {
		return nil, fmt.Errorf("failed to update page '%s': %w", id, err)
	}
	return parseRecord(gjson.Parse(body))
}

// Create implements store.EntityStore.
func (c *Client) Create(ctx context.Context, databaseID string, props property.Bag) (*store.Record, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("failed to create page: database ID %w", nferrors.ErrEmptyValue)
	}

	req := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": props,
	}
	body, err := c.do(ctx, http.MethodPost, "/pages", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create page in database '%s': %w", databaseID, err)
	}
	return parseRecord(gjson.Parse(body))
}

// Query implements store.EntityStore, following next_cursor until the
// result set is exhausted.
func (c *Client) Query(ctx context.Context, databaseID string, filter *store.Filter) ([]*store.Record, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("failed to query database: database ID %w", nferrors.ErrEmptyValue)
	}

	var (
		records []*store.Record
		cursor  string
	)
	for {
		req := map[string]any{"page_size": constants.NotionPageSize}
		if filter != nil {
			req["filter"] = filter
		}
		if cursor != "" {
			req["start_cursor"] = cursor
		}

		body, err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", req)
		if err != nil {
			return nil, fmt.Errorf("failed to query database '%s': %w", databaseID, err)
		}

		parsed := gjson.Parse(body)
		var parseErr error
		parsed.Get("results").ForEach(func(_, item gjson.Result) bool {
			rec, err := parseRecord(item)
			if err != nil {
				parseErr = err
				return false
			}
			records = append(records, rec)
			return true
		})
		if parseErr != nil {
			return nil, fmt.Errorf("failed to query database '%s': %w", databaseID, parseErr)
		}

		cursor = parsed.Get("next_cursor").String()
		if !parsed.Get("has_more").Bool() || cursor == "" {
			return records, nil
		}
	}
}

// DatabaseTitle fetches a database and returns its plain-text title. Used to
// verify database IDs during init.
func (c *Client) DatabaseTitle(ctx context.Context, databaseID string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get database '%s': %w", databaseID, err)
	}

	var b strings.Builder
	gjson.Get(body, "title").ForEach(func(_, seg gjson.Result) bool {
		b.WriteString(seg.Get("plain_text").String())
		return true
	})
	return b.String(), nil
}

// do sends one request with retries and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload any) (string, error) {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return "", fmt.Errorf("failed to encode request: %w", err)
		}
	}

	body, attempts, err := executeWithRetry(ctx, c.retry, c.logger, func(ctx context.Context) (string, error) {
		return c.send(ctx, method, path, data)
	})

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("attempts", attempts).
		Bool("ok", err == nil).
		Msg("notion request")

	return body, err
}

func (c *Client) send(ctx context.Context, method, path string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &transportError{err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", parseAPIError(resp, body)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("invalid JSON response from %s: %w", path, nferrors.ErrNotionAPI)
	}
	return string(body), nil
}

// parseRecord decodes a Notion page object.
func parseRecord(page gjson.Result) (*store.Record, error) {
	rec := &store.Record{
		ID:       page.Get("id").String(),
		Archived: page.Get("archived").Bool() || page.Get("in_trash").Bool(),
	}

	parent := page.Get("parent")
	switch parent.Get("type").String() {
	case "page_id":
		rec.ParentID = parent.Get("page_id").String()
	default:
		rec.ParentID = parent.Get("database_id").String()
	}

	if ts := page.Get("created_time").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CreatedTime = t.UTC()
		}
	}
	if ts := page.Get("last_edited_time").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.LastEditedTime = t.UTC()
		}
	}

	rec.Properties = property.Bag{}
	if props := page.Get("properties"); props.Exists() {
		if err := json.Unmarshal([]byte(props.Raw), &rec.Properties); err != nil {
			return nil, fmt.Errorf("page '%s': %w", rec.ID, err)
		}
	}
	return rec, nil
}

var _ store.EntityStore = (*Client)(nil)
