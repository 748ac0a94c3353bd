// Package cms is the typed client for the headless CMS content API.
// All JSON validation happens here; handlers receive model types and
// never look at the wire shape.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"blogfront/pkg/metrics"
	"blogfront/pkg/models"
	"blogfront/pkg/query"
)

// Client issues GET requests against the CMS API. Safe for concurrent
// use; all methods take the request context so a disconnected client
// cancels the upstream call.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default pooled HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a logger; zap.NewNop() is used otherwise.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the CMS at baseURL (scheme and host, no
// trailing slash required).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		Pagination models.Pagination `json:"pagination"`
	} `json:"meta"`
}

// ListPosts returns one page of posts, newest first, with the cover and
// category relations populated.
func (c *Client) ListPosts(ctx context.Context, page, pageSize int) (models.PostPage, error) {
	qs := postListQuery().Paginate(page, pageSize).Encode()
	return c.fetchPostPage(ctx, "list_posts", qs)
}

// ListPostsByCategory is ListPosts narrowed to posts whose category set
// contains the given slug.
func (c *Client) ListPostsByCategory(ctx context.Context, categorySlug string, page, pageSize int) (models.PostPage, error) {
	qs := postListQuery().
		FilterEq(categorySlug, "categories", "slug").
		Paginate(page, pageSize).
		Encode()
	return c.fetchPostPage(ctx, "list_posts_by_category", qs)
}

// GetPostBySlug returns the post with exactly the given slug, full
// content included, or ErrNotFound when nothing matches.
func (c *Client) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	qs := query.New().
		FilterEq(slug, "slug").
		Populate("cover", "url", "alternativeText").
		Populate("categories", "name", "slug").
		Encode()

	var env listEnvelope[models.Post]
	if err := c.getJSON(ctx, "get_post_by_slug", "/api/blogs", qs, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || env.Data[0].Slug != slug {
		return nil, ErrNotFound
	}
	post := env.Data[0]
	return &post, nil
}

// ListCategories returns every category, unfiltered and unpaginated.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var env listEnvelope[models.Category]
	if err := c.getJSON(ctx, "list_categories", "/api/categories", "", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func postListQuery() *query.Builder {
	return query.New().
		Populate("cover", "url", "alternativeText").
		Populate("categories", "name", "slug").
		Sort("createdAt:desc")
}

func (c *Client) fetchPostPage(ctx context.Context, op, rawQuery string) (models.PostPage, error) {
	var env listEnvelope[models.Post]
	if err := c.getJSON(ctx, op, "/api/blogs", rawQuery, &env); err != nil {
		return models.PostPage{}, err
	}
	return models.PostPage{Posts: env.Data, Pagination: env.Meta.Pagination}, nil
}

func (c *Client) getJSON(ctx context.Context, op, path, rawQuery string, out any) error {
	u := c.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		metrics.CMSFetches.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.CMSFetches.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("cms: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.CMSFetches.WithLabelValues(op, "error").Inc()
		c.log.Warn("cms request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &FetchError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.CMSFetches.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("cms: decode %s: %w", path, err)
	}
	metrics.CMSFetches.WithLabelValues(op, "ok").Inc()
	return nil
}
