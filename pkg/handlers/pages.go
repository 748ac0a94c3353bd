package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogfront/pkg/cms"
)

// Home renders the paginated post listing.
func (h *Handlers) Home(c *gin.Context) {
	ctx := c.Request.Context()
	page := parsePage(c.Query("page"))

	posts, err := h.client.ListPosts(ctx, page, h.cfg.PageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}
	// A page past the end comes back empty from the backend; treat it
	// as not found instead of rendering a blank listing.
	if page > 1 && len(posts.Posts) == 0 {
		h.renderNotFound(c)
		return
	}

	sidebar, err := h.sidebar(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}

	view := listingView{
		Site: h.site(),
		Meta: pageMeta{
			Title:       h.cfg.SiteTitle,
			Description: h.cfg.SiteDescription,
			URL:         h.cfg.SiteURL + "/",
		},
		Heading: h.cfg.SiteTitle,
		Posts:   h.postItems(posts.Posts),
		Page:    posts.Pagination.Page,
		HasPrev: posts.HasPrev(),
		HasNext: posts.HasNext(),
		PrevURL: pageURL("/", page-1),
		NextURL: pageURL("/", page+1),
		Sidebar: sidebar,
	}
	c.HTML(http.StatusOK, "index.html", view)
}

// Category renders the listing scoped to one category slug. A category
// with no posts is a not-found page, never an empty list.
func (h *Handlers) Category(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	page := parsePage(c.Query("page"))

	posts, err := h.client.ListPostsByCategory(ctx, slug, page, h.cfg.PageSize)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if len(posts.Posts) == 0 {
		h.renderNotFound(c)
		return
	}

	sidebar, err := h.sidebar(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}

	name := slug
	for _, cat := range sidebar.Categories {
		if cat.Slug == slug {
			name = cat.Name
			break
		}
	}

	base := "/category/" + slug
	view := listingView{
		Site: h.site(),
		Meta: pageMeta{
			Title:       name + " | " + h.cfg.SiteTitle,
			Description: h.cfg.SiteDescription,
			URL:         h.cfg.SiteURL + base,
		},
		Heading: name,
		Posts:   h.postItems(posts.Posts),
		Page:    posts.Pagination.Page,
		HasPrev: posts.HasPrev(),
		HasNext: posts.HasNext(),
		PrevURL: pageURL(base, page-1),
		NextURL: pageURL(base, page+1),
		Sidebar: sidebar,
	}
	c.HTML(http.StatusOK, "category.html", view)
}

// Post renders one post's detail page. A missing slug is a dedicated
// not-found state, not an error.
func (h *Handlers) Post(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	post, err := h.client.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			h.renderNotFound(c)
			return
		}
		h.renderError(c, err)
		return
	}

	body, err := h.renderer.Render(post.Content)
	if err != nil {
		h.renderError(c, err)
		return
	}

	sidebar, err := h.sidebar(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}

	item := h.postItem(*post)
	view := detailView{
		Site: h.site(),
		Meta: pageMeta{
			Title:       post.Title + " | " + h.cfg.SiteTitle,
			Description: post.Description,
			URL:         h.cfg.SiteURL + "/blog/" + post.Slug,
			Image:       item.CoverURL,
		},
		Post:      item,
		Body:      body,
		UpdatedAt: post.UpdatedAt,
		Sidebar:   sidebar,
	}
	c.HTML(http.StatusOK, "post.html", view)
}

// pageURL builds a listing URL for a page number; page 1 keeps the
// bare path.
func pageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%s?page=%d", base, page)
}
