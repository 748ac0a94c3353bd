// Package handlers holds the gin handlers that assemble CMS content
// into renderable pages.
package handlers

import (
	"context"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogfront/pkg/cache"
	"blogfront/pkg/cms"
	"blogfront/pkg/config"
	"blogfront/pkg/models"
	"blogfront/pkg/render"
)

const recentPostCount = 5

// Handlers carries the injected dependencies for every page. No
// handler reads ambient globals.
type Handlers struct {
	cfg      *config.Config
	client   *cms.Client
	renderer *render.Renderer
	store    *cache.Store
	log      *zap.Logger
}

func New(cfg *config.Config, client *cms.Client, renderer *render.Renderer, store *cache.Store, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{cfg: cfg, client: client, renderer: renderer, store: store, log: log}
}

// Register wires all routes, with the page cache in front of the
// cacheable GET pages.
func (h *Handlers) Register(r *gin.Engine) {
	r.GET("/", h.store.Middleware(func(*gin.Context) []string {
		return []string{cache.TagPosts}
	}), h.Home)

	r.GET("/blog/:slug", h.store.Middleware(func(c *gin.Context) []string {
		return []string{cache.TagPosts, cache.PostTag(c.Param("slug"))}
	}), h.Post)

	r.GET("/category/:slug", h.store.Middleware(func(c *gin.Context) []string {
		return []string{cache.TagPosts, cache.TagCategories, cache.CategoryTag(c.Param("slug"))}
	}), h.Category)

	r.GET("/sitemap.xml", h.store.Middleware(func(*gin.Context) []string {
		return []string{cache.TagPosts, cache.TagCategories}
	}), h.Sitemap)

	r.POST("/api/revalidate", h.Revalidate)
}

// siteView is the site-wide chrome every template receives.
type siteView struct {
	Title       string
	Description string
	URL         string
}

// pageMeta feeds the <head>: document title, meta description, OGP.
type pageMeta struct {
	Title       string
	Description string
	URL         string
	Image       string
}

type postItem struct {
	Title       string
	Slug        string
	Description string
	CoverURL    string
	CoverAlt    string
	CreatedAt   time.Time
	Categories  []models.CategoryRef
}

type sidebarView struct {
	Recent     []postItem
	Categories []models.Category
}

type listingView struct {
	Site    siteView
	Meta    pageMeta
	Heading string
	Posts   []postItem
	Page    int
	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
	Sidebar sidebarView
}

type detailView struct {
	Site      siteView
	Meta      pageMeta
	Post      postItem
	Body      template.HTML
	UpdatedAt time.Time
	Sidebar   sidebarView
}

func (h *Handlers) site() siteView {
	return siteView{
		Title:       h.cfg.SiteTitle,
		Description: h.cfg.SiteDescription,
		URL:         h.cfg.SiteURL,
	}
}

func (h *Handlers) postItem(p models.Post) postItem {
	item := postItem{
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		Categories:  p.Categories,
	}
	if p.Cover != nil {
		item.CoverURL = h.renderer.AbsoluteURL(p.Cover.URL)
		item.CoverAlt = p.Cover.AlternativeText
	}
	return item
}

func (h *Handlers) postItems(posts []models.Post) []postItem {
	items := make([]postItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, h.postItem(p))
	}
	return items
}

// sidebar fetches the recent-post and category lists shown next to the
// main content. Calls run sequentially; each page render does its own
// independent fetches.
func (h *Handlers) sidebar(ctx context.Context) (sidebarView, error) {
	recent, err := h.client.ListPosts(ctx, 1, recentPostCount)
	if err != nil {
		return sidebarView{}, err
	}
	cats, err := h.client.ListCategories(ctx)
	if err != nil {
		return sidebarView{}, err
	}
	sortCategories(cats)
	return sidebarView{Recent: h.postItems(recent.Posts), Categories: cats}, nil
}

// sortCategories orders by the numeric priority the CMS stores in the
// description field; non-numeric descriptions sort last, ties break on
// name.
func sortCategories(cats []models.Category) {
	prio := func(c models.Category) int {
		n, err := strconv.Atoi(c.Description)
		if err != nil {
			return int(^uint(0) >> 1)
		}
		return n
	}
	sort.SliceStable(cats, func(i, j int) bool {
		pi, pj := prio(cats[i]), prio(cats[j])
		if pi != pj {
			return pi < pj
		}
		return cats[i].Name < cats[j].Name
	})
}

// parsePage reads the 1-based ?page= parameter; absent or non-numeric
// values default to 1.
func parsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (h *Handlers) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", gin.H{
		"Site": h.site(),
		"Meta": pageMeta{Title: "Not Found | " + h.cfg.SiteTitle},
	})
}

func (h *Handlers) renderError(c *gin.Context, err error) {
	h.log.Error("page render failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Site": h.site(),
		"Meta": pageMeta{Title: "Error | " + h.cfg.SiteTitle},
	})
}
