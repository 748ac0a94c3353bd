package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogfront/pkg/cache"
	"blogfront/pkg/cms"
	"blogfront/pkg/config"
	"blogfront/pkg/handlers"
	"blogfront/pkg/models"
	"blogfront/pkg/render"
)

// fakeCMS is an in-memory stand-in for the content API implementing the
// subset of filtering and pagination the client uses.
type fakeCMS struct {
	srv   *httptest.Server
	posts []models.Post
	cats  []models.Category

	blogQueries []url.Values // one per /api/blogs call, in order
	failStatus  int
	failBody    string
}

func newFakeCMS(posts []models.Post, cats []models.Category) *fakeCMS {
	f := &fakeCMS{posts: posts, cats: cats}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/blogs", f.handleBlogs)
	mux.HandleFunc("/api/categories", f.handleCategories)
	f.srv = httptest.NewServer(mux)
	return f
}

func (f *fakeCMS) handleBlogs(w http.ResponseWriter, r *http.Request) {
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		w.Write([]byte(f.failBody))
		return
	}
	q := r.URL.Query()
	f.blogQueries = append(f.blogQueries, q)

	matched := make([]models.Post, 0, len(f.posts))
	slugEq := q.Get("filters[slug][$eq]")
	catEq := q.Get("filters[categories][slug][$eq]")
	for _, p := range f.posts {
		if slugEq != "" && p.Slug != slugEq {
			continue
		}
		if catEq != "" && !postHasCategory(p, catEq) {
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, pageSize := 1, 25
	if n, err := strconv.Atoi(q.Get("pagination[page]")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(q.Get("pagination[pageSize]")); err == nil && n > 0 {
		pageSize = n
	}

	total := len(matched)
	pageCount := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start, end = total, total
	} else if end > total {
		end = total
	}

	writeJSON(w, map[string]any{
		"data": matched[start:end],
		"meta": map[string]any{
			"pagination": models.Pagination{
				Page: page, PageSize: pageSize, PageCount: pageCount, Total: total,
			},
		},
	})
}

func (f *fakeCMS) handleCategories(w http.ResponseWriter, r *http.Request) {
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		w.Write([]byte(f.failBody))
		return
	}
	writeJSON(w, map[string]any{"data": f.cats})
}

func postHasCategory(p models.Post, slug string) bool {
	for _, c := range p.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// testEnv bundles everything a handler test needs.
type testEnv struct {
	cms    *fakeCMS
	router *gin.Engine
	store  *cache.Store
	cfg    *config.Config
}

func newTestEnv(t *testing.T, fake *fakeCMS, withCache bool) *testEnv {
	t.Helper()
	t.Cleanup(fake.srv.Close)

	cfg := &config.Config{
		ListenAddr:       ":0",
		SiteURL:          "https://blog.example.com",
		CMSURL:           fake.srv.URL,
		RevalidateSecret: "s3cret",
		SiteTitle:        "Test Blog",
		SiteDescription:  "A test blog",
		PageSize:         10,
		SitemapPageSize:  1000,
	}

	renderer, err := render.New(cfg.CMSURL)
	require.NoError(t, err)

	var store *cache.Store
	if withCache {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		store = cache.New(rdb, time.Hour, zap.NewNop())
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.LoadHTMLGlob("../../templates/*")

	h := handlers.New(cfg, cms.New(cfg.CMSURL), renderer, store, zap.NewNop())
	h.Register(router)

	return &testEnv{cms: fake, router: router, store: store, cfg: cfg}
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	e.router.ServeHTTP(w, req)
	return w
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 12, 0, 0, 0, time.UTC)
}

func makePosts(n int) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 1; i <= n; i++ {
		p := models.Post{
			ID:          i,
			Title:       "Post " + strconv.Itoa(i),
			Slug:        "post-" + strconv.Itoa(i),
			Description: "Description " + strconv.Itoa(i),
			Content:     "# Heading " + strconv.Itoa(i),
			CreatedAt:   day(i),
			UpdatedAt:   day(i),
		}
		if i%2 == 0 {
			p.Categories = []models.CategoryRef{{Name: "Go", Slug: "go"}}
		}
		posts = append(posts, p)
	}
	return posts
}

func someCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Go", Slug: "go", Description: "1", CreatedAt: day(1), UpdatedAt: day(2)},
		{ID: 2, Name: "Web", Slug: "web", Description: "2", CreatedAt: day(1), UpdatedAt: day(1)},
	}
}
