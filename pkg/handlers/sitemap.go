package handlers

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Entry priorities per route class.
const (
	priorityHome     = "1.0"
	priorityPost     = "0.8"
	priorityCategory = "0.7"
)

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap emits one entry for the home page, one per post (up to the
// configured sitemap page size) and one per category.
func (h *Handlers) Sitemap(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := h.client.ListPosts(ctx, 1, h.cfg.SitemapPageSize)
	if err != nil {
		c.String(http.StatusInternalServerError, "sitemap unavailable")
		return
	}
	cats, err := h.client.ListCategories(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "sitemap unavailable")
		return
	}

	set := urlset{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{{
			Loc:        h.cfg.SiteURL + "/",
			LastMod:    time.Now().UTC().Format(time.RFC3339),
			ChangeFreq: "daily",
			Priority:   priorityHome,
		}},
	}
	for _, p := range posts.Posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.cfg.SiteURL + "/blog/" + p.Slug,
			LastMod:    p.LastModified().UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   priorityPost,
		})
	}
	for _, cat := range cats {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.cfg.SiteURL + "/category/" + cat.Slug,
			LastMod:    cat.LastModified().UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   priorityCategory,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		c.String(http.StatusInternalServerError, "sitemap unavailable")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
