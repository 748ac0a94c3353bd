package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogfront/pkg/cache"
	"blogfront/pkg/metrics"
)

// mutationEvents are the CMS events that change visible content.
var mutationEvents = map[string]bool{
	"entry.create":    true,
	"entry.update":    true,
	"entry.delete":    true,
	"entry.publish":   true,
	"entry.unpublish": true,
}

type revalidateRequest struct {
	Event string `json:"event"`
	Model string `json:"model"`
	Entry struct {
		Slug string `json:"slug"`
	} `json:"entry"`
}

// Revalidate is the CMS change webhook. It authenticates with a shared
// bearer token, maps the event to cache tags and acknowledges with a
// timestamp whether or not anything was invalidated.
func (h *Handlers) Revalidate(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	if h.cfg.RevalidateSecret == "" || auth != "Bearer "+h.cfg.RevalidateSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var req revalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad request"})
		return
	}

	var tags []string
	if mutationEvents[req.Event] {
		switch req.Model {
		case "blog":
			tags = append(tags, cache.TagPosts)
			if req.Entry.Slug != "" {
				tags = append(tags, cache.PostTag(req.Entry.Slug))
			}
			metrics.TagInvalidations.WithLabelValues("blog").Inc()
		case "category":
			tags = append(tags, cache.TagCategories)
			if req.Entry.Slug != "" {
				tags = append(tags, cache.CategoryTag(req.Entry.Slug))
			}
			metrics.TagInvalidations.WithLabelValues("category").Inc()
		}
	}

	if len(tags) > 0 {
		if err := h.store.Invalidate(c.Request.Context(), tags...); err != nil {
			h.log.Error("tag invalidation failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"revalidated": true,
		"now":         time.Now().UnixMilli(),
	})
}
