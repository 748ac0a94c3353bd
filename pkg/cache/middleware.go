package cache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"blogfront/pkg/metrics"
)

// TagsFunc derives the cache tags for a request, typically from route
// parameters (e.g. the post slug).
type TagsFunc func(c *gin.Context) []string

// Middleware serves a cached copy of the response when one is valid and
// captures successful renders for next time. Only GET responses with
// status 200 are cached.
func (s *Store) Middleware(tags TagsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() || c.Request.Method != http.MethodGet {
			metrics.CacheEvents.WithLabelValues("bypass").Inc()
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if e, ok := s.Get(c.Request.Context(), key); ok {
			metrics.CacheEvents.WithLabelValues("hit").Inc()
			c.Data(http.StatusOK, e.ContentType, []byte(e.Body))
			c.Abort()
			return
		}
		metrics.CacheEvents.WithLabelValues("miss").Inc()

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if c.Writer.Status() == http.StatusOK {
			s.Set(c.Request.Context(), key, w.Header().Get("Content-Type"), w.body.String(), tags(c))
		}
	}
}

// captureWriter tees the response body so it can be stored after the
// handler has written it out.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
