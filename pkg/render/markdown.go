// Package render turns CMS markdown into safe HTML ready for the page
// templates. Raw inline HTML is allowed through the markdown parser and
// then filtered down to a presentational allowlist; image sources are
// rewritten to absolute URLs against the CMS host.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer is safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	assetBase *url.URL
}

// New builds a renderer that resolves relative asset URLs against
// assetBaseURL (the CMS origin serving /uploads).
func New(assetBaseURL string) (*Renderer, error) {
	base, err := url.Parse(assetBaseURL)
	if err != nil {
		return nil, fmt.Errorf("render: parse asset base url: %w", err)
	}
	return &Renderer{
		// Raw HTML passes the parser and is sanitized afterwards.
		md:        goldmark.New(goldmark.WithRendererOptions(ghtml.WithUnsafe())),
		assetBase: base,
	}, nil
}

// Render converts a markdown body to sanitized HTML with absolute image
// URLs. The result is marked template.HTML because it has already been
// through the sanitizer; templates must not escape it again.
func (r *Renderer) Render(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	clean, err := r.sanitize(buf.Bytes())
	if err != nil {
		return "", err
	}
	return template.HTML(clean), nil
}

// AbsoluteURL resolves a possibly relative asset URL against the CMS
// origin. Already absolute URLs are returned unchanged.
func (r *Renderer) AbsoluteURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.IsAbs() {
		return raw
	}
	return r.assetBase.ResolveReference(u).String()
}

// safeLinkScheme reports whether a link destination is acceptable.
func safeLinkScheme(raw string) bool {
	s := strings.TrimSpace(strings.ToLower(raw))
	return !strings.HasPrefix(s, "javascript:") && !strings.HasPrefix(s, "data:") && !strings.HasPrefix(s, "vbscript:")
}
