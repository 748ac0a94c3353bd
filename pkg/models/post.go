package models

import "time"

// Post is a blog entry as served by the CMS. The slug is the external
// lookup key; everything else is display data.
type Post struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Content     string        `json:"content,omitempty"` // Raw markdown body
	Cover       *Image        `json:"cover,omitempty"`
	Categories  []CategoryRef `json:"categories,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Image is an uploaded media file reference. URL may be relative to the
// CMS host and has to be resolved before rendering.
type Image struct {
	URL             string `json:"url"`
	AlternativeText string `json:"alternativeText,omitempty"`
}

// CategoryRef is the slim category shape populated on a post.
type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// LastModified returns the timestamp a sitemap entry should carry:
// the update time when present, the creation time otherwise.
func (p Post) LastModified() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}
