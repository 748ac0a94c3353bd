package models

// Pagination is the meta block the CMS returns with every list response.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// PostPage is one page of posts in descending creation order, plus the
// pagination meta needed to build prev/next controls.
type PostPage struct {
	Posts      []Post
	Pagination Pagination
}

// HasPrev reports whether a page before the current one exists.
func (p PostPage) HasPrev() bool {
	return p.Pagination.Page > 1
}

// HasNext reports whether a page after the current one exists.
func (p PostPage) HasNext() bool {
	return p.Pagination.Page < p.Pagination.PageCount
}
