// Package query builds the bracketed filter/populate/pagination query
// strings the CMS API expects, e.g.
//
//	filters[slug][$eq]=hello&pagination[page]=1&pagination[pageSize]=10
package query

import (
	"net/url"
	"strconv"
)

// Builder accumulates query parameters. The zero value is not usable;
// construct with New.
type Builder struct {
	values  url.Values
	sortIdx int
	popIdx  int
}

func New() *Builder {
	return &Builder{values: url.Values{}}
}

// FilterEq adds an equality filter on a field path. A single element
// filters the entity itself, more elements walk into relations:
//
//	FilterEq("x", "slug")                -> filters[slug][$eq]=x
//	FilterEq("x", "categories", "slug")  -> filters[categories][slug][$eq]=x
//
// Values are passed through verbatim; the CMS is the one that rejects
// malformed input.
func (b *Builder) FilterEq(value string, path ...string) *Builder {
	key := "filters"
	for _, p := range path {
		key += "[" + p + "]"
	}
	b.values.Set(key+"[$eq]", value)
	return b
}

// Populate requests a relation alongside the primary entity. With field
// names the response is narrowed to those fields, without it the whole
// relation is included.
func (b *Builder) Populate(relation string, fields ...string) *Builder {
	if len(fields) == 0 {
		b.values.Set("populate["+strconv.Itoa(b.popIdx)+"]", relation)
		b.popIdx++
		return b
	}
	for i, f := range fields {
		b.values.Set("populate["+relation+"][fields]["+strconv.Itoa(i)+"]", f)
	}
	return b
}

// Paginate sets the 1-based page and page size.
func (b *Builder) Paginate(page, pageSize int) *Builder {
	b.values.Set("pagination[page]", strconv.Itoa(page))
	b.values.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	return b
}

// Sort appends a sort expression such as "createdAt:desc".
func (b *Builder) Sort(exprs ...string) *Builder {
	for _, e := range exprs {
		b.values.Set("sort["+strconv.Itoa(b.sortIdx)+"]", e)
		b.sortIdx++
	}
	return b
}

// Encode serializes the accumulated parameters. url.Values encodes keys
// in sorted order, so identical input always yields an identical string.
func (b *Builder) Encode() string {
	return b.values.Encode()
}
