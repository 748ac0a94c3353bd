package render

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedTags is the presentational allowlist. Anything outside it is
// dropped wholesale, children included, so script/style bodies never
// survive as stray text.
var allowedTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "blockquote": true, "br": true,
	"code": true, "dd": true, "del": true, "details": true, "div": true,
	"dl": true, "dt": true, "em": true, "figcaption": true, "figure": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "i": true, "img": true, "ins": true, "kbd": true, "li": true,
	"mark": true, "ol": true, "p": true, "pre": true, "s": true, "small": true,
	"span": true, "strong": true, "sub": true, "summary": true, "sup": true,
	"table": true, "tbody": true, "td": true, "th": true, "thead": true,
	"tr": true, "u": true, "ul": true,
}

var allowedAttrs = map[string]bool{
	"alt": true, "class": true, "colspan": true, "height": true,
	"href": true, "id": true, "loading": true, "rowspan": true,
	"src": true, "title": true, "width": true,
}

// sanitize parses rendered HTML as a body fragment, strips everything
// outside the allowlist and rewrites <img src> to absolute URLs.
func (r *Renderer) sanitize(in []byte) ([]byte, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(in), body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if r.clean(n) {
			if err := html.Render(&buf, n); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

// clean filters a node in place and reports whether it should be kept.
func (r *Renderer) clean(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		// handled below
	default:
		// comments, doctypes, raw nodes
		return false
	}

	if !allowedTags[n.Data] {
		return false
	}
	n.Attr = r.cleanAttrs(n.Data, n.Attr)

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !r.clean(c) {
			n.RemoveChild(c)
		}
		c = next
	}
	return true
}

func (r *Renderer) cleanAttrs(tag string, attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		name := strings.ToLower(a.Key)
		if a.Namespace != "" || !allowedAttrs[name] {
			continue
		}
		if name == "href" && !safeLinkScheme(a.Val) {
			continue
		}
		if name == "src" {
			if !safeLinkScheme(a.Val) {
				continue
			}
			if tag == "img" {
				a.Val = r.AbsoluteURL(a.Val)
			}
		}
		kept = append(kept, a)
	}
	return kept
}
