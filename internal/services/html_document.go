package services

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// htmlNode adapts an x/net/html node to the extractor's Node interface
type htmlNode struct {
	n *html.Node
}

// ParseHTML parses markup into a Node tree rooted at the document
func ParseHTML(r io.Reader) (Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return htmlNode{n: doc}, nil
}

// ParseHTMLString is ParseHTML for in-memory markup
func ParseHTMLString(markup string) (Node, error) {
	return ParseHTML(strings.NewReader(markup))
}

func (h htmlNode) Tag() string {
	switch h.n.Type {
	case html.TextNode:
		return "#text"
	case html.DocumentNode:
		return "#document"
	}
	return h.n.Data
}

func (h htmlNode) Classes() []string {
	for _, attr := range h.n.Attr {
		if attr.Key == "class" {
			return strings.Fields(attr.Val)
		}
	}
	return nil
}

// Children skips comments and the contents of script/style elements
func (h htmlNode) Children() []Node {
	var out []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.CommentNode, html.DoctypeNode:
			continue
		case html.ElementNode:
			if c.Data == "script" || c.Data == "style" || c.Data == "noscript" {
				continue
			}
		}
		out = append(out, htmlNode{n: c})
	}
	return out
}

func (h htmlNode) Text() string {
	if h.n.Type == html.TextNode {
		return h.n.Data
	}
	return ""
}

// Attr returns an attribute of an element node
func (h htmlNode) Attr(key string) string {
	for _, attr := range h.n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// SelectSection returns the first element with the given id or class, or root
// when selector is empty. Selectors are "#id" or ".class".
func SelectSection(root Node, selector string) Node {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return root
	}
	switch {
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		return FindFirst(root, func(n Node) bool {
			a, ok := n.(interface{ Attr(string) string })
			return ok && a.Attr("id") == id
		})
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		return FindFirst(root, func(n Node) bool { return HasClass(n, class) })
	}
	return FindFirst(root, func(n Node) bool { return n.Tag() == selector })
}
