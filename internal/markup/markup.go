// Package markup holds the HTML fragments produced by the transform engines
// and the tree helpers the presenter needs: lookup by id and class, class
// marker swaps and the structural post-processing pass.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fragment is a parsed HTML fragment hung under a synthetic div
type Fragment struct {
	Root *html.Node
}

func container() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
}

// Parse parses a fragment the way innerHTML assignment would
func Parse(s string) (*Fragment, error) {
	root := container()
	nodes, err := html.ParseFragment(strings.NewReader(s), container())
	if err != nil {
		return nil, fmt.Errorf("unable to parse fragment: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Fragment{Root: root}, nil
}

// String serializes the fragment content (without the synthetic container)
func (f *Fragment) String() string {
	var buf bytes.Buffer
	for c := f.Root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// ByID returns the first element with the given id
func (f *Fragment) ByID(id string) *html.Node {
	var found *html.Node
	walk(f.Root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByClass returns elements named tag ("*" for any) carrying at least
// one of classes among their whitespace separated class tokens, in
// document order.
func FindByClass(root *html.Node, tag string, classes ...string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || (tag != "*" && n.Data != tag) {
			return true
		}
		for _, c := range classes {
			if HasClass(n, c) {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}

// FindByTag returns all elements named tag in document order
func FindByTag(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}

// HasClass reports whether n carries class
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Attr returns attribute key of n or ""
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or adds attribute key on n
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Text returns the concatenated text content of n
func Text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces the children of n with a single text node
func SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// walk visits n and its descendants depth first, stopping when fn returns false
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
