package markup

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Options control the post-processing pass
type Options struct {
	// HTMLContent is set when the deck carries real markup. When it is not,
	// the deck holds escaped markup as text and it is promoted to elements.
	HTMLContent bool
}

// PostProcess fixes a freshly transformed fragment in place
func PostProcess(f *Fragment, opts Options) error {
	if !opts.HTMLContent {
		if err := promoteEscapedMarkup(f.Root); err != nil {
			return err
		}
	}
	fixCodeDisplay(f.Root)
	return nil
}

// promoteEscapedMarkup re-parses text nodes that contain markup and splices
// the resulting nodes in place of the text. Text inside code and pre keeps
// its literal form.
func promoteEscapedMarkup(root *html.Node) error {
	var texts []*html.Node
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "code" || n.Data == "pre") {
			return
		}
		if n.Type == html.TextNode && strings.ContainsRune(n.Data, '<') {
			texts = append(texts, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)

	for _, t := range texts {
		parent := t.Parent
		nodes, err := html.ParseFragment(strings.NewReader(t.Data), parent)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			parent.InsertBefore(n, t)
		}
		parent.RemoveChild(t)
	}
	return nil
}

// fixCodeDisplay makes code samples display verbatim: markup nested in code
// is flattened back to its source text and double escaped angle brackets
// are shown once.
func fixCodeDisplay(root *html.Node) {
	for _, code := range FindByTag(root, "code") {
		var buf bytes.Buffer
		flat := false
		for c := code.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				buf.WriteString(c.Data)
			case html.ElementNode:
				flat = true
				_ = html.Render(&buf, c)
			}
		}
		text := buf.String()
		if strings.Contains(text, "&lt;") || strings.Contains(text, "&gt;") {
			flat = true
			text = strings.NewReplacer("&lt;", "<", "&gt;", ">").Replace(text)
		}
		if flat {
			SetText(code, text)
		}
	}
}
