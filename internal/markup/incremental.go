package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Class markers of incremental list items
const (
	ClassIncremental = "incremental"
	ClassActive      = "incremental-active"
	ClassPast        = "incremental-past"
)

// StepNode is an incremental list item inside a rendered slide
type StepNode struct {
	*html.Node
}

// Steps returns the incremental list items of a rendered slide
func Steps(f *Fragment) []StepNode {
	nodes := FindByClass(f.Root, "li", markers...)
	out := make([]StepNode, len(nodes))
	for i, n := range nodes {
		out[i] = StepNode{n}
	}
	return out
}

var markers = []string{ClassIncremental, ClassActive, ClassPast}

// Marker returns the incremental marker class carried by n, if any
func Marker(n *html.Node) string {
	for _, c := range markers {
		if HasClass(n, c) {
			return c
		}
	}
	return ""
}

// SetMarker swaps the incremental marker in the class list for marker,
// leaving any other class untouched.
func (s StepNode) SetMarker(marker string) {
	fields := strings.Fields(Attr(s.Node, "class"))
	replaced := false
	for i, c := range fields {
		switch c {
		case ClassIncremental, ClassActive, ClassPast:
			if !replaced {
				fields[i] = marker
				replaced = true
			} else {
				fields[i] = ""
			}
		}
	}
	if !replaced {
		fields = append(fields, marker)
	}
	SetAttr(s.Node, "class", strings.Join(strings.Fields(strings.Join(fields, " ")), " "))
}
