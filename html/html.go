/*
Package html presents the element tree of an HTML document as a flattened
tree.

Element nodes of golang.org/x/net/html serve as items; their children are
their element children. Text, comments and other node types are not shown
as rows, but the text of an element is available for labels.
*/
package html

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/flattree"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
)

// tracer writes to trace with key 'flattree'
func tracer() tracing.Trace {
	return tracing.Select("flattree")
}

// Elements returns the element children of n as a static children source.
func Elements(n *html.Node) flattree.Children[*html.Node] {
	if n == nil {
		return nil
	}
	var children flattree.Slice[*html.Node]
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, c)
		}
	}
	return children
}

// IsLeaf reports whether n has no element children.
func IsLeaf(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return false
		}
	}
	return true
}

// Options returns model options for element trees, using settings for the
// scalar part.
func Options(settings flattree.Settings) flattree.Options[*html.Node] {
	return flattree.Options[*html.Node]{
		Children: Elements,
		IsLeaf:   IsLeaf,
		Settings: settings,
	}
}

// Outline parses an HTML document and returns a model with the <html>
// element as its root.
func Outline(input io.Reader, settings flattree.Settings) (*flattree.Model[*html.Node], error) {
	doc, err := html.Parse(input)
	if err != nil {
		return nil, err
	}
	m, err := flattree.New(Options(settings))
	if err != nil {
		return nil, err
	}
	roots := Elements(doc)
	tracer().Debugf("HTML document has %d root elements", roots.Len())
	if err := m.SetRootSource(roots); err != nil {
		return nil, err
	}
	return m, nil
}

// OutlineFragment parses an HTML fragment and returns a model with the
// top-level elements of the fragment as roots.
func OutlineFragment(input io.Reader, settings flattree.Settings) (*flattree.Model[*html.Node], error) {
	nodes, err := html.ParseFragment(input, nil)
	if err != nil {
		return nil, err
	}
	m, err := flattree.New(Options(settings))
	if err != nil {
		return nil, err
	}
	var roots []*html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			roots = append(roots, n)
		}
	}
	if err := m.SetRoots(roots...); err != nil {
		return nil, err
	}
	return m, nil
}

// InnerText returns the textual content of an HTML element and all its
// descendents. It resembles the text produced by
//
//	document.getElementById("myNode").innerText
//
// in JavaScript (except that InnerText cannot respect CSS styling
// suppressing the visibility of the node's descendents).
func InnerText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Label describes an element in CSS selector notation, e.g. "div#main.note",
// followed by the beginning of its own text, if any.
func Label(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			fmt.Fprintf(&b, "#%s", a.Val)
		case "class":
			for _, class := range strings.Fields(a.Val) {
				fmt.Fprintf(&b, ".%s", class)
			}
		}
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	if t := strings.Join(strings.Fields(text.String()), " "); t != "" {
		fmt.Fprintf(&b, " %q", t)
	}
	return b.String()
}
