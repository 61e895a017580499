package html

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/flattree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/net/html"
)

var page = `<!DOCTYPE html>
<html>
<head><title>Fruit</title></head>
<body>
  <h1 id="top" class="big title">Fruit   list</h1>
  <ul>
    <li>Apples</li>
    <li>Pears <em>and</em> plums</li>
  </ul>
  <!-- comment -->
</body>
</html>
`

func labels[T comparable](m *flattree.Model[T], label func(T) string) []string {
	var l []string
	for item := range m.Snapshot().Items() {
		l = append(l, label(item))
	}
	return l
}

func tag(n *html.Node) string { return n.Data }

func TestOutline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	m, err := Outline(strings.NewReader(page), flattree.Settings{MaxAutoExpandDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"html", "head", "body"}, labels(m, tag)); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
	if err := m.ExpandAll(); err != nil {
		t.Fatal(err)
	}
	expected := []string{"html", "head", "title", "body", "h1", "ul", "li", "li", "em"}
	if diff := cmp.Diff(expected, labels(m, tag)); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
	title, _ := m.ItemAt(2)
	if node := m.NodesOf(title)[0]; !node.IsLeaf() || node.IsExpanded() {
		t.Errorf("expected <title> to be a collapsed leaf")
	}
	if err := m.Check(); err != nil {
		t.Error(err)
	}
}

func TestOutlineFragment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	m, err := OutlineFragment(strings.NewReader(`<p>one</p>text<div><span>two</span></div>`),
		flattree.Settings{AutoExpandRoot: true})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"p", "div", "span"}, labels(m, tag)); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestLabelAndText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	m, err := Outline(strings.NewReader(page), flattree.Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.ExpandAll(); err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"html", "head", `title "Fruit"`, "body",
		`h1#top.big.title "Fruit list"`, "ul", `li "Apples"`, `li "Pears plums"`, `em "and"`,
	}
	if diff := cmp.Diff(expected, labels(m, Label)); diff != "" {
		t.Errorf("unexpected labels (-want +got):\n%s", diff)
	}
	li, _ := m.ItemAt(7)
	if text := InnerText(li); text != "Pears and plums" {
		t.Errorf("expected inner text 'Pears and plums', is %q", text)
	}
	if InnerText(nil) != "" || Label(nil) != "" {
		t.Errorf("expected empty text for nil")
	}
}
