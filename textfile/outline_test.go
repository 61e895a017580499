package textfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/flattree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var fruit = `Fruit
    Apples
        Cox

	Pears
Vegetables
  Beans
`

func rows(m *flattree.Model[*Entry]) []string {
	var r []string
	for _, row := range m.Snapshot().Rows(0, m.Count()) {
		r = append(r, strings.Repeat(".", row.Depth)+row.Item.Text)
	}
	return r
}

func TestParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	outline, err := Parse(strings.NewReader(fruit))
	if err != nil {
		t.Fatal(err)
	}
	if outline.Len() != 2 {
		t.Fatalf("expected 2 top-level entries, have %d", outline.Len())
	}
	apples := outline.At(0).Children.At(0)
	if apples.Text != "Apples" || apples.Line != 2 || apples.Children.At(0).Text != "Cox" {
		t.Errorf("unexpected entry %v at line %d", apples, apples.Line)
	}
	// a tab counts as 4 positions
	if pears := outline.At(0).Children.At(1); pears.Text != "Pears" || pears.Line != 5 {
		t.Errorf("expected Pears to be a sibling of Apples, is %v", pears)
	}
	var b strings.Builder
	if err := Write(&b, outline, 2); err != nil {
		t.Fatal(err)
	}
	expected := "Fruit\n  Apples\n    Cox\n  Pears\nVegetables\n  Beans\n"
	if b.String() != expected {
		t.Errorf("unexpected output:\n%s", b.String())
	}
}

func TestModelFollowsEdits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	outline, err := Parse(strings.NewReader(fruit))
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(outline, flattree.Settings{MaxAutoExpandDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"Fruit", ".Apples", ".Pears", "Vegetables", ".Beans"}
	if diff := cmp.Diff(expected, rows(m)); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
	outline.At(0).Children.Append(NewEntry("Plums"))
	outline.Insert(1, NewEntry("Nuts", NewEntry("Walnut")))
	expected = []string{"Fruit", ".Apples", ".Pears", ".Plums", "Nuts", ".Walnut", "Vegetables", ".Beans"}
	if diff := cmp.Diff(expected, rows(m)); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
	if stats := m.Stats(); stats.FastPath != 2 {
		t.Errorf("expected 2 incremental edits, stats are %+v", stats)
	}
	if err := m.Check(); err != nil {
		t.Error(err)
	}
}

func TestLoad(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	dir := t.TempDir()
	if _, err := Load(dir); !errors.Is(err, ErrNotRegular) {
		t.Errorf("expected error for directory, got %v", err)
	}
	name := filepath.Join(dir, "fruit.txt")
	if err := os.WriteFile(name, []byte(fruit), 0o644); err != nil {
		t.Fatal(err)
	}
	outline, err := Load(name)
	if err != nil {
		t.Fatal(err)
	}
	if outline.Len() != 2 || outline.At(1).Text != "Vegetables" {
		t.Errorf("unexpected outline of %d entries", outline.Len())
	}
}
