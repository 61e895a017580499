package flattree

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// tnode is a test item with an observable list of children.
type tnode struct {
	name     string
	children *List[*tnode]
}

func tn(name string, children ...*tnode) *tnode {
	return &tnode{name: name, children: NewList(children...)}
}

func (n *tnode) String() string { return n.name }

func tnodeChildren(n *tnode) Children[*tnode] { return n.children }

func testOptions() Options[*tnode] {
	return Options[*tnode]{Children: tnodeChildren}
}

func newTestModel(t testing.TB, opts Options[*tnode], roots ...*tnode) *Model[*tnode] {
	t.Helper()
	m, err := New(opts)
	if err != nil {
		t.Fatalf("cannot create model: %v", err)
	}
	if err := m.SetRoots(roots...); err != nil {
		t.Fatalf("cannot set roots: %v", err)
	}
	return m
}

func rowNames(m *Model[*tnode]) []string {
	var names []string
	for item := range m.Snapshot().Items() {
		names = append(names, item.name)
	}
	return names
}

func assertRows(t *testing.T, m *Model[*tnode], expected ...string) {
	t.Helper()
	if diff := cmp.Diff(expected, rowNames(m)); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	if m.Count() != len(expected) {
		t.Fatalf("expected count to be %d, is %d", len(expected), m.Count())
	}
	if err := m.Check(); err != nil {
		t.Fatalf("model check failed: %v", err)
	}
}

// recorder collects events and mirrors the flattened view by applying
// them, the way a list widget would.
type recorder struct {
	m      *Model[*tnode]
	events []FlattenedChanged
	mirror []string
}

func record(m *Model[*tnode]) *recorder {
	r := &recorder{m: m, mirror: rowNames(m)}
	m.Subscribe(r.apply)
	return r
}

func (r *recorder) apply(ev FlattenedChanged) {
	r.events = append(r.events, ev)
	removed := slices.Clone(ev.Removed)
	slices.SortFunc(removed, func(a, b Range) int { return b.Start - a.Start })
	for _, rg := range removed {
		r.mirror = slices.Delete(r.mirror, rg.Start, rg.Start+rg.Count)
	}
	for _, mv := range ev.Moved {
		block := slices.Clone(r.mirror[mv.From : mv.From+mv.Count])
		r.mirror = slices.Delete(r.mirror, mv.From, mv.From+mv.Count)
		r.mirror = slices.Insert(r.mirror, mv.To, block...)
	}
	view := r.m.Snapshot()
	for _, rg := range ev.Added {
		var names []string
		for _, row := range view.Rows(rg.Start, rg.Start+rg.Count) {
			names = append(names, row.Item.name)
		}
		r.mirror = slices.Insert(r.mirror, rg.Start, names...)
	}
}

func (r *recorder) reset() {
	r.events = nil
}

func (r *recorder) assertMirror(t *testing.T) {
	t.Helper()
	if diff := cmp.Diff(rowNames(r.m), r.mirror); diff != "" {
		t.Fatalf("mirror out of sync with model (-model +mirror):\n%s", diff)
	}
}

func (r *recorder) assertEvents(t *testing.T, expected ...FlattenedChanged) {
	t.Helper()
	if diff := cmp.Diff(expected, r.events); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	r.assertMirror(t)
}

// sample builds R{A, B{B1, B2}, C}.
func sample() (r, a, b, c *tnode) {
	a, c = tn("A"), tn("C")
	b = tn("B", tn("B1"), tn("B2"))
	r = tn("R", a, b, c)
	return
}

// --- Tests -----------------------------------------------------------------

func TestNewRequiresChildrenSelector(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	_, err := New(Options[*tnode]{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	opts := testOptions()
	opts.MaxAutoExpandDepth = -1
	if _, err = New(opts); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for negative depth, got %v", err)
	}
}

func TestEmptyModel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	m, err := New(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if m.Count() != 0 {
		t.Errorf("expected empty model, has %d rows", m.Count())
	}
	if _, err := m.ItemAt(0); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected out of bounds error, got %v", err)
	}
	if err := m.Check(); err != nil {
		t.Error(err)
	}
}

func TestExpandRoot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r := tn("R", tn("A"), tn("B"), tn("C"))
	m := newTestModel(t, testOptions(), r)
	rec := record(m)
	assertRows(t, m, "R")
	if err := m.Expand(r); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "C")
	rec.assertEvents(t, FlattenedChanged{Added: []Range{{Start: 1, Count: 3}}})
	//
	opts := testOptions()
	opts.AutoExpandRoot = true
	m = newTestModel(t, opts, r)
	assertRows(t, m, "R", "A", "B", "C")
}

func TestItemAccess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, c := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C")
	item, err := m.ItemAt(5)
	if err != nil || item != c {
		t.Errorf("expected C at row 5, got %v (%v)", item, err)
	}
	if pos, ok := m.IndexOf(b); !ok || pos != 2 {
		t.Errorf("expected B at row 2, got %d/%v", pos, ok)
	}
	node, err := m.NodeAt(2)
	if err != nil {
		t.Fatal(err)
	}
	if node.Item() != b || node.Depth() != 1 || node.Parent().Item() != r {
		t.Errorf("unexpected node at row 2: %v, depth %d", node, node.Depth())
	}
	if node.VisibleDescendants() != 2 || !node.IsExpanded() || node.IsLeaf() {
		t.Errorf("unexpected state of B: %d descendants", node.VisibleDescendants())
	}
	if m.Roots()[0].Parent() != nil {
		t.Errorf("expected root to have no parent")
	}
	if _, err := m.ItemAt(6); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected out of bounds error, got %v", err)
	}
	if m.Snapshot().MaxDepth() != 2 {
		t.Errorf("expected max depth 2, is %d", m.Snapshot().MaxDepth())
	}
}

func TestInsertChildIncrementally(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, _, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	before := m.Stats()
	if err := r.children.Insert(1, tn("X")); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "X", "B", "B1", "B2", "C")
	rec.assertEvents(t, FlattenedChanged{Added: []Range{{Start: 2, Count: 1}}})
	stats := m.Stats()
	if stats.FastPath != before.FastPath+1 || stats.FullRebuilds != before.FullRebuilds ||
		stats.LocalRebuilds != before.LocalRebuilds {
		t.Errorf("expected a fast path edit only, stats are %+v", stats)
	}
}

func TestInsertSubtree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, _, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	// X is at depth 1 and starts expanded, Y at depth 2 does not
	x := tn("X", tn("X1"), tn("Y", tn("Y1")))
	r.children.Append(x)
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C", "X", "X1", "Y")
	rec.assertEvents(t, FlattenedChanged{Added: []Range{{Start: 6, Count: 3}}})
}

func TestRemoveExpandedChild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	if b.children.Subscribers() != 1 {
		t.Fatalf("expected B's children to be observed")
	}
	if err := r.children.Remove(1, 1); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "C")
	rec.assertEvents(t, FlattenedChanged{Removed: []Range{{Start: 2, Count: 3}}})
	if b.children.Subscribers() != 0 {
		t.Errorf("expected subscription of removed node to be released")
	}
	if len(m.NodesOf(b)) != 0 {
		t.Errorf("expected removed item to be unknown")
	}
	if err := m.Expand(b); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("expected unknown item error, got %v", err)
	}
}

func TestMoveKeepsNodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	bnode := m.NodesOf(b)[0]
	before := m.Stats()
	if err := r.children.Move(1, 2, 1); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "C", "B", "B1", "B2")
	rec.assertEvents(t, FlattenedChanged{Moved: []MovedRange{{From: 2, To: 3, Count: 3}}})
	if m.NodesOf(b)[0] != bnode || !bnode.IsExpanded() {
		t.Errorf("expected B's node to survive the move expanded")
	}
	if m.Stats().FastPath != before.FastPath+1 || m.Stats().LocalRebuilds != before.LocalRebuilds {
		t.Errorf("expected move to take the fast path, stats are %+v", m.Stats())
	}
	// and back to front
	rec.reset()
	if err := r.children.Move(2, 0, 1); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "B", "B1", "B2", "A", "C")
	rec.assertEvents(t, FlattenedChanged{Moved: []MovedRange{{From: 3, To: 1, Count: 3}}})
}

func TestMoveBelowCollapsedNode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	opts := testOptions()
	opts.AutoExpandRoot = true
	m := newTestModel(t, opts, r)
	rec := record(m)
	assertRows(t, m, "R", "A", "B", "C")
	if err := b.children.Move(0, 1, 1); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "C")
	rec.assertEvents(t)
	if err := m.Expand(b); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "B2", "B1", "C")
	rec.assertMirror(t)
}

func TestReplaceChild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, _, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	if err := r.children.Set(1, tn("Y", tn("Y1"))); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "Y", "Y1", "C")
	rec.assertEvents(t, FlattenedChanged{
		Added:   []Range{{Start: 2, Count: 2}},
		Removed: []Range{{Start: 2, Count: 3}},
	})
}

func TestResetKeepsExpansionState(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, a, b, c := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	r.children.Reset(c, b, a)
	assertRows(t, m, "R", "C", "B", "B1", "B2", "A")
	rec.assertMirror(t)
	if m.Stats().Fallbacks != 1 {
		t.Errorf("expected reset to fall back to a rebuild, stats are %+v", m.Stats())
	}
}

func TestSiblingOrderForcesRebuild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r := tn("R", tn("b"), tn("d"))
	opts := testOptions()
	opts.AutoExpandRoot = true
	opts.SiblingOrder = func(x, y *tnode) int { return strings.Compare(x.name, y.name) }
	m := newTestModel(t, opts, r)
	rec := record(m)
	before := m.Stats()
	r.children.Append(tn("c"))
	r.children.Insert(0, tn("e"))
	assertRows(t, m, "R", "b", "c", "d", "e")
	rec.assertMirror(t)
	stats := m.Stats()
	if stats.FastPath != before.FastPath {
		t.Errorf("expected no fast path edits with a comparer, stats are %+v", stats)
	}
	if stats.LocalRebuilds != before.LocalRebuilds+2 || stats.Fallbacks != before.Fallbacks+2 {
		t.Errorf("expected two localized rebuilds, stats are %+v", stats)
	}
}

func TestSiblingOrderForParent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	sorted := tn("sorted", tn("z"), tn("y"))
	plain := tn("plain", tn("z"), tn("y"))
	opts := testOptions()
	opts.AutoExpandRoot = true
	opts.SiblingOrderFor = func(parent *tnode) func(a, b *tnode) int {
		if parent == sorted {
			return func(a, b *tnode) int { return strings.Compare(a.name, b.name) }
		}
		return nil
	}
	m := newTestModel(t, opts, sorted, plain)
	assertRows(t, m, "sorted", "y", "z", "plain", "z", "y")
	plain.children.Append(tn("x"))
	if m.Stats().FastPath != 1 {
		t.Errorf("expected unsorted parent to take the fast path")
	}
	assertRows(t, m, "sorted", "y", "z", "plain", "z", "y", "x")
}

func TestCollapseExpandRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	rows := rowNames(m)
	if err := m.Collapse(r); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R")
	if r.children.Subscribers() != 0 || b.children.Subscribers() != 0 {
		t.Errorf("expected collapsed subtree to be unsubscribed")
	}
	bnode := m.NodesOf(b)[0]
	if !bnode.IsExpanded() || bnode.IsVisible() {
		t.Errorf("expected B to stay expanded, but hidden")
	}
	if err := m.Expand(r); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, rows...)
	rec.assertEvents(t,
		FlattenedChanged{Removed: []Range{{Start: 1, Count: 5}}},
		FlattenedChanged{Added: []Range{{Start: 1, Count: 5}}},
	)
	if m.NodesOf(b)[0] != bnode {
		t.Errorf("expected nodes to be kept while collapsed")
	}
}

func TestToggleExpand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	opts := testOptions()
	opts.AutoExpandRoot = true
	m := newTestModel(t, opts, r)
	if err := m.ToggleExpand(b); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C")
	if err := m.ToggleExpand(b); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "C")
	// expanding an expanded node is a no-op
	rec := record(m)
	if err := m.Expand(r); err != nil {
		t.Fatal(err)
	}
	rec.assertEvents(t)
}

func TestExpandHiddenNode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	m := newTestModel(t, testOptions(), r)
	rec := record(m)
	if err := m.Expand(b); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R")
	rec.assertEvents(t)
	if err := m.Expand(r); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C")
	rec.assertMirror(t)
}

func TestChangesWhileCollapsed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, a, b, _ := sample()
	opts := testOptions()
	opts.AutoExpandRoot = true
	m := newTestModel(t, opts, r)
	if err := m.Collapse(r); err != nil {
		t.Fatal(err)
	}
	r.children.Remove(0, 1)
	r.children.Append(tn("D"), a)
	b.children.Append(tn("B3"))
	if err := m.Expand(r); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "B", "C", "D", "A")
	if err := m.Expand(b); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "B", "B1", "B2", "B3", "C", "D", "A")
}

func TestSharedItems(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	shared := tn("S", tn("S1"))
	p, q := tn("P", shared), tn("Q", shared)
	opts := testOptions()
	opts.AutoExpandRoot = true
	m := newTestModel(t, opts, p, q)
	assertRows(t, m, "P", "S", "Q", "S")
	if err := m.Expand(shared); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "P", "S", "S1", "Q", "S", "S1")
	shared.children.Append(tn("S2"))
	assertRows(t, m, "P", "S", "S1", "S2", "Q", "S", "S1", "S2")
	if pos, ok := m.IndexOf(shared); !ok || pos != 1 {
		t.Errorf("expected first occurrence of S at row 1, got %d", pos)
	}
}

func TestObservableRoots(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	roots := NewList(tn("A", tn("A1")), tn("B"))
	m, err := New(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetRootSource(roots); err != nil {
		t.Fatal(err)
	}
	rec := record(m)
	roots.Insert(1, tn("X"))
	assertRows(t, m, "A", "X", "B")
	rec.assertEvents(t, FlattenedChanged{Added: []Range{{Start: 1, Count: 1}}})
	if err := m.SetRoots(); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m)
	if roots.Subscribers() != 0 {
		t.Errorf("expected replaced root list to be unsubscribed")
	}
}

func TestUnsupportedChangeFallsBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, _, _ := sample()
	opts := testOptions()
	opts.AutoExpandRoot = true
	m := newTestModel(t, opts, r)
	rec := record(m)
	rnode := m.Roots()[0]
	// change the list behind the model's back, then report without indices
	x := tn("X")
	r.children.items = append(r.children.items, x)
	err := m.ApplyChange(rnode, Change[*tnode]{
		Action:           ActionAdd,
		OldStartingIndex: NoIndex,
		NewStartingIndex: NoIndex,
		NewItems:         []*tnode{x},
	})
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "C", "X")
	rec.assertMirror(t)
	if m.Stats().Fallbacks != 1 {
		t.Errorf("expected fallback, stats are %+v", m.Stats())
	}
}

func TestStaticChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	tree := map[string][]string{
		"root": {"a", "b"},
		"a":    {"a1", "a2"},
	}
	m, err := New(Options[string]{
		Children: func(s string) Children[string] { return Slice[string](tree[s]) },
	})
	if err != nil {
		t.Fatal(err)
	}
	m.SetRoots("root")
	m.Expand("root")
	m.Expand("a")
	if m.Count() != 5 {
		t.Fatalf("expected 5 rows, have %d", m.Count())
	}
	tree["a"] = []string{"a2"}
	// static sources cannot notify; a change is routed explicitly
	anode := m.NodesOf("a")[0]
	if err := m.ApplyChange(anode, RemoveChange(0, "a1")); err != nil {
		t.Fatal(err)
	}
	item, _ := m.ItemAt(2)
	if m.Count() != 4 || item != "a2" {
		t.Errorf("expected a2 at row 2 of 4, have %q of %d", item, m.Count())
	}
	if err := m.Check(); err != nil {
		t.Error(err)
	}
}

func TestInvalidChange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, a, _, c := sample()
	x := tn("X")
	opts := testOptions()
	opts.AutoExpandRoot = true
	m := newTestModel(t, opts, r)
	rnode := m.Roots()[0]
	err := m.ApplyChange(rnode, RemoveChange(5, a))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected invalid state for out of bounds remove, got %v", err)
	}
	err = m.ApplyChange(rnode, RemoveChange(1, a))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected invalid state for mismatching item, got %v", err)
	}
	err = m.ApplyChange(rnode, MoveChange(0, 3, a))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected invalid state for out of bounds move, got %v", err)
	}
	err = m.ApplyChange(rnode, AddChange(5, x))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected invalid state for add past the last child, got %v", err)
	}
	err = m.ApplyChange(rnode, ReplaceChange(2, []*tnode{c, x}, []*tnode{x}))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected invalid state for out of bounds replace, got %v", err)
	}
	if len(m.NodesOf(x)) != 0 {
		t.Errorf("expected no node for X after failed changes")
	}
	assertRows(t, m, "R", "A", "B", "C")
}

func TestCyclicStructure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	a, b := tn("a"), tn("b")
	a.children.Append(b)
	b.children.Append(a)
	m, err := New(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoots(a); !errors.Is(err, ErrCyclicStructure) {
		t.Fatalf("expected cyclic structure error, got %v", err)
	}
	if m.Count() != 0 || len(m.NodesOf(a)) != 0 {
		t.Errorf("expected failed roots to leave model empty")
	}
	// adding an ancestor below itself is reported via OnError
	var reported error
	opts := testOptions()
	opts.AutoExpandRoot = true
	opts.OnError = func(err error) { reported = err }
	r := tn("R", tn("A"))
	m = newTestModel(t, opts, r)
	r.children.Append(r)
	if !errors.Is(reported, ErrCyclicStructure) || !errors.Is(m.Err(), ErrCyclicStructure) {
		t.Errorf("expected cyclic structure error to be reported, got %v", reported)
	}
	assertRows(t, m, "R", "A")
}

func TestReentrantUpdate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	var reported error
	opts := testOptions()
	opts.AutoExpandRoot = true
	opts.OnError = func(err error) { reported = err }
	fired := false
	opts.SetExpanded = func(item *tnode, expanded bool) {
		if item == b && expanded && !fired {
			fired = true
			r.children.Append(tn("late"))
		}
	}
	m := newTestModel(t, opts, r)
	rec := record(m)
	if err := m.Expand(b); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(reported, ErrReentrantUpdate) || !errors.Is(reported, ErrInvalidState) {
		t.Fatalf("expected reentrant update to be reported, got %v", reported)
	}
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C", "late")
	rec.assertMirror(t)
	if m.Stats().ReentrantDrops != 1 {
		t.Errorf("expected one dropped notification, stats are %+v", m.Stats())
	}
}

func TestExpansionBridge(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, a, b, _ := sample()
	state := map[*tnode]bool{r: true, b: true}
	opts := testOptions()
	opts.IsExpanded = func(n *tnode) bool { return state[n] }
	opts.SetExpanded = func(n *tnode, expanded bool) { state[n] = expanded }
	m := newTestModel(t, opts, r)
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C")
	m.Collapse(b)
	if state[b] {
		t.Errorf("expected collapse to be written back")
	}
	m.Expand(a)
	if !state[a] {
		t.Errorf("expected expand to be written back")
	}
}

func TestExpansionBridgeOverridesAutoExpand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	state := map[*tnode]bool{b: true}
	opts := testOptions()
	opts.AutoExpandRoot = true
	opts.MaxAutoExpandDepth = 2
	opts.IsExpanded = func(n *tnode) bool { return state[n] }
	opts.SetExpanded = func(n *tnode, expanded bool) { state[n] = expanded }
	m := newTestModel(t, opts, r)
	assertRows(t, m, "R")
	if state[r] {
		t.Errorf("expected collapsed root to stay collapsed in item state")
	}
	if err := m.Expand(r); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C")
}

func TestAutoExpandDepth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	deep := tn("0", tn("1", tn("2", tn("3"))))
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, deep)
	assertRows(t, m, "0", "1", "2")
}

func TestVirtualizeChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	calls := map[string]int{}
	opts := testOptions()
	opts.AutoExpandRoot = true
	opts.VirtualizeChildren = true
	opts.Children = func(n *tnode) Children[*tnode] {
		calls[n.name]++
		return n.children
	}
	m := newTestModel(t, opts, r)
	if calls["B"] != 0 {
		t.Errorf("expected children of collapsed B not to be read")
	}
	if bnode := m.NodesOf(b)[0]; len(bnode.Children()) != 0 {
		t.Errorf("expected children of B not to be materialized")
	}
	m.Expand(b)
	if calls["B"] != 1 {
		t.Errorf("expected children of B to be read once, were read %d times", calls["B"])
	}
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C")
}

func TestRequireNotifications(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	m, err := New(Options[string]{
		Children: func(s string) Children[string] { return Slice[string]{s + "1"} },
		Settings: Settings{AutoExpandRoot: true, RequireNotifications: true, VirtualizeChildren: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoots("x"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected configuration error for static children, got %v", err)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, _, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	rec := record(m)
	rows := rowNames(m)
	for range 2 {
		if err := m.Rebuild(); err != nil {
			t.Fatal(err)
		}
	}
	assertRows(t, m, rows...)
	rec.assertEvents(t)
	if m.Stats().FullRebuilds < 2 {
		t.Errorf("expected rebuilds to be counted")
	}
}

func TestExpandCollapseAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, _, _ := sample()
	r.children.Append(tn("D", tn("D1", tn("D2"))))
	m := newTestModel(t, testOptions(), r)
	rec := record(m)
	if err := m.ExpandAll(); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R", "A", "B", "B1", "B2", "C", "D", "D1", "D2")
	rec.assertMirror(t)
	if err := m.CollapseAll(); err != nil {
		t.Fatal(err)
	}
	assertRows(t, m, "R")
	rec.assertMirror(t)
	if r.children.Subscribers() != 0 {
		t.Errorf("expected collapsed nodes to be unsubscribed")
	}
}

func TestFlattenedIndex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, c := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	for i := range m.Count() {
		node, _ := m.NodeAt(i)
		if pos, ok := node.FlattenedIndex(); !ok || pos != i {
			t.Errorf("node %v at row %d reports index %d", node, i, pos)
		}
	}
	m.Collapse(b)
	b1 := m.NodesOf(b)[0].Children()[0]
	if _, ok := b1.FlattenedIndex(); ok {
		t.Errorf("expected hidden node to have no index")
	}
	if pos, _ := m.NodesOf(c)[0].FlattenedIndex(); pos != 3 {
		t.Errorf("expected C at row 3, is at %d", pos)
	}
}

func TestClose(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flattree")
	defer teardown()
	//
	r, _, b, _ := sample()
	opts := testOptions()
	opts.MaxAutoExpandDepth = 2
	m := newTestModel(t, opts, r)
	m.Close()
	if r.children.Subscribers() != 0 || b.children.Subscribers() != 0 {
		t.Errorf("expected close to release subscriptions")
	}
	if err := m.SetRoots(r); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected closed model to reject updates, got %v", err)
	}
}
