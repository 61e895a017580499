package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"slices"
)

// Rebuild re-reads the children of every visible, expanded node from its
// source, re-sorts them if a sibling comparer is configured and replaces
// the flattened view. Rebuilding an unchanged model is a no-op.
func (m *Model[T]) Rebuild() error {
	return m.update(m.rebuild)
}

func (m *Model[T]) rebuild() (FlattenedChanged, error) {
	var ev FlattenedChanged
	m.stats.FullRebuilds++
	w := m.newWalker()
	w.force = true
	if err := w.visit(m.sentinel); err != nil {
		return m.recover(), err
	}
	w.commit()
	old := m.index.nodes()
	m.subscribe(m.sentinel)
	m.resubscribe(old, w.rows)
	if slices.Equal(old, w.rows) {
		return ev, nil
	}
	tracer().Debugf("full rebuild: %d rows → %d rows", len(old), len(w.rows))
	m.index.reset(w.rows)
	ev.removed(0, len(old))
	ev.added(0, len(w.rows))
	return ev, nil
}

// replaceRoots lays out a new tree for the roots in src. On failure the
// current tree is kept.
func (m *Model[T]) replaceRoots(src Children[T]) (FlattenedChanged, error) {
	var ev FlattenedChanged
	sentinel := m.newSentinel(src)
	w := m.newWalker()
	if err := w.visit(sentinel); err != nil {
		m.destroy(sentinel.kids.slice()...)
		return ev, err
	}
	w.commit()
	oldCount := m.index.len()
	m.destroy(m.sentinel.kids.slice()...)
	m.unsubscribe(m.sentinel)
	m.sentinel = sentinel
	m.index.reset(w.rows)
	m.subscribe(sentinel)
	m.resubscribe(nil, w.rows)
	m.stats.FullRebuilds++
	ev.removed(0, oldCount)
	ev.added(0, len(w.rows))
	return ev, nil
}

// relayout recomputes the visible subtree of the live node n and replaces
// its rows in the flattened view. If resync is set, the children of n are
// re-read from source first.
func (m *Model[T]) relayout(n *Node[T], resync bool) (FlattenedChanged, error) {
	var ev FlattenedChanged
	assert(n.isLive(), "relayout of a node which is not live")
	m.stats.LocalRebuilds++
	pos := n.position() + 1
	oldSize := n.visibleDesc
	if resync && n.materialized {
		if err := m.reconcile(n); err != nil {
			return m.recover(), err
		}
	}
	w := m.newWalker()
	if err := w.visit(n); err != nil {
		return m.recover(), err
	}
	w.commit()
	old := m.index.span(pos, oldSize)
	m.subscribe(n)
	m.resubscribe(old, w.rows)
	if slices.Equal(old, w.rows) {
		return ev, nil
	}
	if _, err := m.index.remove(pos, oldSize); err != nil {
		return m.recover(), err
	}
	if err := m.index.insert(pos, w.rows); err != nil {
		return m.recover(), err
	}
	if n.parent != nil {
		n.parent.propagate(len(w.rows) - oldSize)
	}
	tracer().P("node", n).Debugf("relayout: %d rows → %d rows at %d", oldSize, len(w.rows), pos)
	ev.removed(pos, oldSize)
	ev.added(pos, len(w.rows))
	return ev, nil
}

// recover lays out the flattened view from the materialized nodes without
// consulting any children source. It restores a consistent state after a
// failed update and returns the resulting edit.
func (m *Model[T]) recover() FlattenedChanged {
	var ev FlattenedChanged
	w := m.newWalker()
	w.frozen = true
	err := w.visit(m.sentinel)
	assert(err == nil, "layout of materialized nodes failed")
	w.commit()
	old := m.index.nodes()
	m.resubscribe(old, w.rows)
	if slices.Equal(old, w.rows) {
		return ev
	}
	tracer().Infof("flattree: recovered flattened view after failed update")
	m.index.reset(w.rows)
	ev.removed(0, len(old))
	ev.added(0, len(w.rows))
	return ev
}

// --- Layout ----------------------------------------------------------------

// walker collects the visible descendants of a node in pre-order.
// Visible-descendant counts are collected on the way and applied by commit,
// so a failed walk leaves all counts untouched.
type walker[T comparable] struct {
	m      *Model[T]
	rows   []*Node[T]
	counts []nodeCount[T]
	seen   map[*Node[T]]struct{}
	force  bool // re-read the children of every expanded node
	frozen bool // do not read children sources at all
}

type nodeCount[T comparable] struct {
	node  *Node[T]
	count int
}

func (m *Model[T]) newWalker() *walker[T] {
	return &walker[T]{m: m, seen: make(map[*Node[T]]struct{})}
}

// visit appends the visible descendants of n to w.rows.
func (w *walker[T]) visit(n *Node[T]) error {
	if !n.expanded {
		if !w.frozen && !w.m.opts.VirtualizeChildren {
			return w.m.materialize(n)
		}
		return nil
	}
	if !w.frozen {
		if err := w.m.sync(n, w.force); err != nil {
			return err
		}
	}
	start := len(w.rows)
	for _, c := range n.kids.slice() {
		if _, ok := w.seen[c]; ok || c.parent != n {
			return fmt.Errorf("%w: node %v reached twice", ErrCyclicStructure, c)
		}
		w.seen[c] = struct{}{}
		w.rows = append(w.rows, c)
		if err := w.visit(c); err != nil {
			return err
		}
	}
	w.counts = append(w.counts, nodeCount[T]{node: n, count: len(w.rows) - start})
	return nil
}

func (w *walker[T]) commit() {
	for _, nc := range w.counts {
		nc.node.setVisibleDesc(nc.count)
	}
}

// --- Children --------------------------------------------------------------

// newNode creates a node for item as a child of parent. The node is not
// yet linked into the children of parent.
func (m *Model[T]) newNode(parent *Node[T], item T) *Node[T] {
	n := &Node[T]{
		item:   item,
		parent: parent,
		depth:  parent.depth + 1,
		model:  m,
	}
	n.fix()
	n.expanded = m.initiallyExpanded(n)
	m.nodes[item] = append(m.nodes[item], n)
	return n
}

func (m *Model[T]) initiallyExpanded(n *Node[T]) bool {
	if m.opts.IsLeaf != nil && m.opts.IsLeaf(n.item) {
		return false
	}
	if m.opts.IsExpanded != nil {
		return m.opts.IsExpanded(n.item)
	}
	auto := (m.opts.AutoExpandRoot && n.depth == 0) || n.depth < m.opts.MaxAutoExpandDepth
	if auto && m.opts.SetExpanded != nil {
		m.opts.SetExpanded(n.item, true)
	}
	return auto
}

// sourceOf selects the children source of n. A node which is subscribed to
// its source keeps it.
func (m *Model[T]) sourceOf(n *Node[T]) (Children[T], error) {
	if n.parent == nil || n.cancel != nil {
		return n.source, nil
	}
	src := m.opts.Children(n.item)
	if src == nil {
		src = Slice[T](nil)
	}
	if m.opts.RequireNotifications && !isObservable(src) {
		return nil, fmt.Errorf("%w: children of %v are not observable", ErrConfiguration, n.item)
	}
	n.source = src
	return src, nil
}

// orderFor returns the sibling comparer active for the children of n.
func (m *Model[T]) orderFor(n *Node[T]) func(a, b T) int {
	if n.parent != nil && m.opts.SiblingOrderFor != nil {
		if cmp := m.opts.SiblingOrderFor(n.item); cmp != nil {
			return cmp
		}
	}
	return m.opts.SiblingOrder
}

func (m *Model[T]) sortChildren(n *Node[T], children []*Node[T]) {
	if cmp := m.orderFor(n); cmp != nil {
		slices.SortStableFunc(children, func(a, b *Node[T]) int {
			return cmp(a.item, b.item)
		})
	}
}

// sync makes sure the children of n have been read from source. Children
// of a node which has not followed the notifications of its source since
// they were read are re-read.
func (m *Model[T]) sync(n *Node[T], force bool) error {
	if !n.materialized {
		return m.materialize(n)
	}
	if force || (n.cancel == nil && n.synced != m.epoch) {
		return m.reconcile(n)
	}
	return nil
}

// materialize creates the child nodes of n. Unless children are
// virtualized, the whole subtree below n is materialized.
func (m *Model[T]) materialize(n *Node[T]) error {
	if n.materialized {
		return nil
	}
	src, err := m.sourceOf(n)
	if err != nil {
		return err
	}
	items := readAll(src)
	children := make([]*Node[T], 0, len(items))
	for _, item := range items {
		if n.hasAncestorItem(item) {
			m.destroy(children...)
			return fmt.Errorf("%w: %w: item %v is its own ancestor", ErrConfiguration, ErrCyclicStructure, item)
		}
		children = append(children, m.newNode(n, item))
	}
	m.sortChildren(n, children)
	n.kids.reset(children)
	n.materialized = true
	n.synced = m.epoch
	if m.opts.VirtualizeChildren {
		return nil
	}
	for _, c := range children {
		if err = m.materialize(c); err != nil {
			break
		}
	}
	if n.expanded {
		n.setVisibleDesc(n.countChildren())
	}
	return err
}

// reconcile re-reads the children of n from source. Nodes of items which
// are still present are kept, together with their subtrees and expansion
// state.
func (m *Model[T]) reconcile(n *Node[T]) error {
	src, err := m.sourceOf(n)
	if err != nil {
		return err
	}
	items := readAll(src)
	pool := make(map[T][]*Node[T], n.kids.len())
	for _, c := range n.kids.slice() {
		pool[c.item] = append(pool[c.item], c)
	}
	children := make([]*Node[T], 0, len(items))
	var created []*Node[T]
	for _, item := range items {
		if q := pool[item]; len(q) > 0 {
			children = append(children, q[0])
			pool[item] = q[1:]
			continue
		}
		if n.hasAncestorItem(item) {
			m.destroy(created...)
			return fmt.Errorf("%w: %w: item %v is its own ancestor", ErrConfiguration, ErrCyclicStructure, item)
		}
		c := m.newNode(n, item)
		created = append(created, c)
		children = append(children, c)
	}
	m.sortChildren(n, children)
	for _, q := range pool {
		m.destroy(q...)
	}
	n.kids.reset(children)
	n.synced = m.epoch
	if len(created) > 0 || len(pool) > 0 {
		tracer().P("node", n).Debugf("reconciled children: %d new, %d kept", len(created), len(children)-len(created))
	}
	if !m.opts.VirtualizeChildren {
		for _, c := range created {
			if err = m.materialize(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// destroy removes nodes and their materialized subtrees from the model.
// Nodes must already be unlinked from the flattened view.
func (m *Model[T]) destroy(nodes ...*Node[T]) {
	for _, n := range nodes {
		m.walkMaterialized(n, func(d *Node[T]) {
			m.unsubscribe(d)
			d.dead = true
			d.left, d.right, d.up = nil, nil, nil
			rest := slices.DeleteFunc(m.nodes[d.item], func(x *Node[T]) bool {
				return x == d
			})
			if len(rest) == 0 {
				delete(m.nodes, d.item)
			} else {
				m.nodes[d.item] = rest
			}
		})
	}
}

// --- Subscriptions ---------------------------------------------------------

func (m *Model[T]) subscribe(n *Node[T]) {
	if n.cancel != nil || n.dead {
		return
	}
	obs, ok := n.source.(Observable[T])
	if !ok {
		return
	}
	n.cancel = obs.Subscribe(func(ch Change[T]) {
		m.notified(n, ch)
	})
}

func (m *Model[T]) unsubscribe(n *Node[T]) {
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

// resubscribe updates subscriptions after the rows old have been replaced
// by the rows new. Expanded rows are subscribed, all others are not.
func (m *Model[T]) resubscribe(old, new []*Node[T]) {
	if len(old) > 0 {
		keep := make(map[*Node[T]]struct{}, len(new))
		for _, n := range new {
			keep[n] = struct{}{}
		}
		for _, n := range old {
			if _, ok := keep[n]; !ok {
				m.unsubscribe(n)
			}
		}
	}
	for _, n := range new {
		if n.expanded {
			m.subscribe(n)
		} else {
			m.unsubscribe(n)
		}
	}
}
