package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"errors"
	"fmt"
)

// ApplyChange applies a change of the children collection of parent to the
// flattened view. A nil parent denotes the collection of roots.
//
// Changes for nodes which are not live (collapsed, or hidden by a collapsed
// ancestor) are dropped: their children are re-read from source when they
// become live. A change which is inconsistent with the model's state fails
// with ErrInvalidState and the flattened view is rebuilt.
//
// Subscribed sources do not need to call ApplyChange; it serves sources
// which cannot be observed.
func (m *Model[T]) ApplyChange(parent *Node[T], ch Change[T]) error {
	if parent == nil {
		parent = m.sentinel
	}
	return m.update(func() (FlattenedChanged, error) {
		ev, err := m.applyChange(parent, ch)
		if errors.Is(err, ErrInvalidState) {
			m.resync = true
		}
		return ev, err
	})
}

// notified is the handler for change notifications of subscribed sources.
func (m *Model[T]) notified(n *Node[T], ch Change[T]) {
	if err := m.ApplyChange(n, ch); err != nil {
		m.fail(err)
	}
}

func (m *Model[T]) applyChange(n *Node[T], ch Change[T]) (FlattenedChanged, error) {
	m.stats.Notifications++
	if n.dead || n.model != m {
		return FlattenedChanged{}, fmt.Errorf("%w: change %v for detached node %v", ErrInvalidState, ch, n)
	}
	if !n.materialized || !n.isLive() {
		tracer().P("node", n).Debugf("dropping %v for node which is not live", ch)
		return FlattenedChanged{}, nil
	}
	eligible := isObservable(n.source) && m.orderFor(n) == nil
	c := Classify(ch, eligible)
	tracer().P("node", n).Debugf("%v classified as %v", ch, c)
	switch c.Kind {
	case PositionalAdd:
		return m.insertChildren(n, c.NewIndex, ch.NewItems)
	case PositionalRemove:
		return m.removeChildren(n, c.OldIndex, ch.OldItems)
	case PositionalMove:
		return m.moveChildren(n, c.OldIndex, c.NewIndex, c.OldCount, ch.OldItems)
	case PositionalReplace:
		return m.replaceChildren(n, c.OldIndex, ch.OldItems, ch.NewItems)
	}
	m.stats.Fallbacks++
	return m.relayout(n, true)
}

// createChildren creates nodes for items as future children of p and
// collects them, together with their visible descendants, as rows.
// The nodes are not yet linked into p. On failure all created nodes are
// destroyed.
func (m *Model[T]) createChildren(p *Node[T], items []T) ([]*Node[T], *walker[T], error) {
	w := m.newWalker()
	created := make([]*Node[T], 0, len(items))
	for _, item := range items {
		if p.hasAncestorItem(item) {
			m.destroy(created...)
			return nil, nil, fmt.Errorf("%w: item %v is its own ancestor", ErrCyclicStructure, item)
		}
		c := m.newNode(p, item)
		created = append(created, c)
		w.rows = append(w.rows, c)
		if err := w.visit(c); err != nil {
			m.destroy(created...)
			return nil, nil, err
		}
	}
	return created, w, nil
}

// checkItems verifies that the children starting at child index at are
// the nodes of items.
func checkItems[T comparable](kids *childSeq[T], at int, items []T) error {
	for i, item := range items {
		if c := kids.at(at + i); c.item != item {
			return fmt.Errorf("%w: child %d is %v, change reports %v", ErrInvalidState, at+i, c.item, item)
		}
	}
	return nil
}

func spanOf[T comparable](nodes []*Node[T]) int {
	size := 0
	for _, n := range nodes {
		size += n.span()
	}
	return size
}

// insertChildren inserts nodes for items at child index i of the live node p.
func (m *Model[T]) insertChildren(p *Node[T], i int, items []T) (FlattenedChanged, error) {
	var ev FlattenedChanged
	if i < 0 || i > p.kids.len() {
		return ev, fmt.Errorf("%w: add at %d, node %v has %d children", ErrInvalidState, i, p, p.kids.len())
	}
	created, w, err := m.createChildren(p, items)
	if err != nil {
		return ev, err
	}
	pos := p.spanStart(i)
	if err := m.index.insert(pos, w.rows); err != nil {
		m.destroy(created...)
		return ev, err
	}
	w.commit()
	p.kids.insert(i, created...)
	p.propagate(len(w.rows))
	m.resubscribe(nil, w.rows)
	m.stats.FastPath++
	ev.added(pos, len(w.rows))
	return ev, nil
}

// removeChildren removes the children of the live node p starting at
// child index i.
func (m *Model[T]) removeChildren(p *Node[T], i int, items []T) (FlattenedChanged, error) {
	var ev FlattenedChanged
	count := len(items)
	if i < 0 || i+count > p.kids.len() {
		return ev, fmt.Errorf("%w: remove %d at %d, node %v has %d children", ErrInvalidState,
			count, i, p, p.kids.len())
	}
	if err := checkItems(&p.kids, i, items); err != nil {
		return ev, err
	}
	pos := p.spanStart(i)
	block := p.kids.cut(i, count)
	size := spanOf(block)
	if _, err := m.index.remove(pos, size); err != nil {
		p.kids.insert(i, block...)
		return ev, err
	}
	p.propagate(-size)
	m.destroy(block...)
	m.stats.FastPath++
	ev.removed(pos, size)
	return ev, nil
}

// moveChildren relocates count children of the live node p from child
// index from to child index to. Nodes are kept, and so are their subtrees.
func (m *Model[T]) moveChildren(p *Node[T], from, to, count int, items []T) (FlattenedChanged, error) {
	var ev FlattenedChanged
	n := p.kids.len()
	if from < 0 || to < 0 || from+count > n || to+count > n {
		return ev, fmt.Errorf("%w: move %d from %d to %d, node %v has %d children", ErrInvalidState,
			count, from, to, p, n)
	}
	if len(items) == count {
		if err := checkItems(&p.kids, from, items); err != nil {
			return ev, err
		}
	}
	m.stats.FastPath++
	if from == to {
		return ev, nil
	}
	src := p.spanStart(from)
	size := p.spanStart(from+count) - src
	// dst counts rows with the block taken out
	dst := p.spanStart(to)
	if to > from {
		dst = p.spanStart(to+count) - size
	}
	if err := m.index.move(src, size, dst); err != nil {
		return ev, err
	}
	block := p.kids.cut(from, count)
	p.kids.insert(to, block...)
	ev.moved(src, dst, size)
	return ev, nil
}

// replaceChildren replaces the children of the live node p starting at
// child index i by nodes for items.
func (m *Model[T]) replaceChildren(p *Node[T], i int, old, items []T) (FlattenedChanged, error) {
	var ev FlattenedChanged
	count := len(old)
	if i < 0 || i+count > p.kids.len() {
		return ev, fmt.Errorf("%w: replace %d at %d, node %v has %d children", ErrInvalidState,
			count, i, p, p.kids.len())
	}
	if err := checkItems(&p.kids, i, old); err != nil {
		return ev, err
	}
	created, w, err := m.createChildren(p, items)
	if err != nil {
		return ev, err
	}
	pos := p.spanStart(i)
	size := p.spanStart(i+count) - pos
	if _, err := m.index.remove(pos, size); err != nil {
		m.destroy(created...)
		return ev, err
	}
	if err := m.index.insert(pos, w.rows); err != nil {
		m.destroy(created...)
		return m.recover(), err
	}
	w.commit()
	block := p.kids.cut(i, count)
	p.kids.insert(i, created...)
	p.propagate(len(w.rows) - size)
	m.destroy(block...)
	m.resubscribe(nil, w.rows)
	m.stats.FastPath++
	ev.removed(pos, size)
	ev.added(pos, len(w.rows))
	return ev, nil
}
