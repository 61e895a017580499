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

// Expand expands every node holding item. It returns ErrUnknownItem if no
// node holds item.
func (m *Model[T]) Expand(item T) error {
	return m.forEachNodeOf(item, func(n *Node[T]) error {
		return m.ExpandNode(n)
	})
}

// Collapse collapses every node holding item. Collapsed nodes keep their
// children, together with the expansion state of their subtrees.
func (m *Model[T]) Collapse(item T) error {
	return m.forEachNodeOf(item, func(n *Node[T]) error {
		return m.CollapseNode(n)
	})
}

// ToggleExpand flips the expansion state of every node holding item.
func (m *Model[T]) ToggleExpand(item T) error {
	return m.forEachNodeOf(item, func(n *Node[T]) error {
		return m.ToggleNode(n)
	})
}

func (m *Model[T]) forEachNodeOf(item T, fn func(*Node[T]) error) error {
	nodes := slices.Clone(m.nodes[item])
	if len(nodes) == 0 {
		return fmt.Errorf("%w: %v", ErrUnknownItem, item)
	}
	for _, n := range nodes {
		if n.dead {
			continue
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// ExpandNode expands n.
func (m *Model[T]) ExpandNode(n *Node[T]) error {
	return m.setExpanded(n, true)
}

// CollapseNode collapses n.
func (m *Model[T]) CollapseNode(n *Node[T]) error {
	return m.setExpanded(n, false)
}

// ToggleNode flips the expansion state of n.
func (m *Model[T]) ToggleNode(n *Node[T]) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidState)
	}
	return m.setExpanded(n, !n.expanded)
}

func (m *Model[T]) setExpanded(n *Node[T], expand bool) error {
	if n == nil || n.dead || n.model != m || n.parent == nil {
		return fmt.Errorf("%w: node %v is not part of the model", ErrInvalidState, n)
	}
	if n.expanded == expand {
		return nil
	}
	return m.update(func() (FlattenedChanged, error) {
		if expand {
			return m.expand(n)
		}
		return m.collapse(n)
	})
}

func (m *Model[T]) expand(n *Node[T]) (FlattenedChanged, error) {
	var ev FlattenedChanged
	n.expanded = true
	if !n.IsVisible() {
		if !m.opts.VirtualizeChildren {
			if err := m.materialize(n); err != nil {
				n.expanded = false
				n.recount()
				return ev, err
			}
		}
		n.setVisibleDesc(n.countChildren())
		n.parent.propagate(n.visibleDesc)
		m.expansionChanged(n)
		return ev, nil
	}
	w := m.newWalker()
	if err := w.visit(n); err != nil {
		n.expanded = false
		n.recount()
		return ev, err
	}
	pos := n.position() + 1
	if err := m.index.insert(pos, w.rows); err != nil {
		n.expanded = false
		n.recount()
		return ev, err
	}
	w.commit()
	n.parent.propagate(n.visibleDesc)
	m.subscribe(n)
	m.resubscribe(nil, w.rows)
	m.stats.LocalRebuilds++
	m.expansionChanged(n)
	tracer().P("node", n).Debugf("expanded: %d rows at %d", len(w.rows), pos)
	ev.added(pos, len(w.rows))
	return ev, nil
}

func (m *Model[T]) collapse(n *Node[T]) (FlattenedChanged, error) {
	var ev FlattenedChanged
	size := n.visibleDesc
	if n.IsVisible() {
		pos := n.position() + 1
		removed, err := m.index.remove(pos, size)
		if err != nil {
			return ev, err
		}
		m.unsubscribe(n)
		for _, r := range removed {
			m.unsubscribe(r)
		}
		ev.removed(pos, size)
		tracer().P("node", n).Debugf("collapsed: %d rows at %d", size, pos)
	}
	n.expanded = false
	n.setVisibleDesc(0)
	n.parent.propagate(-size)
	m.expansionChanged(n)
	return ev, nil
}

func (m *Model[T]) expansionChanged(n *Node[T]) {
	if m.opts.SetExpanded != nil {
		m.opts.SetExpanded(n.item, n.expanded)
	}
}

// ExpandAll expands every node which has children. Children are
// materialized as needed, so ExpandAll must not be used for trees of
// unbounded depth.
func (m *Model[T]) ExpandAll() error {
	return m.update(func() (FlattenedChanged, error) {
		stack := m.sentinel.kids.slice()
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := m.sync(n, false); err != nil {
				return m.recover(), err
			}
			if n.kids.len() > 0 && !n.expanded {
				n.expanded = true
				n.setVisibleDesc(0)
				m.expansionChanged(n)
			}
			stack = append(stack, n.kids.slice()...)
		}
		return m.relayout(m.sentinel, false)
	})
}

// CollapseAll collapses every node.
func (m *Model[T]) CollapseAll() error {
	return m.update(func() (FlattenedChanged, error) {
		for _, root := range m.sentinel.kids.slice() {
			m.walkMaterialized(root, func(n *Node[T]) {
				if n.expanded {
					n.expanded = false
					m.expansionChanged(n)
				}
				n.setVisibleDesc(0)
			})
		}
		return m.relayout(m.sentinel, false)
	})
}
