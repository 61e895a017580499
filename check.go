package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import "fmt"

// Check verifies the structural invariants of a model:
//
//   - every node is linked to its parent and has the depth of its parent + 1
//   - an expanded node has Σ(1 + VisibleDescendants) of its children as its
//     count of visible descendants, a collapsed node has 0
//   - the flattened view is the pre-order sequence of all visible nodes
//   - live nodes with an observable source are subscribed, others are not
//
// Check is intended for tests and debugging. It is O(materialized nodes).
func (m *Model[T]) Check() error {
	var err error
	m.walkMaterialized(m.sentinel, func(n *Node[T]) {
		if err != nil {
			return
		}
		err = m.checkNode(n)
	})
	if err != nil {
		return err
	}
	if m.sentinel.visibleDesc != m.index.len() {
		return fmt.Errorf("%w: %d visible descendants of roots, %d rows", ErrInvalidState,
			m.sentinel.visibleDesc, m.index.len())
	}
	if err := m.index.rows.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	var rows []*Node[T]
	var collect func(*Node[T])
	collect = func(n *Node[T]) {
		if !n.expanded {
			return
		}
		for _, c := range n.kids.slice() {
			rows = append(rows, c)
			collect(c)
		}
	}
	collect(m.sentinel)
	i := 0
	for r := range m.index.rows.Items() {
		if i >= len(rows) || rows[i] != r.node {
			return fmt.Errorf("%w: row %d is %v, pre-order has %v", ErrInvalidState, i, r.node, nodeAt(rows, i))
		}
		i++
	}
	if i != len(rows) {
		return fmt.Errorf("%w: %d rows, pre-order has %d", ErrInvalidState, i, len(rows))
	}
	return nil
}

func nodeAt[T comparable](nodes []*Node[T], i int) any {
	if i < len(nodes) {
		return nodes[i]
	}
	return "<none>"
}

func (m *Model[T]) checkNode(n *Node[T]) error {
	if n.dead {
		return fmt.Errorf("%w: dead node %v still linked", ErrInvalidState, n)
	}
	if err := n.kids.check(); err != nil {
		return fmt.Errorf("%w: children of %v: %v", ErrInvalidState, n, err)
	}
	count := 0
	for i, c := range n.kids.slice() {
		if c.siblingIndex() != i {
			return fmt.Errorf("%w: child %v of %v is at %d, finds itself at %d",
				ErrInvalidState, c, n, i, c.siblingIndex())
		}
		if c.parent != n {
			return fmt.Errorf("%w: child %v of %v has parent %v", ErrInvalidState, c, n, c.parent)
		}
		if c.depth != n.depth+1 {
			return fmt.Errorf("%w: child %v at depth %d below depth %d", ErrInvalidState, c, c.depth, n.depth)
		}
		count += c.span()
	}
	if !n.expanded {
		count = 0
	}
	if n.visibleDesc != count {
		return fmt.Errorf("%w: node %v has %d visible descendants, children sum up to %d",
			ErrInvalidState, n, n.visibleDesc, count)
	}
	if n.parent != nil {
		found := false
		for _, x := range m.nodes[n.item] {
			found = found || x == n
		}
		if !found {
			return fmt.Errorf("%w: node %v missing from item lookup", ErrInvalidState, n)
		}
	}
	live := n.isLive() && isObservable(n.source)
	if live != (n.cancel != nil) {
		return fmt.Errorf("%w: node %v is live=%v, subscribed=%v", ErrInvalidState, n, live, n.cancel != nil)
	}
	return nil
}
