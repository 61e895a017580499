package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
)

// Node is the per-item state of a Model: the item's children, its
// expansion state and the number of its visible descendants.
//
// Nodes are created and destroyed by the model. Clients must not hold on to
// nodes beyond the removal of their items.
type Node[T comparable] struct {
	item         T
	parent       *Node[T] // nil for the sentinel
	kids         childSeq[T]
	depth        int
	expanded     bool
	materialized bool // children have been read from source
	dead         bool // removed from the model
	visibleDesc  int  // 0 if collapsed
	source       Children[T]
	cancel       func() // non-nil while subscribed to source
	synced       uint64 // epoch in which children were last read from source
	model        *Model[T]

	// links and aggregates within the children sequence of parent
	left, right, up *Node[T]
	prio            uint32
	size            int // children in this treap subtree
	rows            int // rows occupied by the children in this treap subtree
}

// Item returns the user item wrapped by n.
func (n *Node[T]) Item() T {
	return n.item
}

// Parent returns the parent node of n, or nil for a root.
func (n *Node[T]) Parent() *Node[T] {
	if n.parent == nil || n.parent.parent == nil {
		return nil
	}
	return n.parent
}

// Children returns the materialized children of n. If they have not been
// materialized yet, Children returns nil.
func (n *Node[T]) Children() []*Node[T] {
	if n.kids.len() == 0 {
		return nil
	}
	return n.kids.slice()
}

// Depth is 0 for roots.
func (n *Node[T]) Depth() int {
	return n.depth
}

// IsExpanded reports whether the children of n are shown if n is visible.
func (n *Node[T]) IsExpanded() bool {
	return n.expanded
}

// IsLeaf reports whether n has no children.
func (n *Node[T]) IsLeaf() bool {
	if n.model != nil && n.model.opts.IsLeaf != nil {
		return n.model.opts.IsLeaf(n.item)
	}
	if n.materialized {
		return n.kids.len() == 0
	}
	if n.model == nil || n.dead {
		return true
	}
	src := n.model.opts.Children(n.item)
	return src == nil || src.Len() == 0
}

// VisibleDescendants is the number of rows following n in the flattened
// view which belong to n's subtree, if n is visible.
func (n *Node[T]) VisibleDescendants() int {
	return n.visibleDesc
}

// IsVisible reports whether every ancestor of n is expanded.
func (n *Node[T]) IsVisible() bool {
	if n.dead {
		return false
	}
	for p := n.parent; p != nil; p = p.parent {
		if !p.expanded {
			return false
		}
	}
	return true
}

// FlattenedIndex returns the position of n in the flattened view, if n is
// visible.
func (n *Node[T]) FlattenedIndex() (int, bool) {
	if n.parent == nil || !n.IsVisible() {
		return NoIndex, false
	}
	return n.position(), true
}

func (n *Node[T]) String() string {
	if n.parent == nil {
		return "Node(<sentinel>)"
	}
	return fmt.Sprintf("Node(%v)", n.item)
}

// position computes the flattened index of a visible node from the row
// aggregates of the children sequences along its ancestor chain, in
// O(depth · log siblings). The sentinel is at position -1.
func (n *Node[T]) position() int {
	pos := -1
	for x := n; x.parent != nil; x = x.parent {
		pos += 1 + x.rowsBefore()
	}
	return pos
}

// spanStart is the flattened index of the i-th child of a visible,
// expanded node n. For i == number of children it is the position right
// after the visible subtree of n.
func (n *Node[T]) spanStart(i int) int {
	return n.position() + 1 + n.kids.prefixRows(i)
}

// span is the number of rows occupied by a visible node and its visible
// descendants.
func (n *Node[T]) span() int {
	return 1 + n.visibleDesc
}

// isLive reports whether n is expanded and visible. Live nodes follow the
// change notifications of their children source.
func (n *Node[T]) isLive() bool {
	return n.expanded && n.IsVisible()
}

// hasAncestorItem reports whether item is held by n or one of its ancestors.
func (n *Node[T]) hasAncestorItem(item T) bool {
	for p := n; p != nil && p.parent != nil; p = p.parent {
		if p.item == item {
			return true
		}
	}
	return false
}

// propagate adds delta to the visible-descendant count of n and of every
// ancestor, as long as the chain is expanded.
func (n *Node[T]) propagate(delta int) {
	if delta == 0 {
		return
	}
	for p := n; p != nil && p.expanded; p = p.parent {
		assert(p.visibleDesc+delta >= 0, "visible descendants count underflow")
		p.setVisibleDesc(p.visibleDesc + delta)
	}
}

// countChildren computes the visible-descendant count of an expanded node
// from the counts of its children.
func (n *Node[T]) countChildren() int {
	return n.kids.rows()
}

// recount recomputes the visible-descendant counts of the materialized
// subtree of n from its structure and returns the count of n.
func (n *Node[T]) recount() int {
	total := 0
	for _, c := range n.kids.slice() {
		total += 1 + c.recount()
	}
	if !n.expanded {
		total = 0
	}
	n.setVisibleDesc(total)
	return total
}
