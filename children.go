package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"math/rand/v2"
)

// childSeq is the ordered sequence of the children of a node.
//
// It is an implicit treap: the position of a child is the number of
// children in front of it. The treap links live in the child nodes
// themselves, together with two aggregates over their treap subtree: the
// number of children and the number of rows they occupy (Σ span). With the
// up links, both the sibling index of a child and the rows in front of it
// are found in O(log siblings), and a changed span is propagated to the
// aggregates in O(log siblings).
type childSeq[T comparable] struct {
	root *Node[T]
}

func sizeOf[T comparable](t *Node[T]) int {
	if t == nil {
		return 0
	}
	return t.size
}

func rowsOf[T comparable](t *Node[T]) int {
	if t == nil {
		return 0
	}
	return t.rows
}

// fix recomputes the aggregates of t from its treap children and links
// them up to t.
func (t *Node[T]) fix() {
	t.size, t.rows = 1, t.span()
	if l := t.left; l != nil {
		l.up = t
		t.size += l.size
		t.rows += l.rows
	}
	if r := t.right; r != nil {
		r.up = t
		t.size += r.size
		t.rows += r.rows
	}
}

func merge[T comparable](a, b *Node[T]) *Node[T] {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.prio >= b.prio:
		a.right = merge(a.right, b)
		a.fix()
		return a
	}
	b.left = merge(a, b.left)
	b.fix()
	return b
}

// split separates the first k children of t from the rest. Up links of the
// returned roots are stale.
func split[T comparable](t *Node[T], k int) (*Node[T], *Node[T]) {
	if t == nil {
		return nil, nil
	}
	if k <= sizeOf(t.left) {
		l, r := split(t.left, k)
		t.left = r
		t.fix()
		return l, t
	}
	l, r := split(t.right, k-sizeOf(t.left)-1)
	t.right = l
	t.fix()
	return t, r
}

// build creates a treap holding nodes in order, in O(len(nodes)).
func build[T comparable](nodes []*Node[T]) *Node[T] {
	var spine []*Node[T] // right spine, priorities decreasing
	for _, n := range nodes {
		n.left, n.right, n.up = nil, nil, nil
		n.prio = rand.Uint32()
		var last *Node[T]
		for len(spine) > 0 && spine[len(spine)-1].prio < n.prio {
			last = spine[len(spine)-1]
			spine = spine[:len(spine)-1]
		}
		n.left = last
		if len(spine) > 0 {
			spine[len(spine)-1].right = n
		}
		spine = append(spine, n)
	}
	if len(spine) == 0 {
		return nil
	}
	fixAll(spine[0])
	return spine[0]
}

func fixAll[T comparable](t *Node[T]) {
	if t == nil {
		return
	}
	fixAll(t.left)
	fixAll(t.right)
	t.fix()
}

func appendInOrder[T comparable](dst []*Node[T], t *Node[T]) []*Node[T] {
	if t == nil {
		return dst
	}
	dst = appendInOrder(dst, t.left)
	dst = append(dst, t)
	return appendInOrder(dst, t.right)
}

func (s *childSeq[T]) setRoot(t *Node[T]) {
	if t != nil {
		t.up = nil
	}
	s.root = t
}

func (s *childSeq[T]) len() int {
	return sizeOf(s.root)
}

// rows is the number of rows occupied by all children.
func (s *childSeq[T]) rows() int {
	return rowsOf(s.root)
}

// at returns child i. i must be in range.
func (s *childSeq[T]) at(i int) *Node[T] {
	t := s.root
	for t != nil {
		ls := sizeOf(t.left)
		switch {
		case i < ls:
			t = t.left
		case i == ls:
			return t
		default:
			i -= ls + 1
			t = t.right
		}
	}
	panic(fmt.Sprintf("child index %d out of range", i))
}

// prefixRows is the number of rows occupied by the first i children.
func (s *childSeq[T]) prefixRows(i int) int {
	t, rows := s.root, 0
	for t != nil && i > 0 {
		ls := sizeOf(t.left)
		if i <= ls {
			t = t.left
			continue
		}
		rows += rowsOf(t.left) + t.span()
		i -= ls + 1
		t = t.right
	}
	return rows
}

// slice returns the children in order.
func (s *childSeq[T]) slice() []*Node[T] {
	return appendInOrder(make([]*Node[T], 0, s.len()), s.root)
}

// reset replaces all children by nodes.
func (s *childSeq[T]) reset(nodes []*Node[T]) {
	s.setRoot(build(nodes))
}

// insert inserts nodes in front of child i.
func (s *childSeq[T]) insert(i int, nodes ...*Node[T]) {
	l, r := split(s.root, i)
	s.setRoot(merge(merge(l, build(nodes)), r))
}

// cut removes count children starting at child i and returns them.
func (s *childSeq[T]) cut(i, count int) []*Node[T] {
	l, r := split(s.root, i)
	mid, r := split(r, count)
	s.setRoot(merge(l, r))
	cut := appendInOrder(make([]*Node[T], 0, count), mid)
	for _, c := range cut {
		c.left, c.right, c.up = nil, nil, nil
	}
	return cut
}

// check verifies links and aggregates.
func (s *childSeq[T]) check() error {
	if s.root != nil && s.root.up != nil {
		return fmt.Errorf("treap root %v has an up link", s.root)
	}
	var walk func(t *Node[T]) error
	walk = func(t *Node[T]) error {
		size, rows := 1, t.span()
		for _, c := range []*Node[T]{t.left, t.right} {
			if c == nil {
				continue
			}
			if c.up != t || c.prio > t.prio {
				return fmt.Errorf("treap links of %v broken", c)
			}
			if err := walk(c); err != nil {
				return err
			}
			size, rows = size+c.size, rows+c.rows
		}
		if t.size != size || t.rows != rows {
			return fmt.Errorf("treap aggregates of %v are %d/%d, expected %d/%d", t, t.size, t.rows, size, rows)
		}
		return nil
	}
	if s.root == nil {
		return nil
	}
	return walk(s.root)
}

// siblingIndex is the position of n among the children of its parent.
func (n *Node[T]) siblingIndex() int {
	i := sizeOf(n.left)
	for x := n; x.up != nil; x = x.up {
		if x == x.up.right {
			i += sizeOf(x.up.left) + 1
		}
	}
	return i
}

// rowsBefore is the number of rows occupied by the preceding siblings of n.
func (n *Node[T]) rowsBefore() int {
	rows := rowsOf(n.left)
	for x := n; x.up != nil; x = x.up {
		if x == x.up.right {
			rows += rowsOf(x.up.left) + x.up.span()
		}
	}
	return rows
}

// setVisibleDesc sets the visible-descendant count of n and updates the
// row aggregates of the children sequence n belongs to.
func (n *Node[T]) setVisibleDesc(count int) {
	delta := count - n.visibleDesc
	if delta == 0 {
		return
	}
	n.visibleDesc = count
	for x := n; x != nil; x = x.up {
		x.rows += delta
	}
}
