package btree

import "iter"

// ForEachItem walks leaf items in-order.
//
// Iteration stops early if callback returns false.
func (t *Tree[I, S]) ForEachItem(fn func(item I) bool) {
	if t == nil || t.root == nil || fn == nil {
		return
	}
	t.forEachItemNode(t.root, fn)
}

func (t *Tree[I, S]) forEachItemNode(n treeNode[I, S], fn func(item I) bool) bool {
	if n.isLeaf() {
		for _, item := range n.(*leafNode[I, S]).items {
			if !fn(item) {
				return false
			}
		}
		return true
	}
	for _, child := range n.(*innerNode[I, S]).children {
		if !t.forEachItemNode(child, fn) {
			return false
		}
	}
	return true
}

// Items returns an iterator over all items in order.
func (t *Tree[I, S]) Items() iter.Seq[I] {
	return func(yield func(I) bool) {
		t.ForEachItem(yield)
	}
}

// Range returns an iterator over the items with index in [from, to),
// together with their index. Subtrees outside the window are skipped by
// their cached sizes, so reading a window costs O(log n + to-from).
func (t *Tree[I, S]) Range(from, to int) iter.Seq2[int, I] {
	return func(yield func(int, I) bool) {
		if t == nil || t.root == nil {
			return
		}
		from, to = max(from, 0), min(to, t.Len())
		if from >= to {
			return
		}
		t.rangeNode(t.root, 0, from, to, yield)
	}
}

func (t *Tree[I, S]) rangeNode(n treeNode[I, S], offset, from, to int, yield func(int, I) bool) bool {
	if n.isLeaf() {
		for i, item := range n.(*leafNode[I, S]).items {
			pos := offset + i
			if pos < from {
				continue
			}
			if pos >= to || !yield(pos, item) {
				return false
			}
		}
		return true
	}
	for _, child := range n.(*innerNode[I, S]).children {
		size := child.size()
		if offset+size > from {
			if offset >= to || !t.rangeNode(child, offset, from, to, yield) {
				return false
			}
		}
		offset += size
	}
	return true
}
