package btree

// makeLeaf materializes a new leaf holding a private copy of items and
// computes its summary.
func (t *Tree[I, S]) makeLeaf(items []I) *leafNode[I, S] {
	assert(len(items) <= MaxLeafItems, "makeLeaf exceeds leaf capacity")
	leaf := &leafNode[I, S]{items: append([]I(nil), items...)}
	leaf.summary = t.cfg.Monoid.Zero()
	for _, item := range leaf.items {
		leaf.summary = t.cfg.Monoid.Add(leaf.summary, item.Summary())
	}
	return leaf
}

// makeInternal materializes a new internal node and computes its summary and
// item count from its children.
func (t *Tree[I, S]) makeInternal(children ...treeNode[I, S]) *innerNode[I, S] {
	assert(len(children) > 0, "makeInternal called without children")
	inner := &innerNode[I, S]{children: append([]treeNode[I, S](nil), children...)}
	inner.summary = t.cfg.Monoid.Zero()
	for _, child := range inner.children {
		assert(child != nil, "makeInternal called with nil child")
		inner.summary = t.cfg.Monoid.Add(inner.summary, child.Summary())
		inner.count += child.size()
	}
	return inner
}

// wrapChildren packs children into one internal node, or into two
// half-filled siblings if they exceed the fanout.
func (t *Tree[I, S]) wrapChildren(children []treeNode[I, S]) (treeNode[I, S], treeNode[I, S]) {
	if len(children) <= MaxChildren {
		return t.makeInternal(children...), nil
	}
	assert(len(children) <= 2*MaxChildren, "wrapChildren requires more than one promoted sibling")
	mid := len(children) / 2
	return t.makeInternal(children[:mid]...), t.makeInternal(children[mid:]...)
}

// wrapItems packs items into one leaf, or into two half-filled leaves if they
// exceed the leaf capacity.
func (t *Tree[I, S]) wrapItems(items []I) (treeNode[I, S], treeNode[I, S]) {
	if len(items) <= MaxLeafItems {
		return t.makeLeaf(items), nil
	}
	assert(len(items) <= 2*MaxLeafItems, "wrapItems requires more than one promoted leaf")
	mid := len(items) / 2
	return t.makeLeaf(items[:mid]), t.makeLeaf(items[mid:])
}

// insertAt inserts values into a slice at idx and returns a new slice.
func insertAt[T any](src []T, idx int, values ...T) []T {
	assert(idx >= 0 && idx <= len(src), "insertAt index out of range")
	out := make([]T, 0, len(src)+len(values))
	out = append(out, src[:idx]...)
	out = append(out, values...)
	out = append(out, src[idx:]...)
	return out
}

// joined returns a new slice holding a followed by b.
func joined[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// partition splits n elements into the fewest groups of at most max
// elements. Group sizes differ by at most one.
func partition(n, max int) [][2]int {
	if n <= 0 {
		return nil
	}
	groups := (n + max - 1) / max
	out := make([][2]int, 0, groups)
	start := 0
	for g := range groups {
		size := n / groups
		if g < n%groups {
			size++
		}
		out = append(out, [2]int{start, start + size})
		start += size
	}
	return out
}
