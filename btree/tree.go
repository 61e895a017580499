package btree

import (
	"fmt"
)

// Tree is a persistent B+ sum-tree over a sequence of items.
//
// I is the leaf item type, S is the summary type aggregated through the tree.
// The item type is tied to the summary type via SummarizedItem[S]. All
// mutating operations return a new tree and leave the receiver untouched;
// unchanged subtrees are shared between versions.
type Tree[I SummarizedItem[S], S any] struct {
	cfg    Config[S]
	root   treeNode[I, S]
	height int // 0 means empty tree
}

// New creates an empty tree with validated configuration.
func New[I SummarizedItem[S], S any](cfg Config[S]) (*Tree[I, S], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Tree[I, S]{cfg: cfg}, nil
}

// empty returns an empty tree sharing the receiver's configuration.
func (t *Tree[I, S]) empty() *Tree[I, S] {
	return &Tree[I, S]{cfg: t.cfg}
}

// IsEmpty reports whether the tree has no items.
func (t *Tree[I, S]) IsEmpty() bool {
	return t == nil || t.root == nil
}

// Len returns the number of items in the tree.
func (t *Tree[I, S]) Len() int {
	if t == nil || t.root == nil {
		return 0
	}
	return t.root.size()
}

// Summary returns the root summary, or Zero() for an empty tree.
func (t *Tree[I, S]) Summary() S {
	if t == nil || t.cfg.Monoid == nil {
		var zero S
		return zero
	}
	if t.root == nil {
		return t.cfg.Monoid.Zero()
	}
	return t.root.Summary()
}

// FromItems returns a new balanced tree holding items, sharing the receiver's
// configuration.
func (t *Tree[I, S]) FromItems(items ...I) (*Tree[I, S], error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	return t.build(items), nil
}

// build creates a balanced tree bottom-up: items are packed into leaves, and
// every level is packed into parents until a single root remains.
func (t *Tree[I, S]) build(items []I) *Tree[I, S] {
	out := t.empty()
	if len(items) == 0 {
		return out
	}
	level := make([]treeNode[I, S], 0, len(items)/MaxLeafItems+1)
	for _, part := range partition(len(items), MaxLeafItems) {
		level = append(level, t.makeLeaf(items[part[0]:part[1]]))
	}
	height := 1
	for len(level) > 1 {
		next := make([]treeNode[I, S], 0, len(level)/MaxChildren+1)
		for _, part := range partition(len(level), MaxChildren) {
			next = append(next, t.makeInternal(level[part[0]:part[1]]...))
		}
		level = next
		height++
	}
	out.root = level[0]
	out.height = height
	return out
}

// InsertAt inserts items at an item index and returns a new tree.
//
// A handful of items is inserted one by one with split propagation; larger
// blocks are built as a balanced fragment and spliced in with two
// concatenations.
func (t *Tree[I, S]) InsertAt(index int, items ...I) (*Tree[I, S], error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	if index < 0 || index > t.Len() {
		return nil, ErrIndexOutOfBounds
	}
	if len(items) == 0 {
		return t, nil
	}
	if len(items) <= bulkThreshold {
		cloned := *t
		for i, item := range items {
			cloned.insertOneAt(index+i, item)
		}
		return &cloned, nil
	}
	return t.Splice(index, t.build(items))
}

// Splice inserts all items of fragment at index and returns a new tree.
// fragment must share the receiver's configuration.
func (t *Tree[I, S]) Splice(index int, fragment *Tree[I, S]) (*Tree[I, S], error) {
	if t == nil || fragment == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	if index < 0 || index > t.Len() {
		return nil, ErrIndexOutOfBounds
	}
	if fragment.IsEmpty() {
		return t, nil
	}
	left, right, err := t.SplitAt(index)
	if err != nil {
		return nil, err
	}
	joinedLeft, err := left.Concat(fragment)
	if err != nil {
		return nil, err
	}
	return joinedLeft.Concat(right)
}

// DeleteRange removes count items starting at index and returns a new tree.
func (t *Tree[I, S]) DeleteRange(index, count int) (*Tree[I, S], error) {
	rest, _, err := t.Cut(index, count)
	return rest, err
}

// Cut removes count items starting at index. It returns the remaining tree
// and the removed items as a tree of their own, which may be spliced in
// elsewhere without touching the items.
func (t *Tree[I, S]) Cut(index, count int) (rest *Tree[I, S], cut *Tree[I, S], err error) {
	if t == nil {
		return nil, nil, fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	size := t.Len()
	if index < 0 || count < 0 || index+count > size {
		return nil, nil, ErrIndexOutOfBounds
	}
	if count == 0 {
		return t, t.empty(), nil
	}
	left, tail, err := t.SplitAt(index)
	if err != nil {
		return nil, nil, err
	}
	cut, right, err := tail.SplitAt(count)
	if err != nil {
		return nil, nil, err
	}
	rest, err = left.Concat(right)
	if err != nil {
		return nil, nil, err
	}
	return rest, cut, nil
}

// SplitAt splits a tree at an item index and returns left and right trees.
func (t *Tree[I, S]) SplitAt(index int) (*Tree[I, S], *Tree[I, S], error) {
	if t == nil {
		return nil, nil, fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	size := t.Len()
	if index < 0 || index > size {
		return nil, nil, ErrIndexOutOfBounds
	}
	if index == 0 {
		return t.empty(), t, nil
	}
	if index == size {
		return t, t.empty(), nil
	}
	leftRoot, rightRoot := t.splitNode(t.root, t.height, index)
	left, right := t.empty(), t.empty()
	left.root, left.height = leftRoot, t.height
	right.root, right.height = rightRoot, t.height
	left.normalizeRoot()
	right.normalizeRoot()
	return left, right, nil
}

// splitNode splits subtree n at index using path-copy semantics.
//
// Only nodes on the split seam are rebuilt; untouched siblings are shared.
// Both halves keep the height of n; callers collapse single-child roots.
func (t *Tree[I, S]) splitNode(n treeNode[I, S], height, index int) (treeNode[I, S], treeNode[I, S]) {
	assert(n != nil, "splitNode called with nil node")
	if index == 0 {
		return nil, n
	}
	if index == n.size() {
		return n, nil
	}
	if height == 1 {
		leaf, ok := n.(*leafNode[I, S])
		assert(ok, "splitNode expected leaf at height 1")
		return t.makeLeaf(leaf.items[:index]), t.makeLeaf(leaf.items[index:])
	}
	inner, ok := n.(*innerNode[I, S])
	assert(ok, "splitNode expected internal node")
	slot, local := t.locateChild(inner, index, false)
	childLeft, childRight := t.splitNode(inner.children[slot], height-1, local)
	leftChildren := append([]treeNode[I, S](nil), inner.children[:slot]...)
	if childLeft != nil {
		leftChildren = append(leftChildren, childLeft)
	}
	rightChildren := make([]treeNode[I, S], 0, len(inner.children)-slot)
	if childRight != nil {
		rightChildren = append(rightChildren, childRight)
	}
	rightChildren = append(rightChildren, inner.children[slot+1:]...)
	assert(len(leftChildren) > 0 && len(rightChildren) > 0, "splitNode produced an empty half")
	return t.makeInternal(leftChildren...), t.makeInternal(rightChildren...)
}

// Concat concatenates another tree and returns a new tree.
func (t *Tree[I, S]) Concat(other *Tree[I, S]) (*Tree[I, S], error) {
	if t == nil || other == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	if t.IsEmpty() {
		return other, nil
	}
	if other.IsEmpty() {
		return t, nil
	}
	left, right, height := t.concatNodes(t.root, t.height, other.root, other.height)
	combined := t.empty()
	if right == nil {
		combined.root, combined.height = left, height
	} else {
		combined.root, combined.height = t.makeInternal(left, right), height+1
	}
	combined.normalizeRoot()
	return combined, nil
}

// concatNodes joins two subtrees that may have different heights.
//
// The shorter subtree is joined with the facing spine node of the taller one
// at equal height. The function returns up to two nodes at the output height:
// a single node when no split is needed (`mergedRight == nil`), or two
// siblings when the join overflowed. Only the spine is copied.
func (t *Tree[I, S]) concatNodes(
	left treeNode[I, S], leftHeight int,
	right treeNode[I, S], rightHeight int,
) (mergedLeft treeNode[I, S], mergedRight treeNode[I, S], outHeight int) {
	switch {
	case leftHeight == rightHeight:
		l, r := t.joinSameHeight(left, right, leftHeight)
		return l, r, leftHeight
	case leftHeight > rightHeight:
		inner, ok := left.(*innerNode[I, S])
		assert(ok, "concatNodes expected internal left node at greater height")
		last := len(inner.children) - 1
		l, r, _ := t.concatNodes(inner.children[last], leftHeight-1, right, rightHeight)
		children := append([]treeNode[I, S](nil), inner.children[:last]...)
		children = append(children, l)
		if r != nil {
			children = append(children, r)
		}
		a, b := t.wrapChildren(children)
		return a, b, leftHeight
	default:
		inner, ok := right.(*innerNode[I, S])
		assert(ok, "concatNodes expected internal right node at greater height")
		l, r, _ := t.concatNodes(left, leftHeight, inner.children[0], rightHeight-1)
		children := make([]treeNode[I, S], 0, len(inner.children)+1)
		children = append(children, l)
		if r != nil {
			children = append(children, r)
		}
		children = append(children, inner.children[1:]...)
		a, b := t.wrapChildren(children)
		return a, b, rightHeight
	}
}

// joinSameHeight joins two nodes of equal height.
//
// If the combined occupancy fits into one node, the nodes are merged. If both
// are at least half full they are kept as siblings. Otherwise the content is
// redistributed into two half-full siblings, which repairs thin seam nodes
// left behind by splits.
func (t *Tree[I, S]) joinSameHeight(left, right treeNode[I, S], height int) (treeNode[I, S], treeNode[I, S]) {
	assert(height > 0, "joinSameHeight called with non-positive height")
	if height == 1 {
		leftLeaf, lok := left.(*leafNode[I, S])
		rightLeaf, rok := right.(*leafNode[I, S])
		assert(lok && rok, "joinSameHeight expected leaf nodes at height 1")
		if len(leftLeaf.items) >= MaxLeafItems/2 && len(rightLeaf.items) >= MaxLeafItems/2 &&
			len(leftLeaf.items)+len(rightLeaf.items) > MaxLeafItems {
			return left, right
		}
		return t.wrapItems(joined(leftLeaf.items, rightLeaf.items))
	}
	leftInner, lok := left.(*innerNode[I, S])
	rightInner, rok := right.(*innerNode[I, S])
	assert(lok && rok, "joinSameHeight expected internal nodes")
	if len(leftInner.children) >= MaxChildren/2 && len(rightInner.children) >= MaxChildren/2 &&
		len(leftInner.children)+len(rightInner.children) > MaxChildren {
		return left, right
	}
	return t.wrapChildren(joined(leftInner.children, rightInner.children))
}

// insertOneAt inserts one item into this tree in place.
//
// Callers must operate on a private copy of the tree header; nodes are
// path-copied.
func (t *Tree[I, S]) insertOneAt(index int, item I) {
	if t.root == nil {
		t.root = t.makeLeaf([]I{item})
		t.height = 1
		return
	}
	updated, promoted := t.insertRecursive(t.root, t.height, index, item)
	if promoted != nil {
		t.root = t.makeInternal(updated, promoted)
		t.height++
		return
	}
	t.root = updated
}

// insertRecursive inserts one item into subtree n and propagates split results.
//
// The returned promoted sibling is non-nil only when the updated subtree split.
func (t *Tree[I, S]) insertRecursive(n treeNode[I, S], height, index int, item I) (treeNode[I, S], treeNode[I, S]) {
	assert(n != nil, "insertRecursive called with nil node")
	if height == 1 {
		leaf, ok := n.(*leafNode[I, S])
		assert(ok, "insertRecursive expected leaf at height 1")
		return t.wrapItems(insertAt(leaf.items, index, item))
	}
	inner, ok := n.(*innerNode[I, S])
	assert(ok, "insertRecursive expected internal node")
	slot, local := t.locateChild(inner, index, true)
	updated, promoted := t.insertRecursive(inner.children[slot], height-1, local, item)
	children := append([]treeNode[I, S](nil), inner.children...)
	children[slot] = updated
	if promoted != nil {
		children = insertAt(children, slot+1, promoted)
	}
	return t.wrapChildren(children)
}

// locateChild maps a subtree item index to child slot + local index.
//
// For insertion, boundary indices land in the left child (`remaining <=
// size`); otherwise each absolute index is owned by exactly one child.
func (t *Tree[I, S]) locateChild(inner *innerNode[I, S], index int, forInsert bool) (slot int, local int) {
	assert(len(inner.children) > 0, "locateChild called with empty children")
	assert(index >= 0, "locateChild called with negative index")
	remaining := index
	for i, child := range inner.children {
		size := child.size()
		if remaining < size || (forInsert && remaining == size) {
			return i, remaining
		}
		remaining -= size
	}
	assert(false, "locateChild index exceeded subtree item count")
	return 0, 0
}

// normalizeRoot canonicalizes root representation after structural edits:
// a nil root means height 0, and internal roots with a single child are
// collapsed repeatedly.
func (t *Tree[I, S]) normalizeRoot() {
	if t.root == nil {
		t.height = 0
		return
	}
	for t.height > 1 {
		inner, ok := t.root.(*innerNode[I, S])
		assert(ok, "normalizeRoot expected internal root above height 1")
		if len(inner.children) != 1 {
			return
		}
		t.root = inner.children[0]
		t.height--
	}
}
