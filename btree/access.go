package btree

// At returns the leaf item at item index.
func (t *Tree[I, S]) At(index int) (I, error) {
	var zero I
	if t == nil || t.root == nil {
		return zero, ErrIndexOutOfBounds
	}
	if index < 0 || index >= t.Len() {
		return zero, ErrIndexOutOfBounds
	}
	n, height := t.root, t.height
	for height > 1 {
		inner := n.(*innerNode[I, S])
		slot, local := t.locateChild(inner, index, false)
		n, index = inner.children[slot], local
		height--
	}
	leaf, ok := n.(*leafNode[I, S])
	assert(ok, "At expected leaf at height 1")
	return leaf.items[index], nil
}
