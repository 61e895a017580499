package btree

import "fmt"

// Check validates structural tree invariants: uniform leaf depth, occupancy
// bounds, no empty nodes and consistent cached subtree sizes.
//
// This checker is intentionally strict and meant to be used in tests.
func (t *Tree[I, S]) Check() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	if t.root == nil {
		if t.height != 0 {
			return fmt.Errorf("%w: empty tree must have height=0", ErrCorrupt)
		}
		return nil
	}
	if t.height <= 0 {
		return fmt.Errorf("%w: non-empty tree must have height > 0", ErrCorrupt)
	}
	if inner, ok := t.root.(*innerNode[I, S]); ok && len(inner.children) < 2 {
		return fmt.Errorf("%w: internal root must have at least 2 children", ErrCorrupt)
	}
	_, height, err := t.checkNode(t.root)
	if err != nil {
		return err
	}
	if height != t.height {
		return fmt.Errorf("%w: height mismatch (%d != %d)", ErrCorrupt, height, t.height)
	}
	return nil
}

func (t *Tree[I, S]) checkNode(n treeNode[I, S]) (items int, height int, err error) {
	if n == nil {
		return 0, 0, fmt.Errorf("%w: nil node", ErrCorrupt)
	}
	if n.isLeaf() {
		leaf := n.(*leafNode[I, S])
		if len(leaf.items) == 0 {
			return 0, 0, fmt.Errorf("%w: empty leaf", ErrCorrupt)
		}
		if len(leaf.items) > MaxLeafItems {
			return 0, 0, fmt.Errorf("%w: leaf holds %d items, max is %d",
				ErrCorrupt, len(leaf.items), MaxLeafItems)
		}
		return len(leaf.items), 1, nil
	}
	inner := n.(*innerNode[I, S])
	if len(inner.children) == 0 {
		return 0, 0, fmt.Errorf("%w: internal node has no children", ErrCorrupt)
	}
	if len(inner.children) > MaxChildren {
		return 0, 0, fmt.Errorf("%w: child count %d exceeds degree %d",
			ErrCorrupt, len(inner.children), MaxChildren)
	}
	var total, childHeight int
	for i, child := range inner.children {
		cItems, cHeight, cErr := t.checkNode(child)
		if cErr != nil {
			return 0, 0, cErr
		}
		total += cItems
		if i == 0 {
			childHeight = cHeight
		} else if cHeight != childHeight {
			return 0, 0, fmt.Errorf("%w: non-uniform subtree heights", ErrCorrupt)
		}
	}
	if total != inner.count {
		return 0, 0, fmt.Errorf("%w: cached size %d, counted %d", ErrCorrupt, inner.count, total)
	}
	return total, childHeight + 1, nil
}
