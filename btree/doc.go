/*
Package btree provides a persistent B+ sum-tree used as the row store of a
flattened tree view.

The package is intentionally not a generic map/set container. It is
specialized for sequence storage with positional editing: every node caches
the number of items below it, so positional access, splitting and block
relocation run in O(log n) regardless of where the edit happens. Updates use
path copying; a *Tree value is never mutated once it has been handed out,
which makes snapshots free.

Current status:
  - summary monoid aggregation (`S`) with item-to-summary linkage
    (`item.Summary()`),
  - cached subtree sizes for O(log n) `At`, `SplitAt` and `Cut`,
  - single-item insertion with split propagation, bulk insertion by building
    a balanced fragment and concatenating it,
  - height-aware `Concat` which redistributes children at the seam,
  - range deletion and block extraction (`DeleteRange`, `Cut`) composed from
    split and concat,
  - in-order iteration, windowed iteration (`Range`) and an invariant
    checker (`Check`) for tests.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package btree

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
