package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"iter"

	"github.com/npillmayer/flattree/btree"
)

// RowSummary aggregates the rows of a subtree of the flattened view.
type RowSummary struct {
	Rows     int // number of rows
	MaxDepth int // maximum nesting depth of a row, -1 if empty
}

type rowMonoid struct{}

func (rowMonoid) Zero() RowSummary {
	return RowSummary{MaxDepth: -1}
}

func (rowMonoid) Add(left, right RowSummary) RowSummary {
	return RowSummary{
		Rows:     left.Rows + right.Rows,
		MaxDepth: max(left.MaxDepth, right.MaxDepth),
	}
}

// row is a visible node in the flattened view.
type row[T comparable] struct {
	node *Node[T]
}

func (r row[T]) Summary() RowSummary {
	return RowSummary{Rows: 1, MaxDepth: r.node.depth}
}

type rowTree[T comparable] = btree.Tree[row[T], RowSummary]

// flatIndex is the pre-order sequence of visible nodes.
//
// Rows are stored in a persistent B+ tree, so positional access is
// O(log n) and a block of rows can be cut out and spliced in elsewhere
// without touching the rows in between.
type flatIndex[T comparable] struct {
	rows *rowTree[T]
}

func newFlatIndex[T comparable]() *flatIndex[T] {
	rows, err := btree.New[row[T]](btree.Config[RowSummary]{Monoid: rowMonoid{}})
	assert(err == nil, "row tree configuration invalid")
	return &flatIndex[T]{rows: rows}
}

func (fi *flatIndex[T]) len() int {
	return fi.rows.Len()
}

func (fi *flatIndex[T]) at(i int) (*Node[T], error) {
	r, err := fi.rows.At(i)
	if err != nil {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfBounds, i, fi.rows.Len())
	}
	return r.node, nil
}

func toRows[T comparable](nodes []*Node[T]) []row[T] {
	rows := make([]row[T], len(nodes))
	for i, n := range nodes {
		rows[i] = row[T]{node: n}
	}
	return rows
}

// reset replaces all rows.
func (fi *flatIndex[T]) reset(nodes []*Node[T]) {
	rows, err := fi.rows.FromItems(toRows(nodes)...)
	assert(err == nil, "cannot build row tree")
	fi.rows = rows
}

// insert inserts nodes as rows starting at pos.
func (fi *flatIndex[T]) insert(pos int, nodes []*Node[T]) error {
	if len(nodes) == 0 {
		return nil
	}
	rows, err := fi.rows.InsertAt(pos, toRows(nodes)...)
	if err != nil {
		return fmt.Errorf("%w: insert %d rows at %d: %w", ErrInvalidState, len(nodes), pos, err)
	}
	fi.rows = rows
	return nil
}

// remove removes count rows starting at pos and returns the removed nodes.
func (fi *flatIndex[T]) remove(pos, count int) ([]*Node[T], error) {
	if count == 0 {
		return nil, nil
	}
	rest, cut, err := fi.rows.Cut(pos, count)
	if err != nil {
		return nil, fmt.Errorf("%w: remove %d rows at %d: %w", ErrInvalidState, count, pos, err)
	}
	fi.rows = rest
	removed := make([]*Node[T], 0, count)
	for r := range cut.Items() {
		removed = append(removed, r.node)
	}
	return removed, nil
}

// move relocates count rows starting at from, such that the block starts
// at position to afterwards.
func (fi *flatIndex[T]) move(from, count, to int) error {
	if count == 0 || from == to {
		return nil
	}
	rest, cut, err := fi.rows.Cut(from, count)
	if err != nil {
		return fmt.Errorf("%w: move %d rows from %d: %w", ErrInvalidState, count, from, err)
	}
	rows, err := rest.Splice(to, cut)
	if err != nil {
		return fmt.Errorf("%w: move %d rows to %d: %w", ErrInvalidState, count, to, err)
	}
	fi.rows = rows
	return nil
}

// span returns the nodes of rows [from, from+count).
func (fi *flatIndex[T]) span(from, count int) []*Node[T] {
	nodes := make([]*Node[T], 0, count)
	for _, r := range fi.rows.Range(from, from+count) {
		nodes = append(nodes, r.node)
	}
	return nodes
}

func (fi *flatIndex[T]) nodes() []*Node[T] {
	return fi.span(0, fi.len())
}

// --- Snapshots -------------------------------------------------------------

// Row is a visible item together with its nesting depth.
type Row[T comparable] struct {
	Item  T
	Depth int
}

// View is an immutable snapshot of the flattened view. Views share
// structure with the model and are cheap to create. They may be read
// concurrently with further modifications of the model.
type View[T comparable] struct {
	rows *rowTree[T]
}

// Len returns the number of rows.
func (v View[T]) Len() int {
	if v.rows == nil {
		return 0
	}
	return v.rows.Len()
}

// At returns the item at row i.
func (v View[T]) At(i int) (T, error) {
	r, err := v.Row(i)
	return r.Item, err
}

// Row returns row i.
func (v View[T]) Row(i int) (Row[T], error) {
	if v.rows == nil {
		return Row[T]{}, fmt.Errorf("%w: row %d of 0", ErrIndexOutOfBounds, i)
	}
	r, err := v.rows.At(i)
	if err != nil {
		return Row[T]{}, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfBounds, i, v.rows.Len())
	}
	return Row[T]{Item: r.node.item, Depth: r.node.depth}, nil
}

// MaxDepth is the maximum nesting depth of all rows, or -1 for an empty
// view.
func (v View[T]) MaxDepth() int {
	if v.rows == nil {
		return -1
	}
	return v.rows.Summary().MaxDepth
}

// Items iterates over all items in row order.
func (v View[T]) Items() iter.Seq[T] {
	return func(yield func(T) bool) {
		if v.rows == nil {
			return
		}
		for r := range v.rows.Items() {
			if !yield(r.node.item) {
				return
			}
		}
	}
}

// Rows iterates over the rows [from, to).
func (v View[T]) Rows(from, to int) iter.Seq2[int, Row[T]] {
	return func(yield func(int, Row[T]) bool) {
		if v.rows == nil {
			return
		}
		for i, r := range v.rows.Range(from, to) {
			if !yield(i, Row[T]{Item: r.node.item, Depth: r.node.depth}) {
				return
			}
		}
	}
}
