package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"strings"
)

// Range is a block of rows in the flattened view.
type Range struct {
	Start int
	Count int
}

// MovedRange is a block of rows relocated within the flattened view.
// From is the start of the block before the edit, To after the edit.
type MovedRange struct {
	From  int
	To    int
	Count int
}

// FlattenedChanged describes one net edit of the flattened view.
//
// Removed ranges refer to positions before the edit, Added ranges to
// positions after the edit. A consumer mirroring the flattened view applies
// removals first, then moves, then additions.
type FlattenedChanged struct {
	Added   []Range
	Removed []Range
	Moved   []MovedRange
}

// IsEmpty reports whether e carries no edit.
func (e FlattenedChanged) IsEmpty() bool {
	return len(e.Added) == 0 && len(e.Removed) == 0 && len(e.Moved) == 0
}

func (e FlattenedChanged) String() string {
	var b strings.Builder
	b.WriteString("FlattenedChanged{")
	for _, r := range e.Removed {
		fmt.Fprintf(&b, " -%d:%d", r.Start, r.Count)
	}
	for _, r := range e.Moved {
		fmt.Fprintf(&b, " %d→%d:%d", r.From, r.To, r.Count)
	}
	for _, r := range e.Added {
		fmt.Fprintf(&b, " +%d:%d", r.Start, r.Count)
	}
	b.WriteString(" }")
	return b.String()
}

func (e *FlattenedChanged) added(start, count int) {
	if count > 0 {
		e.Added = append(e.Added, Range{Start: start, Count: count})
	}
}

func (e *FlattenedChanged) removed(start, count int) {
	if count > 0 {
		e.Removed = append(e.Removed, Range{Start: start, Count: count})
	}
}

func (e *FlattenedChanged) moved(from, to, count int) {
	if count > 0 && from != to {
		e.Moved = append(e.Moved, MovedRange{From: from, To: to, Count: count})
	}
}

// Stats counts how changes have been processed by a model.
type Stats struct {
	Notifications  int // change notifications received
	FastPath       int // changes applied incrementally
	Fallbacks      int // notifications which could not take the fast path
	LocalRebuilds  int // localized rebuilds of a single node's subtree
	FullRebuilds   int // rebuilds of the whole flattened view
	ReentrantDrops int // notifications rejected during an update
}

// handler is a subscriber of FlattenedChanged events.
type handler struct {
	id int
	fn func(FlattenedChanged)
}
