package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"iter"
	"slices"
)

// List is an observable slice of items. Every mutation notifies the
// subscribers synchronously with a positional Change.
//
// The zero value is an empty list ready to use. A List is not safe for
// concurrent use.
type List[T any] struct {
	items    []T
	handlers []listHandler[T]
	nextID   int
}

type listHandler[T any] struct {
	id int
	fn func(Change[T])
}

var _ Observable[int] = (*List[int])(nil)

// NewList creates a list holding a copy of items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

// Len is part of interface Children.
func (l *List[T]) Len() int { return len(l.items) }

// At is part of interface Children.
func (l *List[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the items of l.
func (l *List[T]) Items() []T { return slices.Clone(l.items) }

// All iterates over the items of l.
func (l *List[T]) All() iter.Seq2[int, T] {
	return slices.All(l.items)
}

// Subscribe is part of interface Observable.
func (l *List[T]) Subscribe(handler func(Change[T])) func() {
	l.nextID++
	id := l.nextID
	l.handlers = append(l.handlers, listHandler[T]{id: id, fn: handler})
	return func() {
		l.handlers = slices.DeleteFunc(l.handlers, func(h listHandler[T]) bool {
			return h.id == id
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (l *List[T]) Subscribers() int { return len(l.handlers) }

func (l *List[T]) notify(ch Change[T]) {
	// handlers may cancel subscriptions while being notified
	for _, h := range slices.Clone(l.handlers) {
		h.fn(ch)
	}
}

// Append appends items to the end of l.
func (l *List[T]) Append(items ...T) {
	_ = l.Insert(len(l.items), items...)
}

// Insert inserts items at index.
func (l *List[T]) Insert(index int, items ...T) error {
	if index < 0 || index > len(l.items) {
		return fmt.Errorf("%w: insert at %d, length %d", ErrIndexOutOfBounds, index, len(l.items))
	}
	if len(items) == 0 {
		return nil
	}
	added := slices.Clone(items)
	l.items = slices.Insert(l.items, index, added...)
	l.notify(AddChange(index, added...))
	return nil
}

// Remove removes count items starting at index.
func (l *List[T]) Remove(index, count int) error {
	if index < 0 || count < 0 || index+count > len(l.items) {
		return fmt.Errorf("%w: remove %d at %d, length %d", ErrIndexOutOfBounds, count, index, len(l.items))
	}
	if count == 0 {
		return nil
	}
	removed := slices.Clone(l.items[index : index+count])
	l.items = slices.Delete(l.items, index, index+count)
	l.notify(RemoveChange(index, removed...))
	return nil
}

// Replace replaces count items starting at index with items.
func (l *List[T]) Replace(index, count int, items ...T) error {
	if index < 0 || count < 0 || index+count > len(l.items) {
		return fmt.Errorf("%w: replace %d at %d, length %d", ErrIndexOutOfBounds, count, index, len(l.items))
	}
	removed := append([]T{}, l.items[index:index+count]...)
	added := append([]T{}, items...)
	l.items = slices.Replace(l.items, index, index+count, added...)
	l.notify(ReplaceChange(index, removed, added))
	return nil
}

// Set replaces the item at index.
func (l *List[T]) Set(index int, item T) error {
	return l.Replace(index, 1, item)
}

// Move moves count items starting at from, such that the block starts at
// index to afterwards.
func (l *List[T]) Move(from, to, count int) error {
	n := len(l.items)
	if from < 0 || to < 0 || count < 0 || from+count > n || to+count > n {
		return fmt.Errorf("%w: move %d from %d to %d, length %d", ErrIndexOutOfBounds, count, from, to, n)
	}
	if count == 0 || from == to {
		return nil
	}
	block := slices.Clone(l.items[from : from+count])
	rest := slices.Delete(l.items, from, from+count)
	l.items = slices.Insert(rest, to, block...)
	l.notify(MoveChange(from, to, block...))
	return nil
}

// Reset replaces the contents of l and notifies subscribers with a reset.
func (l *List[T]) Reset(items ...T) {
	l.items = slices.Clone(items)
	l.notify(ResetChange[T]())
}

// Sort sorts l with a stable sort and notifies subscribers with a reset.
func (l *List[T]) Sort(cmp func(a, b T) int) {
	slices.SortStableFunc(l.items, cmp)
	l.notify(ResetChange[T]())
}
