package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import "fmt"

// Action is the kind of mutation a children collection reports.
type Action uint8

const (
	ActionAdd Action = iota
	ActionRemove
	ActionReplace
	ActionMove
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionReplace:
		return "replace"
	case ActionMove:
		return "move"
	case ActionReset:
		return "reset"
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// NoIndex marks a starting index which a change does not carry.
const NoIndex = -1

// Change describes a single mutation of a children collection.
//
// Indices refer to the collection before the mutation for OldStartingIndex
// and after the mutation for NewStartingIndex. An index which is not
// applicable or unknown is NoIndex. The number of affected items is the
// length of OldItems or NewItems, respectively.
type Change[T any] struct {
	Action           Action
	OldStartingIndex int
	NewStartingIndex int
	OldItems         []T
	NewItems         []T
}

// AddChange reports items inserted at index.
func AddChange[T any](index int, items ...T) Change[T] {
	return Change[T]{
		Action:           ActionAdd,
		OldStartingIndex: NoIndex,
		NewStartingIndex: index,
		NewItems:         items,
	}
}

// RemoveChange reports items removed from index.
func RemoveChange[T any](index int, items ...T) Change[T] {
	return Change[T]{
		Action:           ActionRemove,
		OldStartingIndex: index,
		NewStartingIndex: NoIndex,
		OldItems:         items,
	}
}

// ReplaceChange reports old items at index replaced by new items.
func ReplaceChange[T any](index int, old []T, new []T) Change[T] {
	return Change[T]{
		Action:           ActionReplace,
		OldStartingIndex: index,
		NewStartingIndex: index,
		OldItems:         old,
		NewItems:         new,
	}
}

// MoveChange reports a block of items moved from index from to index to.
// to is the position of the block after the move.
func MoveChange[T any](from, to int, items ...T) Change[T] {
	return Change[T]{
		Action:           ActionMove,
		OldStartingIndex: from,
		NewStartingIndex: to,
		OldItems:         items,
		NewItems:         items,
	}
}

// ResetChange reports a collection which changed dramatically.
func ResetChange[T any]() Change[T] {
	return Change[T]{
		Action:           ActionReset,
		OldStartingIndex: NoIndex,
		NewStartingIndex: NoIndex,
	}
}

func (ch Change[T]) String() string {
	return fmt.Sprintf("%s(old=%d:%d, new=%d:%d)", ch.Action,
		ch.OldStartingIndex, len(ch.OldItems), ch.NewStartingIndex, len(ch.NewItems))
}

// --- Children sources ------------------------------------------------------

// Children is an ordered, indexable collection of child items.
type Children[T any] interface {
	Len() int
	At(i int) T
}

// Observable is a children collection which reports its mutations.
//
// Subscribe registers a handler which is called synchronously after every
// mutation, and returns a function to cancel the subscription.
type Observable[T any] interface {
	Children[T]
	Subscribe(handler func(Change[T])) (cancel func())
}

// Slice is a static children collection.
type Slice[T any] []T

// Len is part of interface Children.
func (s Slice[T]) Len() int { return len(s) }

// At is part of interface Children.
func (s Slice[T]) At(i int) T { return s[i] }

// readAll copies a children collection into a slice.
func readAll[T any](src Children[T]) []T {
	if src == nil {
		return nil
	}
	n := src.Len()
	out := make([]T, n)
	for i := range n {
		out[i] = src.At(i)
	}
	return out
}

// isObservable reports whether a children source can be subscribed to.
func isObservable[T any](src Children[T]) bool {
	_, ok := src.(Observable[T])
	return ok
}
