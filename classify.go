package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import "fmt"

// Kind is the result of classifying a Change.
type Kind uint8

const (
	// Unsupported changes are handled by a localized rebuild of the parent.
	Unsupported Kind = iota
	PositionalAdd
	PositionalRemove
	PositionalMove
	PositionalReplace
	// Reset changes replace all children of the parent.
	Reset
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case PositionalAdd:
		return "add"
	case PositionalRemove:
		return "remove"
	case PositionalMove:
		return "move"
	case PositionalReplace:
		return "replace"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Classification tells how a change may be applied to a flattened view.
//
//	Kind              | OldIndex | NewIndex | OldCount | NewCount
//	------------------+----------+----------+----------+---------
//	PositionalAdd     |    -     |    x     |    -     |    x
//	PositionalRemove  |    x     |    -     |    x     |    -
//	PositionalMove    |    x     |    x     |    x     |    x
//	PositionalReplace |    x     |    x     |    x     |    x
//
// Fields not applicable are NoIndex or 0. For moves OldCount == NewCount.
type Classification struct {
	Kind     Kind
	OldIndex int
	NewIndex int
	OldCount int
	NewCount int
}

func (c Classification) String() string {
	return fmt.Sprintf("%s(old=%d:%d, new=%d:%d)", c.Kind, c.OldIndex, c.OldCount,
		c.NewIndex, c.NewCount)
}

var unsupported = Classification{Kind: Unsupported, OldIndex: NoIndex, NewIndex: NoIndex}

// Classify decides whether a change notification may take the incremental
// path. eligible tells whether the parent node qualifies at all: its
// children source is observable and no sibling comparer is active for it.
//
// Reset changes are classified as Reset regardless of eligibility. Changes
// lacking the indices or items their action requires are Unsupported.
// Classify has no side effects.
func Classify[T any](ch Change[T], eligible bool) Classification {
	if ch.Action == ActionReset {
		return Classification{Kind: Reset, OldIndex: NoIndex, NewIndex: NoIndex}
	}
	if !eligible {
		return unsupported
	}
	switch ch.Action {
	case ActionAdd:
		if ch.NewStartingIndex < 0 || len(ch.NewItems) == 0 {
			return unsupported
		}
		return Classification{
			Kind:     PositionalAdd,
			OldIndex: NoIndex,
			NewIndex: ch.NewStartingIndex,
			NewCount: len(ch.NewItems),
		}
	case ActionRemove:
		if ch.OldStartingIndex < 0 || len(ch.OldItems) == 0 {
			return unsupported
		}
		return Classification{
			Kind:     PositionalRemove,
			OldIndex: ch.OldStartingIndex,
			NewIndex: NoIndex,
			OldCount: len(ch.OldItems),
		}
	case ActionReplace:
		if ch.OldStartingIndex < 0 || ch.OldItems == nil || ch.NewItems == nil {
			return unsupported
		}
		if ch.NewStartingIndex >= 0 && ch.NewStartingIndex != ch.OldStartingIndex {
			return unsupported
		}
		return Classification{
			Kind:     PositionalReplace,
			OldIndex: ch.OldStartingIndex,
			NewIndex: ch.OldStartingIndex,
			OldCount: len(ch.OldItems),
			NewCount: len(ch.NewItems),
		}
	case ActionMove:
		if ch.OldStartingIndex < 0 || ch.NewStartingIndex < 0 {
			return unsupported
		}
		count := len(ch.OldItems)
		if count == 0 {
			count = len(ch.NewItems)
		} else if ch.NewItems != nil && len(ch.NewItems) != count {
			return unsupported
		}
		if count == 0 {
			return unsupported
		}
		return Classification{
			Kind:     PositionalMove,
			OldIndex: ch.OldStartingIndex,
			NewIndex: ch.NewStartingIndex,
			OldCount: count,
			NewCount: count,
		}
	}
	return unsupported
}
