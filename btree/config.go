package btree

import "fmt"

const (
	// MaxChildren is the maximum fanout of internal nodes.
	MaxChildren = 12
	// MaxLeafItems is the maximum number of items stored in a leaf.
	MaxLeafItems = 12
	// bulkThreshold is the item count above which InsertAt builds a separate
	// fragment and concatenates it instead of inserting items one by one.
	bulkThreshold = 4
)

// SummarizedItem ties a leaf item to its summary type at compile time.
type SummarizedItem[S any] interface {
	Summary() S
}

// SummaryMonoid defines how summaries are aggregated up the tree.
//
// For summaries s, t, u, Add should be associative:
//
//	Add(Add(s, t), u) == Add(s, Add(t, u))
//
// and Zero should be the neutral element:
//
//	Add(Zero(), s) == s == Add(s, Zero())
type SummaryMonoid[S any] interface {
	Zero() S
	Add(left, right S) S
}

// Config configures a B+ sum-tree.
type Config[S any] struct {
	// Monoid aggregates summaries up the tree.
	Monoid SummaryMonoid[S]
}

func (cfg Config[S]) validate() error {
	if cfg.Monoid == nil {
		return fmt.Errorf("%w: monoid is required", ErrInvalidConfig)
	}
	return nil
}
