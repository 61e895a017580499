package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"slices"
)

// Model maintains the flattened view of a tree of items.
//
// The roots of the tree are set with SetRoots or SetRootSource. Children of
// an item are read through Options.Children when they are needed. Roots
// are children of an invisible sentinel node, which is always expanded.
//
// A Model is not safe for concurrent use.
type Model[T comparable] struct {
	opts     Options[T]
	sentinel *Node[T]
	index    *flatIndex[T]
	nodes    map[T][]*Node[T] // live nodes per item
	handlers []handler
	nextID   int
	busy     bool   // an update is in progress
	resync   bool   // a full rebuild is due after the current update
	closed   bool
	epoch    uint64 // incremented for every update
	err      error
	stats    Stats
}

// New creates an empty model. It returns ErrConfiguration if
// opts.Children is nil or a setting is invalid.
func New[T comparable](opts Options[T]) (*Model[T], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	m := &Model[T]{
		opts:  opts,
		index: newFlatIndex[T](),
		nodes: make(map[T][]*Node[T]),
	}
	m.sentinel = m.newSentinel(Slice[T](nil))
	return m, nil
}

func (m *Model[T]) newSentinel(src Children[T]) *Node[T] {
	return &Node[T]{depth: -1, expanded: true, source: src, model: m}
}

// SetRoots replaces the tree with one holding items as roots.
func (m *Model[T]) SetRoots(items ...T) error {
	return m.SetRootSource(Slice[T](slices.Clone(items)))
}

// SetRoot replaces the tree with one holding a single root.
func (m *Model[T]) SetRoot(item T) error {
	return m.SetRoots(item)
}

// SetRootSource replaces the tree with one holding the items of src as
// roots. If src is observable, the model follows its change notifications.
func (m *Model[T]) SetRootSource(src Children[T]) error {
	if src == nil {
		src = Slice[T](nil)
	}
	return m.update(func() (FlattenedChanged, error) {
		return m.replaceRoots(src)
	})
}

// Roots returns the root nodes.
func (m *Model[T]) Roots() []*Node[T] {
	return m.sentinel.kids.slice()
}

// Count returns the number of visible rows.
func (m *Model[T]) Count() int {
	return m.index.len()
}

// ItemAt returns the item at row i of the flattened view.
func (m *Model[T]) ItemAt(i int) (T, error) {
	n, err := m.index.at(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return n.item, nil
}

// NodeAt returns the node at row i of the flattened view.
func (m *Model[T]) NodeAt(i int) (*Node[T], error) {
	return m.index.at(i)
}

// IndexOf returns the first row holding item.
func (m *Model[T]) IndexOf(item T) (int, bool) {
	pos, found := 0, false
	for _, n := range m.nodes[item] {
		if p, ok := n.FlattenedIndex(); ok && (!found || p < pos) {
			pos, found = p, true
		}
	}
	if !found {
		return NoIndex, false
	}
	return pos, true
}

// NodesOf returns all nodes holding item, visible or not.
func (m *Model[T]) NodesOf(item T) []*Node[T] {
	return slices.Clone(m.nodes[item])
}

// Snapshot returns an immutable view of the current rows.
func (m *Model[T]) Snapshot() View[T] {
	return View[T]{rows: m.index.rows}
}

// Stats returns counters of how changes have been processed.
func (m *Model[T]) Stats() Stats {
	return m.stats
}

// Err returns the last error raised while handling a change notification.
func (m *Model[T]) Err() error {
	return m.err
}

// Subscribe registers a handler for FlattenedChanged events. Handlers are
// called synchronously, after the flattened view has been updated. The
// returned function cancels the subscription.
func (m *Model[T]) Subscribe(fn func(FlattenedChanged)) func() {
	m.nextID++
	id := m.nextID
	m.handlers = append(m.handlers, handler{id: id, fn: fn})
	return func() {
		m.handlers = slices.DeleteFunc(m.handlers, func(h handler) bool {
			return h.id == id
		})
	}
}

// Close releases all subscriptions to children sources and all handlers.
// A closed model rejects further updates.
func (m *Model[T]) Close() {
	if m.closed {
		return
	}
	m.walkMaterialized(m.sentinel, func(n *Node[T]) {
		m.unsubscribe(n)
	})
	m.handlers = nil
	m.closed = true
}

func (m *Model[T]) emit(ev FlattenedChanged) {
	tracer().Debugf("flattened view changed: %v", ev)
	for _, h := range slices.Clone(m.handlers) {
		h.fn(ev)
	}
}

// fail reports an error which cannot be returned to a caller.
func (m *Model[T]) fail(err error) {
	m.err = err
	tracer().Errorf("flattree: %v", err)
	if m.opts.OnError != nil {
		m.opts.OnError(err)
	}
}

// update runs op as a single update of the flattened view and publishes
// the resulting edit. Updates do not nest: an update requested while
// another one is running is rejected and a full rebuild is scheduled for
// when the running update has completed.
func (m *Model[T]) update(op func() (FlattenedChanged, error)) error {
	if m.closed {
		return fmt.Errorf("%w: model is closed", ErrInvalidState)
	}
	if m.busy {
		m.resync = true
		m.stats.ReentrantDrops++
		return fmt.Errorf("%w: change arrived while another update is in progress", ErrReentrantUpdate)
	}
	m.busy = true
	m.epoch++
	ev, err := op()
	m.busy = false
	if !ev.IsEmpty() {
		m.emit(ev)
	}
	if m.resync {
		m.resync = false
		tracer().Infof("flattree: resynchronizing flattened view")
		if rerr := m.Rebuild(); rerr != nil {
			m.fail(rerr)
		}
	}
	return err
}

// walkMaterialized calls fn for n and all of its materialized descendants.
func (m *Model[T]) walkMaterialized(n *Node[T], fn func(*Node[T])) {
	stack := []*Node[T]{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(top)
		stack = append(stack, top.kids.slice()...)
	}
}
