package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"context"

	"github.com/guiguan/caster"
)

// Event is a FlattenedChanged together with a snapshot of the flattened
// view right after the edit.
type Event[T comparable] struct {
	Change FlattenedChanged
	View   View[T]
}

// Feed broadcasts the events of a model to listeners on other goroutines.
//
// Events are published synchronously while the model is updated, in the
// order of the updates. Every listener receives every event; a listener
// which does not keep up eventually blocks the model's goroutine.
type Feed[T comparable] struct {
	cast   *caster.Caster
	cancel func()
}

// NewFeed starts broadcasting the events of m. The feed is closed when ctx
// is done or Close is called.
func NewFeed[T comparable](ctx context.Context, m *Model[T]) *Feed[T] {
	f := &Feed[T]{cast: caster.New(ctx)}
	f.cancel = m.Subscribe(func(ch FlattenedChanged) {
		f.cast.Pub(Event[T]{Change: ch, View: m.Snapshot()})
	})
	return f
}

// Listen subscribes to the feed. The returned channel is closed when ctx is
// done or the feed is closed. capacity is the buffer size of the channel.
func (f *Feed[T]) Listen(ctx context.Context, capacity uint) (<-chan Event[T], bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, ok := f.cast.Sub(ctx, capacity)
	if !ok {
		return nil, false
	}
	events := make(chan Event[T], capacity)
	go func() {
		defer close(events)
		for msg := range raw {
			ev, ok := msg.(Event[T])
			if !ok {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, true
}

// Close stops broadcasting and closes all listener channels.
func (f *Feed[T]) Close() {
	f.cancel()
	f.cast.Close()
}
