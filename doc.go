/*
Package flattree maintains a flattened, order-stable view of a tree of items
with expand/collapse state.

Flattened trees

A tree view, an outliner or a virtualized tree-grid shows a hierarchy as a
list of rows: every node is followed by its descendants, as long as all of
its ancestors are expanded. Package flattree keeps that list (the flattened
view) in sync with a tree of user items. Children of an item are provided by
a user-supplied selector; when the children collection is observable,
flattree subscribes to its change notifications and updates the flattened
view incrementally:

	Operation            |  Cost
	---------------------+-------------------------------------------
	Count                |  O(1)
	ItemAt               |  O(log n)
	Add/Remove children  |  O(k log n + depth · log s)
	Move children        |  O(log n + depth · log s), no rebuild
	Expand/Collapse      |  O(visible subtree + log n + depth · log s)
	Reset / sorted node  |  O(visible subtree of the affected node)

where n is the number of visible rows, k is the number of rows inserted
or removed and s bounds the number of siblings along the ancestor chain.
Children of a node are kept in a sequence which sums up the rows of each
child's subtree, so locating a node never scans its siblings. Sibling subtrees which are not touched by an edit are never
revisited.

Every edit of the flattened view is published as a single FlattenedChanged
event, describing the net edit as positional ranges. A consumer such as a
virtualized list widget may apply it as a minimal diff instead of re-reading
the whole sequence.

Incremental updates are only applied when they are safe: the children
source has to be observable, no sibling comparer may be active for the
parent node, and the notification has to carry positional indices. In every
other case flattree degrades to a localized rebuild of the affected node,
which is slower but always correct.

Threading

A Model is not safe for concurrent use. All operations and all change
notifications are expected on one goroutine, in the order the underlying
mutations happened. Snapshots (see Model.Snapshot) are immutable and may be
handed to other goroutines; Feed does exactly that.

_________________________________________________________________________

BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

*/
package flattree

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'flattree'
func tracer() tracing.Trace {
	return tracing.Select("flattree")
}

var (
	// ErrConfiguration signals a missing selector, an invalid setting, or a
	// children source which does not satisfy the configured requirements.
	ErrConfiguration = errors.New("flattree: configuration error")
	// ErrCyclicStructure signals an item which is reachable from itself.
	ErrCyclicStructure = errors.New("flattree: cyclic structure")
	// ErrInvalidState signals a change which is inconsistent with the current
	// state of the flattened view, e.g. indices out of bounds. It indicates
	// a desynchronization between a children source and its notifications.
	ErrInvalidState = errors.New("flattree: invalid state")
	// ErrReentrantUpdate signals a structural change which arrived while
	// another update was still in progress. It wraps ErrInvalidState.
	ErrReentrantUpdate = fmt.Errorf("%w: reentrant update", ErrInvalidState)
	// ErrUnknownItem signals an item without a live node in the model.
	ErrUnknownItem = errors.New("flattree: unknown item")
	// ErrIndexOutOfBounds is flagged whenever a row or list position is
	// outside of the valid range.
	ErrIndexOutOfBounds = errors.New("flattree: index out of bounds")
)

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
