package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// stateVersion is the current version of the persisted expansion state.
const stateVersion = 1

// ExpansionState is the persisted form of the expansion state of a model.
// Nodes are identified by a key derived from their items.
type ExpansionState struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
}

// SaveState writes the expansion state of all materialized nodes with
// children as JSON. key derives a stable identifier from an item; items
// with an empty key are skipped.
func (m *Model[T]) SaveState(w io.Writer, key func(T) string) error {
	st := ExpansionState{
		Version:  stateVersion,
		Expanded: make(map[string]bool),
	}
	for _, root := range m.sentinel.kids.slice() {
		m.walkMaterialized(root, func(n *Node[T]) {
			if !n.expanded && (!n.materialized || n.kids.len() == 0) {
				return
			}
			if k := key(n.item); k != "" {
				st.Expanded[k] = n.expanded
			}
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("flattree: cannot save expansion state: %w", err)
	}
	tracer().Debugf("saved expansion state of %d nodes", len(st.Expanded))
	return nil
}

// LoadState reads an expansion state written by SaveState and applies it
// to the model, top down: nodes are expanded or collapsed as recorded,
// which makes the children of expanded nodes available for the state of
// their descendants. Nodes without a recorded state are left alone.
func (m *Model[T]) LoadState(r io.Reader, key func(T) string) error {
	var st ExpansionState
	if err := json.NewDecoder(r).Decode(&st); err != nil {
		return fmt.Errorf("%w: cannot read expansion state: %w", ErrConfiguration, err)
	}
	if st.Version != stateVersion {
		return fmt.Errorf("%w: expansion state has version %d, expected %d", ErrConfiguration,
			st.Version, stateVersion)
	}
	queue := m.Roots()
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.dead {
			continue
		}
		if want, ok := st.Expanded[key(n.item)]; ok && want != n.expanded {
			if err := m.setExpanded(n, want); err != nil {
				return err
			}
		}
		queue = append(queue, n.kids.slice()...)
	}
	return nil
}
