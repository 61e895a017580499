package flattree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.
*/

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Options configures a Model.
type Options[T comparable] struct {
	// Children selects the children collection of an item. It is required.
	// A nil result is treated as an item without children. If the result
	// implements Observable, the model follows its change notifications.
	Children func(item T) Children[T]

	// IsLeaf optionally tells whether an item never has children.
	IsLeaf func(item T) bool

	// IsExpanded and SetExpanded bridge expansion state to the items.
	// IsExpanded is consulted once when a node is created. If set, it alone
	// decides the initial state and the auto-expand settings are ignored.
	// SetExpanded is called whenever the model changes the expansion state
	// of a node, including auto-expansion.
	IsExpanded  func(item T) bool
	SetExpanded func(item T, expanded bool)

	// SiblingOrder keeps the children of every node sorted.
	// SiblingOrderFor selects a comparer per parent item and takes
	// precedence; a nil result falls back to SiblingOrder. Nodes with an
	// active comparer never take the incremental path.
	SiblingOrder    func(a, b T) int
	SiblingOrderFor func(parent T) func(a, b T) int

	// OnError receives errors raised while handling change notifications.
	OnError func(error)

	Settings
}

// Settings is the scalar part of Options. It may be loaded from YAML.
type Settings struct {
	// AutoExpandRoot makes nodes at depth 0 start expanded.
	AutoExpandRoot bool `yaml:"auto-expand-root"`
	// Nodes with a depth < MaxAutoExpandDepth start expanded.
	MaxAutoExpandDepth int `yaml:"max-auto-expand-depth"`
	// VirtualizeChildren defers materializing the children of a node until
	// it is expanded for the first time.
	VirtualizeChildren bool `yaml:"virtualize-children"`
	// RequireNotifications rejects children sources which are not
	// observable.
	RequireNotifications bool `yaml:"require-notifications"`
}

// Validate checks the settings for invalid values.
func (s Settings) Validate() error {
	if s.MaxAutoExpandDepth < 0 {
		return fmt.Errorf("%w: max-auto-expand-depth must not be negative, is %d",
			ErrConfiguration, s.MaxAutoExpandDepth)
	}
	return nil
}

// WithSettings returns a copy of o with its settings replaced by s.
func (o Options[T]) WithSettings(s Settings) Options[T] {
	o.Settings = s
	return o
}

func (o Options[T]) validate() error {
	if o.Children == nil {
		return fmt.Errorf("%w: children selector is required", ErrConfiguration)
	}
	return o.Settings.Validate()
}

// LoadSettings reads settings from YAML. Unknown keys are rejected. An empty
// document results in zero settings.
func LoadSettings(r io.Reader) (Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	tracer().Debugf("loaded settings %+v", s)
	return s, nil
}

// LoadSettingsFile reads settings from a YAML file.
func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	defer f.Close()
	return LoadSettings(f)
}
