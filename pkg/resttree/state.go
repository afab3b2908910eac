package resttree

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// State is a layered key/value store with save and rollback semantics.
// Writes land in a working layer on top of the saved history; Save
// commits the working layer and Rollback discards it. Lookups search
// the working layer first, then saved layers newest to oldest.
//
// Keys may be dotted paths ("owner.name") that descend into nested
// map[string]interface{} values.
type State struct {
	mu      sync.RWMutex
	layers  []map[string]interface{}
	working map[string]interface{}
}

// NewState returns a State seeded with the given initial values. The
// initial map is copied and becomes the oldest saved layer.
func NewState(initial map[string]interface{}) *State {
	base := make(map[string]interface{}, len(initial))
	for key, value := range initial {
		base[key] = value
	}

	return &State{
		layers:  []map[string]interface{}{base},
		working: make(map[string]interface{}),
	}
}

// Get looks up a key, searching the working layer and then each saved
// layer from newest to oldest. Dotted keys traverse nested maps.
func (s *State) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := lookup(s.working, key); ok {
		return value, true
	}

	for i := len(s.layers) - 1; i >= 0; i-- {
		if value, ok := lookup(s.layers[i], key); ok {
			return value, true
		}
	}

	return nil, false
}

// Set writes a single key into the working layer.
func (s *State) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.working[key] = value
}

// Update writes every entry of the given map into the working layer.
func (s *State) Update(values map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.working[key] = value
	}
}

// Contains reports whether a key resolves in any layer.
func (s *State) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Save commits the working layer as a new saved layer and starts a
// fresh working layer. Saving with no pending changes returns
// ErrNoStateToSave.
func (s *State) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.working) == 0 {
		return ErrNoStateToSave
	}

	s.layers = append(s.layers, s.working)
	s.working = make(map[string]interface{})

	return nil
}

// Rollback discards the working layer, reverting every change made
// since the last Save.
func (s *State) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.working = make(map[string]interface{})
}

// Items returns the flattened view of all layers, oldest first, so
// newer layers shadow older ones. The result is a fresh map.
func (s *State) Items() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flat := make(map[string]interface{})

	for _, layer := range s.layers {
		for key, value := range layer {
			flat[key] = value
		}
	}

	for key, value := range s.working {
		flat[key] = value
	}

	return flat
}

// Keys returns the sorted top-level keys of the flattened view.
func (s *State) Keys() []string {
	flat := s.Items()

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Len reports the number of distinct top-level keys across all layers.
func (s *State) Len() int {
	return len(s.Items())
}

// Equal reports whether two states flatten to the same view.
func (s *State) Equal(other *State) bool {
	if other == nil {
		return false
	}

	return reflect.DeepEqual(s.Items(), other.Items())
}

// lookup resolves a possibly dotted key within a single layer.
func lookup(layer map[string]interface{}, key string) (interface{}, bool) {
	head, rest, nested := strings.Cut(key, ".")

	value, ok := layer[head]
	if !ok {
		return nil, false
	}

	if !nested {
		return value, true
	}

	child, ok := value.(map[string]interface{})
	if !ok {
		return nil, false
	}

	return lookup(child, rest)
}
