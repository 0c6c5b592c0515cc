package battle

import (
	"maps"
	"slices"
)

// State is a typed one-shot fact attached to a Context. A StateSet holds at
// most one State per key.
type State interface {
	StateKey() string
}

// Redirected marks a resolution whose target has already been redirected.
type Redirected struct{}

func (Redirected) StateKey() string { return "redirected" }

// FollowUp marks a context synthesized by a follow-up handler.
type FollowUp struct{}

func (FollowUp) StateKey() string { return "follow_up" }

// DamageDealt records the damage dealt so far by the resolution.
type DamageDealt struct {
	Amount int
}

func (DamageDealt) StateKey() string { return "damage_dealt" }

// StateSet is a set of States keyed by StateKey. The zero value is ready to use.
type StateSet struct {
	m map[string]State
}

// Set stores st, replacing any State with the same key.
func (s *StateSet) Set(st State) {
	if s.m == nil {
		s.m = make(map[string]State)
	}
	s.m[st.StateKey()] = st
}

// Has reports whether a State with key is present.
func (s *StateSet) Has(key string) bool {
	_, ok := s.m[key]
	return ok
}

// Remove deletes the State with key. Removing an absent key is a no-op.
func (s *StateSet) Remove(key string) {
	delete(s.m, key)
}

// Len returns the number of States held.
func (s *StateSet) Len() int { return len(s.m) }

// Keys returns the held keys in sorted order.
func (s *StateSet) Keys() []string {
	return slices.Sorted(maps.Keys(s.m))
}

// Clone returns an independent copy of s.
func (s *StateSet) Clone() StateSet {
	return StateSet{m: maps.Clone(s.m)}
}

// GetState returns the State of type T held in s.
func GetState[T State](s *StateSet) (T, bool) {
	var zero T
	v, ok := s.m[zero.StateKey()]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// HasState reports whether s holds a State of type T.
func HasState[T State](s *StateSet) bool {
	_, ok := GetState[T](s)
	return ok
}
