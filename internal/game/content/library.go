// Package content loads move, item, and intrinsic templates from YAML and
// serves them to the battle pipeline.
package content

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
)

// Library holds all loaded templates indexed by ID. It implements
// battle.DataSource.
//
// Templates are shared; the battle pipeline deep-copies them per use.
type Library struct {
	skills     map[string]*battle.Skill
	items      map[string]*battle.ItemData
	intrinsics map[string]*battle.IntrinsicData
}

// NewLibrary returns an empty Library.
//
// Postcondition: all internal maps are initialised.
func NewLibrary() *Library {
	return &Library{
		skills:     make(map[string]*battle.Skill),
		items:      make(map[string]*battle.ItemData),
		intrinsics: make(map[string]*battle.IntrinsicData),
	}
}

// RegisterSkill adds s to the library.
//
// Precondition:  s must not be nil.
// Postcondition: Move(s.ID()) returns s; returns error if the ID is already registered.
func (l *Library) RegisterSkill(s *battle.Skill) error {
	if _, exists := l.skills[s.ID()]; exists {
		return fmt.Errorf("content: Library.RegisterSkill: skill ID %q already registered", s.ID())
	}
	l.skills[s.ID()] = s
	return nil
}

// RegisterItem adds d to the library.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns d; returns error if the ID is already registered.
func (l *Library) RegisterItem(d *battle.ItemData) error {
	if _, exists := l.items[d.ID]; exists {
		return fmt.Errorf("content: Library.RegisterItem: item ID %q already registered", d.ID)
	}
	l.items[d.ID] = d
	return nil
}

// RegisterIntrinsic adds d to the library.
//
// Precondition:  d must not be nil.
// Postcondition: Intrinsic(d.ID) returns d; returns error if the ID is already registered.
func (l *Library) RegisterIntrinsic(d *battle.IntrinsicData) error {
	if _, exists := l.intrinsics[d.ID]; exists {
		return fmt.Errorf("content: Library.RegisterIntrinsic: intrinsic ID %q already registered", d.ID)
	}
	l.intrinsics[d.ID] = d
	return nil
}

// Move implements battle.DataSource.
func (l *Library) Move(id string) (*battle.Skill, bool) {
	s, ok := l.skills[id]
	return s, ok
}

// Item implements battle.DataSource.
func (l *Library) Item(id string) (*battle.ItemData, bool) {
	d, ok := l.items[id]
	return d, ok
}

// Intrinsic implements battle.DataSource.
func (l *Library) Intrinsic(id string) (*battle.IntrinsicData, bool) {
	d, ok := l.intrinsics[id]
	return d, ok
}

// SkillIDs returns every registered skill ID in sorted order.
func (l *Library) SkillIDs() []string { return slices.Sorted(maps.Keys(l.skills)) }

// ItemIDs returns every registered item ID in sorted order.
func (l *Library) ItemIDs() []string { return slices.Sorted(maps.Keys(l.items)) }

// IntrinsicIDs returns every registered intrinsic ID in sorted order.
func (l *Library) IntrinsicIDs() []string { return slices.Sorted(maps.Keys(l.intrinsics)) }
