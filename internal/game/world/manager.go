package world

import (
	"fmt"
	"slices"
)

// View is the narrow query surface the battle pipeline and decision plans
// consume. It is implemented by Floor and by test fakes.
type View interface {
	// CharAt returns the character occupying loc, or nil.
	CharAt(loc Loc) *Character
	// Characters returns every character on the floor in spawn order.
	Characters() []*Character
	// Relation reports how a regards b.
	Relation(a, b *Character) Alignment
	// TurnCount returns the global turn counter.
	TurnCount() int
	// ApplyDamage removes amount HP from ch.
	ApplyDamage(ch *Character, amount int)
}

// Floor is the in-memory dungeon floor used by the simulator.
// It is not safe for concurrent use; the turn loop owns it.
type Floor struct {
	ID     string
	Width  int
	Height int
	chars  []*Character
	byID   map[string]*Character
	turn   int
}

// NewFloor creates a Floor holding chars.
//
// Precondition: width and height must be > 0.
// Postcondition: Returns a Floor or an error on duplicate IDs, duplicate
// locations, or characters outside the bounds.
func NewFloor(id string, width, height int, chars []*Character) (*Floor, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("floor %q: dimensions must be positive, got %dx%d", id, width, height)
	}
	f := &Floor{
		ID:     id,
		Width:  width,
		Height: height,
		byID:   make(map[string]*Character, len(chars)),
	}
	for _, c := range chars {
		if err := f.Add(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Add places c on the floor.
//
// Precondition: c must not be nil.
// Postcondition: Returns an error if c.ID is taken, c.Loc is occupied, or out of bounds.
func (f *Floor) Add(c *Character) error {
	if c.ID == "" {
		return fmt.Errorf("floor %q: character ID must not be empty", f.ID)
	}
	if _, dup := f.byID[c.ID]; dup {
		return fmt.Errorf("floor %q: duplicate character ID %q", f.ID, c.ID)
	}
	if !f.InBounds(c.Loc) {
		return fmt.Errorf("floor %q: character %q at %s is out of bounds", f.ID, c.ID, c.Loc)
	}
	if other := f.CharAt(c.Loc); other != nil {
		return fmt.Errorf("floor %q: characters %q and %q share tile %s", f.ID, other.ID, c.ID, c.Loc)
	}
	f.chars = append(f.chars, c)
	f.byID[c.ID] = c
	return nil
}

// InBounds reports whether loc lies on the floor.
func (f *Floor) InBounds(loc Loc) bool {
	return loc.X >= 0 && loc.Y >= 0 && loc.X < f.Width && loc.Y < f.Height
}

// CharAt returns the living character on loc, or nil.
func (f *Floor) CharAt(loc Loc) *Character {
	for _, c := range f.chars {
		if c.Loc == loc && !c.Dead() {
			return c
		}
	}
	return nil
}

// Character returns the character with the given ID.
func (f *Floor) Character(id string) (*Character, bool) {
	c, ok := f.byID[id]
	return c, ok
}

// Characters returns a snapshot of the floor's characters in spawn order.
func (f *Floor) Characters() []*Character {
	return slices.Clone(f.chars)
}

// Relation reports how a regards b.
func (f *Floor) Relation(a, b *Character) Alignment { return Relation(a, b) }

// TurnCount returns the number of completed turns.
func (f *Floor) TurnCount() int { return f.turn }

// AdvanceTurn increments the global turn counter.
func (f *Floor) AdvanceTurn() { f.turn++ }

// ApplyDamage removes amount HP from ch.
//
// Precondition: amount >= 0.
func (f *Floor) ApplyDamage(ch *Character, amount int) {
	ch.ApplyDamage(amount)
}
