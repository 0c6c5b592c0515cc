// Package world provides the dungeon floor model: tile locations, facing
// directions, characters, and the relationship rules between them.
package world

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Loc is a tile coordinate on a floor. Y grows southward.
type Loc struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Add returns l translated by o.
func (l Loc) Add(o Loc) Loc { return Loc{X: l.X + o.X, Y: l.Y + o.Y} }

// Sub returns the offset from o to l.
func (l Loc) Sub(o Loc) Loc { return Loc{X: l.X - o.X, Y: l.Y - o.Y} }

// IsZero reports whether l is the origin offset.
func (l Loc) IsZero() bool { return l.X == 0 && l.Y == 0 }

// Dist8 returns the 8-directional (Chebyshev) distance between l and o.
//
// Postcondition: Returns >= 0.
func (l Loc) Dist8(o Loc) int {
	return max(abs(l.X-o.X), abs(l.Y-o.Y))
}

func (l Loc) String() string { return fmt.Sprintf("(%d,%d)", l.X, l.Y) }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// Direction is one of the eight compass facings.
type Direction string

// Standard compass directions.
const (
	DirNone   Direction = ""
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
)

// StandardDirections contains all eight compass directions.
var StandardDirections = []Direction{
	North, South, East, West,
	Northeast, Northwest, Southeast, Southwest,
}

var dirVectors = map[Direction]Loc{
	North:     {0, -1},
	South:     {0, 1},
	East:      {1, 0},
	West:      {-1, 0},
	Northeast: {1, -1},
	Northwest: {-1, -1},
	Southeast: {1, 1},
	Southwest: {-1, 1},
}

// IsStandard reports whether d is one of the eight compass directions.
func (d Direction) IsStandard() bool {
	_, ok := dirVectors[d]
	return ok
}

// Vector returns the unit tile offset for d, or the zero Loc for DirNone.
func (d Direction) Vector() Loc {
	return dirVectors[d]
}

// Opposite returns the opposite of a standard direction.
// For DirNone or unknown values it returns DirNone.
func (d Direction) Opposite() Direction {
	v, ok := dirVectors[d]
	if !ok {
		return DirNone
	}
	return DirFromVector(Loc{X: -v.X, Y: -v.Y})
}

// DirFromVector maps the signs of v to a direction.
//
// Postcondition: Returns DirNone iff v is the zero Loc.
func DirFromVector(v Loc) Direction {
	unit := Loc{X: sign(v.X), Y: sign(v.Y)}
	for d, vec := range dirVectors {
		if vec == unit {
			return d
		}
	}
	return DirNone
}

// DirTo returns the direction a character at from faces to look toward to.
//
// Postcondition: Returns DirNone iff from == to.
func DirTo(from, to Loc) Direction {
	return DirFromVector(to.Sub(from))
}

// Faction groups characters into sides of a fight.
type Faction string

// Known factions. Player and Ally are friendly to each other.
const (
	FactionPlayer Faction = "player"
	FactionAlly   Faction = "ally"
	FactionFoe    Faction = "foe"
)

// Alignment is a bit set describing how one character regards another.
type Alignment uint8

// Alignment flags.
const (
	AlignSelf Alignment = 1 << iota
	AlignFriend
	AlignFoe

	AlignNone Alignment = 0
	AlignAll            = AlignSelf | AlignFriend | AlignFoe
)

var alignmentNames = []struct {
	flag Alignment
	name string
}{
	{AlignSelf, "self"},
	{AlignFriend, "friend"},
	{AlignFoe, "foe"},
}

// Has reports whether every flag in o is set in a.
func (a Alignment) Has(o Alignment) bool { return o != 0 && a&o == o }

// Intersects reports whether a and o share any flag.
func (a Alignment) Intersects(o Alignment) bool { return a&o != 0 }

func (a Alignment) String() string {
	var parts []string
	for _, n := range alignmentNames {
		if a&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return fmt.Sprint(parts)
}

// UnmarshalYAML decodes an alignment from a list of names such as [friend, foe].
func (a *Alignment) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return fmt.Errorf("alignment must be a list of names: %w", err)
	}
	var out Alignment
	for _, name := range names {
		flag, ok := alignmentByName(name)
		if !ok {
			return fmt.Errorf("unknown alignment %q", name)
		}
		out |= flag
	}
	*a = out
	return nil
}

func alignmentByName(name string) (Alignment, bool) {
	for _, n := range alignmentNames {
		if n.name == name {
			return n.flag, true
		}
	}
	return AlignNone, false
}

// Relation computes how a regards b.
//
// Postcondition: Returns exactly one of AlignSelf, AlignFriend, AlignFoe;
// AlignNone when either character is nil.
func Relation(a, b *Character) Alignment {
	switch {
	case a == nil || b == nil:
		return AlignNone
	case a == b:
		return AlignSelf
	case friendly(a.Faction, b.Faction):
		return AlignFriend
	default:
		return AlignFoe
	}
}

func friendly(a, b Faction) bool {
	if a == b {
		return true
	}
	team := func(f Faction) bool { return f == FactionPlayer || f == FactionAlly }
	return team(a) && team(b)
}

// Character is one occupant of a floor.
type Character struct {
	ID      string
	Name    string
	Faction Faction
	// Wild marks members of a wild team; wild characters can be recruited and
	// will eat thrown food rather than catch it.
	Wild         bool
	Loc          Loc
	Dir          Direction
	HP           int
	MaxHP        int
	Intrinsics   []string
	EquippedItem string
	Skills       []string
	Tactic       string
}

// Dead reports whether the character has no HP left.
func (c *Character) Dead() bool { return c.HP <= 0 }

// HasIntrinsic reports whether id is one of the character's intrinsic abilities.
func (c *Character) HasIntrinsic(id string) bool {
	return slices.Contains(c.Intrinsics, id)
}

// Unarmed reports whether the character holds no item.
func (c *Character) Unarmed() bool { return c.EquippedItem == "" }

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount must be >= 0.
// Postcondition: HP >= 0.
func (c *Character) ApplyDamage(amount int) {
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}
