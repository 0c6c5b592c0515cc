package battle

import (
	"slices"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// Explosion describes how an action propagates from its center tile.
type Explosion struct {
	// Range is the square radius around the center; 0 hits the center only.
	Range int `yaml:"range"`
	// Emitters are the visual effect IDs played over the area.
	Emitters []string `yaml:"emitters"`
	// TargetAlignments selects which characters, relative to the user, are hit.
	TargetAlignments world.Alignment `yaml:"targets"`
	// HitTiles lists the tiles hit so far, in hit order.
	HitTiles []world.Loc `yaml:"-"`
}

// Cancel stops area propagation and drops the area visuals.
//
// Postcondition: Range == 0 and Emitters is empty.
func (e *Explosion) Cancel() {
	e.Range = 0
	e.Emitters = nil
}

// Clone returns an independent copy of e.
func (e Explosion) Clone() Explosion {
	e.Emitters = slices.Clone(e.Emitters)
	e.HitTiles = slices.Clone(e.HitTiles)
	return e
}

// Targets reports whether a character with relation rel to the user is hit.
func (e Explosion) Targets(rel world.Alignment) bool {
	return e.TargetAlignments.Intersects(rel)
}

// Tiles returns the tiles covered when centered on center, center first and
// then row by row.
//
// Postcondition: len(result) == (2*Range+1)^2 for Range >= 0.
func (e Explosion) Tiles(center world.Loc) []world.Loc {
	r := max(e.Range, 0)
	out := make([]world.Loc, 0, (2*r+1)*(2*r+1))
	out = append(out, center)
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x == 0 && y == 0 {
				continue
			}
			out = append(out, center.Add(world.Loc{X: x, Y: y}))
		}
	}
	return out
}
