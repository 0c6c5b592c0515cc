package battle

import "github.com/cory-johannsen/dungeonfx/internal/game/world"

// Shape is the targeting pattern of an action.
type Shape string

// Known hitbox shapes.
const (
	ShapeSelf     Shape = "self"
	ShapeAdjacent Shape = "adjacent"
	ShapeLinear   Shape = "linear"
)

// Hitbox describes how an action picks its center tile.
type Hitbox struct {
	Shape Shape `yaml:"shape"`
	// Range is the maximum travel distance of a linear hitbox.
	Range int `yaml:"range"`
	// Piercing linear hitboxes pass through characters.
	Piercing bool `yaml:"piercing"`
	// TargetAlignments is who, relative to the user, the action is aimed at.
	TargetAlignments world.Alignment `yaml:"targets"`
	// HitOffset, when non-zero, overrides the shape: the center becomes the
	// front tile translated by HitOffset.
	HitOffset world.Loc `yaml:"-"`
	// Front is how many tiles ahead of the user the front tile lies; 0 means 1.
	Front int `yaml:"-"`
}

// IsLinear reports whether the hitbox travels in a line.
func (h Hitbox) IsLinear() bool { return h.Shape == ShapeLinear }

// TargetTile returns the tile the hitbox lands on when user acts.
//
// Precondition: user must not be nil.
func (h Hitbox) TargetTile(v world.View, user *world.Character) world.Loc {
	step := user.Dir.Vector()
	if !h.HitOffset.IsZero() {
		return h.FrontTile(user.Loc, user.Dir).Add(h.HitOffset)
	}
	switch h.Shape {
	case ShapeAdjacent:
		return user.Loc.Add(step)
	case ShapeLinear:
		loc := user.Loc
		for i := 0; i < max(h.Range, 1); i++ {
			loc = loc.Add(step)
			if !h.Piercing && v.CharAt(loc) != nil {
				break
			}
		}
		return loc
	default:
		return user.Loc
	}
}

// FrontTile returns the tile Front steps from loc in dir.
func (h Hitbox) FrontTile(loc world.Loc, dir world.Direction) world.Loc {
	v := dir.Vector()
	n := max(h.Front, 1)
	return loc.Add(world.Loc{X: v.X * n, Y: v.Y * n})
}
