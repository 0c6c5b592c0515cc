package battle

import (
	"errors"
	"iter"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// SupportMultiplier boosts magical moves of users holding Intrinsic by 4/3.
type SupportMultiplier struct {
	Intrinsic string `yaml:"intrinsic"`
}

// Apply implements Handler.
func (h *SupportMultiplier) Apply(_ *Env, _ Owner, _ *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		if bc.Data.Category != CategoryMagical || bc.User == nil || !bc.User.HasIntrinsic(h.Intrinsic) {
			return
		}
		bc.Mult.Mul(4, 3)
	}
}

// Clone implements Handler.
func (h *SupportMultiplier) Clone() Handler { c := *h; return &c }

// AllySafeExplosion swaps the on-hit effects for Alternate when the explosion
// lands on a friend of the user.
type AllySafeExplosion struct {
	Alternate PriorityList `yaml:"alternate"`
}

// Apply implements Handler.
func (h *AllySafeExplosion) Apply(env *Env, _ Owner, _ *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		ch := env.World.CharAt(bc.ExplosionTile)
		if ch == nil || env.World.Relation(bc.User, ch) != world.AlignFriend {
			return
		}
		bc.Data.OnHits = append(PriorityList(nil), h.Alternate.Clone()...)
		bc.Data.BasePower = 0
	}
}

// Clone implements Handler.
func (h *AllySafeExplosion) Clone() Handler {
	return &AllySafeExplosion{Alternate: h.Alternate.Clone()}
}

// AreaDampen collapses the explosion to its center and scales damage.
// A positive Div divides the multiplier; a negative Div multiplies by |Div|.
type AreaDampen struct {
	Div int    `yaml:"div"`
	Msg string `yaml:"msg"`
}

// Validate rejects a zero divisor.
func (h *AreaDampen) Validate() error {
	if h.Div == 0 {
		return errors.New("div must not be 0")
	}
	return nil
}

// Apply implements Handler.
func (h *AreaDampen) Apply(env *Env, _ Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		if bc.Explosion.Range == 0 {
			return
		}
		env.log(h.Msg, name(ownerChar))
		bc.Explosion.Cancel()
		switch {
		case h.Div > 0:
			bc.Mult.Mul(1, h.Div)
		case h.Div < 0:
			bc.Mult.Mul(-h.Div, 1)
		}
	}
}

// Clone implements Handler.
func (h *AreaDampen) Clone() Handler { c := *h; return &c }

// ThrowDropSuppress cancels the explosion of thrown items that are not
// recruit items, so they do not scatter on landing.
type ThrowDropSuppress struct{}

// Apply implements Handler.
func (h *ThrowDropSuppress) Apply(_ *Env, _ Owner, _ *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		if bc.ActionType != ActionThrow || (bc.Item != nil && bc.Item.Recruit) {
			return
		}
		bc.Explosion.Cancel()
	}
}

// Clone implements Handler.
func (h *ThrowDropSuppress) Clone() Handler { return &ThrowDropSuppress{} }

// CatchThrow lets an unarmed character catch a thrown item. Items thrown in a
// piercing line fly past. Wild characters eat food and ammo instead of
// catching it.
type CatchThrow struct{}

// Apply implements Handler.
func (h *CatchThrow) Apply(env *Env, _ Owner, _ *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		if bc.ActionType != ActionThrow {
			return
		}
		if bc.Hitbox.IsLinear() && bc.Hitbox.Piercing {
			return
		}
		ch := env.World.CharAt(bc.ExplosionTile)
		if ch == nil || !ch.Unarmed() {
			return
		}
		if bc.Item == nil || bc.Item.Recruit {
			return
		}
		if ch.Wild && (bc.Item.Edible || bc.Item.Ammo) {
			return
		}
		bc.Explosion.Cancel()
	}
}

// Clone implements Handler.
func (h *CatchThrow) Clone() Handler { return &CatchThrow{} }

// IsolateElement stops moves of Element from spreading when they land on the
// owner.
type IsolateElement struct {
	Element Element `yaml:"element"`
}

// Apply implements Handler.
func (h *IsolateElement) Apply(env *Env, _ Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		if !h.Element.Matches(bc.Data.Element) {
			return
		}
		if ch := env.World.CharAt(bc.ExplosionTile); ch == nil || ch != ownerChar {
			return
		}
		bc.Explosion.Range = 0
	}
}

// Clone implements Handler.
func (h *IsolateElement) Clone() Handler { c := *h; return &c }
