package battle

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// Context is the mutable record of one in-flight action. Exactly one Context
// is live per action; per-hit and follow-up contexts are independent copies.
type Context struct {
	// ID correlates the log lines of one resolution.
	ID         string
	ActionType ActionType
	User       *world.Character
	Target     *world.Character
	Data       *MoveData
	Explosion  Explosion
	Hitbox     Hitbox
	// Item is the used or thrown item, nil for skills and traps.
	Item          *ItemData
	ExplosionTile world.Loc
	// Strikes is how many times the hit phases repeat over the area.
	Strikes int
	States  StateSet
	Mult    Multiplier

	aimed   bool
	depth   int
	hitBase int
}

// NewContext returns an empty context for an action of type at by user.
//
// Precondition: user must not be nil.
// Postcondition: Data is non-nil and Mult is the identity.
func NewContext(at ActionType, user *world.Character) *Context {
	return &Context{
		ID:         uuid.NewString(),
		ActionType: at,
		User:       user,
		Data:       &MoveData{},
		Mult:       Unit(),
		Strikes:    1,
	}
}

// NewSkillContext returns a context for user performing skill. The skill's
// data is deep-copied so the template is never mutated.
//
// Precondition: skill and user must not be nil.
func NewSkillContext(skill *Skill, user *world.Character) *Context {
	bc := NewContext(ActionSkill, user)
	bc.Data = skill.Data.Clone()
	bc.Explosion = skill.Explosion.Clone()
	bc.Hitbox = skill.Hitbox
	bc.Strikes = max(skill.Strikes, 1)
	return bc
}

// DefaultThrow is the hitbox of a thrown item that does not declare one.
var DefaultThrow = Hitbox{Shape: ShapeLinear, Range: 10, TargetAlignments: world.AlignFriend | world.AlignFoe}

// NewItemContext returns a context for user using (ActionItem) or throwing
// (ActionThrow) item.
//
// Precondition: item and user must not be nil; at is ActionItem or ActionThrow.
func NewItemContext(item *ItemData, user *world.Character, at ActionType) *Context {
	bc := NewContext(at, user)
	bc.Item = item.Clone()
	bc.Data = bc.Item.Use.Clone()
	bc.Explosion = bc.Item.Explosion.Clone()
	switch {
	case at != ActionThrow:
		bc.Hitbox = Hitbox{Shape: ShapeSelf}
	case item.Throw.Shape == "":
		bc.Hitbox = DefaultThrow
	default:
		bc.Hitbox = item.Throw
	}
	return bc
}

// NewTrapContext returns a context for a trap at tile triggered by user.
//
// Precondition: data and user must not be nil.
func NewTrapContext(data *MoveData, explosion Explosion, user *world.Character, tile world.Loc) *Context {
	bc := NewContext(ActionTrap, user)
	bc.Data = data.Clone()
	bc.Explosion = explosion.Clone()
	bc.SetExplosionTile(tile)
	return bc
}

// SetExplosionTile fixes the center tile so the resolver does not aim the hitbox.
func (bc *Context) SetExplosionTile(loc world.Loc) {
	bc.ExplosionTile = loc
	bc.aimed = true
}

// DamageDealt returns the damage dealt so far by this resolution.
func (bc *Context) DamageDealt() int {
	d, _ := GetState[DamageDealt](&bc.States)
	return d.Amount
}

// AddDamageDealt accumulates n into the DamageDealt tag.
func (bc *Context) AddDamageDealt(n int) {
	if n == 0 {
		return
	}
	bc.States.Set(DamageDealt{Amount: bc.DamageDealt() + n})
}

// Depth returns how many follow-up resolutions enclose this one.
func (bc *Context) Depth() int { return bc.depth }

// forHit returns the per-hit copy used for the hit phases against target on
// tile. Move data and states are copied so a hit never leaks into the next tile.
func (bc *Context) forHit(target *world.Character, tile world.Loc) *Context {
	hit := *bc
	hit.Target = target
	hit.ExplosionTile = tile
	hit.Data = bc.Data.Clone()
	hit.Explosion = bc.Explosion.Clone()
	hit.States = bc.States.Clone()
	hit.hitBase = bc.DamageDealt()
	return &hit
}

// absorb folds the outcome of a finished hit back into bc.
func (bc *Context) absorb(hit *Context) {
	bc.AddDamageDealt(hit.DamageDealt() - hit.hitBase)
	if HasState[Redirected](&hit.States) {
		bc.States.Set(Redirected{})
	}
}
