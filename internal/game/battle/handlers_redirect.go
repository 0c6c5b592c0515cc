package battle

import (
	"iter"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// Every redirecting handler exits once the resolution carries Redirected, so
// at most one redirection happens per action. Items and traps are never
// redirected.
func redirectable(bc *Context) bool {
	return !HasState[Redirected](&bc.States) && !bc.ActionType.itemOrTrap()
}

// ReflectStatus steals status moves a user casts on itself. The move lands on
// the owner instead.
type ReflectStatus struct {
	Msg     string `yaml:"msg"`
	Emitter string `yaml:"emitter"`
	Sound   string `yaml:"sound"`
}

// Apply implements Handler.
func (h *ReflectStatus) Apply(env *Env, _ Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(yield func(Wait) bool) {
		if !redirectable(bc) || bc.Data.Category != CategoryStatus || bc.User != bc.Target {
			return
		}
		if h.Sound != "" {
			env.Show.PlaySound(h.Sound)
		}
		if h.Emitter != "" {
			env.Show.PlayVFX(h.Emitter, ownerChar.Loc, ownerChar.Dir)
		}
		if !yield(env.spin(ownerChar)) {
			return
		}
		env.log(h.Msg, name(ownerChar), name(bc.User))
		bc.Explosion.TargetAlignments |= env.World.Relation(bc.User, ownerChar)
		bc.ExplosionTile = ownerChar.Loc
		bc.Target = ownerChar
		bc.States.Set(Redirected{})
	}
}

// Clone implements Handler.
func (h *ReflectStatus) Clone() Handler { c := *h; return &c }

// DrawAttack pulls moves of Element aimed at foes onto the owner when they
// land on a character the owner regards as one of DrawFrom.
type DrawAttack struct {
	Element  Element         `yaml:"element"`
	DrawFrom world.Alignment `yaml:"draw_from"`
	Msg      string          `yaml:"msg"`
}

// Apply implements Handler.
func (h *DrawAttack) Apply(env *Env, owner Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(yield func(Wait) bool) {
		if !redirectable(bc) || !h.Element.Matches(bc.Data.Element) {
			return
		}
		ch := env.World.CharAt(bc.ExplosionTile)
		if ch == nil || !bc.Hitbox.TargetAlignments.Has(world.AlignFoe) {
			return
		}
		if !env.World.Relation(ownerChar, ch).Intersects(h.DrawFrom) {
			return
		}
		if !yield(env.spin(ownerChar)) {
			return
		}
		env.log(h.Msg, name(ownerChar), owner.OwnerName())
		bc.ExplosionTile = ownerChar.Loc
		bc.Explosion.Cancel()
		bc.States.Set(Redirected{})
	}
}

// Clone implements Handler.
func (h *DrawAttack) Clone() Handler { c := *h; return &c }

// PassAttack hands a damaging move aimed at the owner to an adjacent ally.
type PassAttack struct {
	Msg string `yaml:"msg"`
}

// Apply implements Handler.
func (h *PassAttack) Apply(env *Env, _ Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(yield func(Wait) bool) {
		if !redirectable(bc) || !bc.Data.Category.Damaging() {
			return
		}
		if env.World.CharAt(bc.ExplosionTile) != ownerChar {
			return
		}
		ally := h.adjacentAlly(env, ownerChar, bc.User)
		if ally == nil {
			return
		}
		if !yield(env.spin(ownerChar)) {
			return
		}
		env.log(h.Msg, name(ownerChar), name(ally))
		bc.ExplosionTile = ally.Loc
		bc.States.Set(Redirected{})
	}
}

// adjacentAlly returns the first living friend of owner within one tile that
// is neither owner nor the attacker.
func (h *PassAttack) adjacentAlly(env *Env, owner, attacker *world.Character) *world.Character {
	for _, c := range env.World.Characters() {
		if c == owner || c == attacker || c.Dead() {
			continue
		}
		if c.Loc.Dist8(owner.Loc) != 1 {
			continue
		}
		if env.World.Relation(owner, c) == world.AlignFriend {
			return c
		}
	}
	return nil
}

// Clone implements Handler.
func (h *PassAttack) Clone() Handler { c := *h; return &c }

// Cover makes the owner take a move aimed at an ally at or below half HP.
type Cover struct {
	Msg string `yaml:"msg"`
}

// Apply implements Handler.
func (h *Cover) Apply(env *Env, _ Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(yield func(Wait) bool) {
		if !redirectable(bc) {
			return
		}
		ch := env.World.CharAt(bc.ExplosionTile)
		if ch == nil || ch.HP*2 > ch.MaxHP {
			return
		}
		if env.World.Relation(ownerChar, ch) != world.AlignFriend {
			return
		}
		if !yield(env.spin(ownerChar)) {
			return
		}
		env.log(h.Msg, name(ownerChar), name(ch))
		bc.ExplosionTile = ownerChar.Loc
		bc.States.Set(Redirected{})
	}
}

// Clone implements Handler.
func (h *Cover) Clone() Handler { c := *h; return &c }
