package battle

import (
	"iter"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// FollowUpHandler makes the owner answer a damaging action by someone else
// with Move, aimed at the original target or, with TargetUser, at the user.
// The move is measured from the tile FrontOffset steps ahead of the owner; 0
// means the adjacent tile.
type FollowUpHandler struct {
	Move        string `yaml:"move"`
	TargetUser  bool   `yaml:"target_user"`
	FrontOffset int    `yaml:"front_offset"`
	Msg         string `yaml:"msg"`
}

// Synthesize builds the nested context of the follow-up, or returns nil when
// the guards do not hold: no damage dealt yet, the owner is the attacker, no
// one to aim at, or Move is unknown.
//
// Postcondition: a non-nil result shares no explosion, hitbox, or move data
// with bc, carries the FollowUp tag, and faces ownerChar toward its target.
func (h *FollowUpHandler) Synthesize(env *Env, ownerChar *world.Character, bc *Context) *Context {
	if bc.DamageDealt() <= 0 || ownerChar == nil || ownerChar == bc.User {
		return nil
	}
	target := bc.Target
	if h.TargetUser {
		target = bc.User
	}
	if target == nil {
		return nil
	}
	skill, ok := env.Data.Move(h.Move)
	if !ok {
		return nil
	}

	if dir := world.DirTo(ownerChar.Loc, target.Loc); dir != world.DirNone {
		ownerChar.Dir = dir
	}

	nested := NewSkillContext(skill, ownerChar)
	nested.Target = target
	nested.Hitbox.Front = h.FrontOffset
	front := nested.Hitbox.FrontTile(ownerChar.Loc, ownerChar.Dir)
	nested.Hitbox.HitOffset = target.Loc.Sub(front)
	if nested.Hitbox.HitOffset.IsZero() {
		// A zero offset means "use the shape", so aim at the front tile directly.
		nested.SetExplosionTile(front)
	}
	nested.States.Set(FollowUp{})
	nested.depth = bc.depth + 1
	return nested
}

// Apply implements Handler. The nested resolution runs to completion inside
// this handler's own sequence.
func (h *FollowUpHandler) Apply(env *Env, owner Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(yield func(Wait) bool) {
		if env.Resolver == nil || bc.depth >= env.Resolver.MaxDepth {
			return
		}
		nested := h.Synthesize(env, ownerChar, bc)
		if nested == nil {
			return
		}
		env.logger().Info("follow-up",
			zap.String("resolution", bc.ID),
			zap.String("nested", nested.ID),
			zap.String("owner", owner.OwnerID()),
			zap.String("move", h.Move),
			zap.Int("depth", nested.depth),
		)
		env.log(h.Msg, name(ownerChar), name(bc.User))
		for w := range env.Resolver.Resolve(env, nested) {
			if !yield(w) {
				return
			}
		}
	}
}

// Clone implements Handler.
func (h *FollowUpHandler) Clone() Handler { c := *h; return &c }
