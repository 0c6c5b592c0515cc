package battle

import (
	"errors"
	"iter"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// Damage deals the formula damage of the move, scaled by the context multiplier.
type Damage struct {
	Msg string `yaml:"msg"`
	VFX string `yaml:"vfx"`
}

// Apply implements Handler.
//
// Postcondition: on success the target lost the dealt HP and the
// DamageDealt tag grew by the same amount.
func (h *Damage) Apply(env *Env, _ Owner, _ *world.Character, bc *Context) iter.Seq[Wait] {
	return func(yield func(Wait) bool) {
		if bc.Target == nil || bc.Target.Dead() || bc.Data.BasePower <= 0 || env.Formula == nil {
			return
		}
		dmg := max(bc.Mult.Apply(env.Formula.Damage(bc.User, bc.Target, bc.Data)), 0)
		env.World.ApplyDamage(bc.Target, dmg)
		bc.AddDamageDealt(dmg)
		if h.VFX != "" {
			env.Show.PlayVFX(h.VFX, bc.Target.Loc, bc.User.Dir)
		}
		msg := h.Msg
		if msg == "" {
			msg = "battle.damage"
		}
		env.log(msg, name(bc.Target), dmg)
		if env.HitPause > 0 {
			yield(FrameWait(env.HitPause))
		}
	}
}

// Clone implements Handler.
func (h *Damage) Clone() Handler { c := *h; return &c }

// Message logs Msg with the user and target names and plays Sound.
type Message struct {
	Msg   string `yaml:"msg"`
	Sound string `yaml:"sound"`
}

// Apply implements Handler.
func (h *Message) Apply(env *Env, _ Owner, _ *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		env.log(h.Msg, name(bc.User), name(bc.Target))
		if h.Sound != "" {
			env.Show.PlaySound(h.Sound)
		}
	}
}

// Clone implements Handler.
func (h *Message) Clone() Handler { c := *h; return &c }

// Script asks the Lua hook Hook in Scope for a damage factor. The hook
// receives the (user, target, move, owner) IDs and returns a number n; the
// multiplier is scaled by n/Den. Den defaults to 100.
type Script struct {
	Scope string `yaml:"scope"`
	Hook  string `yaml:"hook"`
	Den   int    `yaml:"den"`
}

// Validate requires a hook name and a non-negative denominator.
func (h *Script) Validate() error {
	var errs []error
	if h.Hook == "" {
		errs = append(errs, errors.New("hook must not be empty"))
	}
	if h.Den < 0 {
		errs = append(errs, errors.New("den must be >= 0"))
	}
	return errors.Join(errs...)
}

// Apply implements Handler.
func (h *Script) Apply(env *Env, owner Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait] {
	return func(func(Wait) bool) {
		if env.Scripts == nil {
			return
		}
		ret, err := env.Scripts.CallHook(h.Scope, h.Hook,
			lua.LString(idOf(bc.User)),
			lua.LString(idOf(bc.Target)),
			lua.LString(bc.Data.ID),
			lua.LString(idOf(ownerChar)),
		)
		if err != nil {
			env.logger().Warn("script handler failed",
				zap.String("resolution", bc.ID),
				zap.String("owner", owner.OwnerID()),
				zap.String("hook", h.Hook),
				zap.Error(err),
			)
			return
		}
		n, ok := ret.(lua.LNumber)
		if !ok || n < 0 {
			return
		}
		den := h.Den
		if den == 0 {
			den = 100
		}
		bc.Mult.Mul(int(n), den)
	}
}

// Clone implements Handler.
func (h *Script) Clone() Handler { c := *h; return &c }
