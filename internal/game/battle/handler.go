package battle

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// Handler is one effect attached to a move, item, or intrinsic.
//
// Apply inspects and mutates bc, yielding a Wait for every presentation
// suspension. When a guard fails Apply mutates nothing and yields nothing.
// owner and ownerChar identify whose effect this is; ownerChar may differ
// from bc.User.
//
// Clone returns an independent copy of the handler configuration.
type Handler interface {
	Apply(env *Env, owner Owner, ownerChar *world.Character, bc *Context) iter.Seq[Wait]
	Clone() Handler
}

var factories = map[string]func() Handler{}

// Register makes a handler constructible from content under name.
//
// Precondition: name is unique; Register is called from init.
func Register(name string, factory func() Handler) {
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("battle: handler %q registered twice", name))
	}
	factories[name] = factory
}

// NewHandler returns a zero-configured handler registered under name.
func NewHandler(name string) (Handler, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown handler type %q", name)
	}
	return f(), nil
}

// Registered returns every registered handler type in sorted order.
func Registered() []string {
	return slices.Sorted(maps.Keys(factories))
}

// Drain runs seq to completion and returns every Wait it yielded.
func Drain(seq iter.Seq[Wait]) []Wait {
	var out []Wait
	for w := range seq {
		out = append(out, w)
	}
	return out
}

// none is the empty suspension sequence.
func none(func(Wait) bool) {}

func init() {
	Register("support_multiplier", func() Handler { return &SupportMultiplier{} })
	Register("reflect_status", func() Handler { return &ReflectStatus{} })
	Register("ally_safe_explosion", func() Handler { return &AllySafeExplosion{} })
	Register("area_dampen", func() Handler { return &AreaDampen{} })
	Register("throw_drop_suppress", func() Handler { return &ThrowDropSuppress{} })
	Register("catch_throw", func() Handler { return &CatchThrow{} })
	Register("isolate_element", func() Handler { return &IsolateElement{} })
	Register("draw_attack", func() Handler { return &DrawAttack{} })
	Register("pass_attack", func() Handler { return &PassAttack{} })
	Register("cover", func() Handler { return &Cover{} })
	Register("damage", func() Handler { return &Damage{} })
	Register("message", func() Handler { return &Message{} })
	Register("script", func() Handler { return &Script{} })
	Register("follow_up", func() Handler { return &FollowUpHandler{} })
}
