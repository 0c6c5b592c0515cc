package battle

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// Resolver runs the phases of an action over its handler lists.
//
// Handlers are gathered from the move, then the item, then the intrinsics of
// every living character in floor order, and stable-sorted by priority so
// that equal priorities keep that order.
type Resolver struct {
	// MaxDepth bounds nested follow-up resolutions; 0 disables follow-ups.
	MaxDepth int
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: logger must be non-nil; maxDepth >= 0.
func NewResolver(logger *zap.Logger, maxDepth int) *Resolver {
	if logger == nil {
		panic("battle.NewResolver: logger must not be nil")
	}
	return &Resolver{MaxDepth: maxDepth, logger: logger}
}

type scheduled struct {
	priority  int
	owner     Owner
	ownerChar *world.Character
	handler   Handler
}

// Resolve returns the suspension sequence of resolving bc:
//
//  1. aim the hitbox unless the explosion tile was fixed
//  2. BeforeExplosion handlers
//  3. for each strike and each targeted character in the area, BeforeHit
//     and OnHit handlers on a per-hit copy of bc whose ExplosionTile is the
//     hit tile; a BeforeHit redirect retargets the OnHit handlers
//  4. AfterAction handlers
//
// Precondition: env.World, env.Data, and env.Show must be non-nil; bc.User
// must not be nil.
// Postcondition: once drained, bc holds the final multiplier, explosion,
// hit tiles, and DamageDealt of the action.
func (r *Resolver) Resolve(env *Env, bc *Context) iter.Seq[Wait] {
	return func(yield func(Wait) bool) {
		r.aim(env, bc)
		if !r.phase(env, bc, PhaseBeforeExplosion, yield) {
			return
		}
		if ch := env.World.CharAt(bc.ExplosionTile); ch != nil {
			bc.Target = ch
		}
		for range max(bc.Strikes, 1) {
			for _, tile := range bc.Explosion.Tiles(bc.ExplosionTile) {
				ch := env.World.CharAt(tile)
				if ch == nil || ch.Dead() || !bc.Explosion.Targets(env.World.Relation(bc.User, ch)) {
					continue
				}
				bc.Explosion.HitTiles = append(bc.Explosion.HitTiles, tile)
				hit := bc.forHit(ch, tile)
				if !r.phase(env, hit, PhaseBeforeHit, yield) {
					return
				}
				if hit.ExplosionTile != tile {
					// Redirected while being hit: the hit lands on whoever
					// stands on the new tile, if anyone.
					hit.Target = env.World.CharAt(hit.ExplosionTile)
				}
				if !r.phase(env, hit, PhaseOnHit, yield) {
					return
				}
				bc.absorb(hit)
			}
		}
		r.phase(env, bc, PhaseAfterAction, yield)
	}
}

func (r *Resolver) aim(env *Env, bc *Context) {
	if !bc.aimed {
		bc.ExplosionTile = bc.Hitbox.TargetTile(env.World, bc.User)
		bc.aimed = true
	}
	if bc.Target == nil {
		bc.Target = env.World.CharAt(bc.ExplosionTile)
	}
}

// phase applies every handler of phase in order, draining each sequence
// before the next handler starts. It reports false when the consumer stopped.
func (r *Resolver) phase(env *Env, bc *Context, phase Phase, yield func(Wait) bool) bool {
	for _, s := range r.gather(env, bc, phase) {
		if r.logger.Core().Enabled(zap.DebugLevel) {
			r.logger.Debug("applying handler",
				zap.String("resolution", bc.ID),
				zap.Stringer("phase", phase),
				zap.String("handler", fmt.Sprintf("%T", s.handler)),
				zap.Int("priority", s.priority),
				zap.String("owner", s.owner.OwnerID()),
			)
		}
		for w := range s.handler.Apply(env, s.owner, s.ownerChar, bc) {
			if !yield(w) {
				return false
			}
		}
	}
	return true
}

func (r *Resolver) gather(env *Env, bc *Context, phase Phase) []scheduled {
	var out []scheduled
	add := func(owner Owner, ch *world.Character, lists []PriorityList) {
		for _, l := range lists {
			for _, e := range l {
				out = append(out, scheduled{priority: e.Priority, owner: owner, ownerChar: ch, handler: e.Handler})
			}
		}
	}

	add(bc.Data, bc.User, bc.Data.lists(phase, true, false))
	if bc.Item != nil {
		add(bc.Item, bc.User, bc.Item.lists(phase, true, false))
	}
	for _, ch := range env.World.Characters() {
		if ch.Dead() {
			continue
		}
		for _, id := range ch.Intrinsics {
			in, ok := env.Data.Intrinsic(id)
			if !ok {
				r.logger.Debug("unknown intrinsic",
					zap.String("character", ch.ID),
					zap.String("intrinsic", id),
				)
				continue
			}
			add(in, ch, in.lists(phase, ch == bc.User, ch == bc.Target))
		}
	}

	slices.SortStableFunc(out, func(a, b scheduled) int {
		return cmp.Compare(a.priority, b.priority)
	})
	return out
}
