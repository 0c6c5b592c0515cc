package ai

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// WaitPeriodPlan lets the character act normally one turn in every Turns and
// waits in place otherwise.
//
// Invariant: Turns > 0 once validated.
type WaitPeriodPlan struct {
	PlanBase `yaml:",inline"`
	Turns    int `yaml:"turns"`
}

// NewWaitPeriodPlan constructs a validated WaitPeriodPlan.
//
// Postcondition: returns an error iff turns <= 0.
func NewWaitPeriodPlan(iq IQ, attack AttackChoice, turns int) (*WaitPeriodPlan, error) {
	p := &WaitPeriodPlan{PlanBase: PlanBase{IQ: iq, Attack: attack}, Turns: turns}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate implements Plan.
func (p *WaitPeriodPlan) Validate() error {
	if p.Turns <= 0 {
		return fmt.Errorf("wait_period: turns must be > 0, got %d", p.Turns)
	}
	return nil
}

// Think implements Plan.
//
// Precondition: p has been validated.
// Postcondition: nil when the turn counter is a multiple of Turns, a wait action otherwise.
func (p *WaitPeriodPlan) Think(env *Env, _ *world.Character, _ bool, _ dice.Source) *Action {
	if env.World.TurnCount()%p.Turns == 0 {
		return nil
	}
	return Wait()
}

// Clone implements Plan.
func (p *WaitPeriodPlan) Clone() Plan { c := *p; return &c }

// WaitPlan always waits in place.
type WaitPlan struct {
	PlanBase `yaml:",inline"`
}

// Validate implements Plan.
func (p *WaitPlan) Validate() error { return nil }

// Think implements Plan.
func (p *WaitPlan) Think(*Env, *world.Character, bool, dice.Source) *Action { return Wait() }

// Clone implements Plan.
func (p *WaitPlan) Clone() Plan { c := *p; return &c }

// AttackFoesPlan attacks an adjacent foe, picking the skill and the target by
// the configured AttackChoice. It defers when no foe is adjacent.
type AttackFoesPlan struct {
	PlanBase `yaml:",inline"`
}

// Validate implements Plan.
func (p *AttackFoesPlan) Validate() error { return nil }

// Think implements Plan.
func (p *AttackFoesPlan) Think(env *Env, ctrl *world.Character, _ bool, rnd dice.Source) *Action {
	if p.IQ.Has(IQCautious) && ctrl.HP*4 <= ctrl.MaxHP {
		return nil
	}
	foes := p.adjacentFoes(env, ctrl)
	if len(foes) == 0 {
		return nil
	}
	target := p.pickTarget(foes, rnd)
	act := &Action{Type: ActionAttack, Dir: world.DirTo(ctrl.Loc, target.Loc), Target: target.ID}
	if skill := p.pickSkill(env, ctrl, rnd); skill != "" {
		act.Type = ActionSkill
		act.Skill = skill
	}
	return act
}

func (p *AttackFoesPlan) adjacentFoes(env *Env, ctrl *world.Character) []*world.Character {
	var out []*world.Character
	for _, c := range env.World.Characters() {
		if c.Dead() || ctrl.Loc.Dist8(c.Loc) != 1 || env.World.Relation(ctrl, c) != world.AlignFoe {
			continue
		}
		if p.IQ.Has(IQPlayerSense) && c.Faction == world.FactionPlayer {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *AttackFoesPlan) pickTarget(foes []*world.Character, rnd dice.Source) *world.Character {
	switch p.Attack {
	case AttackRandom:
		return foes[rnd.Intn(len(foes))]
	case AttackSmart:
		weakest := foes[0]
		for _, f := range foes[1:] {
			if f.HP < weakest.HP {
				weakest = f
			}
		}
		return weakest
	default:
		return foes[0]
	}
}

// pickSkill returns the skill to use, or "" for the basic attack.
func (p *AttackFoesPlan) pickSkill(env *Env, ctrl *world.Character, rnd dice.Source) string {
	if p.Attack == AttackDumb || env.Data == nil {
		return ""
	}
	var known []string
	best, bestPower := "", 0
	for _, id := range ctrl.Skills {
		s, ok := env.Data.Move(id)
		if !ok {
			continue
		}
		known = append(known, id)
		if best == "" || s.Data.BasePower > bestPower {
			best, bestPower = id, s.Data.BasePower
		}
	}
	if len(known) == 0 {
		return ""
	}
	switch p.Attack {
	case AttackRandom:
		// The extra slot is the basic attack.
		if i := rnd.Intn(len(known) + 1); i < len(known) {
			return known[i]
		}
		return ""
	case AttackSmart:
		return best
	default:
		return known[0]
	}
}

// Clone implements Plan.
func (p *AttackFoesPlan) Clone() Plan { c := *p; return &c }

// DomainPlan runs the HTN planner registered for Domain and turns the first
// planned primitive into an Action.
type DomainPlan struct {
	PlanBase `yaml:",inline"`
	Domain   string `yaml:"domain"`
}

// Validate implements Plan.
func (p *DomainPlan) Validate() error {
	if p.Domain == "" {
		return errors.New("domain: domain must not be empty")
	}
	return nil
}

// Think implements Plan.
//
// Postcondition: nil when no planner is registered for Domain, planning
// fails, or the plan is empty.
func (p *DomainPlan) Think(env *Env, ctrl *world.Character, preThink bool, _ dice.Source) *Action {
	planner, ok := env.Planners[p.Domain]
	if !ok {
		env.logger().Debug("no planner for domain", zap.String("domain", p.Domain))
		return nil
	}
	steps, err := planner.Plan(BuildWorldState(env.World, ctrl))
	if err != nil {
		env.logger().Warn("domain planning failed",
			zap.String("character", ctrl.ID),
			zap.String("domain", p.Domain),
			zap.Error(err),
		)
		return nil
	}
	if len(steps) == 0 {
		return nil
	}
	first := steps[0]
	env.logger().Debug("domain plan",
		zap.String("character", ctrl.ID),
		zap.String("domain", p.Domain),
		zap.String("operator", first.Operator),
		zap.Stringer("action", first.Type),
		zap.Bool("pre_think", preThink),
	)
	if first.Type == ActionWait {
		return Wait()
	}
	act := &Action{Type: first.Type, Dir: ctrl.Dir, Skill: first.Skill}
	if t := first.Target; t != nil {
		act.Target = t.ID
		if t.ID != ctrl.ID {
			act.Dir = world.DirTo(ctrl.Loc, t.Loc)
		}
	}
	return act
}

// Clone implements Plan.
func (p *DomainPlan) Clone() Plan { c := *p; return &c }
