package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfx/internal/game/ai"
	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// frameLimit bounds the frames one action may stay suspended.
const frameLimit = 10_000

// sim runs actions and AI turns on one floor.
type sim struct {
	floor   *world.Floor
	env     *battle.Env
	planEnv *ai.Env
	show    *consoleShow
	tactics map[string]*ai.Tactic
	rnd     dice.Source
	logger  *zap.Logger
	// basicAttack is the skill used for ai.ActionAttack.
	basicAttack string
}

// fallback is the behavior of characters whose tactic defers or who have none.
var fallback = &ai.Tactic{ID: "default", Plans: []ai.Plan{&ai.AttackFoesPlan{}, &ai.WaitPlan{}}}

func (s *sim) useSkill(user *world.Character, skillID string) error {
	skill, ok := s.env.Data.Move(skillID)
	if !ok {
		return fmt.Errorf("unknown skill %q", skillID)
	}
	s.show.LogMessage(s.env.Text.Text("battle.uses", user.Name, skill.Name))
	return s.resolve(battle.NewSkillContext(skill, user))
}

func (s *sim) useItem(user *world.Character, itemID string, at battle.ActionType) error {
	item, ok := s.env.Data.Item(itemID)
	if !ok {
		return fmt.Errorf("unknown item %q", itemID)
	}
	key := "battle.uses"
	if at == battle.ActionThrow {
		key = "battle.throws"
	}
	s.show.LogMessage(s.env.Text.Text(key, user.Name, item.Name))
	return s.resolve(battle.NewItemContext(item, user, at))
}

func (s *sim) resolve(bc *battle.Context) error {
	d := battle.NewDriver(s.show, s.env.Resolver.Resolve(s.env, bc))
	if err := d.Run(frameLimit, s.show.Tick); err != nil {
		return err
	}
	s.logger.Info("action resolved",
		zap.String("resolution", bc.ID),
		zap.String("user", bc.User.ID),
		zap.String("move", bc.Data.ID),
		zap.Int("damage", bc.DamageDealt()),
		zap.Int("hits", len(bc.Explosion.HitTiles)),
		zap.Int("frames", d.Steps()),
	)
	return nil
}

// turn lets every living character act once, in floor order, then advances
// the turn counter.
func (s *sim) turn() error {
	for _, ch := range s.floor.Characters() {
		if ch.Dead() {
			continue
		}
		if err := s.think(ch); err != nil {
			return fmt.Errorf("turn %d, %s: %w", s.floor.TurnCount(), ch.ID, err)
		}
	}
	s.floor.AdvanceTurn()
	return nil
}

func (s *sim) think(ch *world.Character) error {
	var act *ai.Action
	if t, ok := s.tactics[ch.Tactic]; ok {
		act = t.Think(s.planEnv, ch, false, s.rnd)
	}
	if act == nil {
		act = fallback.Think(s.planEnv, ch, false, s.rnd)
	}
	if act.Dir != world.DirNone {
		ch.Dir = act.Dir
	}
	switch act.Type {
	case ai.ActionSkill:
		return s.useSkill(ch, act.Skill)
	case ai.ActionAttack:
		return s.useSkill(ch, s.basicAttack)
	default:
		s.show.LogMessage(s.env.Text.Text("battle.waits", ch.Name))
		return nil
	}
}

// livingFactions returns how many factions still have a living member.
func livingFactions(floor *world.Floor) int {
	seen := map[world.Faction]bool{}
	for _, c := range floor.Characters() {
		if c.Dead() {
			continue
		}
		f := c.Faction
		if f == world.FactionAlly {
			f = world.FactionPlayer
		}
		seen[f] = true
	}
	return len(seen)
}
