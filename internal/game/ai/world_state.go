package ai

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// CombatantState captures a character's planning-relevant state.
type CombatantState struct {
	ID    string
	Name  string
	Align world.Alignment // how Self regards this combatant
	HP    int
	MaxHP int
	Loc   world.Loc
	Dead  bool
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// WorldState is the snapshot passed to the HTN planner for one character.
//
// Invariant: Self must not be nil.
type WorldState struct {
	Turn       int
	Self       *CombatantState
	Combatants []*CombatantState // every other character on the floor
}

// Living returns the living combatants Self regards as any of align, in
// Combatants order.
func (ws *WorldState) Living(align world.Alignment) []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.Align.Intersects(align) {
			out = append(out, c)
		}
	}
	return out
}

// Enemies returns all living foes of Self.
func (ws *WorldState) Enemies() []*CombatantState { return ws.Living(world.AlignFoe) }

// Allies returns all living friends of Self, excluding Self.
func (ws *WorldState) Allies() []*CombatantState { return ws.Living(world.AlignFriend) }

// HasLivingEnemies returns true when at least one living enemy exists.
func (ws *WorldState) HasLivingEnemies() bool {
	return len(ws.Enemies()) > 0
}

// Nearest returns the living combatant of align closest to Self, or nil.
// Ties go to the earlier combatant.
func (ws *WorldState) Nearest(align world.Alignment) *CombatantState {
	var best *CombatantState
	for _, c := range ws.Living(align) {
		if best == nil || ws.Self.Loc.Dist8(c.Loc) < ws.Self.Loc.Dist8(best.Loc) {
			best = c
		}
	}
	return best
}

// Weakest returns the living combatant of align with the lowest HP
// percentage, or nil. Ties go to the earlier combatant.
func (ws *WorldState) Weakest(align world.Alignment) *CombatantState {
	var best *CombatantState
	for _, c := range ws.Living(align) {
		if best == nil || c.HPPercent() < best.HPPercent() {
			best = c
		}
	}
	return best
}

// Select returns the combatant sel picks, Self for a self selector, or nil.
func (ws *WorldState) Select(sel Selector) *CombatantState {
	switch {
	case sel.Align == world.AlignSelf:
		return ws.Self
	case sel.Pick == PickNearest:
		return ws.Nearest(sel.Align)
	case sel.Pick == PickWeakest:
		return ws.Weakest(sel.Align)
	default:
		return nil
	}
}

// Pick orders the candidates of a Selector.
type Pick int

// Picks.
const (
	PickNone Pick = iota
	PickNearest
	PickWeakest
)

// Selector names an operator's target by how the planning character regards
// it. The zero Selector names no one.
type Selector struct {
	Align world.Alignment
	Pick  Pick
}

var (
	pickNames  = map[string]Pick{"nearest": PickNearest, "weakest": PickWeakest}
	alignNames = map[string]world.Alignment{
		"foe":    world.AlignFoe,
		"friend": world.AlignFriend,
		"other":  world.AlignFriend | world.AlignFoe,
	}
)

// ParseSelector parses "self" or "<nearest|weakest>_<foe|friend|other>".
func ParseSelector(s string) (Selector, error) {
	if s == "" {
		return Selector{}, nil
	}
	if s == "self" {
		return Selector{Align: world.AlignSelf}, nil
	}
	pick, align, ok := strings.Cut(s, "_")
	p, pok := pickNames[pick]
	a, aok := alignNames[align]
	if !ok || !pok || !aok {
		return Selector{}, fmt.Errorf("unknown target %q", s)
	}
	return Selector{Align: a, Pick: p}, nil
}

// UnmarshalYAML decodes a selector from its ParseSelector form.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	sel, err := ParseSelector(raw)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}
