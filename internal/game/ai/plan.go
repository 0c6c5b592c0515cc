package ai

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// ActionType enumerates what a planned turn does.
type ActionType int

const (
	// ActionWait spends the turn in place.
	ActionWait ActionType = iota
	// ActionAttack uses the basic attack toward Dir.
	ActionAttack
	// ActionSkill uses Skill toward Dir.
	ActionSkill
)

func (t ActionType) String() string {
	switch t {
	case ActionWait:
		return "wait"
	case ActionAttack:
		return "attack"
	case ActionSkill:
		return "skill"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// UnmarshalYAML decodes an action type from its name.
func (t *ActionType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	for _, c := range []ActionType{ActionWait, ActionAttack, ActionSkill} {
		if c.String() == name {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown action %q", name)
}

// Action is the turn a plan decided on. It is consumed by the turn loop.
type Action struct {
	Type   ActionType
	Dir    world.Direction
	Skill  string
	Target string
}

// Wait returns the wait-in-place action.
func Wait() *Action { return &Action{Type: ActionWait, Dir: world.DirNone} }

// IQ is a bit set of behavior modifiers shared by every plan.
type IQ uint8

// IQ flags.
const (
	// IQPlayerSense never targets characters of the player faction.
	IQPlayerSense IQ = 1 << iota
	// IQCautious stops attacking at or below a quarter of max HP.
	IQCautious

	IQNone IQ = 0
)

var iqNames = []struct {
	flag IQ
	name string
}{
	{IQPlayerSense, "player_sense"},
	{IQCautious, "cautious"},
}

// Has reports whether every flag in o is set.
func (q IQ) Has(o IQ) bool { return o != 0 && q&o == o }

// UnmarshalYAML decodes IQ from a list of names such as [player_sense].
func (q *IQ) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return fmt.Errorf("iq must be a list of names: %w", err)
	}
	var out IQ
	for _, name := range names {
		found := false
		for _, n := range iqNames {
			if n.name == name {
				out |= n.flag
				found = true
			}
		}
		if !found {
			return fmt.Errorf("unknown iq flag %q", name)
		}
	}
	*q = out
	return nil
}

// AttackChoice is how a plan picks among its controlled character's skills.
type AttackChoice int

const (
	// AttackStandard uses the first known skill, else the basic attack.
	AttackStandard AttackChoice = iota
	// AttackRandom picks uniformly among known skills and the basic attack.
	AttackRandom
	// AttackDumb always uses the basic attack.
	AttackDumb
	// AttackSmart uses the strongest known skill on the weakest foe.
	AttackSmart
)

var attackChoiceNames = map[string]AttackChoice{
	"standard": AttackStandard,
	"random":   AttackRandom,
	"dumb":     AttackDumb,
	"smart":    AttackSmart,
}

// UnmarshalYAML decodes an attack choice from its name.
func (a *AttackChoice) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	c, ok := attackChoiceNames[name]
	if !ok {
		return fmt.Errorf("unknown attack choice %q", name)
	}
	*a = c
	return nil
}

// Env bundles the collaborators plans consume.
type Env struct {
	World world.View
	// Data resolves skill IDs; nil means the character knows no skills.
	Data battle.DataSource
	// Planners may be nil when no HTN domains are loaded.
	Planners Planners
	Logger   *zap.Logger
}

func (env *Env) logger() *zap.Logger {
	if env.Logger == nil {
		return zap.NewNop()
	}
	return env.Logger
}

// Plan decides the next action of a controlled character.
//
// Plans hold configuration only; Think is a pure function of the turn
// counter, the configuration, the character state, and rnd.
type Plan interface {
	// Think returns the chosen Action, or nil to defer to default behavior.
	// preThink marks a lookahead call made before the turn starts.
	Think(env *Env, ctrl *world.Character, preThink bool, rnd dice.Source) *Action
	// Clone returns an independent copy of the configuration.
	Clone() Plan
	// Validate reports configuration that would fail at decision time.
	Validate() error
}

// PlanBase is the configuration every plan shares.
type PlanBase struct {
	IQ     IQ           `yaml:"iq"`
	Attack AttackChoice `yaml:"attack"`
}
