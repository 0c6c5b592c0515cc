package ai

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

var planFactories = map[string]func() Plan{
	"wait_period": func() Plan { return &WaitPeriodPlan{} },
	"wait":        func() Plan { return &WaitPlan{} },
	"attack_foes": func() Plan { return &AttackFoesPlan{} },
	"domain":      func() Plan { return &DomainPlan{} },
}

// NewPlan returns a zero-configured plan of the given type.
func NewPlan(name string) (Plan, error) {
	f, ok := planFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown plan type %q", name)
	}
	return f(), nil
}

// PlanTypes returns every plan type name in sorted order.
func PlanTypes() []string {
	return slices.Sorted(maps.Keys(planFactories))
}

// Tactic is a character's decision policy: Plans are consulted in order and
// the first non-nil Action wins.
type Tactic struct {
	ID    string
	Name  string
	Plans []Plan
}

// Think returns the first Action any plan produces, or nil to defer to
// default behavior.
func (t *Tactic) Think(env *Env, ctrl *world.Character, preThink bool, rnd dice.Source) *Action {
	for _, p := range t.Plans {
		if act := p.Think(env, ctrl, preThink, rnd); act != nil {
			return act
		}
	}
	return nil
}

// Clone deep-copies the tactic and each of its plans.
func (t *Tactic) Clone() *Tactic {
	c := &Tactic{ID: t.ID, Name: t.Name, Plans: make([]Plan, len(t.Plans))}
	for i, p := range t.Plans {
		c.Plans[i] = p.Clone()
	}
	return c
}

// Validate checks the ID and every plan.
//
// Postcondition: the returned error lists every violation.
func (t *Tactic) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("tactic ID must not be empty"))
	}
	if len(t.Plans) == 0 {
		errs = append(errs, fmt.Errorf("tactic %q: must have at least one plan", t.ID))
	}
	for i, p := range t.Plans {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tactic %q plan %d: %w", t.ID, i, err))
		}
	}
	return errors.Join(errs...)
}

// UnmarshalYAML decodes
//
//	{id: coward, name: Coward, plans: [{type: wait_period, turns: 3}, ...]}
func (t *Tactic) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		ID    string      `yaml:"id"`
		Name  string      `yaml:"name"`
		Plans []yaml.Node `yaml:"plans"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	t.ID, t.Name, t.Plans = raw.ID, raw.Name, nil
	for i := range raw.Plans {
		pn := &raw.Plans[i]
		var head struct {
			Type string `yaml:"type"`
		}
		if err := pn.Decode(&head); err != nil {
			return err
		}
		p, err := NewPlan(head.Type)
		if err != nil {
			return fmt.Errorf("line %d: %w", pn.Line, err)
		}
		if err := pn.Decode(p); err != nil {
			return fmt.Errorf("line %d: configuring %q: %w", pn.Line, head.Type, err)
		}
		t.Plans = append(t.Plans, p)
	}
	return nil
}

type yamlTacticFile struct {
	Tactics []*Tactic `yaml:"tactics"`
}

// LoadTactics reads all *.yaml files from dir and returns the tactics keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any file fails to parse or validate, or an ID repeats.
func LoadTactics(dir string) (map[string]*Tactic, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadTactics: reading %q: %w", dir, err)
	}
	out := make(map[string]*Tactic)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadTactics: reading %s: %w", e.Name(), err)
		}
		var f yamlTacticFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("ai.LoadTactics: parsing %s: %w", e.Name(), err)
		}
		for _, t := range f.Tactics {
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("ai.LoadTactics: %s: %w", e.Name(), err)
			}
			if _, dup := out[t.ID]; dup {
				return nil, fmt.Errorf("ai.LoadTactics: %s: duplicate tactic ID %q", e.Name(), t.ID)
			}
			out[t.ID] = t
		}
	}
	return out, nil
}
