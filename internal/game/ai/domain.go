// Package ai implements per-turn decision plans for controlled characters.
//
// A Tactic is an ordered list of Plans; the first plan that produces an Action
// decides the turn. DomainPlan delegates to a Hierarchical Task Network (HTN)
// planner whose method preconditions are evaluated as Lua hooks.
package ai

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
)

// RootTask is the task every planner starts decomposing from.
const RootTask = "behave"

// Task is an abstract goal that methods decompose.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes Task into Subtasks, each a task or an operator ID. An
// empty Precondition always applies; otherwise it names a Lua hook that must
// return true.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"`
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive step that becomes a turn Action. An operator with
// no action waits.
type Operator struct {
	ID     string     `yaml:"id"`
	Action ActionType `yaml:"action"`
	Skill  string     `yaml:"skill"`
	Target Selector   `yaml:"target"`
}

// Domain is one HTN decision network.
//
// Invariant: once validated, Tasks[0] is RootTask and every ID is unique
// within its kind.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

// Validate checks the structure of the network.
//
// Postcondition: the returned error lists every violation.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("domain ID must not be empty")
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("domain %q: "+format, append([]any{d.ID}, args...)...))
	}

	if len(d.Tasks) == 0 || d.Tasks[0].ID != RootTask {
		bad("first task must be %q", RootTask)
	}
	names := make(map[string]string)
	claim := func(kind, id string) {
		if id == "" {
			bad("%s with empty ID", kind)
			return
		}
		if prev, dup := names[kind+"/"+id]; dup {
			bad("duplicate %s %q", prev, id)
			return
		}
		names[kind+"/"+id] = kind
	}
	for _, t := range d.Tasks {
		claim("task", t.ID)
	}
	for _, op := range d.Operators {
		claim("operator", op.ID)
		if op.Action == ActionSkill && op.Skill == "" {
			bad("operator %q: skill action requires a skill", op.ID)
		}
		if _, task := names["task/"+op.ID]; task {
			bad("operator %q shadows a task", op.ID)
		}
	}
	for _, m := range d.Methods {
		claim("method", m.ID)
		if _, ok := names["task/"+m.TaskID]; !ok {
			bad("method %q decomposes unknown task %q", m.ID, m.TaskID)
		}
		if len(m.Subtasks) == 0 {
			bad("method %q has no subtasks", m.ID)
		}
		for _, sub := range m.Subtasks {
			_, task := names["task/"+sub]
			_, op := names["operator/"+sub]
			if !task && !op {
				bad("method %q: subtask %q is neither a task nor an operator", m.ID, sub)
			}
		}
	}
	return errors.Join(errs...)
}

// CheckSkills reports every skill operator whose skill data does not know.
func (d *Domain) CheckSkills(data battle.DataSource) error {
	var errs []error
	for _, op := range d.Operators {
		if op.Action != ActionSkill {
			continue
		}
		if _, ok := data.Move(op.Skill); !ok {
			errs = append(errs, fmt.Errorf("domain %q operator %q: unknown skill %q", d.ID, op.ID, op.Skill))
		}
	}
	return errors.Join(errs...)
}

// LoadDomains reads every *.yaml file in dir, one domain per file, and
// returns the domains keyed by ID.
//
// Postcondition: returns an error if a file fails to decode or validate, or
// two files declare the same ID.
func LoadDomains(dir string) (map[string]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: reading %q: %w", dir, err)
	}
	out := make(map[string]*Domain)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		d, err := decodeDomain(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s: %w", e.Name(), err)
		}
		if _, dup := out[d.ID]; dup {
			return nil, fmt.Errorf("ai.LoadDomains: %s: duplicate domain %q", e.Name(), d.ID)
		}
		out[d.ID] = d
	}
	return out, nil
}

func decodeDomain(path string) (*Domain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var file struct {
		Domain *Domain `yaml:"domain"`
	}
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, err
	}
	if file.Domain == nil {
		return nil, errors.New("missing top-level 'domain' key")
	}
	return file.Domain, file.Domain.Validate()
}
