package ai

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ScriptCaller evaluates method preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// ErrStepLimit is returned when a decomposition does not finish within
// maxSteps expansions, which happens when tasks decompose into each other.
var ErrStepLimit = errors.New("decomposition step limit reached")

const maxSteps = 32

// PlannedAction is one primitive step of a plan.
type PlannedAction struct {
	Operator string
	Type     ActionType
	Skill    string
	// Target is nil when the operator names no target or nothing matches it.
	Target *CombatantState
}

// Planner decomposes the root task of one domain into primitive steps.
type Planner struct {
	domain    *Domain
	caller    ScriptCaller
	scope     string
	methods   map[string][]*Method
	operators map[string]*Operator
}

// NewPlanner indexes domain for planning; preconditions run in the Lua scope.
//
// Precondition: domain and caller must not be nil; domain is validated.
func NewPlanner(domain *Domain, caller ScriptCaller, scope string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	p := &Planner{
		domain:    domain,
		caller:    caller,
		scope:     scope,
		methods:   make(map[string][]*Method),
		operators: make(map[string]*Operator, len(domain.Operators)),
	}
	for _, m := range domain.Methods {
		p.methods[m.TaskID] = append(p.methods[m.TaskID], m)
	}
	for _, op := range domain.Operators {
		p.operators[op.ID] = op
	}
	return p
}

// Plan decomposes RootTask against ws, depth first, and returns the
// primitive steps in execution order. Operator targets are chosen by how
// ws.Self regards each combatant.
//
// Precondition: ws and ws.Self must not be nil.
// Postcondition: on success the result is non-nil, possibly empty. A failing
// precondition hook or ErrStepLimit aborts the plan.
func (p *Planner) Plan(ws *WorldState) ([]PlannedAction, error) {
	if ws == nil || ws.Self == nil {
		return nil, errors.New("ai.Planner.Plan: state and state.Self must not be nil")
	}
	out := []PlannedAction{}
	agenda := []string{RootTask}
	for steps := 0; len(agenda) > 0; steps++ {
		if steps == maxSteps {
			return nil, fmt.Errorf("domain %q: %w", p.domain.ID, ErrStepLimit)
		}
		next := agenda[0]
		agenda = agenda[1:]

		if op, ok := p.operators[next]; ok {
			out = append(out, PlannedAction{
				Operator: op.ID,
				Type:     op.Action,
				Skill:    op.Skill,
				Target:   ws.Select(op.Target),
			})
			continue
		}
		m, err := p.choose(next, ws)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		agenda = append(append(make([]string, 0, len(m.Subtasks)+len(agenda)), m.Subtasks...), agenda...)
	}
	return out, nil
}

// choose returns the first method of task, in declaration order, whose
// precondition holds, or nil when none does. Hooks receive the planning
// character's ID and the turn counter.
func (p *Planner) choose(task string, ws *WorldState) (*Method, error) {
	for _, m := range p.methods[task] {
		if m.Precondition == "" {
			return m, nil
		}
		v, err := p.caller.CallHook(p.scope, m.Precondition, lua.LString(ws.Self.ID), lua.LNumber(ws.Turn))
		if err != nil {
			return nil, fmt.Errorf("domain %q method %q: precondition %q: %w", p.domain.ID, m.ID, m.Precondition, err)
		}
		if lua.LVAsBool(v) {
			return m, nil
		}
	}
	return nil, nil
}

// Planners holds one Planner per domain ID. A nil Planners plans nothing.
type Planners map[string]*Planner

// NewPlanners builds a Planner for every domain.
//
// Precondition: caller must not be nil.
func NewPlanners(domains map[string]*Domain, caller ScriptCaller, scope string) Planners {
	out := make(Planners, len(domains))
	for id, d := range domains {
		out[id] = NewPlanner(d, caller, scope)
	}
	return out
}
