package ai_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfx/internal/game/ai"
	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

type skillData map[string]int

func (d skillData) Move(id string) (*battle.Skill, bool) {
	p, ok := d[id]
	if !ok {
		return nil, false
	}
	return &battle.Skill{Data: battle.MoveData{ID: id, BasePower: p}}, true
}

func (skillData) Item(string) (*battle.ItemData, bool)           { return nil, false }
func (skillData) Intrinsic(string) (*battle.IntrinsicData, bool) { return nil, false }

// fixedSource returns n modulo the bound on every draw.
type fixedSource struct{ n int }

func (s fixedSource) Intn(n int) int { return s.n % n }

type arena struct {
	floor *world.Floor
	ctrl  *world.Character
	env   *ai.Env
}

// newArena places ctrl at (3,3) with the given characters around it.
func newArena(t *testing.T, others ...*world.Character) *arena {
	t.Helper()
	ctrl := &world.Character{
		ID: "ctrl", Name: "Ctrl", Faction: world.FactionFoe,
		HP: 20, MaxHP: 20, Loc: world.Loc{X: 3, Y: 3}, Dir: world.South,
		Skills: []string{"tackle", "unknown", "ember"},
	}
	floor, err := world.NewFloor("arena", 8, 8, append([]*world.Character{ctrl}, others...))
	require.NoError(t, err)
	return &arena{
		floor: floor,
		ctrl:  ctrl,
		env: &ai.Env{
			World:  floor,
			Data:   skillData{"tackle": 5, "ember": 9},
			Logger: zaptest.NewLogger(t),
		},
	}
}

func hero(id string, x, y, hp int) *world.Character {
	return &world.Character{ID: id, Name: id, Faction: world.FactionPlayer, HP: hp, MaxHP: 20, Loc: world.Loc{X: x, Y: y}}
}

func TestWaitPeriodPlan_Sequence(t *testing.T) {
	a := newArena(t)
	p, err := ai.NewWaitPeriodPlan(ai.IQNone, ai.AttackStandard, 3)
	require.NoError(t, err)

	want := []*ai.Action{nil, ai.Wait(), ai.Wait(), nil, ai.Wait(), ai.Wait(), nil}
	for turn, w := range want {
		assert.Equal(t, w, p.Think(a.env, a.ctrl, false, nil), "turn %d", turn)
		a.floor.AdvanceTurn()
	}
}

func TestNewWaitPeriodPlan_RejectsNonPositive(t *testing.T) {
	for _, turns := range []int{0, -1, -7} {
		p, err := ai.NewWaitPeriodPlan(ai.IQNone, ai.AttackStandard, turns)
		assert.Error(t, err)
		assert.Nil(t, p)
	}
}

func TestProperty_WaitPeriodPlan_DutyCycle(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		period := rapid.IntRange(1, 10).Draw(rt, "period")
		turns := rapid.IntRange(0, 60).Draw(rt, "turns")
		p, err := ai.NewWaitPeriodPlan(ai.IQNone, ai.AttackStandard, period)
		if err != nil {
			rt.Fatal(err)
		}
		floor, _ := world.NewFloor("f", 1, 1, nil)
		env := &ai.Env{World: floor}
		ctrl := &world.Character{ID: "c"}
		for range turns {
			floor.AdvanceTurn()
		}
		act := p.Think(env, ctrl, rapid.Bool().Draw(rt, "pre"), nil)
		if (turns%period == 0) != (act == nil) {
			rt.Fatalf("period %d turn %d: got %v", period, turns, act)
		}
		if act != nil && act.Type != ai.ActionWait {
			rt.Fatalf("expected wait, got %v", act.Type)
		}
	})
}

func TestWaitPlan_AlwaysWaits(t *testing.T) {
	a := newArena(t, hero("h", 4, 3, 20))
	for range 3 {
		assert.Equal(t, ai.Wait(), (&ai.WaitPlan{}).Think(a.env, a.ctrl, false, nil))
		a.floor.AdvanceTurn()
	}
}

func TestAttackFoesPlan_NoAdjacentFoeDefers(t *testing.T) {
	a := newArena(t, hero("far", 6, 6, 20))
	assert.Nil(t, (&ai.AttackFoesPlan{}).Think(a.env, a.ctrl, false, fixedSource{}))
}

func TestAttackFoesPlan_IgnoresFriendsAndDead(t *testing.T) {
	friend := &world.Character{ID: "pal", Faction: world.FactionFoe, HP: 5, MaxHP: 5, Loc: world.Loc{X: 4, Y: 3}}
	a := newArena(t, friend, hero("dead", 2, 3, 0))
	assert.Nil(t, (&ai.AttackFoesPlan{}).Think(a.env, a.ctrl, false, fixedSource{}))
}

func TestAttackFoesPlan_Choices(t *testing.T) {
	cases := []struct {
		name   string
		choice ai.AttackChoice
		rnd    dice.Source
		want   ai.Action
	}{
		{"standard uses first known skill on first foe", ai.AttackStandard, fixedSource{},
			ai.Action{Type: ai.ActionSkill, Skill: "tackle", Target: "h1", Dir: world.East}},
		{"dumb uses basic attack", ai.AttackDumb, fixedSource{},
			ai.Action{Type: ai.ActionAttack, Target: "h1", Dir: world.East}},
		{"smart uses strongest skill on weakest foe", ai.AttackSmart, fixedSource{},
			ai.Action{Type: ai.ActionSkill, Skill: "ember", Target: "h2", Dir: world.North}},
		{"random can pick the basic attack", ai.AttackRandom, fixedSource{n: 2},
			ai.Action{Type: ai.ActionAttack, Target: "h1", Dir: world.East}},
		{"random picks among known skills", ai.AttackRandom, fixedSource{n: 1},
			ai.Action{Type: ai.ActionSkill, Skill: "ember", Target: "h2", Dir: world.North}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newArena(t, hero("h1", 4, 3, 15), hero("h2", 3, 2, 4))
			p := &ai.AttackFoesPlan{PlanBase: ai.PlanBase{Attack: tc.choice}}
			got := p.Think(a.env, a.ctrl, false, tc.rnd)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestAttackFoesPlan_NoDataUsesBasicAttack(t *testing.T) {
	a := newArena(t, hero("h1", 4, 3, 15))
	a.env.Data = nil
	got := (&ai.AttackFoesPlan{}).Think(a.env, a.ctrl, false, fixedSource{})
	require.NotNil(t, got)
	assert.Equal(t, ai.ActionAttack, got.Type)
}

func TestAttackFoesPlan_IQ(t *testing.T) {
	a := newArena(t, hero("h1", 4, 3, 15))

	sense := &ai.AttackFoesPlan{PlanBase: ai.PlanBase{IQ: ai.IQPlayerSense}}
	assert.Nil(t, sense.Think(a.env, a.ctrl, false, fixedSource{}), "player sense never targets the player faction")

	cautious := &ai.AttackFoesPlan{PlanBase: ai.PlanBase{IQ: ai.IQCautious}}
	assert.NotNil(t, cautious.Think(a.env, a.ctrl, false, fixedSource{}))
	a.ctrl.HP = 5
	assert.Nil(t, cautious.Think(a.env, a.ctrl, false, fixedSource{}), "cautious stops at a quarter HP")
}

func planners(caller ai.ScriptCaller) ai.Planners {
	return ai.NewPlanners(map[string]*ai.Domain{"ganger_combat": gangerDomain()}, caller, "ai")
}

func TestDomainPlan(t *testing.T) {
	a := newArena(t, hero("h1", 5, 5, 15))
	a.env.Planners = planners(&mockScriptCaller{returnVal: lua.LTrue})

	got := (&ai.DomainPlan{Domain: "ganger_combat"}).Think(a.env, a.ctrl, false, nil)
	require.NotNil(t, got)
	assert.Equal(t, ai.Action{Type: ai.ActionAttack, Target: "h1", Dir: world.Southeast}, *got)

	a.env.Planners = planners(&mockScriptCaller{returnVal: lua.LFalse})
	assert.Equal(t, ai.Wait(), (&ai.DomainPlan{Domain: "ganger_combat"}).Think(a.env, a.ctrl, false, nil))
}

func TestDomainPlan_SkillOnSelfKeepsFacing(t *testing.T) {
	a := newArena(t, hero("h1", 5, 5, 15))
	d := &ai.Domain{
		ID:        "brace",
		Tasks:     []*ai.Task{{ID: "behave"}},
		Methods:   []*ai.Method{{TaskID: "behave", ID: "m", Subtasks: []string{"brace"}}},
		Operators: []*ai.Operator{{ID: "brace", Action: ai.ActionSkill, Skill: "ember", Target: ai.Selector{Align: world.AlignSelf}}},
	}
	a.env.Planners = ai.NewPlanners(map[string]*ai.Domain{"brace": d}, &mockScriptCaller{}, "ai")

	got := (&ai.DomainPlan{Domain: "brace"}).Think(a.env, a.ctrl, false, nil)
	require.NotNil(t, got)
	assert.Equal(t, ai.Action{Type: ai.ActionSkill, Skill: "ember", Target: "ctrl", Dir: world.South}, *got)
}

func TestDomainPlan_PlanningErrorLoggedAtWarn(t *testing.T) {
	a := newArena(t, hero("h1", 5, 5, 15))
	core, logs := observer.New(zapcore.WarnLevel)
	a.env.Logger = zap.New(core)
	a.env.Planners = planners(&mockScriptCaller{err: errors.New("instruction limit reached")})

	assert.Nil(t, (&ai.DomainPlan{Domain: "ganger_combat"}).Think(a.env, a.ctrl, false, nil))

	entries := logs.FilterMessage("domain planning failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ctrl", fields["character"])
	assert.Equal(t, "ganger_combat", fields["domain"])
	assert.Contains(t, fields["error"], "instruction limit reached")
}

func TestDomainPlan_StepLimitLoggedAtWarn(t *testing.T) {
	a := newArena(t, hero("h1", 5, 5, 15))
	core, logs := observer.New(zapcore.WarnLevel)
	a.env.Logger = zap.New(core)
	loop := &ai.Domain{
		ID:      "loop",
		Tasks:   []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{TaskID: "behave", ID: "again", Subtasks: []string{"behave"}}},
	}
	a.env.Planners = ai.NewPlanners(map[string]*ai.Domain{"loop": loop}, &mockScriptCaller{}, "ai")

	assert.Nil(t, (&ai.DomainPlan{Domain: "loop"}).Think(a.env, a.ctrl, false, nil))
	entries := logs.FilterMessage("domain planning failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], ai.ErrStepLimit.Error())
}

func TestDomainPlan_MissingPlannerDefers(t *testing.T) {
	a := newArena(t)
	p := &ai.DomainPlan{Domain: "nowhere"}
	assert.Nil(t, p.Think(a.env, a.ctrl, false, nil))
	a.env.Planners = ai.Planners{}
	assert.Nil(t, p.Think(a.env, a.ctrl, false, nil))
	assert.Error(t, (&ai.DomainPlan{}).Validate())
}

func TestPlans_CloneIndependence(t *testing.T) {
	plans := []ai.Plan{
		&ai.WaitPeriodPlan{Turns: 3},
		&ai.WaitPlan{},
		&ai.AttackFoesPlan{},
		&ai.DomainPlan{Domain: "d"},
	}
	for _, p := range plans {
		c := p.Clone()
		assert.Equal(t, p, c)
		assert.NotSame(t, p, c)
		switch v := c.(type) {
		case *ai.WaitPeriodPlan:
			v.Turns = 9
			v.IQ = ai.IQCautious
			assert.Equal(t, 3, p.(*ai.WaitPeriodPlan).Turns)
			assert.Equal(t, ai.IQNone, p.(*ai.WaitPeriodPlan).IQ)
		case *ai.WaitPlan:
			v.Attack = ai.AttackSmart
			assert.Equal(t, ai.AttackStandard, p.(*ai.WaitPlan).Attack)
		case *ai.AttackFoesPlan:
			v.Attack = ai.AttackDumb
			assert.Equal(t, ai.AttackStandard, p.(*ai.AttackFoesPlan).Attack)
		case *ai.DomainPlan:
			v.Domain = "other"
			assert.Equal(t, "d", p.(*ai.DomainPlan).Domain)
		}
	}
}

func TestProperty_WaitPeriodPlan_CloneIndependence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		turns := rapid.IntRange(1, 100).Draw(rt, "turns")
		orig := &ai.WaitPeriodPlan{Turns: turns}
		clone := orig.Clone().(*ai.WaitPeriodPlan)
		clone.Turns = rapid.IntRange(1, 100).Draw(rt, "other")
		if orig.Turns != turns {
			rt.Fatalf("original changed to %d", orig.Turns)
		}
		orig.Turns = turns + 1
		if clone.Turns == orig.Turns {
			rt.Fatal("clone tracked original")
		}
	})
}
