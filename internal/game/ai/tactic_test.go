package ai_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfx/internal/game/ai"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

const tacticsYAML = `
tactics:
  - id: sentry
    name: Sentry
    plans:
      - type: attack_foes
        attack: smart
        iq: [player_sense, cautious]
      - type: wait_period
        turns: 3
  - id: statue
    plans:
      - type: wait
`

func writeTactics(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tactics.yaml"), []byte(body), 0600))
	return dir
}

func TestLoadTactics(t *testing.T) {
	tactics, err := ai.LoadTactics(writeTactics(t, tacticsYAML))
	require.NoError(t, err)
	require.Len(t, tactics, 2)

	sentry := tactics["sentry"]
	require.NotNil(t, sentry)
	assert.Equal(t, "Sentry", sentry.Name)
	require.Len(t, sentry.Plans, 2)
	attack, ok := sentry.Plans[0].(*ai.AttackFoesPlan)
	require.True(t, ok)
	assert.Equal(t, ai.AttackSmart, attack.Attack)
	assert.True(t, attack.IQ.Has(ai.IQPlayerSense|ai.IQCautious))
	assert.Equal(t, &ai.WaitPeriodPlan{Turns: 3}, sentry.Plans[1])

	assert.IsType(t, &ai.WaitPlan{}, tactics["statue"].Plans[0])
}

func TestLoadTactics_Errors(t *testing.T) {
	cases := map[string]string{
		"zero period": `
tactics:
  - id: bad
    plans:
      - type: wait_period
        turns: 0
`,
		"unknown type": `
tactics:
  - id: bad
    plans:
      - type: teleport
`,
		"unknown attack choice": `
tactics:
  - id: bad
    plans:
      - type: attack_foes
        attack: clever
`,
		"unknown iq": `
tactics:
  - id: bad
    plans:
      - type: attack_foes
        iq: [psychic]
`,
		"no plans": `
tactics:
  - id: bad
`,
		"duplicate": `
tactics:
  - id: twin
    plans: [{type: wait}]
  - id: twin
    plans: [{type: wait}]
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ai.LoadTactics(writeTactics(t, body))
			assert.Error(t, err)
		})
	}
	_, err := ai.LoadTactics(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestTactic_FirstActionWins(t *testing.T) {
	var tac ai.Tactic
	require.NoError(t, yaml.Unmarshal([]byte(`
id: guard
plans:
  - type: attack_foes
  - type: wait_period
    turns: 2
`), &tac))
	require.NoError(t, tac.Validate())

	a := newArena(t)
	assert.Nil(t, tac.Think(a.env, a.ctrl, false, fixedSource{}), "turn 0 defers")
	a.floor.AdvanceTurn()
	assert.Equal(t, ai.Wait(), tac.Think(a.env, a.ctrl, false, fixedSource{}))

	require.NoError(t, a.floor.Add(hero("h1", 4, 3, 10)))
	got := tac.Think(a.env, a.ctrl, false, fixedSource{})
	require.NotNil(t, got)
	assert.Equal(t, ai.ActionSkill, got.Type)
	assert.Equal(t, world.East, got.Dir)
}

func TestTactic_CloneIndependence(t *testing.T) {
	orig := &ai.Tactic{ID: "t", Plans: []ai.Plan{&ai.WaitPeriodPlan{Turns: 4}}}
	clone := orig.Clone()
	clone.Plans[0].(*ai.WaitPeriodPlan).Turns = 1
	clone.Plans = append(clone.Plans, &ai.WaitPlan{})
	assert.Equal(t, 4, orig.Plans[0].(*ai.WaitPeriodPlan).Turns)
	assert.Len(t, orig.Plans, 1)
}

func TestPlanTypes(t *testing.T) {
	assert.Equal(t, []string{"attack_foes", "domain", "wait", "wait_period"}, ai.PlanTypes())
	_, err := ai.NewPlan("nope")
	assert.Error(t, err)
}
