package ai_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfx/internal/game/ai"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

func TestWorldState_Enemies_ReturnsOnlyFoes(t *testing.T) {
	ws := &ai.WorldState{
		Self: &ai.CombatantState{ID: "n1"},
		Combatants: []*ai.CombatantState{
			{ID: "p1", Align: world.AlignFoe, HP: 20},
			{ID: "n2", Align: world.AlignFriend, HP: 10},
		},
	}
	enemies := ws.Enemies()
	if len(enemies) != 1 || enemies[0].ID != "p1" {
		t.Fatalf("expected 1 foe, got %v", enemies)
	}
	allies := ws.Allies()
	if len(allies) != 1 || allies[0].ID != "n2" {
		t.Fatalf("expected 1 ally, got %v", allies)
	}
}

func TestWorldState_Enemies_ExcludesDead(t *testing.T) {
	ws := &ai.WorldState{
		Self: &ai.CombatantState{ID: "n1"},
		Combatants: []*ai.CombatantState{
			{ID: "p1", Align: world.AlignFoe, Dead: true},
			{ID: "p2", Align: world.AlignFoe, HP: 20},
		},
	}
	enemies := ws.Enemies()
	if len(enemies) != 1 || enemies[0].ID != "p2" {
		t.Fatalf("expected only living p2, got %v", enemies)
	}
}

func TestWorldState_Nearest_ByDistance(t *testing.T) {
	ws := &ai.WorldState{
		Self: &ai.CombatantState{ID: "n1", Loc: world.Loc{X: 5, Y: 5}},
		Combatants: []*ai.CombatantState{
			{ID: "p1", Align: world.AlignFoe, HP: 30, Loc: world.Loc{X: 9, Y: 5}},
			{ID: "p2", Align: world.AlignFoe, HP: 20, Loc: world.Loc{X: 6, Y: 6}},
			{ID: "p3", Align: world.AlignFoe, HP: 20, Loc: world.Loc{X: 4, Y: 4}},
		},
	}
	nearest := ws.Nearest(world.AlignFoe)
	if nearest == nil || nearest.ID != "p2" {
		t.Fatalf("expected p2 as nearest, got %v", nearest)
	}
}

func TestWorldState_Weakest_ReturnsLowestHP(t *testing.T) {
	ws := &ai.WorldState{
		Self: &ai.CombatantState{ID: "n1"},
		Combatants: []*ai.CombatantState{
			{ID: "p1", Align: world.AlignFoe, HP: 30, MaxHP: 30},
			{ID: "p2", Align: world.AlignFoe, HP: 5, MaxHP: 30},
		},
	}
	weakest := ws.Weakest(world.AlignFoe)
	if weakest == nil || weakest.ID != "p2" {
		t.Fatalf("expected p2 as weakest, got %v", weakest)
	}
}

func TestWorldState_Select(t *testing.T) {
	ws := &ai.WorldState{
		Self: &ai.CombatantState{ID: "n1", Loc: world.Loc{X: 5, Y: 5}},
		Combatants: []*ai.CombatantState{
			{ID: "p1", Align: world.AlignFoe, HP: 3, MaxHP: 9, Loc: world.Loc{X: 9, Y: 9}},
			{ID: "p2", Align: world.AlignFoe, HP: 9, MaxHP: 9, Loc: world.Loc{X: 6, Y: 5}},
			{ID: "n2", Align: world.AlignFriend, HP: 1, MaxHP: 9, Loc: world.Loc{X: 5, Y: 4}},
			{ID: "n3", Align: world.AlignFriend, HP: 0, MaxHP: 9, Dead: true},
		},
	}
	cases := map[string]string{
		"self":           "n1",
		"nearest_foe":    "p2",
		"weakest_foe":    "p1",
		"weakest_friend": "n2",
		"nearest_other":  "p2",
	}
	for token, want := range cases {
		sel, err := ai.ParseSelector(token)
		if err != nil {
			t.Fatalf("ParseSelector(%q): %v", token, err)
		}
		if got := ws.Select(sel); got == nil || got.ID != want {
			t.Errorf("Select(%q) = %+v, want %s", token, got, want)
		}
	}
	if got := ws.Select(ai.Selector{}); got != nil {
		t.Fatalf("the zero selector names no one, got %+v", got)
	}
	ws.Combatants = nil
	if got := ws.Select(ai.Selector{Align: world.AlignFoe, Pick: ai.PickNearest}); got != nil {
		t.Fatalf("expected no target with no enemies, got %+v", got)
	}
}

func TestProperty_WorldState_Nearest_NilWhenNoEnemies(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		ws := &ai.WorldState{Self: &ai.CombatantState{ID: "n1"}}
		for range n {
			ws.Combatants = append(ws.Combatants, &ai.CombatantState{
				ID:    "x",
				Align: world.AlignFriend,
				HP:    rapid.IntRange(0, 30).Draw(rt, "hp"),
			})
		}
		if ws.Nearest(world.AlignFoe) != nil || ws.HasLivingEnemies() {
			rt.Fatal("expected no enemy when every combatant is a friend")
		}
	})
}
