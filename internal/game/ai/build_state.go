package ai

import "github.com/cory-johannsen/dungeonfx/internal/game/world"

func snapshot(view world.View, self, c *world.Character) *CombatantState {
	return &CombatantState{
		ID:    c.ID,
		Name:  c.Name,
		Align: view.Relation(self, c),
		HP:    c.HP,
		MaxHP: c.MaxHP,
		Loc:   c.Loc,
		Dead:  c.Dead(),
	}
}

// BuildWorldState constructs a WorldState snapshot of view for ctrl.
//
// Precondition: view and ctrl must not be nil.
// Postcondition: ws.Self.ID == ctrl.ID; every other character on the floor is represented.
func BuildWorldState(view world.View, ctrl *world.Character) *WorldState {
	ws := &WorldState{
		Turn: view.TurnCount(),
		Self: snapshot(view, ctrl, ctrl),
	}
	for _, c := range view.Characters() {
		if c == ctrl {
			continue
		}
		ws.Combatants = append(ws.Combatants, snapshot(view, ctrl, c))
	}
	return ws
}
