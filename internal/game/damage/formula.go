// Package damage provides the dice-based damage formula used by the simulator.
package damage

import (
	"fmt"

	"github.com/cory-johannsen/dungeonfx/internal/game/battle"
	"github.com/cory-johannsen/dungeonfx/internal/game/dice"
	"github.com/cory-johannsen/dungeonfx/internal/game/world"
)

// DiceFormula deals base power plus a variance roll. It implements battle.Formula.
type DiceFormula struct {
	roller   *dice.Roller
	variance dice.Expression
}

// NewDiceFormula parses variance and binds it to roller.
//
// Precondition: roller must not be nil.
// Postcondition: Returns an error iff variance is not a valid dice expression.
func NewDiceFormula(roller *dice.Roller, variance string) (*DiceFormula, error) {
	if roller == nil {
		panic("damage.NewDiceFormula: roller must not be nil")
	}
	e, err := dice.Parse(variance)
	if err != nil {
		return nil, fmt.Errorf("damage: variance: %w", err)
	}
	return &DiceFormula{roller: roller, variance: e}, nil
}

// Damage implements battle.Formula.
//
// Postcondition: 0 for moves without base power, otherwise BasePower plus one variance roll.
func (f *DiceFormula) Damage(_, _ *world.Character, data *battle.MoveData) int {
	if data == nil || data.BasePower <= 0 {
		return 0
	}
	return data.BasePower + f.roller.Roll(f.variance).Total()
}
