// Package battle implements the effect resolution pipeline for one combat
// action. A Resolver walks the ordered handler lists of the acting move, the
// used item, and every intrinsic on the floor, feeding each Handler the shared
// Context. Handlers may suspend for presentation by yielding Wait values; a
// Driver steps those suspensions from the turn loop.
package battle

import "fmt"

// ActionType classifies what produced the action being resolved.
type ActionType int

const (
	ActionSkill ActionType = iota
	ActionItem
	ActionThrow
	ActionTrap
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionSkill:
		return "skill"
	case ActionItem:
		return "item"
	case ActionThrow:
		return "throw"
	case ActionTrap:
		return "trap"
	default:
		return "unknown"
	}
}

// itemOrTrap reports whether the action bypasses redirection effects.
func (a ActionType) itemOrTrap() bool {
	return a == ActionItem || a == ActionTrap
}

// Category is the damage class of a move.
type Category string

// Known categories.
const (
	CategoryNone     Category = ""
	CategoryPhysical Category = "physical"
	CategoryMagical  Category = "magical"
	CategoryStatus   Category = "status"
)

// Damaging reports whether moves of this category deal direct damage.
func (c Category) Damaging() bool {
	return c == CategoryPhysical || c == CategoryMagical
}

// Element is a move's elemental type. The empty element matches everything
// when used as a handler filter.
type Element string

// ElementNone is the wildcard element.
const ElementNone Element = ""

// Matches reports whether filter e accepts a move of element move.
func (e Element) Matches(move Element) bool {
	return e == ElementNone || e == move
}

// Multiplier is an exact fractional accumulator composed multiplicatively.
// The zero value behaves as 1/1.
type Multiplier struct {
	Num int
	Den int
}

// Unit returns the identity multiplier.
func Unit() Multiplier { return Multiplier{Num: 1, Den: 1} }

func (m Multiplier) norm() Multiplier {
	if m.Den == 0 {
		return Unit()
	}
	return m
}

// Mul composes num/den into m.
//
// Precondition: den != 0.
// Postcondition: m equals the old value times num/den, reduced.
func (m *Multiplier) Mul(num, den int) {
	cur := m.norm()
	n, d := cur.Num*num, cur.Den*den
	if d < 0 {
		n, d = -n, -d
	}
	if g := gcd(n, d); g > 1 {
		n, d = n/g, d/g
	}
	m.Num, m.Den = n, d
}

// Apply scales amount by m using truncating integer division.
func (m Multiplier) Apply(amount int) int {
	cur := m.norm()
	return amount * cur.Num / cur.Den
}

func (m Multiplier) String() string {
	cur := m.norm()
	return fmt.Sprintf("%d/%d", cur.Num, cur.Den)
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Phase is one stage of a resolution.
type Phase int

const (
	PhaseBeforeExplosion Phase = iota
	PhaseBeforeHit
	PhaseOnHit
	PhaseAfterAction
)

func (p Phase) String() string {
	switch p {
	case PhaseBeforeExplosion:
		return "before_explosion"
	case PhaseBeforeHit:
		return "before_hit"
	case PhaseOnHit:
		return "on_hit"
	case PhaseAfterAction:
		return "after_action"
	default:
		return "unknown"
	}
}
