package dice

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Expression is a parsed dice expression such as "2d6+3" or "4d6kh3".
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
	// KeepHighest, when > 0, keeps only that many of the highest dice.
	KeepHighest int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse parses a dice expression. Supported forms: "d20", "2d6", "2d6+3",
// "4d8-2", "4d6kh3", "4d6kh3+1".
//
// Postcondition: on success Count >= 1, Sides >= 2, and 0 <= KeepHighest < Count.
func Parse(expr string) (Expression, error) {
	m := exprPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(expr)))
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	e := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		e.KeepHighest, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		e.Modifier, _ = strconv.Atoi(m[4])
	}

	switch {
	case e.Count < 1:
		return Expression{}, fmt.Errorf("dice: die count in %q must be >= 1", expr)
	case e.Sides < 2:
		return Expression{}, fmt.Errorf("dice: die sides in %q must be >= 2", expr)
	case m[3] != "" && (e.KeepHighest < 1 || e.KeepHighest >= e.Count):
		return Expression{}, fmt.Errorf("dice: kh %d in %q must be > 0 and < %d", e.KeepHighest, expr, e.Count)
	}
	return e, nil
}

// Roll evaluates e with src.
//
// Precondition: e must come from Parse; src must be non-nil.
func Roll(e Expression, src Source) Result {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	if e.KeepHighest > 0 {
		slices.SortFunc(rolled, func(a, b int) int { return b - a })
		rolled = rolled[:e.KeepHighest]
	}
	return Result{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
}

// Roller rolls with a Source and logs every roll at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates e and logs the result.
func (r *Roller) Roll(e Expression) Result {
	res := Roll(e, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr parses expr and rolls it.
func (r *Roller) RollExpr(expr string) (Result, error) {
	e, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}
	return r.Roll(e), nil
}

// Source returns the randomness source the roller draws from.
func (r *Roller) Source() Source { return r.src }
