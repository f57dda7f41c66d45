package neighborhood

import (
	"github.com/solverkit/tabumip/classify"
	"github.com/solverkit/tabumip/model"
)

// StructuralGenerator emits the small, closed-form move set that keeps one
// classified constraint satisfied while changing the fewest other variables
// (spec section 4.4): ExclusiveOr, ExclusiveNor, Aggregation, VariableBound,
// Precedence, InvertedIntegers, BalancedIntegers, ConstantSum/Difference/
// RatioIntegers, and TrinomialExclusiveNor. Intermediate constraints are
// left to presolve's dependent-variable extraction and are skipped here.
type StructuralGenerator struct{}

func (StructuralGenerator) Name() string { return "structural" }

func (g StructuralGenerator) UpdateMoves(s *model.Store, f Filter) []*model.Move {
	var moves []*model.Move
	for _, c := range s.Constraints() {
		if !c.Enabled() {
			continue
		}
		ct, aux, ok := c.Classification()
		if !ok {
			continue
		}
		switch classify.ConstraintType(ct) {
		case classify.ExclusiveOr, classify.ExclusiveNor, classify.Aggregation,
			classify.VariableBound, classify.Precedence, classify.InvertedIntegers,
			classify.BalancedIntegers, classify.ConstantSumIntegers,
			classify.ConstantDifferenceIntegers:
			moves = append(moves, g.pairMoves(s, c, f)...)
		case classify.ConstantRatioIntegers:
			if ratio, ok := aux.(classify.RatioAux); ok {
				moves = append(moves, g.ratioMoves(s, c, ratio.Ratio, f)...)
			}
		case classify.TrinomialExclusiveNor:
			moves = append(moves, g.trinomialMoves(s, c, f)...)
		}
	}
	return moves
}

// pairMoves handles every two-variable equality/inequality pattern by
// stepping one variable by ±1 and compensating the other by the ratio of
// coefficients, emitted only when the compensation lands on an integer
// value within bounds.
func (g StructuralGenerator) pairMoves(s *model.Store, c *model.Constraint, f Filter) []*model.Move {
	vars := c.Expression().Variables()
	if len(vars) != 2 {
		return nil
	}
	a, b := vars[0], vars[1]
	ca := c.Expression().Coefficient(a)
	cb := c.Expression().Coefficient(b)
	if ca == 0 || cb == 0 {
		return nil
	}

	var moves []*model.Move
	for _, delta := range []int64{1, -1} {
		compensation := -float64(delta) * ca / cb
		rounded := int64(compensation)
		if float64(rounded) != compensation {
			continue
		}
		va, vb := s.Variable(a), s.Variable(b)
		if va.Fixed() || vb.Fixed() {
			continue
		}
		newA := va.Value() + delta
		newB := vb.Value() + rounded
		if !va.InBounds(newA) || !vb.InBounds(newB) {
			continue
		}
		objA, feasA := va.Improvability()
		objB, feasB := vb.Improvability()
		if !f.passes(objA || objB, feasA || feasB) {
			continue
		}
		mv := model.NewMove(model.MoveStructural,
			model.Alteration{Variable: a, NewValue: newA},
			model.Alteration{Variable: b, NewValue: newB},
		)
		moves = append(moves, withRelated(s, mv))
	}
	return moves
}

// ratioMoves implements ConstantRatioIntegers's documented closed form:
// for a*x + b*y = 0 with integer ratio k = -a/b it emits (x,y) = (+1, -a/b)
// and (x,y) = (-1, +a/b), so the constraint stays satisfied.
func (g StructuralGenerator) ratioMoves(s *model.Store, c *model.Constraint, ratio int64, f Filter) []*model.Move {
	vars := c.Expression().Variables()
	if len(vars) != 2 || ratio == 0 {
		return nil
	}
	x, y := vars[0], vars[1]
	var moves []*model.Move
	for _, dx := range []int64{1, -1} {
		vx, vy := s.Variable(x), s.Variable(y)
		if vx.Fixed() || vy.Fixed() {
			continue
		}
		dy := dx * ratio
		newX := vx.Value() + dx
		newY := vy.Value() + dy
		if !vx.InBounds(newX) || !vy.InBounds(newY) {
			continue
		}
		objX, feasX := vx.Improvability()
		objY, feasY := vy.Improvability()
		if !f.passes(objX || objY, feasX || feasY) {
			continue
		}
		mv := model.NewMove(model.MoveStructural,
			model.Alteration{Variable: x, NewValue: newX},
			model.Alteration{Variable: y, NewValue: newY},
		)
		moves = append(moves, withRelated(s, mv))
	}
	return moves
}

// trinomialMoves keeps a 3-variable parity constraint satisfied by flipping
// any two of the three binaries together (the only way to preserve an XOR
// parity while moving away from the current assignment).
func (g StructuralGenerator) trinomialMoves(s *model.Store, c *model.Constraint, f Filter) []*model.Move {
	vars := c.Expression().Variables()
	if len(vars) != 3 {
		return nil
	}
	pairs := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	var moves []*model.Move
	for _, p := range pairs {
		a, b := vars[p[0]], vars[p[1]]
		va, vb := s.Variable(a), s.Variable(b)
		if va.Fixed() || vb.Fixed() {
			continue
		}
		newA := int64(1) - va.Value()
		newB := int64(1) - vb.Value()
		if !va.InBounds(newA) || !vb.InBounds(newB) {
			continue
		}
		objA, feasA := va.Improvability()
		objB, feasB := vb.Improvability()
		if !f.passes(objA || objB, feasA || feasB) {
			continue
		}
		mv := model.NewMove(model.MoveStructural,
			model.Alteration{Variable: a, NewValue: newA},
			model.Alteration{Variable: b, NewValue: newB},
		)
		moves = append(moves, withRelated(s, mv))
	}
	return moves
}
