package neighborhood

import "github.com/solverkit/tabumip/model"

// BinaryFlipGenerator emits, for every unfixed, non-dependent, non-Selection
// binary variable, the single move that flips it (spec section 4.4 "binary
// flip").
type BinaryFlipGenerator struct{}

func (BinaryFlipGenerator) Name() string { return "binary-flip" }

func (g BinaryFlipGenerator) UpdateMoves(s *model.Store, f Filter) []*model.Move {
	var moves []*model.Move
	for _, v := range s.Variables() {
		if v.Fixed() || v.IsDependent() || v.Sense() != model.Binary {
			continue
		}
		objImp, feasImp := v.Improvability()
		if !f.passes(objImp, feasImp) {
			continue
		}
		flipped := int64(1) - v.Value()
		if !v.InBounds(flipped) {
			continue
		}
		mv := model.NewMove(model.MoveBinary, model.Alteration{Variable: v.ID(), NewValue: flipped})
		moves = append(moves, withRelated(s, mv))
	}
	return moves
}

// IntegerStepGenerator emits, for every unfixed integer variable, up to four
// candidate moves: v-1, v+1, a deterministic-random v+k within bounds, and a
// step toward the bound that would reduce the violation of v's most-violated
// related constraint (spec section 4.4's "aggressive" step).
type IntegerStepGenerator struct {
	Rand RandSource
}

// RandSource is the minimal interface IntegerStepGenerator needs from a
// random source; *rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

func (IntegerStepGenerator) Name() string { return "integer-step" }

func (g IntegerStepGenerator) UpdateMoves(s *model.Store, f Filter) []*model.Move {
	var moves []*model.Move
	for _, v := range s.Variables() {
		if v.Fixed() || v.IsDependent() || v.Sense() != model.Integer {
			continue
		}
		objImp, feasImp := v.Improvability()
		if !f.passes(objImp, feasImp) {
			continue
		}
		lo, hi := v.Bounds()
		cur := v.Value()

		add := func(nv int64) {
			if nv == cur || !v.InBounds(nv) {
				return
			}
			mv := model.NewMove(model.MoveInteger, model.Alteration{Variable: v.ID(), NewValue: nv})
			moves = append(moves, withRelated(s, mv))
		}

		add(cur - 1)
		add(cur + 1)

		if g.Rand != nil && hi > lo {
			span := int(hi - lo + 1)
			add(lo + int64(g.Rand.Intn(span)))
		}

		if c, ok := mostViolatedRelated(s, v.ID()); ok && c.Violation() > model.EPSILON {
			coef := c.Expression().Coefficient(v.ID())
			if coef != 0 {
				// Moving v in the direction that shrinks lhs-rhs mismatch
				// reduces this constraint's violation fastest.
				lhs, _ := c.Expression().Bounds()
				_ = lhs
				target := cur
				switch {
				case c.Sense() == model.LE && coef > 0, c.Sense() == model.GE && coef < 0:
					target = cur - 1
				default:
					target = cur + 1
				}
				add(target)
			}
		}
	}
	return moves
}

// SelectionGenerator emits, for each Selection, one move per non-selected
// member: set that member to 1 and the currently-selected member to 0,
// exploiting the invariant so the partitioning constraint never needs
// re-checking (spec section 4.4 "selection move").
type SelectionGenerator struct{}

func (SelectionGenerator) Name() string { return "selection" }

func (g SelectionGenerator) UpdateMoves(s *model.Store, f Filter) []*model.Move {
	var moves []*model.Move
	for _, sel := range s.Selections() {
		cur := sel.Selected()
		for _, member := range sel.Members() {
			if member == cur {
				continue
			}
			objImp, feasImp := s.Variable(member).Improvability()
			if !f.passes(objImp, feasImp) {
				continue
			}
			mv := model.NewMove(model.MoveSelection,
				model.Alteration{Variable: member, NewValue: 1},
				model.Alteration{Variable: cur, NewValue: 0},
			)
			moves = append(moves, withRelated(s, mv))
		}
	}
	return moves
}
