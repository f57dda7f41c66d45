// Package neighborhood implements the move generators of spec section 4.4:
// one small, independent type per structural move family, dispatched by the
// constraint tag classify.Classify assigned, plus a Dispatcher that
// concatenates every enabled generator's buffer, shuffles it with a
// deterministic per-solve stream, and removes duplicate alterations before
// handing the result to the tabu-search inner loop.
package neighborhood

import "github.com/solverkit/tabumip/model"

// Filter is the accept-flag triple update_moves is called with each outer
// iteration: AcceptAll always passes every legal move; the other two narrow
// the buffer to moves whose candidate improves the objective or reduces
// total violation respectively (spec section 4.4's "improvability" tags).
type Filter struct {
	AcceptAll                  bool
	AcceptObjectiveImproving   bool
	AcceptFeasibilityImproving bool
}

// passes reports whether a move touching a variable with the given
// improvability flags should be kept under f.
func (f Filter) passes(objImprovable, feasImprovable bool) bool {
	if f.AcceptAll {
		return true
	}
	if f.AcceptObjectiveImproving && objImprovable {
		return true
	}
	if f.AcceptFeasibilityImproving && feasImprovable {
		return true
	}
	return false
}

// Generator refills its internal candidate buffer from the store's
// currently-committed state and returns it; generators never mutate s.
type Generator interface {
	Name() string
	UpdateMoves(s *model.Store, f Filter) []*model.Move
}

// relatedConstraintsOf returns the union of m's touched variables' related,
// enabled constraints; used to populate Move.RelatedConstraints, the
// per-move cache of the constraints the move can affect.
func relatedConstraintsOf(s *model.Store, vars ...model.VariableID) []model.ConstraintID {
	seen := map[model.ConstraintID]struct{}{}
	var out []model.ConstraintID
	for _, v := range vars {
		for _, cid := range s.RelatedConstraints(v) {
			if !s.Constraint(cid).Enabled() {
				continue
			}
			if _, ok := seen[cid]; !ok {
				seen[cid] = struct{}{}
				out = append(out, cid)
			}
		}
	}
	return out
}

func withRelated(s *model.Store, m *model.Move) *model.Move {
	m.RelatedConstraints = relatedConstraintsOf(s, m.Variables()...)
	return m
}

// mostViolatedRelated returns the enabled related constraint of v with the
// largest current violation, or false if v touches none.
func mostViolatedRelated(s *model.Store, v model.VariableID) (*model.Constraint, bool) {
	var best *model.Constraint
	for _, cid := range s.RelatedConstraints(v) {
		c := s.Constraint(cid)
		if !c.Enabled() {
			continue
		}
		if best == nil || c.Violation() > best.Violation() {
			best = c
		}
	}
	return best, best != nil
}
