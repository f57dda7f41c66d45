package model

// Score is the result of evaluating a move (or the current solution) without
// committing it: the raw objective value, the total constraint violation
// across every enabled constraint, and the two augmented objectives the rest
// of the engine drives on. LocalAugmented uses each constraint's local
// (fast-adapting, inner-loop) penalty coefficient; GlobalAugmented uses the
// slower outer-controller coefficient that IncumbentHolder's
// local-augmented/global-augmented incumbents are keyed on.
type Score struct {
	Objective       float64
	TotalViolation  float64
	LocalAugmented  float64
	GlobalAugmented float64
	Feasible        bool
}

// signedObjective applies the store's optimization direction so that every
// augmented objective is a quantity to be minimized: Maximize negates.
func (s *Store) signedObjective(raw float64) float64 {
	if s.direction == Maximize {
		return -raw
	}
	return raw
}

// Recompute rebuilds every cached incremental total from scratch: objective
// value, each constraint's violation, and the running violation/penalty
// sums. Called once after model construction and after any presolve pass
// that changes which constraints are enabled or what expressions contain;
// never called mid-search, where EvaluateMove/ApplyMove maintain the totals
// incrementally.
func (s *Store) Recompute() {
	for _, e := range s.expressions {
		e.recompute(s.valueOf)
	}
	s.objective.recompute(s.valueOf)

	s.curObjective = s.objective.value
	s.curTotalViolation = 0
	s.curLocalPenalty = 0
	s.curGlobalPenalty = 0
	for _, c := range s.constraints {
		c.recomputeViolation()
		if !c.enabled {
			continue
		}
		s.curTotalViolation += c.violation
		s.curLocalPenalty += c.penaltyLocal * c.violation
		s.curGlobalPenalty += c.penaltyGlobal * c.violation
	}
}

// RefreshPenalties resyncs the cached local/global penalty totals from each
// constraint's already-current violation after the caller changes one or
// more penalty coefficients via Constraint.SetPenaltyCoefficients. It is
// cheap (one pass over constraints, no expression recomputation) and is the
// expected counterpart the outer controller calls after every relax/tighten
// step; EvaluateMove/ApplyMove never call it themselves.
func (s *Store) RefreshPenalties() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.curLocalPenalty = 0
	s.curGlobalPenalty = 0
	for _, c := range s.constraints {
		if !c.enabled {
			continue
		}
		s.curLocalPenalty += c.penaltyLocal * c.violation
		s.curGlobalPenalty += c.penaltyGlobal * c.violation
	}
}

// CurrentScore reports the Score of the committed solution, as last
// maintained by Recompute/ApplyMove.
func (s *Store) CurrentScore() Score {
	obj := s.signedObjective(s.curObjective)
	return Score{
		Objective:       s.curObjective,
		TotalViolation:  s.curTotalViolation,
		LocalAugmented:  obj + s.curLocalPenalty,
		GlobalAugmented: obj + s.curGlobalPenalty,
		Feasible:        s.curTotalViolation < EPSILON,
	}
}

// deltaSet is scratch state shared by EvaluateMove and ApplyMove: the
// candidate value of every altered variable, and the recomputed value of
// every expression touched by at least one altered variable.
type deltaSet struct {
	values      map[VariableID]int64
	exprValues  map[ExpressionID]float64
	constraints map[ConstraintID]struct{}
}

func (s *Store) buildDelta(m *Move) (*deltaSet, error) {
	if err := s.ValidateMove(m); err != nil {
		return nil, err
	}
	d := &deltaSet{
		values:      make(map[VariableID]int64, len(m.Alterations)),
		exprValues:  map[ExpressionID]float64{},
		constraints: map[ConstraintID]struct{}{},
	}
	for _, a := range m.Alterations {
		d.values[a.Variable] = a.NewValue
	}
	touchedExprs := map[ExpressionID]*Expression{}
	for v := range d.values {
		for _, cid := range s.RelatedConstraints(v) {
			c := s.constraints[cid]
			if !c.enabled {
				continue
			}
			d.constraints[cid] = struct{}{}
			touchedExprs[c.expr.id] = c.expr
		}
	}
	if exprTouchesAny(s.objective, d.values) {
		touchedExprs[s.objective.id] = s.objective
	}
	valueOf := func(v VariableID) int64 {
		if nv, ok := d.values[v]; ok {
			return nv
		}
		return s.valueOf(v)
	}
	for id, e := range touchedExprs {
		var total float64
		for _, t := range e.terms {
			total += t.coef * float64(valueOf(t.v))
		}
		d.exprValues[id] = SaturateFloat64(total + e.const_)
	}
	return d, nil
}

func exprTouchesAny(e *Expression, values map[VariableID]int64) bool {
	for v := range values {
		if e.Coefficient(v) != 0 {
			return true
		}
	}
	return false
}

// EvaluateMove computes the Score that would result from applying m,
// without mutating the Store. It touches only the expressions and
// constraints incident to m's altered variables (the incidence graph from
// incidence.go), so its cost is proportional to m's footprint, not to the
// size of the model. Returns an error if m is invalid (out-of-bounds value,
// fixed variable).
func (s *Store) EvaluateMove(m *Move) (Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.buildDelta(m)
	if err != nil {
		return Score{}, err
	}

	objective := s.curObjective
	if nv, ok := d.exprValues[s.objective.id]; ok {
		objective = nv
	}

	totalViolation := s.curTotalViolation
	localPenalty := s.curLocalPenalty
	globalPenalty := s.curGlobalPenalty
	for cid := range d.constraints {
		c := s.constraints[cid]
		totalViolation -= c.violation
		localPenalty -= c.penaltyLocal * c.violation
		globalPenalty -= c.penaltyGlobal * c.violation

		lhs := d.exprValues[c.expr.id]
		v := penalty(c.sense, lhs, c.rhs)
		totalViolation += v
		localPenalty += c.penaltyLocal * v
		globalPenalty += c.penaltyGlobal * v
	}

	obj := s.signedObjective(objective)
	return Score{
		Objective:       objective,
		TotalViolation:  totalViolation,
		LocalAugmented:  obj + localPenalty,
		GlobalAugmented: obj + globalPenalty,
		Feasible:        totalViolation < EPSILON,
	}, nil
}

// ApplyMove commits m: it writes every altered variable's new value, updates
// the touched expressions' and constraints' cached values/violations, keeps
// any Selection's selected-member cache consistent, and maintains the
// running totals Recompute would otherwise have to rebuild from scratch.
func (s *Store) ApplyMove(m *Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.buildDelta(m)
	if err != nil {
		return err
	}

	for cid := range d.constraints {
		c := s.constraints[cid]
		s.curTotalViolation -= c.violation
		s.curLocalPenalty -= c.penaltyLocal * c.violation
		s.curGlobalPenalty -= c.penaltyGlobal * c.violation
	}

	for id, v := range d.values {
		s.variables[id].value = v
	}
	for id, val := range d.exprValues {
		if int(id) < len(s.expressions) {
			s.expressions[id].value = val
		}
	}
	if nv, ok := d.exprValues[s.objective.id]; ok {
		s.curObjective = nv
	}

	for cid := range d.constraints {
		c := s.constraints[cid]
		c.recomputeViolation()
		s.curTotalViolation += c.violation
		s.curLocalPenalty += c.penaltyLocal * c.violation
		s.curGlobalPenalty += c.penaltyGlobal * c.violation
	}

	for id := range d.values {
		v := s.variables[id]
		if sid, ok := v.Selection(); ok && v.value == 1 {
			s.selections[sid].setSelected(id)
		}
	}
	return nil
}
