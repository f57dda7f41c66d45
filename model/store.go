package model

import (
	"sync"

	"github.com/solverkit/tabumip/core"
)

// Store owns every Variable, Expression, Constraint, and Selection in dense
// arenas keyed by stable index, plus the variable<->constraint incidence
// graph. Store.mu mirrors the teacher library's split-lock idiom (one lock
// protecting mutation, readers proceeding under RLock): ApplyMove takes the
// write lock; EvaluateMove/EvaluateBatch take the read lock, which is all
// the concurrency spec section 5's two fan-out points need, since worker
// goroutines only ever read committed state.
type Store struct {
	mu sync.RWMutex

	direction Direction
	objective *Expression
	nonlinear ObjectiveFunc // non-nil => FastPath() reports false (spec section 4.1)

	variables   []*Variable
	expressions []*Expression
	constraints []*Constraint
	selections  []*Selection

	inc *incidence

	// Running totals maintained incrementally by ApplyMove and rebuilt from
	// scratch by Recompute; see evaluate.go.
	curObjective      float64
	curTotalViolation float64
	curLocalPenalty   float64
	curGlobalPenalty  float64
}

// ObjectiveFunc is the slow-path, user-supplied nonlinear objective
// callback (design note "user-defined move updater and objective as
// callbacks"): given a function to read a variable's current/candidate
// value, it returns the objective value. The store only holds it:
// EvaluateMove, ApplyMove, Recompute and CurrentScore score the linear
// objective expression and never call it.
type ObjectiveFunc func(valueOf func(VariableID) int64) float64

// NewStore creates an empty model with the given optimization direction.
func NewStore(direction Direction) *Store {
	s := &Store{direction: direction, inc: newIncidence()}
	s.objective = &Expression{index: map[VariableID]int{}}
	return s
}

// Direction returns the optimization sense.
func (s *Store) Direction() Direction { return s.direction }

// SetNonlinearObjective stores a user-defined objective callback, after
// which FastPath reports false. Scores still come from the linear
// objective expression; the callback is not called.
func (s *Store) SetNonlinearObjective(fn ObjectiveFunc) { s.nonlinear = fn }

// FastPath reports whether the objective and every constraint are linear,
// i.e. no nonlinear callback has been installed (spec section 4.1).
func (s *Store) FastPath() bool { return s.nonlinear == nil }

// Objective returns the linear objective expression (meaningless, beyond
// its variable set, when FastPath() is false).
func (s *Store) Objective() *Expression { return s.objective }

// Variables returns every variable in the store, indexed by VariableID.
func (s *Store) Variables() []*Variable { return s.variables }

// Variable returns the variable with the given ID.
func (s *Store) Variable(id VariableID) *Variable { return s.variables[id] }

// Constraints returns every constraint in the store, indexed by ConstraintID.
func (s *Store) Constraints() []*Constraint { return s.constraints }

// Constraint returns the constraint with the given ID.
func (s *Store) Constraint(id ConstraintID) *Constraint { return s.constraints[id] }

// Selections returns every selection in the store.
func (s *Store) Selections() []*Selection { return s.selections }

// Selection returns the selection with the given ID.
func (s *Store) Selection(id SelectionID) *Selection { return s.selections[id] }

// CreateVariable adds a new variable with the given bounds and sense, value
// initialized to lower.
func (s *Store) CreateVariable(name string, sense Sense, lower, upper int64) *Variable {
	id := VariableID(len(s.variables))
	v := &Variable{id: id, name: name, sense: sense, value: lower}
	v.setBoundsRaw(lower, upper)
	s.variables = append(s.variables, v)
	s.inc.ensureVariable(id)
	return v
}

// LinearTerm is a (variable, coefficient) pair used to build an Expression.
type LinearTerm struct {
	Variable VariableID
	Coef     float64
}

// CreateExpression builds a new linear expression and initializes its
// cached value and bounds from the current state of its variables.
func (s *Store) CreateExpression(terms []LinearTerm, const_ float64) *Expression {
	id := ExpressionID(len(s.expressions))
	e := &Expression{id: id, index: map[VariableID]int{}, const_: const_}
	for _, t := range terms {
		if t.Coef == 0 {
			continue
		}
		e.addToTerm(t.Variable, t.Coef)
	}
	e.recompute(s.valueOf)
	e.recomputeBounds(s.boundsOf)
	s.expressions = append(s.expressions, e)
	return e
}

// CreateConstraint adds a new enabled constraint over expr and registers it
// in the incidence graph.
func (s *Store) CreateConstraint(name string, expr *Expression, sense ConstraintSense, rhs float64) *Constraint {
	id := ConstraintID(len(s.constraints))
	c := &Constraint{id: id, name: name, expr: expr, sense: sense, rhs: rhs, enabled: true}
	c.recomputeViolation()
	s.constraints = append(s.constraints, c)
	for _, v := range expr.Variables() {
		s.inc.link(id, v)
	}
	return c
}

// SetObjective installs a linear objective expression, populating each
// variable's cached ObjectiveCoefficient.
func (s *Store) SetObjective(expr *Expression) {
	s.objective = expr
	for _, v := range s.variables {
		v.objCoef = expr.Coefficient(v.id)
	}
}

// CreateSelection ties a set of binary members together behind the
// set-partitioning invariant; exactly one of members must currently be 1.
func (s *Store) CreateSelection(constraint ConstraintID, members []VariableID) (*Selection, error) {
	if len(members) < 2 {
		return nil, ErrEmptySelection
	}
	selected := VariableID(-1)
	count := 0
	for _, m := range members {
		if s.variables[m].value == 1 {
			selected = m
			count++
		}
	}
	if count != 1 {
		InternalInvariantViolation("selection extraction on a constraint with sum(members) != 1")
	}
	id := SelectionID(len(s.selections))
	sel := &Selection{id: id, constraint: constraint, members: members, selected: selected}
	s.selections = append(s.selections, sel)
	for _, m := range members {
		s.variables[m].sense = SelectionVar
		s.variables[m].selection = id
		s.variables[m].inSelection = true
	}
	return sel, nil
}

// RelatedConstraints returns the enabled constraints referencing v.
func (s *Store) RelatedConstraints(v VariableID) []ConstraintID {
	return s.inc.relatedConstraints(v)
}

// RebuildIncidence fully rebuilds the variable<->constraint adjacency; only
// presolve is expected to call this, never the tabu-search hot loop.
func (s *Store) RebuildIncidence() { s.inc.rebuild(s.constraints) }

// IncidenceGraph returns the bipartite variable<->constraint core.Graph
// backing the incidence index, for presolve's reachability (bfs) and
// dependent-variable cycle (dfs) passes to traverse directly.
func (s *Store) IncidenceGraph() *core.Graph { return s.inc.Graph() }

// VarVertex returns the incidence-graph vertex ID for v, for callers that
// walk IncidenceGraph() directly and need to translate back and forth.
func (s *Store) VarVertex(v VariableID) string { return varVertex(v) }

// ConVertex returns the incidence-graph vertex ID for c.
func (s *Store) ConVertex(c ConstraintID) string { return conVertex(c) }

// ParseVarVertex recovers a VariableID from an incidence-graph vertex ID,
// reporting false if id does not name a variable vertex.
func (s *Store) ParseVarVertex(id string) (VariableID, bool) { return parseVarVertex(id) }

// ParseConVertex recovers a ConstraintID from an incidence-graph vertex ID,
// reporting false if id does not name a constraint vertex.
func (s *Store) ParseConVertex(id string) (ConstraintID, bool) { return parseConVertex(id) }

func (s *Store) valueOf(v VariableID) int64 { return s.variables[v].value }

func (s *Store) boundsOf(v VariableID) (int64, int64) { return s.variables[v].Bounds() }

// ValidateMove reports whether m is valid per spec section 3: every new
// value lies within the target variable's bounds and no alteration targets
// a fixed variable.
func (s *Store) ValidateMove(m *Move) error {
	for _, a := range m.Alterations {
		if int(a.Variable) < 0 || int(a.Variable) >= len(s.variables) {
			return ErrVariableNotFound
		}
		v := s.variables[a.Variable]
		if v.fixed {
			return ErrFixedVariable
		}
		if !v.InBounds(a.NewValue) {
			return ErrOutOfBounds
		}
	}
	return nil
}

// FixBy fixes v to value, disabling further value changes.
func (s *Store) FixBy(id VariableID, value int64) error {
	v := s.variables[id]
	if !v.InBounds(value) {
		return ErrOutOfBounds
	}
	v.value = value
	v.fixed = true
	return nil
}

// SetBound tightens or widens v's bounds, clamping its current value into range.
func (s *Store) SetBound(id VariableID, lower, upper int64) {
	v := s.variables[id]
	v.setBoundsRaw(lower, upper)
	if v.value < v.lower {
		v.value = v.lower
	}
	if v.value > v.upper {
		v.value = v.upper
	}
}

// SetSense changes v's sense tag (used by selection extraction and
// dependent-variable extraction during presolve).
func (s *Store) SetSense(id VariableID, sense Sense) { s.variables[id].sense = sense }

// SetDependent marks v as dependent on expr (sense must already be one of
// the Dependent* tags, typically set via SetSense in the same presolve step).
func (s *Store) SetDependent(id VariableID, expr *Expression) { s.variables[id].dependent = expr }

// SetImprovability writes v's cached improvability flags (spec section
// 4.4): whether some feasible value change of v could reduce the augmented
// objective, and whether one could reduce total violation. The neighborhood
// dispatcher is the expected caller, recomputing only the variables related
// to a just-applied move's touched variables.
func (s *Store) SetImprovability(id VariableID, objective, feasibility bool) {
	s.variables[id].improvableObjective = objective
	s.variables[id].improvableFeasibility = feasibility
}
