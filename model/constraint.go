package model

// Constraint is a linear expression bound by a relational sense and
// right-hand side. Invariant: Violation() >= 0 always, and Violation() == 0
// iff the current solution is feasible with respect to this constraint.
// Disabled constraints contribute 0 to the augmented objective.
type Constraint struct {
	id      ConstraintID
	name    string
	expr    *Expression
	sense   ConstraintSense
	rhs     float64
	enabled bool

	violation float64

	penaltyLocal  float64
	penaltyGlobal float64
	lagrangian    float64

	// classType/classAux are set by package classify via SetClassification;
	// model stores them opaquely to avoid importing classify (which imports
	// model to inspect constraints).
	classType int
	classAux  any
	classified bool
}

// ID returns the stable identifier of this constraint within its Store.
func (c *Constraint) ID() ConstraintID { return c.id }

// Name returns the constraint's display name.
func (c *Constraint) Name() string { return c.name }

// Expression returns the constraint's linear form.
func (c *Constraint) Expression() *Expression { return c.expr }

// Sense returns the relational operator.
func (c *Constraint) Sense() ConstraintSense { return c.sense }

// RHS returns the right-hand side constant.
func (c *Constraint) RHS() float64 { return c.rhs }

// Enabled reports whether the constraint currently participates in
// evaluation (presolve disables constraints it has resolved).
func (c *Constraint) Enabled() bool { return c.enabled }

// SetEnabled toggles participation; presolve is the only expected caller.
func (c *Constraint) SetEnabled(enabled bool) { c.enabled = enabled }

// Violation returns the cached current violation (>= 0).
func (c *Constraint) Violation() float64 { return c.violation }

// PenaltyCoefficients returns (local, global) rho for this constraint.
func (c *Constraint) PenaltyCoefficients() (local, global float64) {
	return c.penaltyLocal, c.penaltyGlobal
}

// SetPenaltyCoefficients installs new (local, global) rho values; the outer
// controller is the only expected caller.
func (c *Constraint) SetPenaltyCoefficients(local, global float64) {
	c.penaltyLocal, c.penaltyGlobal = local, global
}

// Lagrangian returns the constraint's Lagrangian coefficient.
func (c *Constraint) Lagrangian() float64 { return c.lagrangian }

// SetLagrangian installs a new Lagrangian coefficient.
func (c *Constraint) SetLagrangian(l float64) { c.lagrangian = l }

// SetClassification records the classifier's verdict; classify.Classify is
// the only expected caller. aux carries pattern-specific payload (e.g. the
// designated auxiliary variable of an Intermediate constraint).
func (c *Constraint) SetClassification(classType int, aux any) {
	c.classType, c.classAux, c.classified = classType, aux, true
}

// Classification returns the raw classifier tag and payload, and whether
// the constraint has been classified yet.
func (c *Constraint) Classification() (classType int, aux any, classified bool) {
	return c.classType, c.classAux, c.classified
}

// penalty computes max(0, lhs-rhs) for LE, max(0, rhs-lhs) for GE, and
// |lhs-rhs| for EQ, per spec section 4.5.
func penalty(sense ConstraintSense, lhs, rhs float64) float64 {
	switch sense {
	case LE:
		if d := lhs - rhs; d > 0 {
			return d
		}
		return 0
	case GE:
		if d := rhs - lhs; d > 0 {
			return d
		}
		return 0
	case EQ:
		d := lhs - rhs
		if d < 0 {
			d = -d
		}
		return d
	default:
		InternalInvariantViolation("unknown constraint sense")
		return 0
	}
}

// recomputeViolation recomputes c.violation from c.expr.Value() and the
// constraint's sense/rhs. The evaluator is the only writer during a solve.
func (c *Constraint) recomputeViolation() {
	if !c.enabled {
		c.violation = 0
		return
	}
	c.violation = penalty(c.sense, c.expr.Value(), c.rhs)
}
