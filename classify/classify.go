package classify

import (
	"math"

	"github.com/solverkit/tabumip/model"
)

// term is the classifier's working view of one variable's participation in
// a constraint: its coefficient and the bound/sense facts needed to test a
// structural pattern.
type term struct {
	id      model.VariableID
	coef    float64
	lower   int64
	upper   int64
	binary  bool
	depends bool
}

// Classify runs the fixed-order, deterministic pattern match of spec
// section 4.2 against c and records the verdict on c via
// Constraint.SetClassification. Store is needed to read each referenced
// variable's bounds and sense, which the Expression alone does not carry,
// and to look at sibling constraints when a pattern (MinMax/MaxMin) is only
// recognizable across a whole family rather than from one constraint alone.
func Classify(s *model.Store, c *model.Constraint) Result {
	terms := buildTerms(s, c)
	res := classifyTerms(terms, c.Sense(), c.RHS())

	if res.Type == Precedence || res.Type == VariableBound {
		if upgraded, ok := classifyPinFamily(s, c, terms); ok {
			res = upgraded
		}
	}

	c.SetClassification(int(res.Type), res.Aux)
	return res
}

func buildTerms(s *model.Store, c *model.Constraint) []term {
	expr := c.Expression()
	ids := expr.Variables()
	terms := make([]term, 0, len(ids))
	for _, id := range ids {
		v := s.Variable(id)
		lo, hi := v.Bounds()
		terms = append(terms, term{
			id:      id,
			coef:    expr.Coefficient(id),
			lower:   lo,
			upper:   hi,
			binary:  lo == 0 && hi == 1,
			depends: v.IsDependent(),
		})
	}
	return terms
}

// pinAux recognizes the two-variable "aux - x REL 0" shape (unit, opposite
// sign, zero rhs, GE or LE) that a MinMax/MaxMin family is built from, and
// returns the designated aux variable (the positive-coefficient one).
func pinAux(terms []term, sense model.ConstraintSense, rhs float64) (model.VariableID, bool) {
	if len(terms) != 2 || rhs != 0 {
		return 0, false
	}
	if sense != model.GE && sense != model.LE {
		return 0, false
	}
	a, b := terms[0], terms[1]
	if math.Abs(a.coef) != 1 || math.Abs(b.coef) != 1 {
		return 0, false
	}
	switch {
	case a.coef == 1 && b.coef == -1:
		return a.id, true
	case a.coef == -1 && b.coef == 1:
		return b.id, true
	default:
		return 0, false
	}
}

// classifyPinFamily upgrades a Precedence/VariableBound verdict to
// MinMax/MaxMin when c's aux variable is pinned the same way (same sense,
// same shape) by at least one sibling constraint: spec section 3's MinMax
// pins an auxiliary above every term of a family, MaxMin below, which is a
// property of the family, not of any single constraint.
func classifyPinFamily(s *model.Store, c *model.Constraint, terms []term) (Result, bool) {
	aux, ok := pinAux(terms, c.Sense(), c.RHS())
	if !ok {
		return Result{}, false
	}
	for _, sibID := range s.RelatedConstraints(aux) {
		if sibID == c.ID() {
			continue
		}
		sib := s.Constraint(sibID)
		if !sib.Enabled() || sib.Sense() != c.Sense() {
			continue
		}
		sibTerms := buildTerms(s, sib)
		sibAux, sibOK := pinAux(sibTerms, sib.Sense(), sib.RHS())
		if sibOK && sibAux == aux {
			if c.Sense() == model.GE {
				return Result{Type: MinMax, Aux: IntermediateAux{Auxiliary: int(aux)}}, true
			}
			return Result{Type: MaxMin, Aux: IntermediateAux{Auxiliary: int(aux)}}, true
		}
	}
	return Result{}, false
}

func classifyTerms(terms []term, sense model.ConstraintSense, rhs float64) Result {
	n := len(terms)

	switch {
	case n == 0:
		return Result{Type: GeneralLinear}
	case n == 1:
		return Result{Type: Singleton}
	case n == 2:
		if r, ok := classifyPair(terms, sense, rhs); ok {
			return r
		}
	}

	allBinary, allUnit, allPositive := scanShape(terms)

	if allBinary && allUnit && allPositive {
		switch {
		case rhs == 1 && sense == model.EQ:
			return Result{Type: SetPartitioning}
		case rhs == 1 && sense == model.LE:
			return Result{Type: SetPacking}
		case rhs == 1 && sense == model.GE:
			return Result{Type: SetCovering}
		case rhs > 1:
			return Result{Type: Cardinality}
		}
	}

	if allBinary && allPositive {
		switch {
		case sense == model.LE:
			return Result{Type: InvariantKnapsack}
		case sense == model.EQ:
			return Result{Type: EquationKnapsack}
		case sense == model.GE && rhs > 1:
			return Result{Type: MultipleCovering}
		}
	}

	if allBinary && sense == model.LE && isBinPackingShape(terms) {
		return Result{Type: BinPacking}
	}

	if allBinary && sense == model.LE && hasMixedSign(terms) {
		return Result{Type: Knapsack}
	}

	if !allBinary {
		if n == 3 && sense == model.EQ && isParitySignature(terms) {
			return Result{Type: TrinomialExclusiveNor}
		}
		if sense == model.EQ && rhs == 1 && isSoftSelectionShape(terms) {
			return Result{Type: SoftSelection}
		}
		if sense == model.LE && hasMixedSign(terms) {
			return Result{Type: IntegerKnapsack}
		}
	}

	if r, ok := classifyFlow(terms, sense, rhs); ok {
		return r
	}

	if r, ok := classifyIntermediate(terms, sense, rhs); ok {
		return r
	}

	if allBinary && sense == model.EQ && rhs > 1 {
		return Result{Type: GF2}
	}

	return Result{Type: GeneralLinear}
}

func scanShape(terms []term) (allBinary, allUnit, allPositive bool) {
	allBinary, allUnit, allPositive = true, true, true
	for _, t := range terms {
		if !t.binary {
			allBinary = false
		}
		if math.Abs(t.coef) != 1 {
			allUnit = false
		}
		if t.coef <= 0 {
			allPositive = false
		}
	}
	return
}

func hasMixedSign(terms []term) bool {
	sawPos, sawNeg := false, false
	for _, t := range terms {
		if t.coef > 0 {
			sawPos = true
		} else if t.coef < 0 {
			sawNeg = true
		}
	}
	return sawPos && sawNeg
}

// isBinPackingShape recognizes sum(items) - capacity*bin <= 0: every item
// term has unit positive coefficient, and exactly one term (the bin
// indicator) carries a negative coefficient of magnitude > 1.
func isBinPackingShape(terms []term) bool {
	if len(terms) < 3 {
		return false
	}
	negatives := 0
	for _, t := range terms {
		switch {
		case t.coef == 1:
			// item-assignment term, fine.
		case t.coef < -1:
			negatives++
		default:
			return false
		}
	}
	return negatives == 1
}

// isSoftSelectionShape recognizes a Selection-shaped equality carrying one
// extra non-binary slack: every binary member has unit coefficient, and
// exactly one non-binary term (the slack) is present.
func isSoftSelectionShape(terms []term) bool {
	slack := 0
	for _, t := range terms {
		if t.binary {
			if t.coef != 1 {
				return false
			}
			continue
		}
		slack++
	}
	return slack == 1
}

func isParitySignature(terms []term) bool {
	for _, t := range terms {
		if math.Abs(t.coef) != 1 || !t.binary {
			return false
		}
	}
	return true
}

// classifyPair handles every two-variable pattern: ExclusiveOr, ExclusiveNor,
// Aggregation, VariableBound, Precedence, BalancedIntegers,
// ConstantDifferenceIntegers, ConstantRatioIntegers, ConstantSumIntegers,
// InvertedIntegers.
func classifyPair(terms []term, sense model.ConstraintSense, rhs float64) (Result, bool) {
	a, b := terms[0], terms[1]

	if a.binary && b.binary && sense == model.EQ {
		switch {
		case a.coef == 1 && b.coef == 1 && rhs == 1:
			return Result{Type: ExclusiveOr}, true
		case a.coef == 1 && b.coef == -1 && rhs == 0:
			return Result{Type: ExclusiveNor}, true
		case a.coef == -1 && b.coef == 1 && rhs == 0:
			return Result{Type: ExclusiveNor}, true
		}
	}

	oppositeSign := (a.coef > 0 && b.coef < 0) || (a.coef < 0 && b.coef > 0)
	if sense == model.EQ && oppositeSign && a.coef != 0 && b.coef != 0 {
		if !a.binary || !b.binary {
			if math.Abs(a.coef) == math.Abs(b.coef) {
				if rhs == 0 {
					return Result{Type: BalancedIntegers}, true
				}
				return Result{Type: ConstantDifferenceIntegers}, true
			}
			ratio := -a.coef / b.coef
			if ratio == math.Trunc(ratio) {
				return Result{Type: ConstantRatioIntegers, Aux: RatioAux{Ratio: int64(ratio)}}, true
			}
			return Result{Type: Aggregation}, true
		}
		return Result{Type: Aggregation}, true
	}

	sameSign := (a.coef > 0 && b.coef > 0) || (a.coef < 0 && b.coef < 0)
	if sense == model.EQ && sameSign && rhs != 0 {
		return Result{Type: ConstantSumIntegers}, true
	}
	if sense == model.EQ && sameSign && rhs == 0 {
		return Result{Type: InvertedIntegers}, true
	}

	if sense != model.EQ && oppositeSign && math.Abs(a.coef) == 1 && math.Abs(b.coef) == 1 {
		return Result{Type: Precedence}, true
	}

	if sense != model.EQ {
		return Result{Type: VariableBound}, true
	}

	return Result{}, false
}

// classifyFlow recognizes zero-rhs equalities with exclusively unit
// coefficients of mixed sign: node-conservation constraints of a flow
// network, binary when every variable is binary, integer otherwise.
func classifyFlow(terms []term, sense model.ConstraintSense, rhs float64) (Result, bool) {
	if sense != model.EQ || rhs != 0 || len(terms) < 3 {
		return Result{}, false
	}
	allUnit := true
	allBinary := true
	for _, t := range terms {
		if math.Abs(t.coef) != 1 {
			allUnit = false
		}
		if !t.binary {
			allBinary = false
		}
	}
	if !allUnit || !hasMixedSign(terms) {
		return Result{}, false
	}
	if allBinary {
		return Result{Type: BinaryFlow}, true
	}
	return Result{Type: IntegerFlow}, true
}

// classifyIntermediate detects a designated unit-coefficient variable whose
// value is pinned by the rest of the expression: exactly one term has
// coefficient +-1 and is not itself dependent, under an equality sense.
func classifyIntermediate(terms []term, sense model.ConstraintSense, rhs float64) (Result, bool) {
	if sense != model.EQ || len(terms) < 2 {
		return Result{}, false
	}
	candidate := -1
	for i, t := range terms {
		if math.Abs(t.coef) == 1 && !t.depends {
			if candidate != -1 {
				return Result{}, false // more than one unit candidate, ambiguous
			}
			candidate = i
		}
	}
	if candidate == -1 {
		return Result{}, false
	}
	return Result{Type: Intermediate, Aux: IntermediateAux{Auxiliary: int(terms[candidate].id)}}, true
}
