package model

// term is one coefficient·variable pair of a linear Expression, kept in a
// slice (rather than solely a map) so that value recomputation and
// iteration order are deterministic.
type term struct {
	v    VariableID
	coef float64
}

// Expression is a linear form sum(c_v * v) + const over a fixed set of
// variables, with a cached current value and cached bounds. Coefficients
// are float64 (the engine's bounds and variable values are integer, but
// input formats may carry rational coefficients); the evaluator is the
// sole writer of Expression.value, and between writes the invariant
// value == sum(c_v * v.value) + const holds.
type Expression struct {
	id     ExpressionID
	terms  []term
	index  map[VariableID]int // var -> position in terms
	const_ float64

	value float64

	lowerBound float64
	upperBound float64
}

// ID returns the stable identifier of this expression within its Store.
func (e *Expression) ID() ExpressionID { return e.id }

// Value returns the cached current value.
func (e *Expression) Value() float64 { return e.value }

// Const returns the expression's constant term.
func (e *Expression) Const() float64 { return e.const_ }

// Bounds returns the cached [lower, upper] bound implied by variable bounds.
func (e *Expression) Bounds() (float64, float64) { return e.lowerBound, e.upperBound }

// Coefficient returns a_{e,v}, the coefficient of v in this expression (0 if absent).
func (e *Expression) Coefficient(v VariableID) float64 {
	if i, ok := e.index[v]; ok {
		return e.terms[i].coef
	}
	return 0
}

// Variables returns the variable IDs with a nonzero coefficient in this
// expression, in deterministic (insertion) order.
func (e *Expression) Variables() []VariableID {
	out := make([]VariableID, len(e.terms))
	for i, t := range e.terms {
		out[i] = t.v
	}
	return out
}

// recompute fully recomputes value from the given variable-value lookup.
// Used at construction and when rebuilding bounds after presolve; the hot
// loop uses the incremental delta path in evaluate.go instead.
func (e *Expression) recompute(valueOf func(VariableID) int64) {
	var total float64
	for _, t := range e.terms {
		total += t.coef * float64(valueOf(t.v))
	}
	e.value = SaturateFloat64(total + e.const_)
}

// recomputeBounds recomputes [lowerBound, upperBound] from each variable's
// own bounds, accounting for coefficient sign.
func (e *Expression) recomputeBounds(boundsOf func(VariableID) (int64, int64)) {
	lo, hi := e.const_, e.const_
	for _, t := range e.terms {
		vlo, vhi := boundsOf(t.v)
		var lo1, hi1 float64
		if t.coef >= 0 {
			lo1, hi1 = t.coef*float64(vlo), t.coef*float64(vhi)
		} else {
			lo1, hi1 = t.coef*float64(vhi), t.coef*float64(vlo)
		}
		lo += lo1
		hi += hi1
	}
	e.lowerBound, e.upperBound = SaturateFloat64(lo), SaturateFloat64(hi)
}

// Substitute eliminates `v` from the expression by replacing it with `sub`
// (a linear expression in other variables), used by presolve's
// dependent-variable extraction. It is only ever called on disabled
// constraints' expressions and on the objective, never mid-solve.
func (e *Expression) Substitute(v VariableID, sub *Expression) {
	i, ok := e.index[v]
	if !ok {
		return
	}
	coef := e.terms[i].coef

	// Remove v's term.
	e.removeTermAt(i)

	// Fold sub's constant, scaled by coef, into e's constant.
	e.const_ = SaturateFloat64(e.const_ + coef*sub.const_)

	// Fold sub's terms, scaled by coef, into e.
	for _, st := range sub.terms {
		e.addToTerm(st.v, coef*st.coef)
	}
}

func (e *Expression) removeTermAt(i int) {
	last := len(e.terms) - 1
	removed := e.terms[i].v
	if i != last {
		e.terms[i] = e.terms[last]
		e.index[e.terms[i].v] = i
	}
	e.terms = e.terms[:last]
	delete(e.index, removed)
}

func (e *Expression) addToTerm(v VariableID, delta float64) {
	if delta == 0 {
		return
	}
	if i, ok := e.index[v]; ok {
		e.terms[i].coef = SaturateFloat64(e.terms[i].coef + delta)
		if e.terms[i].coef == 0 {
			e.removeTermAt(i)
		}
		return
	}
	e.index[v] = len(e.terms)
	e.terms = append(e.terms, term{v: v, coef: delta})
}
