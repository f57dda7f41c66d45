// Package presolve implements the fixed-point reduction rounds spec section
// 4.3 describes: redundant-constraint removal, independent- and
// implicit-variable fixing, redundant-variable dominance fixing,
// dependent-variable extraction, and selection extraction. Each round must
// strictly shrink the mutable-variable or enabled-constraint count, or the
// fixed point has been reached and the loop stops.
package presolve

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/solverkit/tabumip/bfs"
	"github.com/solverkit/tabumip/classify"
	"github.com/solverkit/tabumip/core"
	"github.com/solverkit/tabumip/dfs"
	"github.com/solverkit/tabumip/model"
)

// Report summarizes what a presolve pass accomplished.
type Report struct {
	Rounds              int
	ConstraintsDisabled int
	VariablesFixed      int
	DependentsExtracted int
	SelectionsExtracted int
	Infeasible          bool
}

// Run drives every round to fixed point, classifying (or re-classifying)
// every enabled constraint before each round so later rounds see up to
// date structural tags.
func Run(s *model.Store) Report {
	var rep Report
	for {
		rep.Rounds++
		classifyAll(s)

		progress := false
		progress = removeRedundantConstraints(s, &rep) || progress
		progress = fixIndependentVariables(s, &rep) || progress
		progress = fixImplicit(s, &rep) || progress
		progress = fixDominatedVariables(s, &rep) || progress
		progress = extractDependents(s, &rep) || progress
		progress = extractSelections(s, &rep) || progress

		if !progress {
			break
		}
		s.RebuildIncidence()
	}
	s.Recompute()
	return rep
}

func classifyAll(s *model.Store) {
	for _, c := range s.Constraints() {
		if c.Enabled() {
			classify.Classify(s, c)
		}
	}
}

// removeRedundantConstraints disables any enabled constraint whose
// expression bounds already satisfy its sense for every value the
// variables can take; a redundant singleton is used to fix or tighten its
// lone variable first. A singleton equality a*v + k == rhs that is not yet
// redundant fixes v to (rhs-k)/a when that is an integer within v's bounds
// and is then disabled; a singleton inequality that is not yet redundant
// stays enabled and leaves v's bounds unchanged.
func removeRedundantConstraints(s *model.Store, rep *Report) bool {
	progress := false
	for _, c := range s.Constraints() {
		if !c.Enabled() {
			continue
		}
		ct, _, classified := c.Classification()
		singleton := classified && classify.ConstraintType(ct) == classify.Singleton
		lo, hi := c.Expression().Bounds()
		if !alwaysSatisfied(c.Sense(), lo, hi, c.RHS()) {
			vars := c.Expression().Variables()
			if !singleton || c.Sense() != model.EQ || len(vars) != 1 || s.Variable(vars[0]).Fixed() {
				continue
			}
			target := (c.RHS() - c.Expression().Const()) / c.Expression().Coefficient(vars[0])
			if math.IsInf(target, 0) || target != math.Trunc(target) || s.FixBy(vars[0], int64(target)) != nil {
				continue
			}
			rep.VariablesFixed++
		} else if singleton {
			applySingletonBound(s, c)
		}
		c.SetEnabled(false)
		rep.ConstraintsDisabled++
		progress = true
	}
	return progress
}

func alwaysSatisfied(sense model.ConstraintSense, lo, hi, rhs float64) bool {
	switch sense {
	case model.LE:
		return hi <= rhs+model.EPSILON
	case model.GE:
		return lo >= rhs-model.EPSILON
	case model.EQ:
		return lo == hi && math.Abs(lo-rhs) < model.EPSILON
	default:
		return false
	}
}

// applySingletonBound tightens (or fixes, for equality) the lone variable
// of a redundant singleton constraint `a*v (sense) rhs`.
func applySingletonBound(s *model.Store, c *model.Constraint) {
	vars := c.Expression().Variables()
	if len(vars) != 1 {
		return
	}
	v := vars[0]
	coef := c.Expression().Coefficient(v)
	if coef == 0 {
		return
	}
	target := (c.RHS() - c.Expression().Const()) / coef
	rounded := int64(math.Round(target))

	lo, hi := s.Variable(v).Bounds()
	switch c.Sense() {
	case model.EQ:
		_ = s.FixBy(v, rounded)
	case model.LE:
		if coef > 0 {
			s.SetBound(v, lo, min(hi, rounded))
		} else {
			s.SetBound(v, max(lo, rounded), hi)
		}
	case model.GE:
		if coef > 0 {
			s.SetBound(v, max(lo, rounded), hi)
		} else {
			s.SetBound(v, lo, min(hi, rounded))
		}
	}
}

// fixIndependentVariables runs a bfs reachability scan from every enabled
// constraint over the incidence graph; a variable vertex never reached is
// independent and gets fixed to the bound that optimizes its objective
// term (or to 0, conventionally, if that coefficient is zero).
func fixIndependentVariables(s *model.Store, rep *Report) bool {
	g := s.IncidenceGraph()
	reached := map[string]bool{}
	for _, c := range s.Constraints() {
		if !c.Enabled() {
			continue
		}
		start := s.ConVertex(c.ID())
		if reached[start] || !g.HasVertex(start) {
			continue
		}
		res, err := bfs.BFS(g, start)
		if err != nil {
			continue
		}
		for _, id := range res.Order {
			reached[id] = true
		}
	}

	progress := false
	for _, v := range s.Variables() {
		if v.Fixed() || v.IsDependent() {
			continue
		}
		vertex := s.VarVertex(v.ID())
		if reached[vertex] {
			continue
		}
		lo, hi := v.Bounds()
		target := lo
		switch {
		case v.ObjectiveCoefficient() == 0:
			target = 0
			if target < lo {
				target = lo
			}
			if target > hi {
				target = hi
			}
		case (v.ObjectiveCoefficient() > 0) == (s.Direction() == model.Minimize):
			target = lo
		default:
			target = hi
		}
		if err := s.FixBy(v.ID(), target); err == nil {
			rep.VariablesFixed++
			progress = true
		}
	}
	return progress
}

// fixImplicit fixes every currently-unfixed variable whose bounds have
// collapsed to a single point.
func fixImplicit(s *model.Store, rep *Report) bool {
	progress := false
	for _, v := range s.Variables() {
		if v.Fixed() {
			continue
		}
		lo, hi := v.Bounds()
		if lo == hi {
			if err := s.FixBy(v.ID(), lo); err == nil {
				rep.VariablesFixed++
				progress = true
			}
		}
	}
	return progress
}

// fixDominatedVariables implements the redundant-variable dominance check
// for pure set-partitioning/-packing/-covering models: two binaries that
// touch exactly the same set of enabled constraints (their incidence-graph
// neighbor sets agree) and carry the same coefficient everywhere are
// interchangeable from the constraints' point of view, so the one with the
// worse objective coefficient is fixed to 0.
func fixDominatedVariables(s *model.Store, rep *Report) bool {
	for _, c := range s.Constraints() {
		if !c.Enabled() {
			continue
		}
		ct, _, ok := c.Classification()
		t := classify.ConstraintType(ct)
		if !ok || (t != classify.SetPartitioning && t != classify.SetPacking && t != classify.SetCovering) {
			return false
		}
	}
	buckets := map[string][]model.VariableID{}
	for _, v := range s.Variables() {
		if v.Fixed() || v.IsDependent() || v.Sense() != model.Binary {
			continue
		}
		sig := dominanceSignature(s, v.ID())
		if sig == "" {
			continue
		}
		buckets[sig] = append(buckets[sig], v.ID())
	}

	progress := false
	for _, group := range buckets {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return s.Variable(group[i]).ObjectiveCoefficient() < s.Variable(group[j]).ObjectiveCoefficient()
		})
		best := group[0]
		minimizing := s.Direction() == model.Minimize
		for _, cand := range group[1:] {
			dominated := cand
			if !minimizing {
				dominated = best
				best = cand
			}
			if s.Variable(dominated).Fixed() {
				continue
			}
			if err := s.FixBy(dominated, 0); err == nil {
				rep.VariablesFixed++
				progress = true
			}
		}
	}
	return progress
}

// dominanceSignature builds a deterministic string key from v's related
// constraints and its coefficient in each, sorted, so two binaries that
// participate identically hash to the same bucket. Returns "" when v
// touches no enabled constraints (nothing to dominate on).
func dominanceSignature(s *model.Store, v model.VariableID) string {
	related := s.RelatedConstraints(v)
	if len(related) == 0 {
		return ""
	}
	type entry struct {
		id   model.ConstraintID
		coef float64
	}
	entries := make([]entry, 0, len(related))
	for _, cid := range related {
		c := s.Constraint(cid)
		if !c.Enabled() {
			continue
		}
		entries = append(entries, entry{id: cid, coef: c.Expression().Coefficient(v)})
	}
	if len(entries) == 0 {
		return ""
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%d:%g;", e.id, e.coef)
	}
	return b.String()
}

// extractDependents eliminates the designated auxiliary variable of each
// enabled Intermediate-classified constraint by substitution into the
// objective; constraints of the other structural equality families are
// not extracted. It guards the elimination with a dfs cycle check
// over a fresh directed dependency graph so that a chain of substitutions
// can never close a loop back on itself.
func extractDependents(s *model.Store, rep *Report) bool {
	depGraph := core.NewGraph(core.WithDirected(true))
	progress := false

	for _, c := range s.Constraints() {
		if !c.Enabled() {
			continue
		}
		ct, aux, ok := c.Classification()
		if !ok || classify.ConstraintType(ct) != classify.Intermediate {
			continue
		}
		ia, ok := aux.(classify.IntermediateAux)
		if !ok {
			continue
		}
		depVar := model.VariableID(ia.Auxiliary)
		dv := s.Variable(depVar)
		if dv.Fixed() || dv.IsDependent() {
			continue
		}

		sub := buildSubstitution(s, c.Expression(), depVar)
		if !tryRecordEdges(depGraph, depVar, sub) {
			continue
		}

		sense := model.DependentInteger
		if dv.Sense() == model.Binary {
			sense = model.DependentBinary
		}
		s.SetSense(depVar, sense)
		s.SetDependent(depVar, sub)
		s.Objective().Substitute(depVar, sub)
		c.SetEnabled(false)

		rep.DependentsExtracted++
		progress = true
	}
	return progress
}

// buildSubstitution rewrites `coef*dep + rest == rhs` as `dep == (rhs -
// rest)/coef`, returning the right-hand expression built in the same
// store so the new Expression shares the store's variable arena.
func buildSubstitution(s *model.Store, expr *model.Expression, dep model.VariableID) *model.Expression {
	coef := expr.Coefficient(dep)
	terms := make([]model.LinearTerm, 0, len(expr.Variables())-1)
	for _, v := range expr.Variables() {
		if v == dep {
			continue
		}
		terms = append(terms, model.LinearTerm{Variable: v, Coef: -expr.Coefficient(v) / coef})
	}
	return s.CreateExpression(terms, -expr.Const()/coef)
}

// tryRecordEdges adds the dependency edges dep -> (each variable sub
// references) to g and reports whether the result is still acyclic; on a
// detected cycle the just-added edges are rolled back so g is left exactly
// as it was before the call.
func tryRecordEdges(g *core.Graph, dep model.VariableID, sub *model.Expression) bool {
	from := vertexOf(dep)
	_ = g.AddVertex(from)
	added := make([]string, 0, len(sub.Variables()))
	for _, v := range sub.Variables() {
		to := vertexOf(v)
		_ = g.AddVertex(to)
		if g.HasEdge(from, to) {
			continue
		}
		if eid, err := g.AddEdge(from, to, 0); err == nil {
			added = append(added, eid)
		}
	}
	hasCycle, _, err := dfs.DetectCycles(g)
	if err == nil && hasCycle {
		for _, eid := range added {
			_ = g.RemoveEdge(eid)
		}
		return false
	}
	return true
}

func vertexOf(v model.VariableID) string { return fmt.Sprintf("dep#%d", v) }

// extractSelections scans enabled SetPartitioning-classified equality
// constraints and converts each into a model.Selection, in constraint-ID
// order (spec section 4.3's "by defined order" policy), skipping a
// constraint if any of its variables has already been claimed by an
// earlier selection in this pass.
func extractSelections(s *model.Store, rep *Report) bool {
	claimed := map[model.VariableID]bool{}
	progress := false
	for _, c := range s.Constraints() {
		if !c.Enabled() {
			continue
		}
		ct, _, ok := c.Classification()
		if !ok || classify.ConstraintType(ct) != classify.SetPartitioning {
			continue
		}
		members := c.Expression().Variables()
		overlap := false
		for _, m := range members {
			if claimed[m] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		if _, err := s.CreateSelection(c.ID(), members); err != nil {
			continue
		}
		for _, m := range members {
			claimed[m] = true
		}
		c.SetEnabled(false)
		rep.SelectionsExtracted++
		progress = true
	}
	return progress
}
