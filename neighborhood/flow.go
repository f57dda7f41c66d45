package neighborhood

import (
	"fmt"

	"github.com/solverkit/tabumip/classify"
	"github.com/solverkit/tabumip/core"
	"github.com/solverkit/tabumip/flow"
	"github.com/solverkit/tabumip/model"
)

// FlowGenerator implements the move family spec.md §4.4 names but leaves
// unspecified for BinaryFlow/IntegerFlow constraints (flow-conservation
// equalities with unit +/-1 coefficients): it rebuilds the conservation
// network as a directed, weighted core.Graph — one vertex per flow
// constraint, one edge per arc variable shared between the constraint where
// it has coefficient -1 (its tail) and the one where it has coefficient +1
// (its head), capacity equal to the arc variable's remaining headroom — and
// asks flow.Dinic for an augmenting max-flow between the first unbalanced
// supply and demand vertices it can find. Every edge whose residual capacity
// dropped carries flow on some augmenting path; the generator bundles the
// corresponding arc-variable alterations into a single conservation-
// preserving move.
type FlowGenerator struct{}

func (FlowGenerator) Name() string { return "flow" }

type flowArc struct {
	variable model.VariableID
	from, to string // vertex IDs of the tail/head conservation constraints
}

func flowVertex(c model.ConstraintID) string { return fmt.Sprintf("fc#%d", c) }

func (g FlowGenerator) UpdateMoves(s *model.Store, f Filter) []*model.Move {
	arcs, nodes := g.collectArcs(s)
	if len(arcs) == 0 || len(nodes) < 2 {
		return nil
	}

	gr := core.NewGraph(core.WithDirected(true), core.WithWeighted())
	for n := range nodes {
		_ = gr.AddVertex(n)
	}
	byEdge := map[string]flowArc{}
	indeg, outdeg := map[string]int{}, map[string]int{}
	for _, a := range arcs {
		v := s.Variable(a.variable)
		_, hi := v.Bounds()
		capacity := hi - v.Value()
		if capacity <= 0 {
			continue
		}
		eid, err := gr.AddEdge(a.from, a.to, capacity)
		if err != nil {
			continue
		}
		byEdge[eid] = a
		outdeg[a.from]++
		indeg[a.to]++
	}

	source, sink := g.pickEndpoints(nodes, indeg, outdeg)
	if source == "" || sink == "" || source == sink {
		return nil
	}

	maxFlow, residual, err := flow.Dinic(gr, source, sink, flow.FlowOptions{Epsilon: 1e-9})
	if err != nil || maxFlow <= 0 || residual == nil {
		return nil
	}

	var alterations []model.Alteration
	for _, e := range gr.Edges() {
		a, ok := byEdge[e.ID]
		if !ok {
			continue
		}
		remaining := residualCapacity(residual, e.From, e.To)
		pushed := e.Weight - remaining
		if pushed <= 0 {
			continue
		}
		v := s.Variable(a.variable)
		if v.Fixed() {
			return nil
		}
		newValue := v.Value() + pushed
		if !v.InBounds(newValue) {
			_, hi := v.Bounds()
			newValue = hi
		}
		alterations = append(alterations, model.Alteration{Variable: a.variable, NewValue: newValue})
	}
	if len(alterations) == 0 {
		return nil
	}

	sense := model.MoveInteger
	if allBinary(s, alterations) {
		sense = model.MoveBinary
	}
	mv := model.NewMove(sense, alterations...)
	objImp, feasImp := false, false
	for _, a := range alterations {
		o, fe := s.Variable(a.Variable).Improvability()
		objImp = objImp || o
		feasImp = feasImp || fe
	}
	if !f.passes(objImp, feasImp) {
		return nil
	}
	return []*model.Move{withRelated(s, mv)}
}

func allBinary(s *model.Store, alts []model.Alteration) bool {
	for _, a := range alts {
		if s.Variable(a.Variable).Sense() != model.Binary {
			return false
		}
	}
	return true
}

// residualCapacity looks up the remaining capacity of edge from->to in the
// residual graph Dinic returns; 0 if the edge was fully saturated or absent.
func residualCapacity(residual *core.Graph, from, to string) int64 {
	for _, e := range residual.Edges() {
		if e.From == from && e.To == to {
			return e.Weight
		}
	}
	return 0
}

func (g FlowGenerator) collectArcs(s *model.Store) ([]flowArc, map[string]struct{}) {
	nodes := map[string]struct{}{}
	tailOf := map[model.VariableID]string{}
	headOf := map[model.VariableID]string{}

	for _, c := range s.Constraints() {
		if !c.Enabled() {
			continue
		}
		ct, _, ok := c.Classification()
		if !ok {
			continue
		}
		t := classify.ConstraintType(ct)
		if t != classify.BinaryFlow && t != classify.IntegerFlow {
			continue
		}
		node := flowVertex(c.ID())
		nodes[node] = struct{}{}
		for _, v := range c.Expression().Variables() {
			coef := c.Expression().Coefficient(v)
			switch {
			case coef > 0:
				headOf[v] = node
			case coef < 0:
				tailOf[v] = node
			}
		}
	}

	var arcs []flowArc
	for v, from := range tailOf {
		if to, ok := headOf[v]; ok {
			arcs = append(arcs, flowArc{variable: v, from: from, to: to})
		}
	}
	return arcs, nodes
}

// pickEndpoints chooses a supply vertex (out-degree with no in-degree) and a
// demand vertex (in-degree with no out-degree) if the network has one;
// otherwise falls back to any two distinct vertices so the generator still
// exercises Dinic on cyclic conservation networks.
func (g FlowGenerator) pickEndpoints(nodes map[string]struct{}, indeg, outdeg map[string]int) (string, string) {
	var source, sink, fallbackA, fallbackB string
	for n := range nodes {
		if fallbackA == "" {
			fallbackA = n
		} else if fallbackB == "" {
			fallbackB = n
		}
		if outdeg[n] > 0 && indeg[n] == 0 && source == "" {
			source = n
		}
		if indeg[n] > 0 && outdeg[n] == 0 && sink == "" {
			sink = n
		}
	}
	if source != "" && sink != "" {
		return source, sink
	}
	return fallbackA, fallbackB
}
