package model

import (
	"strconv"

	"github.com/solverkit/tabumip/core"
)

// incidence is the variable<->constraint adjacency the design notes ask
// for: "given any mutated variable, reach the constraints whose violation
// it affects in O(1) per edge". It is a thin domain-specific wrapper
// around core.Graph, the teacher library's bipartite adjacency-list graph:
// one vertex per variable ("v#<idx>"), one vertex per constraint
// ("c#<idx>"), and an undirected edge between them whenever the
// constraint's expression has a nonzero coefficient on that variable. The
// real coefficient value lives on the Expression, not on the edge, since
// core.Graph edges carry an int64 weight and coefficients here are
// float64; the adjacency only needs to answer reachability.
//
// It is rebuilt wholesale on presolve changes (AddEdge/RemoveEdge churn is
// not on the hot loop) and is read-only during the tabu-search inner loop.
type incidence struct {
	g *core.Graph
}

// Graph exposes the underlying bipartite core.Graph so grounded traversal
// packages (bfs, dfs) can run directly on committed model structure; it is
// rebuilt wholesale by Store.RebuildIncidence and must not be mutated by
// callers outside this package.
func (inc *incidence) Graph() *core.Graph { return inc.g }

func newIncidence() *incidence {
	return &incidence{g: core.NewGraph(core.WithDirected(false), core.WithMultiEdges())}
}

func varVertex(v VariableID) string { return "v#" + strconv.Itoa(int(v)) }
func conVertex(c ConstraintID) string { return "c#" + strconv.Itoa(int(c)) }

// ensureVariable registers v's vertex if it is not already present.
func (inc *incidence) ensureVariable(v VariableID) {
	_ = inc.g.AddVertex(varVertex(v))
}

// ensureConstraint registers c's vertex if it is not already present.
func (inc *incidence) ensureConstraint(c ConstraintID) {
	_ = inc.g.AddVertex(conVertex(c))
}

// link records that constraint c references variable v.
func (inc *incidence) link(c ConstraintID, v VariableID) {
	inc.ensureConstraint(c)
	inc.ensureVariable(v)
	if inc.g.HasEdge(conVertex(c), varVertex(v)) {
		return
	}
	_, _ = inc.g.AddEdge(conVertex(c), varVertex(v), 0)
}

// relatedConstraints returns the enabled constraints referencing v, via a
// single adjacency lookup (O(degree(v))).
func (inc *incidence) relatedConstraints(v VariableID) []ConstraintID {
	ids, err := inc.g.NeighborIDs(varVertex(v))
	if err != nil {
		return nil
	}
	out := make([]ConstraintID, 0, len(ids))
	for _, id := range ids {
		if n, ok := parseConVertex(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// variablesOf returns the variables referenced by constraint c.
func (inc *incidence) variablesOf(c ConstraintID) []VariableID {
	ids, err := inc.g.NeighborIDs(conVertex(c))
	if err != nil {
		return nil
	}
	out := make([]VariableID, 0, len(ids))
	for _, id := range ids {
		if n, ok := parseVarVertex(id); ok {
			out = append(out, n)
		}
	}
	return out
}

func parseConVertex(id string) (ConstraintID, bool) {
	if len(id) < 2 || id[0] != 'c' || id[1] != '#' {
		return 0, false
	}
	n, err := strconv.Atoi(id[2:])
	if err != nil {
		return 0, false
	}
	return ConstraintID(n), true
}

func parseVarVertex(id string) (VariableID, bool) {
	if len(id) < 2 || id[0] != 'v' || id[1] != '#' {
		return 0, false
	}
	n, err := strconv.Atoi(id[2:])
	if err != nil {
		return 0, false
	}
	return VariableID(n), true
}

// rebuild discards and reconstructs the whole incidence graph from the
// current constraint set, called once after presolve changes the set of
// enabled constraints or the variables they reference.
func (inc *incidence) rebuild(constraints []*Constraint) {
	inc.g = core.NewGraph(core.WithDirected(false), core.WithMultiEdges())
	for _, c := range constraints {
		if !c.Enabled() {
			continue
		}
		for _, v := range c.Expression().Variables() {
			inc.link(c.ID(), v)
		}
	}
}
