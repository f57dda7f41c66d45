package neighborhood

import (
	"fmt"
	"sort"

	"github.com/solverkit/tabumip/core"
	"github.com/solverkit/tabumip/model"
	"github.com/solverkit/tabumip/prim_kruskal"
)

// ChainEvictionPolicy selects how ChainGenerator drops entries from its
// bounded recent-move buffer once it is full (spec section 9, open question
// ii, decided here: the default is lowest-overlap-rate-first).
type ChainEvictionPolicy int

const (
	// EvictLowestOverlapFirst drops the buffered move with the smallest
	// overlap against the move that just arrived — it is the least likely
	// to combine into a useful chain, so it is the cheapest to lose.
	EvictLowestOverlapFirst ChainEvictionPolicy = iota
	// EvictFIFO drops the oldest buffered move regardless of overlap.
	EvictFIFO
)

// ChainGenerator builds composite moves by concatenating pairs of recently
// applied simple moves (spec section 4.4 "chain"). It keeps a capacity-
// bounded buffer of candidates and, on each UpdateMoves call, treats the
// buffer as a complete graph weighted by pairwise overlap and asks
// prim_kruskal.Kruskal for a minimum-overlap spanning selection: MST edges
// connect the most complementary (least redundant) pairs, which are the
// pairs worth chaining.
type ChainGenerator struct {
	Capacity int
	Policy   ChainEvictionPolicy

	buffer []*model.Move
}

func (g *ChainGenerator) Name() string { return "chain" }

// Record appends a just-applied simple move to the buffer, evicting per
// Policy once Capacity is exceeded. Dedup by hash: a move identical to one
// already buffered is not re-added.
func (g *ChainGenerator) Record(mv *model.Move) {
	if mv == nil || len(mv.Alterations) == 0 {
		return
	}
	for _, b := range g.buffer {
		if b.Hash() == mv.Hash() {
			return
		}
	}
	g.buffer = append(g.buffer, mv)
	if g.Capacity <= 0 {
		g.Capacity = 32
	}
	for len(g.buffer) > g.Capacity {
		g.evict(mv)
	}
}

func (g *ChainGenerator) evict(justAdded *model.Move) {
	switch g.Policy {
	case EvictFIFO:
		g.buffer = g.buffer[1:]
	default: // EvictLowestOverlapFirst
		worst := 0
		worstScore := 2.0
		for i, b := range g.buffer {
			if b == justAdded {
				continue
			}
			score := b.OverlapRate(justAdded)
			if score < worstScore {
				worstScore = score
				worst = i
			}
		}
		g.buffer = append(g.buffer[:worst], g.buffer[worst+1:]...)
	}
}

func chainVertex(i int) string { return fmt.Sprintf("chain#%d", i) }

func (g *ChainGenerator) UpdateMoves(s *model.Store, f Filter) []*model.Move {
	n := len(g.buffer)
	if n < 2 {
		return nil
	}

	gr := core.NewGraph(core.WithWeighted())
	for i := 0; i < n; i++ {
		_ = gr.AddVertex(chainVertex(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			overlap := int64(g.buffer[i].OverlapRate(g.buffer[j]) * 1000)
			if _, err := gr.AddEdge(chainVertex(i), chainVertex(j), overlap); err != nil {
				return nil
			}
		}
	}

	mst, _, err := prim_kruskal.Kruskal(gr)
	if err != nil {
		return nil
	}

	var moves []*model.Move
	for _, e := range mst {
		i, j, ok := parseChainPair(e)
		if !ok {
			continue
		}
		if mv, ok := concatenate(s, g.buffer[i], g.buffer[j], f); ok {
			moves = append(moves, mv)
		}
	}
	return moves
}

func parseChainPair(e core.Edge) (int, int, bool) {
	var i, j int
	if _, err := fmt.Sscanf(e.From, "chain#%d", &i); err != nil {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(e.To, "chain#%d", &j); err != nil {
		return 0, 0, false
	}
	return i, j, true
}

// concatenate merges a and b's alterations, keeping a later alteration of
// the same variable (b wins ties, since it is the more recently recorded
// move) and rejecting the chain outright if any shared variable disagrees
// in a way that would make the combined move contradictory on a fixed or
// out-of-bounds value.
func concatenate(s *model.Store, a, b *model.Move, f Filter) (*model.Move, bool) {
	merged := map[model.VariableID]int64{}
	for _, alt := range a.Alterations {
		merged[alt.Variable] = alt.NewValue
	}
	for _, alt := range b.Alterations {
		merged[alt.Variable] = alt.NewValue
	}

	alts := make([]model.Alteration, 0, len(merged))
	objImp, feasImp := false, false
	for v, nv := range merged {
		variable := s.Variable(v)
		if variable.Fixed() || !variable.InBounds(nv) {
			return nil, false
		}
		alts = append(alts, model.Alteration{Variable: v, NewValue: nv})
		o, fe := variable.Improvability()
		objImp = objImp || o
		feasImp = feasImp || fe
	}
	if !f.passes(objImp, feasImp) {
		return nil, false
	}
	sort.Slice(alts, func(i, j int) bool { return alts[i].Variable < alts[j].Variable })

	mv := model.NewMove(model.MoveChain, alts...)
	return withRelated(s, mv), true
}
