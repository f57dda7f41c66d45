package neighborhood_test

import (
	"math/rand"
	"testing"

	"github.com/solverkit/tabumip/classify"
	"github.com/solverkit/tabumip/model"
	"github.com/solverkit/tabumip/neighborhood"
	"github.com/stretchr/testify/require"
)

func allPass() neighborhood.Filter { return neighborhood.Filter{AcceptAll: true} }

func TestBinaryFlipGeneratorFlipsEveryUnfixedBinary(t *testing.T) {
	s := model.NewStore(model.Minimize)
	a := s.CreateVariable("a", model.Binary, 0, 1).ID()
	b := s.CreateVariable("b", model.Binary, 0, 1).ID()
	obj := s.CreateExpression([]model.LinearTerm{{Variable: a, Coef: 1}, {Variable: b, Coef: 1}}, 0)
	s.SetObjective(obj)
	s.Recompute()
	require.NoError(t, s.FixBy(b, 0))

	g := neighborhood.BinaryFlipGenerator{}
	moves := g.UpdateMoves(s, allPass())

	require.Len(t, moves, 1)
	require.Equal(t, a, moves[0].Alterations[0].Variable)
	require.Equal(t, int64(1), moves[0].Alterations[0].NewValue)
}

func TestIntegerStepGeneratorStepsByOneAndRandom(t *testing.T) {
	s := model.NewStore(model.Minimize)
	x := s.CreateVariable("x", model.Integer, 0, 10).ID()
	obj := s.CreateExpression([]model.LinearTerm{{Variable: x, Coef: 1}}, 0)
	s.SetObjective(obj)
	s.Recompute()

	g := neighborhood.IntegerStepGenerator{Rand: rand.New(rand.NewSource(1))}
	moves := g.UpdateMoves(s, allPass())

	require.NotEmpty(t, moves)
	seen := map[int64]bool{}
	for _, mv := range moves {
		seen[mv.Alterations[0].NewValue] = true
	}
	require.True(t, seen[1])
}

func TestSelectionGeneratorSwapsNonSelectedMembers(t *testing.T) {
	s := model.NewStore(model.Minimize)
	a := s.CreateVariable("a", model.Binary, 0, 1).ID()
	b := s.CreateVariable("b", model.Binary, 0, 1).ID()
	c := s.CreateVariable("c", model.Binary, 0, 1).ID()
	obj := s.CreateExpression([]model.LinearTerm{{Variable: a, Coef: 1}, {Variable: b, Coef: 2}, {Variable: c, Coef: 3}}, 0)
	s.SetObjective(obj)
	expr := s.CreateExpression([]model.LinearTerm{{Variable: a, Coef: 1}, {Variable: b, Coef: 1}, {Variable: c, Coef: 1}}, 0)
	con := s.CreateConstraint("partition", expr, model.EQ, 1)
	s.Recompute()
	require.NoError(t, s.FixBy(a, 1))
	require.NoError(t, s.FixBy(b, 0))
	require.NoError(t, s.FixBy(c, 0))
	_, err := s.CreateSelection(con.ID(), []model.VariableID{a, b, c})
	require.NoError(t, err)

	g := neighborhood.SelectionGenerator{}
	moves := g.UpdateMoves(s, allPass())

	require.Len(t, moves, 2)
	for _, mv := range moves {
		require.Len(t, mv.Alterations, 2)
	}
}

func TestStructuralGeneratorHandlesExclusiveOr(t *testing.T) {
	s := model.NewStore(model.Minimize)
	x := s.CreateVariable("x", model.Binary, 0, 1).ID()
	y := s.CreateVariable("y", model.Binary, 0, 1).ID()
	obj := s.CreateExpression([]model.LinearTerm{{Variable: x, Coef: 1}, {Variable: y, Coef: 1}}, 0)
	s.SetObjective(obj)
	expr := s.CreateExpression([]model.LinearTerm{{Variable: x, Coef: 1}, {Variable: y, Coef: 1}}, 0)
	con := s.CreateConstraint("xor", expr, model.EQ, 1)
	s.Recompute()
	require.NoError(t, s.FixBy(x, 1))
	s.SetBound(x, 1, 1)
	_ = s.Variable(x)
	classify.Classify(s, con)

	g := neighborhood.StructuralGenerator{}
	moves := g.UpdateMoves(s, allPass())
	// x is fixed, so the only legal pair move (±1 compensation) touching y
	// is rejected; the generator must not panic and may legitimately return
	// nothing here.
	for _, mv := range moves {
		require.Len(t, mv.Alterations, 2)
	}
}

func TestChainGeneratorConcatenatesBufferedMoves(t *testing.T) {
	s := model.NewStore(model.Minimize)
	a := s.CreateVariable("a", model.Integer, 0, 10).ID()
	b := s.CreateVariable("b", model.Integer, 0, 10).ID()
	c := s.CreateVariable("c", model.Integer, 0, 10).ID()
	obj := s.CreateExpression([]model.LinearTerm{
		{Variable: a, Coef: 1}, {Variable: b, Coef: 1}, {Variable: c, Coef: 1},
	}, 0)
	s.SetObjective(obj)
	s.Recompute()

	g := &neighborhood.ChainGenerator{Capacity: 8}
	m1 := model.NewMove(model.MoveInteger, model.Alteration{Variable: a, NewValue: 1})
	m2 := model.NewMove(model.MoveInteger, model.Alteration{Variable: b, NewValue: 2})
	m3 := model.NewMove(model.MoveInteger, model.Alteration{Variable: c, NewValue: 3})
	g.Record(m1)
	g.Record(m2)
	g.Record(m3)

	moves := g.UpdateMoves(s, allPass())
	require.NotEmpty(t, moves)
	for _, mv := range moves {
		require.GreaterOrEqual(t, len(mv.Alterations), 2)
	}
}

func TestChainGeneratorEvictsOnCapacity(t *testing.T) {
	g := &neighborhood.ChainGenerator{Capacity: 2}
	for i := int64(0); i < 5; i++ {
		mv := model.NewMove(model.MoveInteger, model.Alteration{Variable: model.VariableID(i), NewValue: i})
		g.Record(mv)
	}
	// Capacity enforced indirectly: UpdateMoves over a trivial store must not
	// panic even though far more than Capacity moves were recorded.
	s := model.NewStore(model.Minimize)
	obj := s.CreateExpression(nil, 0)
	s.SetObjective(obj)
	s.Recompute()
	require.NotPanics(t, func() { g.UpdateMoves(s, allPass()) })
}

func TestDispatcherDedupsAndShuffles(t *testing.T) {
	s := model.NewStore(model.Minimize)
	a := s.CreateVariable("a", model.Binary, 0, 1).ID()
	obj := s.CreateExpression([]model.LinearTerm{{Variable: a, Coef: 1}}, 0)
	s.SetObjective(obj)
	s.Recompute()

	d := neighborhood.NewDispatcher(42, false, neighborhood.BinaryFlipGenerator{}, neighborhood.BinaryFlipGenerator{})
	moves := d.UpdateMoves(s, allPass())
	require.Len(t, moves, 1)
}

func TestDispatcherRecordForwardsToChainGenerator(t *testing.T) {
	chainer := &neighborhood.ChainGenerator{Capacity: 4}
	d := neighborhood.NewDispatcher(7, false, chainer)
	mv := model.NewMove(model.MoveInteger, model.Alteration{Variable: 0, NewValue: 1})
	require.NotPanics(t, func() { d.Record(mv) })
}
