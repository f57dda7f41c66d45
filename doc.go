// Package tabumip holds the building blocks of a tabu-search metaheuristic
// engine for mixed-integer and pseudo-boolean optimization.
//
// It provides an incremental evaluation model over
// Variable/Expression/Constraint/Selection entities, a classifier that tags
// each constraint with one of roughly thirty structural patterns,
// neighborhood generators chosen per pattern, move scoring, tabu memory and
// incumbent tracking. The module has no file-format readers, no tabu-search
// loop, no outer controller (penalty learning, tenure adjustment, restarts),
// no instance generators, no solution reporting and no command-line
// front-end.
//
// Packages:
//
//	model/        variable/expression/constraint arena + incremental scoring
//	classify/     constraint pattern classifier
//	presolve/     constraint/variable reduction rounds
//	neighborhood/ move generators, dispatched by constraint pattern
//	evaluator/    concurrent move scoring over model.Store
//	memory/       tabu recency/frequency bookkeeping
//	incumbent/    best-solution tracking
//	cancel/       cooperative cancellation handle
//	core/         graph container used by the graph packages below
//	bfs/ dfs/     graph traversals over core.Graph
//	flow/         max-flow algorithms over core.Graph
//	prim_kruskal/ minimum spanning trees over core.Graph
//	internal/xlog logging helpers
package tabumip
