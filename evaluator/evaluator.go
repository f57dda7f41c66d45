// Package evaluator is the thin scoring layer spec section 4.5 names as
// its own component: it wraps model.Store's pure, read-locked
// EvaluateMove so that the tabu-search inner loop never calls into model
// directly, and it supplies the first of spec section 5's two fan-out
// points — evaluating a batch of candidate moves across worker
// goroutines, all of them reading committed state under the Store's
// RWMutex read lock.
package evaluator

import (
	"sync"

	"github.com/solverkit/tabumip/model"
)

// Evaluate scores a single candidate move without committing it.
func Evaluate(s *model.Store, move *model.Move) (model.Score, error) {
	return s.EvaluateMove(move)
}

// Result pairs a candidate move's index in the caller's buffer with its
// score, or the error evaluating it produced.
type Result struct {
	Index int
	Score model.Score
	Err   error
}

// EvaluateBatch evaluates every move in moves, fanning the work out across
// workers goroutines when workers > 1. Each worker only calls
// Store.EvaluateMove, which takes the store's read lock, so concurrent
// workers never race with each other; they would race with a concurrent
// ApplyMove, but spec section 5 guarantees the store is exclusively
// mutated by the controller/inner-loop thread between evaluation barriers.
// Results are returned in the same order as moves, regardless of
// completion order.
func EvaluateBatch(s *model.Store, moves []*model.Move, workers int) []Result {
	results := make([]Result, len(moves))
	if len(moves) == 0 {
		return results
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(moves) {
		workers = len(moves)
	}
	if workers == 1 {
		for i, m := range moves {
			score, err := s.EvaluateMove(m)
			results[i] = Result{Index: i, Score: score, Err: err}
		}
		return results
	}

	var wg sync.WaitGroup
	chunk := (len(moves) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(moves) {
			break
		}
		end := start + chunk
		if end > len(moves) {
			end = len(moves)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				score, err := s.EvaluateMove(moves[i])
				results[i] = Result{Index: i, Score: score, Err: err}
			}
		}(start, end)
	}
	wg.Wait()
	return results
}

// Best returns the index of the lowest-scoring feasible-or-not result
// among results (by GlobalAugmented), skipping entries that errored, and
// false if every entry errored.
func Best(results []Result) (int, bool) {
	bestIdx := -1
	var bestScore float64
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if bestIdx == -1 || r.Score.GlobalAugmented < bestScore {
			bestIdx = r.Index
			bestScore = r.Score.GlobalAugmented
		}
	}
	return bestIdx, bestIdx != -1
}
