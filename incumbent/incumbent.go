// Package incumbent tracks the three best-seen solutions spec section 4.7
// requires: the best feasible solution, the best global-augmented solution,
// and the best local-augmented solution of the current restart. The
// bookkeeping mirrors a branch-and-bound solver's "best tour so far"
// tracking, which is why it is grounded on the teacher's tsp best-bound
// logic: both problems reduce to "keep the best seen, report which
// threshold it beat, never regress".
package incumbent

import "github.com/solverkit/tabumip/model"

// Status is a 3-bit field reporting which incumbents a TryUpdate call beat.
type Status uint8

const (
	// BeatLocal is set when the local-augmented incumbent was improved.
	BeatLocal Status = 1 << iota
	// BeatGlobal is set when the global-augmented incumbent was improved.
	BeatGlobal
	// BeatFeasible is set when the feasible incumbent was improved.
	BeatFeasible
)

// Snapshot is a solution capture: variable values plus the summary score
// that made it worth keeping.
type Snapshot struct {
	Values    map[model.VariableID]int64
	Score     model.Score
	Iteration int
}

func snapshot(s *model.Store, score model.Score, iteration int) Snapshot {
	values := make(map[model.VariableID]int64, len(s.Variables()))
	for _, v := range s.Variables() {
		values[v.ID()] = v.Value()
	}
	return Snapshot{Values: values, Score: score, Iteration: iteration}
}

// Holder owns the three incumbents. The zero value is not usable; use New.
type Holder struct {
	haveFeasible bool
	feasible     Snapshot

	haveGlobal bool
	global     Snapshot

	haveLocal bool
	local     Snapshot
}

// New returns an empty Holder with nothing recorded yet.
func New() *Holder { return &Holder{} }

// TryUpdate compares score (of the solution currently committed in s)
// against all three incumbents and records it wherever it strictly
// improves one, per spec section 4.7: ties never count as an update.
func (h *Holder) TryUpdate(s *model.Store, score model.Score, iteration int) Status {
	var status Status

	if !h.haveLocal || score.LocalAugmented < h.local.Score.LocalAugmented-model.EPSILON {
		h.local = snapshot(s, score, iteration)
		h.haveLocal = true
		status |= BeatLocal
	}
	if !h.haveGlobal || score.GlobalAugmented < h.global.Score.GlobalAugmented-model.EPSILON {
		h.global = snapshot(s, score, iteration)
		h.haveGlobal = true
		status |= BeatGlobal
	}
	if score.Feasible && (!h.haveFeasible || score.Objective < h.feasible.Score.Objective-model.EPSILON) {
		h.feasible = snapshot(s, score, iteration)
		h.haveFeasible = true
		status |= BeatFeasible
	}
	return status
}

// ResetLocal clears only the local-augmented incumbent, as the outer
// controller does at the start of each restart phase; the global and
// feasible incumbents are left untouched.
func (h *Holder) ResetLocal() {
	h.haveLocal = false
	h.local = Snapshot{}
}

// Feasible returns the best feasible snapshot seen, and whether one exists.
func (h *Holder) Feasible() (Snapshot, bool) { return h.feasible, h.haveFeasible }

// Global returns the best global-augmented snapshot, and whether one exists.
func (h *Holder) Global() (Snapshot, bool) { return h.global, h.haveGlobal }

// Local returns the best local-augmented snapshot of the current restart.
func (h *Holder) Local() (Snapshot, bool) { return h.local, h.haveLocal }
