// Package memory holds the tabu-search bookkeeping that spec section 4.6
// describes: a pair of arrays, indexed by variable, recording when each
// variable was last touched and how many times it has been touched, plus
// the tabu permissibility test and frequency-penalty term built from them.
package memory

import "github.com/solverkit/tabumip/model"

// Mode selects how Memory.ComputePermissibility combines the per-variable
// tabu test across a move's altered variables.
type Mode int

const (
	// Any requires every altered variable to be admissible.
	Any Mode = iota
	// All requires at least one altered variable to be admissible.
	All
)

// Memory tracks, per variable, the iteration it was last touched by an
// applied move and how many times it has been touched overall.
type Memory struct {
	lastUpdate  []int
	updateCount []int
	totalCount  int
}

// New allocates Memory sized for nVars variables, all entries unset
// (last-update -1, so tenure comparisons against iteration 0 behave as if
// every variable was touched infinitely long ago).
func New(nVars int) *Memory {
	m := &Memory{
		lastUpdate:  make([]int, nVars),
		updateCount: make([]int, nVars),
	}
	for i := range m.lastUpdate {
		m.lastUpdate[i] = -1
	}
	return m
}

// Update records that every variable altered by m was touched at iteration it.
func (m *Memory) Update(mv *model.Move, it int) {
	for _, a := range mv.Alterations {
		v := int(a.Variable)
		m.lastUpdate[v] = it
		m.updateCount[v]++
		m.totalCount++
	}
}

// admissible reports whether v's tenure has expired by iteration it.
func (m *Memory) admissible(v model.VariableID, it, tenure int) bool {
	last := m.lastUpdate[v]
	if last < 0 {
		return true
	}
	return it-last >= tenure
}

// ComputePermissibility implements spec section 4.6's Any/All tabu test.
// Selection-sense moves are always evaluated in Any mode, since a
// Selection swap's two halves (the member set to 1 and the member cleared)
// only make sense considered together.
func (m *Memory) ComputePermissibility(mv *model.Move, it, tenure int, mode Mode) bool {
	effective := mode
	if mv.Sense == model.MoveSelection {
		effective = Any
	}
	switch effective {
	case Any:
		for _, a := range mv.Alterations {
			if !m.admissible(a.Variable, it, tenure) {
				return false
			}
		}
		return true
	case All:
		for _, a := range mv.Alterations {
			if m.admissible(a.Variable, it, tenure) {
				return true
			}
		}
		return len(mv.Alterations) == 0
	default:
		return true
	}
}

// totalUpdateCountReciprocal returns 1/totalCount, or 0 when nothing has
// ever been updated (avoids a division by zero at iteration 0).
func (m *Memory) totalUpdateCountReciprocal() float64 {
	if m.totalCount == 0 {
		return 0
	}
	return 1.0 / float64(m.totalCount)
}

// FrequencyPenalty computes (sum of update_count over m's altered
// variables) * total_update_count_reciprocal * coefficient, spec section 4.6.
func (m *Memory) FrequencyPenalty(mv *model.Move, coefficient float64) float64 {
	if coefficient == 0 {
		return 0
	}
	sum := 0
	for _, a := range mv.Alterations {
		sum += m.updateCount[a.Variable]
	}
	return float64(sum) * m.totalUpdateCountReciprocal() * coefficient
}

// LastUpdate returns the iteration v was last touched, or -1 if never.
func (m *Memory) LastUpdate(v model.VariableID) int { return m.lastUpdate[v] }

// UpdateCount returns how many times v has been touched.
func (m *Memory) UpdateCount(v model.VariableID) int { return m.updateCount[v] }
