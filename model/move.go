package model

import "sort"

// MoveSense classifies the kind of neighborhood generator that produced a
// Move; used by Memory's tabu-mode exception for Selection moves and by
// reporting/debugging.
type MoveSense int

const (
	// MoveBinary flips a single binary variable.
	MoveBinary MoveSense = iota
	// MoveInteger steps a single integer variable.
	MoveInteger
	// MoveSelection swaps the selected member of a Selection.
	MoveSelection
	// MoveExclusiveOr keeps an ExclusiveOr-classified constraint satisfied.
	MoveExclusiveOr
	// MoveExclusiveNor keeps an ExclusiveNor-classified constraint satisfied.
	MoveExclusiveNor
	// MoveChain is a composite move built by concatenating two simpler moves.
	MoveChain
	// MoveUserDefined was emitted by a user-supplied move updater callback.
	MoveUserDefined
	// MoveStructural tags every move the closed-form structural generator
	// emits (ExclusiveOr, ExclusiveNor, VariableBound, Precedence,
	// Aggregation, InvertedIntegers, BalancedIntegers,
	// ConstantSum/Difference/Ratio, TrinomialExclusiveNor). Flow moves are
	// tagged MoveBinary or MoveInteger instead.
	MoveStructural
)

// Alteration is a single (variable, new_value) pair within a Move.
type Alteration struct {
	Variable VariableID
	NewValue int64
}

// Move is a list of simultaneous variable alterations plus the metadata the
// rest of the engine needs to score, apply, and tabu-match it: a sense tag,
// a cache of related constraints (the union of related constraints over
// touched variables), and a dedup/tabu hash key.
//
// Invariant: a move is valid iff every alteration's new value lies within
// the corresponding variable's bounds and no alteration targets a fixed
// variable (see Store.ValidateMove).
type Move struct {
	Sense        MoveSense
	Alterations  []Alteration
	RelatedConstraints []ConstraintID

	// hash is a dedup/tabu-matching key computed from the sorted
	// (variable, new_value) pairs; stable across equal alteration sets
	// regardless of construction order.
	hash uint64
}

// NewMove builds a Move from its sense and alteration list; RelatedConstraints
// must be filled separately (the neighborhood generators fill it from
// Store.RelatedConstraints) because computing it requires the Store's
// incidence graph.
func NewMove(sense MoveSense, alterations ...Alteration) *Move {
	m := &Move{Sense: sense, Alterations: alterations}
	m.rehash()
	return m
}

// Variables returns the set of variables this move touches.
func (m *Move) Variables() []VariableID {
	out := make([]VariableID, len(m.Alterations))
	for i, a := range m.Alterations {
		out[i] = a.Variable
	}
	return out
}

// Hash returns the move's dedup/tabu-matching key.
func (m *Move) Hash() uint64 { return m.hash }

// rehash recomputes m.hash from the current alterations. A simple FNV-1a
// fold over the sorted (variable, new_value) pairs is enough: collisions
// only ever cost an extra evaluate_move, never correctness, since callers
// that care about exact equality (dedup) also compare alteration slices.
func (m *Move) rehash() {
	sorted := make([]Alteration, len(m.Alterations))
	copy(sorted, m.Alterations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Variable < sorted[j].Variable })

	var h uint64 = 14695981039346656037
	for _, a := range sorted {
		h = foldUint64(h, uint64(a.Variable))
		h = foldUint64(h, uint64(a.NewValue))
	}
	m.hash = h
}

func foldUint64(h, x uint64) uint64 {
	const prime = 1099511628211
	for i := 0; i < 8; i++ {
		h ^= x & 0xff
		h *= prime
		x >>= 8
	}
	return h
}

// OverlapRate returns the fraction of m's altered variables that also
// appear in other's altered variables, used by the chain-move generator to
// score candidate concatenations and by the intensity EMA to compare
// successive applied moves.
func (m *Move) OverlapRate(other *Move) float64 {
	if len(m.Alterations) == 0 || other == nil || len(other.Alterations) == 0 {
		return 0
	}
	seen := make(map[VariableID]struct{}, len(other.Alterations))
	for _, a := range other.Alterations {
		seen[a.Variable] = struct{}{}
	}
	shared := 0
	for _, a := range m.Alterations {
		if _, ok := seen[a.Variable]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(m.Alterations))
}
