package model

// Selection is a set of binary variables tied together by a set-partitioning
// equality (sum == 1) plus the invariant that exactly one member currently
// has value 1. Selections are first-class because they drive the largest
// class of structure-aware moves (neighborhood.SelectionGenerator).
type Selection struct {
	id         SelectionID
	constraint ConstraintID
	members    []VariableID
	selected   VariableID // currently-selected member
}

// ID returns the stable identifier of this selection within its Store.
func (s *Selection) ID() SelectionID { return s.id }

// Constraint returns the set-partitioning constraint this selection replaced.
func (s *Selection) Constraint() ConstraintID { return s.constraint }

// Members returns the selection's member variables, in declaration order.
func (s *Selection) Members() []VariableID { return s.members }

// Selected returns the currently-selected member.
func (s *Selection) Selected() VariableID { return s.selected }

// setSelected updates the cached selected member; Store.ApplyMove is the
// only expected caller, after committing the underlying value changes.
func (s *Selection) setSelected(v VariableID) { s.selected = v }
