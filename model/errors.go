package model

import "errors"

// Sentinel errors for model-level operations. Wrap with github.com/pkg/errors
// at package boundaries (parsers, CLI) where extra context is useful;
// compare with errors.Is against these values everywhere else.
var (
	// ErrVariableNotFound indicates an operation referenced an unknown VariableID.
	ErrVariableNotFound = errors.New("model: variable not found")

	// ErrConstraintNotFound indicates an operation referenced an unknown ConstraintID.
	ErrConstraintNotFound = errors.New("model: constraint not found")

	// ErrFixedVariable indicates a move attempted to alter a fixed variable.
	ErrFixedVariable = errors.New("model: variable is fixed")

	// ErrOutOfBounds indicates a new value lies outside a variable's declared bounds.
	ErrOutOfBounds = errors.New("model: value out of bounds")

	// ErrMismatchedLengths indicates coefficient/variable slices of unequal length.
	ErrMismatchedLengths = errors.New("model: mismatched coefficient/variable lengths")

	// ErrEmptySelection indicates a Selection was built with fewer than two members.
	ErrEmptySelection = errors.New("model: selection needs at least two members")

	// ErrNotDependent indicates Substitute was called on a variable without a
	// dependent expression.
	ErrNotDependent = errors.New("model: variable has no dependent expression")
)

// Kind identifies one of the error categories from spec section 7.
type Kind int

const (
	// KindMalformedInstance: a parser detected a structural violation. Fatal,
	// surfaces to the CLI as UNSUPPORTED.
	KindMalformedInstance Kind = iota

	// KindInfeasibleByConstruction: presolve proved the model infeasible
	// (empty variable domain, singleton contradiction). Fatal, UNSATISFIABLE.
	KindInfeasibleByConstruction

	// KindInvalidInitialValue: a provided initial value violates a bound or a
	// selection constraint. Recoverable unless the variable is fixed.
	KindInvalidInitialValue

	// KindInvalidConfiguration: an option is outside its documented range.
	// Fatal at setup.
	KindInvalidConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInstance:
		return "MalformedInstance"
	case KindInfeasibleByConstruction:
		return "InfeasibleByConstruction"
	case KindInvalidInitialValue:
		return "InvalidInitialValue"
	case KindInvalidConfiguration:
		return "InvalidConfiguration"
	default:
		return "Unknown"
	}
}

// SolverError is a typed error carrying one of the Kind values above plus a
// human-readable message and, optionally, the sentinel it wraps.
type SolverError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *SolverError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *SolverError) Unwrap() error { return e.Err }

// NewSolverError constructs a SolverError of the given kind.
func NewSolverError(kind Kind, message string, wrapped error) *SolverError {
	return &SolverError{Kind: kind, Message: message, Err: wrapped}
}

// InternalInvariantViolation panics; it is defensive code that must never be
// reached in a correct build and is never recovered by the engine.
func InternalInvariantViolation(message string) {
	panic("model: internal invariant violation: " + message)
}
