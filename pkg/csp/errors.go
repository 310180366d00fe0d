// Package csp provides finite-domain constraint satisfaction solving.
// This file defines the error kinds reported by problem construction and
// search. All are sentinel values suitable for errors.Is; call sites wrap
// them with context describing the offending variable, tuple, or length.
package csp

import "errors"

// Errors reported while building a problem.
var (
	// ErrDuplicateVariable indicates a variable name was declared twice.
	// Re-declaration is rejected rather than overwriting the existing domain.
	ErrDuplicateVariable = errors.New("variable already declared")

	// ErrUnknownVariable indicates a constraint or query referenced a name
	// that has not been declared as a primary variable.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrArityMismatch indicates a tuple's length differs from the number of
	// constrained variables, or a constraint was given fewer than two
	// variables.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrTypeMismatch indicates a constraint specification is not of an
	// admissible kind, such as a nil spec or a nil predicate.
	ErrTypeMismatch = errors.New("constraint spec type mismatch")

	// ErrDomainViolation indicates a tuple contains a value outside the
	// declared domain of its corresponding variable.
	ErrDomainViolation = errors.New("value outside variable domain")

	// ErrLengthMismatch indicates a weighted sum was given a weight list
	// whose length differs from its variable list.
	ErrLengthMismatch = errors.New("weights and variables differ in length")
)

// ErrUnsatisfiable is returned by search when the assignment space has been
// exhausted without finding a solution. It is an expected outcome that
// callers must handle, not a defect in the problem or the solver.
var ErrUnsatisfiable = errors.New("problem is unsatisfiable")
