// Package csp provides finite-domain constraint satisfaction solving.
// This file implements the derived constraint builders: pairwise
// inequality (Diff, AllDiff) and linear weighted sums.
package csp

import (
	"fmt"

	"github.com/yjourdin/projet-solveur/logger"
)

// SumOperator selects how a weighted sum compares against its target. The
// zero value is SumEquals, matching WeightedSum's most common use.
type SumOperator int

const (
	// SumEquals requires the weighted sum to equal the target.
	SumEquals SumOperator = iota
	// SumLess requires the weighted sum to be strictly below the target.
	SumLess
	// SumGreater requires the weighted sum to be strictly above the target.
	SumGreater
)

// String returns the comparison symbol: "=", "<", or ">".
func (op SumOperator) String() string {
	switch op {
	case SumLess:
		return "<"
	case SumGreater:
		return ">"
	default:
		return "="
	}
}

// Diff constrains the given variables to take pairwise different values.
// One binary constraint is added per unordered pair of the list, holding
// exactly the unequal value pairs of the two domains. Fewer than two
// resolved variables add nothing; unknown names fail with
// ErrUnknownVariable before anything is added.
func (c *CSP) Diff(variables ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idxs, err := c.resolvePrimaryLocked(variables)
	if err != nil {
		return err
	}
	added := 0
	for i := 0; i < len(idxs); i++ {
		for j := i + 1; j < len(idxs); j++ {
			c.addUnequalPairLocked(idxs[i], idxs[j])
			added++
		}
	}
	logger.Logger().Debug().
		Int("variables", len(idxs)).
		Int("constraints", added).
		Msg("pairwise inequality added")
	return nil
}

// AllDiff constrains every declared primary variable to take a value
// different from every other.
func (c *CSP) AllDiff() error {
	return c.Diff(c.PrimaryVariables()...)
}

// addUnequalPairLocked registers the not-equal pair table between two
// variables.
func (c *CSP) addUnequalPairLocked(v1, v2 int) {
	con := newConstraint(v1, v2, c.names[v1], c.names[v2], c.domains[v1], c.domains[v2])
	for p1, a := range c.domains[v1].values {
		for p2, b := range c.domains[v2].values {
			if a != b {
				con.setPair(p1, p2)
			}
		}
	}
	c.appendConstraintLocked(con)
}

// WeightedSum constrains Σ weights[i] * variables[i] to compare against
// target under op. A nil variables slice means every primary variable in
// declaration order; a nil weights slice means weight 1 everywhere. The
// valid tuples are enumerated from the full cartesian product of the
// domains — cost grows multiplicatively with domain sizes and arity — and
// are always routed through the hidden-variable encoding, whatever the
// arity, so each call mints one encoding variable.
//
// Mismatched weight and variable counts fail with ErrLengthMismatch;
// unknown names fail with ErrUnknownVariable; an empty variable list fails
// with ErrArityMismatch. Weights and target are floats and the comparison
// is exact.
func (c *CSP) WeightedSum(variables []string, weights []float64, op SumOperator, target float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if variables == nil {
		variables = c.primaryNamesLocked()
	}
	if len(variables) == 0 {
		return fmt.Errorf("weighted sum needs at least one variable: %w", ErrArityMismatch)
	}
	idxs, err := c.resolvePrimaryLocked(variables)
	if err != nil {
		return err
	}
	if weights == nil {
		weights = make([]float64, len(variables))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(variables) {
		return fmt.Errorf("%d weights for %d variables: %w",
			len(weights), len(variables), ErrLengthMismatch)
	}
	rows := c.enumerateLocked(idxs, func(tuple []int) bool {
		var sum float64
		for i, v := range tuple {
			sum += weights[i] * float64(v)
		}
		switch op {
		case SumLess:
			return sum < target
		case SumGreater:
			return sum > target
		default:
			return sum == target
		}
	})
	c.encodeLocked(idxs, rows)
	return nil
}
