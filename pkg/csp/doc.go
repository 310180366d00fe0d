// Package csp models and solves finite-domain constraint satisfaction
// problems. Problems are built incrementally from integer-valued variables,
// explicit value domains, and constraints of arbitrary arity, then solved by
// systematic backtracking search with pluggable ordering heuristics.
//
// The package stores every constraint in binary form. Constraints over two
// variables become a single table of valid value pairs. Constraints over
// three or more variables are rewritten with the classical hidden-variable
// encoding: a synthetic "encoding variable" is minted whose domain is the
// exact set of valid tuples, plus one binary constraint per original
// variable tying that variable to the matching tuple coordinate. Any
// assignment consistent with all generated binary constraints is consistent
// with the original n-ary relation, and vice versa.
//
// Constraints can be declared two ways:
//   - Extensionally, by listing the valid tuples (Tuples).
//   - Intensionally, by a predicate over the variables' values (Predicate),
//     which is expanded against the full cartesian product of the domains.
//
// Convenience builders cover the common global constraints: Diff and AllDiff
// for pairwise inequality, and WeightedSum for linear (in)equalities over a
// set of variables.
//
// Search is configured with a variable-ordering heuristic (lexicographic,
// random, minimum remaining values, degree, dynamic degree, bound, impact)
// and a value-ordering heuristic (random, support, less-filtering). Forward
// checking is enabled by default and prunes neighbor candidates on every
// assignment, restoring them from an explicit trail on backtrack.
//
// A built CSP is immutable during solving and safe to share across
// concurrent Solve calls; each call owns its assignment, trail, and working
// candidate sets.
//
// Basic usage:
//
//	problem := csp.New()
//	_ = problem.AddVariables([]string{"A", "B", "C"}, csp.RangeDomain(1, 3))
//	_ = problem.AllDiff()
//	solution, err := problem.Solve(context.Background(), csp.HeuristicDom, csp.ValueOrderSupport)
//	if errors.Is(err, csp.ErrUnsatisfiable) {
//		// no assignment exists
//	}
package csp
