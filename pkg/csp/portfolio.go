// Package csp provides finite-domain constraint satisfaction solving.
// This file implements portfolio solving: racing differently configured
// solvers over one immutable problem and keeping the first solution.
package csp

import (
	"context"
	"errors"

	"github.com/yjourdin/projet-solveur/internal/parallel"
	"github.com/yjourdin/projet-solveur/logger"
)

// SolvePortfolio races one solver per config over the same problem and
// returns the first solution found, cancelling the remaining solvers. A
// built CSP is read-only during search, so the racers share it without
// copying. No configs means a single run with DefaultSolverConfig.
//
// When every racer exhausts its search the problem is unsatisfiable and
// ErrUnsatisfiable is returned; cancellation of ctx surfaces its error.
func SolvePortfolio(ctx context.Context, problem *CSP, configs ...*SolverConfig) (Assignment, error) {
	if len(configs) == 0 {
		configs = []*SolverConfig{DefaultSolverConfig()}
	}
	logger.Logger().Debug().
		Int("solvers", len(configs)).
		Msg("portfolio started")

	tasks := make([]func(context.Context) (Assignment, error), len(configs))
	for i, config := range configs {
		solver := NewSolverWithConfig(problem, config)
		tasks[i] = solver.Solve
	}
	solution, err := parallel.Race(ctx, tasks)
	if err != nil && !errors.Is(err, ErrUnsatisfiable) {
		// A racer lost to cancellation rather than exhaustion; report the
		// context's own error when the caller's ctx is done.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return solution, err
}
