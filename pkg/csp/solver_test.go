package csp

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queensProblem models n-queens with pairwise predicate constraints.
func queensProblem(t *testing.T, n int) *CSP {
	t.Helper()
	problem := New()
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Q%d", i+1)
	}
	require.NoError(t, problem.AddVariables(names, RangeDomain(1, n)))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			gap := j - i
			require.NoError(t, problem.AddConstraint([]string{names[i], names[j]},
				Predicate(func(v ...int) bool {
					return v[0] != v[1] && v[0]-v[1] != gap && v[1]-v[0] != gap
				})))
		}
	}
	return problem
}

func allDiffProblem(t *testing.T, names []string, domain []int) *CSP {
	t.Helper()
	problem := New()
	require.NoError(t, problem.AddVariables(names, domain))
	require.NoError(t, problem.AllDiff())
	return problem
}

func TestNewSolver(t *testing.T) {
	problem := New()
	solver := NewSolver(problem)
	require.NotNil(t, solver)

	solver = NewSolverWithConfig(problem, nil)
	require.NotNil(t, solver, "nil config means defaults")
}

func TestSolveEmptyProblem(t *testing.T) {
	solution, err := New().Solve(context.Background(), HeuristicLex, ValueOrderSupport)
	require.NoError(t, err)
	assert.Empty(t, solution)
}

func TestSolveEmptyDomainUnsatisfiable(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariable("A", nil))

	_, err := problem.Solve(context.Background(), HeuristicLex, ValueOrderSupport)
	require.ErrorIs(t, err, ErrUnsatisfiable)
}

// An empty domain drives the remaining search space to zero, which made the
// impact ratio NaN and hid the variable from every score comparison.
func TestImpactStaysFiniteWithEmptyDomain(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariables([]string{"A", "B"}, DomainOf(1, 2)))
	require.NoError(t, problem.AddVariable("Z", nil))
	require.NoError(t, problem.Diff("A", "B"))

	config := DefaultSolverConfig()
	config.VariableHeuristic = HeuristicImpact
	config.ValueHeuristic = ValueOrderSupport
	solver := NewSolverWithConfig(problem, config)

	st := solver.newSearchState()
	require.True(t, st.assign(problem.index["A"], 0))
	for v, sum := range st.impactSum {
		assert.False(t, math.IsNaN(sum), "impact sum for %s is NaN", problem.names[v])
	}

	_, err := solver.Solve(context.Background())
	require.ErrorIs(t, err, ErrUnsatisfiable)
}

func TestSolveDeterministicIsIdempotent(t *testing.T) {
	problem := allDiffProblem(t, []string{"A", "B", "C"}, DomainOf(1, 2, 3))

	first, err := problem.Solve(context.Background(), HeuristicLex, ValueOrderSupport)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := problem.Solve(context.Background(), HeuristicLex, ValueOrderSupport)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("deterministic solve diverged on run %d:\n%s", i, diff)
		}
	}
}

func TestSolveSeededRandomIsReproducible(t *testing.T) {
	problem := queensProblem(t, 6)

	config := DefaultSolverConfig()
	config.VariableHeuristic = HeuristicRandom
	config.ValueHeuristic = ValueOrderRandom
	config.RandomSeed = 7

	first, err := NewSolverWithConfig(problem, config).Solve(context.Background())
	require.NoError(t, err)
	again, err := NewSolverWithConfig(problem, config).Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, again, "equal seeds reproduce the search")
}

func TestSolveEveryHeuristicCombination(t *testing.T) {
	variableHeuristics := []VariableHeuristic{
		HeuristicLex, HeuristicRandom, HeuristicDom, HeuristicDeg,
		HeuristicDynDeg, HeuristicBound, HeuristicImpact,
	}
	valueHeuristics := []ValueHeuristic{
		ValueOrderRandom, ValueOrderSupport, ValueOrderLessFiltering,
	}
	problem := queensProblem(t, 6)

	for _, vh := range variableHeuristics {
		for _, valh := range valueHeuristics {
			t.Run(fmt.Sprintf("%s/%s", vh, valh), func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				solution, err := problem.Solve(ctx, vh, valh)
				require.NoError(t, err)
				assert.True(t, problem.Verify(solution), "invalid solution %v", solution)
			})
		}
	}
}

func TestSolveForwardCheckingOffAgrees(t *testing.T) {
	problem := allDiffProblem(t, []string{"A", "B", "C"}, DomainOf(1, 2, 3))

	withFC := DefaultSolverConfig()
	withFC.ValueHeuristic = ValueOrderSupport
	withoutFC := DefaultSolverConfig()
	withoutFC.ValueHeuristic = ValueOrderSupport
	withoutFC.ForwardChecking = false

	a, err := NewSolverWithConfig(problem, withFC).Solve(context.Background())
	require.NoError(t, err)
	b, err := NewSolverWithConfig(problem, withoutFC).Solve(context.Background())
	require.NoError(t, err)

	assert.True(t, problem.Verify(a))
	assert.True(t, problem.Verify(b))
	assert.Equal(t, a, b, "support ordering is symmetric here, both modes pick the same branch")
}

func TestSolveThroughEncodingRoundTrip(t *testing.T) {
	// Mixed model: a 3-ary sum (encoded) plus direct binary inequalities.
	problem := New()
	require.NoError(t, problem.AddVariables([]string{"A", "B", "C"}, RangeDomain(1, 5)))
	require.NoError(t, problem.AllDiff())
	require.NoError(t, problem.WeightedSum([]string{"A", "B", "C"}, nil, SumEquals, 9))

	solution, err := problem.Solve(context.Background(), HeuristicDom, ValueOrderSupport)
	require.NoError(t, err)
	assert.Equal(t, 9, solution["A"]+solution["B"]+solution["C"])
	assert.True(t, problem.Verify(solution),
		"solution satisfies every constraint, including through the encoding variable")

	for _, name := range problem.Variables() {
		_, isPrimary := solution[name]
		dom, err := problem.Domain(name)
		require.NoError(t, err)
		assert.Equal(t, !dom.IsTuple(), isPrimary, "encoding variables never leak into solutions")
	}
}

func TestSolveNFindsAllSolutions(t *testing.T) {
	problem := allDiffProblem(t, []string{"A", "B", "C"}, DomainOf(1, 2, 3))

	config := DefaultSolverConfig()
	config.ValueHeuristic = ValueOrderSupport

	solutions, err := NewSolverWithConfig(problem, config).SolveN(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, solutions, 6, "the 6 permutations of (1,2,3)")
	seen := make(map[string]bool)
	for _, solution := range solutions {
		assert.True(t, problem.Verify(solution))
		key := fmt.Sprint(solution["A"], solution["B"], solution["C"])
		assert.False(t, seen[key], "duplicate solution %v", solution)
		seen[key] = true
	}

	limited, err := NewSolverWithConfig(problem, config).SolveN(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSolveNExhaustionIsNotAnError(t *testing.T) {
	problem := allDiffProblem(t, []string{"A", "B"}, DomainOf(1))

	solutions, err := NewSolver(problem).SolveN(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, solutions)
}

func TestSolveCancelledContext(t *testing.T) {
	problem := queensProblem(t, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := problem.Solve(ctx, HeuristicLex, ValueOrderSupport)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSolveTimeout(t *testing.T) {
	// Pigeonhole: 12 variables into 11 values is unsatisfiable, and proving
	// it by search takes far longer than the deadline.
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("P%02d", i+1)
	}
	problem := allDiffProblem(t, names, RangeDomain(1, 11))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := problem.Solve(ctx, HeuristicLex, ValueOrderSupport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSolverStats(t *testing.T) {
	problem := allDiffProblem(t, []string{"A", "B", "C"}, DomainOf(1, 2, 3))

	solver := NewSolver(problem)
	_, err := solver.Solve(context.Background())
	require.NoError(t, err)

	stats := solver.Stats()
	assert.GreaterOrEqual(t, stats.NodesExplored, 3, "at least one node per variable")
	assert.Equal(t, 1, stats.SolutionsFound)
	assert.Equal(t, 3, stats.MaxDepth)
	assert.Greater(t, stats.PeakTrailSize, 0)
	assert.GreaterOrEqual(t, stats.SearchTime, time.Duration(0))
}

func TestConcurrentSolvesShareOneProblem(t *testing.T) {
	problem := queensProblem(t, 6)

	var wg sync.WaitGroup
	for seed := int64(0); seed < 8; seed++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			config := DefaultSolverConfig()
			config.VariableHeuristic = HeuristicRandom
			config.RandomSeed = seed
			solution, err := NewSolverWithConfig(problem, config).Solve(context.Background())
			if err != nil {
				t.Errorf("seed %d: %v", seed, err)
				return
			}
			if !problem.Verify(solution) {
				t.Errorf("seed %d: invalid solution %v", seed, solution)
			}
		}(seed)
	}
	wg.Wait()
}

func TestHeuristicNames(t *testing.T) {
	assert.Equal(t, "lexicographic", HeuristicLex.String())
	assert.Equal(t, "random", HeuristicRandom.String())
	assert.Equal(t, "domain", HeuristicDom.String())
	assert.Equal(t, "constraint", HeuristicDeg.String())
	assert.Equal(t, "dynamic-constraint", HeuristicDynDeg.String())
	assert.Equal(t, "bound", HeuristicBound.String())
	assert.Equal(t, "impact", HeuristicImpact.String())
	assert.Equal(t, "random", ValueOrderRandom.String())
	assert.Equal(t, "support", ValueOrderSupport.String())
	assert.Equal(t, "less-filtering", ValueOrderLessFiltering.String())
}
