// Package csp provides finite-domain constraint satisfaction solving.
// This file implements the backtracking search engine: an iterative
// depth-first exploration over an explicit frame stack, with an explicit
// undo trail so assignments and forward-checking prunings are reversed in
// exact reverse order on every backtrack.
package csp

import (
	"context"
	"math"
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/yjourdin/projet-solveur/logger"
)

// Assignment maps primary variable names to their chosen values. Encoding
// variables are solver-internal and never appear in a returned assignment.
type Assignment map[string]int

// RandSource supplies the random choices made by HeuristicRandom and
// ValueOrderRandom. *math/rand.Rand satisfies it; any implementation must
// return uniformly distributed values.
type RandSource interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// SolverConfig controls one solver's search behavior.
type SolverConfig struct {
	// VariableHeuristic selects the next unassigned variable to branch on.
	VariableHeuristic VariableHeuristic

	// ValueHeuristic orders the candidate values of the chosen variable.
	ValueHeuristic ValueHeuristic

	// ForwardChecking prunes unassigned neighbors' candidate sets on every
	// assignment and restores them on backtrack. It never changes which
	// assignments are solutions, only how early dead ends surface.
	ForwardChecking bool

	// RandomSeed seeds the default random source. Equal seeds reproduce the
	// exact same search, so even the random heuristics are repeatable.
	RandomSeed int64

	// Rand overrides the random source. When nil, a source seeded with
	// RandomSeed is used.
	Rand RandSource
}

// DefaultSolverConfig returns the default configuration: lexicographic
// variable order, random value order, forward checking on, seed 0.
func DefaultSolverConfig() *SolverConfig {
	return &SolverConfig{
		VariableHeuristic: HeuristicLex,
		ValueHeuristic:    ValueOrderRandom,
		ForwardChecking:   true,
	}
}

// Solver runs backtracking search over a built problem. The problem is
// read-only during solving, so independent Solver instances may search the
// same CSP concurrently; a single Solver must not be used from multiple
// goroutines at once.
type Solver struct {
	csp     *CSP
	config  SolverConfig
	monitor *SolverMonitor
}

// NewSolver creates a solver with the default configuration.
func NewSolver(problem *CSP) *Solver {
	return NewSolverWithConfig(problem, nil)
}

// NewSolverWithConfig creates a solver with the given configuration. A nil
// config means DefaultSolverConfig; the config is copied, so later changes
// to it do not affect the solver.
func NewSolverWithConfig(problem *CSP, config *SolverConfig) *Solver {
	if config == nil {
		config = DefaultSolverConfig()
	}
	return &Solver{
		csp:     problem,
		config:  *config,
		monitor: NewSolverMonitor(),
	}
}

// Stats returns the statistics accumulated over this solver's runs.
func (s *Solver) Stats() SolverStats {
	return s.monitor.GetStats()
}

// Solve searches for one complete consistent assignment and returns it
// restricted to the primary variables. An exhausted search space returns
// ErrUnsatisfiable; cancellation returns the context's error with the trail
// fully unwound.
func (s *Solver) Solve(ctx context.Context) (Assignment, error) {
	solutions, err := s.SolveN(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(solutions) == 0 {
		return nil, ErrUnsatisfiable
	}
	return solutions[0], nil
}

// SolveN searches for up to maxSolutions complete consistent assignments;
// maxSolutions <= 0 means all of them. Exhaustion is not an error here: the
// returned slice is simply shorter than requested, possibly empty.
func (s *Solver) SolveN(ctx context.Context, maxSolutions int) ([]Assignment, error) {
	s.monitor.StartSearch()
	defer s.monitor.FinishSearch()
	logger.Logger().Debug().
		Int("variables", len(s.csp.names)).
		Int("constraints", len(s.csp.constraints)).
		Stringer("variable_heuristic", s.config.VariableHeuristic).
		Stringer("value_heuristic", s.config.ValueHeuristic).
		Bool("forward_checking", s.config.ForwardChecking).
		Msg("search started")

	solutions, err := s.search(ctx, maxSolutions)

	logger.Logger().Debug().
		Int("solutions", len(solutions)).
		Err(err).
		Msg("search finished")
	return solutions, err
}

// Solve builds a solver over the problem with the given heuristics (forward
// checking on, seed 0) and returns the first solution. It is the
// convenience entry point for callers that do not need a configured Solver.
func (c *CSP) Solve(ctx context.Context, variableHeuristic VariableHeuristic, valueHeuristic ValueHeuristic) (Assignment, error) {
	config := DefaultSolverConfig()
	config.VariableHeuristic = variableHeuristic
	config.ValueHeuristic = valueHeuristic
	return NewSolverWithConfig(c, config).Solve(ctx)
}

// searchState is the mutable state of one in-flight search: the partial
// assignment in position space, the live candidate sets, the undo trail,
// and the running impact statistics. It is exclusively owned by one SolveN
// call.
type searchState struct {
	csp *CSP
	cfg *SolverConfig
	rng RandSource

	vals          []int // assigned position per variable, -1 when unassigned
	assignedCount int

	cand []*bitset.BitSet // live candidate positions, forward checking only

	trail []trailEntry

	trackImpact bool
	impactSum   []float64
	impactCount []int

	monitor *SolverMonitor
}

// trailEntry is one reversible mutation. An assignment entry (removed nil)
// restores the variable to unassigned; a pruning entry restores the removed
// candidate positions to the variable's live set.
type trailEntry struct {
	variable int
	removed  *bitset.BitSet
}

// frame is one node of the explicit search stack: the variable branched on,
// its ordered candidate positions, the index of the next one to try, and
// the trail length to restore between tries.
type frame struct {
	mark   int
	v      int
	values []int
	next   int
}

func (s *Solver) newSearchState() *searchState {
	n := len(s.csp.names)
	st := &searchState{
		csp:         s.csp,
		cfg:         &s.config,
		rng:         s.config.Rand,
		vals:        make([]int, n),
		trackImpact: s.config.VariableHeuristic == HeuristicImpact,
		monitor:     s.monitor,
	}
	if st.rng == nil {
		st.rng = rand.New(rand.NewSource(s.config.RandomSeed))
	}
	for v := range st.vals {
		st.vals[v] = -1
	}
	if s.config.ForwardChecking {
		st.cand = make([]*bitset.BitSet, n)
		for v := range st.cand {
			st.cand[v] = fullBitSet(s.csp.domains[v].Size())
		}
	}
	if st.trackImpact {
		st.impactSum = make([]float64, n)
		st.impactCount = make([]int, n)
	}
	return st
}

// search runs the iterative backtracking loop. Cancellation is checked only
// at the top of the variable-selection step, so the trail is always in a
// consistent state when it is unwound on abort.
func (s *Solver) search(ctx context.Context, maxSolutions int) ([]Assignment, error) {
	st := s.newSearchState()
	total := len(st.csp.names)
	var solutions []Assignment

	if total == 0 {
		s.monitor.RecordSolution()
		return []Assignment{{}}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v0 := st.selectVariable()
	stack := []frame{{mark: len(st.trail), v: v0, values: st.orderValues(v0)}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next >= len(f.values) {
			st.undoTo(f.mark)
			stack = stack[:len(stack)-1]
			s.monitor.RecordBacktrack()
			continue
		}

		// Roll back the previous try at this frame before the next one.
		st.undoTo(f.mark)
		p := f.values[f.next]
		f.next++

		if !st.assign(f.v, p) {
			continue
		}

		if st.assignedCount == total {
			solutions = append(solutions, st.extract())
			s.monitor.RecordSolution()
			if maxSolutions > 0 && len(solutions) >= maxSolutions {
				st.undoTo(0)
				return solutions, nil
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			st.undoTo(0)
			return solutions, err
		}
		v := st.selectVariable()
		stack = append(stack, frame{mark: len(st.trail), v: v, values: st.orderValues(v)})
	}
	return solutions, nil
}

// assign tentatively binds variable v to domain position p, checks it
// against every constraint linking v to an assigned variable, and, under
// forward checking, prunes unassigned neighbors' candidates. It returns
// false on inconsistency or wipeout, leaving its trail entries for the
// caller's undoTo.
func (st *searchState) assign(v, p int) bool {
	st.pushAssignment(v)
	st.vals[v] = p
	st.monitor.RecordNode()
	st.monitor.RecordDepth(st.assignedCount)

	var before float64
	if st.trackImpact && st.cfg.ForwardChecking {
		before = st.searchSpaceLog()
	}

	for _, ci := range st.csp.adjacency[v] {
		con := st.csp.constraints[ci]
		if con.isSelfLoop() {
			if !con.allowsPos(p, p) {
				st.recordImpact(v, 1)
				return false
			}
			continue
		}
		u := con.otherEnd(v)
		row := con.supportRow(v, p)
		if st.vals[u] >= 0 {
			if !row.Test(uint(st.vals[u])) {
				st.recordImpact(v, 1)
				return false
			}
			continue
		}
		if st.cfg.ForwardChecking && !st.prune(u, row) {
			st.recordImpact(v, 1)
			return false
		}
	}

	if st.trackImpact {
		if st.cfg.ForwardChecking && !math.IsInf(before, -1) {
			// Reduction of the remaining search space, measured in log
			// space so large products stay representable.
			st.recordImpact(v, 1-math.Exp(st.searchSpaceLog()-before))
		} else {
			// A variable with no candidates makes both measurements -Inf,
			// which would turn the ratio into NaN.
			st.recordImpact(v, 0)
		}
	}
	return true
}

// prune intersects u's live candidates with the allowed row, recording the
// removed positions on the trail. It returns false when the set wipes out.
func (st *searchState) prune(u int, row *bitset.BitSet) bool {
	removed := st.cand[u].Difference(row)
	n := int(removed.Count())
	if n == 0 {
		return true
	}
	st.trail = append(st.trail, trailEntry{variable: u, removed: removed})
	st.monitor.RecordTrailSize(len(st.trail))
	st.cand[u].InPlaceIntersection(row)
	st.monitor.RecordPruned(n)
	if st.cand[u].None() {
		st.monitor.RecordWipeout()
		return false
	}
	return true
}

func (st *searchState) pushAssignment(v int) {
	st.trail = append(st.trail, trailEntry{variable: v})
	st.monitor.RecordTrailSize(len(st.trail))
	st.assignedCount++
}

// undoTo reverses trail entries down to the given mark, newest first.
func (st *searchState) undoTo(mark int) {
	for len(st.trail) > mark {
		e := st.trail[len(st.trail)-1]
		st.trail = st.trail[:len(st.trail)-1]
		if e.removed == nil {
			st.vals[e.variable] = -1
			st.assignedCount--
		} else {
			st.cand[e.variable].InPlaceUnion(e.removed)
		}
	}
}

// searchSpaceLog sums the logs of the unassigned variables' candidate
// counts, the log of the remaining search-space size.
func (st *searchState) searchSpaceLog() float64 {
	total := 0.0
	for v, p := range st.vals {
		if p >= 0 {
			continue
		}
		n := st.cand[v].Count()
		if n == 0 {
			return math.Inf(-1)
		}
		total += math.Log(float64(n))
	}
	return total
}

func (st *searchState) recordImpact(v int, impact float64) {
	if !st.trackImpact {
		return
	}
	st.impactSum[v] += impact
	st.impactCount[v]++
}

// extract reifies the complete assignment restricted to primary variables.
func (st *searchState) extract() Assignment {
	out := make(Assignment)
	for v, p := range st.vals {
		if st.csp.primary[v] {
			out[st.csp.names[v]] = st.csp.domains[v].values[p]
		}
	}
	return out
}
