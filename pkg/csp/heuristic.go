// Package csp provides finite-domain constraint satisfaction solving.
// This file defines the closed sets of search heuristics and their scoring.
// Variable selection scans the unassigned variables and keeps the best
// score; every deterministic heuristic breaks ties by the lexicographically
// smallest variable name, so repeated runs explore identically.
package csp

import (
	"fmt"
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// VariableHeuristic selects which unassigned variable the search branches
// on next. The set of heuristics is closed; unknown values fall back to
// HeuristicLex.
type VariableHeuristic int

const (
	// HeuristicLex picks the smallest variable name in lexicographic order.
	HeuristicLex VariableHeuristic = iota

	// HeuristicRandom picks uniformly among the unassigned variables.
	HeuristicRandom

	// HeuristicDom picks the variable with the fewest remaining candidate
	// values (minimum remaining values). Under forward checking the live
	// candidate sets are counted; without it, the declared domain sizes.
	HeuristicDom

	// HeuristicDeg picks the variable participating in the most
	// constraints (degree), counted once per constraint however the
	// assignment stands.
	HeuristicDeg

	// HeuristicDynDeg picks the variable with the most constraints to
	// other currently unassigned variables, recomputed at every step.
	HeuristicDynDeg

	// HeuristicBound picks the variable with the most restrictive extreme
	// bound: the smallest maximum remaining value for integer domains;
	// tuple domains rank by their largest remaining row index.
	HeuristicBound

	// HeuristicImpact picks the variable with the largest average
	// search-space reduction over its past assignments. Unobserved
	// variables rate 1.0 so they are explored early; failed assignments
	// also record 1.0. The statistic needs forward checking to move —
	// without it every success measures zero reduction and selection
	// degrades to name order.
	HeuristicImpact
)

// String returns the heuristic's conventional name.
func (h VariableHeuristic) String() string {
	switch h {
	case HeuristicLex:
		return "lexicographic"
	case HeuristicRandom:
		return "random"
	case HeuristicDom:
		return "domain"
	case HeuristicDeg:
		return "constraint"
	case HeuristicDynDeg:
		return "dynamic-constraint"
	case HeuristicBound:
		return "bound"
	case HeuristicImpact:
		return "impact"
	default:
		return fmt.Sprintf("VariableHeuristic(%d)", int(h))
	}
}

// ValueHeuristic orders the candidate values of the variable being
// branched on. The set is closed; unknown values fall back to
// ValueOrderRandom.
type ValueHeuristic int

const (
	// ValueOrderRandom tries the candidates in uniformly random order.
	ValueOrderRandom ValueHeuristic = iota

	// ValueOrderSupport tries most-supported values first: candidates are
	// ranked by the total number of consistent partner values across every
	// incident constraint, descending.
	ValueOrderSupport

	// ValueOrderLessFiltering tries least-constraining values first:
	// candidates are ranked by how many values they would remove from
	// unassigned neighbors' candidate sets, ascending.
	ValueOrderLessFiltering
)

// String returns the heuristic's conventional name.
func (h ValueHeuristic) String() string {
	switch h {
	case ValueOrderRandom:
		return "random"
	case ValueOrderSupport:
		return "support"
	case ValueOrderLessFiltering:
		return "less-filtering"
	default:
		return fmt.Sprintf("ValueHeuristic(%d)", int(h))
	}
}

// selectVariable returns the next unassigned variable per the configured
// heuristic. Callers guarantee at least one variable is unassigned.
func (st *searchState) selectVariable() int {
	switch st.cfg.VariableHeuristic {
	case HeuristicRandom:
		var unassigned []int
		for v, p := range st.vals {
			if p < 0 {
				unassigned = append(unassigned, v)
			}
		}
		return unassigned[st.rng.Intn(len(unassigned))]
	case HeuristicDom:
		return st.pickBest(false, func(v int) float64 { return float64(st.candidateCount(v)) })
	case HeuristicDeg:
		return st.pickBest(true, func(v int) float64 { return float64(len(st.csp.adjacency[v])) })
	case HeuristicDynDeg:
		return st.pickBest(true, func(v int) float64 { return float64(st.dynDegree(v)) })
	case HeuristicBound:
		return st.pickBest(false, func(v int) float64 { return float64(st.boundKey(v)) })
	case HeuristicImpact:
		return st.pickBest(true, st.impactAvg)
	default:
		return st.pickBest(false, func(int) float64 { return 0 })
	}
}

// pickBest scans the unassigned variables keeping the smallest score (or
// the largest when maximize is set); equal scores fall to the smaller
// variable name.
func (st *searchState) pickBest(maximize bool, score func(v int) float64) int {
	best := -1
	var bestScore float64
	for v, p := range st.vals {
		if p >= 0 {
			continue
		}
		sc := score(v)
		if best < 0 {
			best, bestScore = v, sc
			continue
		}
		better := sc < bestScore
		if maximize {
			better = sc > bestScore
		}
		if better || (sc == bestScore && st.csp.names[v] < st.csp.names[best]) {
			best, bestScore = v, sc
		}
	}
	return best
}

// candidateCount returns how many values remain tryable for v.
func (st *searchState) candidateCount(v int) int {
	if st.cfg.ForwardChecking {
		return int(st.cand[v].Count())
	}
	return st.csp.domains[v].Size()
}

// dynDegree counts v's constraints whose other end is still unassigned.
func (st *searchState) dynDegree(v int) int {
	n := 0
	for _, ci := range st.csp.adjacency[v] {
		con := st.csp.constraints[ci]
		if con.isSelfLoop() {
			continue
		}
		if st.vals[con.otherEnd(v)] < 0 {
			n++
		}
	}
	return n
}

// boundKey ranks variables for HeuristicBound. Integer domains rank by
// their largest remaining value, tuple domains by their largest remaining
// row index; the smallest key is selected. A variable with no remaining
// candidate ranks first so the dead end surfaces immediately.
func (st *searchState) boundKey(v int) int {
	d := st.csp.domains[v]
	p := -1
	if st.cfg.ForwardChecking {
		if hi, ok := highestSet(st.cand[v]); ok {
			p = hi
		}
	} else if d.Size() > 0 {
		p = d.Size() - 1
	}
	if p < 0 {
		return math.MinInt
	}
	if d.isTuple {
		return p
	}
	return d.values[p]
}

// impactAvg returns v's running average impact, defaulting to 1.0 before
// any observation.
func (st *searchState) impactAvg(v int) float64 {
	if st.impactCount[v] == 0 {
		return 1
	}
	return st.impactSum[v] / float64(st.impactCount[v])
}

// orderValues returns the positions the search will try for v, in order.
func (st *searchState) orderValues(v int) []int {
	ps := st.candidatePositions(v)
	switch st.cfg.ValueHeuristic {
	case ValueOrderSupport:
		st.sortBySupport(v, ps)
	case ValueOrderLessFiltering:
		st.sortByFiltering(v, ps)
	default:
		st.rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
	}
	return ps
}

// candidatePositions lists the tryable positions for v in ascending order:
// the live candidate set under forward checking, the full declared domain
// without it.
func (st *searchState) candidatePositions(v int) []int {
	if st.cfg.ForwardChecking {
		return bitsAsInts(st.cand[v])
	}
	out := make([]int, st.csp.domains[v].Size())
	for i := range out {
		out[i] = i
	}
	return out
}

// sortBySupport orders positions by descending total support. For each
// incident constraint the support of a position is the number of partner
// values consistent with it: the live candidates of an unassigned partner,
// the single chosen value of an assigned one. Ties keep ascending position
// order, so the ordering is deterministic.
func (st *searchState) sortBySupport(v int, ps []int) {
	scores := make([]int, st.csp.domains[v].Size())
	for _, p := range ps {
		total := 0
		for _, ci := range st.csp.adjacency[v] {
			con := st.csp.constraints[ci]
			if con.isSelfLoop() {
				if con.allowsPos(p, p) {
					total++
				}
				continue
			}
			u := con.otherEnd(v)
			row := con.supportRow(v, p)
			switch {
			case st.vals[u] >= 0:
				if row.Test(uint(st.vals[u])) {
					total++
				}
			case st.cfg.ForwardChecking:
				total += int(row.IntersectionCardinality(st.cand[u]))
			default:
				total += int(row.Count())
			}
		}
		scores[p] = total
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if scores[ps[i]] != scores[ps[j]] {
			return scores[ps[i]] > scores[ps[j]]
		}
		return ps[i] < ps[j]
	})
}

// sortByFiltering orders positions by ascending filtering cost: the total
// number of candidate values the assignment would remove across unassigned
// neighbors, with multiple constraints linking the same pair intersected
// together. Ties keep ascending position order.
func (st *searchState) sortByFiltering(v int, ps []int) {
	links := make(map[int][]*Constraint)
	for _, ci := range st.csp.adjacency[v] {
		con := st.csp.constraints[ci]
		if con.isSelfLoop() {
			continue
		}
		u := con.otherEnd(v)
		if st.vals[u] >= 0 {
			continue
		}
		links[u] = append(links[u], con)
	}
	scores := make([]int, st.csp.domains[v].Size())
	for _, p := range ps {
		removed := 0
		for u, cons := range links {
			base := st.neighborBase(u)
			surviving := base.Clone()
			for _, con := range cons {
				surviving.InPlaceIntersection(con.supportRow(v, p))
			}
			removed += int(base.Count()) - int(surviving.Count())
		}
		scores[p] = removed
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if scores[ps[i]] != scores[ps[j]] {
			return scores[ps[i]] < scores[ps[j]]
		}
		return ps[i] < ps[j]
	})
}

// neighborBase is the candidate set filtering is measured against: the
// live set under forward checking, the full domain without it.
func (st *searchState) neighborBase(u int) *bitset.BitSet {
	if st.cfg.ForwardChecking {
		return st.cand[u]
	}
	return fullBitSet(st.csp.domains[u].Size())
}

// fullBitSet returns a bitset of n bits, all set.
func fullBitSet(n int) *bitset.BitSet {
	return bitset.New(uint(n)).Complement()
}

// bitsAsInts collects the set bit indices in ascending order.
func bitsAsInts(b *bitset.BitSet) []int {
	out := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// highestSet returns the largest set bit index, if any.
func highestSet(b *bitset.BitSet) (int, bool) {
	best := -1
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		best = int(i)
	}
	return best, best >= 0
}
