package csp

// stats.go: monitoring and statistics for the backtracking search

import (
	"fmt"
	"sync"
	"time"
)

// SolverStats holds statistics about one solving run
type SolverStats struct {
	// Search statistics
	NodesExplored  int           // Number of value assignments attempted
	Backtracks     int           // Number of exhausted search frames
	SolutionsFound int           // Number of solutions found
	SearchTime     time.Duration // Time spent in search
	MaxDepth       int           // Maximum search depth reached

	// Forward-checking statistics
	ValuesPruned int // Candidate values removed from neighbors
	Wipeouts     int // Prunings that emptied a neighbor's candidates

	// Memory statistics
	PeakTrailSize int // Peak size of the undo trail
}

// SolverMonitor collects statistics during search. All methods are safe for
// concurrent use, so a single monitor can observe portfolio runs.
type SolverMonitor struct {
	mu        sync.Mutex
	stats     SolverStats
	startTime time.Time
}

// NewSolverMonitor creates a new solver monitor
func NewSolverMonitor() *SolverMonitor {
	return &SolverMonitor{startTime: time.Now()}
}

// GetStats returns a copy of the current statistics
func (m *SolverMonitor) GetStats() SolverStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Reset clears all statistics and restarts the search clock
func (m *SolverMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = SolverStats{}
	m.startTime = time.Now()
}

// StartSearch restarts the search clock
func (m *SolverMonitor) StartSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startTime = time.Now()
}

// FinishSearch accumulates the elapsed time since the clock started
func (m *SolverMonitor) FinishSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SearchTime += time.Since(m.startTime)
}

// RecordNode records one attempted value assignment
func (m *SolverMonitor) RecordNode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.NodesExplored++
}

// RecordBacktrack records abandoning an exhausted search frame
func (m *SolverMonitor) RecordBacktrack() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Backtracks++
}

// RecordSolution records finding a solution
func (m *SolverMonitor) RecordSolution() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SolutionsFound++
}

// RecordDepth records the current search depth
func (m *SolverMonitor) RecordDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.stats.MaxDepth {
		m.stats.MaxDepth = depth
	}
}

// RecordPruned records candidate values removed by forward checking
func (m *SolverMonitor) RecordPruned(values int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.ValuesPruned += values
}

// RecordWipeout records a pruning that emptied a candidate set
func (m *SolverMonitor) RecordWipeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Wipeouts++
}

// RecordTrailSize records the current trail size
func (m *SolverMonitor) RecordTrailSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > m.stats.PeakTrailSize {
		m.stats.PeakTrailSize = size
	}
}

// String returns a formatted string representation of the statistics
func (s SolverStats) String() string {
	return fmt.Sprintf(
		"Solver Statistics:\n"+
			"  Search: %d nodes, %d backtracks, %d solutions, %v time, max depth %d\n"+
			"  Forward checking: %d values pruned, %d wipeouts\n"+
			"  Memory: peak trail %d",
		s.NodesExplored, s.Backtracks, s.SolutionsFound, s.SearchTime, s.MaxDepth,
		s.ValuesPruned, s.Wipeouts,
		s.PeakTrailSize,
	)
}
