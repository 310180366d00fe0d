// Package csp provides finite-domain constraint satisfaction solving.
// This file implements the problem aggregate: variable declaration, domain
// lookup, and the constraint builder that validates every constraint and
// materializes it as one or more binary pair tables.
//
// Problems are built incrementally and are add-only: variables, domains,
// and constraints are never removed or mutated once registered. A mutex
// guards construction; a fully built problem is read-only during solving
// and safe to share across concurrent solver instances.
package csp

import (
	"fmt"
	"sync"

	"github.com/yjourdin/projet-solveur/logger"
)

// CSP aggregates a constraint satisfaction problem: the declared primary
// variables, the domains of every variable (primary and encoding), the
// ordered collection of binary constraints, and the counter used to mint
// encoding-variable names. Build it with New and the Add* methods, then
// hand it to a Solver.
type CSP struct {
	mu sync.RWMutex

	names   []string
	index   map[string]int
	domains []*Domain
	primary []bool

	constraints []*Constraint
	adjacency   [][]int // variable index -> indices into constraints

	encodings     map[int][]int // encoding variable index -> encoded variable indices
	encodingCount int
}

// New returns an empty problem.
func New() *CSP {
	return &CSP{
		index:     make(map[string]int),
		encodings: make(map[int][]int),
	}
}

// AddVariable declares a primary variable with the given integer domain.
// The domain is copied and canonicalized; an empty domain is legal but
// makes the problem unsatisfiable. Re-declaring a name fails with
// ErrDuplicateVariable.
func (c *CSP) AddVariable(name string, domain []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.index[name]; exists {
		return fmt.Errorf("declare %q: %w", name, ErrDuplicateVariable)
	}
	c.registerLocked(name, newScalarDomain(domain), true)
	return nil
}

// AddVariables declares several primary variables sharing one domain. The
// call validates every name before registering any, so a duplicate leaves
// the problem unchanged.
func (c *CSP) AddVariables(names []string, domain []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, exists := c.index[name]; exists {
			return fmt.Errorf("declare %q: %w", name, ErrDuplicateVariable)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("declare %q twice in one call: %w", name, ErrDuplicateVariable)
		}
		seen[name] = struct{}{}
	}
	d := newScalarDomain(domain)
	for _, name := range names {
		c.registerLocked(name, d, true)
	}
	return nil
}

// registerLocked appends a variable and returns its index.
func (c *CSP) registerLocked(name string, d *Domain, primary bool) int {
	idx := len(c.names)
	c.names = append(c.names, name)
	c.index[name] = idx
	c.domains = append(c.domains, d)
	c.primary = append(c.primary, primary)
	c.adjacency = append(c.adjacency, nil)
	return idx
}

// Domain returns the domain of the named variable, primary or encoding.
func (c *CSP) Domain(name string) (*Domain, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", name, ErrUnknownVariable)
	}
	return c.domains[idx], nil
}

// Variables returns every variable name, primary and encoding, in creation
// order.
func (c *CSP) Variables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// PrimaryVariables returns the client-declared variable names in
// declaration order.
func (c *CSP) PrimaryVariables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.primaryNamesLocked()
}

func (c *CSP) primaryNamesLocked() []string {
	var out []string
	for idx, name := range c.names {
		if c.primary[idx] {
			out = append(out, name)
		}
	}
	return out
}

// Constraints returns the declared constraints in creation order.
func (c *CSP) Constraints() []*Constraint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Constraint, len(c.constraints))
	copy(out, c.constraints)
	return out
}

// ConstraintsOn returns the constraints that reference the named variable.
func (c *CSP) ConstraintsOn(name string) ([]*Constraint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", name, ErrUnknownVariable)
	}
	out := make([]*Constraint, 0, len(c.adjacency[idx]))
	for _, ci := range c.adjacency[idx] {
		out = append(out, c.constraints[ci])
	}
	return out, nil
}

// ConstraintSpec describes how a constraint restricts its variables: either
// an explicit finite set of valid tuples (Tuples) or a predicate over the
// variables' values (Predicate). The set of spec kinds is closed.
type ConstraintSpec interface {
	constraintSpec()
}

type tupleSpec struct{ rows [][]int }

type predicateSpec struct{ fn func(values ...int) bool }

func (tupleSpec) constraintSpec() {}

func (predicateSpec) constraintSpec() {}

// Tuples builds an extensional constraint spec from the listed valid
// tuples. Every tuple must match the constraint's arity and stay within the
// declared domains. An empty list is legal and yields a constraint no
// assignment can satisfy.
func Tuples(rows ...[]int) ConstraintSpec {
	return tupleSpec{rows: rows}
}

// Predicate builds an intensional constraint spec. The predicate is
// evaluated once for every element of the cartesian product of the
// constrained variables' domains, so cost grows multiplicatively with
// domain sizes and arity.
func Predicate(fn func(values ...int) bool) ConstraintSpec {
	return predicateSpec{fn: fn}
}

// AddConstraint declares a constraint over two or more primary variables.
// Arity-2 constraints become a single binary pair table; higher arities are
// rewritten through the hidden-variable encoding (see encode.go).
//
// Validation is fail-fast and mutates nothing on failure. It rejects, in
// order: fewer than two variables (ErrArityMismatch), names not declared as
// primary variables (ErrUnknownVariable), tuples whose length differs from
// the variable count (ErrArityMismatch), specs of no admissible kind
// (ErrTypeMismatch), and tuple values outside a variable's declared domain
// (ErrDomainViolation).
func (c *CSP) AddConstraint(variables []string, spec ConstraintSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch s := spec.(type) {
	case tupleSpec:
		return c.addExtensionalLocked(variables, s.rows)
	case predicateSpec:
		if s.fn == nil {
			return fmt.Errorf("add constraint on %v: nil predicate: %w", variables, ErrTypeMismatch)
		}
		return c.addFunctionalLocked(variables, s.fn)
	default:
		return fmt.Errorf("add constraint on %v: spec %T: %w", variables, spec, ErrTypeMismatch)
	}
}

func (c *CSP) addExtensionalLocked(variables []string, rows [][]int) error {
	idxs, err := c.resolveConstraintVarsLocked(variables)
	if err != nil {
		return err
	}
	canonical, err := c.validateRowsLocked(variables, idxs, rows)
	if err != nil {
		return err
	}
	c.materializeLocked(idxs, canonical)
	return nil
}

func (c *CSP) addFunctionalLocked(variables []string, fn func(values ...int) bool) error {
	idxs, err := c.resolveConstraintVarsLocked(variables)
	if err != nil {
		return err
	}
	rows := c.enumerateLocked(idxs, func(tuple []int) bool {
		return fn(tuple...)
	})
	c.materializeLocked(idxs, rows)
	return nil
}

// resolveConstraintVarsLocked checks the constraint's shape and resolves
// its variable names to indices.
func (c *CSP) resolveConstraintVarsLocked(variables []string) ([]int, error) {
	if len(variables) < 2 {
		return nil, fmt.Errorf("constraint needs at least two variables, got %d: %w",
			len(variables), ErrArityMismatch)
	}
	return c.resolvePrimaryLocked(variables)
}

// resolvePrimaryLocked maps names to variable indices, requiring each to be
// a declared primary variable.
func (c *CSP) resolvePrimaryLocked(variables []string) ([]int, error) {
	idxs := make([]int, len(variables))
	for i, name := range variables {
		idx, ok := c.index[name]
		if !ok || !c.primary[idx] {
			return nil, fmt.Errorf("constraint references %q: %w", name, ErrUnknownVariable)
		}
		idxs[i] = idx
	}
	return idxs, nil
}

// validateRowsLocked checks every tuple's length, then every tuple's
// values against the corresponding domains, and returns the canonical
// (sorted, distinct) copy of the rows.
func (c *CSP) validateRowsLocked(variables []string, idxs []int, rows [][]int) ([][]int, error) {
	for _, row := range rows {
		if len(row) != len(idxs) {
			return nil, fmt.Errorf("tuple %v has %d elements for %d variables: %w",
				row, len(row), len(idxs), ErrArityMismatch)
		}
	}
	for _, row := range rows {
		for i, v := range row {
			if !c.domains[idxs[i]].Contains(v) {
				return nil, fmt.Errorf("tuple %v: value %d outside domain of %q: %w",
					row, v, variables[i], ErrDomainViolation)
			}
		}
	}
	return canonicalRows(rows), nil
}

// materializeLocked turns a validated, canonical tuple set into stored
// constraints: directly for arity 2, through the encoding for higher
// arities.
func (c *CSP) materializeLocked(idxs []int, rows [][]int) {
	if len(idxs) == 2 {
		c.addBinaryFromRowsLocked(idxs[0], idxs[1], rows)
		return
	}
	c.encodeLocked(idxs, rows)
}

// addBinaryFromRowsLocked registers a single pair table between two
// variables from validated 2-tuples.
func (c *CSP) addBinaryFromRowsLocked(v1, v2 int, rows [][]int) {
	con := newConstraint(v1, v2, c.names[v1], c.names[v2], c.domains[v1], c.domains[v2])
	for _, row := range rows {
		p1, _ := c.domains[v1].position(row[0])
		p2, _ := c.domains[v2].position(row[1])
		con.setPair(p1, p2)
	}
	c.appendConstraintLocked(con)
	logger.Logger().Debug().
		Str("v1", con.name1).
		Str("v2", con.name2).
		Int("pairs", con.pairCount).
		Msg("binary constraint added")
}

// appendConstraintLocked stores a constraint and indexes it under both end
// variables. A self-loop (same variable at both ends) is indexed once.
func (c *CSP) appendConstraintLocked(con *Constraint) {
	ci := len(c.constraints)
	c.constraints = append(c.constraints, con)
	c.adjacency[con.v1] = append(c.adjacency[con.v1], ci)
	if !con.isSelfLoop() {
		c.adjacency[con.v2] = append(c.adjacency[con.v2], ci)
	}
}

// enumerateLocked walks the cartesian product of the given variables'
// domains in odometer order (last variable varies fastest) and collects the
// tuples accepted by keep. Domains iterate in canonical ascending order, so
// the result is lexicographically sorted and distinct.
func (c *CSP) enumerateLocked(idxs []int, keep func(tuple []int) bool) [][]int {
	doms := make([]*Domain, len(idxs))
	for i, idx := range idxs {
		doms[i] = c.domains[idx]
		if doms[i].Size() == 0 {
			return nil
		}
	}
	var out [][]int
	tuple := make([]int, len(idxs))
	counters := make([]int, len(idxs))
	for {
		for i, d := range doms {
			tuple[i] = d.values[counters[i]]
		}
		if keep(tuple) {
			out = append(out, copyInts(tuple))
		}
		i := len(counters) - 1
		for ; i >= 0; i-- {
			counters[i]++
			if counters[i] < doms[i].Size() {
				break
			}
			counters[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return out
}

// canonicalRows deep-copies, sorts, and deduplicates a tuple set.
func canonicalRows(rows [][]int) [][]int {
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[i] = copyInts(r)
	}
	sortTuples(out)
	dedup := out[:0]
	for i, r := range out {
		if i == 0 || compareTuples(r, out[i-1]) != 0 {
			dedup = append(dedup, r)
		}
	}
	return dedup
}

// Verify reports whether the assignment satisfies every declared
// constraint, checked directly against each constraint's valid-pair set.
// The assignment must cover every primary variable with an in-domain value.
// Encoding variables are resolved by projecting the assignment onto the
// variables they encode; the projected tuple must be an element of the
// encoding variable's domain.
func (c *CSP) Verify(a Assignment) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vals := make([]Value, len(c.names))
	known := make([]bool, len(c.names))
	for idx, name := range c.names {
		if !c.primary[idx] {
			continue
		}
		v, present := a[name]
		if !present || !c.domains[idx].Contains(v) {
			return false
		}
		vals[idx] = IntValue(v)
		known[idx] = true
	}
	for eIdx, over := range c.encodings {
		tuple := make([]int, len(over))
		for i, vIdx := range over {
			tuple[i] = vals[vIdx].scalar
		}
		if !c.domains[eIdx].ContainsRow(tuple) {
			return false
		}
		vals[eIdx] = TupleValue(tuple)
		known[eIdx] = true
	}
	for _, con := range c.constraints {
		if !known[con.v1] || !known[con.v2] {
			return false
		}
		if !con.AllowsValues(vals[con.v1], vals[con.v2]) {
			return false
		}
	}
	return true
}
