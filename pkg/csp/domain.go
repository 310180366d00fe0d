// Package csp provides finite-domain constraint satisfaction solving.
// This file implements Domain, the immutable set of admissible values for
// one variable. Primary variables carry integer domains; encoding variables
// carry tuple domains whose elements are the valid combinations of the
// variables they encode.
//
// Domains are canonicalized at construction: values are deduplicated and
// stored in ascending order (lexicographic for tuples), so a value's
// position inside its domain is stable for the lifetime of the problem.
// The solver works in this position space and reifies positions back to
// values only at the API boundary.
package csp

import (
	"sort"
	"strings"
)

// Domain is the finite set of admissible values for one variable. A Domain
// is immutable after construction; search never shrinks it, only the
// solver's private candidate sets.
type Domain struct {
	values  []int       // scalar elements, ascending, distinct
	rows    [][]int     // tuple elements, lexicographic, distinct
	pos     map[int]int // scalar value -> position
	isTuple bool
}

// RangeDomain returns the inclusive integer range lo..hi as a domain slice.
// An inverted range yields an empty slice.
func RangeDomain(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

// DomainOf returns its arguments as a domain slice. It exists so call sites
// read uniformly next to RangeDomain.
func DomainOf(values ...int) []int {
	return copyInts(values)
}

// newScalarDomain builds a canonical integer domain from values, copying,
// sorting, and deduplicating the input. An empty input is legal and yields
// an empty domain (the variable is then unassignable).
func newScalarDomain(values []int) *Domain {
	sorted := copyInts(values)
	sort.Ints(sorted)
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	d := &Domain{values: out, pos: make(map[int]int, len(out))}
	for i, v := range out {
		d.pos[v] = i
	}
	return d
}

// newTupleDomain builds a canonical tuple domain from rows, deep-copying,
// sorting lexicographically, and deduplicating. An empty row set is legal:
// the resulting variable has no admissible value, which makes the problem
// unsatisfiable at solve time but is never a construction error.
func newTupleDomain(rows [][]int) *Domain {
	sorted := make([][]int, len(rows))
	for i, r := range rows {
		sorted[i] = copyInts(r)
	}
	sortTuples(sorted)
	out := sorted[:0]
	for i, r := range sorted {
		if i == 0 || compareTuples(r, sorted[i-1]) != 0 {
			out = append(out, r)
		}
	}
	return &Domain{rows: out, isTuple: true}
}

// Size returns the number of admissible values.
func (d *Domain) Size() int {
	if d.isTuple {
		return len(d.rows)
	}
	return len(d.values)
}

// IsTuple reports whether the domain holds integer tuples (an encoding
// variable's domain) rather than integers.
func (d *Domain) IsTuple() bool {
	return d.isTuple
}

// Values returns a copy of the integer elements in ascending order, or nil
// for a tuple domain.
func (d *Domain) Values() []int {
	if d.isTuple {
		return nil
	}
	return copyInts(d.values)
}

// Rows returns a deep copy of the tuple elements in lexicographic order, or
// nil for an integer domain.
func (d *Domain) Rows() [][]int {
	if !d.isTuple {
		return nil
	}
	out := make([][]int, len(d.rows))
	for i, r := range d.rows {
		out[i] = copyInts(r)
	}
	return out
}

// Contains reports whether v is an element of an integer domain. It is
// always false for tuple domains.
func (d *Domain) Contains(v int) bool {
	if d.isTuple {
		return false
	}
	_, ok := d.pos[v]
	return ok
}

// ContainsRow reports whether t is an element of a tuple domain. It is
// always false for integer domains.
func (d *Domain) ContainsRow(t []int) bool {
	_, ok := d.rowPosition(t)
	return ok
}

// position returns the index of scalar value v inside the domain.
func (d *Domain) position(v int) (int, bool) {
	p, ok := d.pos[v]
	return p, ok
}

// rowPosition returns the index of tuple t inside the domain, by binary
// search over the lexicographic order.
func (d *Domain) rowPosition(t []int) (int, bool) {
	if !d.isTuple {
		return 0, false
	}
	i := sort.Search(len(d.rows), func(i int) bool {
		return compareTuples(d.rows[i], t) >= 0
	})
	if i < len(d.rows) && compareTuples(d.rows[i], t) == 0 {
		return i, true
	}
	return 0, false
}

// valueAt reifies the element at position p.
func (d *Domain) valueAt(p int) Value {
	if d.isTuple {
		return TupleValue(d.rows[p])
	}
	return IntValue(d.values[p])
}

// String returns a compact representation such as "{1, 2, 3}" or
// "{(1 2), (2 1)}". Large domains are truncated.
func (d *Domain) String() string {
	const limit = 8
	var parts []string
	n := d.Size()
	for p := 0; p < n && p < limit; p++ {
		parts = append(parts, d.valueAt(p).String())
	}
	if n > limit {
		parts = append(parts, "...")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
