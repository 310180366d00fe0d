// Package csp provides finite-domain constraint satisfaction solving.
// This file implements Constraint, the binary valid-pair table every
// declared constraint is reduced to. Pair sets are stored as bitset rows in
// both directions so the solver can test a pair, prune a neighbor's
// candidates, or count supports in O(domain/64) words.
package csp

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Constraint is an ordered pair of variables plus the set of value pairs
// that satisfy it, drawn from the cartesian product of the two domains at
// the time the constraint was added. The pair order fixes which domain each
// coordinate refers to; the relation itself is directionless.
//
// Constraints are immutable once registered with a problem.
type Constraint struct {
	v1, v2       int // variable indices within the owning problem
	name1, name2 string
	d1, d2       *Domain
	rows         []*bitset.BitSet // rows[p1] holds the valid positions of v2
	cols         []*bitset.BitSet // transpose: cols[p2] holds the valid positions of v1
	pairCount    int
}

// newConstraint allocates an empty pair table between two variables.
// Pairs are filled in position space via setPair during construction and
// the table is treated as frozen afterwards.
func newConstraint(v1, v2 int, name1, name2 string, d1, d2 *Domain) *Constraint {
	c := &Constraint{
		v1:    v1,
		v2:    v2,
		name1: name1,
		name2: name2,
		d1:    d1,
		d2:    d2,
		rows:  make([]*bitset.BitSet, d1.Size()),
		cols:  make([]*bitset.BitSet, d2.Size()),
	}
	for p1 := range c.rows {
		c.rows[p1] = bitset.New(uint(d2.Size()))
	}
	for p2 := range c.cols {
		c.cols[p2] = bitset.New(uint(d1.Size()))
	}
	return c
}

// setPair marks the position pair (p1, p2) as valid. Duplicate pairs are
// counted once.
func (c *Constraint) setPair(p1, p2 int) {
	if c.rows[p1].Test(uint(p2)) {
		return
	}
	c.rows[p1].Set(uint(p2))
	c.cols[p2].Set(uint(p1))
	c.pairCount++
}

// Variables returns the two variable names in stored order.
func (c *Constraint) Variables() (string, string) {
	return c.name1, c.name2
}

// PairCount returns the number of valid value pairs.
func (c *Constraint) PairCount() int {
	return c.pairCount
}

// Pairs reifies the valid-pair set, ordered by the position of the first
// coordinate, then the second. The result is freshly allocated.
func (c *Constraint) Pairs() []ValuePair {
	out := make([]ValuePair, 0, c.pairCount)
	for p1, row := range c.rows {
		for p2, ok := row.NextSet(0); ok; p2, ok = row.NextSet(p2 + 1) {
			out = append(out, ValuePair{
				A: c.d1.valueAt(p1),
				B: c.d2.valueAt(int(p2)),
			})
		}
	}
	return out
}

// AllowsValues reports whether the value pair (a, b) is a member of the
// valid-pair set. Values outside the respective domains are never members.
func (c *Constraint) AllowsValues(a, b Value) bool {
	p1, ok := c.positionIn(c.d1, a)
	if !ok {
		return false
	}
	p2, ok := c.positionIn(c.d2, b)
	if !ok {
		return false
	}
	return c.allowsPos(p1, p2)
}

func (c *Constraint) positionIn(d *Domain, v Value) (int, bool) {
	if v.IsTuple() != d.IsTuple() {
		return 0, false
	}
	if v.IsTuple() {
		return d.rowPosition(v.tuple)
	}
	return d.position(v.scalar)
}

// allowsPos tests the pair in position space.
func (c *Constraint) allowsPos(p1, p2 int) bool {
	return c.rows[p1].Test(uint(p2))
}

// isSelfLoop reports whether both ends reference the same variable, which
// happens when a caller names the same variable twice in one constraint.
func (c *Constraint) isSelfLoop() bool {
	return c.v1 == c.v2
}

// otherEnd returns the variable index at the opposite end from v. For a
// self-loop it returns v itself.
func (c *Constraint) otherEnd(v int) int {
	if v == c.v1 {
		return c.v2
	}
	return c.v1
}

// supportRow returns, for position p of variable from, the bitset of
// partner positions allowed at the other end. Callers must not mutate the
// result; self-loops have no single partner side and are handled with
// allowsPos instead.
func (c *Constraint) supportRow(from, p int) *bitset.BitSet {
	if from == c.v1 {
		return c.rows[p]
	}
	return c.cols[p]
}

// String returns a compact representation such as
// "Constraint(A, X1: 4 pairs)".
func (c *Constraint) String() string {
	return fmt.Sprintf("Constraint(%s, %s: %d pairs)", c.name1, c.name2, c.pairCount)
}
