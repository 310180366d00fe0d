// Package csp provides finite-domain constraint satisfaction solving.
// This file implements the hidden-variable encoding that rewrites an n-ary
// constraint into the binary-only representation the solver works on.
package csp

import (
	"fmt"
	"strconv"

	"github.com/yjourdin/projet-solveur/logger"
)

// encodeLocked rewrites a validated n-ary tuple set over the given
// variables into binary form. It mints a fresh encoding variable whose
// domain is exactly the tuple set, then adds one binary constraint per
// position i pairing variables[i] with the encoding variable through the
// valid pairs {(t[i], t) : t in tuples}.
//
// The constraint at position i forces any consistent value of the encoding
// variable to agree with variables[i] on coordinate i, so once all k
// generated constraints hold for a single tuple value, the original
// variables jointly form a tuple of the original relation — and every
// tuple of the relation extends to such an assignment. That equivalence is
// the contract the whole encoding rests on.
//
// Rows must already be validated against the variables' domains. An empty
// tuple set is legal: the encoding variable's domain is empty and the
// problem becomes unsatisfiable at solve time, never at build time. The
// transformer performs no pruning.
//
// Encoding names are minted deterministically as "X1", "X2", … in creation
// order. A collision with a declared variable name is a programmer error
// and panics; nothing validates user names against the reserved pattern,
// so declaring literal "X1" and then adding an n-ary constraint is the one
// way to reach it.
func (c *CSP) encodeLocked(idxs []int, rows [][]int) {
	c.encodingCount++
	name := "X" + strconv.Itoa(c.encodingCount)
	if _, exists := c.index[name]; exists {
		panic(fmt.Sprintf("csp: encoding variable %q collides with a declared variable", name))
	}
	eIdx := c.registerLocked(name, newTupleDomain(rows), false)
	c.encodings[eIdx] = copyInts(idxs)

	eDom := c.domains[eIdx]
	for i, vIdx := range idxs {
		con := newConstraint(vIdx, eIdx, c.names[vIdx], name, c.domains[vIdx], eDom)
		for rowPos, row := range eDom.rows {
			p, _ := c.domains[vIdx].position(row[i])
			con.setPair(p, rowPos)
		}
		c.appendConstraintLocked(con)
	}
	logger.Logger().Debug().
		Str("encoding", name).
		Int("arity", len(idxs)).
		Int("tuples", eDom.Size()).
		Msg("n-ary constraint encoded")
}
