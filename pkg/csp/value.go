// Package csp provides finite-domain constraint satisfaction solving.
// This file defines Value, the reified form of a single domain element:
// an integer for primary variables, an integer tuple for encoding variables.
package csp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is one admissible value of a variable. Primary variables hold
// integer values; encoding variables hold fixed-length integer tuples, one
// per valid combination of the variables they encode. The zero Value is the
// integer 0.
type Value struct {
	tuple   []int
	scalar  int
	isTuple bool
}

// IntValue returns a scalar Value.
func IntValue(v int) Value {
	return Value{scalar: v}
}

// TupleValue returns a tuple Value. The slice is copied.
func TupleValue(t []int) Value {
	return Value{tuple: copyInts(t), isTuple: true}
}

// IsTuple reports whether the value is an integer tuple rather than a
// single integer.
func (v Value) IsTuple() bool {
	return v.isTuple
}

// Int returns the scalar value. It panics when called on a tuple value;
// check IsTuple first when the kind is not known statically.
func (v Value) Int() int {
	if v.isTuple {
		panic("csp: Int called on tuple value")
	}
	return v.scalar
}

// Tuple returns a copy of the tuple value. It panics when called on a
// scalar value.
func (v Value) Tuple() []int {
	if !v.isTuple {
		panic("csp: Tuple called on scalar value")
	}
	return copyInts(v.tuple)
}

// Equal checks structural equality of two values.
func (v Value) Equal(other Value) bool {
	if v.isTuple != other.isTuple {
		return false
	}
	if !v.isTuple {
		return v.scalar == other.scalar
	}
	return equalInts(v.tuple, other.tuple)
}

// String returns a human-readable representation: "3" or "(1 2 3)".
func (v Value) String() string {
	if !v.isTuple {
		return strconv.Itoa(v.scalar)
	}
	parts := make([]string, len(v.tuple))
	for i, e := range v.tuple {
		parts[i] = strconv.Itoa(e)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// ValuePair is one entry of a constraint's valid-pair set, reified in the
// same order as the constraint's variable pair.
type ValuePair struct {
	A Value
	B Value
}

// String returns a human-readable representation: "(1, (1 2 3))".
func (p ValuePair) String() string {
	return fmt.Sprintf("(%s, %s)", p.A, p.B)
}

func copyInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortTuples orders a tuple set lexicographically in place.
func sortTuples(rows [][]int) {
	sort.Slice(rows, func(i, j int) bool {
		return compareTuples(rows[i], rows[j]) < 0
	})
}

// compareTuples orders fixed-length integer tuples lexicographically.
// Shorter tuples sort before longer ones sharing a prefix.
func compareTuples(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
