package csp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valueCmp lets go-cmp compare reified values and pairs structurally.
var valueCmp = cmp.Comparer(func(a, b Value) bool { return a.Equal(b) })

func TestAddVariable(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariable("A", DomainOf(3, 1, 2, 2)))

	dom, err := problem.Domain("A")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, dom.Values(), "domain is sorted and deduplicated")
	assert.Equal(t, 3, dom.Size())
	assert.False(t, dom.IsTuple())
}

func TestAddVariableDuplicateRejected(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariable("A", DomainOf(1)))

	err := problem.AddVariable("A", DomainOf(1, 2))
	require.ErrorIs(t, err, ErrDuplicateVariable)

	// The original domain survives the rejected re-declaration.
	dom, err := problem.Domain("A")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, dom.Values())
}

func TestAddVariablesFailFast(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariable("B", DomainOf(1)))

	err := problem.AddVariables([]string{"A", "B", "C"}, DomainOf(1, 2))
	require.ErrorIs(t, err, ErrDuplicateVariable)
	assert.Equal(t, []string{"B"}, problem.Variables(), "no name from the failed call is registered")

	err = problem.AddVariables([]string{"C", "C"}, DomainOf(1, 2))
	require.ErrorIs(t, err, ErrDuplicateVariable)
	assert.Equal(t, []string{"B"}, problem.Variables())
}

func TestDomainUnknownVariable(t *testing.T) {
	problem := New()
	_, err := problem.Domain("missing")
	require.ErrorIs(t, err, ErrUnknownVariable)

	_, err = problem.ConstraintsOn("missing")
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestAddConstraintValidation(t *testing.T) {
	build := func(t *testing.T) *CSP {
		problem := New()
		require.NoError(t, problem.AddVariables([]string{"A", "B", "C"}, DomainOf(1, 2)))
		return problem
	}

	t.Run("fewer than two variables", func(t *testing.T) {
		problem := build(t)
		err := problem.AddConstraint([]string{"A"}, Tuples([]int{1}))
		require.ErrorIs(t, err, ErrArityMismatch)
	})

	t.Run("unknown variable", func(t *testing.T) {
		problem := build(t)
		err := problem.AddConstraint([]string{"A", "Z"}, Tuples([]int{1, 1}))
		require.ErrorIs(t, err, ErrUnknownVariable)
	})

	t.Run("unknown variable checked before tuple shape", func(t *testing.T) {
		problem := build(t)
		err := problem.AddConstraint([]string{"A", "Z"}, Tuples([]int{1, 1, 1}))
		require.ErrorIs(t, err, ErrUnknownVariable)
	})

	t.Run("tuple length mismatch", func(t *testing.T) {
		problem := build(t)
		err := problem.AddConstraint([]string{"A", "B"}, Tuples([]int{1, 1}, []int{1}))
		require.ErrorIs(t, err, ErrArityMismatch)
	})

	t.Run("nil spec", func(t *testing.T) {
		problem := build(t)
		err := problem.AddConstraint([]string{"A", "B"}, nil)
		require.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("nil predicate", func(t *testing.T) {
		problem := build(t)
		err := problem.AddConstraint([]string{"A", "B"}, Predicate(nil))
		require.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("value outside domain", func(t *testing.T) {
		problem := build(t)
		err := problem.AddConstraint([]string{"A", "B"}, Tuples([]int{1, 9}))
		require.ErrorIs(t, err, ErrDomainViolation)
	})

	t.Run("encoding variable not usable in constraints", func(t *testing.T) {
		problem := build(t)
		require.NoError(t, problem.AddConstraint([]string{"A", "B", "C"},
			Tuples([]int{1, 1, 1})))
		err := problem.AddConstraint([]string{"A", "X1"}, Tuples([]int{1, 1}))
		require.ErrorIs(t, err, ErrUnknownVariable)
	})
}

func TestAddConstraintFailureMutatesNothing(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariables([]string{"A", "B", "C"}, DomainOf(1, 2)))

	err := problem.AddConstraint([]string{"A", "B", "C"}, Tuples([]int{1, 1, 9}))
	require.ErrorIs(t, err, ErrDomainViolation)

	assert.Empty(t, problem.Constraints())
	assert.Equal(t, []string{"A", "B", "C"}, problem.Variables(), "no encoding variable was minted")
}

func TestAddConstraintBinaryDirect(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariables([]string{"A", "B"}, DomainOf(1, 2)))
	require.NoError(t, problem.AddConstraint([]string{"A", "B"},
		Tuples([]int{1, 2}, []int{2, 1})))

	assert.Len(t, problem.Constraints(), 1, "arity 2 is stored directly")
	assert.Equal(t, []string{"A", "B"}, problem.Variables(), "no encoding variable for arity 2")
}

func TestFunctionalMatchesExtensional(t *testing.T) {
	buildVars := func(t *testing.T) *CSP {
		problem := New()
		require.NoError(t, problem.AddVariables([]string{"A", "B", "C"}, DomainOf(1, 2, 3)))
		return problem
	}

	extensional := buildVars(t)
	rows := [][]int{{1, 2, 3}, {2, 3, 1}, {3, 1, 2}, {1, 3, 2}, {2, 1, 3}, {3, 2, 1}}
	require.NoError(t, extensional.AddConstraint([]string{"A", "B", "C"}, Tuples(rows...)))

	functional := buildVars(t)
	require.NoError(t, functional.AddConstraint([]string{"A", "B", "C"},
		Predicate(func(v ...int) bool {
			return v[0] != v[1] && v[1] != v[2] && v[0] != v[2]
		})))

	extCons := extensional.Constraints()
	funCons := functional.Constraints()
	require.Equal(t, len(extCons), len(funCons))
	for i := range extCons {
		e1, e2 := extCons[i].Variables()
		f1, f2 := funCons[i].Variables()
		assert.Equal(t, e1, f1)
		assert.Equal(t, e2, f2)
		if diff := cmp.Diff(extCons[i].Pairs(), funCons[i].Pairs(), valueCmp); diff != "" {
			t.Errorf("constraint %d pair sets differ (-extensional +functional):\n%s", i, diff)
		}
	}

	extDom, err := extensional.Domain("X1")
	require.NoError(t, err)
	funDom, err := functional.Domain("X1")
	require.NoError(t, err)
	assert.Equal(t, extDom.Rows(), funDom.Rows())
}

func TestConstraintsOn(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariables([]string{"A", "B", "C"}, DomainOf(1, 2, 3)))
	require.NoError(t, problem.Diff("A", "B", "C"))

	cons, err := problem.ConstraintsOn("A")
	require.NoError(t, err)
	assert.Len(t, cons, 2, "A appears in (A,B) and (A,C)")

	cons, err = problem.ConstraintsOn("B")
	require.NoError(t, err)
	assert.Len(t, cons, 2)
}

func TestVerify(t *testing.T) {
	problem := New()
	require.NoError(t, problem.AddVariables([]string{"A", "B", "C"}, DomainOf(1, 2, 3)))
	require.NoError(t, problem.AddConstraint([]string{"A", "B", "C"},
		Predicate(func(v ...int) bool { return v[0]+v[1]+v[2] == 6 })))

	assert.True(t, problem.Verify(Assignment{"A": 1, "B": 2, "C": 3}))
	assert.True(t, problem.Verify(Assignment{"A": 2, "B": 2, "C": 2}))
	assert.False(t, problem.Verify(Assignment{"A": 1, "B": 1, "C": 3}), "sum is 5")
	assert.False(t, problem.Verify(Assignment{"A": 1, "B": 2}), "incomplete assignment")
	assert.False(t, problem.Verify(Assignment{"A": 1, "B": 2, "C": 9}), "out-of-domain value")
}
