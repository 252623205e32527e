// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package symvalue

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/sp1r00000/oyente/smt"
	"github.com/sp1r00000/oyente/symvalue/term"
)

// TestModOfConcretesLaw is algebraic law 6 of spec.md §8: for all
// concrete a, b with b != 0, MOD yields Concrete(a mod b).
func TestModOfConcretesLaw(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Uint64().Draw(rt, "a")
		b := rapid.Uint64Range(1, ^uint64(0)).Draw(rt, "b")

		got := Mod(smt.NewSolver(), ConcreteUint64(a), ConcreteUint64(b))
		want := new(uint256.Int).Mod(new(uint256.Int).SetUint64(a), new(uint256.Int).SetUint64(b))

		assert.True(t, got.IsConcrete())
		assert.True(t, got.Uint().Eq(want))
	})
}

// TestIsZeroLaw is algebraic law 7: PUSH a; ISZERO yields Concrete(1) iff
// a = 0.
func TestIsZeroLaw(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Uint64().Draw(rt, "a")
		got := IsZero(ConcreteUint64(a))
		if a == 0 {
			assert.True(t, got.EqualUint64(1))
		} else {
			assert.True(t, got.EqualUint64(0))
		}
	})
}

// TestNotInvolutionLaw is algebraic law 8: NOT(NOT(a)) == a on concretes.
func TestNotInvolutionLaw(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Uint64().Draw(rt, "a")
		v := ConcreteUint64(a)
		got := Not(Not(v))
		assert.True(t, got.EqualUint64(a))
	})
}

func TestModConcreteZeroDivisorShortCircuits(t *testing.T) {
	got := Mod(smt.NewSolver(), ConcreteUint64(7), ConcreteUint64(0))
	assert.True(t, got.EqualUint64(0))
}

// TestModSymbolicDivisorProvablyZero exercises spec.md §4.3's modular
// short-circuit: a symbolic divisor already known equal to zero under
// the current path condition forces the concrete result 0 without
// building a symbolic term.
func TestModSymbolicDivisorProvablyZero(t *testing.T) {
	solver := smt.NewSolver()
	solver.Add(term.Equal(term.Var("x"), 0))

	divisor := Symbolic(term.Var("x"))
	got := Mod(solver, ConcreteUint64(7), divisor)
	assert.True(t, got.EqualUint64(0))
}

// TestModSymbolicDivisorUnconstrainedStaysSymbolic: when the solver
// cannot prove the divisor is zero, MOD builds a symbolic term instead of
// short-circuiting.
func TestModSymbolicDivisorUnconstrainedStaysSymbolic(t *testing.T) {
	solver := smt.NewSolver()
	divisor := Symbolic(term.Var("x"))
	got := Mod(solver, ConcreteUint64(7), divisor)
	assert.True(t, got.IsSymbolic())
}
