// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplifyDoubleNegationCollapses(t *testing.T) {
	x := Var("x")
	doubled := Un(OpBoolNot, Un(OpBoolNot, x))
	assert.Equal(t, x, Simplify(doubled))
}

func TestSimplifyIsZeroEqualsZeroBecomesNotEqual(t *testing.T) {
	iz := Un(OpIsZero, Var("x"))
	formula := Bin(OpEq, iz, ConstUint64(0))
	got := Simplify(formula)
	assert.Equal(t, OpBoolNot, got.Op)
	assert.Equal(t, "(bnot (= x 0))", got.String())
}

func TestSimplifyIsZeroEqualsNonzeroBecomesEqual(t *testing.T) {
	iz := Un(OpIsZero, Var("x"))
	formula := Bin(OpEq, iz, ConstUint64(1))
	got := Simplify(formula)
	assert.Equal(t, "(= x 0)", got.String())
}

func TestNotEqualAndEqualHelpers(t *testing.T) {
	x := Var("x")
	assert.Equal(t, "(bnot (= x 0))", NotEqual(x, 0).String())
	assert.Equal(t, "(= x 7)", Equal(x, 7).String())
}
