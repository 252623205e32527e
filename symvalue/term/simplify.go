// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package term

// Simplify rewrites t into an equivalent, flatter form. It is the Go
// counterpart of the source's `simplify(branch_expression)` call (the
// source delegates to Z3's own simplifier; this port implements just
// enough rewriting — double-negation collapse and unwrapping of an
// ISZERO compared against a constant — for the reference solver in package smt to recognize the
// branch conditions the interpreter actually produces).
func Simplify(t *Term) *Term {
	if t == nil {
		return nil
	}
	switch t.Op {
	case OpBoolNot:
		inner := Simplify(t.Children[0])
		if inner.Op == OpBoolNot {
			return inner.Children[0]
		}
		return Un(OpBoolNot, inner)
	case OpEq:
		lhs := Simplify(t.Children[0])
		rhs := Simplify(t.Children[1])
		if isz, other, ok := isZeroEquality(lhs, rhs); ok {
			inner := Bin(OpEq, isz.Children[0], ConstUint64(0))
			if other.Value != nil && other.Value.Sign() == 0 {
				// IsZero(x) == 0  =>  x != 0
				return Un(OpBoolNot, inner)
			}
			// IsZero(x) == <nonzero>  =>  x == 0
			return inner
		}
		return Bin(OpEq, lhs, rhs)
	default:
		if len(t.Children) == 0 {
			return t
		}
		children := make([]*Term, len(t.Children))
		for i, c := range t.Children {
			children[i] = Simplify(c)
		}
		return &Term{Op: t.Op, Name: t.Name, Value: t.Value, Children: children}
	}
}

func isZeroEquality(lhs, rhs *Term) (isz, other *Term, ok bool) {
	if lhs.Op == OpIsZero && rhs.Op == OpConst {
		return lhs, rhs, true
	}
	if rhs.Op == OpIsZero && lhs.Op == OpConst {
		return rhs, lhs, true
	}
	return nil, nil, false
}

// NotEqual builds "t != k", simplified.
func NotEqual(t *Term, k uint64) *Term {
	return Simplify(Un(OpBoolNot, Bin(OpEq, t, ConstUint64(k))))
}

// Equal builds "t == k", simplified.
func Equal(t *Term, k uint64) *Term {
	return Simplify(Bin(OpEq, t, ConstUint64(k)))
}
