// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package symvalue

import (
	"github.com/holiman/uint256"

	"github.com/sp1r00000/oyente/smt"
	"github.com/sp1r00000/oyente/symvalue/term"
)

func bothConcrete(a, b Value) bool { return a.IsConcrete() && b.IsConcrete() }

// Add, Mul, Sub, Div, Exp are the pure arithmetic operators of
// spec.md §4.3: concrete when both operands are concrete, else a
// symbolic term.
func Add(a, b Value) Value {
	if bothConcrete(a, b) {
		return Concrete(new(uint256.Int).Add(a.Uint(), b.Uint()))
	}
	return Symbolic(term.Bin(term.OpAdd, a.Term(), b.Term()))
}

func Mul(a, b Value) Value {
	if bothConcrete(a, b) {
		return Concrete(new(uint256.Int).Mul(a.Uint(), b.Uint()))
	}
	return Symbolic(term.Bin(term.OpMul, a.Term(), b.Term()))
}

func Sub(a, b Value) Value {
	if bothConcrete(a, b) {
		return Concrete(new(uint256.Int).Sub(a.Uint(), b.Uint()))
	}
	return Symbolic(term.Bin(term.OpSub, a.Term(), b.Term()))
}

func Div(a, b Value) Value {
	if bothConcrete(a, b) {
		return Concrete(new(uint256.Int).Div(a.Uint(), b.Uint()))
	}
	return Symbolic(term.Bin(term.OpDiv, a.Term(), b.Term()))
}

// Exp implements spec.md §9 open question 3: a symbolic operand can never
// be raised to a host integer power, so the symbolic case builds an
// uninterpreted OpPow term instead of calling uint256's Exp.
func Exp(base, exponent Value) Value {
	if bothConcrete(base, exponent) {
		return Concrete(new(uint256.Int).Exp(base.Uint(), exponent.Uint()))
	}
	return Symbolic(term.Bin(term.OpPow, base.Term(), exponent.Term()))
}

// modResult implements the shared shape of MOD/SMOD/ADDMOD/MULMOD from
// spec.md §4.3: a concrete zero divisor short-circuits to Concrete(0)
// without consulting the solver; a symbolic divisor is checked for
// provable-zero under the current path condition, short-circuiting to
// Concrete(0) only when the solver proves the divisor cannot be nonzero.
// combine is only ever evaluated concretely (when both operands it closes
// over are concrete); build produces the symbolic term otherwise.
func modResult(solver smt.Solver, divisor Value, combine func() *uint256.Int, build func() *term.Term) Value {
	if divisor.IsConcrete() {
		if divisor.IsZero() {
			return ConcreteUint64(0)
		}
		if combine != nil {
			return Concrete(combine())
		}
		return Symbolic(build())
	}

	release := smt.Frame(solver)
	defer release()
	solver.Add(term.NotEqual(divisor.Term(), 0))
	if solver.Check() == smt.Unsat {
		return ConcreteUint64(0)
	}
	return Symbolic(build())
}

// Mod is EVM MOD: dividend % divisor, unsigned.
func Mod(solver smt.Solver, a, b Value) Value {
	var combine func() *uint256.Int
	if a.IsConcrete() {
		combine = func() *uint256.Int { return new(uint256.Int).Mod(a.Uint(), b.Uint()) }
	}
	return modResult(solver, b, combine, func() *term.Term {
		return term.Bin(term.OpMod, a.Term(), b.Term())
	})
}

// Smod is EVM SMOD. Per spec.md §9 open question 2, the port keeps the
// source's unsigned modulus rather than implementing two's-complement
// signed remainder — see DESIGN.md for the resolution.
func Smod(solver smt.Solver, a, b Value) Value {
	return Mod(solver, a, b)
}

// AddMod is EVM ADDMOD: (a+b) % c.
func AddMod(solver smt.Solver, a, b, c Value) Value {
	var combine func() *uint256.Int
	if a.IsConcrete() && b.IsConcrete() {
		combine = func() *uint256.Int {
			sum := new(uint256.Int).Add(a.Uint(), b.Uint())
			return sum.Mod(sum, c.Uint())
		}
	}
	return modResult(solver, c, combine, func() *term.Term {
		return term.Bin(term.OpMod, term.Bin(term.OpAdd, a.Term(), b.Term()), c.Term())
	})
}

// MulMod is EVM MULMOD: (a*b) % c.
func MulMod(solver smt.Solver, a, b, c Value) Value {
	var combine func() *uint256.Int
	if a.IsConcrete() && b.IsConcrete() {
		combine = func() *uint256.Int {
			prod := new(uint256.Int).Mul(a.Uint(), b.Uint())
			return prod.Mod(prod, c.Uint())
		}
	}
	return modResult(solver, c, combine, func() *term.Term {
		return term.Bin(term.OpMod, term.Bin(term.OpMul, a.Term(), b.Term()), c.Term())
	})
}

func cmpResult(a, b Value, concreteLess func(x, y *uint256.Int) bool, op term.Op) Value {
	if bothConcrete(a, b) {
		if concreteLess(a.Uint(), b.Uint()) {
			return ConcreteUint64(1)
		}
		return ConcreteUint64(0)
	}
	return Symbolic(term.Bin(op, a.Term(), b.Term()))
}

// Lt is EVM LT (unsigned <).
func Lt(a, b Value) Value {
	return cmpResult(a, b, func(x, y *uint256.Int) bool { return x.Lt(y) }, term.OpLt)
}

// Gt is EVM GT (unsigned >).
func Gt(a, b Value) Value {
	return cmpResult(a, b, func(x, y *uint256.Int) bool { return x.Gt(y) }, term.OpGt)
}

// Slt is EVM SLT. Per spec.md §9 open question 1, signed comparisons are
// deliberately treated as unsigned, matching the source's Lt/Gt overload.
func Slt(a, b Value) Value { return Lt(a, b) }

// Sgt is EVM SGT, unsigned per open question 1.
func Sgt(a, b Value) Value { return Gt(a, b) }

// Eq is EVM EQ.
func Eq(a, b Value) Value {
	if bothConcrete(a, b) {
		if a.Uint().Eq(b.Uint()) {
			return ConcreteUint64(1)
		}
		return ConcreteUint64(0)
	}
	return Symbolic(term.Bin(term.OpEq, a.Term(), b.Term()))
}

// IsZero is EVM ISZERO.
func IsZero(a Value) Value {
	if a.IsConcrete() {
		if a.IsZero() {
			return ConcreteUint64(1)
		}
		return ConcreteUint64(0)
	}
	return Symbolic(term.Un(term.OpIsZero, a.Term()))
}

func bitwise(a, b Value, concrete func(x, y *uint256.Int) *uint256.Int, op term.Op) Value {
	if bothConcrete(a, b) {
		return Concrete(concrete(a.Uint(), b.Uint()))
	}
	return Symbolic(term.Bin(op, a.Term(), b.Term()))
}

// And is EVM AND.
func And(a, b Value) Value {
	return bitwise(a, b, func(x, y *uint256.Int) *uint256.Int { return new(uint256.Int).And(x, y) }, term.OpAnd)
}

// Or is EVM OR.
func Or(a, b Value) Value {
	return bitwise(a, b, func(x, y *uint256.Int) *uint256.Int { return new(uint256.Int).Or(x, y) }, term.OpOr)
}

// Xor is EVM XOR.
func Xor(a, b Value) Value {
	return bitwise(a, b, func(x, y *uint256.Int) *uint256.Int { return new(uint256.Int).Xor(x, y) }, term.OpXor)
}

// Not is EVM NOT: concrete "-1 - x" (two's-complement flip), i.e.
// bitwise complement over the 256-bit integer sort.
func Not(a Value) Value {
	if a.IsConcrete() {
		return Concrete(new(uint256.Int).Not(a.Uint()))
	}
	return Symbolic(term.Un(term.OpNot, a.Term()))
}
