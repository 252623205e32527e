// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package symvalue is the value domain (C4): a tagged Value unifying
// concrete machine integers and opaque symbolic SMT terms, with the
// arithmetic/logical operators of spec.md §4.3 lifted to mixed operands.
package symvalue

import (
	"github.com/holiman/uint256"

	"github.com/sp1r00000/oyente/symvalue/term"
)

// Kind tags a Value as concrete or symbolic.
type Kind int

const (
	KindConcrete Kind = iota
	KindSymbolic
)

// Value is the sum type "Concrete(integer) | Symbolic(term)" of
// spec.md §3. A struct with both fields is used instead of an interface:
// the hot path (pure concrete arithmetic) never allocates a boxed
// interface value, only a *uint256.Int.
type Value struct {
	kind Kind
	c    *uint256.Int
	sym  *term.Term
}

// Concrete wraps a *uint256.Int as a concrete Value.
func Concrete(v *uint256.Int) Value {
	return Value{kind: KindConcrete, c: v}
}

// ConcreteUint64 wraps a uint64 as a concrete Value.
func ConcreteUint64(v uint64) Value {
	return Concrete(new(uint256.Int).SetUint64(v))
}

// Symbolic wraps a term.Term as a symbolic Value.
func Symbolic(t *term.Term) Value {
	return Value{kind: KindSymbolic, sym: t}
}

// IsConcrete reports whether v carries a known integer.
func (v Value) IsConcrete() bool { return v.kind == KindConcrete }

// IsSymbolic reports whether v carries an opaque term.
func (v Value) IsSymbolic() bool { return v.kind == KindSymbolic }

// Uint returns the concrete integer. Calling it on a symbolic Value is a
// programming error in the interpreter and returns the zero value.
func (v Value) Uint() *uint256.Int {
	if v.kind != KindConcrete {
		return new(uint256.Int)
	}
	return v.c
}

// Term returns the symbolic term, or a Const wrapping the integer when v
// is concrete — useful when an operator needs to hand both operands to
// the solver uniformly regardless of kind.
func (v Value) Term() *term.Term {
	if v.kind == KindSymbolic {
		return v.sym
	}
	return term.Const(v.c.ToBig())
}

// String renders a Value for logging.
func (v Value) String() string {
	if v.kind == KindConcrete {
		return v.c.Hex()
	}
	return v.sym.String()
}

// IsZero reports whether a concrete Value equals zero. Only meaningful
// when IsConcrete() is true.
func (v Value) IsZero() bool {
	return v.kind == KindConcrete && v.c.IsZero()
}

// EqualUint64 reports whether v is Concrete and equal to n.
func (v Value) EqualUint64(n uint64) bool {
	return v.kind == KindConcrete && v.c.Eq(new(uint256.Int).SetUint64(n))
}
