// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package smt

import (
	"math/big"

	"github.com/sp1r00000/oyente/symvalue/term"
)

// literal is a normalized atomic constraint this reference solver can
// reason about: a variable compared for (in)equality against either a
// constant or another variable.
type literal struct {
	name    string
	equal   bool // true: name == rhs; false: name != rhs
	rhsVar  string
	rhsIsVar bool
	rhsConst *big.Int
}

// refSolver is the conservative reference implementation of Solver
// described in SPEC_FULL.md §4.8. It decides exactly the fragment of
// linear integer arithmetic the engine's own branch conditions and
// divisor-zero checks produce — equalities and disequalities between
// variables and constants — and reports Unknown (treated as Sat by the
// explorer, per spec.md §4.6) for anything richer.
type refSolver struct {
	frames [][]*term.Term
}

// NewSolver returns the reference Solver implementation.
func NewSolver() Solver {
	return &refSolver{frames: [][]*term.Term{nil}}
}

func (s *refSolver) Push() {
	s.frames = append(s.frames, nil)
}

func (s *refSolver) Pop() {
	if len(s.frames) == 1 {
		// Base frame: nothing to pop. A balanced caller never reaches
		// this, but popping past the base must not panic the explorer.
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *refSolver) Add(formula *term.Term) {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], formula)
}

func (s *refSolver) Check() Result {
	var literals []literal
	for _, frame := range s.frames {
		for _, f := range frame {
			if truth, ok := constantTruth(f, true); ok {
				if !truth {
					return Unsat
				}
				continue
			}
			lits, ok := flatten(f, true)
			if !ok {
				return Unknown
			}
			literals = append(literals, lits...)
		}
	}
	if contradiction(literals) {
		return Unsat
	}
	return Sat
}

// constantTruth recognizes a formula that reduces to a bare boolean
// constant under polarity positive — an OpConst literal, possibly
// wrapped in OpBoolNot — without going through the variable-literal
// machinery below. This lets JUMPI's concrete branch_expression (always
// Concrete(1) or Concrete(0), per spec.md §4.4) decide immediately
// instead of falling through to Unknown.
func constantTruth(f *term.Term, positive bool) (truth bool, ok bool) {
	switch f.Op {
	case term.OpBoolNot:
		return constantTruth(f.Children[0], !positive)
	case term.OpConst:
		nonzero := f.Value.Sign() != 0
		return nonzero == positive, true
	default:
		return false, false
	}
}

// flatten decomposes f (under polarity positive, or its negation under
// polarity negative) into the literal(s) it asserts, or reports ok=false
// when f is outside the decidable fragment.
func flatten(f *term.Term, positive bool) ([]literal, bool) {
	if f == nil {
		return nil, false
	}
	switch f.Op {
	case term.OpBoolNot:
		return flatten(f.Children[0], !positive)
	case term.OpEq:
		lhs, rhs := f.Children[0], f.Children[1]
		if lhs.Op != term.OpVar {
			lhs, rhs = rhs, lhs
		}
		if lhs.Op != term.OpVar {
			return nil, false
		}
		switch rhs.Op {
		case term.OpConst:
			return []literal{{name: lhs.Name, equal: positive, rhsConst: rhs.Value}}, true
		case term.OpVar:
			return []literal{{name: lhs.Name, equal: positive, rhsVar: rhs.Name, rhsIsVar: true}}, true
		default:
			return nil, false
		}
	case term.OpIsZero:
		operand := f.Children[0]
		if operand.Op != term.OpVar {
			return nil, false
		}
		return []literal{{name: operand.Name, equal: positive, rhsConst: big.NewInt(0)}}, true
	default:
		return nil, false
	}
}

// contradiction reports whether literals can never be simultaneously
// satisfied: a variable asserted equal to two distinct constants, equal
// and not-equal to the same constant, equal to another variable when the
// two are pinned to distinct constants, or not-equal to another variable
// when the two are pinned to the same constant.
func contradiction(literals []literal) bool {
	eqConst := map[string]*big.Int{}
	neConst := map[string][]*big.Int{}

	for _, l := range literals {
		if l.rhsIsVar {
			continue // variable-to-variable constraints resolved in the second pass below
		}
		if l.equal {
			if existing, ok := eqConst[l.name]; ok && existing.Cmp(l.rhsConst) != 0 {
				return true
			}
			eqConst[l.name] = l.rhsConst
			for _, banned := range neConst[l.name] {
				if banned.Cmp(l.rhsConst) == 0 {
					return true
				}
			}
		} else {
			if existing, ok := eqConst[l.name]; ok && existing.Cmp(l.rhsConst) == 0 {
				return true
			}
			neConst[l.name] = append(neConst[l.name], l.rhsConst)
		}
	}

	for _, l := range literals {
		if !l.rhsIsVar {
			continue
		}
		a, aok := eqConst[l.name]
		b, bok := eqConst[l.rhsVar]
		if !aok || !bok {
			continue
		}
		same := a.Cmp(b) == 0
		if l.equal && !same {
			return true
		}
		if !l.equal && same {
			return true
		}
	}

	return false
}
