// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package smt is the thin port-of-call (C7) around an SMT solver: push,
// pop, add, check. The concrete decision procedure is an external
// collaborator per spec.md §1 — this package defines the interface the
// rest of the engine programs against, plus a conservative reference
// implementation (NewSolver) used by tests and the default CLI wiring,
// since no SMT binding ships in this corpus.
package smt

import "github.com/sp1r00000/oyente/symvalue/term"

// Result is the three-valued outcome of Check.
type Result int

const (
	Sat Result = iota
	Unsat
	Unknown
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Solver is the minimal SMT collaborator interface spec.md §4.6 requires.
// Implementations must make Push/Pop symmetric: the assertion stack depth
// after a balanced Push/.../Pop sequence must equal the depth before it
// (spec.md §5's assertion-stack invariant).
type Solver interface {
	Push()
	Pop()
	Add(formula *term.Term)
	Check() Result
}

// Frame acquires a Push()'d scope on s and returns a release func that
// pops it. Callers defer the release so every exit path — normal return,
// early return, or panic — leaves the solver's frame stack balanced, per
// spec.md §5 ("release on every exit path is mandatory").
func Frame(s Solver) func() {
	s.Push()
	return s.Pop
}
