// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interp

import (
	"golang.org/x/exp/slices"

	"github.com/sp1r00000/oyente/analysis"
	"github.com/sp1r00000/oyente/internal/cfgbuild"
)

// PathState is the per-path mutable state threaded through the explorer
// (spec.md §3): the operand stack, memory, the set of symbolic variable
// names minted on this path, the visited-block trail, and the opaque
// analysis bag. Invariant 4 of spec.md §8 requires that forking a path at
// a branch point deep-clones all of it, so that no two sibling paths ever
// alias the same Stack, Memory, or Analysis value.
type PathState struct {
	Stack    *Stack
	Memory   *Memory
	SymVars  []string
	Visited  []cfgbuild.Address
	Analysis analysis.Analysis
}

// NewPathState returns the initial PathState for a fresh run, with a
// freshly Init'd Analysis from hooks.
func NewPathState(hooks analysis.Hooks) *PathState {
	return &PathState{
		Stack:    NewStack(),
		Memory:   NewMemory(),
		Analysis: hooks.Init(),
	}
}

// Clone deep-copies ps so that forking at a JUMPI never lets one branch's
// subsequent mutation reach the other (spec.md §8 invariant 4).
func (ps *PathState) Clone() *PathState {
	return &PathState{
		Stack:    ps.Stack.Clone(),
		Memory:   ps.Memory.Clone(),
		SymVars:  slices.Clone(ps.SymVars),
		Visited:  slices.Clone(ps.Visited),
		Analysis: analysis.Clone(ps.Analysis),
	}
}

// MarkVisited appends addr to the visited trail.
func (ps *PathState) MarkVisited(addr cfgbuild.Address) {
	ps.Visited = append(ps.Visited, addr)
}

// AddSymVar records name as minted on this path.
func (ps *PathState) AddSymVar(name string) {
	ps.SymVars = append(ps.SymVars, name)
}
