// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package analysis is the per-instruction fact-aggregation side-channel
// (spec.md §3/§6): opaque to the core, which only calls Init/Update/
// Display. This is the reference implementation the CLI wires by default.
package analysis

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/maps"
)

// Hooks is the collaborator interface the interpreter (C5) and explorer
// (C6) call: Init at path start, Update per instruction, Display at path
// termination.
type Hooks interface {
	Init() Analysis
	Update(a *Analysis, mnemonic string, stackDepth int, touchedMem []uint64)
	Display(a Analysis) string
}

// Analysis is the opaque per-path fact bag. The fields are unexported: the
// core never inspects them, only Hooks methods do.
type Analysis struct {
	opcodeCounts  map[string]int
	touchedMemory mapset.Set[uint64]
	instructions  int
}

// reference is the default Hooks implementation: it counts instructions by
// mnemonic and tracks the set of concrete memory cells touched, mirroring
// the kind of report print_state/display_analysis produced in the source.
type reference struct{}

// New returns the default Hooks implementation.
func New() Hooks {
	return reference{}
}

func (reference) Init() Analysis {
	return Analysis{
		opcodeCounts:  make(map[string]int),
		touchedMemory: mapset.NewThreadUnsafeSet[uint64](),
	}
}

func (reference) Update(a *Analysis, mnemonic string, stackDepth int, touchedMem []uint64) {
	a.opcodeCounts[mnemonic]++
	a.instructions++
	for _, addr := range touchedMem {
		a.touchedMemory.Add(addr)
	}
}

func (reference) Display(a Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "instructions executed: %d\n", a.instructions)
	fmt.Fprintf(&b, "memory cells touched: %d\n", a.touchedMemory.Cardinality())
	fmt.Fprintf(&b, "opcode histogram:\n")
	for _, mnemonic := range sortedKeys(a.opcodeCounts) {
		fmt.Fprintf(&b, "  %-12s %d\n", mnemonic, a.opcodeCounts[mnemonic])
	}
	return b.String()
}

// Clone deep-copies a, so that forking a PathState (spec.md §3/§5) never
// lets one branch's Update calls leak into a sibling's.
func Clone(a Analysis) Analysis {
	return Analysis{
		opcodeCounts:  maps.Clone(a.opcodeCounts),
		touchedMemory: a.touchedMemory.Clone(),
		instructions:  a.instructions,
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
