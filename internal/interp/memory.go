// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interp

import (
	"golang.org/x/exp/maps"

	"github.com/sp1r00000/oyente/namegen"
	"github.com/sp1r00000/oyente/symvalue"
	"github.com/sp1r00000/oyente/symvalue/term"
)

// Memory is the EVM memory of spec.md §3: a mapping from addresses to
// Values. Only concrete addresses are ever usable as map keys; a write
// through a symbolic address conservatively clears the whole map rather
// than attempt to alias-track it (spec.md §3, §4.4 MSTORE), which is
// also why the map below is keyed by uint64 rather than by Value.
type Memory struct {
	cells map[uint64]symvalue.Value
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{cells: make(map[uint64]symvalue.Value)}
}

// Load implements MLOAD: a concrete address hits the map or mints and
// remembers a fresh symbolic cell; a symbolic address mints a fresh
// symbolic value on every load without remembering it, since there is no
// concrete key to remember it under. fresh reports whether a new
// symbolic variable name was minted, so the caller can record it exactly
// once on the path's symbol-var list.
func (m *Memory) Load(addr symvalue.Value, gen namegen.Generator) (v symvalue.Value, fresh bool) {
	if addr.IsConcrete() {
		key := addr.Uint().Uint64()
		if cached, ok := m.cells[key]; ok {
			return cached, false
		}
		v = symvalue.Symbolic(term.Var(gen.MemVar(key)))
		m.cells[key] = v
		return v, true
	}
	return symvalue.Symbolic(term.Var(gen.MemVar(0))), true
}

// Store implements MSTORE: a concrete address overwrites exactly that
// cell; a symbolic address havocs the entire map, since the written
// cell cannot be identified among the existing concrete keys.
func (m *Memory) Store(addr, val symvalue.Value) {
	if addr.IsConcrete() {
		m.cells[addr.Uint().Uint64()] = val
		return
	}
	m.cells = make(map[uint64]symvalue.Value)
}

// Touched returns the sorted concrete addresses currently resident, for
// the analysis side-channel.
func (m *Memory) Touched() []uint64 {
	out := make([]uint64, 0, len(m.cells))
	for k := range m.cells {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Clone returns a copy that shares no backing map with m.
func (m *Memory) Clone() *Memory {
	return &Memory{cells: maps.Clone(m.cells)}
}
