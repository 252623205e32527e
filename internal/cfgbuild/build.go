// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package cfgbuild

import "sort"

// Build materializes the *Graph from Partition's tables: for each block
// start it slices the contiguous run of instructions in [start, end] into
// a BasicBlock, then wires static fall-through edges for every block whose
// kind is neither terminal nor unconditional (spec.md §4.2).
func Build(
	instructions map[Address]Instruction,
	blockEnds map[Address]Address,
	jumpTypes map[Address]Kind,
) *Graph {
	g := &Graph{
		Instructions: instructions,
		BlockEnds:    blockEnds,
		JumpTypes:    jumpTypes,
		Blocks:       make(map[Address]*BasicBlock, len(blockEnds)),
		Edges:        make(map[Address][]Address, len(blockEnds)),
	}

	sortedAddrs := sortedAddrKeys(instructions)

	starts := sortedAddrKeys(blockEnds)
	for _, start := range starts {
		end := blockEnds[start]
		block := &BasicBlock{Start: start, End: end, Kind: jumpTypes[start]}
		for _, addr := range sortedAddrs {
			if addr >= start && addr <= end {
				block.Instructions = append(block.Instructions, instructions[addr])
			}
		}
		g.Blocks[start] = block
		g.Edges[start] = nil
	}

	for i, start := range starts {
		kind := jumpTypes[start]
		if kind == KindTerminal || kind == KindUnconditional {
			continue
		}
		if i+1 >= len(starts) {
			continue
		}
		target := starts[i+1]
		g.AddEdge(start, target)
		fallsTo := target
		g.Blocks[start].FallsTo = &fallsTo
	}

	return g
}

func sortedAddrKeys[V any](m map[Address]V) []Address {
	keys := make([]Address, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
