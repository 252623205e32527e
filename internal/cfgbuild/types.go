// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package cfgbuild partitions a disassembly token stream into basic blocks
// (C2) and materializes the control-flow graph from the resulting tables
// (C3). It owns the CfgContext of spec.md §9: all tables live on a single
// *Graph value threaded by the caller, never as package-level state.
package cfgbuild

import (
	"fmt"

	"github.com/sp1r00000/oyente/symvalue"
)

// Address identifies a bytecode offset; it keys the instruction table and
// the block table. Signed so an unresolved dynamic jump target can be
// represented as the sentinel -1 (spec.md §4.4, JUMP/JUMPI) without a
// separate "resolved" flag threaded everywhere.
type Address = int64

// UnresolvedTarget is the sentinel JumpTarget value C5 writes when a
// JUMP/JUMPI target cannot be concretised. C6 treats it as a dead end.
const UnresolvedTarget Address = -1

// Instruction is the disassembly line stored verbatim at its address, e.g.
// "PUSH1 2a" or "JUMPDEST". Mnemonic and Operand split it lazily so the
// interpreter can work with the same textual shape the source's
// str.split(instr, ' ') did.
type Instruction string

// Mnemonic returns the instruction's opcode name.
func (i Instruction) Mnemonic() string {
	for idx := 0; idx < len(i); idx++ {
		if i[idx] == ' ' {
			return string(i[:idx])
		}
	}
	return string(i)
}

// Operand returns the text after the mnemonic (the immediate, for PUSH)
// as stored, and whether one is present.
func (i Instruction) Operand() (string, bool) {
	for idx := 0; idx < len(i); idx++ {
		if i[idx] == ' ' {
			rest := string(i[idx+1:])
			if rest == "" {
				return "", false
			}
			return rest, true
		}
	}
	return "", false
}

// Kind classifies a basic block's terminator.
type Kind int

const (
	KindTerminal Kind = iota
	KindUnconditional
	KindConditional
	KindFallsTo
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindUnconditional:
		return "unconditional"
	case KindConditional:
		return "conditional"
	case KindFallsTo:
		return "falls_to"
	default:
		return "unknown"
	}
}

// BasicBlock is a maximal straight-line instruction run with a single
// entry and a single exit. JumpTarget and BranchExpr start unset and are
// written by the interpreter (C5) when it runs the block's JUMP/JUMPI.
// FallsTo is set by Build for every block that is neither terminal nor
// unconditional and has a successor block.
type BasicBlock struct {
	Start, End   Address
	Instructions []Instruction
	Kind         Kind

	JumpTarget *Address
	FallsTo    *Address
	BranchExpr *symvalue.Value
}

// Graph is the CfgContext: the full set of process-wide tables built once
// by Partition/Build and then threaded by pointer into the interpreter and
// explorer, which may grow Edges and individual blocks' JumpTarget as
// dynamic jumps resolve.
type Graph struct {
	Instructions map[Address]Instruction
	BlockEnds    map[Address]Address
	JumpTypes    map[Address]Kind
	Blocks       map[Address]*BasicBlock
	Edges        map[Address][]Address
}

// AddEdge appends target to from's successor list if not already present,
// preserving invariant 5 of spec.md §8 (edges[k] contains no duplicates).
func (g *Graph) AddEdge(from, target Address) {
	for _, e := range g.Edges[from] {
		if e == target {
			return
		}
	}
	g.Edges[from] = append(g.Edges[from], target)
}

// ParseError is fatal per spec.md §7: a malformed address token aborts the
// whole run.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: malformed address %q", e.Line, e.Text)
}
