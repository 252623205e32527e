// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package interp is the instruction interpreter (C5): the per-opcode
// transfer function over a PathState. It is driven one instruction at a
// time by the path explorer (C6), which owns the DFS, the solver push/pop
// discipline around JUMPI, and the CFG tables' append-only growth.
package interp

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/sp1r00000/oyente/analysis"
	"github.com/sp1r00000/oyente/internal/cfgbuild"
	"github.com/sp1r00000/oyente/namegen"
	"github.com/sp1r00000/oyente/smt"
	"github.com/sp1r00000/oyente/symvalue"
	"github.com/sp1r00000/oyente/symvalue/term"
)

// Signal tells the explorer what kind of control transfer, if any, an
// instruction caused.
type Signal int

const (
	// SigNone: ordinary instruction, continue to the next one in the block.
	SigNone Signal = iota
	// SigHalt: STOP, RETURN or SUICIDE. The path ends here.
	SigHalt
	// SigJump: unconditional JUMP. Target is the resolved destination, or
	// cfgbuild.UnresolvedTarget if the popped address was symbolic.
	SigJump
	// SigBranch: JUMPI. Target is the jump-taken destination (or
	// UnresolvedTarget); the block's BranchExpr has been written for the
	// explorer to assert/negate against the solver.
	SigBranch
)

// StepResult is the outcome of executing one instruction.
type StepResult struct {
	Signal Signal
	Target cfgbuild.Address
}

// Step executes one instruction against ps, then calls hooks.Update with
// the stack depth from before the transfer and the concrete memory
// addresses the instruction touched, and returns the control signal the
// explorer must act on. g and blockAddr are only consulted by JUMP/JUMPI,
// which record the resolved jump_target/branch_expression onto the
// current block (overwriting any value from an earlier execution of that
// block) and grow g.Edges, which is append-only.
func Step(
	g *cfgbuild.Graph,
	blockAddr cfgbuild.Address,
	instr cfgbuild.Instruction,
	ps *PathState,
	solver smt.Solver,
	gen namegen.Generator,
	hooks analysis.Hooks,
) (StepResult, error) {
	mnemonic := instr.Mnemonic()
	preDepth := ps.Stack.Len()
	var touched []uint64

	result, err := step(g, blockAddr, mnemonic, instr, ps, solver, gen, &touched)
	hooks.Update(&ps.Analysis, mnemonic, preDepth, touched)
	return result, err
}

func step(
	g *cfgbuild.Graph,
	blockAddr cfgbuild.Address,
	mnemonic string,
	instr cfgbuild.Instruction,
	ps *PathState,
	solver smt.Solver,
	gen namegen.Generator,
	touched *[]uint64,
) (StepResult, error) {
	switch {
	case mnemonic == "STOP" || mnemonic == "SUICIDE":
		return StepResult{Signal: SigHalt}, nil

	case mnemonic == "RETURN":
		if _, err := ps.Stack.Pop(mnemonic); err != nil {
			return StepResult{}, err
		}
		if _, err := ps.Stack.Pop(mnemonic); err != nil {
			return StepResult{}, err
		}
		return StepResult{Signal: SigHalt}, nil

	case mnemonic == "JUMPDEST":
		return StepResult{}, nil

	case mnemonic == "POP":
		_, err := ps.Stack.Pop(mnemonic)
		return StepResult{}, err

	case mnemonic == "JUMP":
		dest, err := ps.Stack.Pop(mnemonic)
		if err != nil {
			return StepResult{}, err
		}
		target := resolveTarget(dest)
		writeJump(g, blockAddr, target)
		return StepResult{Signal: SigJump, Target: target}, nil

	case mnemonic == "JUMPI":
		dest, err := ps.Stack.Pop(mnemonic)
		if err != nil {
			return StepResult{}, err
		}
		flag, err := ps.Stack.Pop(mnemonic)
		if err != nil {
			return StepResult{}, err
		}
		target := resolveTarget(dest)
		writeJump(g, blockAddr, target)
		writeBranchExpr(g, blockAddr, flag)
		return StepResult{Signal: SigBranch, Target: target}, nil

	case mnemonic == "MLOAD":
		addr, err := ps.Stack.Pop(mnemonic)
		if err != nil {
			return StepResult{}, err
		}
		v, fresh := ps.Memory.Load(addr, gen)
		if addr.IsConcrete() {
			*touched = append(*touched, addr.Uint().Uint64())
		}
		if fresh {
			ps.AddSymVar(v.Term().Name)
		}
		ps.Stack.Push(v)
		return StepResult{}, nil

	case mnemonic == "MSTORE":
		addr, err := ps.Stack.Pop(mnemonic)
		if err != nil {
			return StepResult{}, err
		}
		val, err := ps.Stack.Pop(mnemonic)
		if err != nil {
			return StepResult{}, err
		}
		ps.Memory.Store(addr, val)
		if addr.IsConcrete() {
			*touched = append(*touched, addr.Uint().Uint64())
		}
		return StepResult{}, nil

	case mnemonic == "CALLDATALOAD":
		pos, err := ps.Stack.Pop(mnemonic)
		if err != nil {
			return StepResult{}, err
		}
		name := gen.DataVar(pos.Uint().Uint64())
		v := symvalue.Symbolic(term.Var(name))
		ps.AddSymVar(name)
		ps.Stack.Push(v)
		return StepResult{}, nil

	case mnemonic == "CALLDATASIZE":
		name := gen.DataSize()
		v := symvalue.Symbolic(term.Var(name))
		ps.AddSymVar(name)
		ps.Stack.Push(v)
		return StepResult{}, nil

	case strings.HasPrefix(mnemonic, "PUSH"):
		return StepResult{}, pushImmediate(ps, mnemonic, instr)

	case strings.HasPrefix(mnemonic, "DUP"):
		n, perr := strconv.Atoi(mnemonic[3:])
		if perr != nil {
			return StepResult{}, NewUnknownOpcodeError(mnemonic)
		}
		return StepResult{}, ps.Stack.Dup(mnemonic, n)

	case strings.HasPrefix(mnemonic, "SWAP"):
		n, perr := strconv.Atoi(mnemonic[4:])
		if perr != nil {
			return StepResult{}, NewUnknownOpcodeError(mnemonic)
		}
		return StepResult{}, ps.Stack.Swap(mnemonic, n)

	case mnemonic == "SHA3" || mnemonic == "SIGNEXTEND" || mnemonic == "BYTE":
		return StepResult{}, NewNotImplementedError(mnemonic)

	default:
		return StepResult{}, arithmetic(ps, solver, mnemonic)
	}
}

// arithmetic dispatches the C4 value-domain operators, returning
// UnknownOpcodeError when mnemonic matches none of them.
func arithmetic(ps *PathState, solver smt.Solver, mnemonic string) error {
	pop1 := func() (symvalue.Value, error) { return ps.Stack.Pop(mnemonic) }
	pop2 := func() (a, b symvalue.Value, err error) {
		if a, err = pop1(); err != nil {
			return
		}
		b, err = pop1()
		return
	}
	pop3 := func() (a, b, c symvalue.Value, err error) {
		if a, b, err = pop2(); err != nil {
			return
		}
		c, err = pop1()
		return
	}

	switch mnemonic {
	case "ADD":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Add(a, b))
	case "MUL":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Mul(a, b))
	case "SUB":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Sub(a, b))
	case "DIV":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Div(a, b))
	case "EXP":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Exp(a, b))
	case "MOD":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Mod(solver, a, b))
	case "SMOD":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Smod(solver, a, b))
	case "ADDMOD":
		a, b, c, err := pop3()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.AddMod(solver, a, b, c))
	case "MULMOD":
		a, b, c, err := pop3()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.MulMod(solver, a, b, c))
	case "LT":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Lt(a, b))
	case "GT":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Gt(a, b))
	case "SLT":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Slt(a, b))
	case "SGT":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Sgt(a, b))
	case "EQ":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Eq(a, b))
	case "ISZERO":
		a, err := pop1()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.IsZero(a))
	case "AND":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.And(a, b))
	case "OR":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Or(a, b))
	case "XOR":
		a, b, err := pop2()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Xor(a, b))
	case "NOT":
		a, err := pop1()
		if err != nil {
			return err
		}
		ps.Stack.Push(symvalue.Not(a))
	default:
		return NewUnknownOpcodeError(mnemonic)
	}
	return nil
}

// pushImmediate parses the hex immediate of a PUSH* instruction and
// pushes it as a Concrete value. The partitioner may have joined a
// multi-token immediate with internal spaces (spec.md §4.1, waitForPush);
// those are stripped before parsing.
func pushImmediate(ps *PathState, mnemonic string, instr cfgbuild.Instruction) error {
	operand, ok := instr.Operand()
	if !ok {
		operand = "0"
	}
	operand = strings.ReplaceAll(operand, " ", "")
	if operand == "" {
		operand = "0"
	}
	v, err := parseUint256Hex(operand)
	if err != nil {
		return NewUnknownOpcodeError(mnemonic)
	}
	ps.Stack.Push(symvalue.Concrete(v))
	return nil
}

// resolveTarget converts a popped jump-destination Value into a
// cfgbuild.Address, or the UnresolvedTarget sentinel when it is symbolic
// (spec.md §4.4: "the path continues with the sentinel target").
func resolveTarget(dest symvalue.Value) cfgbuild.Address {
	if !dest.IsConcrete() {
		return cfgbuild.UnresolvedTarget
	}
	return cfgbuild.Address(dest.Uint().Uint64())
}

// writeJump records target as the current block's jump_target, replacing
// any earlier value, and adds a resolved target to the edge table
// (append-only, no duplicates).
func writeJump(g *cfgbuild.Graph, blockAddr cfgbuild.Address, target cfgbuild.Address) {
	block := g.Blocks[blockAddr]
	if block == nil {
		return
	}
	t := target
	block.JumpTarget = &t
	if target != cfgbuild.UnresolvedTarget {
		g.AddEdge(blockAddr, target)
	}
}

// writeBranchExpr computes the JUMPI branch_expression per spec.md §4.4
// ("True if flag is a non-zero concrete, False if zero concrete, else the
// symbolic predicate flag = True") and writes it onto the current block.
func writeBranchExpr(g *cfgbuild.Graph, blockAddr cfgbuild.Address, flag symvalue.Value) {
	block := g.Blocks[blockAddr]
	if block == nil {
		return
	}
	var expr symvalue.Value
	switch {
	case flag.IsConcrete() && !flag.IsZero():
		expr = symvalue.ConcreteUint64(1)
	case flag.IsConcrete():
		expr = symvalue.ConcreteUint64(0)
	default:
		expr = symvalue.Symbolic(term.Equal(flag.Term(), 1))
	}
	block.BranchExpr = &expr
}

// parseUint256Hex parses s as a base-16 integer and returns it reduced
// mod 2^256, matching uint256's own wraparound convention for literals
// wider than 32 bytes (which a well-formed disassembly never produces).
func parseUint256Hex(s string) (*uint256.Int, error) {
	b, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("malformed hex immediate %q", s)
	}
	v, _ := uint256.FromBig(b)
	return v, nil
}
