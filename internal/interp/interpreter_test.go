// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp1r00000/oyente/analysis"
	"github.com/sp1r00000/oyente/internal/cfgbuild"
	"github.com/sp1r00000/oyente/namegen"
	"github.com/sp1r00000/oyente/smt"
	"github.com/sp1r00000/oyente/symvalue"
	"github.com/sp1r00000/oyente/symvalue/term"
)

// harness bundles the collaborators Step needs so each test only has to
// name the instruction and the stack it runs against.
type harness struct {
	g      *cfgbuild.Graph
	ps     *PathState
	solver smt.Solver
	gen    namegen.Generator
	hooks  analysis.Hooks
}

func newHarness() *harness {
	hooks := analysis.New()
	g := &cfgbuild.Graph{
		Blocks: map[cfgbuild.Address]*cfgbuild.BasicBlock{
			0: {Start: 0},
		},
		Edges: make(map[cfgbuild.Address][]cfgbuild.Address),
	}
	return &harness{
		g:      g,
		ps:     NewPathState(hooks),
		solver: smt.NewSolver(),
		gen:    namegen.New(),
		hooks:  hooks,
	}
}

func (h *harness) step(t *testing.T, instr cfgbuild.Instruction) (StepResult, error) {
	t.Helper()
	return Step(h.g, 0, instr, h.ps, h.solver, h.gen, h.hooks)
}

func TestStepArithmeticAdd(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(4))
	h.ps.Stack.Push(symvalue.ConcreteUint64(3))

	_, err := h.step(t, "ADD")
	require.NoError(t, err)

	top, err := h.ps.Stack.Pop("ADD")
	require.NoError(t, err)
	assert.True(t, top.EqualUint64(7))
}

func TestStepPushImmediate(t *testing.T) {
	h := newHarness()
	_, err := h.step(t, "PUSH 2a")
	require.NoError(t, err)

	top, err := h.ps.Stack.Pop("PUSH")
	require.NoError(t, err)
	assert.True(t, top.EqualUint64(0x2a))
}

func TestStepPushWithNoOperandPushesZero(t *testing.T) {
	h := newHarness()
	_, err := h.step(t, "PUSH")
	require.NoError(t, err)

	top, err := h.ps.Stack.Pop("PUSH")
	require.NoError(t, err)
	assert.True(t, top.EqualUint64(0))
}

func TestStepDup(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(11))
	h.ps.Stack.Push(symvalue.ConcreteUint64(22))

	_, err := h.step(t, "DUP2")
	require.NoError(t, err)
	assert.Equal(t, 3, h.ps.Stack.Len())

	top, _ := h.ps.Stack.Pop("DUP2")
	assert.True(t, top.EqualUint64(11))
}

func TestStepSwap(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(1))
	h.ps.Stack.Push(symvalue.ConcreteUint64(2))

	_, err := h.step(t, "SWAP1")
	require.NoError(t, err)

	values := h.ps.Stack.Values()
	assert.True(t, values[0].EqualUint64(2))
	assert.True(t, values[1].EqualUint64(1))
}

func TestStepUnknownDupSuffixIsUnknownOpcode(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(1))
	_, err := h.step(t, "DUPx")
	require.Error(t, err)
	var unknown *UnknownOpcodeError
	assert.ErrorAs(t, err, &unknown)
}

func TestStepStopHalts(t *testing.T) {
	h := newHarness()
	result, err := h.step(t, "STOP")
	require.NoError(t, err)
	assert.Equal(t, SigHalt, result.Signal)
}

func TestStepSuicideHalts(t *testing.T) {
	h := newHarness()
	result, err := h.step(t, "SUICIDE")
	require.NoError(t, err)
	assert.Equal(t, SigHalt, result.Signal)
}

func TestStepReturnPopsTwoAndHalts(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(0))
	h.ps.Stack.Push(symvalue.ConcreteUint64(32))

	result, err := h.step(t, "RETURN")
	require.NoError(t, err)
	assert.Equal(t, SigHalt, result.Signal)
	assert.Equal(t, 0, h.ps.Stack.Len())
}

func TestStepReturnUnderflowIsFatal(t *testing.T) {
	h := newHarness()
	_, err := h.step(t, "RETURN")
	require.Error(t, err)
	var underflow *StackUnderflowError
	assert.ErrorAs(t, err, &underflow)
}

func TestStepJumpConcreteTargetResolvesAndWiresEdge(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(7))

	result, err := h.step(t, "JUMP")
	require.NoError(t, err)
	assert.Equal(t, SigJump, result.Signal)
	assert.Equal(t, cfgbuild.Address(7), result.Target)

	require.NotNil(t, h.g.Blocks[0].JumpTarget)
	assert.Equal(t, cfgbuild.Address(7), *h.g.Blocks[0].JumpTarget)
	assert.Contains(t, h.g.Edges[0], cfgbuild.Address(7))
}

func TestStepJumpSymbolicTargetIsUnresolved(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.Symbolic(nil))

	result, err := h.step(t, "JUMP")
	require.NoError(t, err)
	assert.Equal(t, cfgbuild.UnresolvedTarget, result.Target)
	require.NotNil(t, h.g.Blocks[0].JumpTarget)
	assert.Equal(t, cfgbuild.UnresolvedTarget, *h.g.Blocks[0].JumpTarget)
	assert.Empty(t, h.g.Edges[0])
}

// JUMPI pops the destination (top of stack) then the flag; push the flag
// first so it ends up second from top and the destination on top.
func TestStepJumpiConcreteNonzeroFlagWritesTrueBranchExpr(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(1)) // flag
	h.ps.Stack.Push(symvalue.ConcreteUint64(9)) // dest, popped first

	result, err := h.step(t, "JUMPI")
	require.NoError(t, err)
	assert.Equal(t, SigBranch, result.Signal)

	require.NotNil(t, h.g.Blocks[0].BranchExpr)
	assert.True(t, h.g.Blocks[0].BranchExpr.EqualUint64(1))
}

func TestStepJumpiConcreteZeroFlagWritesFalseBranchExpr(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(0)) // flag
	h.ps.Stack.Push(symvalue.ConcreteUint64(9)) // dest

	_, err := h.step(t, "JUMPI")
	require.NoError(t, err)
	assert.True(t, h.g.Blocks[0].BranchExpr.EqualUint64(0))
}

func TestStepJumpiSymbolicFlagWritesEqualityPredicate(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.Symbolic(term.Var("flag"))) // flag
	h.ps.Stack.Push(symvalue.ConcreteUint64(9))          // dest

	_, err := h.step(t, "JUMPI")
	require.NoError(t, err)
	require.NotNil(t, h.g.Blocks[0].BranchExpr)
	assert.True(t, h.g.Blocks[0].BranchExpr.IsSymbolic())
	assert.Equal(t, "(= flag 1)", h.g.Blocks[0].BranchExpr.String())
}

func TestStepCalldataloadMintsAndRecordsSymbol(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(0))

	_, err := h.step(t, "CALLDATALOAD")
	require.NoError(t, err)
	require.Len(t, h.ps.SymVars, 1)

	top, _ := h.ps.Stack.Pop("CALLDATALOAD")
	assert.True(t, top.IsSymbolic())
	assert.Equal(t, h.ps.SymVars[0], top.Term().Name)
}

func TestStepCalldatasizeMintsSymbol(t *testing.T) {
	h := newHarness()
	_, err := h.step(t, "CALLDATASIZE")
	require.NoError(t, err)
	require.Len(t, h.ps.SymVars, 1)
}

func TestStepMstoreThenMloadRoundTrips(t *testing.T) {
	h := newHarness()
	h.ps.Stack.Push(symvalue.ConcreteUint64(99))   // value
	h.ps.Stack.Push(symvalue.ConcreteUint64(0x10)) // addr, popped first
	_, err := h.step(t, "MSTORE")
	require.NoError(t, err)

	h.ps.Stack.Push(symvalue.ConcreteUint64(0x10))
	_, err = h.step(t, "MLOAD")
	require.NoError(t, err)

	top, _ := h.ps.Stack.Pop("MLOAD")
	assert.True(t, top.EqualUint64(99))
}

func TestStepNotImplementedOpcodes(t *testing.T) {
	for _, mnemonic := range []cfgbuild.Instruction{"SHA3", "SIGNEXTEND", "BYTE"} {
		h := newHarness()
		_, err := h.step(t, mnemonic)
		require.Error(t, err)
		var notImpl *NotImplementedError
		assert.ErrorAs(t, err, &notImpl)
	}
}

func TestStepUnknownOpcode(t *testing.T) {
	h := newHarness()
	_, err := h.step(t, "FROBNICATE")
	require.Error(t, err)
	var unknown *UnknownOpcodeError
	assert.ErrorAs(t, err, &unknown)
}

func TestStepArithmeticUnderflowIsFatal(t *testing.T) {
	h := newHarness()
	_, err := h.step(t, "ADD")
	require.Error(t, err)
	var underflow *StackUnderflowError
	assert.ErrorAs(t, err, &underflow)
}

func TestStepUpdatesAnalysisInstructionCount(t *testing.T) {
	h := newHarness()
	_, err := h.step(t, "STOP")
	require.NoError(t, err)

	out := h.hooks.Display(h.ps.Analysis)
	assert.Contains(t, out, "instructions executed: 1")
	assert.Contains(t, out, "STOP")
}
