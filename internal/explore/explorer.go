// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package explore is the depth-first path explorer (C6): it drives the
// interpreter (C5) one block at a time, forks PathState at conditional
// jumps, and queries the solver (C7) for feasibility around every fork.
package explore

import (
	"fmt"

	"github.com/sp1r00000/oyente/analysis"
	"github.com/sp1r00000/oyente/internal/cfgbuild"
	"github.com/sp1r00000/oyente/internal/interp"
	"github.com/sp1r00000/oyente/log"
	"github.com/sp1r00000/oyente/namegen"
	"github.com/sp1r00000/oyente/smt"
	"github.com/sp1r00000/oyente/symvalue"
	"github.com/sp1r00000/oyente/symvalue/term"
)

// Report is the terminal state of one completed path: the rendered
// Analysis.Display output, the visited block trail, and the final stack
// contents, for the CLI to print and for tests to inspect directly.
type Report struct {
	Visited    []cfgbuild.Address
	FinalStack []symvalue.Value
	Display    string
}

// Explorer owns the single-threaded DFS state of spec.md §5: the CFG
// tables, the solver whose assertion-stack depth must return to its
// entry value around every recursion frame, and the path reports
// accumulated so far.
type Explorer struct {
	graph   *cfgbuild.Graph
	solver  smt.Solver
	gen     namegen.Generator
	hooks   analysis.Hooks
	logger  *log.Logger
	reports []Report
}

// New returns an Explorer ready to run over g.
func New(g *cfgbuild.Graph, solver smt.Solver, gen namegen.Generator, hooks analysis.Hooks, logger *log.Logger) *Explorer {
	return &Explorer{graph: g, solver: solver, gen: gen, hooks: hooks, logger: logger}
}

// Run explores every feasible path starting at block 0 (the entry per
// spec.md §4.5) and returns one Report per terminal path reached. A
// fatal error (spec.md §7: ParseError, StackUnderflow, NotImplemented,
// UnknownOpcode) aborts exploration entirely and is returned to the
// caller; UnknownJumpTarget, InfeasiblePath and SolverUnknown are
// recovered locally and never reach here.
func (e *Explorer) Run() ([]Report, error) {
	ps := interp.NewPathState(e.hooks)
	if err := e.exploreBlock(0, ps); err != nil {
		return nil, err
	}
	return e.reports, nil
}

func (e *Explorer) exploreBlock(addr cfgbuild.Address, ps *interp.PathState) error {
	if addr < 0 {
		e.logger.Warn("unknown jump address", "addr", addr)
		return nil
	}
	block, ok := e.graph.Blocks[addr]
	if !ok {
		e.logger.Warn("unknown jump address", "addr", addr)
		return nil
	}

	for _, instr := range block.Instructions {
		result, err := interp.Step(e.graph, addr, instr, ps, e.solver, e.gen, e.hooks)
		if err != nil {
			return err
		}
		if result.Signal == interp.SigHalt {
			ps.MarkVisited(addr)
			e.report(ps)
			return nil
		}
	}
	ps.MarkVisited(addr)

	switch block.Kind {
	case cfgbuild.KindTerminal:
		e.report(ps)
		return nil

	case cfgbuild.KindUnconditional:
		if block.JumpTarget == nil || *block.JumpTarget == cfgbuild.UnresolvedTarget {
			e.logger.Warn("unknown jump target", "block", addr)
			return nil
		}
		return e.exploreBlock(*block.JumpTarget, ps.Clone())

	case cfgbuild.KindFallsTo:
		if block.FallsTo == nil {
			e.logger.Warn("unknown jump target", "block", addr)
			return nil
		}
		return e.exploreBlock(*block.FallsTo, ps.Clone())

	case cfgbuild.KindConditional:
		return e.exploreConditional(addr, block, ps)

	default:
		return fmt.Errorf("unhandled block kind %v at block %d", block.Kind, addr)
	}
}

// exploreConditional implements spec.md §4.5 step 4's conditional case.
// The solver push/pop brackets the recursive call itself, not just the
// feasibility check: the assumption must stay asserted for the whole
// subtree explored under it; it is popped only once that exploration has
// returned, mirroring the DFS recursion per spec.md §5. SolverUnknown is
// treated as SAT per spec.md §4.6, so only a proven UNSAT prunes a side
// (InfeasiblePath).
func (e *Explorer) exploreConditional(addr cfgbuild.Address, block *cfgbuild.BasicBlock, ps *interp.PathState) error {
	if block.BranchExpr == nil {
		e.logger.Warn("unknown jump target", "block", addr)
		return nil
	}
	expr := term.Simplify(block.BranchExpr.Term())
	negated := term.Simplify(term.Un(term.OpBoolNot, expr))

	if err := e.exploreSide(addr, block.JumpTarget, expr, ps); err != nil {
		return err
	}
	return e.exploreSide(addr, block.FallsTo, negated, ps)
}

// exploreSide asserts assumption in a new solver frame and, if that does
// not prove UNSAT, clones ps and recurses into target; the frame is
// released on every exit path (SAT-and-returned, UNSAT, or error).
func (e *Explorer) exploreSide(addr cfgbuild.Address, target *cfgbuild.Address, assumption *term.Term, ps *interp.PathState) error {
	if target == nil || *target == cfgbuild.UnresolvedTarget {
		e.logger.Warn("unknown jump target", "block", addr)
		return nil
	}
	e.solver.Push()
	defer e.solver.Pop()
	e.solver.Add(assumption)
	if e.solver.Check() == smt.Unsat {
		e.logger.Warn("infeasible path", "block", addr, "target", *target)
		return nil
	}
	return e.exploreBlock(*target, ps.Clone())
}

func (e *Explorer) report(ps *interp.PathState) {
	visited := make([]cfgbuild.Address, len(ps.Visited))
	copy(visited, ps.Visited)
	e.reports = append(e.reports, Report{
		Visited:    visited,
		FinalStack: ps.Stack.Values(),
		Display:    e.hooks.Display(ps.Analysis),
	})
	e.logger.Debug("path terminated", "blocks", len(visited))
}
