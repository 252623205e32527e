// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interp

import "github.com/sp1r00000/oyente/symvalue"

// Stack is the EVM operand stack (spec.md §3): conceptually an ordered
// sequence of Value with the top at position 0. Internally the top is
// kept at the end of the slice, the idiomatic Go layout, and every
// position-N-from-top access below translates into the matching index
// from the end so callers see the spec's own "position 0 is the top"
// numbering.
type Stack struct {
	data []symvalue.Value
}

// NewStack returns an empty Stack.
func NewStack() *Stack {
	return &Stack{}
}

// Len returns the number of items on the stack.
func (s *Stack) Len() int { return len(s.data) }

// Push places v on top of the stack.
func (s *Stack) Push(v symvalue.Value) {
	s.data = append(s.data, v)
}

// Pop removes and returns the top value.
func (s *Stack) Pop(op string) (symvalue.Value, error) {
	if len(s.data) < 1 {
		return symvalue.Value{}, NewStackUnderflowError(op, 1, len(s.data))
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, nil
}

// Peek returns the value at position n from the top (0 is the top
// itself) without removing it.
func (s *Stack) Peek(op string, n int) (symvalue.Value, error) {
	idx := len(s.data) - 1 - n
	if idx < 0 {
		return symvalue.Value{}, NewStackUnderflowError(op, n+1, len(s.data))
	}
	return s.data[idx], nil
}

// Dup pushes a copy of the value at position n-1 from the top, the EVM
// DUP_n transfer function (n in [1,16]).
func (s *Stack) Dup(op string, n int) error {
	v, err := s.Peek(op, n-1)
	if err != nil {
		return err
	}
	s.Push(v)
	return nil
}

// Swap exchanges the top of the stack with the value at position n from
// the top, the EVM SWAP_n transfer function (n in [1,16]).
func (s *Stack) Swap(op string, n int) error {
	top := len(s.data) - 1
	other := top - n
	if other < 0 {
		return NewStackUnderflowError(op, n+1, len(s.data))
	}
	s.data[top], s.data[other] = s.data[other], s.data[top]
	return nil
}

// Values returns a snapshot of the stack contents, top last, for
// inspection by callers (the explorer's Report, tests).
func (s *Stack) Values() []symvalue.Value {
	out := make([]symvalue.Value, len(s.data))
	copy(out, s.data)
	return out
}

// Clone returns a copy that shares no backing array with s. Values
// themselves are never mutated in place once constructed, so a shallow
// element copy is a full deep clone for PathState forking purposes.
func (s *Stack) Clone() *Stack {
	data := make([]symvalue.Value, len(s.data))
	copy(data, s.data)
	return &Stack{data: data}
}
