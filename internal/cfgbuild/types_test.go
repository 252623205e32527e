// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package cfgbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionMnemonicAndOperand(t *testing.T) {
	i := Instruction("PUSH 2a")
	assert.Equal(t, "PUSH", i.Mnemonic())
	operand, ok := i.Operand()
	assert.True(t, ok)
	assert.Equal(t, "2a", operand)
}

func TestInstructionWithoutOperand(t *testing.T) {
	i := Instruction("JUMPDEST")
	assert.Equal(t, "JUMPDEST", i.Mnemonic())
	_, ok := i.Operand()
	assert.False(t, ok)
}

func TestAddEdgeOnNilSliceAppends(t *testing.T) {
	g := &Graph{Edges: make(map[Address][]Address)}
	g.AddEdge(1, 2)
	assert.Equal(t, []Address{2}, g.Edges[1])
}

func TestUnresolvedTargetIsNegative(t *testing.T) {
	assert.Equal(t, Address(-1), UnresolvedTarget)
}
