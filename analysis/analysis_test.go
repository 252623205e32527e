// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateCountsOpcodesAndMemory(t *testing.T) {
	hooks := New()
	a := hooks.Init()
	hooks.Update(&a, "PUSH", 0, []uint64{0x10})
	hooks.Update(&a, "PUSH", 1, nil)
	hooks.Update(&a, "ADD", 2, []uint64{0x10, 0x20})

	out := hooks.Display(a)
	assert.Contains(t, out, "instructions executed: 3")
	assert.Contains(t, out, "memory cells touched: 2")
	assert.Contains(t, out, "PUSH")
	assert.Contains(t, out, "ADD")
}

func TestCloneIsIndependent(t *testing.T) {
	hooks := New()
	a := hooks.Init()
	hooks.Update(&a, "PUSH", 0, []uint64{1})

	b := Clone(a)
	hooks.Update(&b, "ADD", 1, []uint64{2})

	assert.Contains(t, hooks.Display(a), "instructions executed: 1")
	assert.Contains(t, hooks.Display(b), "instructions executed: 2")
}
