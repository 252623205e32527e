// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package namegen mints fresh, globally unique names for the symbolic
// variables the interpreter introduces (CALLDATALOAD, CALLDATASIZE,
// MLOAD-of-an-unknown-cell). It is an external collaborator per spec.md
// §1/§6: the core only calls the Generator interface.
package namegen

import (
	"fmt"
	"sync/atomic"
)

// Generator mints fresh symbolic variable names. Implementations must
// never repeat a name within a process lifetime.
type Generator interface {
	DataVar(position uint64) string
	DataSize() string
	MemVar(addr uint64) string
}

// counter is the default Generator, grounded in the source's module-level
// incrementing counter (vargenerator.Generator). It is safe for
// concurrent use even though the engine itself is single-threaded,
// because atomic.Uint64 costs nothing here and removes any temptation to
// add a mutex later.
type counter struct {
	dataVar  atomic.Uint64
	dataSize atomic.Uint64
	memVar   atomic.Uint64
}

// New returns the default Generator.
func New() Generator {
	return &counter{}
}

func (c *counter) DataVar(position uint64) string {
	n := c.dataVar.Add(1)
	return fmt.Sprintf("Id_%d_%d", position, n)
}

func (c *counter) DataSize() string {
	n := c.dataSize.Add(1)
	return fmt.Sprintf("Ie_%d", n)
}

func (c *counter) MemVar(addr uint64) string {
	n := c.memVar.Add(1)
	return fmt.Sprintf("Im_%d_%d", addr, n)
}
