// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package cfgbuild

import (
	"io"

	"github.com/sp1r00000/oyente/internal/disasm"
)

// FromReader runs the full C1->C2->C3 pipeline: it lexes r, partitions the
// token stream into blocks, and builds the resulting Graph with its static
// fall-through edges wired. Dynamic edges (JUMP/JUMPI targets) are added
// later by the explorer as it resolves them.
func FromReader(r io.Reader) (*Graph, error) {
	tokens := disasm.Lex(r)
	instructions, blockEnds, jumpTypes, err := Partition(tokens)
	if err != nil {
		return nil, err
	}
	return Build(instructions, blockEnds, jumpTypes), nil
}
