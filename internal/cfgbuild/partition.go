// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package cfgbuild

import (
	"math/big"
	"strconv"

	"github.com/sp1r00000/oyente/internal/disasm"
)

// Partition consumes the token stream (C1's output) and returns the three
// tables spec.md §4.1 builds in a single left-to-right pass: the
// address-indexed instruction table, the block-end table, and the
// per-block jump-type classification. It does not build BasicBlock values
// itself — that is Build's job (C3).
func Partition(tokens <-chan disasm.Token) (
	instructions map[Address]Instruction,
	blockEnds map[Address]Address,
	jumpTypes map[Address]Kind,
	err error,
) {
	instructions = make(map[Address]Instruction)
	blockEnds = make(map[Address]Address)
	jumpTypes = make(map[Address]Kind)

	var (
		currentInsAddr Address
		lastInsAddr    Address
		currentBlock   Address
		newLine        = true
		newBlock       = false
		waitForPush    = false
		lineContent    string
	)

	for tok := range tokens {
		if waitForPush {
			if tok.Type == disasm.NEWLINE {
				instructions[currentInsAddr] = Instruction(lineContent)
				lineContent = ""
				newLine = true
				waitForPush = false
				continue
			}
			if _, isHex := new(big.Int).SetString(tok.Text, 16); isHex {
				if lineContent != "" && lineContent[len(lineContent)-1] != ' ' {
					lineContent += " "
				}
				lineContent += tok.Text
			}
			continue
		}

		switch {
		case newLine && tok.Type == disasm.NUMBER:
			lastInsAddr = currentInsAddr
			addr, parseErr := strconv.ParseInt(tok.Text, 0, 64)
			if parseErr != nil {
				return nil, nil, nil, &ParseError{Line: tok.Line, Text: tok.Text}
			}
			currentInsAddr = addr
			newLine = false
			if newBlock {
				currentBlock = currentInsAddr
				newBlock = false
			}
			continue

		case newLine && tok.Type == disasm.NAME && tok.Text != "=" && tok.Text != ">":
			// A line must open with its address; the lexer hands a
			// non-numeric one over as a NAME.
			return nil, nil, nil, &ParseError{Line: tok.Line, Text: tok.Text}

		case tok.Type == disasm.NEWLINE:
			instructions[currentInsAddr] = Instruction(lineContent)
			lineContent = ""
			newLine = true
			continue

		case tok.Type == disasm.NAME:
			switch {
			case tok.Text == "JUMPDEST":
				if _, ok := blockEnds[lastInsAddr]; !ok {
					blockEnds[currentBlock] = lastInsAddr
				}
				currentBlock = currentInsAddr
				newBlock = false
			case tok.Text == "STOP" || tok.Text == "RETURN" || tok.Text == "SUICIDE":
				jumpTypes[currentBlock] = KindTerminal
				blockEnds[currentBlock] = currentInsAddr
			case tok.Text == "JUMP":
				jumpTypes[currentBlock] = KindUnconditional
				blockEnds[currentBlock] = currentInsAddr
				newBlock = true
			case tok.Text == "JUMPI":
				jumpTypes[currentBlock] = KindConditional
				blockEnds[currentBlock] = currentInsAddr
				newBlock = true
			case len(tok.Text) >= 4 && tok.Text[:4] == "PUSH":
				waitForPush = true
			}
			newLine = false
		}

		if tok.Text != "=" && tok.Text != ">" {
			if lineContent != "" {
				lineContent += " "
			}
			lineContent += tok.Text
		}
	}

	if _, ok := blockEnds[currentBlock]; !ok {
		blockEnds[currentBlock] = currentInsAddr
	}
	if _, ok := jumpTypes[currentBlock]; !ok {
		jumpTypes[currentBlock] = KindTerminal
	}
	for key := range blockEnds {
		if _, ok := jumpTypes[key]; !ok {
			jumpTypes[key] = KindFallsTo
		}
	}

	return instructions, blockEnds, jumpTypes, nil
}
