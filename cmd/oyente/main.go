// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command oyente is the CLI wrapper around the symbolic execution engine
// (spec.md §6): it takes a single positional argument, a path to a
// disassembled bytecode listing, and prints one report per terminal
// path discovered.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sp1r00000/oyente/analysis"
	"github.com/sp1r00000/oyente/internal/cfgbuild"
	"github.com/sp1r00000/oyente/internal/config"
	"github.com/sp1r00000/oyente/internal/explore"
	"github.com/sp1r00000/oyente/log"
	"github.com/sp1r00000/oyente/namegen"
	"github.com/sp1r00000/oyente/smt"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML run configuration",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
	}
)

func main() {
	app := &cli.App{
		Name:      "oyente",
		Usage:     "symbolic execution engine for disassembled bytecode",
		ArgsUsage: "<disassembly-file>",
		Flags:     []cli.Flag{configFlag, verboseFlag},
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return cli.Exit("exactly one disassembly file argument is required", 1)
	}

	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("loading config: %v", err), 1)
		}
		cfg = loaded
	}
	if ctx.Bool("verbose") {
		cfg.Verbose = true
	}
	logger := log.New(cfg.ParseLevel())
	log.SetRoot(logger)

	path := ctx.Args().Get(0)
	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer f.Close()

	graph, err := cfgbuild.FromReader(f)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	explorer := explore.New(graph, smt.NewSolver(), namegen.New(), analysis.New(), logger)
	reports, err := explorer.Run()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	for i, r := range reports {
		fmt.Printf("== path %d (blocks: %v) ==\n", i, r.Visited)
		fmt.Print(r.Display)
	}
	return nil
}
