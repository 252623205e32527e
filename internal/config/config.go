// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package config is the TOML run configuration for the oyente CLI,
// in the teacher's own idiom (cmd/geth/config.go's tomlSettings +
// loadConfig pair).
package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/naoina/toml"

	"github.com/sp1r00000/oyente/log"
)

// tomlSettings customizes naoina/toml's (de)serialization the same way
// the teacher does: dashed TOML keys map onto Go's CamelCase field names,
// and an unrecognized key in the file is a hard error rather than a
// silent no-op.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return strings.ToLower(strings.ReplaceAll(key, "-", ""))
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return strings.ToLower(field)
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config is the CLI's run configuration.
type Config struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
	// Verbose mirrors the teacher's --verbose convenience flag: when true
	// it overrides LogLevel to "debug".
	Verbose bool
}

// Default returns the configuration used when no --config file is given.
func Default() Config {
	return Config{LogLevel: "info"}
}

// Load reads and decodes a TOML file at path on top of Default(), so a
// key absent from the file keeps its default value; the same pattern as
// the teacher's loadConfig.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	return cfg, err
}

// ParseLevel maps cfg's textual log level onto a log.Level, defaulting to
// log.LevelInfo for an unrecognized or empty value.
func (c Config) ParseLevel() log.Level {
	if c.Verbose {
		return log.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
