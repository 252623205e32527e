// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp1r00000/oyente/log"
)

func TestDefaultConfigIsInfoLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, log.LevelInfo, cfg.ParseLevel())
}

func TestLoadDecodesTomlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oyente.toml")
	require.NoError(t, os.WriteFile(path, []byte("log-level = \"debug\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, log.LevelDebug, cfg.ParseLevel())
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oyente.toml")
	require.NoError(t, os.WriteFile(path, []byte("nonexistent-field = true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFilePropagatesError(t *testing.T) {
	_, err := Load("/nonexistent/oyente.toml")
	require.Error(t, err)
}

func TestVerboseOverridesLogLevel(t *testing.T) {
	cfg := Config{LogLevel: "error", Verbose: true}
	assert.Equal(t, log.LevelDebug, cfg.ParseLevel())
}

func TestParseLevelDefaultsToInfoForUnknownValue(t *testing.T) {
	cfg := Config{LogLevel: "nonsense"}
	assert.Equal(t, log.LevelInfo, cfg.ParseLevel())
}
