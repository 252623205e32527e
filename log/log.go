// Copyright 2024 The sp1r00000/oyente Authors
// This file is part of the oyente library.
//
// The oyente library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package log is a small leveled, colorized console logger in the
// teacher's idiom: terminal color when stderr is a tty (detected via
// mattn/go-isatty, rendered via fatih/color and mattn/go-colorable), a
// caller frame captured with go-stack/stack for warnings and above.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?????"
	}
}

var levelColor = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Logger is a minimal leveled logger. The zero value is not usable; use
// New.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	color  bool
}

// New returns a Logger writing to os.Stderr, colorized when stderr is a
// terminal.
func New(level Level) *Logger {
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	return &Logger{
		out:   colorable.NewColorableStderr(),
		level: level,
		color: useColor,
	}
}

func (l *Logger) log(level Level, msg string, ctx ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("15:04:05.000")
	line := fmt.Sprintf("[%s] %-5s %s", ts, level.String(), msg)
	for i := 0; i+1 < len(ctx); i += 2 {
		line += fmt.Sprintf(" %v=%v", ctx[i], ctx[i+1])
	}
	if level >= LevelWarn {
		// one caller frame up from the exported Debug/Info/Warn/Error method
		call := stack.Caller(2)
		line += fmt.Sprintf(" (%+v)", call)
	}
	if l.color {
		levelColor[level].Fprintln(l.out, line)
		return
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LevelDebug, msg, ctx...) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LevelInfo, msg, ctx...) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LevelWarn, msg, ctx...) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LevelError, msg, ctx...) }

// Root is a process-wide default logger, mirroring the teacher's
// log.Root() convenience accessor.
var root = New(LevelInfo)

// Root returns the process-wide default Logger.
func Root() *Logger { return root }

// SetRoot replaces the process-wide default Logger, used by the CLI to
// apply --verbose and the config file's log level.
func SetRoot(l *Logger) { root = l }
