// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"os"
	"slices"
	"strings"
)

// EnvVar is one environment entry. Encoded as a two-element CBOR array
// so the pair order inside the entry is fixed.
type EnvVar struct {
	_     struct{} `cbor:",toarray"`
	Key   string
	Value string
}

// ExecutionContext describes one remote-execution request: where to
// run, what to run, and with which arguments and environment.
type ExecutionContext struct {
	// WorkingDir is the client's working directory at capture time.
	WorkingDir string `cbor:"working_dir"`

	// Command is the executable name or path.
	Command string `cbor:"command"`

	// Args are positional arguments, in order.
	Args []string `cbor:"args"`

	// Env is the ordered environment. Duplicate keys are kept as-is;
	// nothing merges them.
	Env []EnvVar `cbor:"env"`
}

// NewExecutionContext returns a context with no arguments and no
// environment.
func NewExecutionContext(workingDir, command string) ExecutionContext {
	return ExecutionContext{
		WorkingDir: workingDir,
		Command:    command,
	}
}

// WithArg returns a copy of c with arg appended.
func (c ExecutionContext) WithArg(arg string) ExecutionContext {
	c.Args = append(slices.Clip(c.Args), arg)
	return c
}

// WithArgs returns a copy of c with args appended in order.
func (c ExecutionContext) WithArgs(args ...string) ExecutionContext {
	if len(args) == 0 {
		return c
	}
	c.Args = append(slices.Clip(c.Args), args...)
	return c
}

// WithEnv returns a copy of c with the pair appended.
func (c ExecutionContext) WithEnv(key, value string) ExecutionContext {
	c.Env = append(slices.Clip(c.Env), EnvVar{Key: key, Value: value})
	return c
}

// Equal reports whether two contexts match field for field. Nil and
// empty slices compare equal.
func (c ExecutionContext) Equal(other ExecutionContext) bool {
	return c.WorkingDir == other.WorkingDir &&
		c.Command == other.Command &&
		slices.Equal(c.Args, other.Args) &&
		slices.EqualFunc(c.Env, other.Env, func(a, b EnvVar) bool {
			return a.Key == b.Key && a.Value == b.Value
		})
}

// CaptureExecutionContext builds the context for the current process:
// the working directory from os.Getwd ("." when it cannot be
// determined), the given command and arguments, and environ split into
// pairs. environ uses the os.Environ format; an entry without "=" is
// kept as a key with an empty value.
func CaptureExecutionContext(command string, args []string, environ []string) ExecutionContext {
	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "."
	}

	captured := NewExecutionContext(workingDir, command).WithArgs(args...)
	if len(environ) > 0 {
		captured.Env = make([]EnvVar, 0, len(environ))
		for _, entry := range environ {
			key, value, _ := strings.Cut(entry, "=")
			captured.Env = append(captured.Env, EnvVar{Key: key, Value: value})
		}
	}
	return captured
}
