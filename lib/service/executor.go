// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/prefork/lib/fdpass"
	"github.com/bureau-foundation/prefork/lib/ipc"
)

// Request is one validated execution request. Descriptors are in the
// client's order: stdin, stdout, stderr.
type Request struct {
	SessionID   string
	Context     ipc.ExecutionContext
	Descriptors []*fdpass.Descriptor
}

// Close closes every descriptor the executor did not release. The
// acceptor calls it after Execute returns.
func (r *Request) Close() error {
	message := fdpass.Message{Descriptors: r.Descriptors}
	return message.Close()
}

// Executor runs requests. Execute owns the request's descriptors for
// the duration of the call; descriptors it wants to keep past its
// return must be taken with Release.
type Executor interface {
	Execute(ctx context.Context, request *Request) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, request *Request) error

func (f ExecutorFunc) Execute(ctx context.Context, request *Request) error {
	return f(ctx, request)
}

// LoggingExecutor records each request and runs nothing.
type LoggingExecutor struct {
	Logger *slog.Logger
}

func (e LoggingExecutor) Execute(ctx context.Context, request *Request) error {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	descriptors := make([]string, len(request.Descriptors))
	for i, descriptor := range request.Descriptors {
		descriptors[i] = descriptor.Name()
	}
	logger.InfoContext(ctx, "execution request",
		"session_id", request.SessionID,
		"command", request.Context.Command,
		"args", request.Context.Args,
		"working_dir", request.Context.WorkingDir,
		"env_count", len(request.Context.Env),
		"descriptors", descriptors,
	)
	return nil
}
