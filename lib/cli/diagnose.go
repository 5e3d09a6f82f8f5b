// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/bureau-foundation/prefork/lib/discovery"
	"github.com/bureau-foundation/prefork/lib/fdpass"
	"github.com/bureau-foundation/prefork/lib/ipc"
)

// Hints printed after a diagnosed error.
const (
	HintStartDaemon = "Start the pfd daemon first with 'pfd' command"
	HintNotRunning  = "The pfd daemon may not be running. Try starting it first"
	HintPermissions = "Check file permissions and try running with appropriate access"
)

// Diagnose categorizes err and attaches a hint when the failure is one
// the user can act on. An error that already carries a ToolError is
// returned unchanged. Diagnose returns nil for a nil error.
func Diagnose(err error) *ToolError {
	if err == nil {
		return nil
	}

	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		if toolErr == err {
			return toolErr
		}
		return &ToolError{Category: toolErr.Category, Err: err, Hint: toolErr.Hint}
	}

	switch {
	case errors.Is(err, discovery.ErrEndpointNotFound):
		return Wrap(CategoryNotFound, err).WithHint(HintStartDaemon)

	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ENOENT):
		return Wrap(CategoryTransient, err).WithHint(HintNotRunning)

	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return Wrap(CategoryForbidden, err).WithHint(HintPermissions)

	case errors.Is(err, fdpass.ErrTooManyDescriptors):
		return Wrap(CategoryValidation, err).
			WithHint(fmt.Sprintf("At most %d descriptors can be passed to the daemon", fdpass.MaxDescriptors))

	case errors.Is(err, ipc.ErrMessageTooLarge), errors.Is(err, fdpass.ErrPayloadTooLarge):
		return Wrap(CategoryValidation, err).
			WithHint(fmt.Sprintf("The arguments and environment must fit in %d bytes; shorten them or enable compression", ipc.MaxMessageSize))

	case errors.Is(err, syscall.EPROTOTYPE):
		return Wrap(CategoryValidation, err).
			WithHint("The socket type does not match the daemon; check socket.network in the configuration")
	}

	return Wrap(CategoryInternal, err)
}
