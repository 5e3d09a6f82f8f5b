// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies errors reported to the user so the report can
// carry a suggestion without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// bad flags, a missing command, a request too large to send.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates no daemon endpoint could be located.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates the caller lacks permission to reach
	// the endpoint.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryTransient indicates the daemon was found but did not
	// answer: connection refused, stale socket file. Starting the
	// daemon and retrying may succeed.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected error.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error with an optional hint for the user.
// It wraps an inner error, preserving the full chain for errors.Is and
// errors.As.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is an actionable suggestion, printed after the error.
	Hint string
}

// Error returns the underlying message, followed by the hint when set.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the ToolError wrapper.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Wrap categorizes an existing error.
func Wrap(category ErrorCategory, err error) *ToolError {
	return &ToolError{Category: category, Err: err}
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}
