// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line scaffolding shared by pfc and
// pfd.
//
// [Command] wraps a pflag.FlagSet with structured help output and
// "did you mean" suggestions for mistyped flags. Flag parsing stops
// at the first positional argument, so pfc passes the target
// command's own flags through untouched.
//
// Errors returned to main are classified with [ToolError]: a category
// plus an optional hint. [Diagnose] maps the errors of discovery,
// transport and codec packages onto categories and hints, and
// [ReportError] prints the result:
//
//	Error: sending request
//	  Caused by: dial ./.pfd.sock
//	  Caused by: connection refused
//	Suggestion: The pfd daemon may not be running. Try starting it first
//
// [NewLogger] builds the process logger from the -v count and --quiet
// flag. It picks a text handler for a terminal and JSON otherwise.
package cli
