// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LevelForVerbosity maps a -v count to a log level: warn by default,
// info for -v, debug for -vv and beyond.
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// NewLogger creates the process logger writing to stderr. When stderr
// is a terminal it uses slog.TextHandler for human-readable output;
// when piped or redirected it uses slog.JSONHandler. quiet discards
// everything.
//
// main calls NewLogger once and installs the result with
// slog.SetDefault. Library code takes a *slog.Logger explicitly.
func NewLogger(verbosity int, quiet bool) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), verbosity, quiet)
}

func newLogger(w io.Writer, terminal bool, verbosity int, quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.DiscardHandler)
	}
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: LevelForVerbosity(verbosity)}
	if terminal {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
