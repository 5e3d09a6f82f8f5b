// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Pfc hands a command line to a running pfd daemon and exits.
//
// It captures the command, its arguments, the working directory and the
// environment, encodes them as one frame, and sends the frame together
// with its own stdin, stdout and stderr descriptors in a single message
// over the daemon's Unix socket. The daemon ends up holding the
// descriptors; pfc does not wait for the command.
//
// # Finding the daemon
//
// The first of these wins:
//
//   - --socket <path>
//   - $PFC_SOCKET, then $PFD_SOCKET (set and non-empty)
//   - ./pfd.sock, then ./.pfd.sock (whichever exists)
//
// A socket file found on disk may belong to a daemon that has died;
// the connect then fails with "connection refused" and pfc suggests
// starting the daemon.
//
// # Output
//
// pfc is silent on success. Errors go to stderr with their cause chain
// and a suggestion. -v enables info logging, -vv debug. --quiet
// suppresses everything, including errors; the exit status is still 1
// on failure.
package main
