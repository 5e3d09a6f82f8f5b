// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Pfd is the prefork daemon. It listens on a Unix socket in the working
// directory (./.pfd.sock by default) for requests from pfc: one
// execution context and the client's standard streams per message.
//
// Each SOCK_SEQPACKET connection is handled in its own goroutine; a
// malformed or truncated request is logged and dropped without
// affecting other sessions. With --network datagram the daemon binds a
// SOCK_DGRAM socket and handles messages one at a time in arrival
// order.
//
// Received requests are logged and their descriptors closed. Any stale
// socket file at the path is removed on startup, and the socket is
// removed again when SIGINT or SIGTERM stops the accept loop.
//
// Verbose logging is enabled by --verbose or by PFD_LOG set to a true
// boolean ("1", "true"). The flag takes precedence in both directions.
package main
