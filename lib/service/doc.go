// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the pfd side of the prefork protocol.
//
// An [Acceptor] binds the endpoint, removes any socket file left by a
// previous daemon, and turns each inbound message into a [Request]
// for an [Executor]:
//
//   - On a packet endpoint (SOCK_SEQPACKET) every connection is an
//     independent session with its own goroutine and session ID. A
//     session that fails to receive or decode is logged and dropped;
//     other sessions and the accept loop continue.
//   - On a datagram endpoint (SOCK_DGRAM) messages are handled one at a
//     time, in arrival order, by the receive loop itself.
//
// [ServeUntilSignal] races the acceptor against SIGINT and SIGTERM.
// The signal stops the accept loop only; sessions already running
// finish on a context detached from shutdown. The endpoint file is
// removed whenever Serve returns after a successful bind.
//
// No execution is defined here. [LoggingExecutor] logs each request
// and closes its descriptors; a real executor takes ownership of the
// descriptors with [fdpass.Descriptor.Release].
package service
