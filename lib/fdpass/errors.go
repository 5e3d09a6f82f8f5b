// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fdpass

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyDescriptors is returned by Send before any I/O when
	// more than MaxDescriptors files are given.
	ErrTooManyDescriptors = errors.New("too many descriptors")

	// ErrPayloadTooLarge is returned by Send before any I/O when the
	// payload exceeds MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrShortWrite means sendmsg accepted fewer bytes than given.
	// Packet and datagram sockets never do this; seeing it means the
	// endpoint is a stream socket.
	ErrShortWrite = errors.New("short write")

	// ErrPayloadTruncated means the received message did not fit in
	// the receive buffer.
	ErrPayloadTruncated = errors.New("payload truncated in transit")

	// ErrControlTruncated means the kernel dropped descriptors because
	// the control buffer was too small for them.
	ErrControlTruncated = errors.New("descriptors truncated in transit")
)

// TransportError reports a failed send or receive. Err wraps either one
// of the sentinel errors above or the underlying socket error, so
// errors.Is(err, syscall.ECONNREFUSED) works through it.
type TransportError struct {
	// Op is "dial", "send" or "receive".
	Op string

	// Network is the socket type in use, when known.
	Network Network

	// Path is the endpoint path, when known.
	Path string

	Err error
}

func (e *TransportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
