// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fdpass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// Send delivers payload and files to the endpoint at path as one
// message. The files stay open and owned by the caller.
//
// With NetworkAuto, Send dials SOCK_SEQPACKET and retries as a
// datagram when the endpoint reports EPROTOTYPE. Validation failures
// (too many files, oversize payload) return before any socket is
// opened, so nothing reaches the endpoint.
func Send(ctx context.Context, network Network, path string, payload []byte, files []*os.File) error {
	if len(files) > MaxDescriptors {
		return &TransportError{Op: "send", Network: network, Path: path,
			Err: fmt.Errorf("%w: %d given, limit %d", ErrTooManyDescriptors, len(files), MaxDescriptors)}
	}
	if len(payload) > MaxPayloadSize {
		return &TransportError{Op: "send", Network: network, Path: path,
			Err: fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), MaxPayloadSize)}
	}
	for i, file := range files {
		if file == nil {
			return &TransportError{Op: "send", Network: network, Path: path,
				Err: fmt.Errorf("descriptor %d is nil", i)}
		}
	}

	switch network {
	case NetworkPacket:
		return sendPacket(ctx, path, payload, files)
	case NetworkDatagram:
		return sendDatagram(path, payload, files)
	case NetworkAuto:
		err := sendPacket(ctx, path, payload, files)
		if errors.Is(err, unix.EPROTOTYPE) {
			return sendDatagram(path, payload, files)
		}
		return err
	default:
		return &TransportError{Op: "send", Network: network, Path: path,
			Err: fmt.Errorf("unsupported network %q", string(network))}
	}
}

func sendPacket(ctx context.Context, path string, payload []byte, files []*os.File) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, string(NetworkPacket), path)
	if err != nil {
		return &TransportError{Op: "dial", Network: NetworkPacket, Path: path, Err: err}
	}
	defer conn.Close()

	rights := rightsFor(files)
	n, oobn, err := conn.(*net.UnixConn).WriteMsgUnix(payload, rights, nil)
	runtime.KeepAlive(files)
	if err != nil {
		return &TransportError{Op: "send", Network: NetworkPacket, Path: path, Err: err}
	}
	if n != len(payload) || oobn != len(rights) {
		return &TransportError{Op: "send", Network: NetworkPacket, Path: path,
			Err: fmt.Errorf("%w: %d of %d bytes, %d of %d control bytes", ErrShortWrite, n, len(payload), oobn, len(rights))}
	}
	return nil
}

// sendDatagram sends from an unbound SOCK_DGRAM socket. The net
// package refuses WriteMsgUnix on a connected datagram socket, so this
// path talks to the kernel directly.
func sendDatagram(path string, payload []byte, files []*os.File) error {
	socket, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return &TransportError{Op: "dial", Network: NetworkDatagram, Path: path, Err: os.NewSyscallError("socket", err)}
	}
	defer unix.Close(socket)

	rights := rightsFor(files)
	err = unix.Sendmsg(socket, payload, rights, &unix.SockaddrUnix{Name: path}, 0)
	runtime.KeepAlive(files)
	if err != nil {
		return &TransportError{Op: "send", Network: NetworkDatagram, Path: path, Err: os.NewSyscallError("sendmsg", err)}
	}
	return nil
}

// rightsFor builds the SCM_RIGHTS control message for files, or nil
// when there are none. Callers keep files alive until the message has
// been sent.
func rightsFor(files []*os.File) []byte {
	if len(files) == 0 {
		return nil
	}
	fds := make([]int, len(files))
	for i, file := range files {
		fds[i] = int(file.Fd())
	}
	return unix.UnixRights(fds...)
}
