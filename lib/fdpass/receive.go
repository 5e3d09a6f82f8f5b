// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fdpass

import (
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"
)

// Message is one received payload with the descriptors that arrived
// with it.
type Message struct {
	Payload     []byte
	Descriptors []*Descriptor
}

// Close closes every descriptor still owned by the message.
func (m *Message) Close() error {
	return closeAll(m.Descriptors)
}

// controlSpace is the control buffer size for MaxDescriptors rights.
// One more descriptor than this does not fit, and the kernel reports
// MSG_CTRUNC.
var controlSpace = unix.CmsgSpace(MaxDescriptors * 4)

// Receive reads one message from conn. conn is either an accepted
// SOCK_SEQPACKET connection or a bound SOCK_DGRAM socket.
//
// On a packet connection, an orderly close by the peer returns io.EOF.
// Socket errors are returned as-is so callers can recognize net.ErrClosed
// during shutdown; malformed control data is a *TransportError.
func Receive(conn *net.UnixConn) (*Message, error) {
	payload := make([]byte, MaxPayloadSize)
	control := make([]byte, controlSpace)

	n, controlLength, flags, _, err := conn.ReadMsgUnix(payload, control)
	if err != nil {
		return nil, err
	}

	descriptors, parseErr := adoptRights(control[:controlLength])
	message := &Message{Payload: payload[:n], Descriptors: descriptors}

	switch {
	case parseErr != nil:
		message.Close()
		return nil, &TransportError{Op: "receive", Err: parseErr}
	case flags&unix.MSG_CTRUNC != 0:
		message.Close()
		return nil, &TransportError{Op: "receive", Err: ErrControlTruncated}
	case flags&unix.MSG_TRUNC != 0:
		message.Close()
		return nil, &TransportError{Op: "receive",
			Err: fmt.Errorf("%w: larger than %d bytes", ErrPayloadTruncated, MaxPayloadSize)}
	}

	if n == 0 && controlLength == 0 && conn.LocalAddr().Network() == string(NetworkPacket) {
		return nil, io.EOF
	}
	return message, nil
}

// adoptRights parses SCM_RIGHTS control messages and adopts every
// descriptor found, in order. Descriptors adopted before a parse error
// are returned alongside it so the caller can close them.
func adoptRights(control []byte) ([]*Descriptor, error) {
	if len(control) == 0 {
		return nil, nil
	}

	messages, err := unix.ParseSocketControlMessage(control)
	if err != nil {
		return nil, fmt.Errorf("parsing control messages: %w", err)
	}

	var descriptors []*Descriptor
	var errs []error
	for i := range messages {
		header := messages[i].Header
		if header.Level != unix.SOL_SOCKET || header.Type != unix.SCM_RIGHTS {
			continue
		}
		fds, err := unix.ParseUnixRights(&messages[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("parsing SCM_RIGHTS: %w", err))
			continue
		}
		for _, fd := range fds {
			// The net package requests MSG_CMSG_CLOEXEC on Linux only.
			unix.CloseOnExec(fd)
			descriptors = append(descriptors, newDescriptor(fd, len(descriptors)))
		}
	}
	return descriptors, errors.Join(errs...)
}
