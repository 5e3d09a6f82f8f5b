// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fdpass moves open file descriptors between processes over a
// Unix domain socket, alongside one opaque payload.
//
// [Send] transmits the payload and up to [MaxDescriptors] files in a
// single sendmsg call with SCM_RIGHTS ancillary data. The kernel
// duplicates each descriptor into the receiver; the sender's files stay
// open and owned by the sender. Both supported socket types,
// SOCK_SEQPACKET ([NetworkPacket]) and SOCK_DGRAM ([NetworkDatagram]),
// preserve message boundaries, so the payload and its descriptors
// arrive together or not at all.
//
// [Receive] reads one message and adopts each received descriptor as a
// [*Descriptor]. A Descriptor can only be created by Receive: nothing
// in this package turns an arbitrary integer into one. The receiver
// owns it and must Close it (or Release the underlying file to a new
// owner). When a message arrives with truncated payload or truncated
// control data, every descriptor that did arrive is closed before
// Receive returns an error, so a partial message is never observed.
//
// The transport does not interpret the payload and does not require a
// particular number of descriptors. Whether a message is a well-formed
// request is the caller's decision.
package fdpass
