// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fdpass

import "fmt"

// MaxDescriptors is the most descriptors one message may carry.
const MaxDescriptors = 8

// MaxPayloadSize is the receive buffer size, and therefore the largest
// payload Send accepts.
const MaxPayloadSize = 16 * 1024

// Network selects the Unix socket type.
type Network string

const (
	// NetworkAuto is a client-side choice: dial as NetworkPacket and
	// fall back to NetworkDatagram when the endpoint has the other
	// socket type.
	NetworkAuto Network = ""

	// NetworkPacket is SOCK_SEQPACKET: one connection per request,
	// message boundaries preserved.
	NetworkPacket Network = "unixpacket"

	// NetworkDatagram is SOCK_DGRAM: connectionless, one shared socket.
	NetworkDatagram Network = "unixgram"
)

// String returns the configuration name.
func (n Network) String() string {
	switch n {
	case NetworkAuto:
		return "auto"
	case NetworkPacket:
		return "packet"
	case NetworkDatagram:
		return "datagram"
	default:
		return string(n)
	}
}

// ParseNetwork accepts the configuration names ("auto", "packet",
// "datagram") and the Go network names ("unixpacket", "unixgram").
// The empty string is NetworkAuto.
func ParseNetwork(name string) (Network, error) {
	switch name {
	case "", "auto":
		return NetworkAuto, nil
	case "packet", "unixpacket":
		return NetworkPacket, nil
	case "datagram", "unixgram":
		return NetworkDatagram, nil
	default:
		return "", fmt.Errorf("unknown network %q (want auto, packet or datagram)", name)
	}
}
