// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("receiving: %w", io.EOF), true},
		{"closed listener", &net.OpError{Op: "accept", Net: "unixpacket", Err: net.ErrClosed}, true},
		{"broken pipe", os.NewSyscallError("sendmsg", syscall.EPIPE), true},
		{"reset", &net.OpError{Op: "read", Err: os.NewSyscallError("recvmsg", syscall.ECONNRESET)}, true},
		{"refused", os.NewSyscallError("connect", syscall.ECONNREFUSED), false},
		{"other", errors.New("payload truncated"), false},
	}
	for _, test := range tests {
		if got := IsExpectedCloseError(test.err); got != test.want {
			t.Errorf("IsExpectedCloseError(%s) = %v, want %v", test.name, got, test.want)
		}
	}
}
