// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fdpass

import (
	"errors"
	"fmt"
	"os"
)

// noCopy makes go vet's copylocks check flag a Descriptor passed by
// value. A copied Descriptor would be a second owner of the same
// kernel object.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Descriptor is a file descriptor adopted from a received message. It
// is owned by whoever holds the pointer and is closed exactly once:
// explicitly through Close, or by the os.File finalizer if the owner
// drops it. Release hands the underlying file to a new owner.
type Descriptor struct {
	noCopy noCopy

	file  *os.File
	fd    int
	index int
}

// newDescriptor adopts fd. Only Receive calls it.
func newDescriptor(fd, index int) *Descriptor {
	return &Descriptor{
		file:  os.NewFile(uintptr(fd), fmt.Sprintf("received-fd-%d", index)),
		fd:    fd,
		index: index,
	}
}

// Index is the descriptor's position in the message, starting at 0.
// For a pfc request, 0, 1 and 2 are the client's stdin, stdout and
// stderr.
func (d *Descriptor) Index() int { return d.index }

// Fd returns the descriptor number in this process, or -1 once the
// descriptor has been closed or released.
func (d *Descriptor) Fd() int {
	if d.file == nil {
		return -1
	}
	return d.fd
}

// Name identifies the descriptor in logs.
func (d *Descriptor) Name() string {
	return fmt.Sprintf("received-fd-%d", d.index)
}

// File returns the open file without transferring ownership. It
// returns nil once the descriptor has been closed or released. The
// caller must not close the returned file.
func (d *Descriptor) File() *os.File { return d.file }

// Stat describes the underlying file (pipe, terminal, regular file).
func (d *Descriptor) Stat() (os.FileInfo, error) {
	if d.file == nil {
		return nil, os.ErrClosed
	}
	return d.file.Stat()
}

// Release transfers ownership of the underlying file to the caller.
// After Release, Close is a no-op. Returns nil if the descriptor was
// already closed or released.
func (d *Descriptor) Release() *os.File {
	file := d.file
	d.file = nil
	return file
}

// Close closes the descriptor. Calling Close again, or after Release,
// does nothing and returns nil.
func (d *Descriptor) Close() error {
	if d.file == nil {
		return nil
	}
	file := d.file
	d.file = nil
	return file.Close()
}

// closeAll closes every descriptor and joins the errors.
func closeAll(descriptors []*Descriptor) error {
	var errs []error
	for _, descriptor := range descriptors {
		if err := descriptor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
