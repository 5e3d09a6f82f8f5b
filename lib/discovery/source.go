// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"fmt"
	"strings"
)

// DefaultName is the socket filename used when none is configured.
const DefaultName = "pfd.sock"

// DefaultDirectory is where local sockets are probed and created.
const DefaultDirectory = "."

// DefaultEnvironment lists the variables the client consults, in
// priority order.
var DefaultEnvironment = []string{"PFC_SOCKET", "PFD_SOCKET"}

// Visibility controls whether local socket names are dot-prefixed.
type Visibility int

const (
	// Both probes the bare name, then the dot-prefixed name. The daemon
	// creates the dot-prefixed name.
	Both Visibility = iota

	// NotHidden uses the bare name only.
	NotHidden

	// Hidden uses the dot-prefixed name only.
	Hidden
)

// String returns the configuration name.
func (v Visibility) String() string {
	switch v {
	case Both:
		return "both"
	case NotHidden:
		return "not-hidden"
	case Hidden:
		return "hidden"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// ParseVisibility parses a configuration name. The empty string is Both.
func ParseVisibility(name string) (Visibility, error) {
	switch name {
	case "", "both":
		return Both, nil
	case "not-hidden", "visible":
		return NotHidden, nil
	case "hidden":
		return Hidden, nil
	default:
		return 0, fmt.Errorf("unknown visibility %q (want both, hidden or not-hidden)", name)
	}
}

// Kind identifies a Source variant.
type Kind int

const (
	KindExplicit Kind = iota + 1
	KindEnvironment
	KindLocalFile
)

func (k Kind) String() string {
	switch k {
	case KindExplicit:
		return "explicit"
	case KindEnvironment:
		return "environment"
	case KindLocalFile:
		return "local-file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Source is one step of a discovery pipeline. Build it with
// [Explicit], [Environment] or [LocalFile]; only the fields of its
// Kind are meaningful.
type Source struct {
	Kind Kind

	// Path is the override for KindExplicit.
	Path string

	// Names are variable names for KindEnvironment and socket filenames
	// for KindLocalFile, in priority order.
	Names []string

	// Directory and Visibility apply to KindLocalFile.
	Directory  string
	Visibility Visibility
}

// Explicit returns a source that yields path unconditionally.
func Explicit(path string) Source {
	return Source{Kind: KindExplicit, Path: path}
}

// Environment returns a source that probes the named variables in order.
func Environment(names ...string) Source {
	return Source{Kind: KindEnvironment, Names: names}
}

// LocalFile returns a source that probes names in directory under the
// visibility policy. An empty directory means DefaultDirectory.
func LocalFile(directory string, visibility Visibility, names ...string) Source {
	return Source{Kind: KindLocalFile, Directory: directory, Visibility: visibility, Names: names}
}

// candidates returns the paths a LocalFile source probes, in order.
func (s Source) candidates() []string {
	var paths []string
	for _, name := range s.Names {
		switch s.Visibility {
		case NotHidden:
			paths = append(paths, s.join(name))
		case Hidden:
			paths = append(paths, s.join(hidden(name)))
		default:
			paths = append(paths, s.join(name))
			if hidden(name) != name {
				paths = append(paths, s.join(hidden(name)))
			}
		}
	}
	return paths
}

// join places name in the source directory. Paths are kept in the
// "./name" form rather than cleaned, so the default endpoint reads as
// ./.pfd.sock in logs and errors.
func (s Source) join(name string) string {
	directory := s.Directory
	if directory == "" {
		directory = DefaultDirectory
	}
	if strings.HasSuffix(directory, "/") {
		return directory + name
	}
	return directory + "/" + name
}

func hidden(name string) string {
	if strings.HasPrefix(name, ".") {
		return name
	}
	return "." + name
}
