// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import "slices"

// Settings is the configurable part of discovery. The zero value means
// the defaults: pfd.sock in the current directory, both visibilities,
// PFC_SOCKET then PFD_SOCKET.
type Settings struct {
	Directory   string
	Names       []string
	Visibility  Visibility
	Environment []string
}

func (s Settings) names() []string {
	if len(s.Names) == 0 {
		return []string{DefaultName}
	}
	return s.Names
}

func (s Settings) environment() []string {
	if s.Environment == nil {
		return slices.Clone(DefaultEnvironment)
	}
	return s.Environment
}

// Local returns the LocalFile source for these settings.
func (s Settings) Local() Source {
	return LocalFile(s.Directory, s.Visibility, s.names()...)
}

// ClientPipeline returns the client's discovery order: the explicit
// override when non-empty, then the environment, then local files.
func ClientPipeline(explicit string, settings Settings) []Source {
	var sources []Source
	if explicit != "" {
		sources = append(sources, Explicit(explicit))
	}
	return append(sources, Environment(settings.environment()...), settings.Local())
}

// DaemonPath returns the path the daemon listens on. The environment is
// not consulted.
func DaemonPath(settings Settings) string {
	path, _ := CreatePath(settings.Local())
	return path
}
