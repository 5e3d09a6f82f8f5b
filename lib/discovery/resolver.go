// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrEndpointNotFound means no source in the pipeline produced a path.
var ErrEndpointNotFound = errors.New("no pfd socket found")

// Endpoint is a resolved socket path and the kind of source that
// produced it.
type Endpoint struct {
	Path   string
	Source Kind

	// Variable is the environment variable that matched, for
	// KindEnvironment.
	Variable string
}

// Resolver evaluates Sources in order and stops at the first hit.
type Resolver struct {
	Sources []Source

	// Logger receives a debug record for each hit. Nil discards.
	Logger *slog.Logger

	// LookupEnv and Stat default to os.LookupEnv and os.Stat.
	LookupEnv func(string) (string, bool)
	Stat      func(string) (os.FileInfo, error)
}

// Resolve returns the first endpoint produced by the pipeline, or
// ErrEndpointNotFound.
func (r *Resolver) Resolve() (Endpoint, error) {
	lookupEnv := r.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, source := range r.Sources {
		switch source.Kind {
		case KindExplicit:
			if source.Path == "" {
				continue
			}
			logger.Debug("using explicit socket", "socket_path", source.Path)
			return Endpoint{Path: source.Path, Source: KindExplicit}, nil

		case KindEnvironment:
			for _, name := range source.Names {
				value, ok := lookupEnv(name)
				if !ok || value == "" {
					continue
				}
				logger.Debug("using socket from environment", "variable", name, "socket_path", value)
				return Endpoint{Path: value, Source: KindEnvironment, Variable: name}, nil
			}

		case KindLocalFile:
			for _, path := range source.candidates() {
				if _, err := stat(path); err != nil {
					continue
				}
				logger.Debug("found local socket", "socket_path", path)
				return Endpoint{Path: path, Source: KindLocalFile}, nil
			}

		default:
			return Endpoint{}, fmt.Errorf("discovery source has unknown kind %v", source.Kind)
		}
	}
	return Endpoint{}, ErrEndpointNotFound
}

// CreatePath returns the path a daemon listens on for a LocalFile
// source: the first name, dot-prefixed under Hidden and Both. It never
// checks the filesystem.
func CreatePath(source Source) (string, error) {
	if source.Kind != KindLocalFile {
		return "", fmt.Errorf("cannot create an endpoint from a %v source", source.Kind)
	}
	if len(source.Names) == 0 {
		return "", errors.New("no socket names configured")
	}
	name := source.Names[0]
	if source.Visibility != NotHidden {
		name = hidden(name)
	}
	return source.join(name), nil
}
