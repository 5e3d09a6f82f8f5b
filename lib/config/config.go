// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/prefork/lib/discovery"
	"github.com/bureau-foundation/prefork/lib/fdpass"
	"github.com/bureau-foundation/prefork/lib/ipc"
)

// Environment variables naming a configuration file.
const (
	ClientConfigEnv = "PFC_CONFIG"
	DaemonConfigEnv = "PFD_CONFIG"
)

// Config is the configuration shared by pfc and pfd.
type Config struct {
	// Socket configures endpoint discovery and the socket type.
	Socket SocketConfig `yaml:"socket" json:"socket"`

	// Client configures pfc only.
	Client ClientConfig `yaml:"client" json:"client"`
}

// SocketConfig configures where the endpoint lives.
type SocketConfig struct {
	// Names are socket filenames probed by the client in order. The
	// daemon creates the first.
	// Default: [pfd.sock]
	Names []string `yaml:"names" json:"names"`

	// Visibility is "both", "hidden" or "not-hidden".
	// Default: both
	Visibility string `yaml:"visibility" json:"visibility"`

	// Directory holds the local socket files.
	// Default: . (the working directory)
	Directory string `yaml:"directory" json:"directory"`

	// Network is "auto", "packet" or "datagram". The daemon treats
	// auto as packet.
	// Default: auto
	Network string `yaml:"network" json:"network"`

	// Environment lists variables the client consults before local
	// files. An explicit empty list disables the lookup.
	// Default: [PFC_SOCKET, PFD_SOCKET]
	Environment []string `yaml:"environment" json:"environment"`
}

// ClientConfig configures pfc.
type ClientConfig struct {
	// Compression is "auto", "none", "lz4" or "zstd".
	// Default: auto
	Compression string `yaml:"compression" json:"compression"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Socket: SocketConfig{
			Names:       []string{discovery.DefaultName},
			Visibility:  discovery.Both.String(),
			Directory:   discovery.DefaultDirectory,
			Network:     fdpass.NetworkAuto.String(),
			Environment: slices.Clone(discovery.DefaultEnvironment),
		},
		Client: ClientConfig{
			Compression: ipc.CompressionAuto.String(),
		},
	}
}

// Resolve loads configuration from flagPath when non-empty, else from
// the file named by envVar, else returns Default. The result is
// validated.
func Resolve(flagPath, envVar string) (*Config, error) {
	path := flagPath
	if path == "" && envVar != "" {
		path = os.Getenv(envVar)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile loads configuration from path over the defaults. Fields the
// file omits keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// loadFile merges one configuration file into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		// An empty file decodes to io.EOF and leaves the defaults.
		if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in the socket
// directory.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Socket.Directory = expandVars(c.Socket.Directory, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors and reports all of them.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Socket.Names) == 0 {
		errs = append(errs, errors.New("socket.names must not be empty"))
	}
	for i, name := range c.Socket.Names {
		if name == "" || strings.Contains(name, "/") {
			errs = append(errs, fmt.Errorf("socket.names[%d] must be a bare filename, got %q", i, name))
		}
	}
	if _, err := discovery.ParseVisibility(c.Socket.Visibility); err != nil {
		errs = append(errs, fmt.Errorf("socket.visibility: %w", err))
	}
	if _, err := fdpass.ParseNetwork(c.Socket.Network); err != nil {
		errs = append(errs, fmt.Errorf("socket.network: %w", err))
	}
	for i, name := range c.Socket.Environment {
		if name == "" || strings.Contains(name, "=") {
			errs = append(errs, fmt.Errorf("socket.environment[%d] is not a variable name: %q", i, name))
		}
	}
	if _, err := ipc.ParseCompression(c.Client.Compression); err != nil {
		errs = append(errs, fmt.Errorf("client.compression: %w", err))
	}

	return errors.Join(errs...)
}

// Discovery returns the discovery settings.
func (c *Config) Discovery() (discovery.Settings, error) {
	visibility, err := discovery.ParseVisibility(c.Socket.Visibility)
	if err != nil {
		return discovery.Settings{}, err
	}
	return discovery.Settings{
		Directory:   c.Socket.Directory,
		Names:       c.Socket.Names,
		Visibility:  visibility,
		Environment: c.Socket.Environment,
	}, nil
}

// Network returns the configured socket type.
func (c *Config) Network() (fdpass.Network, error) {
	return fdpass.ParseNetwork(c.Socket.Network)
}

// Compression returns the client's payload compression.
func (c *Config) Compression() (ipc.Compression, error) {
	return ipc.ParseCompression(c.Client.Compression)
}
