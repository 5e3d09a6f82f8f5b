// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads pfc and pfd configuration.
//
// Configuration is optional. [Resolve] loads the file named by a
// --config flag, or else by the binary's environment variable
// (PFC_CONFIG or PFD_CONFIG), or else returns [Default]. Files ending
// in .json or .jsonc are parsed as JSON with comments and trailing
// commas; anything else is YAML. Unknown keys are errors in both.
//
// After loading, ${HOME} and ${VAR:-default} patterns in the socket
// directory are expanded. No environment variable overrides a value
// set in the file.
//
// Key exports:
//
//   - [Config] -- socket discovery and client settings
//   - [Default] -- the built-in defaults: ./pfd.sock, both visibilities,
//     PFC_SOCKET then PFD_SOCKET
//   - [Resolve], [LoadFile] -- the loading entry points
//   - [Config.Discovery], [Config.Network], [Config.Compression] --
//     typed views for the packages that consume them
package config
