// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the pfc and pfd
// binaries. These cover the raw stderr output that happens outside
// the structured logger: reporting a fatal error from main() and
// translating a returned error into the process exit status.
package process
