// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration for
// prefork's wire messages.
//
// Every message that crosses the client→daemon socket is CBOR. This
// package holds the encoder and decoder modes so that the client and
// the daemon encode identically without duplicating configuration.
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
//
// Everything read from the socket comes from another process, so the
// only decoder is strict:
//
//	err = codec.UnmarshalStrict(data, &value)
//
// # Struct Tag Rules
//
// Wire types carry `cbor` struct tags only. A type that is also shown
// to humans (CLI output, logs) is formatted explicitly rather than
// JSON-tagged.
package codec
