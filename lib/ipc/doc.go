// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the execution request carried on the pfc→pfd
// socket and its wire frame. Both cmd/pfc and cmd/pfd import this
// package so the wire type is defined once rather than mirrored.
//
// An [ExecutionContext] is a value: builders return modified copies and
// never share backing arrays with their receiver. [Encode] produces one
// self-contained frame no larger than [MaxMessageSize]; [Decode]
// rejects anything truncated, corrupted or inconsistent with a
// [*CodecError] wrapping one of the sentinel errors, so callers can
// classify failures with errors.Is.
//
// Frame layout (big endian):
//
//	offset  size  field
//	0       2     magic "pf"
//	2       1     version (1)
//	3       1     compression tag (none, lz4, zstd)
//	4       4     body length as sent
//	8       4     decoded body length
//	12      16    BLAKE3 keyed digest of the decoded body
//	28      n     body (CBOR, possibly compressed)
package ipc
