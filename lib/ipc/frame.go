// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"

	"github.com/bureau-foundation/prefork/lib/codec"
)

// MaxMessageSize bounds a whole frame, header included. The daemon
// reads each message into a buffer of exactly this size, so a larger
// frame could never be received intact.
const MaxMessageSize = 16 * 1024

// HeaderSize is the fixed frame header length.
const HeaderSize = 28

// Version is the frame format version written by Encode.
const Version = 1

// maxDecodedSize caps the decompressed body. A frame is at most 16 KiB
// on the wire; this keeps a compression bomb from costing more than a
// megabyte.
const maxDecodedSize = 1 << 20

var magic = [2]byte{'p', 'f'}

const digestSize = 16

// digestKey is the BLAKE3 keyed-hash key for frame digests, derived
// with HKDF under a frame-specific info string. Domain separation
// keeps a frame digest from ever matching a hash of the same bytes
// computed for another purpose.
var digestKey = deriveKey(digestKeyInfo)

var (
	keyMaterial   = []byte("prefork")
	digestKeyInfo = []byte("prefork.ipc.frame.v1")
)

// deriveKey expands keyMaterial into a 32-byte key bound to info.
func deriveKey(info []byte) [32]byte {
	var key [32]byte
	reader := hkdf.New(sha256.New, keyMaterial, nil, info)
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		panic("ipc: HKDF key derivation failed: " + err.Error())
	}
	return key
}

// Sentinel errors carried inside *CodecError.
var (
	ErrMessageTooLarge    = errors.New("message exceeds size limit")
	ErrTruncated          = errors.New("message truncated")
	ErrBadMagic           = errors.New("not a prefork frame")
	ErrUnsupportedVersion = errors.New("unsupported frame version")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrLengthMismatch     = errors.New("declared length does not match content")
	ErrChecksumMismatch   = errors.New("body checksum mismatch")
	ErrMalformed          = errors.New("malformed body")
)

// CodecError reports a failure to encode or decode an execution
// context. Err wraps one of the sentinel errors above.
type CodecError struct {
	// Op is "encode" or "decode".
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return e.Op + " execution context: " + e.Err.Error()
}

func (e *CodecError) Unwrap() error { return e.Err }

// Encode serializes c into one frame. compression selects the body
// encoding; CompressionAuto compresses only when needed to fit.
func Encode(c ExecutionContext, compression Compression) ([]byte, error) {
	body, err := codec.Marshal(c)
	if err != nil {
		return nil, &CodecError{Op: "encode", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	tag := compression
	if compression == CompressionAuto {
		tag = CompressionNone
		if HeaderSize+len(body) > MaxMessageSize {
			tag = CompressionZstd
		}
	}

	wire, err := compressBody(body, tag)
	if errors.Is(err, errIncompressible) {
		tag, wire = CompressionNone, body
	} else if err != nil {
		return nil, &CodecError{Op: "encode", Err: err}
	}

	if HeaderSize+len(wire) > MaxMessageSize {
		return nil, &CodecError{Op: "encode", Err: fmt.Errorf("%w: %d byte frame, limit %d",
			ErrMessageTooLarge, HeaderSize+len(wire), MaxMessageSize)}
	}

	frame := make([]byte, HeaderSize, HeaderSize+len(wire))
	copy(frame[0:2], magic[:])
	frame[2] = Version
	frame[3] = byte(tag)
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(wire)))
	binary.BigEndian.PutUint32(frame[8:12], uint32(len(body)))
	digest := bodyDigest(body)
	copy(frame[12:HeaderSize], digest[:])
	return append(frame, wire...), nil
}

// Decode parses one frame produced by Encode. It never returns a
// partially-populated context: any inconsistency is a *CodecError.
func Decode(data []byte) (ExecutionContext, error) {
	body, err := decodeBody(data)
	if err != nil {
		return ExecutionContext{}, &CodecError{Op: "decode", Err: err}
	}

	var wire wireContext
	if err := codec.UnmarshalStrict(body, &wire); err != nil {
		return ExecutionContext{}, &CodecError{Op: "decode", Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	c, err := wire.context()
	if err != nil {
		return ExecutionContext{}, &CodecError{Op: "decode", Err: err}
	}
	return c, nil
}

// wireContext is the decoding view of ExecutionContext. Encode writes
// every key, so an absent or null field marks a frame Encode did not
// produce.
type wireContext struct {
	WorkingDir *string   `cbor:"working_dir"`
	Command    *string   `cbor:"command"`
	Args       *[]string `cbor:"args"`
	Env        *[]EnvVar `cbor:"env"`
}

func (w wireContext) context() (ExecutionContext, error) {
	var missing []string
	if w.WorkingDir == nil {
		missing = append(missing, "working_dir")
	}
	if w.Command == nil {
		missing = append(missing, "command")
	}
	if w.Args == nil {
		missing = append(missing, "args")
	}
	if w.Env == nil {
		missing = append(missing, "env")
	}
	if len(missing) > 0 {
		return ExecutionContext{}, fmt.Errorf("%w: missing or null %s", ErrMalformed, strings.Join(missing, ", "))
	}
	return ExecutionContext{
		WorkingDir: *w.WorkingDir,
		Command:    *w.Command,
		Args:       *w.Args,
		Env:        *w.Env,
	}, nil
}

// Body validates a frame and returns its decoded CBOR body without
// unmarshaling it. The daemon uses it to log a diagnostic rendering
// of payloads at debug level.
func Body(data []byte) ([]byte, error) {
	body, err := decodeBody(data)
	if err != nil {
		return nil, &CodecError{Op: "decode", Err: err}
	}
	return body, nil
}

func decodeBody(data []byte) ([]byte, error) {
	if len(data) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(data), MaxMessageSize)
	}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header is %d", ErrTruncated, len(data), HeaderSize)
	}
	if !bytes.Equal(data[0:2], magic[:]) {
		return nil, fmt.Errorf("%w: magic %x", ErrBadMagic, data[0:2])
	}
	if data[2] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[2])
	}

	tag := Compression(data[3])
	if tag != CompressionNone && tag != CompressionLZ4 && tag != CompressionZstd {
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownCompression, data[3])
	}

	bodyLength := binary.BigEndian.Uint32(data[4:8])
	decodedLength := binary.BigEndian.Uint32(data[8:12])
	wire := data[HeaderSize:]
	if uint64(bodyLength) > uint64(len(wire)) {
		return nil, fmt.Errorf("%w: header declares %d body bytes, %d present",
			ErrTruncated, bodyLength, len(wire))
	}
	if uint64(bodyLength) != uint64(len(wire)) {
		return nil, fmt.Errorf("%w: header declares %d body bytes, %d present",
			ErrLengthMismatch, bodyLength, len(wire))
	}
	if decodedLength > maxDecodedSize {
		return nil, fmt.Errorf("%w: decoded body of %d bytes", ErrMessageTooLarge, decodedLength)
	}

	body, err := decompressBody(wire, tag, int(decodedLength))
	if err != nil {
		return nil, err
	}

	digest := bodyDigest(body)
	if !bytes.Equal(digest[:], data[12:HeaderSize]) {
		return nil, ErrChecksumMismatch
	}
	return body, nil
}

func bodyDigest(body []byte) [digestSize]byte {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("ipc: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(body)

	var digest [digestSize]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}
