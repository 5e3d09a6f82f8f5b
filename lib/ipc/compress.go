// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a frame body is compressed. The numeric
// values are written into the frame header; changing them breaks wire
// compatibility between client and daemon versions.
type Compression uint8

const (
	// CompressionNone sends the CBOR body as-is.
	CompressionNone Compression = 0

	// CompressionLZ4 is LZ4 block compression. Cheapest to decode.
	CompressionLZ4 Compression = 1

	// CompressionZstd is zstd at the default level. Environments are
	// repetitive text (long PATH-like values), which zstd handles well.
	CompressionZstd Compression = 2

	// CompressionAuto is an encoder-side choice, never written to a
	// frame: send uncompressed unless the frame would exceed
	// MaxMessageSize, then try zstd.
	CompressionAuto Compression = 0xff
)

// String returns the configuration name of a compression setting.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionAuto:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a configuration name. The empty string
// selects CompressionAuto.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want auto, none, lz4 or zstd)", name)
	}
}

// errIncompressible means compressing would not shrink the body. The
// encoder falls back to CompressionNone.
var errIncompressible = errors.New("data is incompressible")

// zstd.Encoder and zstd.Decoder are safe for concurrent use and costly
// to build, so one of each serves the whole process.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("ipc: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxDecodedSize),
	)
	if err != nil {
		panic("ipc: zstd decoder initialization failed: " + err.Error())
	}
}

func compressBody(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return destination[:written], nil
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
}

// decompressBody reverses compressBody. decodedSize comes from the
// frame header and must match the output exactly.
func decompressBody(body []byte, compression Compression, decodedSize int) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if len(body) != decodedSize {
			return nil, fmt.Errorf("%w: body is %d bytes, header declares %d",
				ErrLengthMismatch, len(body), decodedSize)
		}
		return body, nil
	case CompressionLZ4:
		destination := make([]byte, decodedSize)
		read, err := lz4.UncompressBlock(body, destination)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrMalformed, err)
		}
		if read != decodedSize {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, header declares %d",
				ErrLengthMismatch, read, decodedSize)
		}
		return destination, nil
	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(body, make([]byte, 0, decodedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrMalformed, err)
		}
		if len(result) != decodedSize {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, header declares %d",
				ErrLengthMismatch, len(result), decodedSize)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownCompression, uint8(compression))
	}
}
