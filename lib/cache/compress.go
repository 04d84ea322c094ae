// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a stored value is compressed. The tag is
// the first byte of every stored value, so the values are a storage
// format: changing them requires bumping SchemaVersion.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as used in configuration.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// errIncompressible reports that compression would not shrink the
// input; the value is then stored uncompressed.
var errIncompressible = errors.New("data is incompressible")

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

// encodeValue frames data as [tag][uvarint uncompressed size][payload].
// Incompressible data is stored with CompressionNone regardless of
// the requested algorithm.
func encodeValue(data []byte, compression Compression) ([]byte, error) {
	payload := data
	tag := compression
	switch compression {
	case CompressionNone:
	case CompressionLZ4:
		compressed, err := compressLZ4(data)
		if errors.Is(err, errIncompressible) {
			tag = CompressionNone
		} else if err != nil {
			return nil, err
		} else {
			payload = compressed
		}
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) < len(data) {
			payload = compressed
		} else {
			tag = CompressionNone
		}
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}

	framed := make([]byte, 1, 1+binary.MaxVarintLen64+len(payload))
	framed[0] = byte(tag)
	framed = binary.AppendUvarint(framed, uint64(len(data)))
	return append(framed, payload...), nil
}

// decodeValue reverses encodeValue.
func decodeValue(framed []byte) ([]byte, error) {
	if len(framed) < 2 {
		return nil, errors.New("stored value is truncated")
	}
	tag := Compression(framed[0])
	size, headerLength := binary.Uvarint(framed[1:])
	if headerLength <= 0 {
		return nil, errors.New("stored value has a malformed size header")
	}
	payload := framed[1+headerLength:]

	switch tag {
	case CompressionNone:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("stored value: size %d does not match header %d", len(payload), size)
		}
		return payload, nil
	case CompressionLZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(payload, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint64(read) != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return destination, nil
	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint64(len(result)) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("stored value has unknown compression %s", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}
