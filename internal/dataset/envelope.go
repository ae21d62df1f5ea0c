package dataset

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxPayloadBytes caps the decompressed size of one dataset payload.
// Compressed datasets come from untrusted documents, so an unbounded
// inflate would let a tiny input allocate arbitrary memory.
const maxPayloadBytes = 256 << 20

// CompressPayload encodes a JSON-serializable value into the compressed
// dataset envelope: the value's JSON bytes, gzip-compressed, then
// base64-encoded. DecompressPayload reverses it byte-identically.
func CompressPayload(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecompressPayload decodes a compressed dataset envelope back into the
// original JSON bytes. The gzip trailer carries a CRC-32 checksum and
// the uncompressed length; both are validated while reading, so any
// truncation or bit corruption surfaces here as ErrCorruptDataset.
func DecompressPayload(encoded string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrCorruptDataset, err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid gzip stream: %v", ErrCorruptDataset, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(io.LimitReader(zr, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDataset, err)
	}
	if len(raw) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: decompressed payload exceeds %d bytes", ErrCorruptDataset, maxPayloadBytes)
	}
	return raw, nil
}
