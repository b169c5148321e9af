// Package hexutil implements the canonical 0x-prefixed hex encoding
// used for all byte-valued inputs and outputs of this library.
package hexutil

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Has0xPrefix returns true if the string has a 0x prefix.
func Has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Encode encodes bytes to a lowercase hex string with 0x prefix.
func Encode(b []byte) string {
	return fmt.Sprintf("0x%x", b)
}

// Decode decodes a 0x-prefixed hex string to []byte.
func Decode(s string) ([]byte, error) {
	if !Has0xPrefix(s) {
		return nil, fmt.Errorf("hex string missing 0x prefix: %q", s)
	}
	s = s[2:]
	if s == "" {
		return []byte{}, nil
	}
	// An odd digit count is a malformed value, not a short one.
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string (%d digits)", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

// MustDecode decodes a 0x-prefixed hex string and panics on failure.
// For use with hardcoded constants and test vectors.
func MustDecode(s string) []byte {
	b, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Arrayify normalizes a bytes-like value (raw []byte or 0x-hex string)
// to a fresh byte slice. The name is used in error messages only; the
// value itself is never echoed so callers can pass secret material.
func Arrayify(v any, name string) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		out := make([]byte, len(val))
		copy(out, val)
		return out, nil
	case string:
		b, err := Decode(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("argument %q: not a valid 0x-hex string", name)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("argument %q: unsupported type %T (want []byte or hex string)", name, v)
	}
}
