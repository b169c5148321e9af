package hdkey

import (
	"errors"
)

var (
	ErrInvalidSeed                = errors.New("hdkey: seed must be between 16 and 64 bytes")
	ErrInvalidKey                 = errors.New("hdkey: key is invalid")
	ErrInvalidChild               = errors.New("hdkey: derived key is zero or overflows, try the next index")
	ErrDerivingHardenedFromPublic = errors.New("hdkey: cannot derive a hardened key from a public key")
	ErrMaxDepthExceeded           = errors.New("hdkey: max derivation depth exceeded")
	ErrBadChecksum                = errors.New("hdkey: bad extended key checksum")
	ErrInvalidKeyLen              = errors.New("hdkey: serialized extended key length is invalid")
	ErrInvalidPrivateFlag         = errors.New("hdkey: key private flag does not match version")
	ErrNeuteredKey                = errors.New("hdkey: extended key carries no private material")
)
