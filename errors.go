package ethers

import (
	"errors"
	"fmt"
)

// Sentinel errors - argument validation
var (
	ErrInvalidPrivateKey = errors.New("ethers: private key must be exactly 32 bytes")
	ErrInvalidDigest     = errors.New("ethers: digest must be exactly 32 bytes")
	ErrInvalidPublicKey  = errors.New("ethers: invalid public key encoding")
	ErrInvalidAddress    = errors.New("ethers: invalid address")
	ErrBadChecksum       = errors.New("ethers: bad address checksum")
)

// Sentinel errors - cryptographic operations
var (
	ErrInvalidSignature = errors.New("ethers: invalid signature")
	ErrPointAtInfinity  = errors.New("ethers: point addition yields the point at infinity")
)

// RedactedValue replaces private key material in error payloads.
// Secret bytes must never be echoed in error messages or logs.
const RedactedValue = "[REDACTED]"

// ArgumentError reports a parameter that failed validation before any
// cryptographic operation ran. Value holds the offending input, or
// RedactedValue when the input is (or derives from) secret material.
type ArgumentError struct {
	Name  string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid argument %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("invalid argument %q (value=%s): %v", e.Name, e.Value, e.Err)
}

// Unwrap implements the errors.Unwrap interface for error chaining.
func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// NewArgumentError creates an ArgumentError for the given parameter.
func NewArgumentError(name, value string, err error) *ArgumentError {
	return &ArgumentError{Name: name, Value: value, Err: err}
}

// newSecretArgumentError creates an ArgumentError whose value is redacted.
func newSecretArgumentError(name string, err error) *ArgumentError {
	return &ArgumentError{Name: name, Value: RedactedValue, Err: err}
}
