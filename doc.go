// Package ethers provides secp256k1 signing-key primitives for
// Ethereum-style wallets: private-key storage, public-key derivation,
// deterministic (RFC6979) recoverable ECDSA signing, signature-based
// public-key recovery, ECDH shared secrets, and raw curve point
// addition.
//
// All byte-valued parameters accept either a raw []byte or its
// canonical 0x-prefixed lowercase hex string; all byte-valued results
// are returned as fixed-width 0x-hex strings (32 bytes for r/s, 33 or
// 65 bytes for public keys).
//
// Every operation is a bounded synchronous computation with no shared
// mutable state, so a single SigningKey is safe for unrestricted
// concurrent use.
package ethers
