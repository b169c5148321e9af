package ethers

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/sevenqinlittle/ethers.js/hexutil"
)

// legacyVOffset is the historical offset applied to the ECDSA recovery
// bit. Verifiers that predate bare recovery ids expect v = 27 or 28 and
// the convention must be reproduced exactly for compatibility.
const legacyVOffset = 27

// Signature is a recoverable ECDSA signature over secp256k1.
// R and S are fixed-width 32-byte values in 0x-hex form and V carries
// the recovery indicator in the legacy byte convention (27 or 28).
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V int    `json:"v"`
}

// RecoveryParam returns the bare recovery bit (0 or 1) for the
// signature, stripping the legacy offset from V.
func (sig *Signature) RecoveryParam() int {
	return sig.V - legacyVOffset
}

// Compact returns the 65-byte R || S || V serialization as 0x-hex,
// with V in the legacy 27/28 convention.
func (sig *Signature) Compact() string {
	out := make([]byte, 65)
	copy(out[0:32], hexutil.MustDecode(sig.R))
	copy(out[32:64], hexutil.MustDecode(sig.S))
	out[64] = byte(sig.V)
	return hexutil.Encode(out)
}

// ParseSignature normalizes any supported signature representation to
// a validated *Signature. Accepted inputs:
//
//   - *Signature or Signature with 32-byte r/s and a recovery
//     indicator in either encoding (bare 0/1 or legacy 27/28)
//   - 65 bytes (or the 0x-hex string thereof) as R || S || V
//
// The returned value always carries V in the legacy 27/28 convention.
// A 64-byte r||s blob has no recovery indicator and is rejected.
func ParseSignature(raw any) (*Signature, error) {
	switch v := raw.(type) {
	case *Signature:
		return normalizeSignature(v)
	case Signature:
		return normalizeSignature(&v)
	}

	b, err := hexutil.Arrayify(raw, "signature")
	if err != nil {
		return nil, NewArgumentError("signature", "", ErrInvalidSignature)
	}
	if len(b) != 65 {
		return nil, NewArgumentError("signature", hexutil.Encode(b), ErrInvalidSignature)
	}
	sig := &Signature{
		R: hexutil.Encode(b[0:32]),
		S: hexutil.Encode(b[32:64]),
		V: int(b[64]),
	}
	return normalizeSignature(sig)
}

// normalizeSignature validates r/s/v and maps the recovery indicator
// to the legacy convention.
func normalizeSignature(sig *Signature) (*Signature, error) {
	r, err := hexutil.Arrayify(sig.R, "signature.r")
	if err != nil || len(r) != 32 {
		return nil, NewArgumentError("signature", sig.R, ErrInvalidSignature)
	}
	s, err := hexutil.Arrayify(sig.S, "signature.s")
	if err != nil || len(s) != 32 {
		return nil, NewArgumentError("signature", sig.S, ErrInvalidSignature)
	}

	if _, _, err := parseScalars(r, s); err != nil {
		return nil, err
	}

	v := sig.V
	if v == 0 || v == 1 {
		v += legacyVOffset
	}
	if v != legacyVOffset && v != legacyVOffset+1 {
		return nil, NewArgumentError("signature", hexutil.Encode([]byte{byte(sig.V)}), ErrInvalidSignature)
	}

	return &Signature{R: hexutil.Encode(r), S: hexutil.Encode(s), V: v}, nil
}

// parseScalars converts 32-byte r and s into mod-N scalars, rejecting
// zero and overflowing values.
func parseScalars(rBytes, sBytes []byte) (*btcec.ModNScalar, *btcec.ModNScalar, error) {
	r := new(btcec.ModNScalar)
	s := new(btcec.ModNScalar)

	if overflow := r.SetByteSlice(rBytes); overflow {
		return nil, nil, NewArgumentError("signature", hexutil.Encode(rBytes), ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(sBytes); overflow {
		return nil, nil, NewArgumentError("signature", hexutil.Encode(sBytes), ErrInvalidSignature)
	}
	if r.IsZero() || s.IsZero() {
		return nil, nil, NewArgumentError("signature", "", ErrInvalidSignature)
	}
	return r, s, nil
}
