package ethers

import (
	"runtime"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/sevenqinlittle/ethers.js/hexutil"
)

// SigningKey holds a secp256k1 private key and performs every signing
// primitive the wallet layers build on. The key is validated once at
// construction and immutable afterwards; both public key encodings are
// derived up front and cached to avoid recomputation.
type SigningKey struct {
	privateKey          string
	publicKey           string
	compressedPublicKey string
}

// NewSigningKey constructs a SigningKey from a 32-byte private key,
// given as raw bytes or a 0x-hex string. Inputs of any other length
// are rejected; no curve-order range check is performed here.
func NewSigningKey(key any) (*SigningKey, error) {
	b, err := hexutil.Arrayify(key, "privateKey")
	if err != nil {
		return nil, newSecretArgumentError("privateKey", ErrInvalidPrivateKey)
	}
	defer secureZero(b)

	if len(b) != 32 {
		return nil, newSecretArgumentError("privateKey", ErrInvalidPrivateKey)
	}

	priv, pub := btcec.PrivKeyFromBytes(b)
	defer priv.Zero()

	return &SigningKey{
		privateKey:          hexutil.Encode(b),
		publicKey:           hexutil.Encode(pub.SerializeUncompressed()),
		compressedPublicKey: hexutil.Encode(pub.SerializeCompressed()),
	}, nil
}

// PrivateKey returns the private key as a 0x-hex string (32 bytes).
func (k *SigningKey) PrivateKey() string {
	return k.privateKey
}

// PublicKey returns the uncompressed public key as a 0x-hex string
// (65 bytes, 0x04 prefix).
func (k *SigningKey) PublicKey() string {
	return k.publicKey
}

// CompressedPublicKey returns the compressed public key as a 0x-hex
// string (33 bytes, 0x02 or 0x03 prefix).
func (k *SigningKey) CompressedPublicKey() string {
	return k.compressedPublicKey
}

// priv materializes the btcec private key. Callers must Zero it when
// done.
func (k *SigningKey) priv() *btcec.PrivateKey {
	b := hexutil.MustDecode(k.privateKey)
	defer secureZero(b)
	priv, _ := btcec.PrivKeyFromBytes(b)
	return priv
}

// Sign produces a deterministic (RFC6979) ECDSA signature over a
// 32-byte digest. The digest must already be hashed by the caller;
// this method never hashes. The signature is canonicalized to the
// low-s form and carries v in the legacy 27/28 convention.
//
// Sign is a pure computation and safe to call concurrently.
func (k *SigningKey) Sign(digest any) (*Signature, error) {
	d, err := hexutil.Arrayify(digest, "digest")
	if err != nil {
		return nil, NewArgumentError("digest", "", ErrInvalidDigest)
	}
	if len(d) != 32 {
		return nil, NewArgumentError("digest", hexutil.Encode(d), ErrInvalidDigest)
	}

	priv := k.priv()
	defer priv.Zero()

	sig := ecdsa.Sign(priv, d)
	r, s := extractRSFromDER(sig.Serialize())

	// Normalize to low-S. Negating S flips which of the two candidate
	// public keys the signature recovers to.
	recovery := byte(0)
	if s.IsOverHalfOrder() {
		s.Negate()
		recovery = 1
	}

	var rBytes, sBytes [32]byte
	r.PutBytesUnchecked(rBytes[:])
	s.PutBytesUnchecked(sBytes[:])

	if !checkRecovery(d, rBytes, sBytes, recovery, priv.PubKey()) {
		recovery = 1 - recovery
	}

	return &Signature{
		R: hexutil.Encode(rBytes[:]),
		S: hexutil.Encode(sBytes[:]),
		V: legacyVOffset + int(recovery),
	}, nil
}

// ComputeSharedSecret computes the ECDH shared secret between this key
// and another party's key (any supported encoding; a private key is
// first converted to its public key). The result is the raw 32-byte
// x-coordinate of the shared point; callers must hash it before using
// it as a symmetric key.
func (k *SigningKey) ComputeSharedSecret(other any) (string, error) {
	pub, err := parsePublicKey(other, "other")
	if err != nil {
		return "", err
	}

	priv := k.priv()
	defer priv.Zero()

	var point, result btcec.JacobianPoint
	pub.AsJacobian(&point)
	btcec.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()

	x := result.X.Bytes()
	return hexutil.Encode(x[:]), nil
}

// ComputePublicKey normalizes any supported key encoding to a public
// key. Accepted inputs, dispatched on decoded length:
//
//	32 bytes - private key (scalar * G)
//	64 bytes - raw point, x || y with no prefix
//	33 bytes - compressed point (0x02/0x03 prefix)
//	65 bytes - uncompressed point (0x04 prefix)
//
// The result is re-encoded per the compressed flag.
func ComputePublicKey(key any, compressed bool) (string, error) {
	pub, err := parsePublicKey(key, "key")
	if err != nil {
		return "", err
	}
	return encodePoint(pub, compressed), nil
}

// RecoverPublicKey recovers the uncompressed public key that produced
// the given signature over a 32-byte digest. The signature may be in
// any form ParseSignature accepts.
func RecoverPublicKey(digest, signature any) (string, error) {
	d, err := hexutil.Arrayify(digest, "digest")
	if err != nil {
		return "", NewArgumentError("digest", "", ErrInvalidDigest)
	}
	if len(d) != 32 {
		return "", NewArgumentError("digest", hexutil.Encode(d), ErrInvalidDigest)
	}

	sig, err := ParseSignature(signature)
	if err != nil {
		return "", err
	}

	// btcec compact form puts the recovery indicator first:
	// V || R || S with V = 27 + recovery bit.
	compact := make([]byte, 65)
	compact[0] = byte(sig.V)
	copy(compact[1:33], hexutil.MustDecode(sig.R))
	copy(compact[33:65], hexutil.MustDecode(sig.S))

	pub, _, err := ecdsa.RecoverCompact(compact, d)
	if err != nil {
		return "", NewArgumentError("signature", sig.Compact(), ErrInvalidSignature)
	}
	return encodePoint(pub, false), nil
}

// AddPoints adds two curve points (each in any supported key encoding)
// and re-encodes the sum per the compressed flag. Wallet derivation
// uses this to combine a parent public key with a tweak point without
// touching the parent's private scalar.
func AddPoints(p0, p1 any, compressed bool) (string, error) {
	pub0, err := parsePublicKey(p0, "p0")
	if err != nil {
		return "", err
	}
	pub1, err := parsePublicKey(p1, "p1")
	if err != nil {
		return "", err
	}

	var j0, j1, sum btcec.JacobianPoint
	pub0.AsJacobian(&j0)
	pub1.AsJacobian(&j1)
	btcec.AddNonConst(&j0, &j1, &sum)

	// The point at infinity is represented by a zero Z value.
	if sum.Z.IsZero() {
		return "", NewArgumentError("p1", "", ErrPointAtInfinity)
	}
	sum.ToAffine()

	return encodePoint(btcec.NewPublicKey(&sum.X, &sum.Y), compressed), nil
}

// parsePublicKey is the single normalization routine behind every
// polymorphic key parameter. It dispatches on decoded byte length; a
// prefix byte mismatched to its length is a parse failure from btcec.
func parsePublicKey(key any, name string) (*btcec.PublicKey, error) {
	b, err := hexutil.Arrayify(key, name)
	if err != nil {
		return nil, NewArgumentError(name, "", ErrInvalidPublicKey)
	}

	switch len(b) {
	case 32:
		// Private key: derive scalar * G.
		priv, pub := btcec.PrivKeyFromBytes(b)
		priv.Zero()
		secureZero(b)
		return pub, nil
	case 64:
		// Raw point: synthesize the uncompressed form.
		raw := make([]byte, 65)
		raw[0] = 0x04
		copy(raw[1:], b)
		pub, err := btcec.ParsePubKey(raw)
		if err != nil {
			return nil, NewArgumentError(name, hexutil.Encode(b), ErrInvalidPublicKey)
		}
		return pub, nil
	default:
		pub, err := btcec.ParsePubKey(b)
		if err != nil {
			return nil, NewArgumentError(name, hexutil.Encode(b), ErrInvalidPublicKey)
		}
		return pub, nil
	}
}

// encodePoint serializes a public key per the compressed flag.
func encodePoint(pub *btcec.PublicKey, compressed bool) string {
	if compressed {
		return hexutil.Encode(pub.SerializeCompressed())
	}
	return hexutil.Encode(pub.SerializeUncompressed())
}

// extractRSFromDER extracts the R and S scalars from a DER-encoded
// ECDSA signature (0x30 len 0x02 rlen r 0x02 slen s).
func extractRSFromDER(der []byte) (*btcec.ModNScalar, *btcec.ModNScalar) {
	offset := 2

	offset++ // R integer tag
	rLen := int(der[offset])
	offset++
	rBytes := der[offset : offset+rLen]
	offset += rLen

	offset++ // S integer tag
	sLen := int(der[offset])
	offset++
	sBytes := der[offset : offset+sLen]

	// DER prepends 0x00 to positive values with the high bit set.
	if len(rBytes) == 33 && rBytes[0] == 0 {
		rBytes = rBytes[1:]
	}
	if len(sBytes) == 33 && sBytes[0] == 0 {
		sBytes = sBytes[1:]
	}

	rPadded := make([]byte, 32)
	sPadded := make([]byte, 32)
	copy(rPadded[32-len(rBytes):], rBytes)
	copy(sPadded[32-len(sBytes):], sBytes)

	r := new(btcec.ModNScalar)
	s := new(btcec.ModNScalar)
	r.SetByteSlice(rPadded)
	s.SetByteSlice(sPadded)
	return r, s
}

// secureZero wipes sensitive data from memory.
func secureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// checkRecovery reports whether the recovery bit reproduces the
// expected public key.
func checkRecovery(digest []byte, r, s [32]byte, recovery byte, expected *btcec.PublicKey) bool {
	compact := make([]byte, 65)
	compact[0] = legacyVOffset + recovery
	copy(compact[1:33], r[:])
	copy(compact[33:65], s[:])

	recovered, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return false
	}
	return recovered.IsEqual(expected)
}
