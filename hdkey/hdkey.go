// Package hdkey implements BIP32-style hierarchical deterministic key
// derivation on top of the signing-key core. Neutered (public-only)
// derivation combines the parent public key with the tweak point via
// raw curve point addition, so a watching wallet never handles a
// private scalar.
package hdkey

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"runtime"

	"github.com/ModChain/base58"
	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // BIP32 fingerprints require RIPEMD-160

	"github.com/sevenqinlittle/ethers.js"
	"github.com/sevenqinlittle/ethers.js/hexutil"
)

const (
	// HardenedKeyStart is the first hardened child index (2^31).
	HardenedKeyStart uint32 = 0x80000000

	// serializedKeyLen is the length of a serialized extended key
	// before the 4-byte checksum:
	// version (4) || depth (1) || fingerprint (4) || child num (4) ||
	// chain code (32) || key data (33)
	serializedKeyLen = 78
)

// masterSecret is the HMAC key for Bitcoin-style master derivation.
var masterSecret = []byte("Bitcoin seed")

// ExtendedKey is a BIP32 extended key. KeyData holds 32 private key
// bytes for private versions and a 33-byte compressed point for public
// ones.
type ExtendedKey struct {
	Version     KeyVersion
	Depth       uint8
	Fingerprint [4]byte
	ChildNumber uint32
	ChainCode   []byte
	KeyData     []byte
}

// NewMaster derives a mainnet master key from a 16-64 byte seed.
func NewMaster(seed []byte) (*ExtendedKey, error) {
	return FromSeed(seed, masterSecret)
}

// FromSeed derives a master key from a seed with a caller-supplied
// HMAC master secret.
func FromSeed(seed, secret []byte) (*ExtendedKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, ErrInvalidSeed
	}

	key, chainCode, err := ckdHMAC(seed, secret)
	if err != nil {
		return nil, err
	}

	return &ExtendedKey{
		Version:   BitcoinMainnetPrivate,
		ChainCode: chainCode,
		KeyData:   key,
	}, nil
}

// Parse decodes a Base58Check xprv/xpub string.
func Parse(s string) (*ExtendedKey, error) {
	bin, err := base58.Bitcoin.Decode(s)
	if err != nil {
		return nil, ErrInvalidKey
	}
	k := &ExtendedKey{}
	return k, k.UnmarshalBinary(bin)
}

// IsPrivate returns true if the key carries private material.
func (k *ExtendedKey) IsPrivate() bool {
	return k.Version.IsPrivate()
}

// Child derives the extended key at index i. A private parent yields a
// private child; a public parent yields a public child. Indexes at or
// above HardenedKeyStart produce hardened children, which only a
// private parent can derive.
//
// On ErrInvalidChild (probability below 1 in 2^127) the caller should
// proceed with the next index, per BIP32.
func (k *ExtendedKey) Child(i uint32) (*ExtendedKey, error) {
	if k.Depth == 0xff {
		return nil, ErrMaxDepthExceeded
	}

	hardened := i >= HardenedKeyStart
	if hardened && !k.IsPrivate() {
		return nil, ErrDerivingHardenedFromPublic
	}

	// Hardened: 0x00 || ser256(parentKey) || ser32(i)
	// Normal:   serP(parentPubKey) || ser32(i)
	seed := make([]byte, 37)
	if hardened {
		copy(seed[1:], k.KeyData)
	} else {
		copy(seed, k.pubKeyBytes())
	}
	binary.BigEndian.PutUint32(seed[33:], i)

	il, chainCode, err := ckdHMAC(seed, k.ChainCode)
	secureZero(seed)
	if err != nil {
		return nil, err
	}
	defer secureZero(il)

	child := &ExtendedKey{
		Version:     k.Version,
		Depth:       k.Depth + 1,
		ChildNumber: i,
		ChainCode:   chainCode,
	}
	copy(child.Fingerprint[:], hash160(k.pubKeyBytes()))

	if k.IsPrivate() {
		// childKey = parse256(IL) + parentKey (mod n)
		var ilScalar, keyScalar btcec.ModNScalar
		ilScalar.SetByteSlice(il)
		keyScalar.SetByteSlice(k.KeyData)
		keyScalar.Add(&ilScalar)
		if keyScalar.IsZero() {
			return nil, ErrInvalidChild
		}

		childKey := keyScalar.Bytes()
		child.KeyData = childKey[:]
		ilScalar.Zero()
		keyScalar.Zero()
		return child, nil
	}

	// childKey = point(parse256(IL)) + parentPubKey. The tweak point
	// and the addition both go through the signing-key core, keeping
	// the parent scalar out of reach.
	ilPoint, err := ethers.ComputePublicKey(il, true)
	if err != nil {
		return nil, ErrInvalidChild
	}
	sum, err := ethers.AddPoints(ilPoint, k.KeyData, true)
	if err != nil {
		return nil, ErrInvalidChild
	}
	child.KeyData = hexutil.MustDecode(sum)
	return child, nil
}

// Derive walks a derivation path, one child at a time.
func (k *ExtendedKey) Derive(path ...uint32) (*ExtendedKey, error) {
	key := k
	var err error
	for _, i := range path {
		key, err = key.Child(i)
		if err != nil {
			return nil, err
		}
	}
	return key, nil
}

// Neuter returns the public-only counterpart of the key. A public key
// is returned unaltered.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	if !k.IsPrivate() {
		return k
	}
	return &ExtendedKey{
		Version:     k.Version.ToPublic(),
		Depth:       k.Depth,
		Fingerprint: k.Fingerprint,
		ChildNumber: k.ChildNumber,
		ChainCode:   k.ChainCode,
		KeyData:     k.pubKeyBytes(),
	}
}

// SigningKey bridges a private extended key into the signing-key core.
func (k *ExtendedKey) SigningKey() (*ethers.SigningKey, error) {
	if !k.IsPrivate() {
		return nil, ErrNeuteredKey
	}
	return ethers.NewSigningKey(k.KeyData)
}

// PublicKey returns the compressed public key as a 0x-hex string.
func (k *ExtendedKey) PublicKey() string {
	return hexutil.Encode(k.pubKeyBytes())
}

// MarshalBinary encodes the key in the standard 82-byte form
// (payload plus 4-byte double-SHA256 checksum).
func (k *ExtendedKey) MarshalBinary() ([]byte, error) {
	var childNum [4]byte
	binary.BigEndian.PutUint32(childNum[:], k.ChildNumber)

	out := make([]byte, 0, serializedKeyLen+4)
	out = append(out, k.Version[:]...)
	out = append(out, k.Depth)
	out = append(out, k.Fingerprint[:]...)
	out = append(out, childNum[:]...)
	out = append(out, k.ChainCode...)
	if k.IsPrivate() {
		out = append(out, 0x00)
		out = paddedAppend(32, out, k.KeyData)
	} else {
		out = append(out, k.pubKeyBytes()...)
	}

	checksum := doubleSHA256(out)[:4]
	return append(out, checksum...), nil
}

// UnmarshalBinary decodes the 82-byte serialized form, verifying the
// checksum and the private flag.
func (k *ExtendedKey) UnmarshalBinary(data []byte) error {
	if len(data) != serializedKeyLen+4 {
		return ErrInvalidKeyLen
	}

	payload := data[:serializedKeyLen]
	checksum := data[serializedKeyLen:]
	if !bytes.Equal(checksum, doubleSHA256(payload)[:4]) {
		return ErrBadChecksum
	}

	copy(k.Version[:], payload[0:4])
	k.Depth = payload[4]
	copy(k.Fingerprint[:], payload[5:9])
	k.ChildNumber = binary.BigEndian.Uint32(payload[9:13])
	k.ChainCode = append([]byte(nil), payload[13:45]...)

	keyData := payload[45:78]
	if k.IsPrivate() {
		if keyData[0] != 0x00 {
			return ErrInvalidPrivateFlag
		}
		k.KeyData = append([]byte(nil), keyData[1:]...)
		return nil
	}

	if _, err := btcec.ParsePubKey(keyData); err != nil {
		return ErrInvalidKey
	}
	k.KeyData = append([]byte(nil), keyData...)
	return nil
}

// String returns the Base58Check xprv/xpub form.
func (k *ExtendedKey) String() string {
	bin, _ := k.MarshalBinary()
	return base58.Bitcoin.Encode(bin)
}

// pubKeyBytes returns the serialized compressed public key for the
// extended key, deriving it when the key is private.
func (k *ExtendedKey) pubKeyBytes() []byte {
	if !k.IsPrivate() {
		return k.KeyData
	}
	priv, pub := btcec.PrivKeyFromBytes(k.KeyData)
	priv.Zero()
	return pub.SerializeCompressed()
}

// ckdHMAC splits HMAC-SHA512(chainCode, seed) into the candidate key
// IL and chain code IR, rejecting an IL that is zero or at least the
// curve order.
func ckdHMAC(seed, chainCode []byte) (il, ir []byte, err error) {
	mac := hmac.New(sha512.New, chainCode)
	mac.Write(seed)
	sum := mac.Sum(nil)

	il, ir = sum[:32], sum[32:]

	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(il); overflow || s.IsZero() {
		return nil, nil, ErrInvalidChild
	}
	s.Zero()
	return il, ir, nil
}

func doubleSHA256(in []byte) []byte {
	a := sha256.Sum256(in)
	a = sha256.Sum256(a[:])
	return a[:]
}

// hash160 is RIPEMD160(SHA256(in)), the BIP32 fingerprint hash.
func hash160(in []byte) []byte {
	a := sha256.Sum256(in)
	rmd := ripemd160.New()
	rmd.Write(a[:])
	return rmd.Sum(nil)
}

// paddedAppend appends src to dst, left-padding with zeros to size.
func paddedAppend(size int, dst, src []byte) []byte {
	for i := 0; i < size-len(src); i++ {
		dst = append(dst, 0)
	}
	return append(dst, src...)
}

// secureZero wipes sensitive data from memory.
func secureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
