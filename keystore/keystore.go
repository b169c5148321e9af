// Package keystore encrypts and decrypts private keys as Web3 Secret
// Storage (keystore V3) JSON documents: scrypt or pbkdf2 key
// stretching, aes-128-ctr encryption, and a keccak256 MAC verified
// before any decryption is attempted.
package keystore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/crypto/sha3"

	"github.com/sevenqinlittle/ethers.js"
	"github.com/sevenqinlittle/ethers.js/hexutil"
)

// Version is the only keystore document version this package handles.
const Version = 3

// Scrypt parameter presets. Standard matches the hardness mainstream
// wallets ship with; Light trades hardness for speed on constrained
// devices (and in tests).
const (
	StandardScryptN = 1 << 17
	StandardScryptP = 1

	LightScryptN = 1 << 12
	LightScryptP = 6

	scryptR     = 8
	scryptDKLen = 32
)

var (
	ErrMACMismatch        = errors.New("keystore: MAC mismatch (wrong password or corrupted document)")
	ErrUnsupportedKDF     = errors.New("keystore: unsupported key derivation function")
	ErrUnsupportedCipher  = errors.New("keystore: unsupported cipher")
	ErrUnsupportedVersion = errors.New("keystore: unsupported document version")
)

type cipherparamsJSON struct {
	IV string `json:"iv"`
}

type cryptoJSON struct {
	Cipher       string           `json:"cipher"`
	CipherText   string           `json:"ciphertext"`
	CipherParams cipherparamsJSON `json:"cipherparams"`
	KDF          string           `json:"kdf"`
	KDFParams    map[string]any   `json:"kdfparams"`
	MAC          string           `json:"mac"`
}

type documentJSON struct {
	Address string     `json:"address,omitempty"`
	Crypto  cryptoJSON `json:"crypto"`
	ID      string     `json:"id"`
	Version int        `json:"version"`
}

// Encrypt seals a signing key under a password with the standard
// scrypt preset.
func Encrypt(key *ethers.SigningKey, password string) ([]byte, error) {
	return EncryptWithParams(key, password, StandardScryptN, StandardScryptP)
}

// EncryptWithParams seals a signing key with explicit scrypt cost
// parameters.
func EncryptWithParams(key *ethers.SigningKey, password string, scryptN, scryptP int) ([]byte, error) {
	plaintext := hexutil.MustDecode(key.PrivateKey())
	defer secureZero(plaintext)

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	dk, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer secureZero(dk)

	ciphertext, err := aesCTR(dk[:16], iv, plaintext)
	if err != nil {
		return nil, err
	}
	mac := keccak256(append(append([]byte{}, dk[16:32]...), ciphertext...))

	address, err := ethers.ComputeAddress(key.PublicKey())
	if err != nil {
		return nil, err
	}

	doc := documentJSON{
		Address: strings.ToLower(strings.TrimPrefix(address, "0x")),
		Crypto: cryptoJSON{
			Cipher:       "aes-128-ctr",
			CipherText:   hex.EncodeToString(ciphertext),
			CipherParams: cipherparamsJSON{IV: hex.EncodeToString(iv)},
			KDF:          "scrypt",
			KDFParams: map[string]any{
				"n":     scryptN,
				"r":     scryptR,
				"p":     scryptP,
				"dklen": scryptDKLen,
				"salt":  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
		ID:      uuid.New().String(),
		Version: Version,
	}
	return json.Marshal(doc)
}

// Decrypt opens a keystore document with a password, verifying the
// MAC before decrypting. Both the scrypt and pbkdf2 (hmac-sha256)
// key derivation functions are supported.
func Decrypt(data []byte, password string) (*ethers.SigningKey, error) {
	var doc documentJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("keystore: parse document: %w", err)
	}
	if doc.Version != Version {
		return nil, ErrUnsupportedVersion
	}
	if doc.Crypto.Cipher != "aes-128-ctr" {
		return nil, ErrUnsupportedCipher
	}

	ciphertext, err := hex.DecodeString(doc.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("keystore: invalid ciphertext: %w", err)
	}
	iv, err := hex.DecodeString(doc.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("keystore: invalid iv: %w", err)
	}
	mac, err := hex.DecodeString(doc.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("keystore: invalid mac: %w", err)
	}

	dk, err := deriveKey(doc.Crypto, password)
	if err != nil {
		return nil, err
	}
	defer secureZero(dk)

	calculated := keccak256(append(append([]byte{}, dk[16:32]...), ciphertext...))
	if !bytes.Equal(calculated, mac) {
		return nil, ErrMACMismatch
	}

	plaintext, err := aesCTR(dk[:16], iv, ciphertext)
	if err != nil {
		return nil, err
	}
	defer secureZero(plaintext)

	return ethers.NewSigningKey(plaintext)
}

// deriveKey runs the KDF named by the document.
func deriveKey(c cryptoJSON, password string) ([]byte, error) {
	salt, err := hex.DecodeString(paramString(c.KDFParams, "salt"))
	if err != nil {
		return nil, fmt.Errorf("keystore: invalid salt: %w", err)
	}
	dkLen := paramInt(c.KDFParams, "dklen")

	switch c.KDF {
	case "scrypt":
		n := paramInt(c.KDFParams, "n")
		r := paramInt(c.KDFParams, "r")
		p := paramInt(c.KDFParams, "p")
		return scrypt.Key([]byte(password), salt, n, r, p, dkLen)
	case "pbkdf2":
		if prf := paramString(c.KDFParams, "prf"); prf != "hmac-sha256" {
			return nil, fmt.Errorf("keystore: unsupported pbkdf2 prf %q: %w", prf, ErrUnsupportedKDF)
		}
		iter := paramInt(c.KDFParams, "c")
		return pbkdf2.Key([]byte(password), salt, iter, dkLen, sha256.New), nil
	default:
		return nil, fmt.Errorf("keystore: kdf %q: %w", c.KDF, ErrUnsupportedKDF)
	}
}

// aesCTR applies AES-CTR in either direction.
func aesCTR(key, iv, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keystore: cipher init: %w", err)
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

// keccak256 computes Keccak-256 over the MAC body.
func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// secureZero wipes sensitive data from memory.
func secureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

func paramInt(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func paramString(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
