package ethers

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/sevenqinlittle/ethers.js/hexutil"
)

// keccak256 computes Keccak-256 (the pre-standard variant Ethereum uses).
func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// ComputeAddress derives the 20-byte Ethereum address for a key (any
// supported encoding). Formula: Keccak256(uncompressed_pubkey[1:])[12:],
// returned with EIP-55 checksum casing.
func ComputeAddress(key any) (string, error) {
	pub, err := parsePublicKey(key, "key")
	if err != nil {
		return "", err
	}
	uncompressed := pub.SerializeUncompressed()
	hash := keccak256(uncompressed[1:])
	return checksumAddress(hash[12:]), nil
}

// RecoverAddress recovers the address that signed a 32-byte digest.
func RecoverAddress(digest, signature any) (string, error) {
	pub, err := RecoverPublicKey(digest, signature)
	if err != nil {
		return "", err
	}
	return ComputeAddress(pub)
}

// GetAddress normalizes an address string to its EIP-55 checksummed
// form. A mixed-case input must already carry a valid checksum; an
// all-lowercase or all-uppercase input is accepted as unchecksummed.
func GetAddress(addr string) (string, error) {
	s := addr
	if hexutil.Has0xPrefix(s) {
		s = s[2:]
	}
	if len(s) != 40 {
		return "", NewArgumentError("address", addr, ErrInvalidAddress)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", NewArgumentError("address", addr, ErrInvalidAddress)
	}

	checksummed := checksumAddress(b)
	lower := strings.ToLower(s)
	if s != lower && s != strings.ToUpper(lower) && "0x"+s != checksummed {
		return "", NewArgumentError("address", addr, ErrBadChecksum)
	}
	return checksummed, nil
}

// checksumAddress formats a 20-byte address as an EIP-55 checksummed
// hex string: a nibble of the hash of the lowercase address >= 8
// uppercases the corresponding hex character.
func checksumAddress(addr []byte) string {
	hexAddr := hex.EncodeToString(addr)
	hash := keccak256([]byte(hexAddr))

	result := make([]byte, 40)
	for i := 0; i < 40; i++ {
		hashNibble := hash[i/2]
		if i%2 == 0 {
			hashNibble = hashNibble >> 4
		} else {
			hashNibble = hashNibble & 0x0f
		}

		if hashNibble >= 8 && hexAddr[i] >= 'a' && hexAddr[i] <= 'f' {
			result[i] = hexAddr[i] - 32 // uppercase
		} else {
			result[i] = hexAddr[i]
		}
	}
	return "0x" + string(result)
}
