package hdkey

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BIP32 test vector 1.
const (
	vector1Seed = "000102030405060708090a0b0c0d0e0f"

	vector1MasterPriv = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"
	vector1MasterPub  = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"

	vector1Ch0HPriv = "xprv9uHRZZhk6KAJC1avXpDAp4MDc3sQKNxDiPvvkX8Br5ngLNv1TxvUxt4cV1rGL5hj6KCesnDYUhd7oWgT11eZG7XnxHrnYeSvkzY7d2bhkJ7"
	vector1Ch0HPub  = "xpub68Gmy5EdvgibQVfPdqkBBCHxA5htiqg55crXYuXoQRKfDBFA1WEjWgP6LHhwBZeNK1VTsfTFUHCdrfp1bgwQ9xv5ski8PX9rL2dZXvgGDnw"

	vector1Ch0H1Priv = "xprv9wTYmMFdV23N2TdNG573QoEsfRrWKQgWeibmLntzniatZvR9BmLnvSxqu53Kw1UmYPxLgboyZQaXwTCg8MSY3H2EU4pWcQDnRnrVA1xe8fs"
	vector1Ch0H1Pub  = "xpub6ASuArnXKPbfEwhqN6e3mwBcDTgzisQN1wXN9BJcM47sSikHjJf3UFHKkNAWbWMiGj7Wf5uMash7SyYq527Hqck2AxYysAA7xmALppuCkwQ"
)

func vector1Master(t *testing.T) *ExtendedKey {
	t.Helper()
	seed, err := hex.DecodeString(vector1Seed)
	require.NoError(t, err)
	master, err := NewMaster(seed)
	require.NoError(t, err)
	return master
}

func TestNewMaster(t *testing.T) {
	t.Run("matches BIP32 vector 1", func(t *testing.T) {
		master := vector1Master(t)
		assert.Equal(t, vector1MasterPriv, master.String())
		assert.Equal(t, vector1MasterPub, master.Neuter().String())
	})

	t.Run("rejects short seed", func(t *testing.T) {
		_, err := NewMaster(make([]byte, 15))
		assert.ErrorIs(t, err, ErrInvalidSeed)
	})

	t.Run("rejects long seed", func(t *testing.T) {
		_, err := NewMaster(make([]byte, 65))
		assert.ErrorIs(t, err, ErrInvalidSeed)
	})
}

func TestChild(t *testing.T) {
	master := vector1Master(t)

	t.Run("hardened private child", func(t *testing.T) {
		child, err := master.Child(HardenedKeyStart)
		require.NoError(t, err)
		assert.Equal(t, vector1Ch0HPriv, child.String())
		assert.Equal(t, vector1Ch0HPub, child.Neuter().String())
		assert.Equal(t, uint8(1), child.Depth)
	})

	t.Run("normal private child", func(t *testing.T) {
		child, err := master.Derive(HardenedKeyStart, 1)
		require.NoError(t, err)
		assert.Equal(t, vector1Ch0H1Priv, child.String())
		assert.Equal(t, vector1Ch0H1Pub, child.Neuter().String())
	})

	t.Run("public parent derives public child via point addition", func(t *testing.T) {
		ch0H, err := master.Child(HardenedKeyStart)
		require.NoError(t, err)

		neutered := ch0H.Neuter()
		child, err := neutered.Child(1)
		require.NoError(t, err)
		assert.Equal(t, vector1Ch0H1Pub, child.String())
		assert.False(t, child.IsPrivate())
	})

	t.Run("hardened child from public parent fails", func(t *testing.T) {
		_, err := master.Neuter().Child(HardenedKeyStart)
		assert.ErrorIs(t, err, ErrDerivingHardenedFromPublic)
	})

	t.Run("private and public derivation agree", func(t *testing.T) {
		priv, err := master.Derive(HardenedKeyStart, 1, 7)
		require.NoError(t, err)

		pubParent, err := master.Derive(HardenedKeyStart, 1)
		require.NoError(t, err)
		pub, err := pubParent.Neuter().Child(7)
		require.NoError(t, err)

		assert.Equal(t, priv.Neuter().String(), pub.String())
	})

	t.Run("max depth is enforced", func(t *testing.T) {
		k := vector1Master(t)
		k.Depth = 0xff
		_, err := k.Child(0)
		assert.ErrorIs(t, err, ErrMaxDepthExceeded)
	})
}

func TestParse(t *testing.T) {
	t.Run("round-trips private keys", func(t *testing.T) {
		parsed, err := Parse(vector1MasterPriv)
		require.NoError(t, err)
		assert.Equal(t, vector1MasterPriv, parsed.String())
		assert.True(t, parsed.IsPrivate())
	})

	t.Run("round-trips public keys", func(t *testing.T) {
		parsed, err := Parse(vector1Ch0HPub)
		require.NoError(t, err)
		assert.Equal(t, vector1Ch0HPub, parsed.String())
		assert.False(t, parsed.IsPrivate())
	})

	t.Run("parsed key still derives", func(t *testing.T) {
		parsed, err := Parse(vector1Ch0HPriv)
		require.NoError(t, err)
		child, err := parsed.Child(1)
		require.NoError(t, err)
		assert.Equal(t, vector1Ch0H1Priv, child.String())
	})

	t.Run("rejects a corrupted checksum", func(t *testing.T) {
		corrupted := vector1MasterPriv[:len(vector1MasterPriv)-1] + "j"
		_, err := Parse(corrupted)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := Parse("not-an-extended-key")
		assert.Error(t, err)
	})
}

func TestSecureZero(t *testing.T) {
	b := []byte{0xde, 0xad, 0xbe, 0xef}
	secureZero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)
}

func TestSigningKey(t *testing.T) {
	master := vector1Master(t)

	t.Run("bridges to the signing core", func(t *testing.T) {
		key, err := master.SigningKey()
		require.NoError(t, err)
		assert.Equal(t, master.PublicKey(), key.CompressedPublicKey())
	})

	t.Run("neutered key refuses", func(t *testing.T) {
		_, err := master.Neuter().SigningKey()
		assert.ErrorIs(t, err, ErrNeuteredKey)
	})
}
