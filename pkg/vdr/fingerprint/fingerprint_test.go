/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fingerprint

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/require"
)

func TestCreateDIDKey(t *testing.T) {
	const (
		edPubKeyBase58     = "B12NYF8RrR3h41TDCTJojY59usg3mbtbjnFs7Eud1Y6u"
		edExpectedDIDKey   = "did:key:z6MkpTHR8VNsBxYAAWHut2Geadd9jSwuBV8xRoAnwWsdvktH"
		edExpectedDIDKeyID = "did:key:z6MkpTHR8VNsBxYAAWHut2Geadd9jSwuBV8xRoAnwWsdvktH#z6MkpTHR8VNsBxYAAWHut2Geadd9jSwuBV8xRoAnwWsdvktH" //nolint:lll
	)

	didKey, keyID, err := CreateDIDKey(base58.Decode(edPubKeyBase58))
	require.NoError(t, err)
	require.Equal(t, edExpectedDIDKey, didKey)
	require.Equal(t, edExpectedDIDKeyID, keyID)

	pubKey, err := PubKeyFromFingerprint(strings.Split(keyID, "#")[1])
	require.NoError(t, err)
	require.Equal(t, edPubKeyBase58, base58.Encode(pubKey))

	pubKey, err = PubKeyFromDIDKey(keyID)
	require.NoError(t, err)
	require.Equal(t, edPubKeyBase58, base58.Encode(pubKey))
}

func TestCreateDIDKeyFailure(t *testing.T) {
	t.Run("key of the wrong length", func(t *testing.T) {
		_, _, err := CreateDIDKey([]byte{0x01, 0x02})
		require.ErrorIs(t, err, ErrUnsupportedKey)
	})

	t.Run("encoding error is returned", func(t *testing.T) {
		encoded, err := keyFingerprint(multibase.Encoding(0x01), ed25519pub, make([]byte, ed25519.PublicKeySize))
		require.ErrorIs(t, err, multibase.ErrUnsupportedEncoding)
		require.Empty(t, encoded)
	})

	t.Run("fingerprint round trip", func(t *testing.T) {
		raw := make([]byte, ed25519.PublicKeySize)
		raw[0] = 0x42

		encoded, err := KeyFingerprint(ed25519pub, raw)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(encoded, "z6Mk"))

		pubKey, err := PubKeyFromFingerprint(encoded)
		require.NoError(t, err)
		require.Equal(t, raw, pubKey)
	})
}

func TestPubKeyFromFingerprintFailure(t *testing.T) {
	_, err := PubKeyFromFingerprint("")
	require.Error(t, err)

	// secp256k1 multicodec (0xe7) is not supported.
	_, err = PubKeyFromFingerprint("z" + base58.Encode(append([]byte{0xe7, 0x01}, make([]byte, 32)...)))
	require.EqualError(t, err, "pubKeyFromFingerprint: not supported public key (multicodec code: 0xe7)")

	_, err = PubKeyFromFingerprint("z" + base58.Encode([]byte{0xed, 0x01, 0x02}))
	require.EqualError(t, err, "pubKeyFromFingerprint: invalid key length 3")

	_, err = PubKeyFromDIDKey("did:peer:123")
	require.EqualError(t, err, "pubKeyFromDIDKey: not a did:key value")
}

func TestToBase58(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	verKey := base58.Encode(pub)
	didKey, _, err := CreateDIDKey(pub)
	require.NoError(t, err)

	t.Run("base58 verkey is returned as-is", func(t *testing.T) {
		k, err := ToBase58(verKey)
		require.NoError(t, err)
		require.Equal(t, verKey, k)
		require.False(t, IsDIDKey(verKey))
	})

	t.Run("did:key is normalized", func(t *testing.T) {
		k, err := ToBase58(didKey)
		require.NoError(t, err)
		require.Equal(t, verKey, k)
		require.True(t, IsDIDKey(didKey))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ToBase58("not-a-key")
		require.ErrorIs(t, err, ErrUnsupportedKey)

		_, err = RawKey("did:key:zzz")
		require.Error(t, err)
	})
}
