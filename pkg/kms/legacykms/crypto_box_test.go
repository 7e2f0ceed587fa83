/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package legacykms

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-messaging-go/pkg/internal/cryptoutil"
)

func TestNewCryptoBox(t *testing.T) {
	_, err := NewCryptoBox(nil)
	require.EqualError(t, err, "cannot use parameter argument as KMS")
}

func TestCryptoBox_EasyRoundTrip(t *testing.T) {
	sender := newKMS(t)
	recipient := newKMS(t)

	senderVerKey, err := sender.CreateKeySet()
	require.NoError(t, err)

	recipientVerKey, err := recipient.CreateKeySet()
	require.NoError(t, err)

	senderBox, err := NewCryptoBox(sender)
	require.NoError(t, err)

	recipientBox, err := NewCryptoBox(recipient)
	require.NoError(t, err)

	recEncPub, err := cryptoutil.PublicEd25519toCurve25519(base58.Decode(recipientVerKey))
	require.NoError(t, err)

	sendEncPub, err := cryptoutil.PublicEd25519toCurve25519(base58.Decode(senderVerKey))
	require.NoError(t, err)

	nonce := make([]byte, cryptoutil.NonceSize)
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	msg := []byte("lorem ipsum doler sit amet")

	cipherText, err := senderBox.Easy(msg, nonce, recEncPub, base58.Decode(senderVerKey))
	require.NoError(t, err)

	plain, err := recipientBox.EasyOpen(cipherText, nonce, sendEncPub, base58.Decode(recipientVerKey))
	require.NoError(t, err)
	require.Equal(t, msg, plain)

	t.Run("wrong nonce", func(t *testing.T) {
		_, err = recipientBox.EasyOpen(cipherText, make([]byte, cryptoutil.NonceSize), sendEncPub,
			base58.Decode(recipientVerKey))
		require.EqualError(t, err, "failed to unpack")
	})

	t.Run("unknown keys", func(t *testing.T) {
		_, err = recipientBox.Easy(msg, nonce, recEncPub, base58.Decode(senderVerKey))
		require.True(t, errors.Is(err, cryptoutil.ErrKeyNotFound))

		_, err = senderBox.EasyOpen(cipherText, nonce, sendEncPub, base58.Decode(recipientVerKey))
		require.True(t, errors.Is(err, cryptoutil.ErrKeyNotFound))
	})
}

func TestCryptoBox_SealRoundTrip(t *testing.T) {
	recipient := newKMS(t)

	recipientVerKey, err := recipient.CreateKeySet()
	require.NoError(t, err)

	recipientBox, err := NewCryptoBox(recipient)
	require.NoError(t, err)

	recEncPub, err := cryptoutil.PublicEd25519toCurve25519(base58.Decode(recipientVerKey))
	require.NoError(t, err)

	msg := []byte("secret content encryption key")

	sealed, err := recipientBox.Seal(msg, recEncPub, rand.Reader)
	require.NoError(t, err)

	sealed2, err := Seal(msg, recEncPub, rand.Reader)
	require.NoError(t, err)
	require.NotEqual(t, sealed, sealed2)

	for _, s := range [][]byte{sealed, sealed2} {
		plain, err := recipientBox.SealOpen(s, base58.Decode(recipientVerKey))
		require.NoError(t, err)
		require.Equal(t, msg, plain)
	}

	t.Run("failures", func(t *testing.T) {
		_, err = Seal(msg, []byte("short"), rand.Reader)
		require.True(t, errors.Is(err, cryptoutil.ErrInvalidKey))

		_, err = Seal(msg, recEncPub, failReader{})
		require.Error(t, err)

		_, err = recipientBox.SealOpen([]byte("short"), base58.Decode(recipientVerKey))
		require.EqualError(t, err, "message too short")

		tampered := append([]byte{}, sealed...)
		tampered[len(tampered)-1] ^= 0xff
		_, err = recipientBox.SealOpen(tampered, base58.Decode(recipientVerKey))
		require.EqualError(t, err, "failed to unpack")
	})
}
