/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package service

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"

	diddoc "github.com/hyperledger/aries-messaging-go/pkg/doc/did"
	"github.com/hyperledger/aries-messaging-go/pkg/vdr/fingerprint"
)

func newKey(t *testing.T) []byte {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return pub
}

func TestCreateTarget(t *testing.T) {
	t.Run("successfully creates target with routing keys", func(t *testing.T) {
		recKey := base58.Encode(newKey(t))
		routingKey := newKey(t)
		routingDIDKey := didKeyOf(t, routingKey)

		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithVersionID("3"),
			diddoc.WithService([]diddoc.Service{{
				ID:              "did:example:bob#didcomm",
				Type:            didCommServiceType,
				RecipientKeys:   []string{recKey},
				RoutingKeys:     []string{routingDIDKey},
				ServiceEndpoint: "https://bob.example.com",
			}}))

		senderKey := newKey(t)
		myDoc := diddoc.BuildDoc("did:example:alice",
			diddoc.WithPublicKey([]diddoc.PublicKey{{
				ID:    "did:example:alice#key-1",
				Type:  diddoc.Ed25519VerificationKey2018,
				Value: senderKey,
			}}))

		target, err := CreateTarget(theirDoc, myDoc)
		require.NoError(t, err)
		require.Equal(t, "https://bob.example.com", target.Endpoint)
		require.Equal(t, []string{recKey}, target.RecipientKeys)
		require.Equal(t, []string{base58.Encode(routingKey)}, target.RoutingKeys)
		require.Equal(t, base58.Encode(senderKey), target.SenderKey)
		require.Equal(t, "3", target.TheirRevision)
		require.Equal(t, "did:example:alice", target.MyDID)
	})

	t.Run("falls back to the legacy service type and dereferences keys", func(t *testing.T) {
		recKey := newKey(t)
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithPublicKey([]diddoc.PublicKey{{
				ID:    "#key-1",
				Type:  diddoc.Ed25519VerificationKey2018,
				Value: recKey,
			}}),
			diddoc.WithService([]diddoc.Service{{
				Type:            legacyDIDCommServiceType,
				RecipientKeys:   []string{"did:example:bob#key-1"},
				ServiceEndpoint: "ws://bob.example.com",
			}}))

		target, err := CreateTarget(theirDoc, nil)
		require.NoError(t, err)
		require.Equal(t, []string{base58.Encode(recKey)}, target.RecipientKeys)
		require.Empty(t, target.SenderKey)
		require.Empty(t, target.RoutingKeys)
	})

	t.Run("lowest priority service wins", func(t *testing.T) {
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithService([]diddoc.Service{
				{
					Type: didCommServiceType, Priority: 2,
					RecipientKeys: []string{base58.Encode(newKey(t))}, ServiceEndpoint: "https://second",
				},
				{
					Type: didCommServiceType, Priority: 1,
					RecipientKeys: []string{base58.Encode(newKey(t))}, ServiceEndpoint: "https://first",
				},
			}))

		target, err := CreateTarget(theirDoc, nil)
		require.NoError(t, err)
		require.Equal(t, "https://first", target.Endpoint)
	})

	t.Run("missing service", func(t *testing.T) {
		_, err := CreateTarget(diddoc.BuildDoc("did:example:bob"), nil)
		require.True(t, errors.Is(err, ErrMissingService))
	})

	t.Run("missing endpoint", func(t *testing.T) {
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithService([]diddoc.Service{{
				Type: didCommServiceType, RecipientKeys: []string{base58.Encode(newKey(t))},
			}}))

		_, err := CreateTarget(theirDoc, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "no service endpoint")
	})

	t.Run("missing recipient keys", func(t *testing.T) {
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithService([]diddoc.Service{{
				Type: didCommServiceType, ServiceEndpoint: "https://bob.example.com",
			}}))

		_, err := CreateTarget(theirDoc, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "no recipient keys")
	})

	t.Run("dangling key reference", func(t *testing.T) {
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithService([]diddoc.Service{{
				Type: didCommServiceType, ServiceEndpoint: "https://bob.example.com",
				RecipientKeys: []string{"#missing"},
			}}))

		_, err := CreateTarget(theirDoc, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unresolvable key reference")
	})

	t.Run("malformed recipient key", func(t *testing.T) {
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithService([]diddoc.Service{{
				Type: didCommServiceType, ServiceEndpoint: "https://bob.example.com",
				RecipientKeys: []string{"abc"},
			}}))

		_, err := CreateTarget(theirDoc, nil)
		require.True(t, errors.Is(err, fingerprint.ErrUnsupportedKey))
	})

	t.Run("own document without keys", func(t *testing.T) {
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithService([]diddoc.Service{{
				Type: didCommServiceType, ServiceEndpoint: "https://bob.example.com",
				RecipientKeys: []string{base58.Encode(newKey(t))},
			}}))

		_, err := CreateTarget(theirDoc, diddoc.BuildDoc("did:example:alice"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "sender key")
	})

	t.Run("sender key from own service block", func(t *testing.T) {
		theirDoc := diddoc.BuildDoc("did:example:bob",
			diddoc.WithService([]diddoc.Service{{
				Type: didCommServiceType, ServiceEndpoint: "https://bob.example.com",
				RecipientKeys: []string{base58.Encode(newKey(t))},
			}}))

		mine := newKey(t)
		myDIDKey := didKeyOf(t, mine)
		myDoc := diddoc.BuildDoc("did:example:alice",
			diddoc.WithService([]diddoc.Service{{
				Type: didCommServiceType, ServiceEndpoint: "https://alice.example.com",
				RecipientKeys: []string{myDIDKey},
			}}))

		target, err := CreateTarget(theirDoc, myDoc)
		require.NoError(t, err)
		require.Equal(t, base58.Encode(mine), target.SenderKey)
	})
}

func didKeyOf(t *testing.T, pubKey []byte) string {
	t.Helper()

	didKey, _, err := fingerprint.CreateDIDKey(pubKey)
	require.NoError(t, err)

	return didKey
}
