/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	diddoc "github.com/hyperledger/aries-messaging-go/pkg/doc/did"
	mockprovider "github.com/hyperledger/aries-messaging-go/pkg/mock/provider"
	didstore "github.com/hyperledger/aries-messaging-go/pkg/store/did"
)

func newDIDStore(t *testing.T) *didstore.Store {
	t.Helper()

	s, err := didstore.New(&mockprovider.Provider{StorageProviderValue: mem.NewProvider()})
	require.NoError(t, err)

	return s
}

func peerDoc(t *testing.T, id, version string) (*diddoc.Doc, string) {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	key := base58.Encode(pub)

	return diddoc.BuildDoc(id,
		diddoc.WithVersionID(version),
		diddoc.WithPublicKey([]diddoc.PublicKey{{
			ID:    id + "#key-1",
			Type:  diddoc.Ed25519VerificationKey2018,
			Value: pub,
		}}),
		diddoc.WithService([]diddoc.Service{{
			ID:              id + "#didcomm",
			Type:            "did-communication",
			RecipientKeys:   []string{id + "#key-1"},
			ServiceEndpoint: "https://" + id,
		}})), key
}

func TestDIDStoreResolver_ResolveTarget(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := newDIDStore(t)

		theirDoc, theirKey := peerDoc(t, "did:example:bob", "1")
		myDoc, myKey := peerDoc(t, "did:example:alice", "1")
		require.NoError(t, store.SaveDID(theirDoc))
		require.NoError(t, store.SaveDID(myDoc))

		record := testRecord()
		record.TheirLabel = "Bob"

		target, err := NewDIDStoreResolver(store).ResolveTarget(context.Background(), record)
		require.NoError(t, err)
		require.Equal(t, []string{theirKey}, target.RecipientKeys)
		require.Equal(t, myKey, target.SenderKey)
		require.Equal(t, "Bob", target.Label)
		require.Equal(t, "1", target.TheirRevision)
	})

	t.Run("anonymous target without own DID", func(t *testing.T) {
		store := newDIDStore(t)

		theirDoc, _ := peerDoc(t, "did:example:bob", "1")
		require.NoError(t, store.SaveDID(theirDoc))

		record := testRecord()
		record.MyDID = ""

		target, err := NewDIDStoreResolver(store).ResolveTarget(context.Background(), record)
		require.NoError(t, err)
		require.Empty(t, target.SenderKey)
	})

	t.Run("missing peer document", func(t *testing.T) {
		_, err := NewDIDStoreResolver(newDIDStore(t)).ResolveTarget(context.Background(), testRecord())
		require.ErrorIs(t, err, ErrTargetResolution)
		require.ErrorIs(t, err, didstore.ErrNotFound)
	})

	t.Run("missing own document", func(t *testing.T) {
		store := newDIDStore(t)

		theirDoc, _ := peerDoc(t, "did:example:bob", "1")
		require.NoError(t, store.SaveDID(theirDoc))

		_, err := NewDIDStoreResolver(store).ResolveTarget(context.Background(), testRecord())
		require.ErrorIs(t, err, ErrTargetResolution)
		require.Contains(t, err.Error(), "own document")
	})

	t.Run("peer document without service", func(t *testing.T) {
		store := newDIDStore(t)
		require.NoError(t, store.SaveDID(diddoc.BuildDoc("did:example:bob")))

		record := testRecord()
		record.MyDID = ""

		_, err := NewDIDStoreResolver(store).ResolveTarget(context.Background(), record)
		require.ErrorIs(t, err, ErrTargetResolution)
	})

	t.Run("no peer DID", func(t *testing.T) {
		record := testRecord()
		record.TheirDID = ""

		_, err := NewDIDStoreResolver(newDIDStore(t)).ResolveTarget(context.Background(), record)
		require.ErrorIs(t, err, ErrTargetResolution)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewDIDStoreResolver(newDIDStore(t)).ResolveTarget(ctx, testRecord())
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestManager_RevisionListener(t *testing.T) {
	store := newDIDStore(t)

	theirDoc, _ := peerDoc(t, "did:example:bob", "1")
	require.NoError(t, store.SaveDID(theirDoc))

	m := NewManager(NewDIDStoreResolver(store))
	store.RegisterRevisionListener(m.InvalidateDID)

	record := testRecord()
	record.MyDID = ""

	first, err := m.GetConnectionTarget(context.Background(), record)
	require.NoError(t, err)

	rotated, rotatedKey := peerDoc(t, "did:example:bob", "2")
	require.NoError(t, store.SaveDID(rotated))

	second, err := m.GetConnectionTarget(context.Background(), record)
	require.NoError(t, err)
	require.NotEqual(t, first.RecipientKeys, second.RecipientKeys)
	require.Equal(t, []string{rotatedKey}, second.RecipientKeys)
	require.Equal(t, "2", second.TheirRevision)
}
