/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package aries

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/golang/mock/gomock"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	mockstorage "github.com/hyperledger/aries-framework-go/component/storageutil/mock/storage"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-messaging-go/pkg/client/trustping"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/service"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/queue"
	"github.com/hyperledger/aries-messaging-go/pkg/doc/did"
	frameworkctx "github.com/hyperledger/aries-messaging-go/pkg/framework/context"
	mocktransport "github.com/hyperledger/aries-messaging-go/pkg/internal/gomocks/didcomm/transport"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

const (
	myDID    = "did:example:alice"
	theirDID = "did:example:bob"
	endpoint = "https://bob.example.com/didcomm"
)

func TestFramework(t *testing.T) {
	t.Run("test framework new - returns error", func(t *testing.T) {
		_, err := New(func(opts *Aries) error {
			return errors.New("error in option")
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "error in option")
	})

	t.Run("test framework new - invalid cache options", func(t *testing.T) {
		_, err := New(WithTargetCacheTTL(-time.Second))
		require.Error(t, err)
		require.Contains(t, err.Error(), "target cache TTL cannot be negative")

		_, err = New(WithTargetCacheSize(-1))
		require.Error(t, err)
		require.Contains(t, err.Error(), "target cache size cannot be negative")
	})

	t.Run("test framework new - store failure", func(t *testing.T) {
		_, err := New(WithStoreProvider(&mockstorage.MockStoreProvider{
			ErrOpenStoreHandle: fmt.Errorf("open store error"),
		}))
		require.Error(t, err)
		require.Contains(t, err.Error(), "open store error")
	})

	t.Run("test framework new - with defaults", func(t *testing.T) {
		aries, err := New()
		require.NoError(t, err)

		ctx, err := aries.Context()
		require.NoError(t, err)
		require.NotNil(t, ctx.Outbound())
		require.NotNil(t, ctx.ConnectionRecorder())
		require.NotNil(t, ctx.ConnectionManager())
		require.NotNil(t, ctx.Serializer())
		require.NotNil(t, ctx.DIDStore())
		require.NotNil(t, ctx.KMS())
		require.Len(t, ctx.OutboundTransports(), 1)

		require.NoError(t, aries.Close())
	})

	t.Run("test framework close - store error", func(t *testing.T) {
		aries, err := New(WithStoreProvider(&mockstorage.MockStoreProvider{
			Store:    &mockstorage.MockStore{Store: make(map[string]mockstorage.DBEntry)},
			ErrClose: fmt.Errorf("close error"),
		}))
		require.NoError(t, err)

		err = aries.Close()
		require.Error(t, err)
		require.Contains(t, err.Error(), "close error")
	})
}

func TestFramework_SendPing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	packets := make(chan []byte, 4)

	transport := mocktransport.NewMockOutboundTransport(ctrl)
	transport.EXPECT().Accept(endpoint).Return(true).AnyTimes()
	transport.EXPECT().Send(gomock.Any(), gomock.Any(), endpoint).AnyTimes().
		DoAndReturn(func(_ context.Context, data []byte, _ string) (string, error) {
			packets <- data

			return "", nil
		})

	aries, err := New(
		WithStoreProvider(mem.NewProvider()),
		WithOutboundTransports(transport),
		WithQueueOptions(queue.WithWorkers(1)),
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, aries.Close())
	}()

	ctx, err := aries.Context()
	require.NoError(t, err)

	myKey := saveDoc(t, ctx, myDID, "1", "https://alice.example.com")
	theirKey := saveDoc(t, ctx, theirDID, "1", endpoint)

	require.NoError(t, ctx.ConnectionRecorder().SaveConnectionRecord(&connection.Record{
		ConnectionID: "C1",
		State:        connection.StateActive,
		MyDID:        myDID,
		TheirDID:     theirDID,
	}))

	client := trustping.New(ctx)

	t.Run("ping is delivered through the queue", func(t *testing.T) {
		require.NoError(t, client.Send(context.Background(), "C1"))

		var packet []byte

		select {
		case packet = <-packets:
		case <-time.After(5 * time.Second):
			require.Fail(t, "ping was not delivered")
		}

		env, err := ctx.Serializer().DecodeMessage(context.Background(), packet)
		require.NoError(t, err)
		require.Equal(t, base58.Decode(myKey), env.FromVerKey)
		require.Equal(t, base58.Decode(theirKey), env.ToVerKey)

		msg, err := service.ParseDIDCommMsgMap(env.Message)
		require.NoError(t, err)

		name, err := msg.TypeName()
		require.NoError(t, err)
		require.Equal(t, "ping", name)

		activity, err := ctx.ConnectionRecorder().GetActivity("C1")
		require.NoError(t, err)
		require.Len(t, activity, 1)
		require.Equal(t, "ping", activity[0].Type)
		require.Equal(t, msg.ID(), activity[0].Meta["message_id"])
	})

	t.Run("key rotation refreshes the cached target", func(t *testing.T) {
		rotatedKey := saveDoc(t, ctx, theirDID, "2", endpoint)
		require.NotEqual(t, theirKey, rotatedKey)

		packet, err := client.SendAndReturnBytes(context.Background(), "C1")
		require.NoError(t, err)

		env, err := ctx.Serializer().DecodeMessage(context.Background(), packet)
		require.NoError(t, err)
		require.Equal(t, base58.Decode(rotatedKey), env.ToVerKey)
	})

	t.Run("inactive connection is skipped", func(t *testing.T) {
		_, err := ctx.ConnectionRecorder().UpdateState("C1", connection.StateInactive)
		require.NoError(t, err)

		require.NoError(t, client.Send(context.Background(), "C1"))

		packet, err := client.SendAndReturnBytes(context.Background(), "C1")
		require.NoError(t, err)
		require.Nil(t, packet)

		activity, err := ctx.ConnectionRecorder().GetActivity("C1")
		require.NoError(t, err)
		require.Len(t, activity, 2)
	})
}

// saveDoc stores a DID document holding one fresh key of the framework KMS and returns that key.
func saveDoc(t *testing.T, ctx *frameworkctx.Provider, id, version, serviceEndpoint string) string {
	t.Helper()

	key, err := ctx.KMS().CreateKeySet()
	require.NoError(t, err)

	require.NoError(t, ctx.DIDStore().SaveDID(did.BuildDoc(id,
		did.WithVersionID(version),
		did.WithPublicKey([]did.PublicKey{{
			ID:    id + "#key-1",
			Type:  did.Ed25519VerificationKey2018,
			Value: base58.Decode(key),
		}}),
		did.WithService([]did.Service{{
			ID:              id + "#didcomm",
			Type:            "did-communication",
			RecipientKeys:   []string{id + "#key-1"},
			ServiceEndpoint: serviceEndpoint,
		}}),
	)))

	return key
}
