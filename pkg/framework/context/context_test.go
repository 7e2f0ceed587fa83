/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package context

import (
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	mockstorage "github.com/hyperledger/aries-framework-go/component/storageutil/mock/storage"
	"github.com/stretchr/testify/require"

	didconnection "github.com/hyperledger/aries-messaging-go/pkg/didcomm/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/packer/legacy"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/queue"
	mockconnection "github.com/hyperledger/aries-messaging-go/pkg/internal/gomocks/didcomm/connection"
	mockdispatcher "github.com/hyperledger/aries-messaging-go/pkg/internal/gomocks/didcomm/dispatcher"
	mocktransport "github.com/hyperledger/aries-messaging-go/pkg/internal/gomocks/didcomm/transport"
	"github.com/hyperledger/aries-messaging-go/pkg/kms/legacykms"
	mockprovider "github.com/hyperledger/aries-messaging-go/pkg/mock/provider"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/store/did"
)

func TestNewProvider(t *testing.T) {
	t.Run("test new with default", func(t *testing.T) {
		prov, err := New()
		require.NoError(t, err)
		require.Nil(t, prov.Outbound())
		require.Nil(t, prov.ConnectionRecorder())
		require.Nil(t, prov.ConnectionLookup())
		require.Nil(t, prov.StorageProvider())
	})

	t.Run("test error return from options", func(t *testing.T) {
		_, err := New(func(opts *Provider) error {
			return errors.New("error creating the framework option")
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "option failed")
	})

	t.Run("test new with storage provider creates connection recorder", func(t *testing.T) {
		prov, err := New(WithStorageProvider(mem.NewProvider()))
		require.NoError(t, err)
		require.NotNil(t, prov.ConnectionRecorder())
		require.NotNil(t, prov.ConnectionLookup())
	})

	t.Run("test connection recorder failure", func(t *testing.T) {
		_, err := New(WithStorageProvider(&mockstorage.MockStoreProvider{
			ErrOpenStoreHandle: fmt.Errorf("open error"),
		}))
		require.Error(t, err)
		require.Contains(t, err.Error(), "open error")
	})

	t.Run("test new with all services", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		storeProv := mem.NewProvider()
		mp := &mockprovider.Provider{StorageProviderValue: storeProv}

		kms, err := legacykms.New(mp)
		require.NoError(t, err)

		didStore, err := did.New(mp)
		require.NoError(t, err)

		recorder, err := connection.NewRecorder(mp)
		require.NoError(t, err)

		transport := mocktransport.NewMockOutboundTransport(ctrl)
		outboundQueue := queue.New(nil, queue.WithWorkers(1))
		defer outboundQueue.Stop()

		manager := didconnection.NewManager(mockconnection.NewMockKeyResolver(ctrl))
		outbound := mockdispatcher.NewMockOutbound(ctrl)

		prov, err := New(
			WithStorageProvider(storeProv),
			WithKMS(kms),
			WithDIDStore(didStore),
			WithConnectionRecorder(recorder),
			WithConnectionManager(manager),
			WithOutboundQueue(outboundQueue),
			WithOutboundDispatcher(outbound),
			WithOutboundTransports(transport),
		)
		require.NoError(t, err)

		packer := legacy.New(prov)
		serializer := envelope.New(&serializerProvider{packer: packer})

		require.NoError(t, WithPacker(packer)(prov))
		require.NoError(t, WithSerializer(serializer)(prov))

		require.Equal(t, storeProv, prov.StorageProvider())
		require.Equal(t, kms, prov.KMS())
		require.Equal(t, packer, prov.Packer())
		require.Equal(t, serializer, prov.Serializer())
		require.Equal(t, didStore, prov.DIDStore())
		require.Equal(t, recorder, prov.ConnectionRecorder())
		require.Equal(t, manager, prov.ConnectionManager())
		require.Equal(t, outboundQueue, prov.OutboundQueue())
		require.Equal(t, outbound, prov.Outbound())
		require.Len(t, prov.OutboundTransports(), 1)
	})
}

type serializerProvider struct {
	packer *legacy.Packer
}

func (p *serializerProvider) Packer() packer.Packer {
	return p.packer
}
