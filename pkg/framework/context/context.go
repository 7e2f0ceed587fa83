/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package context creates a framework Provider context to add optional (non default) framework services and provides
// simple accessor methods to those same services.
package context

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	didconnection "github.com/hyperledger/aries-messaging-go/pkg/didcomm/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/dispatcher"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/queue"
	"github.com/hyperledger/aries-messaging-go/pkg/kms/legacykms"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/store/did"
)

// Provider supplies the framework configuration to client objects.
type Provider struct {
	storeProvider      storage.Provider
	kms                legacykms.KeyManager
	packer             packer.Packer
	serializer         *envelope.Serializer
	didStore           *did.Store
	connectionRecorder *connection.Recorder
	connectionManager  *didconnection.Manager
	outboundQueue      *queue.Queue
	outboundDispatcher dispatcher.Outbound
	outboundTransports []transport.OutboundTransport
}

// ProviderOption configures the framework.
type ProviderOption func(opts *Provider) error

// New instantiates a new context provider.
func New(opts ...ProviderOption) (*Provider, error) {
	ctxProvider := Provider{}

	for _, opt := range opts {
		err := opt(&ctxProvider)
		if err != nil {
			return nil, fmt.Errorf("option failed: %w", err)
		}
	}

	if ctxProvider.storeProvider != nil && ctxProvider.connectionRecorder == nil {
		recorder, err := connection.NewRecorder(&ctxProvider)
		if err != nil {
			return nil, fmt.Errorf("initialize context connection recorder: %w", err)
		}

		ctxProvider.connectionRecorder = recorder
	}

	return &ctxProvider, nil
}

// StorageProvider return a storage provider.
func (p *Provider) StorageProvider() storage.Provider {
	return p.storeProvider
}

// KMS returns the key manager holding this agent's keys.
func (p *Provider) KMS() legacykms.KeyManager {
	return p.kms
}

// Packer returns the envelope packer.
func (p *Provider) Packer() packer.Packer {
	return p.packer
}

// Serializer returns the envelope serializer.
func (p *Provider) Serializer() *envelope.Serializer {
	return p.serializer
}

// DIDStore returns the DID document store.
func (p *Provider) DIDStore() *did.Store {
	return p.didStore
}

// ConnectionRecorder returns the connection record store.
func (p *Provider) ConnectionRecorder() *connection.Recorder {
	return p.connectionRecorder
}

// ConnectionLookup returns a connection.Lookup initialized on this context's stores.
func (p *Provider) ConnectionLookup() *connection.Lookup {
	if p.connectionRecorder == nil {
		return nil
	}

	return p.connectionRecorder.Lookup
}

// ConnectionManager returns the connection target manager.
func (p *Provider) ConnectionManager() *didconnection.Manager {
	return p.connectionManager
}

// OutboundQueue returns the transport queue.
func (p *Provider) OutboundQueue() *queue.Queue {
	return p.outboundQueue
}

// Outbound returns an outbound dispatcher.
func (p *Provider) Outbound() dispatcher.Outbound {
	return p.outboundDispatcher
}

// OutboundTransports returns an outbound transports.
func (p *Provider) OutboundTransports() []transport.OutboundTransport {
	return p.outboundTransports
}

// WithStorageProvider injects a storage provider into the context.
func WithStorageProvider(s storage.Provider) ProviderOption {
	return func(opts *Provider) error {
		opts.storeProvider = s
		return nil
	}
}

// WithKMS injects a key manager into the context.
func WithKMS(k legacykms.KeyManager) ProviderOption {
	return func(opts *Provider) error {
		opts.kms = k
		return nil
	}
}

// WithPacker injects the envelope packer into the context.
func WithPacker(p packer.Packer) ProviderOption {
	return func(opts *Provider) error {
		opts.packer = p
		return nil
	}
}

// WithSerializer injects the envelope serializer into the context.
func WithSerializer(s *envelope.Serializer) ProviderOption {
	return func(opts *Provider) error {
		opts.serializer = s
		return nil
	}
}

// WithDIDStore injects a DID document store into the context.
func WithDIDStore(s *did.Store) ProviderOption {
	return func(opts *Provider) error {
		opts.didStore = s
		return nil
	}
}

// WithConnectionRecorder injects a connection recorder into the context.
func WithConnectionRecorder(r *connection.Recorder) ProviderOption {
	return func(opts *Provider) error {
		opts.connectionRecorder = r
		return nil
	}
}

// WithConnectionManager injects a connection target manager into the context.
func WithConnectionManager(m *didconnection.Manager) ProviderOption {
	return func(opts *Provider) error {
		opts.connectionManager = m
		return nil
	}
}

// WithOutboundQueue injects the transport queue into the context.
func WithOutboundQueue(q *queue.Queue) ProviderOption {
	return func(opts *Provider) error {
		opts.outboundQueue = q
		return nil
	}
}

// WithOutboundDispatcher injects an outbound dispatcher into the context.
func WithOutboundDispatcher(outboundDispatcher dispatcher.Outbound) ProviderOption {
	return func(opts *Provider) error {
		opts.outboundDispatcher = outboundDispatcher
		return nil
	}
}

// WithOutboundTransports injects an outbound transports into the context.
func WithOutboundTransports(transports ...transport.OutboundTransport) ProviderOption {
	return func(opts *Provider) error {
		opts.outboundTransports = transports
		return nil
	}
}
