/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package aries

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	didconnection "github.com/hyperledger/aries-messaging-go/pkg/didcomm/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/dispatcher/outbound"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/packer/legacy"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/queue"
	"github.com/hyperledger/aries-messaging-go/pkg/framework/context"
	"github.com/hyperledger/aries-messaging-go/pkg/kms/legacykms"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/store/did"
)

// Aries provides access to the context being managed by the framework. The context can be used to create aries clients.
type Aries struct {
	storeProvider      storage.Provider
	outboundTransports []transport.OutboundTransport
	kms                *legacykms.LegacyKMS
	packer             packer.Packer
	serializer         *envelope.Serializer
	didStore           *did.Store
	connectionRecorder *connection.Recorder
	keyResolver        didconnection.KeyResolver
	managerOpts        []didconnection.ManagerOption
	connectionManager  *didconnection.Manager
	queueOpts          []queue.Opt
	outboundQueue      *queue.Queue
	outboundDispatcher *outbound.Dispatcher
}

// Option configures the framework.
type Option func(opts *Aries) error

// New initializes the Aries framework based on the set of options provided. This function returns a framework
// which can be used to manage Aries clients by getting the framework context.
func New(opts ...Option) (*Aries, error) {
	frameworkOpts := &Aries{}

	// generate framework configs from options
	for _, option := range opts {
		err := option(frameworkOpts)
		if err != nil {
			closeErr := frameworkOpts.Close()
			return nil, fmt.Errorf("close err: %v Error in option passed to New: %w", closeErr, err)
		}
	}

	// get the default framework options
	err := defFrameworkOpts(frameworkOpts)
	if err != nil {
		return nil, fmt.Errorf("default option initialization failed: %w", err)
	}

	return initializeServices(frameworkOpts)
}

func initializeServices(frameworkOpts *Aries) (*Aries, error) {
	// Order of initializing service is important
	if err := createKMS(frameworkOpts); err != nil {
		return nil, err
	}

	// packer and serializer need the KMS
	if err := createPackerAndSerializer(frameworkOpts); err != nil {
		return nil, err
	}

	if err := createStores(frameworkOpts); err != nil {
		return nil, err
	}

	// manager subscribes to DID store revisions
	createConnectionManager(frameworkOpts)

	frameworkOpts.outboundQueue = queue.New(frameworkOpts.outboundTransports, frameworkOpts.queueOpts...)

	if err := createOutboundDispatcher(frameworkOpts); err != nil {
		frameworkOpts.outboundQueue.Stop()

		return nil, err
	}

	return frameworkOpts, nil
}

// WithStoreProvider injects a storage provider to the Aries framework.
func WithStoreProvider(prov storage.Provider) Option {
	return func(opts *Aries) error {
		opts.storeProvider = prov
		return nil
	}
}

// WithOutboundTransports injects the outbound transports used by the transport queue.
func WithOutboundTransports(outboundTransports ...transport.OutboundTransport) Option {
	return func(opts *Aries) error {
		opts.outboundTransports = append(opts.outboundTransports, outboundTransports...)
		return nil
	}
}

// WithKeyResolver replaces the DID store backed key resolver.
func WithKeyResolver(resolver didconnection.KeyResolver) Option {
	return func(opts *Aries) error {
		opts.keyResolver = resolver
		return nil
	}
}

// WithTargetCacheTTL sets how long resolved connection targets stay cached. Zero disables caching.
func WithTargetCacheTTL(ttl time.Duration) Option {
	return func(opts *Aries) error {
		if ttl < 0 {
			return errors.New("target cache TTL cannot be negative")
		}

		opts.managerOpts = append(opts.managerOpts, didconnection.WithCacheTTL(ttl))

		return nil
	}
}

// WithTargetCacheSize sets how many connection targets are cached.
func WithTargetCacheSize(size int) Option {
	return func(opts *Aries) error {
		if size < 0 {
			return errors.New("target cache size cannot be negative")
		}

		opts.managerOpts = append(opts.managerOpts, didconnection.WithCacheSize(size))

		return nil
	}
}

// WithQueueOptions configures the outbound transport queue.
func WithQueueOptions(queueOpts ...queue.Opt) Option {
	return func(opts *Aries) error {
		opts.queueOpts = append(opts.queueOpts, queueOpts...)
		return nil
	}
}

// Context provides a handle to the framework context.
func (a *Aries) Context() (*context.Provider, error) {
	return context.New(
		context.WithStorageProvider(a.storeProvider),
		context.WithKMS(a.kms),
		context.WithPacker(a.packer),
		context.WithSerializer(a.serializer),
		context.WithDIDStore(a.didStore),
		context.WithConnectionRecorder(a.connectionRecorder),
		context.WithConnectionManager(a.connectionManager),
		context.WithOutboundQueue(a.outboundQueue),
		context.WithOutboundDispatcher(a.outboundDispatcher),
		context.WithOutboundTransports(a.outboundTransports...),
	)
}

// Close frees resources being maintained by the framework.
func (a *Aries) Close() error {
	if a.outboundQueue != nil {
		a.outboundQueue.Stop()
	}

	if a.storeProvider != nil {
		err := a.storeProvider.Close()
		if err != nil {
			return fmt.Errorf("failed to close the store: %w", err)
		}
	}

	return nil
}

func createKMS(frameworkOpts *Aries) error {
	ctx, err := context.New(context.WithStorageProvider(frameworkOpts.storeProvider))
	if err != nil {
		return fmt.Errorf("create context failed: %w", err)
	}

	frameworkOpts.kms, err = legacykms.New(ctx)
	if err != nil {
		return fmt.Errorf("create KMS failed: %w", err)
	}

	return nil
}

func createPackerAndSerializer(frameworkOpts *Aries) error {
	ctx, err := context.New(context.WithKMS(frameworkOpts.kms))
	if err != nil {
		return fmt.Errorf("create packer context failed: %w", err)
	}

	frameworkOpts.packer = legacy.New(ctx)

	ctx, err = context.New(context.WithPacker(frameworkOpts.packer))
	if err != nil {
		return fmt.Errorf("create serializer context failed: %w", err)
	}

	frameworkOpts.serializer = envelope.New(ctx)

	return nil
}

func createStores(frameworkOpts *Aries) error {
	ctx, err := context.New(context.WithStorageProvider(frameworkOpts.storeProvider))
	if err != nil {
		return fmt.Errorf("create store context failed: %w", err)
	}

	frameworkOpts.didStore, err = did.New(ctx)
	if err != nil {
		return fmt.Errorf("create DID store failed: %w", err)
	}

	frameworkOpts.connectionRecorder = ctx.ConnectionRecorder()

	return nil
}

func createConnectionManager(frameworkOpts *Aries) {
	resolver := frameworkOpts.keyResolver
	if resolver == nil {
		resolver = didconnection.NewDIDStoreResolver(frameworkOpts.didStore)
	}

	frameworkOpts.connectionManager = didconnection.NewManager(resolver, frameworkOpts.managerOpts...)
	frameworkOpts.didStore.RegisterRevisionListener(frameworkOpts.connectionManager.InvalidateDID)
}

func createOutboundDispatcher(frameworkOpts *Aries) error {
	ctx, err := context.New(
		context.WithConnectionRecorder(frameworkOpts.connectionRecorder),
		context.WithConnectionManager(frameworkOpts.connectionManager),
		context.WithSerializer(frameworkOpts.serializer),
		context.WithOutboundQueue(frameworkOpts.outboundQueue),
	)
	if err != nil {
		return fmt.Errorf("context creation failed: %w", err)
	}

	frameworkOpts.outboundDispatcher, err = outbound.NewOutbound(ctx)
	if err != nil {
		return fmt.Errorf("failed to init outbound dispatcher: %w", err)
	}

	return nil
}
