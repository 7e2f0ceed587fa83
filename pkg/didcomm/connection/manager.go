/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/hyperledger/aries-framework-go/component/log"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/service"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

const (
	// DefaultCacheTTL bounds how long a resolved target is reused.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultCacheSize is the number of connection targets kept in the LRU cache.
	DefaultCacheSize = 1000
)

var logger = log.New("aries-messaging/didcomm/connection")

// Manager resolves connection targets through a KeyResolver and caches them per connection.
type Manager struct {
	resolver KeyResolver
	cache    gcache.Cache
	// lock orders cache writes against invalidations. generation counts invalidations.
	lock       sync.RWMutex
	generation uint64
}

type managerOpts struct {
	ttl  time.Duration
	size int
}

// ManagerOption configures the Manager.
type ManagerOption func(opts *managerOpts)

// WithCacheTTL sets how long a resolved target is reused. A zero TTL disables caching.
func WithCacheTTL(ttl time.Duration) ManagerOption {
	return func(opts *managerOpts) {
		opts.ttl = ttl
	}
}

// WithCacheSize sets the LRU cache size.
func WithCacheSize(size int) ManagerOption {
	return func(opts *managerOpts) {
		opts.size = size
	}
}

// NewManager returns a new connection Manager.
func NewManager(resolver KeyResolver, opts ...ManagerOption) *Manager {
	o := &managerOpts{ttl: DefaultCacheTTL, size: DefaultCacheSize}

	for _, opt := range opts {
		opt(o)
	}

	m := &Manager{resolver: resolver}

	if o.ttl > 0 && o.size > 0 {
		m.cache = gcache.New(o.size).LRU().Expiration(o.ttl).Build()
	}

	return m
}

// GetConnectionTarget returns the target of the connection, resolving it when no fresh cached
// target computed from the record's DIDs exists. Records in any state can be resolved.
func (m *Manager) GetConnectionTarget(ctx context.Context, record *connection.Record) (*service.ConnectionTarget,
	error) {
	if record == nil {
		return nil, fmt.Errorf("%w: missing connection record", ErrTargetResolution)
	}

	if target, ok := m.cached(record); ok {
		return target, nil
	}

	m.lock.RLock()
	generation := m.generation
	m.lock.RUnlock()

	target, err := m.resolver.ResolveTarget(ctx, record)
	if err != nil {
		if errors.Is(err, ErrTargetResolution) || errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrTargetResolution, err)
	}

	m.store(record.ConnectionID, target, generation)

	return clone(target), nil
}

// store caches target unless an invalidation happened since generation was read.
func (m *Manager) store(connectionID string, target *service.ConnectionTarget, generation uint64) {
	if m.cache == nil {
		return
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.generation != generation {
		logger.Debugf("target of connection %s changed during resolution, not caching", connectionID)

		return
	}

	if err := m.cache.Set(connectionID, target); err != nil {
		logger.Warnf("failed to cache target for connection %s: %s", connectionID, err)
	}
}

// InvalidateDID drops every cached target computed from the document of did.
func (m *Manager) InvalidateDID(did string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.generation++

	if m.cache == nil {
		return
	}

	for k, v := range m.cache.GetALL(false) {
		target, ok := v.(*service.ConnectionTarget)
		if !ok || target.TheirDID == did || target.MyDID == did {
			m.cache.Remove(k)

			logger.Debugf("invalidated target of connection %v after change of %s", k, did)
		}
	}
}

// Invalidate drops the cached target of one connection.
func (m *Manager) Invalidate(connectionID string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.generation++

	if m.cache != nil {
		m.cache.Remove(connectionID)
	}
}

func (m *Manager) cached(record *connection.Record) (*service.ConnectionTarget, bool) {
	if m.cache == nil {
		return nil, false
	}

	v, err := m.cache.Get(record.ConnectionID)
	if err != nil {
		return nil, false
	}

	target, ok := v.(*service.ConnectionTarget)
	if !ok || target.TheirDID != record.TheirDID || target.MyDID != record.MyDID {
		return nil, false
	}

	return clone(target), true
}

func clone(t *service.ConnectionTarget) *service.ConnectionTarget {
	c := *t
	c.RecipientKeys = slices.Clone(t.RecipientKeys)
	c.RoutingKeys = slices.Clone(t.RoutingKeys)

	return &c
}
