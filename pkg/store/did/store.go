/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-messaging-go/pkg/doc/did"
)

const (
	// NameSpace for did store.
	NameSpace = "didstore"

	didDocTag        = "diddoc"
	didDocKeyPattern = didDocTag + "_%s"
)

var logger = log.New("aries-messaging/store/did")

// ErrNotFound is returned when no document is stored for a DID.
var ErrNotFound = errors.New("did document not found")

// RevisionListener is notified with the DID whose stored document changed revision or was removed.
type RevisionListener func(did string)

// Store stores did doc.
type Store struct {
	store     storage.Store
	lock      sync.RWMutex
	listeners []RevisionListener
}

type provider interface {
	StorageProvider() storage.Provider
}

// New returns a new did store.
func New(ctx provider) (*Store, error) {
	store, err := ctx.StorageProvider().OpenStore(NameSpace)
	if err != nil {
		return nil, fmt.Errorf("failed to open did store: %w", err)
	}

	err = ctx.StorageProvider().SetStoreConfig(NameSpace, storage.StoreConfiguration{TagNames: []string{didDocTag}})
	if err != nil {
		return nil, fmt.Errorf("failed to set store configuration: %w", err)
	}

	return &Store{store: store}, nil
}

// RegisterRevisionListener registers a callback invoked after a saved document replaced one with a
// different revision (for example after key rotation) or after a document was deleted.
func (s *Store) RegisterRevisionListener(l RevisionListener) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.listeners = append(s.listeners, l)
}

// SaveDID saves a did doc, replacing any document previously stored for the same DID.
func (s *Store) SaveDID(didDoc *did.Doc) error {
	if didDoc == nil || didDoc.ID == "" {
		return errors.New("did doc with an id is mandatory")
	}

	previous, err := s.GetDID(didDoc.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("get previous did doc: %w", err)
	}

	docBytes, err := didDoc.JSONBytes()
	if err != nil {
		return fmt.Errorf("failed to marshal didDoc: %w", err)
	}

	if err := s.store.Put(dataKey(didDoc.ID), docBytes, storage.Tag{Name: didDocTag}); err != nil {
		return fmt.Errorf("failed to put didDoc: %w", err)
	}

	if previous != nil && previous.Revision() != didDoc.Revision() {
		logger.Debugf("did document %s changed revision [%s] -> [%s]",
			didDoc.ID, previous.Revision(), didDoc.Revision())

		s.notify(didDoc.ID)
	}

	return nil
}

// GetDID retrieves a didDoc based on ID.
func (s *Store) GetDID(id string) (*did.Doc, error) {
	docBytes, err := s.store.Get(dataKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return nil, fmt.Errorf("failed to get did doc: %w", err)
	}

	didDoc, err := did.ParseDocument(docBytes)
	if err != nil {
		return nil, fmt.Errorf("umarshalling didDoc failed: %w", err)
	}

	return didDoc, nil
}

// DeleteDID removes the document stored for a DID.
func (s *Store) DeleteDID(id string) error {
	if err := s.store.Delete(dataKey(id)); err != nil {
		return fmt.Errorf("failed to delete did doc: %w", err)
	}

	s.notify(id)

	return nil
}

// GetDIDs retrieves the ids of every stored document.
func (s *Store) GetDIDs() ([]string, error) {
	itr, err := s.store.Query(didDocTag)
	if err != nil {
		return nil, fmt.Errorf("query did docs: %w", err)
	}

	defer storage.Close(itr, logger)

	var ids []string

	more, err := itr.Next()
	if err != nil {
		return nil, fmt.Errorf("iterate did docs: %w", err)
	}

	for more {
		key, err := itr.Key()
		if err != nil {
			return nil, fmt.Errorf("read did doc key: %w", err)
		}

		ids = append(ids, key[len(didDocTag)+1:])

		more, err = itr.Next()
		if err != nil {
			return nil, fmt.Errorf("iterate did docs: %w", err)
		}
	}

	return ids, nil
}

func (s *Store) notify(id string) {
	s.lock.RLock()
	listeners := append([]RevisionListener(nil), s.listeners...)
	s.lock.RUnlock()

	for _, l := range listeners {
		l(id)
	}
}

func dataKey(id string) string {
	return fmt.Sprintf(didDocKeyPattern, id)
}
