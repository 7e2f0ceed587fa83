/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package legacykms

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/btcsuite/btcutil/base58"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/pkg/errors"

	"github.com/hyperledger/aries-messaging-go/pkg/internal/cryptoutil"
)

// Namespace of the key store.
const Namespace = "legacykms"

var logger = log.New("aries-messaging/kms/legacykms")

type provider interface {
	StorageProvider() storage.Provider
}

// KeyManager manages the Ed25519 keys of this agent.
type KeyManager interface {
	// CreateKeySet creates a new key pair and returns its base58 verkey.
	CreateKeySet() (string, error)
	// FindVerKey returns the index of the first candidate verkey whose secret key is held.
	FindVerKey(candidateKeys []string) (int, error)
	// HasKey reports whether the secret key for the base58 verkey is held.
	HasKey(verKey string) bool
}

// LegacyKMS keeps the Ed25519 key pairs of this agent, indexed by their base58 verkey.
// Secret keys never leave the package: callers use a CryptoBox to operate on them.
type LegacyKMS struct {
	store      storage.Store
	randSource io.Reader
}

// New creates a key manager over the provider's storage.
func New(p provider) (*LegacyKMS, error) {
	store, err := p.StorageProvider().OpenStore(Namespace)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open key store")
	}

	return &LegacyKMS{store: store, randSource: rand.Reader}, nil
}

// CreateKeySet generates a new Ed25519 key pair and returns its base58 verkey.
func (k *LegacyKMS) CreateKeySet() (string, error) {
	pub, priv, err := ed25519.GenerateKey(k.randSource)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate key pair")
	}

	return k.put(pub, priv)
}

// ImportPrivateKey stores an existing Ed25519 private key and returns its base58 verkey.
func (k *LegacyKMS) ImportPrivateKey(priv ed25519.PrivateKey) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", cryptoutil.ErrInvalidKey
	}

	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return "", cryptoutil.ErrInvalidKey
	}

	return k.put(pub, priv)
}

// HasKey reports whether the secret key for the base58 verkey is held.
func (k *LegacyKMS) HasKey(verKey string) bool {
	_, err := k.store.Get(verKey)

	return err == nil
}

// FindVerKey returns the index of the first candidate base58 verkey whose secret key is held.
func (k *LegacyKMS) FindVerKey(candidateKeys []string) (int, error) {
	for i, key := range candidateKeys {
		if k.HasKey(key) {
			return i, nil
		}
	}

	return -1, cryptoutil.ErrKeyNotFound
}

func (k *LegacyKMS) put(pub ed25519.PublicKey, priv ed25519.PrivateKey) (string, error) {
	verKey := base58.Encode(pub)

	if err := k.store.Put(verKey, priv); err != nil {
		return "", errors.Wrap(err, "failed to store key pair")
	}

	logger.Debugf("stored key pair for verkey %s", verKey)

	return verKey, nil
}

// encPrivKey returns the Curve25519 secret key matching an Ed25519 public key.
func (k *LegacyKMS) encPrivKey(edPub []byte) ([]byte, error) {
	priv, err := k.store.Get(base58.Encode(edPub))
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, cryptoutil.ErrKeyNotFound
		}

		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	return cryptoutil.SecretEd25519toCurve25519(priv)
}
