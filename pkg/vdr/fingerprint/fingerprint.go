/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fingerprint

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/multiformats/go-multibase"
)

const (
	// source: https://github.com/multiformats/multicodec/blob/master/table.csv.
	ed25519pub = 0xed // Ed25519 public key in multicodec table

	didKeyPrefix = "did:key:"
)

// ErrUnsupportedKey is returned for keys that are neither base58 Ed25519 verkeys nor Ed25519 did:key values.
var ErrUnsupportedKey = errors.New("unsupported key format")

// CreateDIDKey creates a did:key ID using the multicodec key fingerprint as per the did:key format spec found at:
// https://w3c-ccg.github.io/did-method-key/#format.
func CreateDIDKey(pubKey []byte) (string, string, error) {
	if len(pubKey) != ed25519.PublicKeySize {
		return "", "", fmt.Errorf("createDIDKey: %w: key length %d", ErrUnsupportedKey, len(pubKey))
	}

	methodID, err := KeyFingerprint(ed25519pub, pubKey)
	if err != nil {
		return "", "", fmt.Errorf("createDIDKey: %w", err)
	}

	didKey := didKeyPrefix + methodID
	keyID := fmt.Sprintf("%s#%s", didKey, methodID)

	return didKey, keyID, nil
}

// KeyFingerprint generates a multicode fingerprint for pubKeyValue (raw key []byte).
func KeyFingerprint(code uint64, pubKeyValue []byte) (string, error) {
	return keyFingerprint(multibase.Base58BTC, code, pubKeyValue)
}

func keyFingerprint(base multibase.Encoding, code uint64, pubKeyValue []byte) (string, error) {
	multicodecValue := multicodec(code)
	mcLength := len(multicodecValue)
	buf := make([]uint8, mcLength+len(pubKeyValue))
	copy(buf, multicodecValue)
	copy(buf[mcLength:], pubKeyValue)

	encoded, err := multibase.Encode(base, buf)
	if err != nil {
		return "", fmt.Errorf("keyFingerprint: %w", err)
	}

	return encoded, nil
}

func multicodec(code uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, code)

	return buf[:n]
}

// PubKeyFromFingerprint extracts the raw public key from a did:key fingerprint.
func PubKeyFromFingerprint(fingerprint string) ([]byte, error) {
	_, mc, err := multibase.Decode(fingerprint)
	if err != nil {
		return nil, fmt.Errorf("pubKeyFromFingerprint: %w", err)
	}

	prefix := multicodec(ed25519pub)
	if len(mc) != len(prefix)+ed25519.PublicKeySize {
		return nil, fmt.Errorf("pubKeyFromFingerprint: invalid key length %d", len(mc))
	}

	if !bytes.Equal(prefix, mc[:len(prefix)]) {
		return nil, fmt.Errorf("pubKeyFromFingerprint: not supported public key (multicodec code: %#x)", mc[0])
	}

	return mc[len(prefix):], nil
}

// PubKeyFromDIDKey parses a did:key (with or without a key fragment) into its raw Ed25519 public key.
func PubKeyFromDIDKey(didKey string) ([]byte, error) {
	if !strings.HasPrefix(didKey, didKeyPrefix) {
		return nil, fmt.Errorf("pubKeyFromDIDKey: not a did:key value")
	}

	id := strings.TrimPrefix(didKey, didKeyPrefix)
	if i := strings.Index(id, "#"); i >= 0 {
		id = id[:i]
	}

	return PubKeyFromFingerprint(id)
}

// RawKey accepts an Ed25519 key either as a base58 verkey or a did:key and returns its raw bytes.
func RawKey(key string) ([]byte, error) {
	if strings.HasPrefix(key, didKeyPrefix) {
		return PubKeyFromDIDKey(key)
	}

	raw := base58.Decode(key)
	if len(raw) != ed25519.PublicKeySize {
		return nil, ErrUnsupportedKey
	}

	return raw, nil
}

// ToBase58 normalizes an Ed25519 key given as a base58 verkey or a did:key into a base58 verkey.
func ToBase58(key string) (string, error) {
	raw, err := RawKey(key)
	if err != nil {
		return "", err
	}

	return base58.Encode(raw), nil
}

// IsDIDKey reports whether key is a did:key value.
func IsDIDKey(key string) bool {
	return strings.HasPrefix(key, didKeyPrefix)
}
