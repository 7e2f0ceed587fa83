/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

const (
	// Ed25519VerificationKey2018 is the public key type of Ed25519 keys usable with DIDComm v1 envelopes.
	Ed25519VerificationKey2018 = "Ed25519VerificationKey2018"

	didKeyPrefix = "did:key:"
)

// LookupService returns the service from the given DIDDoc matching the given service type.
// When several services match, the one with the lowest priority value wins.
func LookupService(didDoc *Doc, serviceType string) (*Service, bool) {
	const notFound = -1
	index := notFound

	for i := range didDoc.Service {
		if didDoc.Service[i].Type == serviceType {
			if index == notFound || didDoc.Service[index].Priority > didDoc.Service[i].Priority {
				index = i
			}
		}
	}

	if index == notFound {
		return nil, false
	}

	return &didDoc.Service[index], true
}

// LookupPublicKey returns the public key with the given id from the given DID Doc.
// Relative references ("#key-1") are resolved against the document id.
func LookupPublicKey(id string, didDoc *Doc) (*PublicKey, bool) {
	if strings.HasPrefix(id, "#") {
		id = didDoc.ID + id
	}

	for i := range didDoc.PublicKey {
		keyID := didDoc.PublicKey[i].ID
		if strings.HasPrefix(keyID, "#") {
			keyID = didDoc.ID + keyID
		}

		if keyID == id {
			return &didDoc.PublicKey[i], true
		}
	}

	return nil, false
}

// LookupEd25519Key returns the first Ed25519 verification key of the document.
func LookupEd25519Key(didDoc *Doc) (*PublicKey, bool) {
	for i := range didDoc.PublicKey {
		if didDoc.PublicKey[i].Type == Ed25519VerificationKey2018 {
			return &didDoc.PublicKey[i], true
		}
	}

	return nil, false
}

// IsKeyReference reports whether a service key entry references a public key of a document
// ("#key-1" or "did:example:123#key-1") rather than carrying the key material itself.
func IsKeyReference(key string) bool {
	return strings.Contains(key, "#") && !strings.HasPrefix(key, didKeyPrefix)
}

// DereferenceKeys replaces key references with the base58 value of the referenced public key.
// Entries that carry key material (base58 verkeys or did:key values) are returned unchanged.
func DereferenceKeys(didDoc *Doc, keys []string) ([]string, bool) {
	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if !IsKeyReference(key) {
			result = append(result, key)

			continue
		}

		pk, ok := LookupPublicKey(key, didDoc)
		if !ok {
			return nil, false
		}

		result = append(result, base58.Encode(pk.Value))
	}

	return result, true
}
