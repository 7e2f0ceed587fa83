/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package service

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"

	diddoc "github.com/hyperledger/aries-messaging-go/pkg/doc/did"
	"github.com/hyperledger/aries-messaging-go/pkg/vdr/fingerprint"
)

const (
	didCommServiceType = "did-communication"
	// legacyDIDCommServiceType is the non-spec service type used by legacy didcomm agent systems.
	legacyDIDCommServiceType = "IndyAgent"
)

// ErrMissingService is returned when a DID document declares no usable DIDComm service.
var ErrMissingService = errors.New("missing DID doc service")

// ConnectionTarget provides the endpoint, keys and label needed to deliver a message to a peer.
// Keys are base58 Ed25519 verkeys; RecipientKeys and RoutingKeys keep their declaration order.
type ConnectionTarget struct {
	Endpoint      string
	RecipientKeys []string
	RoutingKeys   []string
	SenderKey     string
	Label         string
	// TheirDID and MyDID are the documents the target was computed from, with their revisions.
	TheirDID      string
	TheirRevision string
	MyDID         string
	MyRevision    string
}

// CreateTarget makes a ConnectionTarget from the peer's DID document as per the DIDComm service conventions:
// https://github.com/hyperledger/aries-rfcs/blob/master/features/0067-didcomm-diddoc-conventions/README.md.
// myDoc provides the sender key; when it is nil the target carries no sender key and
// messages to it are encrypted anonymously.
func CreateTarget(theirDoc, myDoc *diddoc.Doc) (*ConnectionTarget, error) {
	didCommService, ok := diddoc.LookupService(theirDoc, didCommServiceType)
	if !ok {
		// Interop: fallback to using IndyAgent service type
		didCommService, ok = diddoc.LookupService(theirDoc, legacyDIDCommServiceType)
		if !ok {
			return nil, fmt.Errorf("create target: %w: %s", ErrMissingService, theirDoc.ID)
		}
	}

	if didCommService.ServiceEndpoint == "" {
		return nil, fmt.Errorf("create target: no service endpoint on didcomm service block in diddoc: %s",
			theirDoc.ID)
	}

	if len(didCommService.RecipientKeys) == 0 {
		return nil, fmt.Errorf("create target: no recipient keys on didcomm service block in diddoc: %s",
			theirDoc.ID)
	}

	recipientKeys, err := normalizeKeys(theirDoc, didCommService.RecipientKeys)
	if err != nil {
		return nil, fmt.Errorf("create target: recipient keys: %w", err)
	}

	routingKeys, err := normalizeKeys(theirDoc, didCommService.RoutingKeys)
	if err != nil {
		return nil, fmt.Errorf("create target: routing keys: %w", err)
	}

	target := &ConnectionTarget{
		Endpoint:      didCommService.ServiceEndpoint,
		RecipientKeys: recipientKeys,
		RoutingKeys:   routingKeys,
		TheirDID:      theirDoc.ID,
		TheirRevision: theirDoc.Revision(),
	}

	if myDoc != nil {
		senderKey, err := senderKey(myDoc)
		if err != nil {
			return nil, fmt.Errorf("create target: sender key: %w", err)
		}

		target.SenderKey = senderKey
		target.MyDID = myDoc.ID
		target.MyRevision = myDoc.Revision()
	}

	return target, nil
}

// normalizeKeys dereferences document key references and converts did:key values into base58 verkeys.
func normalizeKeys(doc *diddoc.Doc, keys []string) ([]string, error) {
	dereferenced, ok := diddoc.DereferenceKeys(doc, keys)
	if !ok {
		return nil, fmt.Errorf("unresolvable key reference in %s", doc.ID)
	}

	result := make([]string, 0, len(dereferenced))

	for _, key := range dereferenced {
		b58, err := fingerprint.ToBase58(key)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}

		result = append(result, b58)
	}

	return result, nil
}

func senderKey(myDoc *diddoc.Doc) (string, error) {
	if pk, ok := diddoc.LookupEd25519Key(myDoc); ok {
		return base58.Encode(pk.Value), nil
	}

	svc, ok := diddoc.LookupService(myDoc, didCommServiceType)
	if !ok {
		svc, ok = diddoc.LookupService(myDoc, legacyDIDCommServiceType)
	}

	if !ok || len(svc.RecipientKeys) == 0 {
		return "", fmt.Errorf("no Ed25519 key in %s", myDoc.ID)
	}

	keys, err := normalizeKeys(myDoc, svc.RecipientKeys[:1])
	if err != nil {
		return "", err
	}

	return keys[0], nil
}
