/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"testing"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"
)

//nolint:lll
const validDoc = `{
  "@context": ["https://w3id.org/did/v1"],
  "id": "did:example:21tDAKCERh95uGgKbJNHYp",
  "versionId": "2",
  "updated": "2019-09-23T14:16:59.484733-04:00",
  "publicKey": [
    {
      "id": "did:example:21tDAKCERh95uGgKbJNHYp#keys-1",
      "type": "Ed25519VerificationKey2018",
      "controller": "did:example:21tDAKCERh95uGgKbJNHYp",
      "publicKeyBase58": "H3C2AVvLMv6gmMNam3uVAjZpfkcJCwDwnZn6z3wXmqPV"
    }
  ],
  "service": [
    {
      "id": "did:example:21tDAKCERh95uGgKbJNHYp#agent",
      "type": "did-communication",
      "priority": 0,
      "recipientKeys": ["did:example:21tDAKCERh95uGgKbJNHYp#keys-1"],
      "routingKeys": ["8HH5gYEeNc3z7PYXmd54d4x6qAfCNrqQqEB3nS7Zfu7K"],
      "serviceEndpoint": "https://agent.example.com/",
      "accept": ["didcomm/aip1"]
    }
  ]
}`

func TestParseDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc, err := ParseDocument([]byte(validDoc))
		require.NoError(t, err)
		require.Equal(t, []string{Context}, doc.Context)
		require.Equal(t, "did:example:21tDAKCERh95uGgKbJNHYp", doc.ID)
		require.Len(t, doc.PublicKey, 1)
		require.Equal(t, "H3C2AVvLMv6gmMNam3uVAjZpfkcJCwDwnZn6z3wXmqPV", base58.Encode(doc.PublicKey[0].Value))
		require.Len(t, doc.Service, 1)
		require.Equal(t, "https://agent.example.com/", doc.Service[0].ServiceEndpoint)
		require.Equal(t, []string{"8HH5gYEeNc3z7PYXmd54d4x6qAfCNrqQqEB3nS7Zfu7K"}, doc.Service[0].RoutingKeys)
		require.Contains(t, doc.Service[0].Properties, "accept")
		require.Equal(t, "2", doc.Revision())
	})

	t.Run("invalid documents", func(t *testing.T) {
		_, err := ParseDocument([]byte("{"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "JSON marshalling of did doc bytes bytes failed")

		_, err = ParseDocument([]byte("null"))
		require.EqualError(t, err, "document payload is not provided")

		_, err = ParseDocument([]byte(`{"publicKey":[]}`))
		require.EqualError(t, err, "document is missing an id")

		_, err = ParseDocument([]byte(`{"id":"did:example:1","publicKey":[{"id":"k1","publicKeyPem":"x"}]}`))
		require.EqualError(t, err, "populate public keys failed: public key k1: encoding not supported")

		_, err = ParseDocument([]byte(`{"id":"did:example:1","service":[{"id":"s","priority":"high"}]}`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "populate services failed")

		_, err = ParseDocument([]byte(`{"id":"did:example:1","service":[{"id":"s","priority":-1}]}`))
		require.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		doc, err := ParseDocument([]byte(validDoc))
		require.NoError(t, err)

		bytes, err := doc.JSONBytes()
		require.NoError(t, err)

		doc2, err := ParseDocument(bytes)
		require.NoError(t, err)
		require.Equal(t, doc.ID, doc2.ID)
		require.Equal(t, doc.PublicKey, doc2.PublicKey)
		require.Equal(t, doc.Service[0].RecipientKeys, doc2.Service[0].RecipientKeys)
		require.Equal(t, doc.Revision(), doc2.Revision())
	})
}

func TestRevision(t *testing.T) {
	updated := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "", BuildDoc("did:example:1").Revision())
	require.Equal(t, "2020-01-01T00:00:00Z", BuildDoc("did:example:1", WithUpdatedTime(updated)).Revision())
	require.Equal(t, "v7", BuildDoc("did:example:1", WithUpdatedTime(updated), WithVersionID("v7")).Revision())
}

func TestParseDID(t *testing.T) {
	d, err := Parse("did:peer:21tDAKCERh95uGgKbJNHYp")
	require.NoError(t, err)
	require.Equal(t, "peer", d.Method)
	require.Equal(t, "21tDAKCERh95uGgKbJNHYp", d.MethodSpecificID)
	require.Equal(t, "did:peer:21tDAKCERh95uGgKbJNHYp", d.String())

	for _, invalid := range []string{"", "did", "did:peer", "did::123", "xyz:peer:123", "did:pe#er:1"} {
		_, err = Parse(invalid)
		require.Error(t, err, invalid)
	}
}
