/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/model"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/service"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/transport"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-messaging-go/pkg/vdr/fingerprint"
)

var logger = log.New("aries-messaging/didcomm/envelope")

// ErrEncoding is returned when a payload could not be turned into an envelope.
var ErrEncoding = errors.New("envelope encoding failed")

// Provider contains dependencies for the serializer and is typically created by using aries.Context().
type Provider interface {
	Packer() packer.Packer
}

// Serializer encodes payloads into DIDComm envelopes, wrapping them in forward messages
// for every routing key, and decodes envelopes addressed to this agent.
type Serializer struct {
	packer packer.Packer
}

// New returns a new Serializer.
func New(ctx Provider) *Serializer {
	return &Serializer{packer: ctx.Packer()}
}

// EncodeMessage packs payload for recipientKeys. Without senderKey the envelope is anonymous.
// With routing keys [R1..Rn] the envelope is wrapped in forward messages, the outermost one
// being readable by Rn only. Keys are base58 verkeys or did:key values.
func (s *Serializer) EncodeMessage(ctx context.Context, payload []byte, recipientKeys, routingKeys []string,
	senderKey string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("%w: no recipient keys", ErrEncoding)
	}

	recipients, err := rawKeys(recipientKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient keys: %w", ErrEncoding, err)
	}

	var sender []byte

	if senderKey != "" {
		sender, err = fingerprint.RawKey(senderKey)
		if err != nil {
			return nil, fmt.Errorf("%w: sender key: %w", ErrEncoding, err)
		}
	}

	packed, err := s.packer.Pack(payload, sender, recipients)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	if len(routingKeys) == 0 {
		return packed, nil
	}

	fwdKeys := append([]string{recipientKeys[0]}, routingKeys...)

	packed, err = s.createPackedNestedForwards(packed, fwdKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return packed, nil
}

// DecodeMessage unpacks an envelope addressed to one of the keys held by this agent.
func (s *Serializer) DecodeMessage(ctx context.Context, packet []byte) (*transport.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env, err := s.packer.Unpack(packet)
	if err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	return env, nil
}

// createPackedNestedForwards wraps msg so that fwdKeys[i+1] receives a forward to fwdKeys[i].
func (s *Serializer) createPackedNestedForwards(msg []byte, fwdKeys []string) ([]byte, error) {
	for i, key := range fwdKeys {
		if i+1 >= len(fwdKeys) {
			break
		}

		to, err := fingerprint.ToBase58(key)
		if err != nil {
			return nil, fmt.Errorf("forward key %d: %w", i, err)
		}

		env := &model.Envelope{}

		if err = json.Unmarshal(msg, env); err != nil {
			return nil, fmt.Errorf("failed to read packed envelope: %w", err)
		}

		forward := model.Forward{
			Type: service.ForwardMsgType,
			ID:   uuid.New().String(),
			To:   to,
			Msg:  env,
		}

		msg, err = s.packForward(forward, fwdKeys[i+1])
		if err != nil {
			return nil, fmt.Errorf("failed to pack forward msg: %w", err)
		}

		logger.Debugf("wrapped envelope in forward %s for routing key %d", forward.ID, i+1)
	}

	return msg, nil
}

func (s *Serializer) packForward(fwd model.Forward, toKey string) ([]byte, error) {
	req, err := json.Marshal(fwd)
	if err != nil {
		return nil, fmt.Errorf("failed marshal to bytes: %w", err)
	}

	recipient, err := fingerprint.RawKey(toKey)
	if err != nil {
		return nil, err
	}

	return s.packer.Pack(req, nil, [][]byte{recipient})
}

func rawKeys(keys []string) ([][]byte, error) {
	raw := make([][]byte, 0, len(keys))

	for i, key := range keys {
		k, err := fingerprint.RawKey(key)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}

		raw = append(raw, k)
	}

	return raw, nil
}
