/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package outbound

import (
	"errors"
	"fmt"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/service"
)

// Message is a protocol message on its way to a connection. It starts Unresolved, becomes
// Resolved once its target is known and Encoded once the packet for that target exists.
// An encoded message always keeps the target it was encoded for.
type Message struct {
	ConnectionID string
	Payload      service.DIDCommMsgMap

	state messageState
}

type messageState interface {
	target() *service.ConnectionTarget
}

type unresolved struct{}

func (unresolved) target() *service.ConnectionTarget { return nil }

type resolved struct {
	t *service.ConnectionTarget
}

func (r resolved) target() *service.ConnectionTarget { return r.t }

type encoded struct {
	t      *service.ConnectionTarget
	packet []byte
}

func (e encoded) target() *service.ConnectionTarget { return e.t }

// NewMessage builds an unresolved message from a protocol message struct or map carrying an "@type".
func NewMessage(connectionID string, payload interface{}) (*Message, error) {
	if connectionID == "" {
		return nil, errors.New("outbound message requires a connection ID")
	}

	msg, ok := payload.(service.DIDCommMsgMap)
	if !ok {
		var err error

		msg, err = service.NewDIDCommMsgMap(payload)
		if err != nil {
			return nil, fmt.Errorf("outbound message payload: %w", err)
		}
	}

	if _, err := msg.TypeName(); err != nil {
		return nil, fmt.Errorf("outbound message payload: %w", err)
	}

	return &Message{ConnectionID: connectionID, Payload: msg, state: unresolved{}}, nil
}

// NewResolvedMessage builds a message whose target is already known.
func NewResolvedMessage(connectionID string, payload interface{}, target *service.ConnectionTarget) (*Message,
	error) {
	msg, err := NewMessage(connectionID, payload)
	if err != nil {
		return nil, err
	}

	if err := msg.resolve(target); err != nil {
		return nil, err
	}

	return msg, nil
}

// Target returns the target of a resolved or encoded message.
func (m *Message) Target() (*service.ConnectionTarget, bool) {
	t := m.current().target()

	return t, t != nil
}

// Packet returns the encoded packet of an encoded message.
func (m *Message) Packet() ([]byte, bool) {
	e, ok := m.current().(encoded)
	if !ok {
		return nil, false
	}

	return e.packet, true
}

// IsEncoded reports whether the message was encoded.
func (m *Message) IsEncoded() bool {
	_, ok := m.current().(encoded)

	return ok
}

func (m *Message) current() messageState {
	if m.state == nil {
		return unresolved{}
	}

	return m.state
}

func (m *Message) resolve(target *service.ConnectionTarget) error {
	if target == nil {
		return errors.New("outbound message: nil target")
	}

	if m.IsEncoded() {
		return errors.New("outbound message: already encoded")
	}

	m.state = resolved{t: target}

	return nil
}

func (m *Message) encode(packet []byte) error {
	r, ok := m.current().(resolved)
	if !ok {
		return errors.New("outbound message: encoding requires a resolved target")
	}

	m.state = encoded{t: r.t, packet: packet}

	return nil
}
