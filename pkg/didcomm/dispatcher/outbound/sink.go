/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package outbound

import (
	"context"
	"errors"
)

// Sink is the last stage of the dispatch pipeline and receives every encoded message.
type Sink interface {
	Deliver(ctx context.Context, msg *Message) error
}

// DirectSink is implemented by sinks whose packets reach the recipient without mediators.
// Messages dispatched to a direct sink are encoded without routing keys.
type DirectSink interface {
	Sink
	WithoutRoutingKeys() bool
}

type outboundQueue interface {
	Enqueue(packet []byte, endpoint string) error
}

// QueueSink hands packets to the transport queue for delivery to the target endpoint.
type QueueSink struct {
	queue outboundQueue
}

// NewQueueSink returns a sink enqueueing on q.
func NewQueueSink(q outboundQueue) *QueueSink {
	return &QueueSink{queue: q}
}

// Deliver enqueues the packet.
func (s *QueueSink) Deliver(_ context.Context, msg *Message) error {
	packet, ok := msg.Packet()
	if !ok {
		return errors.New("queue sink: message is not encoded")
	}

	target, _ := msg.Target()

	return s.queue.Enqueue(packet, target.Endpoint)
}

// ReturnSink keeps the packet for the caller, who answers the recipient directly.
type ReturnSink struct {
	packet []byte
}

// Deliver keeps the packet.
func (s *ReturnSink) Deliver(_ context.Context, msg *Message) error {
	packet, ok := msg.Packet()
	if !ok {
		return errors.New("return sink: message is not encoded")
	}

	s.packet = packet

	return nil
}

// WithoutRoutingKeys is always true: the packet goes back over the caller's own connection.
func (s *ReturnSink) WithoutRoutingKeys() bool {
	return true
}

// Packet returns the last delivered packet.
func (s *ReturnSink) Packet() []byte {
	return s.packet
}
