/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package outbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/service"
	didconnection "github.com/hyperledger/aries-messaging-go/pkg/didcomm/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/dispatcher"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/envelope"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport/queue"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

var logger = log.New("aries-messaging/didcomm/dispatcher")

// provider interface for outbound ctx.
type provider interface {
	ConnectionRecorder() *connection.Recorder
	ConnectionManager() *didconnection.Manager
	Serializer() *envelope.Serializer
	OutboundQueue() *queue.Queue
}

// ConnectionRecorder reads connection records and appends to their activity log.
type ConnectionRecorder interface {
	GetConnectionRecord(connectionID string) (*connection.Record, error)
	LogActivity(connectionID, msgType string, direction connection.Direction, meta map[string]string) error
}

// TargetManager resolves the delivery target of a connection.
type TargetManager interface {
	GetConnectionTarget(ctx context.Context, record *connection.Record) (*service.ConnectionTarget, error)
}

// Serializer encodes payloads into envelopes.
type Serializer interface {
	EncodeMessage(ctx context.Context, payload []byte, recipientKeys, routingKeys []string,
		senderKey string) ([]byte, error)
}

// Dispatcher runs the outbound pipeline: target resolution, encoding and delivery to a sink.
type Dispatcher struct {
	connections ConnectionRecorder
	targets     TargetManager
	serializer  Serializer
	queueSink   *QueueSink
	// per-connection delivery locks, so the activity log follows delivery order
	locks sync.Map
}

var _ dispatcher.Outbound = (*Dispatcher)(nil)

// NewOutbound return new dispatcher outbound instance.
func NewOutbound(prov provider) (*Dispatcher, error) {
	switch {
	case prov.ConnectionRecorder() == nil:
		return nil, errors.New("outbound dispatcher: missing connection recorder")
	case prov.ConnectionManager() == nil:
		return nil, errors.New("outbound dispatcher: missing connection manager")
	case prov.Serializer() == nil:
		return nil, errors.New("outbound dispatcher: missing serializer")
	case prov.OutboundQueue() == nil:
		return nil, errors.New("outbound dispatcher: missing outbound queue")
	}

	return New(prov.ConnectionRecorder(), prov.ConnectionManager(), prov.Serializer(), prov.OutboundQueue()), nil
}

// New returns a dispatcher over explicit collaborators; Send enqueues on q.
func New(connections ConnectionRecorder, targets TargetManager, serializer Serializer, q outboundQueue) *Dispatcher {
	return &Dispatcher{
		connections: connections,
		targets:     targets,
		serializer:  serializer,
		queueSink:   NewQueueSink(q),
	}
}

// Send dispatches msg to the transport queue. Connections that are not ready are skipped silently.
func (o *Dispatcher) Send(ctx context.Context, connectionID string, msg interface{}) error {
	err := o.send(ctx, connectionID, msg, o.queueSink)
	if errors.Is(err, connection.ErrNotReady) {
		return nil
	}

	return err
}

// SendAndReturn dispatches msg and returns the encoded packet without delivering it. The packet is
// encoded without routing keys. Connections that are not ready yield no packet and no error.
func (o *Dispatcher) SendAndReturn(ctx context.Context, connectionID string, msg interface{}) ([]byte, error) {
	sink := &ReturnSink{}

	err := o.send(ctx, connectionID, msg, sink)
	if errors.Is(err, connection.ErrNotReady) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return sink.Packet(), nil
}

// Dispatch runs a message built by the caller through the pipeline. Unresolved messages are resolved
// and encoded; encoded messages go to the sink as they are. Connections that are not ready are skipped
// silently, encoded messages included.
func (o *Dispatcher) Dispatch(ctx context.Context, msg *Message, sink Sink) error {
	record, err := o.readyRecord(msg.ConnectionID)
	if errors.Is(err, connection.ErrNotReady) {
		return nil
	}

	if err != nil {
		return err
	}

	return o.dispatch(ctx, record, msg, sink)
}

func (o *Dispatcher) send(ctx context.Context, connectionID string, payload interface{}, sink Sink) error {
	record, err := o.readyRecord(connectionID)
	if err != nil {
		return err
	}

	msg, err := NewMessage(connectionID, payload)
	if err != nil {
		return err
	}

	return o.dispatch(ctx, record, msg, sink)
}

// readyRecord loads the connection record and fails with connection.ErrNotReady unless it can send.
func (o *Dispatcher) readyRecord(connectionID string) (*connection.Record, error) {
	record, err := o.record(connectionID)
	if err != nil {
		return nil, err
	}

	if !record.IsReady() {
		logger.Debugf("connection %s is %s, skipping outbound message", connectionID, record.State)

		return nil, fmt.Errorf("%w: %s", connection.ErrNotReady, connectionID)
	}

	return record, nil
}

// dispatch prepares msg and delivers it. The record's target is only resolved when msg has none yet.
func (o *Dispatcher) dispatch(ctx context.Context, record *connection.Record, msg *Message, sink Sink) error {
	if !msg.IsEncoded() {
		if err := o.prepare(ctx, record, msg, withoutRoutingKeys(sink)); err != nil {
			return err
		}
	}

	return o.deliver(ctx, msg, sink)
}

func (o *Dispatcher) prepare(ctx context.Context, record *connection.Record, msg *Message,
	direct bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, ok := msg.Target()
	if !ok {
		var err error

		target, err = o.targets.GetConnectionTarget(ctx, record)
		if err != nil {
			return fmt.Errorf("outbound dispatch to %s: %w", msg.ConnectionID, err)
		}

		if err = msg.resolve(target); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("outbound dispatch to %s: marshal payload: %w", msg.ConnectionID, err)
	}

	routingKeys := target.RoutingKeys
	if direct {
		routingKeys = nil
	}

	packet, err := o.serializer.EncodeMessage(ctx, payload, target.RecipientKeys, routingKeys, target.SenderKey)
	if err != nil {
		return fmt.Errorf("outbound dispatch to %s: %w", msg.ConnectionID, err)
	}

	return msg.encode(packet)
}

// deliver hands msg to the sink and logs it. Both happen under the connection's lock.
func (o *Dispatcher) deliver(ctx context.Context, msg *Message, sink Sink) error {
	mu := o.lock(msg.ConnectionID)
	mu.Lock()
	defer mu.Unlock()

	if err := sink.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("outbound dispatch to %s: deliver: %w", msg.ConnectionID, err)
	}

	o.logActivity(msg)

	return nil
}

// logActivity records the sent message. Failures are logged and never fail the dispatch.
func (o *Dispatcher) logActivity(msg *Message) {
	msgType, err := msg.Payload.TypeName()
	if err != nil {
		logger.Warnf("activity log for connection %s: %s", msg.ConnectionID, err)

		return
	}

	meta := map[string]string{}
	if id := msg.Payload.ID(); id != "" {
		meta["message_id"] = id
	}

	err = o.connections.LogActivity(msg.ConnectionID, msgType, connection.DirectionSent, meta)
	if err != nil {
		logger.Errorf("failed to log %s activity for connection %s: %s", msgType, msg.ConnectionID, err)
	}
}

func (o *Dispatcher) record(connectionID string) (*connection.Record, error) {
	record, err := o.connections.GetConnectionRecord(connectionID)
	if err != nil {
		return nil, fmt.Errorf("outbound dispatch: %w", err)
	}

	return record, nil
}

func (o *Dispatcher) lock(connectionID string) *sync.Mutex {
	mu, _ := o.locks.LoadOrStore(connectionID, &sync.Mutex{})

	return mu.(*sync.Mutex) //nolint:forcetypeassert
}

func withoutRoutingKeys(sink Sink) bool {
	direct, ok := sink.(DirectSink)

	return ok && direct.WithoutRoutingKeys()
}
