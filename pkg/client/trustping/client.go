/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustping

import (
	"context"
	"fmt"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/dispatcher"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/protocol/trustping"
)

// provider contains dependencies for the trust ping client and is typically created by using aries.Context().
type provider interface {
	Outbound() dispatcher.Outbound
}

// Client sends trust pings over established connections.
type Client struct {
	outbound dispatcher.Outbound
}

// New returns a new trust ping client.
func New(ctx provider) *Client {
	return &Client{outbound: ctx.Outbound()}
}

// Send queues a ping to the connection's agent. Connections that are not active are skipped silently.
func (c *Client) Send(ctx context.Context, connectionID string, opts ...trustping.PingOption) error {
	if err := c.outbound.Send(ctx, connectionID, trustping.NewPing(opts...)); err != nil {
		return fmt.Errorf("send ping: %w", err)
	}

	return nil
}

// SendAndReturnBytes encodes a ping for the connection and returns the packet instead of sending it.
// The returned packet is nil when the connection is not active.
func (c *Client) SendAndReturnBytes(ctx context.Context, connectionID string,
	opts ...trustping.PingOption) ([]byte, error) {
	packet, err := c.outbound.SendAndReturn(ctx, connectionID, trustping.NewPing(opts...))
	if err != nil {
		return nil, fmt.Errorf("encode ping: %w", err)
	}

	return packet, nil
}
