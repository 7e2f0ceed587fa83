/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ws

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"nhooyr.io/websocket"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport"
)

const defaultDialTimeout = 10 * time.Second

var logger = log.New("aries-messaging/transport/ws")

// OutboundClient delivers envelopes over short-lived websocket connections.
type OutboundClient struct {
	dialTimeout time.Duration
}

var _ transport.OutboundTransport = (*OutboundClient)(nil)

// OutboundOpt configures the websocket outbound transport.
type OutboundOpt func(c *OutboundClient)

// WithDialTimeout bounds how long establishing the websocket connection may take.
func WithDialTimeout(timeout time.Duration) OutboundOpt {
	return func(c *OutboundClient) {
		c.dialTimeout = timeout
	}
}

// NewOutbound creates a client for Outbound WS transport.
func NewOutbound(opts ...OutboundOpt) *OutboundClient {
	c := &OutboundClient{dialTimeout: defaultDialTimeout}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send writes the envelope as one text frame and closes the connection. No response is read.
func (cs *OutboundClient) Send(ctx context.Context, data []byte, endpoint string) (string, error) {
	if endpoint == "" {
		return "", errors.New("url is mandatory")
	}

	dialCtx, cancel := context.WithTimeout(ctx, cs.dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, endpoint, nil) //nolint:bodyclose
	if err != nil {
		return "", fmt.Errorf("websocket client : %w", err)
	}

	defer func() {
		closeErr := conn.Close(websocket.StatusNormalClosure, "envelope delivered")
		if closeErr != nil && websocket.CloseStatus(closeErr) != websocket.StatusNormalClosure {
			logger.Warnf("failed to close websocket connection to %s: %v", endpoint, closeErr)
		}
	}()

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return "", fmt.Errorf("websocket write message : %w", err)
	}

	return "", nil
}

// Accept reports whether endpoint uses the ws or wss scheme.
func (cs *OutboundClient) Accept(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}

	return u.Scheme == "ws" || u.Scheme == "wss"
}
