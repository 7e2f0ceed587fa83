/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import "context"

//go:generate mockgen -destination ../../internal/gomocks/didcomm/transport/mocks.gen.go -package transport . OutboundTransport

// OutboundTransport interface definition for transport layer
// This is the client side of the agent.
type OutboundTransport interface {
	// Send sends an encoded envelope to the endpoint and returns the peer's response, if any.
	Send(ctx context.Context, data []byte, endpoint string) (string, error)

	// Accept reports whether the transport can deliver to the endpoint.
	Accept(endpoint string) bool
}
