/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dispatcher

import "context"

//go:generate mockgen -destination ../../internal/gomocks/didcomm/dispatcher/mocks.gen.go -package dispatcher . Outbound

// Outbound sends protocol messages over established connections.
// Both operations skip connections that are not ready without failing.
type Outbound interface {
	// Send encodes msg for the connection and hands it to the transport queue.
	Send(ctx context.Context, connectionID string, msg interface{}) error
	// SendAndReturn encodes msg for the connection and returns the packet instead of delivering it.
	SendAndReturn(ctx context.Context, connectionID string, msg interface{}) ([]byte, error)
}
