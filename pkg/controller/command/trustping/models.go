/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustping

// SendPingArgs are the arguments of a send ping command.
type SendPingArgs struct {
	// ConnectionID of the connection to ping.
	ConnectionID string `json:"connection_id"`
	// Comment carried in the ping.
	Comment string `json:"comment,omitempty"`
}

// SendPingV2Response carries the encoded ping packet of a send ping v2 command.
// Packet is empty when the connection was not ready.
type SendPingV2Response struct {
	Packet []byte `json:"packet,omitempty"`
}
