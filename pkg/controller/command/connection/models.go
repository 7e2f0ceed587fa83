/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

// IDArg is a request holding a connection ID.
type IDArg struct {
	ID string `json:"id"`
}

// QueryConnectionsArgs filters a connection query.
type QueryConnectionsArgs struct {
	// State restricts results to connections in this state when not empty.
	State string `json:"state,omitempty"`
}

// QueryConnectionsResponse is the result of a connection query.
type QueryConnectionsResponse struct {
	Results []*connection.Record `json:"results"`
}

// ConnectionResponse wraps a single connection record.
type ConnectionResponse struct {
	Result *connection.Record `json:"result"`
}

// ActivityResponse is the activity log of a connection.
type ActivityResponse struct {
	Results []connection.Activity `json:"results"`
}

// UpdateStateArgs requests a connection state change.
type UpdateStateArgs struct {
	ID    string `json:"id"`
	State string `json:"state"`
}
