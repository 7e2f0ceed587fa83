/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

// connectionIDParam model
//
// This is used for operations addressing one connection
//
// swagger:parameters getConnection getConnectionActivity removeConnection
type connectionIDParam struct { // nolint: unused,deadcode
	// The ID of the connection record
	//
	// in: path
	// required: true
	ID string `json:"id"`
}

// queryConnectionsParams model
//
// Parameters for querying connections
//
// swagger:parameters queryConnections
type queryConnectionsParams struct { // nolint: unused,deadcode
	// Connection state
	//
	// in: query
	State string `json:"state"`
}

// updateStateRequest model
//
// This is used for moving a connection to a new state
//
// swagger:parameters updateConnectionState
type updateStateRequest struct { // nolint: unused,deadcode
	// The ID of the connection record
	//
	// in: path
	// required: true
	ID string `json:"id"`

	// in: body
	Params struct {
		// New connection state
		State string `json:"state"`
	}
}

// connectionResponse model
//
// Response with a connection record
//
// swagger:response connectionResponse
type connectionResponse struct { // nolint: unused,deadcode
	// in: body
	Result *connection.Record `json:"result"`
}

// queryConnectionsResponse model
//
// Response of a connection query
//
// swagger:response queryConnectionsResponse
type queryConnectionsResponse struct { // nolint: unused,deadcode
	// in: body
	Results []*connection.Record `json:"results"`
}

// activityResponse model
//
// Activity log of a connection
//
// swagger:response activityResponse
type activityResponse struct { // nolint: unused,deadcode
	// in: body
	Results []connection.Activity `json:"results"`
}
