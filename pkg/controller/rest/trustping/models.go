/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustping

// sendPingRequest model
//
// This is used for sending a trust ping over a connection
//
// swagger:parameters sendPing sendPingV2
type sendPingRequest struct { // nolint: unused,deadcode
	// The ID of the connection to ping
	//
	// in: path
	// required: true
	ID string `json:"id"`

	// Params for the ping
	//
	// in: body
	Params struct {
		// Comment carried in the ping
		Comment string `json:"comment"`
	}
}

// sendPingResponse model
//
// Response of send ping action
//
// swagger:response sendPingResponse
type sendPingResponse struct { // nolint: unused,deadcode
	// in: body
	Body struct{}
}
