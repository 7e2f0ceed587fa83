/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustping

import (
	"time"

	"github.com/google/uuid"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/protocol/decorator"
)

const (
	// TrustPing protocol name.
	TrustPing = "trust_ping"
	// PIURI is the trust ping protocol URI.
	PIURI = "https://didcomm.org/trust_ping/1.0"
	// PingMsgType defines the trust ping message type.
	PingMsgType = PIURI + "/ping"
	// PingResponseMsgType defines the trust ping response message type.
	PingResponseMsgType = PIURI + "/ping_response"
)

// Ping is the trust ping message
// https://github.com/hyperledger/aries-rfcs/tree/main/features/0048-trust-ping
type Ping struct {
	Type              string            `json:"@type,omitempty"`
	ID                string            `json:"@id,omitempty"`
	Comment           string            `json:"comment,omitempty"`
	ResponseRequested bool              `json:"response_requested"`
	Timing            *decorator.Timing `json:"~timing,omitempty"`
}

// PingResponse answers a Ping on its thread.
type PingResponse struct {
	Type    string            `json:"@type,omitempty"`
	ID      string            `json:"@id,omitempty"`
	Comment string            `json:"comment,omitempty"`
	Thread  *decorator.Thread `json:"~thread,omitempty"`
}

// PingOption customizes a new Ping.
type PingOption func(p *Ping)

// WithComment sets the ping comment.
func WithComment(comment string) PingOption {
	return func(p *Ping) {
		p.Comment = comment
	}
}

// WithoutResponse asks the peer not to answer the ping.
func WithoutResponse() PingOption {
	return func(p *Ping) {
		p.ResponseRequested = false
	}
}

// NewPing creates a ping with a fresh ID requesting a response.
func NewPing(opts ...PingOption) *Ping {
	now := time.Now().UTC()

	p := &Ping{
		Type:              PingMsgType,
		ID:                uuid.New().String(),
		ResponseRequested: true,
		Timing:            &decorator.Timing{OutTime: &now},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// NewPingResponse creates the response threaded to ping.
func NewPingResponse(ping *Ping) *PingResponse {
	return &PingResponse{
		Type:   PingResponseMsgType,
		ID:     uuid.New().String(),
		Thread: &decorator.Thread{ID: ping.ID},
	}
}
