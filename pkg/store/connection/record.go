/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"errors"
	"fmt"
	"time"
)

// State of a connection.
type State string

// Connection states. The handshake moves forward through invitation, request, response and active.
// Error, inactive and abandoned are terminal.
const (
	StateInvitation State = "invitation"
	StateRequest    State = "request"
	StateResponse   State = "response"
	StateActive     State = "active"
	StateError      State = "error"
	StateInactive   State = "inactive"
	StateAbandoned  State = "abandoned"
)

// Initiator of a connection.
const (
	InitiatorSelf = "self"
	InitiatorPeer = "peer"
)

// Direction of an activity log entry.
type Direction string

// Activity directions.
const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

var (
	// ErrNotFound is returned when no record is stored for a connection ID.
	ErrNotFound = errors.New("connection not found")
	// ErrNotReady is returned when a connection is not in a state that allows sending messages.
	ErrNotReady = errors.New("connection not ready")
	// ErrInvalidTransition is returned for state changes that violate the connection lifecycle.
	ErrInvalidTransition = errors.New("invalid connection state transition")
)

//nolint:gochecknoglobals
var stateOrder = map[State]int{
	StateInvitation: 1,
	StateRequest:    2,
	StateResponse:   3,
	StateActive:     4,
}

// Record contains info about a connection with a peer agent.
type Record struct {
	ConnectionID  string    `json:"connection_id"`
	State         State     `json:"state"`
	Initiator     string    `json:"initiator,omitempty"`
	TheirLabel    string    `json:"their_label,omitempty"`
	TheirDID      string    `json:"their_did,omitempty"`
	MyDID         string    `json:"my_did,omitempty"`
	InvitationKey string    `json:"invitation_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsReady reports whether messages may be sent over the connection.
func (r *Record) IsReady() bool {
	return r.State == StateActive
}

// Activity is one entry of a connection's activity log.
type Activity struct {
	Direction Direction         `json:"direction"`
	Type      string            `json:"type"`
	Time      time.Time         `json:"time"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s State) IsTerminal() bool {
	return s == StateError || s == StateInactive || s == StateAbandoned
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	_, ok := stateOrder[s]

	return ok || s.IsTerminal()
}

// CanTransitionTo checks a requested state change against the connection lifecycle.
func (s State) CanTransitionTo(next State) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, next)
	}

	if s.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, s)
	}

	if next.IsTerminal() {
		return nil
	}

	if stateOrder[next] <= stateOrder[s] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}

	return nil
}
