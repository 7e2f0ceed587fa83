/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"fmt"

	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

type provider interface {
	ConnectionRecorder() *connection.Recorder
}

// Client is a connection management SDK client.
type Client struct {
	recorder *connection.Recorder
}

// New creates connection Client.
func New(prov provider) *Client {
	return &Client{
		recorder: prov.ConnectionRecorder(),
	}
}

// GetConnection returns the record of a connection.
func (c *Client) GetConnection(connectionID string) (*connection.Record, error) {
	return c.recorder.GetConnectionRecord(connectionID)
}

// QueryConnections lists connections, optionally filtered by state.
func (c *Client) QueryConnections(state connection.State) ([]*connection.Record, error) {
	if state != "" && !state.IsValid() {
		return nil, fmt.Errorf("unknown connection state %q", state)
	}

	return c.recorder.QueryConnectionRecords(state)
}

// GetActivity returns the activity log of a connection.
func (c *Client) GetActivity(connectionID string) ([]connection.Activity, error) {
	if _, err := c.recorder.GetConnectionRecord(connectionID); err != nil {
		return nil, err
	}

	return c.recorder.GetActivity(connectionID)
}

// SaveConnection creates or replaces a connection record.
func (c *Client) SaveConnection(record *connection.Record) error {
	return c.recorder.SaveConnectionRecord(record)
}

// UpdateState moves a connection to a new lifecycle state.
func (c *Client) UpdateState(connectionID string, state connection.State) (*connection.Record, error) {
	return c.recorder.UpdateState(connectionID, state)
}

// RemoveConnection deletes a connection and its activity log.
func (c *Client) RemoveConnection(connectionID string) error {
	return c.recorder.RemoveConnection(connectionID)
}
