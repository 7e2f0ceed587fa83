/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"errors"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	mockprovider "github.com/hyperledger/aries-messaging-go/pkg/mock/provider"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

const connectionID = "test-connection-id"

type recorderProvider struct {
	recorder *connection.Recorder
}

func (p *recorderProvider) ConnectionRecorder() *connection.Recorder {
	return p.recorder
}

func newClient(t *testing.T) *Client {
	t.Helper()

	recorder, err := connection.NewRecorder(&mockprovider.Provider{StorageProviderValue: mem.NewProvider()})
	require.NoError(t, err)

	return New(&recorderProvider{recorder: recorder})
}

func TestClient_Lifecycle(t *testing.T) {
	client := newClient(t)

	require.NoError(t, client.SaveConnection(&connection.Record{
		ConnectionID: connectionID,
		State:        connection.StateInvitation,
		TheirDID:     "did:example:theirs",
	}))

	rec, err := client.UpdateState(connectionID, connection.StateActive)
	require.NoError(t, err)
	require.True(t, rec.IsReady())

	rec, err = client.GetConnection(connectionID)
	require.NoError(t, err)
	require.Equal(t, connection.StateActive, rec.State)

	_, err = client.UpdateState(connectionID, connection.StateRequest)
	require.True(t, errors.Is(err, connection.ErrInvalidTransition))

	require.NoError(t, client.RemoveConnection(connectionID))

	_, err = client.GetConnection(connectionID)
	require.True(t, errors.Is(err, connection.ErrNotFound))
}

func TestClient_QueryConnections(t *testing.T) {
	client := newClient(t)

	require.NoError(t, client.SaveConnection(&connection.Record{ConnectionID: "a", State: connection.StateActive}))
	require.NoError(t, client.SaveConnection(&connection.Record{ConnectionID: "b", State: connection.StateInvitation}))

	all, err := client.QueryConnections("")
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := client.QueryConnections(connection.StateActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "a", active[0].ConnectionID)

	_, err = client.QueryConnections("bogus")
	require.EqualError(t, err, `unknown connection state "bogus"`)
}

func TestClient_GetActivity(t *testing.T) {
	client := newClient(t)

	_, err := client.GetActivity(connectionID)
	require.True(t, errors.Is(err, connection.ErrNotFound))

	require.NoError(t, client.SaveConnection(&connection.Record{
		ConnectionID: connectionID,
		State:        connection.StateActive,
	}))

	activity, err := client.GetActivity(connectionID)
	require.NoError(t, err)
	require.Empty(t, activity)

	require.NoError(t, client.recorder.LogActivity(connectionID, "ping", connection.DirectionSent, nil))

	activity, err = client.GetActivity(connectionID)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	require.Equal(t, "ping", activity[0].Type)
	require.Equal(t, connection.DirectionSent, activity[0].Direction)
}
