/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-messaging-go/pkg/controller/command/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/rest"
	connstore "github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

// constants for connection management endpoints.
const (
	OperationID         = "/connections"
	ConnectionsByIDPath = OperationID + "/{id}"
	ActivityPath        = ConnectionsByIDPath + "/activity"
	UpdateStatePath     = ConnectionsByIDPath + "/state"
)

type provider interface {
	ConnectionRecorder() *connstore.Recorder
}

// Operation is the REST controller for connection management.
type Operation struct {
	command  *connection.Command
	handlers []rest.Handler
}

// New returns new connection management rest client protocol instance.
func New(p provider) *Operation {
	op := &Operation{
		command: connection.New(p),
	}
	op.registerHandler()

	return op
}

// GetRESTHandlers get all controller API handlers available for this service.
func (c *Operation) GetRESTHandlers() []rest.Handler {
	return c.handlers
}

// registerHandler register handlers to be exposed from this service as REST API endpoints.
func (c *Operation) registerHandler() {
	c.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(OperationID, http.MethodGet, c.QueryConnections),
		cmdutil.NewHTTPHandler(OperationID, http.MethodPost, c.SaveConnection),
		cmdutil.NewHTTPHandler(ConnectionsByIDPath, http.MethodGet, c.GetConnection),
		cmdutil.NewHTTPHandler(ConnectionsByIDPath, http.MethodDelete, c.RemoveConnection),
		cmdutil.NewHTTPHandler(ActivityPath, http.MethodGet, c.GetActivity),
		cmdutil.NewHTTPHandler(UpdateStatePath, http.MethodPost, c.UpdateState),
	}
}

// QueryConnections swagger:route GET /connections connections queryConnections
//
// query agent to agent connections.
//
// Responses:
//    default: genericError
//        200: queryConnectionsResponse
func (c *Operation) QueryConnections(rw http.ResponseWriter, req *http.Request) {
	request := fmt.Sprintf(`{"state":%q}`, req.URL.Query().Get("state"))

	rest.Execute(c.command.QueryConnections, rw, bytes.NewBufferString(request))
}

// SaveConnection swagger:route POST /connections connections saveConnection
//
// Creates or replaces a connection record.
//
// Responses:
//    default: genericError
//        200: connectionResponse
func (c *Operation) SaveConnection(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.SaveConnection, rw, req.Body)
}

// GetConnection swagger:route GET /connections/{id} connections getConnection
//
// Fetch a single connection record.
//
// Responses:
//    default: genericError
//        200: connectionResponse
func (c *Operation) GetConnection(rw http.ResponseWriter, req *http.Request) {
	id, found := getIDFromRequest(rw, req)
	if !found {
		return
	}

	rest.Execute(c.command.GetConnection, rw, idRequest(id))
}

// RemoveConnection swagger:route DELETE /connections/{id} connections removeConnection
//
// Removes a connection record and its activity log.
//
// Responses:
//    default: genericError
func (c *Operation) RemoveConnection(rw http.ResponseWriter, req *http.Request) {
	id, found := getIDFromRequest(rw, req)
	if !found {
		return
	}

	rest.Execute(c.command.RemoveConnection, rw, idRequest(id))
}

// GetActivity swagger:route GET /connections/{id}/activity connections getConnectionActivity
//
// Fetch the activity log of a connection.
//
// Responses:
//    default: genericError
//        200: activityResponse
func (c *Operation) GetActivity(rw http.ResponseWriter, req *http.Request) {
	id, found := getIDFromRequest(rw, req)
	if !found {
		return
	}

	rest.Execute(c.command.GetActivity, rw, idRequest(id))
}

// UpdateState swagger:route POST /connections/{id}/state connections updateConnectionState
//
// Moves a connection to a new state.
//
// Responses:
//    default: genericError
//        200: connectionResponse
func (c *Operation) UpdateState(rw http.ResponseWriter, req *http.Request) {
	id, found := getIDFromRequest(rw, req)
	if !found {
		return
	}

	var request connection.UpdateStateArgs

	err := json.NewDecoder(req.Body).Decode(&request)
	if err != nil && !errors.Is(err, io.EOF) {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, connection.InvalidRequestErrorCode, err)

		return
	}

	request.ID = id

	raw, err := json.Marshal(&request)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusInternalServerError, connection.InvalidRequestErrorCode, err)

		return
	}

	rest.Execute(c.command.UpdateState, rw, bytes.NewReader(raw))
}

func idRequest(id string) io.Reader {
	raw, _ := json.Marshal(&connection.IDArg{ID: id}) //nolint:errcheck

	return bytes.NewReader(raw)
}

// getIDFromRequest returns ID from request.
func getIDFromRequest(rw http.ResponseWriter, req *http.Request) (string, bool) {
	id := mux.Vars(req)["id"]
	if id == "" {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, connection.InvalidRequestErrorCode,
			fmt.Errorf("empty connection ID"))

		return "", false
	}

	return id, true
}
