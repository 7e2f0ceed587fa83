/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-messaging-go/pkg/controller/command/trustping"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/rest"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/dispatcher"
)

var logger = log.New("aries-messaging/rest/trustping")

// constants for trust ping endpoints.
const (
	OperationID    = "/connections"
	SendPingPath   = OperationID + "/{id}/send-ping"
	SendPingV2Path = OperationID + "/{id}/send-ping-v2"
)

type provider interface {
	Outbound() dispatcher.Outbound
}

// Operation is the REST controller for trust pings.
type Operation struct {
	command  *trustping.Command
	handlers []rest.Handler
}

// New returns new trust ping rest controller instance.
func New(ctx provider) *Operation {
	op := &Operation{command: trustping.New(ctx)}
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
		cmdutil.NewHTTPHandler(SendPingPath, http.MethodPost, c.SendPing),
		cmdutil.NewHTTPHandler(SendPingV2Path, http.MethodPost, c.SendPingV2),
	}
}

// SendPing swagger:route POST /connections/{id}/send-ping trustping sendPing
//
// Sends a trust ping to the agent of the connection. Connections that are not active are skipped.
//
// Responses:
//    default: genericError
//        200: sendPingResponse
func (c *Operation) SendPing(rw http.ResponseWriter, req *http.Request) {
	args, ok := pingArgs(rw, req)
	if !ok {
		return
	}

	rest.Execute(c.command.SendPing, rw, args)
}

// SendPingV2 swagger:route POST /connections/{id}/send-ping-v2 trustping sendPingV2
//
// Encodes a trust ping for the connection and returns the packet as text instead of sending it.
// Connections that are not active answer with an empty object.
//
// Responses:
//    default: genericError
//        200: sendPingResponse
func (c *Operation) SendPingV2(rw http.ResponseWriter, req *http.Request) {
	args, ok := pingArgs(rw, req)
	if !ok {
		return
	}

	rest.ExecuteRaw(c.command.SendPingV2, rw, args, writePacket)
}

func writePacket(rw http.ResponseWriter, out []byte) {
	var resp trustping.SendPingV2Response

	if err := json.Unmarshal(out, &resp); err != nil {
		rest.SendHTTPStatusError(rw, http.StatusInternalServerError, trustping.SendPingErrorCode,
			fmt.Errorf("read ping packet: %w", err))

		return
	}

	if resp.Packet == nil {
		rw.Header().Set("Content-Type", "application/json")

		if _, err := rw.Write([]byte("{}")); err != nil {
			logger.Errorf("Unable to send response, %s", err)
		}

		return
	}

	rw.Header().Set("Content-Type", "text/plain")

	if _, err := rw.Write(resp.Packet); err != nil {
		logger.Errorf("Unable to send response, %s", err)
	}
}

// pingArgs merges the connection ID from the path with the optional request body.
func pingArgs(rw http.ResponseWriter, req *http.Request) (io.Reader, bool) {
	id := mux.Vars(req)["id"]
	if id == "" {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, trustping.InvalidRequestErrorCode,
			fmt.Errorf("empty connection ID"))

		return nil, false
	}

	args := trustping.SendPingArgs{}

	if req.Body != nil {
		err := json.NewDecoder(req.Body).Decode(&args)
		if err != nil && !errors.Is(err, io.EOF) {
			rest.SendHTTPStatusError(rw, http.StatusBadRequest, trustping.InvalidRequestErrorCode, err)

			return nil, false
		}
	}

	args.ConnectionID = id

	raw, err := json.Marshal(&args)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusInternalServerError, trustping.InvalidRequestErrorCode, err)

		return nil, false
	}

	return bytes.NewReader(raw), true
}
