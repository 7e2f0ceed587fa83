/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-messaging-go/pkg/client/connection"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/command"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-messaging-go/pkg/internal/logutil"
	connstore "github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

var logger = log.New("aries-messaging/controller/connection")

// constants for connection management endpoints.
const (
	CommandName = "connection"

	GetConnectionCommandMethod    = "GetConnection"
	QueryConnectionsCommandMethod = "QueryConnections"
	GetActivityCommandMethod      = "GetActivity"
	SaveConnectionCommandMethod   = "SaveConnection"
	UpdateStateCommandMethod      = "UpdateState"
	RemoveConnectionCommandMethod = "RemoveConnection"

	errEmptyConnID = "empty connection ID"

	// log constants.
	connectionIDString = "connectionID"
	stateString        = "state"
	successString      = "success"
)

const (
	// InvalidRequestErrorCode is typically a code for validation errors
	// for invalid connection controller requests.
	InvalidRequestErrorCode = command.Code(iota + command.Connection)

	// ConnectionNotFoundErrorCode is for requests addressing an unknown connection.
	ConnectionNotFoundErrorCode
	// QueryConnectionsErrorCode is for failures in query connections command.
	QueryConnectionsErrorCode
	// SaveConnectionErrorCode is for failures in save connection command.
	SaveConnectionErrorCode
	// UpdateStateErrorCode is for failures in update state command.
	UpdateStateErrorCode
	// RemoveConnectionErrorCode is for failures in remove connection command.
	RemoveConnectionErrorCode
)

type provider interface {
	ConnectionRecorder() *connstore.Recorder
}

// Command provides controller API for connection commands.
type Command struct {
	client *connection.Client
}

// New creates connection Command.
func New(prov provider) *Command {
	return &Command{
		client: connection.New(prov),
	}
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, GetConnectionCommandMethod, c.GetConnection),
		cmdutil.NewCommandHandler(CommandName, QueryConnectionsCommandMethod, c.QueryConnections),
		cmdutil.NewCommandHandler(CommandName, GetActivityCommandMethod, c.GetActivity),
		cmdutil.NewCommandHandler(CommandName, SaveConnectionCommandMethod, c.SaveConnection),
		cmdutil.NewCommandHandler(CommandName, UpdateStateCommandMethod, c.UpdateState),
		cmdutil.NewCommandHandler(CommandName, RemoveConnectionCommandMethod, c.RemoveConnection),
	}
}

// GetConnection returns the record of a connection.
func (c *Command) GetConnection(rw io.Writer, req io.Reader) command.Error {
	id, cmdErr := readID(req, GetConnectionCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	record, err := c.client.GetConnection(id)
	if err != nil {
		return lookupError(GetConnectionCommandMethod, id, err)
	}

	command.WriteNillableResponse(rw, &ConnectionResponse{Result: record}, logger)

	logutil.LogDebug(logger, CommandName, GetConnectionCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, id))

	return nil
}

// QueryConnections lists connections, optionally restricted to one state.
func (c *Command) QueryConnections(rw io.Writer, req io.Reader) command.Error {
	var request QueryConnectionsArgs

	if err := json.NewDecoder(req).Decode(&request); err != nil {
		logutil.LogInfo(logger, CommandName, QueryConnectionsCommandMethod, err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	records, err := c.client.QueryConnections(connstore.State(request.State))
	if err != nil {
		logutil.LogError(logger, CommandName, QueryConnectionsCommandMethod, err.Error())

		return command.NewExecuteError(QueryConnectionsErrorCode, err)
	}

	if records == nil {
		records = []*connstore.Record{}
	}

	command.WriteNillableResponse(rw, &QueryConnectionsResponse{Results: records}, logger)

	logutil.LogDebug(logger, CommandName, QueryConnectionsCommandMethod, successString,
		logutil.CreateKeyValueString(stateString, request.State))

	return nil
}

// GetActivity returns the activity log of a connection.
func (c *Command) GetActivity(rw io.Writer, req io.Reader) command.Error {
	id, cmdErr := readID(req, GetActivityCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	activity, err := c.client.GetActivity(id)
	if err != nil {
		return lookupError(GetActivityCommandMethod, id, err)
	}

	if activity == nil {
		activity = []connstore.Activity{}
	}

	command.WriteNillableResponse(rw, &ActivityResponse{Results: activity}, logger)

	logutil.LogDebug(logger, CommandName, GetActivityCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, id))

	return nil
}

// SaveConnection creates or replaces a connection record.
func (c *Command) SaveConnection(rw io.Writer, req io.Reader) command.Error {
	var record connstore.Record

	if err := json.NewDecoder(req).Decode(&record); err != nil {
		logutil.LogInfo(logger, CommandName, SaveConnectionCommandMethod, err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if record.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, SaveConnectionCommandMethod, errEmptyConnID)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnID))
	}

	if !record.State.IsValid() {
		logutil.LogDebug(logger, CommandName, SaveConnectionCommandMethod, "invalid state",
			logutil.CreateKeyValueString(stateString, string(record.State)))

		return command.NewValidationError(InvalidRequestErrorCode,
			fmt.Errorf("unknown connection state %q", record.State))
	}

	if err := c.client.SaveConnection(&record); err != nil {
		logutil.LogError(logger, CommandName, SaveConnectionCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, record.ConnectionID))

		if errors.Is(err, connstore.ErrInvalidTransition) {
			return command.NewValidationError(SaveConnectionErrorCode, err)
		}

		return command.NewExecuteError(SaveConnectionErrorCode, err)
	}

	command.WriteNillableResponse(rw, &ConnectionResponse{Result: &record}, logger)

	logutil.LogDebug(logger, CommandName, SaveConnectionCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, record.ConnectionID))

	return nil
}

// UpdateState moves a connection to a new state.
func (c *Command) UpdateState(rw io.Writer, req io.Reader) command.Error {
	var request UpdateStateArgs

	if err := json.NewDecoder(req).Decode(&request); err != nil {
		logutil.LogInfo(logger, CommandName, UpdateStateCommandMethod, err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.ID == "" {
		logutil.LogDebug(logger, CommandName, UpdateStateCommandMethod, errEmptyConnID)

		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnID))
	}

	record, err := c.client.UpdateState(request.ID, connstore.State(request.State))
	if err != nil {
		logutil.LogError(logger, CommandName, UpdateStateCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, request.ID),
			logutil.CreateKeyValueString(stateString, request.State))

		switch {
		case errors.Is(err, connstore.ErrNotFound):
			return command.NewNotFoundError(ConnectionNotFoundErrorCode, err)
		case errors.Is(err, connstore.ErrInvalidTransition):
			return command.NewValidationError(UpdateStateErrorCode, err)
		default:
			return command.NewExecuteError(UpdateStateErrorCode, err)
		}
	}

	command.WriteNillableResponse(rw, &ConnectionResponse{Result: record}, logger)

	logutil.LogDebug(logger, CommandName, UpdateStateCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, request.ID),
		logutil.CreateKeyValueString(stateString, request.State))

	return nil
}

// RemoveConnection deletes a connection and its activity log.
func (c *Command) RemoveConnection(rw io.Writer, req io.Reader) command.Error {
	id, cmdErr := readID(req, RemoveConnectionCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	if err := c.client.RemoveConnection(id); err != nil {
		logutil.LogError(logger, CommandName, RemoveConnectionCommandMethod, err.Error(),
			logutil.CreateKeyValueString(connectionIDString, id))

		if errors.Is(err, connstore.ErrNotFound) {
			return command.NewNotFoundError(ConnectionNotFoundErrorCode, err)
		}

		return command.NewExecuteError(RemoveConnectionErrorCode, err)
	}

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, RemoveConnectionCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, id))

	return nil
}

func readID(req io.Reader, method string) (string, command.Error) {
	var request IDArg

	if err := json.NewDecoder(req).Decode(&request); err != nil {
		logutil.LogInfo(logger, CommandName, method, err.Error())

		return "", command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.ID == "" {
		logutil.LogDebug(logger, CommandName, method, errEmptyConnID)

		return "", command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnID))
	}

	return request.ID, nil
}

func lookupError(method, id string, err error) command.Error {
	logutil.LogError(logger, CommandName, method, err.Error(),
		logutil.CreateKeyValueString(connectionIDString, id))

	if errors.Is(err, connstore.ErrNotFound) {
		return command.NewNotFoundError(ConnectionNotFoundErrorCode, err)
	}

	return command.NewExecuteError(QueryConnectionsErrorCode, err)
}
