/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-messaging-go/pkg/client/trustping"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/command"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/dispatcher"
	pingmsg "github.com/hyperledger/aries-messaging-go/pkg/didcomm/protocol/trustping"
	"github.com/hyperledger/aries-messaging-go/pkg/internal/logutil"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

var logger = log.New("aries-messaging/controller/trustping")

// constants for the trust ping controller.
const (
	CommandName = "trustping"

	SendPingCommandMethod   = "SendPing"
	SendPingV2CommandMethod = "SendPingV2"

	errEmptyConnID = "empty connection ID"

	// log constants.
	connectionIDString = "connectionID"
	successString      = "success"
)

const (
	// InvalidRequestErrorCode is typically a code for validation errors
	// for invalid trust ping controller requests.
	InvalidRequestErrorCode = command.Code(iota + command.TrustPing)

	// SendPingErrorCode is for failures in send ping command.
	SendPingErrorCode

	// ConnectionNotFoundErrorCode is for pings addressed to unknown connections.
	ConnectionNotFoundErrorCode
)

type provider interface {
	Outbound() dispatcher.Outbound
}

// Command is the controller command for trust pings.
type Command struct {
	client *trustping.Client
}

// New returns new trust ping controller command instance.
func New(ctx provider) *Command {
	return &Command{client: trustping.New(ctx)}
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, SendPingCommandMethod, c.SendPing),
		cmdutil.NewCommandHandler(CommandName, SendPingV2CommandMethod, c.SendPingV2),
	}
}

// SendPing sends a trust ping over the given connection.
// Connections that are not active are skipped and still answer with an empty object.
func (c *Command) SendPing(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := parseArgs(req, SendPingCommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	err := c.client.Send(context.Background(), args.ConnectionID, pingOptions(args)...)
	if err != nil {
		return executeError(SendPingCommandMethod, args.ConnectionID, err)
	}

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, SendPingCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, args.ConnectionID))

	return nil
}

// SendPingV2 encodes a trust ping for the given connection and returns the packet instead of sending it.
func (c *Command) SendPingV2(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := parseArgs(req, SendPingV2CommandMethod)
	if cmdErr != nil {
		return cmdErr
	}

	packet, err := c.client.SendAndReturnBytes(context.Background(), args.ConnectionID, pingOptions(args)...)
	if err != nil {
		return executeError(SendPingV2CommandMethod, args.ConnectionID, err)
	}

	command.WriteNillableResponse(rw, &SendPingV2Response{Packet: packet}, logger)

	logutil.LogDebug(logger, CommandName, SendPingV2CommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, args.ConnectionID))

	return nil
}

func parseArgs(req io.Reader, method string) (*SendPingArgs, command.Error) {
	var args SendPingArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, method, err.Error())

		return nil, command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if args.ConnectionID == "" {
		logutil.LogDebug(logger, CommandName, method, errEmptyConnID)

		return nil, command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyConnID))
	}

	return &args, nil
}

func pingOptions(args *SendPingArgs) []pingmsg.PingOption {
	if args.Comment == "" {
		return nil
	}

	return []pingmsg.PingOption{pingmsg.WithComment(args.Comment)}
}

func executeError(method, connectionID string, err error) command.Error {
	logutil.LogError(logger, CommandName, method, err.Error(),
		logutil.CreateKeyValueString(connectionIDString, connectionID))

	if errors.Is(err, connection.ErrNotFound) {
		return command.NewNotFoundError(ConnectionNotFoundErrorCode, err)
	}

	return command.NewExecuteError(SendPingErrorCode, err)
}
