/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"github.com/hyperledger/aries-messaging-go/pkg/controller/command"
	connectioncmd "github.com/hyperledger/aries-messaging-go/pkg/controller/command/connection"
	trustpingcmd "github.com/hyperledger/aries-messaging-go/pkg/controller/command/trustping"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/rest"
	connectionrest "github.com/hyperledger/aries-messaging-go/pkg/controller/rest/connection"
	trustpingrest "github.com/hyperledger/aries-messaging-go/pkg/controller/rest/trustping"
	"github.com/hyperledger/aries-messaging-go/pkg/framework/context"
)

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(ctx *context.Provider) []rest.Handler {
	// connection REST operation
	connectionOp := connectionrest.New(ctx)

	// trust ping REST operation
	trustpingOp := trustpingrest.New(ctx)

	// create handlers from all operations
	var allHandlers []rest.Handler
	allHandlers = append(allHandlers, connectionOp.GetRESTHandlers()...)
	allHandlers = append(allHandlers, trustpingOp.GetRESTHandlers()...)

	return allHandlers
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(ctx *context.Provider) []command.Handler {
	connCmd := connectioncmd.New(ctx)
	pingCmd := trustpingcmd.New(ctx)

	var allHandlers []command.Handler
	allHandlers = append(allHandlers, connCmd.GetHandlers()...)
	allHandlers = append(allHandlers, pingCmd.GetHandlers()...)

	return allHandlers
}
