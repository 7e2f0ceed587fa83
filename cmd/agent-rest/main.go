/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package agent-rest (Agent REST Server) of aries-messaging-go.
//
// Serves the connection, messaging and trust ping operations of a DIDComm messaging agent over HTTP.
//
//     Schemes: https
//     Version: 0.1.0
//     License: SPDX-License-Identifier: Apache-2.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// swagger:meta
package main

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-messaging-go/cmd/agent-rest/startcmd"
)

var logger = log.New("aries-messaging/agent-rest")

func main() {
	rootCmd, err := newRootCmd()
	if err != nil {
		logger.Fatalf("Failed to set up agent-rest: %s", err)
	}

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("Failed to run agent-rest: %s", err)
	}
}

// newRootCmd builds the agent-rest command tree. Without a subcommand it prints its usage.
func newRootCmd() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "agent-rest",
		Short: "DIDComm messaging agent",
		Long: "Runs a DIDComm messaging agent that tracks connections, packs outbound messages " +
			"and exposes its operations as a REST API",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	startCmd, err := startcmd.Cmd(&startcmd.HTTPServer{})
	if err != nil {
		return nil, fmt.Errorf("create start command: %w", err)
	}

	rootCmd.AddCommand(startCmd)

	return rootCmd, nil
}
