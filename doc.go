/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package messaging sends DIDComm messages to peer agents over established connections.
//
// Packages for end developer usage
//
// pkg/framework/aries: Builds the framework from options and exposes the context used by the clients below.
//
// pkg/client/trustping: Sends trust pings, either queued for delivery or returned as an encoded packet.
//
// pkg/client/connection: Queries connection records and their activity log, and applies state transitions.
//
// pkg/controller/rest/trustping: Provides trust ping through restapi.
//
// Basic workflow
//
//      1) Instantiate an aries instance using provider options.
//      2) Create a context using your aries instance.
//      3) Create a client instance using its New func, passing the context.
//      4) Use the funcs provided by each client to create your solution!
//      5) Call aries.Close() to release resources.
package messaging
