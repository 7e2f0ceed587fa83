/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmdutil

import (
	"net/http"

	"github.com/hyperledger/aries-messaging-go/pkg/controller/command"
)

// route is what REST and command handlers share: where a handler is mounted and how it is invoked.
type route struct {
	key    string
	method string
}

// Method returns the http method or command method the handler answers to.
func (r route) Method() string {
	return r.method
}

// HTTPHandler binds a http.HandlerFunc to a path and http method.
type HTTPHandler struct {
	route
	handle http.HandlerFunc
}

// NewHTTPHandler returns a REST handler for path and method.
func NewHTTPHandler(path, method string, handle http.HandlerFunc) *HTTPHandler {
	return &HTTPHandler{route: route{key: path, method: method}, handle: handle}
}

// Path returns the mux path template, for example /connections/{id}/send-ping.
func (h *HTTPHandler) Path() string {
	return h.key
}

// Handle returns http request handle func.
func (h *HTTPHandler) Handle() http.HandlerFunc {
	return h.handle
}

// CommandHandler binds a command.Exec to a command name and method.
type CommandHandler struct {
	route
	handle command.Exec
}

// NewCommandHandler returns a controller command handler.
func NewCommandHandler(name, method string, exec command.Exec) *CommandHandler {
	return &CommandHandler{route: route{key: name, method: method}, handle: exec}
}

// Name of the command.
func (c *CommandHandler) Name() string {
	return c.key
}

// Handle returns execute function of the command handler.
func (c *CommandHandler) Handle() command.Exec {
	return c.handle
}
