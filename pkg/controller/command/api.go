/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package command

import (
	"encoding/json"
	"io"

	"github.com/hyperledger/aries-framework-go/spi/log"
)

// Exec runs a controller command: the JSON request is read from req and the JSON response written to rw.
type Exec func(rw io.Writer, req io.Reader) Error

// Handler describes one controller command, addressed by its name and method.
type Handler interface {
	Name() string
	Method() string
	Handle() Exec
}

// WriteNillableResponse writes v to w as JSON. A nil v is written as an empty object,
// so callers that have nothing to report still produce a valid JSON document.
func WriteNillableResponse(w io.Writer, v interface{}, l log.Logger) {
	obj := v
	if v == nil {
		obj = struct{}{}
	}

	if err := json.NewEncoder(w).Encode(obj); err != nil {
		l.Errorf("Unable to send response, %s", err)
	}
}
