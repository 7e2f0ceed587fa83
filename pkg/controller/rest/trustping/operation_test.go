/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	command "github.com/hyperledger/aries-messaging-go/pkg/controller/command/trustping"
	"github.com/hyperledger/aries-messaging-go/pkg/controller/rest"
	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/dispatcher"
	pingmsg "github.com/hyperledger/aries-messaging-go/pkg/didcomm/protocol/trustping"
	mockdispatcher "github.com/hyperledger/aries-messaging-go/pkg/internal/gomocks/didcomm/dispatcher"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

const connID = "C1"

type mockProvider struct {
	outbound dispatcher.Outbound
}

func (p *mockProvider) Outbound() dispatcher.Outbound {
	return p.outbound
}

func newOperation(t *testing.T) (*Operation, *mockdispatcher.MockOutbound) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	outbound := mockdispatcher.NewMockOutbound(ctrl)

	return New(&mockProvider{outbound: outbound}), outbound
}

func TestOperation_SendPing(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		op, outbound := newOperation(t)

		outbound.EXPECT().Send(gomock.Any(), connID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, msg interface{}) error {
				require.Equal(t, "hi", msg.(*pingmsg.Ping).Comment)

				return nil
			})

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingPath),
			strings.NewReader(`{"comment":"hi"}`), "/connections/C1/send-ping")
		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, "{}", rr.Body.String())
	})

	t.Run("empty body", func(t *testing.T) {
		op, outbound := newOperation(t)

		outbound.EXPECT().Send(gomock.Any(), connID, gomock.Any()).Return(nil)

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingPath), nil, "/connections/C1/send-ping")
		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, "{}", rr.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		op, _ := newOperation(t)

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingPath),
			strings.NewReader("--"), "/connections/C1/send-ping")
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown connection", func(t *testing.T) {
		op, outbound := newOperation(t)

		outbound.EXPECT().Send(gomock.Any(), connID, gomock.Any()).Return(connection.ErrNotFound)

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingPath), nil, "/connections/C1/send-ping")
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Contains(t, rr.Body.String(), connection.ErrNotFound.Error())
	})

	t.Run("dispatch failure", func(t *testing.T) {
		op, outbound := newOperation(t)

		outbound.EXPECT().Send(gomock.Any(), connID, gomock.Any()).Return(errors.New("queue full"))

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingPath), nil, "/connections/C1/send-ping")
		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestOperation_SendPingV2(t *testing.T) {
	t.Run("returns packet as text", func(t *testing.T) {
		op, outbound := newOperation(t)

		packet := []byte(`{"protected":"abc","iv":"def"}`)
		outbound.EXPECT().SendAndReturn(gomock.Any(), connID, gomock.Any()).Return(packet, nil)

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingV2Path), nil, "/connections/C1/send-ping-v2")
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
		require.Equal(t, packet, rr.Body.Bytes())
	})

	t.Run("connection not ready", func(t *testing.T) {
		op, outbound := newOperation(t)

		outbound.EXPECT().SendAndReturn(gomock.Any(), connID, gomock.Any()).Return(nil, nil)

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingV2Path), nil, "/connections/C1/send-ping-v2")
		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		require.JSONEq(t, "{}", rr.Body.String())
	})

	t.Run("unknown connection", func(t *testing.T) {
		op, outbound := newOperation(t)

		outbound.EXPECT().SendAndReturn(gomock.Any(), connID, gomock.Any()).Return(nil, connection.ErrNotFound)

		rr := sendRequestToHandler(t, handlerLookup(t, op, SendPingV2Path), nil, "/connections/C1/send-ping-v2")
		require.Equal(t, http.StatusNotFound, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.EqualValues(t, command.ConnectionNotFoundErrorCode, body["code"])
	})
}

func handlerLookup(t *testing.T, op *Operation, lookup string) rest.Handler {
	t.Helper()

	handlers := op.GetRESTHandlers()
	require.NotEmpty(t, handlers)

	for _, h := range handlers {
		if h.Path() == lookup {
			return h
		}
	}

	require.Fail(t, "unable to find handler")

	return nil
}

// sendRequestToHandler serves a request through a router holding the given handler.
func sendRequestToHandler(t *testing.T, handler rest.Handler, requestBody io.Reader,
	path string) *httptest.ResponseRecorder {
	t.Helper()

	if requestBody == nil {
		requestBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(handler.Method(), path, requestBody)
	require.NoError(t, err)

	router := mux.NewRouter()
	router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}
