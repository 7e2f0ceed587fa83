/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package aries

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/stretchr/testify/require"

	mocktransport "github.com/hyperledger/aries-messaging-go/pkg/internal/gomocks/didcomm/transport"
)

func TestDefaultFramework(t *testing.T) {
	t.Run("test default framework - success", func(t *testing.T) {
		aries := &Aries{}

		err := defFrameworkOpts(aries)
		require.NoError(t, err)
		require.NotNil(t, aries.storeProvider)
		require.Len(t, aries.outboundTransports, 1)
		require.True(t, aries.outboundTransports[0].Accept("https://agent.example.com"))
	})

	t.Run("test default framework - keeps provided options", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := mem.NewProvider()
		transport := mocktransport.NewMockOutboundTransport(ctrl)

		aries := &Aries{storeProvider: store}
		require.NoError(t, WithOutboundTransports(transport)(aries))

		require.NoError(t, defFrameworkOpts(aries))
		require.Equal(t, store, aries.storeProvider)
		require.Len(t, aries.outboundTransports, 1)
	})
}
