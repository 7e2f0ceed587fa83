/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

// MediaTypeRFC0019EncryptedEnvelope is the content type of JWM/1.0 envelopes posted to an http endpoint.
const MediaTypeRFC0019EncryptedEnvelope = "application/didcomm-envelope-enc"
