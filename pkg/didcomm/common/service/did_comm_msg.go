/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ForwardMsgType defines the routing/1.0 forward message type.
const ForwardMsgType = "https://didcomm.org/routing/1.0/forward"

const (
	jsonID             = "@id"
	jsonType           = "@type"
	jsonThread         = "~thread"
	jsonThreadID       = "thid"
	jsonParentThreadID = "pthid"
	jsonMetadata       = "_internal_metadata"
)

// ErrNoType is returned when a message carries no "@type" string.
var ErrNoType = errors.New("message has no @type")

// DIDCommMsgMap is a generic DIDComm message backed by its decoded JSON object.
type DIDCommMsgMap map[string]interface{}

// ParseDIDCommMsgMap returns the DIDComm message map of a JSON payload.
func ParseDIDCommMsgMap(payload []byte) (DIDCommMsgMap, error) {
	var msg DIDCommMsgMap

	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("invalid payload data format: %w", err)
	}

	return msg, nil
}

// NewDIDCommMsgMap converts a message struct into a DIDCommMsgMap through its JSON form.
func NewDIDCommMsgMap(v interface{}) (DIDCommMsgMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	return ParseDIDCommMsgMap(raw)
}

// ID returns the message id.
func (m DIDCommMsgMap) ID() string {
	return m.stringValue(jsonID)
}

// Type returns the message type.
func (m DIDCommMsgMap) Type() string {
	return m.stringValue(jsonType)
}

// TypeName returns the last path segment of the message type, e.g. "ping" for
// "https://didcomm.org/trust_ping/1.0/ping".
func (m DIDCommMsgMap) TypeName() (string, error) {
	t := m.Type()
	if t == "" {
		return "", ErrNoType
	}

	return t[strings.LastIndex(t, "/")+1:], nil
}

// ThreadID returns the message thread id, which defaults to the message id.
func (m DIDCommMsgMap) ThreadID() string {
	if thread, ok := m.thread(); ok {
		if thid, ok := thread[jsonThreadID].(string); ok && thid != "" {
			return thid
		}
	}

	return m.ID()
}

// ParentThreadID returns the parent thread id.
func (m DIDCommMsgMap) ParentThreadID() string {
	if thread, ok := m.thread(); ok {
		if pthid, ok := thread[jsonParentThreadID].(string); ok {
			return pthid
		}
	}

	return ""
}

// Metadata returns the internal metadata attached to the message.
func (m DIDCommMsgMap) Metadata() map[string]interface{} {
	if m == nil || m[jsonMetadata] == nil {
		return map[string]interface{}{}
	}

	res, ok := m[jsonMetadata].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}

	return res
}

// Clone returns a shallow copy of the message.
func (m DIDCommMsgMap) Clone() DIDCommMsgMap {
	if m == nil {
		return nil
	}

	msg := DIDCommMsgMap{}
	for k, v := range m {
		msg[k] = v
	}

	return msg
}

// Decode converts the message map into the given struct, honoring its json tags.
func (m DIDCommMsgMap) Decode(v interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToTimeHook, stringToBytesHook,
		),
		WeaklyTypedInput: true,
		Result:           v,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(m)
}

func (m DIDCommMsgMap) stringValue(key string) string {
	if m == nil || m[key] == nil {
		return ""
	}

	res, ok := m[key].(string)
	if !ok {
		return ""
	}

	return res
}

func (m DIDCommMsgMap) thread() (map[string]interface{}, bool) {
	if m == nil {
		return nil, false
	}

	thread, ok := m[jsonThread].(map[string]interface{})

	return thread, ok
}

func stringToTimeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	return time.Parse(time.RFC3339Nano, data.(string))
}

func stringToBytesHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]byte{}) {
		return data, nil
	}

	return base64.StdEncoding.DecodeString(data.(string))
}
