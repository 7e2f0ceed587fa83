/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
)

const (
	// Context of the DID document.
	Context = "https://w3id.org/did/v1"

	jsonldID              = "id"
	jsonldType            = "type"
	jsonldServicePoint    = "serviceEndpoint"
	jsonldRecipientKeys   = "recipientKeys"
	jsonldRoutingKeys     = "routingKeys"
	jsonldPriority        = "priority"
	jsonldController      = "controller"
	jsonldOwner           = "owner"
	jsonldPublicKeyBase58 = "publicKeyBase58"
)

// DID is parsed according to the generic syntax: https://w3c.github.io/did-core/#generic-did-syntax
type DID struct {
	Scheme           string // Scheme is always "did"
	Method           string // Method is the specific DID methods
	MethodSpecificID string // MethodSpecificID is the unique ID computed or assigned by the DID method
}

// String returns a string representation of this DID.
func (d *DID) String() string {
	return fmt.Sprintf("%s:%s:%s", d.Scheme, d.Method, d.MethodSpecificID)
}

// Parse parses the string according to the generic DID syntax.
func Parse(did string) (*DID, error) {
	parts := strings.SplitN(did, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" ||
		strings.ContainsAny(parts[1], "#?/") {
		return nil, fmt.Errorf("invalid did: %s. Make sure it conforms to the DID syntax: "+
			"https://w3c.github.io/did-core/#did-syntax", did)
	}

	return &DID{
		Scheme:           parts[0],
		Method:           parts[1],
		MethodSpecificID: parts[2],
	}, nil
}

// Doc DID Document definition.
type Doc struct {
	Context   []string
	ID        string
	PublicKey []PublicKey
	Service   []Service
	Created   *time.Time
	Updated   *time.Time
	VersionID string
}

// PublicKey DID doc public key.
type PublicKey struct {
	ID         string
	Type       string
	Controller string

	Value []byte
}

// Service DID doc service.
type Service struct {
	ID              string
	Type            string
	Priority        uint
	RecipientKeys   []string
	RoutingKeys     []string
	ServiceEndpoint string
	Properties      map[string]interface{}
}

type rawDoc struct {
	Context   interface{}              `json:"@context,omitempty"`
	ID        string                   `json:"id,omitempty"`
	PublicKey []map[string]interface{} `json:"publicKey,omitempty"`
	Service   []map[string]interface{} `json:"service,omitempty"`
	Created   *time.Time               `json:"created,omitempty"`
	Updated   *time.Time               `json:"updated,omitempty"`
	VersionID string                   `json:"versionId,omitempty"`
}

// ParseDocument creates an instance of DIDDocument by reading a JSON document from bytes.
func ParseDocument(data []byte) (*Doc, error) {
	raw := &rawDoc{}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("JSON marshalling of did doc bytes bytes failed: %w", err)
	} else if raw == nil {
		return nil, errors.New("document payload is not provided")
	}

	if raw.ID == "" {
		return nil, errors.New("document is missing an id")
	}

	publicKeys, err := populatePublicKeys(raw.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("populate public keys failed: %w", err)
	}

	services, err := populateServices(raw.Service)
	if err != nil {
		return nil, fmt.Errorf("populate services failed: %w", err)
	}

	return &Doc{
		Context:   parseContext(raw.Context),
		ID:        raw.ID,
		PublicKey: publicKeys,
		Service:   services,
		Created:   raw.Created,
		Updated:   raw.Updated,
		VersionID: raw.VersionID,
	}, nil
}

// Revision identifies the version of the document. Any key rotation is expected to change it.
func (doc *Doc) Revision() string {
	if doc.VersionID != "" {
		return doc.VersionID
	}

	if doc.Updated != nil {
		return doc.Updated.UTC().Format(time.RFC3339Nano)
	}

	return ""
}

func parseContext(context interface{}) []string {
	switch ctx := context.(type) {
	case string:
		return []string{ctx}
	case []interface{}:
		var result []string

		for _, c := range ctx {
			if s, ok := c.(string); ok {
				result = append(result, s)
			}
		}

		return result
	}

	return []string{Context}
}

func populateServices(rawServices []map[string]interface{}) ([]Service, error) {
	services := make([]Service, 0, len(rawServices))

	for _, rawService := range rawServices {
		priority, err := uintEntry(rawService[jsonldPriority])
		if err != nil {
			return nil, err
		}

		service := Service{
			ID:              stringEntry(rawService[jsonldID]),
			Type:            stringEntry(rawService[jsonldType]),
			ServiceEndpoint: stringEntry(rawService[jsonldServicePoint]),
			RecipientKeys:   stringArray(rawService[jsonldRecipientKeys]),
			RoutingKeys:     stringArray(rawService[jsonldRoutingKeys]),
			Priority:        priority,
		}

		delete(rawService, jsonldID)
		delete(rawService, jsonldType)
		delete(rawService, jsonldServicePoint)
		delete(rawService, jsonldRecipientKeys)
		delete(rawService, jsonldRoutingKeys)
		delete(rawService, jsonldPriority)

		service.Properties = rawService
		services = append(services, service)
	}

	return services, nil
}

func populatePublicKeys(rawPKs []map[string]interface{}) ([]PublicKey, error) {
	var publicKeys []PublicKey

	for _, rawPK := range rawPKs {
		controller := stringEntry(rawPK[jsonldController])
		if controller == "" {
			controller = stringEntry(rawPK[jsonldOwner])
		}

		publicKey := PublicKey{
			ID:         stringEntry(rawPK[jsonldID]),
			Type:       stringEntry(rawPK[jsonldType]),
			Controller: controller,
		}

		value := stringEntry(rawPK[jsonldPublicKeyBase58])
		if value == "" {
			return nil, fmt.Errorf("public key %s: encoding not supported", publicKey.ID)
		}

		publicKey.Value = base58.Decode(value)
		if len(publicKey.Value) == 0 {
			return nil, fmt.Errorf("public key %s: invalid base58 value", publicKey.ID)
		}

		publicKeys = append(publicKeys, publicKey)
	}

	return publicKeys, nil
}

func stringEntry(entry interface{}) string {
	s, ok := entry.(string)
	if !ok {
		return ""
	}

	return s
}

func uintEntry(entry interface{}) (uint, error) {
	switch v := entry.(type) {
	case nil:
		return 0, nil
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid priority %v", v)
		}

		return uint(v), nil
	case string:
		p, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid priority %q: %w", v, err)
		}

		return uint(p), nil
	}

	return 0, fmt.Errorf("invalid priority %v", entry)
}

func stringArray(entry interface{}) []string {
	entries, ok := entry.([]interface{})
	if !ok {
		return nil
	}

	var result []string

	for _, e := range entries {
		if s := stringEntry(e); s != "" {
			result = append(result, s)
		}
	}

	return result
}

// JSONBytes converts document to json bytes.
func (doc *Doc) JSONBytes() ([]byte, error) {
	raw := &rawDoc{
		Context:   doc.Context,
		ID:        doc.ID,
		PublicKey: populateRawPublicKeys(doc.PublicKey),
		Service:   populateRawServices(doc.Service),
		Created:   doc.Created,
		Updated:   doc.Updated,
		VersionID: doc.VersionID,
	}

	byteDoc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("JSON unmarshalling of document failed: %w", err)
	}

	return byteDoc, nil
}

func populateRawServices(services []Service) []map[string]interface{} {
	var rawServices []map[string]interface{}

	for _, service := range services {
		rawService := make(map[string]interface{})

		for k, v := range service.Properties {
			rawService[k] = v
		}

		rawService[jsonldID] = service.ID
		rawService[jsonldType] = service.Type
		rawService[jsonldServicePoint] = service.ServiceEndpoint
		rawService[jsonldRecipientKeys] = service.RecipientKeys
		rawService[jsonldRoutingKeys] = service.RoutingKeys
		rawService[jsonldPriority] = service.Priority

		rawServices = append(rawServices, rawService)
	}

	return rawServices
}

func populateRawPublicKeys(pks []PublicKey) []map[string]interface{} {
	var rawPKs []map[string]interface{}

	for i := range pks {
		rawPK := map[string]interface{}{
			jsonldID:         pks[i].ID,
			jsonldType:       pks[i].Type,
			jsonldController: pks[i].Controller,
		}

		if pks[i].Value != nil {
			rawPK[jsonldPublicKeyBase58] = base58.Encode(pks[i].Value)
		}

		rawPKs = append(rawPKs, rawPK)
	}

	return rawPKs
}

// DocOption provides options to build DID Doc.
type DocOption func(opts *Doc)

// WithPublicKey DID doc PublicKey.
func WithPublicKey(pubKey []PublicKey) DocOption {
	return func(opts *Doc) {
		opts.PublicKey = pubKey
	}
}

// WithService DID doc services.
func WithService(svc []Service) DocOption {
	return func(opts *Doc) {
		opts.Service = svc
	}
}

// WithUpdatedTime DID doc updated time.
func WithUpdatedTime(t time.Time) DocOption {
	return func(opts *Doc) {
		opts.Updated = &t
	}
}

// WithVersionID DID doc version id.
func WithVersionID(v string) DocOption {
	return func(opts *Doc) {
		opts.VersionID = v
	}
}

// BuildDoc creates the DID Doc from options.
func BuildDoc(id string, opts ...DocOption) *Doc {
	doc := &Doc{ID: id}
	doc.Context = []string{Context}

	for _, opt := range opts {
		opt(doc)
	}

	return doc
}
