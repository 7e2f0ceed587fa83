/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/common/service"
	diddoc "github.com/hyperledger/aries-messaging-go/pkg/doc/did"
	"github.com/hyperledger/aries-messaging-go/pkg/store/connection"
)

//go:generate mockgen -destination ../../internal/gomocks/didcomm/connection/mocks.gen.go -package connection . KeyResolver

// ErrTargetResolution is returned when no connection target can be computed for a connection.
var ErrTargetResolution = errors.New("target resolution failed")

// KeyResolver yields the delivery target of a connection.
type KeyResolver interface {
	ResolveTarget(ctx context.Context, record *connection.Record) (*service.ConnectionTarget, error)
}

type didStore interface {
	GetDID(id string) (*diddoc.Doc, error)
}

// DIDStoreResolver resolves targets from the DID documents saved in the DID store.
type DIDStoreResolver struct {
	store didStore
}

// NewDIDStoreResolver returns a resolver reading both parties' documents from store.
func NewDIDStoreResolver(store didStore) *DIDStoreResolver {
	return &DIDStoreResolver{store: store}
}

// ResolveTarget computes the target from the peer's document. The sender key comes from
// the document of MyDID; a connection without MyDID resolves to an anonymous target.
func (r *DIDStoreResolver) ResolveTarget(ctx context.Context, record *connection.Record) (*service.ConnectionTarget,
	error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if record.TheirDID == "" {
		return nil, fmt.Errorf("%w: connection %s has no peer DID", ErrTargetResolution, record.ConnectionID)
	}

	theirDoc, err := r.store.GetDID(record.TheirDID)
	if err != nil {
		return nil, fmt.Errorf("%w: peer document: %w", ErrTargetResolution, err)
	}

	var myDoc *diddoc.Doc

	if record.MyDID != "" {
		myDoc, err = r.store.GetDID(record.MyDID)
		if err != nil {
			return nil, fmt.Errorf("%w: own document: %w", ErrTargetResolution, err)
		}
	}

	target, err := service.CreateTarget(theirDoc, myDoc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTargetResolution, err)
	}

	target.Label = record.TheirLabel

	return target, nil
}
