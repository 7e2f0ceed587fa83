/*
 *
 * Copyright SecureKey Technologies Inc. All Rights Reserved.
 *
 * SPDX-License-Identifier: Apache-2.0
 * /
 *
 */

package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/spi/storage"
)

const (
	// Namespace is namespace of connection store name.
	Namespace          = "connection"
	keyPattern         = "%s_%s"
	connIDKeyPrefix    = "conn"
	connStateTag       = "connstate"
	activityKeyPrefix  = "connactivity"
	keySeparator       = "_"
	errMsgInvalidKey   = "input key is empty"
	queryPatternFormat = "%s:%s"
)

var logger = log.New("aries-messaging/store/connection")

// KeyPrefix is prefix builder for storage keys.
type KeyPrefix func(...string) string

type provider interface {
	StorageProvider() storage.Provider
}

// NewLookup returns new connection lookup instance.
// Lookup is read only connection store. It provides connection record related query features.
func NewLookup(p provider) (*Lookup, error) {
	store, err := p.StorageProvider().OpenStore(Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open store to create new connection lookup: %w", err)
	}

	err = p.StorageProvider().SetStoreConfig(Namespace,
		storage.StoreConfiguration{TagNames: []string{connIDKeyPrefix, connStateTag}})
	if err != nil {
		return nil, fmt.Errorf("failed to set store config: %w", err)
	}

	return &Lookup{store: store}, nil
}

// Lookup takes care of connection related persistence features.
type Lookup struct {
	store storage.Store
}

// GetConnectionRecord return connection record based on the connection ID.
func (c *Lookup) GetConnectionRecord(connectionID string) (*Record, error) {
	if connectionID == "" {
		return nil, errors.New(errMsgInvalidKey)
	}

	var rec Record

	err := getAndUnmarshal(getConnectionKeyPrefix()(connectionID), &rec, c.store)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, connectionID, err)
		}

		return nil, fmt.Errorf("get connection record %s: %w", connectionID, err)
	}

	return &rec, nil
}

// QueryConnectionRecords returns connection records found in underlying store.
// When state is not empty only the records in that state are returned.
func (c *Lookup) QueryConnectionRecords(state State) ([]*Record, error) {
	query := connIDKeyPrefix
	if state != "" {
		query = fmt.Sprintf(queryPatternFormat, connStateTag, state)
	}

	itr, err := c.store.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query store: %w", err)
	}

	defer storage.Close(itr, logger)

	var records []*Record

	more, err := itr.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to get next set of data from iterator: %w", err)
	}

	for more {
		value, err := itr.Value()
		if err != nil {
			return nil, fmt.Errorf("failed to get value from iterator: %w", err)
		}

		var record Record

		err = json.Unmarshal(value, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal connection record: %w", err)
		}

		records = append(records, &record)

		more, err = itr.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to get next set of data from iterator: %w", err)
		}
	}

	return records, nil
}

// GetActivity returns the activity log of a connection in append order.
func (c *Lookup) GetActivity(connectionID string) ([]Activity, error) {
	if connectionID == "" {
		return nil, errors.New(errMsgInvalidKey)
	}

	var activities []Activity

	err := getAndUnmarshal(getActivityKeyPrefix()(connectionID), &activities, c.store)
	if err != nil && !errors.Is(err, storage.ErrDataNotFound) {
		return nil, fmt.Errorf("get activity log %s: %w", connectionID, err)
	}

	return activities, nil
}

func getAndUnmarshal(key string, target interface{}, store storage.Store) error {
	bytes, err := store.Get(key)
	if err != nil {
		return err
	}

	err = json.Unmarshal(bytes, target)
	if err != nil {
		return err
	}

	return nil
}

// getConnectionKeyPrefix key prefix for connection record persisted.
func getConnectionKeyPrefix() KeyPrefix {
	return func(key ...string) string {
		return fmt.Sprintf(keyPattern, connIDKeyPrefix, strings.Join(key, keySeparator))
	}
}

// getActivityKeyPrefix key prefix for the activity log of a connection.
func getActivityKeyPrefix() KeyPrefix {
	return func(key ...string) string {
		return fmt.Sprintf(keyPattern, activityKeyPrefix, strings.Join(key, keySeparator))
	}
}
