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
	"sync"
	"time"

	"github.com/hyperledger/aries-framework-go/spi/storage"
)

// Recorder manages connection records and their activity logs.
type Recorder struct {
	*Lookup
	locks sync.Map
	now   func() time.Time
}

// NewRecorder returns new connection record instance.
func NewRecorder(p provider) (*Recorder, error) {
	lookup, err := NewLookup(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create new connection recorder: %w", err)
	}

	return &Recorder{Lookup: lookup, now: func() time.Time { return time.Now().UTC() }}, nil
}

// SaveConnectionRecord saves the connection record against the connection id in the store.
// Replacing a stored record must respect the lifecycle: a different state has to be a valid
// transition from the stored one, so terminal records keep their state.
func (c *Recorder) SaveConnectionRecord(record *Record) error {
	if err := isValidConnection(record); err != nil {
		return fmt.Errorf("validation failed while saving connection record: %w", err)
	}

	mu := c.lock(record.ConnectionID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := c.GetConnectionRecord(record.ConnectionID)

	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return fmt.Errorf("save connection record %s: %w", record.ConnectionID, err)
	default:
		if existing.State != record.State {
			if err := existing.State.CanTransitionTo(record.State); err != nil {
				return fmt.Errorf("save connection record %s: %w", record.ConnectionID, err)
			}
		}

		if record.CreatedAt.IsZero() {
			record.CreatedAt = existing.CreatedAt
		}
	}

	return c.save(record)
}

// UpdateState moves a connection to a new state, rejecting transitions that break the lifecycle.
func (c *Recorder) UpdateState(connectionID string, state State) (*Record, error) {
	mu := c.lock(connectionID)
	mu.Lock()
	defer mu.Unlock()

	record, err := c.GetConnectionRecord(connectionID)
	if err != nil {
		return nil, err
	}

	if err = record.State.CanTransitionTo(state); err != nil {
		return nil, err
	}

	logger.Debugf("connection %s: state %s -> %s", connectionID, record.State, state)

	record.State = state

	if err = c.save(record); err != nil {
		return nil, err
	}

	return record, nil
}

// RemoveConnection removes a connection record and its activity log.
func (c *Recorder) RemoveConnection(connectionID string) error {
	if connectionID == "" {
		return errors.New(errMsgInvalidKey)
	}

	mu := c.lock(connectionID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := c.GetConnectionRecord(connectionID); err != nil {
		return err
	}

	if err := c.store.Delete(getConnectionKeyPrefix()(connectionID)); err != nil {
		return fmt.Errorf("delete connection record %s: %w", connectionID, err)
	}

	if err := c.store.Delete(getActivityKeyPrefix()(connectionID)); err != nil {
		return fmt.Errorf("delete activity log %s: %w", connectionID, err)
	}

	return nil
}

// LogActivity appends an entry to the activity log of a connection. Appends on the same connection are
// serialized, so the log keeps the order in which they were issued.
func (c *Recorder) LogActivity(connectionID, msgType string, direction Direction, meta map[string]string) error {
	if connectionID == "" {
		return errors.New(errMsgInvalidKey)
	}

	mu := c.lock(connectionID)
	mu.Lock()
	defer mu.Unlock()

	activities, err := c.GetActivity(connectionID)
	if err != nil {
		return err
	}

	activities = append(activities, Activity{
		Direction: direction,
		Type:      msgType,
		Time:      c.now(),
		Meta:      meta,
	})

	if err := marshalAndSave(getActivityKeyPrefix()(connectionID), activities, c.store); err != nil {
		return fmt.Errorf("save activity log %s: %w", connectionID, err)
	}

	return nil
}

func (c *Recorder) save(record *Record) error {
	now := c.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	record.UpdatedAt = now

	err := marshalAndSave(getConnectionKeyPrefix()(record.ConnectionID), record, c.store,
		storage.Tag{Name: connIDKeyPrefix},
		storage.Tag{Name: connStateTag, Value: string(record.State)})
	if err != nil {
		return fmt.Errorf("save connection record %s: %w", record.ConnectionID, err)
	}

	return nil
}

func (c *Recorder) lock(connectionID string) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(connectionID, &sync.Mutex{})

	return mu.(*sync.Mutex) //nolint:forcetypeassert
}

func marshalAndSave(k string, v interface{}, store storage.Store, tags ...storage.Tag) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return store.Put(k, bytes, tags...)
}

// isValidConnection validates connection record.
func isValidConnection(r *Record) error {
	if r == nil || r.ConnectionID == "" {
		return errors.New("connection id cannot be empty")
	}

	if !r.State.IsValid() {
		return fmt.Errorf("unknown connection state %q", r.State)
	}

	return nil
}
