/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-messaging-go/pkg/didcomm/transport"
)

const (
	defaultWorkers     = 4
	defaultCapacity    = 256
	defaultMaxRetries  = 5
	defaultSendTimeout = 30 * time.Second
)

var logger = log.New("aries-messaging/transport/queue")

var (
	// ErrQueueFull is returned when the outbound queue cannot take another packet.
	ErrQueueFull = errors.New("outbound queue is full")
	// ErrQueueStopped is returned when enqueueing on a stopped queue.
	ErrQueueStopped = errors.New("outbound queue is stopped")
	// ErrNoTransport is returned when no outbound transport accepts an endpoint.
	ErrNoTransport = errors.New("no outbound transport accepts the endpoint")
)

type item struct {
	packet   []byte
	endpoint string
}

// Queue hands encoded packets over to the outbound transports from a pool of workers.
type Queue struct {
	transports  []transport.OutboundTransport
	items       chan *item
	newBackOff  func() backoff.BackOff
	sendTimeout time.Duration

	lock    sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	ctx     context.Context
}

type options struct {
	workers     int
	capacity    int
	maxRetries  uint64
	sendTimeout time.Duration
	backOff     func() backoff.BackOff
}

// Opt configures the queue.
type Opt func(opts *options)

// WithWorkers sets the number of delivery workers.
func WithWorkers(n int) Opt {
	return func(opts *options) {
		opts.workers = n
	}
}

// WithCapacity sets the number of packets that can wait for a worker.
func WithCapacity(n int) Opt {
	return func(opts *options) {
		opts.capacity = n
	}
}

// WithMaxRetries sets how many times a failed delivery is retried.
func WithMaxRetries(n uint64) Opt {
	return func(opts *options) {
		opts.maxRetries = n
	}
}

// WithSendTimeout bounds a single delivery attempt.
func WithSendTimeout(d time.Duration) Opt {
	return func(opts *options) {
		opts.sendTimeout = d
	}
}

// WithBackOff replaces the exponential back-off policy between retries.
func WithBackOff(b func() backoff.BackOff) Opt {
	return func(opts *options) {
		opts.backOff = b
	}
}

// New creates a queue and starts its workers.
func New(transports []transport.OutboundTransport, opts ...Opt) *Queue {
	o := &options{
		workers:     defaultWorkers,
		capacity:    defaultCapacity,
		maxRetries:  defaultMaxRetries,
		sendTimeout: defaultSendTimeout,
		backOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.workers < 1 {
		o.workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		transports: transports,
		items:      make(chan *item, o.capacity),
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(o.backOff(), o.maxRetries)
		},
		sendTimeout: o.sendTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}

	for i := 0; i < o.workers; i++ {
		q.wg.Add(1)

		go q.work()
	}

	return q
}

// Enqueue accepts a packet for delivery to endpoint without waiting for it to be sent.
func (q *Queue) Enqueue(packet []byte, endpoint string) error {
	q.lock.RLock()
	defer q.lock.RUnlock()

	if q.stopped {
		return ErrQueueStopped
	}

	if q.transport(endpoint) == nil {
		return fmt.Errorf("%w: %s", ErrNoTransport, endpoint)
	}

	select {
	case q.items <- &item{packet: packet, endpoint: endpoint}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop delivers the packets already accepted and stops the workers.
func (q *Queue) Stop() {
	q.lock.Lock()

	if q.stopped {
		q.lock.Unlock()

		return
	}

	q.stopped = true
	close(q.items)
	q.lock.Unlock()

	q.wg.Wait()
	q.cancel()
}

func (q *Queue) work() {
	defer q.wg.Done()

	for it := range q.items {
		if err := q.deliver(it); err != nil {
			logger.Errorf("failed to deliver packet to %s: %s", it.endpoint, err)
		}
	}
}

func (q *Queue) deliver(it *item) error {
	ot := q.transport(it.endpoint)
	if ot == nil {
		return fmt.Errorf("%w: %s", ErrNoTransport, it.endpoint)
	}

	return backoff.RetryNotify(func() error {
		ctx, cancel := context.WithTimeout(q.ctx, q.sendTimeout)
		defer cancel()

		_, err := ot.Send(ctx, it.packet, it.endpoint)

		return err
	}, backoff.WithContext(q.newBackOff(), q.ctx), func(err error, wait time.Duration) {
		logger.Warnf("delivery to %s failed, retrying in %s: %s", it.endpoint, wait, err)
	})
}

func (q *Queue) transport(endpoint string) transport.OutboundTransport {
	for _, ot := range q.transports {
		if ot.Accept(endpoint) {
			return ot
		}
	}

	return nil
}
