// Package queue buffers sale-record batches between market clearing and
// results persistence, so a slow results database never stalls a run.
package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"estatesim/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// SaleQueue is an in-memory queue of sale-record batches.
type SaleQueue struct {
	items    chan []*models.SaleRecord
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.SaleRecord) error
}

// NewSaleQueue creates a sale queue holding up to bufferSize pending
// batches.
func NewSaleQueue(bufferSize int, logger *logrus.Logger) *SaleQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &SaleQueue{
		items:   make(chan []*models.SaleRecord, bufferSize),
		done:    make(chan struct{}),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a batch of sales to the queue. It never blocks: a full queue
// returns ErrQueueFull so the caller can decide what to do.
func (q *SaleQueue) Push(sales []*models.SaleRecord) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- sales:
		q.logger.WithField("batch_size", len(sales)).Debug("Pushed sale batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler that will be called for every drained batch.
func (q *SaleQueue) Subscribe(handler func([]*models.SaleRecord) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins draining the queue in the background.
func (q *SaleQueue) Start() {
	go q.drain()
}

func (q *SaleQueue) drain() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.dispatch(batch)
		}
	}
}

// dispatch hands a batch to every subscribed handler.
func (q *SaleQueue) dispatch(batch []*models.SaleRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process sale batch")
		}
	}
}

// Close stops the queue and rejects further pushes.
func (q *SaleQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the number of batches waiting in the queue.
func (q *SaleQueue) Len() int {
	return len(q.items)
}

// IsClosed reports whether the queue has been closed.
func (q *SaleQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
