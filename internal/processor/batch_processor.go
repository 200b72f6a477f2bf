// Package processor drains the sale queue into the results store with
// bounded retries.
package processor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"estatesim/server/config"
	"estatesim/server/internal/models"
	"estatesim/server/internal/queue"
)

// SaleWriter persists one batch of sale records.
type SaleWriter interface {
	SaveSales(batch []*models.SaleRecord) error
}

// BatchProcessor subscribes to the sale queue and persists each drained
// batch, retrying failures a configured number of times.
type BatchProcessor struct {
	store  SaleWriter
	queue  *queue.SaleQueue
	config *config.Config
	logger *logrus.Logger
}

// NewBatchProcessor creates a batch processor over the given store and
// queue.
func NewBatchProcessor(store SaleWriter, q *queue.SaleQueue, cfg *config.Config, logger *logrus.Logger) *BatchProcessor {
	return &BatchProcessor{
		store:  store,
		queue:  q,
		config: cfg,
		logger: logger,
	}
}

// Start subscribes the processor to the queue. Draining itself runs on
// the queue's loop.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
}

// processBatch persists one batch with retry and backoff.
func (p *BatchProcessor) processBatch(batch []*models.SaleRecord) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchPersistence.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying sale batch, attempt %d of %d", attempt, p.config.BatchPersistence.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchPersistence.RetryDelay) * time.Second)
		}

		err = p.store.SaveSales(batch)
		if err == nil {
			p.logger.Infof("Persisted batch of %d sales", len(batch))
			return nil
		}
		p.logger.Errorf("Sale batch persistence failed: %v", err)
	}
	return fmt.Errorf("failed to persist sale batch after %d attempts: %w", p.config.BatchPersistence.MaxRetries, err)
}
