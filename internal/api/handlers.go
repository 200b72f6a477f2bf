package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estatesim/server/config"
	"estatesim/server/internal/models"
	"estatesim/server/internal/queue"
	"estatesim/server/internal/simulation"
	"estatesim/server/internal/stats"
	"estatesim/server/internal/storage"
)

// Handler serves the read surface over the loaded dataset and the most
// recent simulation run. Store and queue may be nil when persistence is
// disabled.
type Handler struct {
	logger  *logrus.Logger
	cfg     *config.Config
	records []models.RawRecord
	columns []string
	store   *storage.ResultsStore
	queue   *queue.SaleQueue

	mu      sync.RWMutex
	sim     *simulation.Simulation
	metrics *models.MarketMetrics
}

// NewHandler creates a handler over the loaded dataset.
func NewHandler(cfg *config.Config, records []models.RawRecord, columns []string, store *storage.ResultsStore, q *queue.SaleQueue, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		logger:  logger,
		cfg:     cfg,
		records: records,
		columns: columns,
		store:   store,
		queue:   q,
	}
}

// RunSimulation executes a fresh run over the loaded dataset with the
// configured parameters, publishes its sales for persistence and makes
// it the current run.
func (h *Handler) RunSimulation() (models.MarketMetrics, error) {
	mechanism, err := models.ParseClearingMechanism(h.cfg.Simulation.Mechanism)
	if err != nil {
		return models.MarketMetrics{}, err
	}

	sim := simulation.New(simulation.Params{
		Records:   h.records,
		Consumers: h.cfg.Simulation.Consumers,
		Years:     h.cfg.Simulation.Years,
		Income: simulation.IncomeStatistics{
			Minimum: h.cfg.Simulation.IncomeMinimum,
			Average: h.cfg.Simulation.IncomeAverage,
			StdDev:  h.cfg.Simulation.IncomeStdDev,
			Maximum: h.cfg.Simulation.IncomeMaximum,
		},
		Children: simulation.ChildrenRange{
			Minimum: h.cfg.Simulation.ChildrenMinimum,
			Maximum: h.cfg.Simulation.ChildrenMaximum,
		},
		Mechanism:       mechanism,
		DownPaymentRate: h.cfg.Simulation.DownPaymentRate,
		SavingRate:      h.cfg.Simulation.SavingRate,
		InterestRate:    h.cfg.Simulation.InterestRate,
		ReferenceYear:   h.cfg.Simulation.ReferenceYear,
		Seed:            h.cfg.Simulation.Seed,
	}, h.logger)

	metrics, err := sim.Run()
	if err != nil {
		return models.MarketMetrics{}, err
	}

	h.publishSales(sim)
	if h.store != nil {
		summary, err := sim.Summary()
		if err == nil {
			err = h.store.SaveSummary(summary)
		}
		if err != nil {
			h.logger.WithError(err).Error("Failed to persist run summary")
		}
	}

	h.mu.Lock()
	h.sim = sim
	h.metrics = &metrics
	h.mu.Unlock()
	return metrics, nil
}

// publishSales pushes the run's sales onto the persistence queue in
// configured batch sizes.
func (h *Handler) publishSales(sim *simulation.Simulation) {
	if h.queue == nil {
		return
	}
	sales := sim.Sales()
	batchSize := h.cfg.BatchPersistence.BatchSize
	if batchSize <= 0 {
		batchSize = len(sales)
	}
	for start := 0; start < len(sales); start += batchSize {
		end := start + batchSize
		if end > len(sales) {
			end = len(sales)
		}
		batch := make([]*models.SaleRecord, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, &sales[i])
		}
		if err := h.queue.Push(batch); err != nil {
			h.logger.WithError(err).Error("Failed to enqueue sale batch")
		}
	}
}

// Simulate triggers a fresh run.
func (h *Handler) Simulate(c *gin.Context) {
	metrics, err := h.RunSimulation()
	if err != nil {
		h.logger.WithError(err).Error("Failed to run simulation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run simulation"})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetMetrics serves the current run's aggregate metrics.
func (h *Handler) GetMetrics(c *gin.Context) {
	h.mu.RLock()
	metrics := h.metrics
	h.mu.RUnlock()

	if metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No simulation has run yet"})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetHouses serves the current run's market state.
func (h *Handler) GetHouses(c *gin.Context) {
	h.mu.RLock()
	sim := h.sim
	h.mu.RUnlock()

	if sim == nil || sim.Market() == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No simulation has run yet"})
		return
	}
	c.JSON(http.StatusOK, sim.Market().Houses())
}

// GetConsumers serves the current run's population.
func (h *Handler) GetConsumers(c *gin.Context) {
	h.mu.RLock()
	sim := h.sim
	h.mu.RUnlock()

	if sim == nil || sim.Consumers() == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No simulation has run yet"})
		return
	}
	c.JSON(http.StatusOK, sim.Consumers())
}

// GetSales serves the persisted sales of the current run.
func (h *Handler) GetSales(c *gin.Context) {
	h.mu.RLock()
	sim := h.sim
	h.mu.RUnlock()

	if sim == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No simulation has run yet"})
		return
	}
	if h.store == nil {
		c.JSON(http.StatusOK, sim.Sales())
		return
	}
	sales, err := h.store.SalesByRunID(sim.RunID())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get sales")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sales"})
		return
	}
	c.JSON(http.StatusOK, sales)
}

// GetDatasetStats serves descriptive statistics over the loaded dataset.
func (h *Handler) GetDatasetStats(c *gin.Context) {
	descriptor, err := stats.NewDescriptor(h.records, h.columns)
	if err != nil {
		h.logger.WithError(err).Error("Failed to describe dataset")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to describe dataset"})
		return
	}

	missing, err := descriptor.MissingRatio()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to describe dataset"})
		return
	}
	averages, err := descriptor.Average()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to describe dataset"})
		return
	}
	medians, err := descriptor.Median()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to describe dataset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":          len(h.records),
		"missing_ratio": missing,
		"average":       averages,
		"median":        medians,
	})
}
