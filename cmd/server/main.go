package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estatesim/server/config"
	"estatesim/server/internal/api"
	"estatesim/server/internal/ingest"
	"estatesim/server/internal/models"
	"estatesim/server/internal/processor"
	"estatesim/server/internal/queue"
	"estatesim/server/internal/simulation"
	"estatesim/server/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	records, columns, err := loadDataset(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load dataset")
	}
	logger.Infof("Loaded %d market records", len(records))

	var store *storage.ResultsStore
	saleQueue := queue.NewSaleQueue(cfg.BatchPersistence.BufferSize, logger)
	if cfg.Data.ResultsPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Data.ResultsPath), 0755); err != nil {
			logger.WithError(err).Fatal("Failed to create results directory")
		}
		store, err = storage.OpenResults(cfg.Data.ResultsPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open results database")
		}
		batchProcessor := processor.NewBatchProcessor(store, saleQueue, cfg, logger)
		batchProcessor.Start()
	}
	saleQueue.Start()
	defer saleQueue.Close()

	handler := api.NewHandler(cfg, records, columns, store, saleQueue, logger)

	// Run the configured simulation once at startup so the read surface
	// has a current run to serve.
	metrics, err := handler.RunSimulation()
	if err != nil {
		logger.WithError(err).Fatal("Failed to run initial simulation")
	}
	logger.WithFields(logrus.Fields{
		"run_id":            metrics.RunID,
		"ownership_rate":    metrics.OwnershipRate,
		"availability_rate": metrics.AvailabilityRate,
	}).Info("Initial simulation complete")

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %d", cfg.Server.Port)
	if err := router.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// loadDataset reads raw market records from the configured source: a
// cleaned CSV when one is configured, otherwise a sqlite dataset.
func loadDataset(cfg *config.Config, logger *logrus.Logger) ([]models.RawRecord, []string, error) {
	requiredColumns := []string{
		simulation.FieldSalePrice,
		simulation.FieldLivingArea,
		simulation.FieldBedrooms,
		simulation.FieldYearBuilt,
	}

	if cfg.Data.CSVPath != "" {
		dataset, err := ingest.LoadCSV(cfg.Data.CSVPath)
		if err != nil {
			return nil, nil, err
		}
		dataset.RenameColumns()
		dataset.NormalizeMissing()
		if err := dataset.ValidateColumns(requiredColumns); err != nil {
			return nil, nil, err
		}
		return dataset.Records, dataset.Columns, nil
	}

	if cfg.Data.DatasetPath != "" {
		logger.Infof("Using sqlite dataset at: %s", cfg.Data.DatasetPath)
		dataset, err := storage.OpenDataset(cfg.Data.DatasetPath)
		if err != nil {
			return nil, nil, err
		}
		defer dataset.Close()
		records, err := dataset.LoadRecords()
		if err != nil {
			return nil, nil, err
		}
		columns := append(append([]string{}, requiredColumns...), simulation.FieldOverallQuality)
		return records, columns, nil
	}

	return nil, nil, fmt.Errorf("no dataset configured: set DATA_CSV_PATH or DATA_DATASET_PATH")
}
