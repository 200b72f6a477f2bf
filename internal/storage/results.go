package storage

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"estatesim/server/internal/models"
)

// ResultsStore persists run summaries and sale records.
type ResultsStore struct {
	db *gorm.DB
}

// OpenResults opens (and migrates) the results database at the given
// path.
func OpenResults(path string) (*ResultsStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	if err := db.AutoMigrate(&models.RunSummary{}, &models.SaleRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate results database: %w", err)
	}
	return &ResultsStore{db: db}, nil
}

// SaveSales inserts a batch of sale records in one transaction.
func (s *ResultsStore) SaveSales(batch []*models.SaleRecord) error {
	if len(batch) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert sale batch: %w", err)
		}
		return nil
	})
}

// SaveSummary stores the outcome of a completed run.
func (s *ResultsStore) SaveSummary(summary *models.RunSummary) error {
	if err := s.db.Create(summary).Error; err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

// SummaryByRunID returns a persisted run summary, or nil when the run is
// unknown.
func (s *ResultsStore) SummaryByRunID(runID string) (*models.RunSummary, error) {
	var summary models.RunSummary
	err := s.db.Where("run_id = ?", runID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run summary: %w", err)
	}
	return &summary, nil
}

// SalesByRunID returns all persisted sales of a run.
func (s *ResultsStore) SalesByRunID(runID string) ([]models.SaleRecord, error) {
	var sales []models.SaleRecord
	if err := s.db.Where("run_id = ?", runID).Order("id").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	return sales, nil
}
