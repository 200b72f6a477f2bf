// Package storage holds the two persistence surfaces around the
// simulation: a read-only sqlite dataset of raw market records, and a
// results store for run outcomes.
package storage

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"estatesim/server/internal/models"
	"estatesim/server/internal/simulation"
)

// DatasetStore reads raw market records out of an existing sqlite
// dataset, as an alternative input source to CSV ingestion.
type DatasetStore struct {
	db *sql.DB
}

// OpenDataset opens the sqlite dataset at the given path.
func OpenDataset(path string) (*DatasetStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to configure dataset database: %w", err)
	}
	return &DatasetStore{db: db}, nil
}

// Close releases the underlying connection.
func (s *DatasetStore) Close() error {
	return s.db.Close()
}

// LoadRecords reads the properties table into raw records. NULL cells
// are left absent, matching the CSV loader's treatment of empty cells.
func (s *DatasetStore) LoadRecords() ([]models.RawRecord, error) {
	query := `
        SELECT
            sale_price,
            gr_liv_area,
            bedroom_abv_gr,
            year_built,
            overall_qual
        FROM properties
    `
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var salePrice, livingArea sql.NullFloat64
		var bedrooms, yearBuilt, overallQual sql.NullInt64

		if err := rows.Scan(&salePrice, &livingArea, &bedrooms, &yearBuilt, &overallQual); err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}

		record := make(models.RawRecord, 5)
		if salePrice.Valid {
			record[simulation.FieldSalePrice] = strconv.FormatFloat(salePrice.Float64, 'f', -1, 64)
		}
		if livingArea.Valid {
			record[simulation.FieldLivingArea] = strconv.FormatFloat(livingArea.Float64, 'f', -1, 64)
		}
		if bedrooms.Valid {
			record[simulation.FieldBedrooms] = strconv.FormatInt(bedrooms.Int64, 10)
		}
		if yearBuilt.Valid {
			record[simulation.FieldYearBuilt] = strconv.FormatInt(yearBuilt.Int64, 10)
		}
		if overallQual.Valid {
			record[simulation.FieldOverallQuality] = strconv.FormatInt(overallQual.Int64, 10)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read property rows: %w", err)
	}
	return records, nil
}
