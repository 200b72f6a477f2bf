// Package ingest loads and cleans raw market datasets before the
// simulation core sees them.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"estatesim/server/internal/models"
)

var (
	ErrNoHeader = errors.New("dataset has no header row")
	ErrNoRows   = errors.New("dataset contains no data rows")
)

// Dataset is a loaded table: the column order plus one record per row.
// Empty cells are absent from the records, so presence doubles as a
// missing-value check.
type Dataset struct {
	Columns []string
	Records []models.RawRecord
}

// LoadCSV reads a market dataset from a CSV file.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrNoHeader
	}
	if len(rows) == 1 {
		return nil, ErrNoRows
	}

	header := rows[0]
	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(models.RawRecord, len(header))
		for i, column := range header {
			if i >= len(row) || row[i] == "" {
				continue
			}
			record[column] = row[i]
		}
		records = append(records, record)
	}
	return &Dataset{Columns: header, Records: records}, nil
}

// ValidateColumns checks that every required column is present, naming
// the missing ones.
func (d *Dataset) ValidateColumns(required []string) error {
	present := make(map[string]bool, len(d.Columns))
	for _, column := range d.Columns {
		present[column] = true
	}
	var missing []string
	for _, column := range required {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("dataset is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
