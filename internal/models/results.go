package models

import "time"

// SaleRecord is one completed purchase, persisted for reporting.
type SaleRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RunID       string    `gorm:"index" json:"run_id"`
	HouseID     int       `json:"house_id"`
	ConsumerID  int       `json:"consumer_id"`
	Price       float64   `json:"price"`
	DownPayment float64   `json:"down_payment"`
	Segment     string    `json:"segment"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunSummary is the persisted outcome of a single simulation run.
type RunSummary struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RunID            string    `gorm:"uniqueIndex" json:"run_id"`
	Mechanism        string    `json:"mechanism"`
	Consumers        int       `json:"consumers"`
	Houses           int       `json:"houses"`
	HousesSold       int       `json:"houses_sold"`
	SkippedRecords   int       `json:"skipped_records"`
	OwnershipRate    float64   `json:"ownership_rate"`
	AvailabilityRate float64   `json:"availability_rate"`
	CreatedAt        time.Time `json:"created_at"`
}

// MarketMetrics is the in-memory aggregate outcome of a run, served by
// the API without touching storage.
type MarketMetrics struct {
	RunID            string  `json:"run_id"`
	Mechanism        string  `json:"mechanism"`
	Consumers        int     `json:"consumers"`
	Houses           int     `json:"houses"`
	HousesSold       int     `json:"houses_sold"`
	SkippedRecords   int     `json:"skipped_records"`
	OwnershipRate    float64 `json:"ownership_rate"`
	AvailabilityRate float64 `json:"availability_rate"`
}
